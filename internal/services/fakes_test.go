package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/karoldydo/i18n-mate-sub003/internal/domain"
	"github.com/karoldydo/i18n-mate-sub003/internal/repositories"
)

type repoError struct {
	msg         string
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *repoError) Error() string       { return e.msg }
func (e *repoError) IsNotFound() bool    { return e.notFound }
func (e *repoError) IsConflict() bool    { return e.conflict }
func (e *repoError) IsUnavailable() bool { return e.unavailable }

func notFoundErr(msg string) error { return &repoError{msg: msg, notFound: true} }
func conflictErr(msg string) error { return &repoError{msg: msg, conflict: true} }

type memStore struct {
	mu           sync.Mutex
	projects     map[string]domain.Project
	locales      map[string][]domain.ProjectLocale
	keys         map[string][]domain.Key
	translations map[string]domain.Translation
	jobs         map[string][]domain.TranslationJob
}

func newMemStore() *memStore {
	return &memStore{
		projects:     make(map[string]domain.Project),
		locales:      make(map[string][]domain.ProjectLocale),
		keys:         make(map[string][]domain.Key),
		translations: make(map[string]domain.Translation),
		jobs:         make(map[string][]domain.TranslationJob),
	}
}

func translationKey(projectID, keyID, locale string) string {
	return projectID + "/" + keyID + "/" + locale
}

type memProjectRepo struct{ store *memStore }

func (r *memProjectRepo) Insert(_ context.Context, project domain.Project) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.projects {
		if existing.OwnerID == project.OwnerID && existing.Name == project.Name {
			return conflictErr("duplicate project name")
		}
	}
	r.store.projects[project.ID] = project
	return nil
}

func (r *memProjectRepo) FindByID(_ context.Context, projectID string) (domain.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	project, ok := r.store.projects[projectID]
	if !ok {
		return domain.Project{}, notFoundErr("project not found")
	}
	return project, nil
}

func (r *memProjectRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Project, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []domain.Project
	for _, project := range r.store.projects {
		if project.OwnerID == ownerID {
			out = append(out, project)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memProjectRepo) Update(_ context.Context, project domain.Project) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.projects[project.ID]; !ok {
		return notFoundErr("project not found")
	}
	r.store.projects[project.ID] = project
	return nil
}

func (r *memProjectRepo) Delete(_ context.Context, projectID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.projects, projectID)
	return nil
}

type memLocaleRepo struct{ store *memStore }

func (r *memLocaleRepo) Insert(_ context.Context, locale domain.ProjectLocale) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.locales[locale.ProjectID] {
		if existing.Code == locale.Code {
			return conflictErr("duplicate locale")
		}
	}
	r.store.locales[locale.ProjectID] = append(r.store.locales[locale.ProjectID], locale)
	return nil
}

func (r *memLocaleRepo) FindByCode(_ context.Context, projectID, code string) (domain.ProjectLocale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, locale := range r.store.locales[projectID] {
		if locale.Code == code {
			return locale, nil
		}
	}
	return domain.ProjectLocale{}, notFoundErr("locale not found")
}

func (r *memLocaleRepo) ListByProject(_ context.Context, projectID string) ([]domain.ProjectLocale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	locales := append([]domain.ProjectLocale(nil), r.store.locales[projectID]...)
	sort.Slice(locales, func(i, j int) bool {
		if locales[i].IsDefault != locales[j].IsDefault {
			return locales[i].IsDefault
		}
		return locales[i].Code < locales[j].Code
	})
	return locales, nil
}

func (r *memLocaleRepo) Delete(_ context.Context, projectID, code string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	locales := r.store.locales[projectID]
	for i, locale := range locales {
		if locale.Code != code {
			continue
		}
		if locale.IsDefault {
			return conflictErr("default locale cannot be deleted")
		}
		r.store.locales[projectID] = append(locales[:i], locales[i+1:]...)
		return nil
	}
	return notFoundErr("locale not found")
}

type memKeyRepo struct{ store *memStore }

func (r *memKeyRepo) Insert(_ context.Context, key domain.Key) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.keys[key.ProjectID] {
		if existing.FullKey == key.FullKey {
			return conflictErr("duplicate key")
		}
	}
	r.store.keys[key.ProjectID] = append(r.store.keys[key.ProjectID], key)
	return nil
}

func (r *memKeyRepo) FindByID(_ context.Context, projectID, keyID string) (domain.Key, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, key := range r.store.keys[projectID] {
		if key.ID == keyID {
			return key, nil
		}
	}
	return domain.Key{}, notFoundErr("key not found")
}

func (r *memKeyRepo) FindByFullKey(_ context.Context, projectID, fullKey string) (domain.Key, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, key := range r.store.keys[projectID] {
		if key.FullKey == fullKey {
			return key, nil
		}
	}
	return domain.Key{}, notFoundErr("key not found")
}

func (r *memKeyRepo) ListByProject(_ context.Context, projectID string) ([]domain.Key, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	keys := append([]domain.Key(nil), r.store.keys[projectID]...)
	sort.Slice(keys, func(i, j int) bool { return keys[i].FullKey < keys[j].FullKey })
	return keys, nil
}

func (r *memKeyRepo) Delete(_ context.Context, projectID, keyID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	keys := r.store.keys[projectID]
	for i, key := range keys {
		if key.ID == keyID {
			r.store.keys[projectID] = append(keys[:i], keys[i+1:]...)
			return nil
		}
	}
	return notFoundErr("key not found")
}

func (r *memKeyRepo) ListView(ctx context.Context, projectID, locale string, filter repositories.KeyListFilter) (domain.Page[domain.KeyRow], error) {
	keys, err := r.ListByProject(ctx, projectID)
	if err != nil {
		return domain.Page[domain.KeyRow]{}, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var rows []domain.KeyRow
	for _, key := range keys {
		row := domain.KeyRow{KeyID: key.ID, FullKey: key.FullKey, UpdatedAt: key.UpdatedAt}
		if translation, ok := r.store.translations[translationKey(projectID, key.ID, locale)]; ok {
			row.Value = translation.Value
			row.IsMachineTranslated = translation.IsMachineTranslated
			row.UpdatedAt = translation.UpdatedAt
		}
		if filter.MissingOnly && row.Value != nil {
			continue
		}
		if search != "" {
			matched := strings.Contains(strings.ToLower(row.FullKey), search)
			if !matched && row.Value != nil {
				matched = strings.Contains(strings.ToLower(*row.Value), search)
			}
			if !matched {
				continue
			}
		}
		rows = append(rows, row)
	}

	total := len(rows)
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		rows = nil
	} else {
		rows = rows[offset:]
		if filter.Limit > 0 && filter.Limit < len(rows) {
			rows = rows[:filter.Limit]
		}
	}
	return domain.Page[domain.KeyRow]{Items: rows, Total: total}, nil
}

type memTranslationRepo struct{ store *memStore }

func (r *memTranslationRepo) Upsert(_ context.Context, translation domain.Translation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	id := translationKey(translation.ProjectID, translation.KeyID, translation.Locale)
	if translation.Value == nil {
		delete(r.store.translations, id)
		return nil
	}
	r.store.translations[id] = translation
	return nil
}

func (r *memTranslationRepo) Find(_ context.Context, projectID, keyID, locale string) (domain.Translation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	translation, ok := r.store.translations[translationKey(projectID, keyID, locale)]
	if !ok {
		return domain.Translation{}, notFoundErr("translation not found")
	}
	return translation, nil
}

func (r *memTranslationRepo) ValuesByLocale(_ context.Context, projectID, locale string) (map[string]domain.Translation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make(map[string]domain.Translation)
	for _, translation := range r.store.translations {
		if translation.ProjectID == projectID && translation.Locale == locale {
			out[translation.KeyID] = translation
		}
	}
	return out, nil
}

func (r *memTranslationRepo) DeleteByKey(_ context.Context, projectID, keyID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, translation := range r.store.translations {
		if translation.ProjectID == projectID && translation.KeyID == keyID {
			delete(r.store.translations, id)
		}
	}
	return nil
}

type memJobRepo struct{ store *memStore }

func (r *memJobRepo) Insert(_ context.Context, job domain.TranslationJob) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.jobs[job.ProjectID] {
		if existing.Status.Active() {
			return conflictErr("active job exists")
		}
	}
	r.store.jobs[job.ProjectID] = append(r.store.jobs[job.ProjectID], job)
	return nil
}

func (r *memJobRepo) FindByID(_ context.Context, projectID, jobID string) (domain.TranslationJob, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, job := range r.store.jobs[projectID] {
		if job.ID == jobID {
			return job, nil
		}
	}
	return domain.TranslationJob{}, notFoundErr("job not found")
}

func (r *memJobRepo) ListByProject(_ context.Context, projectID string) ([]domain.TranslationJob, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	jobs := append([]domain.TranslationJob(nil), r.store.jobs[projectID]...)
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].CreatedAt.After(jobs[j].CreatedAt) })
	return jobs, nil
}

func (r *memJobRepo) FindActive(_ context.Context, projectID string) (domain.TranslationJob, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, job := range r.store.jobs[projectID] {
		if job.Status.Active() {
			return job, nil
		}
	}
	return domain.TranslationJob{}, notFoundErr("no active job")
}

func (r *memJobRepo) UpdateStatus(_ context.Context, projectID, jobID string, update repositories.JobStatusUpdate) (domain.TranslationJob, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	jobs := r.store.jobs[projectID]
	for i, job := range jobs {
		if job.ID != jobID {
			continue
		}
		if !job.Status.Active() && update.Status != job.Status {
			return domain.TranslationJob{}, conflictErr("job in terminal state")
		}
		job.Status = update.Status
		if update.CompletedKeys != nil {
			job.CompletedKeys = *update.CompletedKeys
		}
		if update.FailedKeys != nil {
			job.FailedKeys = *update.FailedKeys
		}
		job.UpdatedAt = time.Now().UTC()
		jobs[i] = job
		return job, nil
	}
	return domain.TranslationJob{}, notFoundErr("job not found")
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []TranslationJobMessage
	err      error
}

func (p *fakePublisher) PublishTranslationJob(_ context.Context, message TranslationJobMessage) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.messages = append(p.messages, message)
	return "msg-1", nil
}

type testEnv struct {
	store        *memStore
	projects     *memProjectRepo
	locales      *memLocaleRepo
	keys         *memKeyRepo
	translations *memTranslationRepo
	jobs         *memJobRepo
	publisher    *fakePublisher
	now          time.Time
	nextID       int
}

func newTestEnv() *testEnv {
	store := newMemStore()
	return &testEnv{
		store:        store,
		projects:     &memProjectRepo{store: store},
		locales:      &memLocaleRepo{store: store},
		keys:         &memKeyRepo{store: store},
		translations: &memTranslationRepo{store: store},
		jobs:         &memJobRepo{store: store},
		publisher:    &fakePublisher{},
		now:          time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (e *testEnv) clock() time.Time { return e.now }

func (e *testEnv) idGen() string {
	e.nextID++
	return fmt.Sprintf("id-%03d", e.nextID)
}

func (e *testEnv) seedProject(ownerID, name, prefix, defaultLocale string) domain.Project {
	project := domain.Project{
		ID:            e.idGen(),
		OwnerID:       ownerID,
		Name:          name,
		Prefix:        prefix,
		DefaultLocale: defaultLocale,
		CreatedAt:     e.now,
		UpdatedAt:     e.now,
	}
	e.store.projects[project.ID] = project
	e.store.locales[project.ID] = append(e.store.locales[project.ID], domain.ProjectLocale{
		ProjectID: project.ID,
		Code:      defaultLocale,
		Label:     defaultLocale,
		IsDefault: true,
		CreatedAt: e.now,
	})
	return project
}

func (e *testEnv) seedLocale(projectID, code string) {
	e.store.locales[projectID] = append(e.store.locales[projectID], domain.ProjectLocale{
		ProjectID: projectID,
		Code:      code,
		Label:     code,
		CreatedAt: e.now,
	})
}

func (e *testEnv) seedKey(projectID, fullKey string) domain.Key {
	key := domain.Key{
		ID:        e.idGen(),
		ProjectID: projectID,
		FullKey:   fullKey,
		CreatedAt: e.now,
		UpdatedAt: e.now,
	}
	e.store.keys[projectID] = append(e.store.keys[projectID], key)
	return key
}

func (e *testEnv) seedTranslation(projectID, keyID, locale, value string) {
	e.store.translations[translationKey(projectID, keyID, locale)] = domain.Translation{
		ProjectID:     projectID,
		KeyID:         keyID,
		Locale:        locale,
		Value:         &value,
		UpdatedAt:     e.now,
		UpdatedSource: domain.UpdateSourceUser,
	}
}
