package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/karoldydo/i18n-mate-sub003/internal/domain"
	"github.com/karoldydo/i18n-mate-sub003/internal/repositories"
)

// TranslationServiceDeps enumerates collaborators required to construct the service.
type TranslationServiceDeps struct {
	Projects     repositories.ProjectRepository
	Locales      repositories.LocaleRepository
	Keys         repositories.KeyRepository
	Translations repositories.TranslationRepository
	Clock        func() time.Time
	IDGenerator  func() string
}

type translationService struct {
	projects     repositories.ProjectRepository
	locales      repositories.LocaleRepository
	keys         repositories.KeyRepository
	translations repositories.TranslationRepository
	clock        func() time.Time
	newID        func() string
}

// NewTranslationService wires dependencies into a TranslationService implementation.
func NewTranslationService(deps TranslationServiceDeps) (TranslationService, error) {
	if deps.Projects == nil {
		return nil, errors.New("translation service: project repository is required")
	}
	if deps.Locales == nil {
		return nil, errors.New("translation service: locale repository is required")
	}
	if deps.Keys == nil {
		return nil, errors.New("translation service: key repository is required")
	}
	if deps.Translations == nil {
		return nil, errors.New("translation service: translation repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	return &translationService{
		projects:     deps.Projects,
		locales:      deps.Locales,
		keys:         deps.Keys,
		translations: deps.Translations,
		clock:        func() time.Time { return clock().UTC() },
		newID:        idGen,
	}, nil
}

func (s *translationService) CreateKey(ctx context.Context, cmd CreateKeyCommand) (domain.Key, error) {
	project, err := s.loadOwnedProject(ctx, cmd.OwnerID, cmd.ProjectID)
	if err != nil {
		return domain.Key{}, err
	}

	fullKey := strings.TrimSpace(cmd.FullKey)
	if err := domain.ValidateFullKey(fullKey); err != nil {
		return domain.Key{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !strings.HasPrefix(fullKey, project.Prefix+".") {
		return domain.Key{}, fmt.Errorf("%w: key must start with project prefix %q", ErrInvalidInput, project.Prefix)
	}

	now := s.clock()
	key := domain.Key{
		ID:        s.newID(),
		ProjectID: project.ID,
		FullKey:   fullKey,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.keys.Insert(ctx, key); err != nil {
		if isRepoConflict(err) {
			return domain.Key{}, ErrDuplicateKey
		}
		return domain.Key{}, err
	}

	// A non-empty value seeds the default locale at creation time.
	if value := domain.NormalizeValue(cmd.Value); value != nil {
		if err := domain.ValidateValue(cmd.Value); err != nil {
			return domain.Key{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		translation := domain.Translation{
			ProjectID:     project.ID,
			KeyID:         key.ID,
			Locale:        project.DefaultLocale,
			Value:         value,
			UpdatedAt:     now,
			UpdatedBy:     cmd.OwnerID,
			UpdatedSource: domain.UpdateSourceUser,
		}
		if err := s.translations.Upsert(ctx, translation); err != nil {
			return domain.Key{}, err
		}
	}

	return key, nil
}

func (s *translationService) DeleteKey(ctx context.Context, ownerID, projectID, keyID string) error {
	project, err := s.loadOwnedProject(ctx, ownerID, projectID)
	if err != nil {
		return err
	}

	keyID = strings.TrimSpace(keyID)
	if keyID == "" {
		return fmt.Errorf("%w: key id is required", ErrInvalidInput)
	}
	if _, err := s.keys.FindByID(ctx, project.ID, keyID); err != nil {
		if isRepoNotFound(err) {
			return ErrKeyNotFound
		}
		return err
	}

	if err := s.translations.DeleteByKey(ctx, project.ID, keyID); err != nil {
		return err
	}
	return s.keys.Delete(ctx, project.ID, keyID)
}

func (s *translationService) ListKeysDefaultView(ctx context.Context, query KeyListQuery) (domain.Page[domain.KeyRow], error) {
	project, err := s.loadOwnedProject(ctx, query.OwnerID, query.ProjectID)
	if err != nil {
		return domain.Page[domain.KeyRow]{}, err
	}
	return s.listView(ctx, project, project.DefaultLocale, query)
}

func (s *translationService) ListKeysPerLanguageView(ctx context.Context, query KeyListQuery) (domain.Page[domain.KeyRow], error) {
	project, err := s.loadOwnedProject(ctx, query.OwnerID, query.ProjectID)
	if err != nil {
		return domain.Page[domain.KeyRow]{}, err
	}

	locale := strings.TrimSpace(query.Locale)
	if locale == "" {
		return domain.Page[domain.KeyRow]{}, fmt.Errorf("%w: locale is required", ErrInvalidInput)
	}
	if _, err := s.locales.FindByCode(ctx, project.ID, locale); err != nil {
		if isRepoNotFound(err) {
			return domain.Page[domain.KeyRow]{}, ErrLocaleNotFound
		}
		return domain.Page[domain.KeyRow]{}, err
	}
	return s.listView(ctx, project, locale, query)
}

func (s *translationService) listView(ctx context.Context, project domain.Project, locale string, query KeyListQuery) (domain.Page[domain.KeyRow], error) {
	filter := repositories.KeyListFilter{
		Search:      query.Search,
		MissingOnly: query.MissingOnly,
		Offset:      query.Offset,
		Limit:       query.Limit,
	}
	return s.keys.ListView(ctx, project.ID, locale, filter)
}

func (s *translationService) UpdateTranslation(ctx context.Context, cmd UpdateTranslationCommand) (domain.Translation, error) {
	project, err := s.loadOwnedProject(ctx, cmd.OwnerID, cmd.ProjectID)
	if err != nil {
		return domain.Translation{}, err
	}

	keyID := strings.TrimSpace(cmd.KeyID)
	locale := strings.TrimSpace(cmd.Locale)
	if keyID == "" {
		return domain.Translation{}, fmt.Errorf("%w: key id is required", ErrInvalidInput)
	}
	if locale == "" {
		locale = project.DefaultLocale
	}

	if _, err := s.keys.FindByID(ctx, project.ID, keyID); err != nil {
		if isRepoNotFound(err) {
			return domain.Translation{}, ErrKeyNotFound
		}
		return domain.Translation{}, err
	}
	if locale != project.DefaultLocale {
		if _, err := s.locales.FindByCode(ctx, project.ID, locale); err != nil {
			if isRepoNotFound(err) {
				return domain.Translation{}, ErrLocaleNotFound
			}
			return domain.Translation{}, err
		}
	}

	if err := domain.ValidateValue(cmd.RawValue); err != nil {
		return domain.Translation{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	source := cmd.Source
	if source == "" {
		source = domain.UpdateSourceUser
	}

	translation := domain.Translation{
		ProjectID:           project.ID,
		KeyID:               keyID,
		Locale:              locale,
		Value:               domain.NormalizeValue(cmd.RawValue),
		IsMachineTranslated: source == domain.UpdateSourceSystem,
		UpdatedAt:           s.clock(),
		UpdatedBy:           strings.TrimSpace(cmd.OwnerID),
		UpdatedSource:       source,
	}
	if err := s.translations.Upsert(ctx, translation); err != nil {
		return domain.Translation{}, err
	}
	return translation, nil
}

func (s *translationService) loadOwnedProject(ctx context.Context, ownerID, projectID string) (domain.Project, error) {
	ownerID = strings.TrimSpace(ownerID)
	projectID = strings.TrimSpace(projectID)
	if ownerID == "" || projectID == "" {
		return domain.Project{}, fmt.Errorf("%w: owner id and project id are required", ErrInvalidInput)
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if isRepoNotFound(err) {
			return domain.Project{}, ErrProjectNotFound
		}
		return domain.Project{}, err
	}
	if project.OwnerID != ownerID {
		return domain.Project{}, ErrProjectNotFound
	}
	return project, nil
}
