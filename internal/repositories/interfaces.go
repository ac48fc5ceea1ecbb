package repositories

import (
	"context"

	"github.com/karoldydo/i18n-mate-sub003/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close() error

	Projects() ProjectRepository
	Locales() LocaleRepository
	Keys() KeyRepository
	Translations() TranslationRepository
	Jobs() JobRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// ProjectRepository persists project documents.
type ProjectRepository interface {
	Insert(ctx context.Context, project domain.Project) error
	FindByID(ctx context.Context, projectID string) (domain.Project, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error)
	Update(ctx context.Context, project domain.Project) error
	Delete(ctx context.Context, projectID string) error
}

// LocaleRepository manages the set of locales enabled for a project.
type LocaleRepository interface {
	Insert(ctx context.Context, locale domain.ProjectLocale) error
	FindByCode(ctx context.Context, projectID, code string) (domain.ProjectLocale, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.ProjectLocale, error)
	Delete(ctx context.Context, projectID, code string) error
}

// KeyListFilter narrows the key list views.
type KeyListFilter struct {
	Search      string
	MissingOnly bool
	Offset      int
	Limit       int
}

// KeyRepository persists translation keys and serves the joined list views.
type KeyRepository interface {
	Insert(ctx context.Context, key domain.Key) error
	FindByID(ctx context.Context, projectID, keyID string) (domain.Key, error)
	FindByFullKey(ctx context.Context, projectID, fullKey string) (domain.Key, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Key, error)
	Delete(ctx context.Context, projectID, keyID string) error

	// ListView joins keys with the given locale's translations, applies the
	// filter, and returns one page plus the filtered total.
	ListView(ctx context.Context, projectID, locale string, filter KeyListFilter) (domain.Page[domain.KeyRow], error)
}

// TranslationRepository stores per-(key, locale) translation values.
type TranslationRepository interface {
	// Upsert writes the translation value. A nil value deletes the stored
	// document so missing translations never persist empty strings.
	Upsert(ctx context.Context, translation domain.Translation) error
	Find(ctx context.Context, projectID, keyID, locale string) (domain.Translation, error)
	// ValuesByLocale returns the stored values for one locale keyed by key ID.
	ValuesByLocale(ctx context.Context, projectID, locale string) (map[string]domain.Translation, error)
	DeleteByKey(ctx context.Context, projectID, keyID string) error
}

// JobRepository persists machine-translation job lifecycle state.
type JobRepository interface {
	// Insert creates the job, failing with a conflict when the project
	// already has an active job.
	Insert(ctx context.Context, job domain.TranslationJob) error
	FindByID(ctx context.Context, projectID, jobID string) (domain.TranslationJob, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.TranslationJob, error)
	FindActive(ctx context.Context, projectID string) (domain.TranslationJob, error)
	UpdateStatus(ctx context.Context, projectID, jobID string, update JobStatusUpdate) (domain.TranslationJob, error)
}

// JobStatusUpdate carries optional fields to mutate during a status transition.
type JobStatusUpdate struct {
	Status        domain.JobStatus
	CompletedKeys *int
	FailedKeys    *int
}
