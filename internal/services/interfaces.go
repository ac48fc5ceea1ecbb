package services

import (
	"context"
	"errors"
	"time"

	"github.com/karoldydo/i18n-mate-sub003/internal/domain"
	"github.com/karoldydo/i18n-mate-sub003/internal/repositories"
)

var (
	// ErrInvalidInput indicates required fields were missing or malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrProjectNotFound indicates the project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrLocaleNotFound indicates the locale is not enabled for the project.
	ErrLocaleNotFound = errors.New("locale not found")
	// ErrKeyNotFound indicates the key does not exist in the project.
	ErrKeyNotFound = errors.New("key not found")
	// ErrJobNotFound indicates the job does not exist.
	ErrJobNotFound = errors.New("job not found")
	// ErrNotProjectOwner indicates the caller does not own the project.
	ErrNotProjectOwner = errors.New("not project owner")
	// ErrDuplicateName indicates a project name collision within one owner.
	ErrDuplicateName = errors.New("project name already in use")
	// ErrDuplicateLocale indicates the locale is already enabled.
	ErrDuplicateLocale = errors.New("locale already exists")
	// ErrDuplicateKey indicates the full key already exists in the project.
	ErrDuplicateKey = errors.New("key already exists")
	// ErrDefaultLocale indicates an operation not permitted on the default locale.
	ErrDefaultLocale = errors.New("operation not permitted on default locale")
	// ErrJobAlreadyActive indicates the project already has a pending or running job.
	ErrJobAlreadyActive = errors.New("project already has an active job")
	// ErrJobNotCancellable indicates the job has reached a terminal state.
	ErrJobNotCancellable = errors.New("job is not cancellable")
)

// ProjectService owns project and locale lifecycle.
type ProjectService interface {
	CreateProject(ctx context.Context, cmd CreateProjectCommand) (domain.Project, error)
	GetProject(ctx context.Context, ownerID, projectID string) (domain.Project, error)
	ListProjects(ctx context.Context, ownerID string) ([]domain.Project, error)
	UpdateProject(ctx context.Context, cmd UpdateProjectCommand) (domain.Project, error)
	DeleteProject(ctx context.Context, ownerID, projectID string) error

	AddLocale(ctx context.Context, cmd AddLocaleCommand) (domain.ProjectLocale, error)
	ListLocales(ctx context.Context, ownerID, projectID string) ([]domain.ProjectLocale, error)
	DeleteLocale(ctx context.Context, ownerID, projectID, code string) error
}

// CreateProjectCommand carries project creation input.
type CreateProjectCommand struct {
	OwnerID       string
	Name          string
	Description   string
	Prefix        string
	DefaultLocale string
}

// UpdateProjectCommand carries the mutable project fields.
type UpdateProjectCommand struct {
	OwnerID     string
	ProjectID   string
	Name        string
	Description string
}

// AddLocaleCommand enables a locale for a project.
type AddLocaleCommand struct {
	OwnerID   string
	ProjectID string
	Code      string
	Label     string
}

// TranslationService owns keys, the joined list views, and translation writes.
type TranslationService interface {
	CreateKey(ctx context.Context, cmd CreateKeyCommand) (domain.Key, error)
	DeleteKey(ctx context.Context, ownerID, projectID, keyID string) error

	// ListKeysDefaultView lists keys joined with the project's default
	// locale values.
	ListKeysDefaultView(ctx context.Context, query KeyListQuery) (domain.Page[domain.KeyRow], error)
	// ListKeysPerLanguageView lists keys joined with the requested locale.
	ListKeysPerLanguageView(ctx context.Context, query KeyListQuery) (domain.Page[domain.KeyRow], error)

	UpdateTranslation(ctx context.Context, cmd UpdateTranslationCommand) (domain.Translation, error)
}

// CreateKeyCommand carries key creation input. Value seeds the default locale
// when non-empty.
type CreateKeyCommand struct {
	OwnerID   string
	ProjectID string
	FullKey   string
	Value     string
}

// KeyListQuery selects one page of the joined key list view.
type KeyListQuery struct {
	OwnerID     string
	ProjectID   string
	Locale      string
	Search      string
	MissingOnly bool
	Offset      int
	Limit       int
}

// UpdateTranslationCommand writes one (key, locale) cell. RawValue is the
// untrimmed editor input; empty or whitespace-only input clears the value.
type UpdateTranslationCommand struct {
	OwnerID   string
	ProjectID string
	KeyID     string
	Locale    string
	RawValue  string
	Source    domain.UpdateSource
}

// JobService owns the machine-translation job lifecycle.
type JobService interface {
	CreateJob(ctx context.Context, cmd CreateJobCommand) (domain.TranslationJob, error)
	GetJob(ctx context.Context, ownerID, projectID, jobID string) (domain.TranslationJob, error)
	ListJobs(ctx context.Context, ownerID, projectID string) ([]domain.TranslationJob, error)
	CancelJob(ctx context.Context, ownerID, projectID, jobID string) (domain.TranslationJob, error)
}

// CreateJobCommand queues a machine-translation job.
type CreateJobCommand struct {
	OwnerID      string
	ProjectID    string
	Mode         domain.JobMode
	TargetLocale string
	KeyIDs       []string
}

// TranslationJobPublisher publishes job messages to the background queue.
type TranslationJobPublisher interface {
	PublishTranslationJob(ctx context.Context, message TranslationJobMessage) (string, error)
}

// TranslationJobMessage is the payload delivered to the translation worker via Pub/Sub.
type TranslationJobMessage struct {
	JobID        string    `json:"jobId"`
	ProjectID    string    `json:"projectId"`
	Mode         string    `json:"mode"`
	TargetLocale string    `json:"targetLocale"`
	KeyIDs       []string  `json:"keyIds,omitempty"`
	QueuedAt     time.Time `json:"queuedAt"`
}

// ExportArchive is a packaged translation export ready to stream to a client.
type ExportArchive struct {
	Filename    string
	ContentType string
	Content     []byte
	ObjectURI   string
}

// ExportService aggregates a project's translations into a zip archive of
// per-locale JSON files.
type ExportService interface {
	Export(ctx context.Context, ownerID, projectID string) (ExportArchive, error)
}

func isRepoNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

func isRepoConflict(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}
