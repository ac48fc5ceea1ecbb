package domain

import (
	"strings"
	"time"
)

// Project is the top-level container for translation keys and locales.
type Project struct {
	ID            string
	OwnerID       string
	Name          string
	Description   string
	Prefix        string
	DefaultLocale string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProjectLocale is a locale enabled for a project. Exactly one locale per
// project carries IsDefault and that locale cannot be deleted.
type ProjectLocale struct {
	ProjectID string
	Code      string
	Label     string
	IsDefault bool
	CreatedAt time.Time
}

// Key identifies a single translatable string within a project. FullKey is
// the prefix plus a dotted path and never changes shape after creation.
type Key struct {
	ID        string
	ProjectID string
	FullKey   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpdateSource tags who wrote a translation value.
type UpdateSource string

const (
	// UpdateSourceUser marks values written by a human editor.
	UpdateSourceUser UpdateSource = "user"
	// UpdateSourceSystem marks values written by a translation job.
	UpdateSourceSystem UpdateSource = "system"
)

// Translation is the (key, locale) cell. A nil Value means the translation
// is missing; the empty string is never stored.
type Translation struct {
	ProjectID           string
	KeyID               string
	Locale              string
	Value               *string
	IsMachineTranslated bool
	UpdatedAt           time.Time
	UpdatedBy           string
	UpdatedSource       UpdateSource
}

// KeyRow is the list-view projection joining a key with one locale's value.
type KeyRow struct {
	KeyID               string
	FullKey             string
	Value               *string
	IsMachineTranslated bool
	UpdatedAt           time.Time
}

// Page wraps a list-view result with its total row count.
type Page[T any] struct {
	Items []T
	Total int
}

// JobMode selects which keys a translation job covers.
type JobMode string

const (
	JobModeAll      JobMode = "all"
	JobModeSelected JobMode = "selected"
	JobModeSingle   JobMode = "single"
)

// JobStatus is the lifecycle state of a translation job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Active reports whether the job still occupies the project's single active
// job slot.
func (s JobStatus) Active() bool {
	return s == JobStatusPending || s == JobStatusRunning
}

// TranslationJob tracks a machine-translation run against one target locale.
type TranslationJob struct {
	ID            string
	ProjectID     string
	Mode          JobMode
	TargetLocale  string
	KeyIDs        []string
	Status        JobStatus
	CompletedKeys int
	FailedKeys    int
	TotalKeys     int
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NormalizeValue trims the raw input and maps empty/whitespace-only input to
// nil, the canonical "no translation" representation.
func NormalizeValue(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
