package firestore

import (
	"errors"

	pfirestore "github.com/karoldydo/i18n-mate-sub003/internal/platform/firestore"
	"github.com/karoldydo/i18n-mate-sub003/internal/repositories"
)

// Registry wires the Firestore repositories behind the repositories.Registry
// interface.
type Registry struct {
	provider *pfirestore.Provider

	projects     *ProjectRepository
	locales      *LocaleRepository
	keys         *KeyRepository
	translations *TranslationRepository
	jobs         *JobRepository
}

// NewRegistry constructs all Firestore repositories sharing one provider.
func NewRegistry(provider *pfirestore.Provider) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("registry requires firestore provider")
	}

	projects, err := NewProjectRepository(provider)
	if err != nil {
		return nil, err
	}
	locales, err := NewLocaleRepository(provider)
	if err != nil {
		return nil, err
	}
	translations, err := NewTranslationRepository(provider)
	if err != nil {
		return nil, err
	}
	keys, err := NewKeyRepository(provider, translations)
	if err != nil {
		return nil, err
	}
	jobs, err := NewJobRepository(provider)
	if err != nil {
		return nil, err
	}

	return &Registry{
		provider:     provider,
		projects:     projects,
		locales:      locales,
		keys:         keys,
		translations: translations,
		jobs:         jobs,
	}, nil
}

// Close releases the shared Firestore client.
func (r *Registry) Close() error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Close()
}

// Projects returns the project repository.
func (r *Registry) Projects() repositories.ProjectRepository { return r.projects }

// Locales returns the locale repository.
func (r *Registry) Locales() repositories.LocaleRepository { return r.locales }

// Keys returns the key repository.
func (r *Registry) Keys() repositories.KeyRepository { return r.keys }

// Translations returns the translation repository.
func (r *Registry) Translations() repositories.TranslationRepository { return r.translations }

// Jobs returns the job repository.
func (r *Registry) Jobs() repositories.JobRepository { return r.jobs }

// Ensure interface compliance.
var _ repositories.Registry = (*Registry)(nil)
