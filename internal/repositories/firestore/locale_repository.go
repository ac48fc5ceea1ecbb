package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/karoldydo/i18n-mate-sub003/internal/domain"
	pfirestore "github.com/karoldydo/i18n-mate-sub003/internal/platform/firestore"
	"github.com/karoldydo/i18n-mate-sub003/internal/repositories"
)

const localeCollectionPattern = "projects/%s/locales"

// LocaleRepository manages project locale documents. The locale code doubles
// as the document ID, which gives uniqueness for free.
type LocaleRepository struct {
	provider *pfirestore.Provider
}

// NewLocaleRepository constructs a Firestore-backed locale repository.
func NewLocaleRepository(provider *pfirestore.Provider) (*LocaleRepository, error) {
	if provider == nil {
		return nil, errors.New("locale repository requires firestore provider")
	}
	return &LocaleRepository{provider: provider}, nil
}

// Insert adds the locale, rejecting duplicates.
func (r *LocaleRepository) Insert(ctx context.Context, locale domain.ProjectLocale) error {
	coll, err := r.collection(ctx, locale.ProjectID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(locale.Code) == "" {
		return errors.New("locale repository: code is required")
	}
	_, err = coll.Doc(locale.Code).Create(ctx, encodeLocale(locale))
	return pfirestore.WrapError("locales.insert", err)
}

// FindByCode loads one locale by its code.
func (r *LocaleRepository) FindByCode(ctx context.Context, projectID, code string) (domain.ProjectLocale, error) {
	coll, err := r.collection(ctx, projectID)
	if err != nil {
		return domain.ProjectLocale{}, err
	}
	snap, err := coll.Doc(code).Get(ctx)
	if err != nil {
		return domain.ProjectLocale{}, pfirestore.WrapError("locales.find", err)
	}
	return decodeLocale(projectID, snap)
}

// ListByProject returns all locales ordered by code, default first.
func (r *LocaleRepository) ListByProject(ctx context.Context, projectID string) ([]domain.ProjectLocale, error) {
	coll, err := r.collection(ctx, projectID)
	if err != nil {
		return nil, err
	}

	iter := coll.OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var locales []domain.ProjectLocale
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("locales.list", err)
		}
		locale, err := decodeLocale(projectID, snap)
		if err != nil {
			return nil, err
		}
		if locale.IsDefault {
			locales = append([]domain.ProjectLocale{locale}, locales...)
			continue
		}
		locales = append(locales, locale)
	}
	return locales, nil
}

// Delete removes a non-default locale. Deleting the default locale fails with
// a conflict.
func (r *LocaleRepository) Delete(ctx context.Context, projectID, code string) error {
	coll, err := r.collection(ctx, projectID)
	if err != nil {
		return err
	}

	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docRef := coll.Doc(code)
		snap, err := tx.Get(docRef)
		if err != nil {
			return err
		}
		var doc localeDocument
		if err := snap.DataTo(&doc); err != nil {
			return err
		}
		if doc.IsDefault {
			return status.Error(codes.FailedPrecondition, "default locale cannot be deleted")
		}
		return tx.Delete(docRef)
	})
	return pfirestore.WrapError("locales.delete", err)
}

func (r *LocaleRepository) collection(ctx context.Context, projectID string) (*firestore.CollectionRef, error) {
	if r == nil || r.provider == nil {
		return nil, errors.New("locale repository not initialised")
	}
	if strings.TrimSpace(projectID) == "" {
		return nil, errors.New("locale repository: project id is required")
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(fmt.Sprintf(localeCollectionPattern, projectID)), nil
}

type localeDocument struct {
	Label     string    `firestore:"label"`
	IsDefault bool      `firestore:"isDefault"`
	CreatedAt time.Time `firestore:"createdAt"`
}

func encodeLocale(locale domain.ProjectLocale) localeDocument {
	return localeDocument{
		Label:     locale.Label,
		IsDefault: locale.IsDefault,
		CreatedAt: locale.CreatedAt.UTC(),
	}
}

func decodeLocale(projectID string, snap *firestore.DocumentSnapshot) (domain.ProjectLocale, error) {
	var doc localeDocument
	if err := snap.DataTo(&doc); err != nil {
		return domain.ProjectLocale{}, fmt.Errorf("decode locale %s: %w", snap.Ref.ID, err)
	}
	return domain.ProjectLocale{
		ProjectID: projectID,
		Code:      snap.Ref.ID,
		Label:     doc.Label,
		IsDefault: doc.IsDefault,
		CreatedAt: doc.CreatedAt,
	}, nil
}

// Ensure interface compliance.
var _ repositories.LocaleRepository = (*LocaleRepository)(nil)
