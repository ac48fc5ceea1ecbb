package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/karoldydo/i18n-mate-sub003/internal/domain"
	pfirestore "github.com/karoldydo/i18n-mate-sub003/internal/platform/firestore"
	"github.com/karoldydo/i18n-mate-sub003/internal/repositories"
)

const translationCollectionPattern = "projects/%s/translations"

// TranslationRepository stores per-(key, locale) translation cells in a flat
// collection keyed by "<keyID>_<locale>".
type TranslationRepository struct {
	provider *pfirestore.Provider
}

// NewTranslationRepository constructs a Firestore-backed translation repository.
func NewTranslationRepository(provider *pfirestore.Provider) (*TranslationRepository, error) {
	if provider == nil {
		return nil, errors.New("translation repository requires firestore provider")
	}
	return &TranslationRepository{provider: provider}, nil
}

// Upsert writes the translation value. A nil value deletes the stored
// document so missing translations never persist as empty strings.
func (r *TranslationRepository) Upsert(ctx context.Context, translation domain.Translation) error {
	coll, err := r.collection(ctx, translation.ProjectID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(translation.KeyID) == "" || strings.TrimSpace(translation.Locale) == "" {
		return errors.New("translation repository: key id and locale are required")
	}

	docRef := coll.Doc(translationDocID(translation.KeyID, translation.Locale))

	if translation.Value == nil {
		_, err = docRef.Delete(ctx)
		return pfirestore.WrapError("translations.clear", err)
	}

	_, err = docRef.Set(ctx, encodeTranslation(translation))
	return pfirestore.WrapError("translations.upsert", err)
}

// Find loads one translation cell.
func (r *TranslationRepository) Find(ctx context.Context, projectID, keyID, locale string) (domain.Translation, error) {
	coll, err := r.collection(ctx, projectID)
	if err != nil {
		return domain.Translation{}, err
	}
	snap, err := coll.Doc(translationDocID(keyID, locale)).Get(ctx)
	if err != nil {
		return domain.Translation{}, pfirestore.WrapError("translations.find", err)
	}
	return decodeTranslation(projectID, snap)
}

// ValuesByLocale returns the stored values for one locale keyed by key ID.
func (r *TranslationRepository) ValuesByLocale(ctx context.Context, projectID, locale string) (map[string]domain.Translation, error) {
	coll, err := r.collection(ctx, projectID)
	if err != nil {
		return nil, err
	}

	iter := coll.Where("locale", "==", locale).Documents(ctx)
	defer iter.Stop()

	values := make(map[string]domain.Translation)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("translations.listByLocale", err)
		}
		translation, err := decodeTranslation(projectID, snap)
		if err != nil {
			return nil, err
		}
		values[translation.KeyID] = translation
	}
	return values, nil
}

// DeleteByKey removes every locale's translation for the given key.
func (r *TranslationRepository) DeleteByKey(ctx context.Context, projectID, keyID string) error {
	coll, err := r.collection(ctx, projectID)
	if err != nil {
		return err
	}

	iter := coll.Where("keyId", "==", keyID).Documents(ctx)
	defer iter.Stop()

	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	writer := client.BulkWriter(ctx)

	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			writer.End()
			return pfirestore.WrapError("translations.deleteByKey", err)
		}
		if _, err := writer.Delete(snap.Ref); err != nil {
			writer.End()
			return pfirestore.WrapError("translations.deleteByKey", err)
		}
	}
	writer.End()
	return nil
}

func (r *TranslationRepository) collection(ctx context.Context, projectID string) (*firestore.CollectionRef, error) {
	if r == nil || r.provider == nil {
		return nil, errors.New("translation repository not initialised")
	}
	if strings.TrimSpace(projectID) == "" {
		return nil, errors.New("translation repository: project id is required")
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(fmt.Sprintf(translationCollectionPattern, projectID)), nil
}

func translationDocID(keyID, locale string) string {
	return keyID + "_" + locale
}

type translationDocument struct {
	KeyID               string    `firestore:"keyId"`
	Locale              string    `firestore:"locale"`
	Value               string    `firestore:"value"`
	IsMachineTranslated bool      `firestore:"isMachineTranslated"`
	UpdatedAt           time.Time `firestore:"updatedAt"`
	UpdatedBy           string    `firestore:"updatedBy"`
	UpdatedSource       string    `firestore:"updatedSource"`
}

func encodeTranslation(translation domain.Translation) translationDocument {
	value := ""
	if translation.Value != nil {
		value = *translation.Value
	}
	return translationDocument{
		KeyID:               translation.KeyID,
		Locale:              translation.Locale,
		Value:               value,
		IsMachineTranslated: translation.IsMachineTranslated,
		UpdatedAt:           translation.UpdatedAt.UTC(),
		UpdatedBy:           translation.UpdatedBy,
		UpdatedSource:       string(translation.UpdatedSource),
	}
}

func decodeTranslation(projectID string, snap *firestore.DocumentSnapshot) (domain.Translation, error) {
	var doc translationDocument
	if err := snap.DataTo(&doc); err != nil {
		return domain.Translation{}, fmt.Errorf("decode translation %s: %w", snap.Ref.ID, err)
	}
	value := doc.Value
	return domain.Translation{
		ProjectID:           projectID,
		KeyID:               doc.KeyID,
		Locale:              doc.Locale,
		Value:               &value,
		IsMachineTranslated: doc.IsMachineTranslated,
		UpdatedAt:           doc.UpdatedAt,
		UpdatedBy:           doc.UpdatedBy,
		UpdatedSource:       domain.UpdateSource(doc.UpdatedSource),
	}, nil
}

// Ensure interface compliance.
var _ repositories.TranslationRepository = (*TranslationRepository)(nil)
