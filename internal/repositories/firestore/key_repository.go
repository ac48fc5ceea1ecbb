package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
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

const keyCollectionPattern = "projects/%s/keys"

// KeyRepository persists translation keys and serves the joined list views.
type KeyRepository struct {
	provider     *pfirestore.Provider
	translations *TranslationRepository
}

// NewKeyRepository constructs a Firestore-backed key repository. The
// translation repository feeds the joined list views.
func NewKeyRepository(provider *pfirestore.Provider, translations *TranslationRepository) (*KeyRepository, error) {
	if provider == nil {
		return nil, errors.New("key repository requires firestore provider")
	}
	if translations == nil {
		return nil, errors.New("key repository requires translation repository")
	}
	return &KeyRepository{provider: provider, translations: translations}, nil
}

// Insert creates the key, rejecting duplicate full keys within the project.
func (r *KeyRepository) Insert(ctx context.Context, key domain.Key) error {
	coll, err := r.collection(ctx, key.ProjectID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(key.ID) == "" {
		return errors.New("key repository: key id is required")
	}

	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		dupQuery := coll.Where("fullKey", "==", key.FullKey).Limit(1)
		snaps, err := tx.Documents(dupQuery).GetAll()
		if err != nil {
			return err
		}
		if len(snaps) > 0 {
			return status.Error(codes.AlreadyExists, "key already exists")
		}
		return tx.Create(coll.Doc(key.ID), encodeKey(key))
	})
	return pfirestore.WrapError("keys.insert", err)
}

// FindByID loads a key by its document ID.
func (r *KeyRepository) FindByID(ctx context.Context, projectID, keyID string) (domain.Key, error) {
	coll, err := r.collection(ctx, projectID)
	if err != nil {
		return domain.Key{}, err
	}
	snap, err := coll.Doc(keyID).Get(ctx)
	if err != nil {
		return domain.Key{}, pfirestore.WrapError("keys.find", err)
	}
	return decodeKey(projectID, snap)
}

// FindByFullKey loads a key by its dotted name.
func (r *KeyRepository) FindByFullKey(ctx context.Context, projectID, fullKey string) (domain.Key, error) {
	coll, err := r.collection(ctx, projectID)
	if err != nil {
		return domain.Key{}, err
	}

	iter := coll.Where("fullKey", "==", fullKey).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return domain.Key{}, pfirestore.WrapError("keys.findByFullKey", status.Error(codes.NotFound, "key not found"))
	}
	if err != nil {
		return domain.Key{}, pfirestore.WrapError("keys.findByFullKey", err)
	}
	return decodeKey(projectID, snap)
}

// ListByProject returns every key ordered by full key.
func (r *KeyRepository) ListByProject(ctx context.Context, projectID string) ([]domain.Key, error) {
	coll, err := r.collection(ctx, projectID)
	if err != nil {
		return nil, err
	}

	iter := coll.OrderBy("fullKey", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var keys []domain.Key
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("keys.list", err)
		}
		key, err := decodeKey(projectID, snap)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Delete removes the key document. Associated translations are removed by the
// owning service.
func (r *KeyRepository) Delete(ctx context.Context, projectID, keyID string) error {
	coll, err := r.collection(ctx, projectID)
	if err != nil {
		return err
	}
	_, err = coll.Doc(keyID).Delete(ctx)
	return pfirestore.WrapError("keys.delete", err)
}

// ListView joins the project's keys with the locale's translation values and
// applies the search and missing-only filters before paging. The total counts
// the filtered rows, not the page.
func (r *KeyRepository) ListView(ctx context.Context, projectID, locale string, filter repositories.KeyListFilter) (domain.Page[domain.KeyRow], error) {
	keys, err := r.ListByProject(ctx, projectID)
	if err != nil {
		return domain.Page[domain.KeyRow]{}, err
	}

	values, err := r.translations.ValuesByLocale(ctx, projectID, locale)
	if err != nil {
		return domain.Page[domain.KeyRow]{}, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	rows := make([]domain.KeyRow, 0, len(keys))
	for _, key := range keys {
		row := domain.KeyRow{
			KeyID:     key.ID,
			FullKey:   key.FullKey,
			UpdatedAt: key.UpdatedAt,
		}
		if translation, ok := values[key.ID]; ok {
			row.Value = translation.Value
			row.IsMachineTranslated = translation.IsMachineTranslated
			row.UpdatedAt = translation.UpdatedAt
		}

		if filter.MissingOnly && row.Value != nil {
			continue
		}
		if search != "" && !rowMatchesSearch(row, search) {
			continue
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].FullKey < rows[j].FullKey })

	total := len(rows)
	rows = pageSlice(rows, filter.Offset, filter.Limit)

	return domain.Page[domain.KeyRow]{Items: rows, Total: total}, nil
}

func rowMatchesSearch(row domain.KeyRow, search string) bool {
	if strings.Contains(strings.ToLower(row.FullKey), search) {
		return true
	}
	if row.Value != nil && strings.Contains(strings.ToLower(*row.Value), search) {
		return true
	}
	return false
}

func pageSlice(rows []domain.KeyRow, offset, limit int) []domain.KeyRow {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []domain.KeyRow{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func (r *KeyRepository) collection(ctx context.Context, projectID string) (*firestore.CollectionRef, error) {
	if r == nil || r.provider == nil {
		return nil, errors.New("key repository not initialised")
	}
	if strings.TrimSpace(projectID) == "" {
		return nil, errors.New("key repository: project id is required")
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(fmt.Sprintf(keyCollectionPattern, projectID)), nil
}

type keyDocument struct {
	FullKey   string    `firestore:"fullKey"`
	CreatedAt time.Time `firestore:"createdAt"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func encodeKey(key domain.Key) keyDocument {
	return keyDocument{
		FullKey:   key.FullKey,
		CreatedAt: key.CreatedAt.UTC(),
		UpdatedAt: key.UpdatedAt.UTC(),
	}
}

func decodeKey(projectID string, snap *firestore.DocumentSnapshot) (domain.Key, error) {
	var doc keyDocument
	if err := snap.DataTo(&doc); err != nil {
		return domain.Key{}, fmt.Errorf("decode key %s: %w", snap.Ref.ID, err)
	}
	return domain.Key{
		ID:        snap.Ref.ID,
		ProjectID: projectID,
		FullKey:   doc.FullKey,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// Ensure interface compliance.
var _ repositories.KeyRepository = (*KeyRepository)(nil)
