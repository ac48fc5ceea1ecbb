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

const projectCollection = "projects"

// ProjectRepository persists project documents in Firestore.
type ProjectRepository struct {
	provider *pfirestore.Provider
}

// NewProjectRepository constructs a Firestore-backed project repository.
func NewProjectRepository(provider *pfirestore.Provider) (*ProjectRepository, error) {
	if provider == nil {
		return nil, errors.New("project repository requires firestore provider")
	}
	return &ProjectRepository{provider: provider}, nil
}

// Insert creates the project, rejecting duplicate names within one owner.
func (r *ProjectRepository) Insert(ctx context.Context, project domain.Project) error {
	client, err := r.client(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(project.ID) == "" {
		return errors.New("project repository: project id is required")
	}

	coll := client.Collection(projectCollection)
	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		dupQuery := coll.
			Where("ownerId", "==", project.OwnerID).
			Where("name", "==", project.Name).
			Limit(1)
		snaps, err := tx.Documents(dupQuery).GetAll()
		if err != nil {
			return err
		}
		if len(snaps) > 0 {
			return status.Error(codes.AlreadyExists, "project name already in use")
		}
		return tx.Create(coll.Doc(project.ID), encodeProject(project))
	})
	return pfirestore.WrapError("projects.insert", err)
}

// FindByID loads a single project.
func (r *ProjectRepository) FindByID(ctx context.Context, projectID string) (domain.Project, error) {
	client, err := r.client(ctx)
	if err != nil {
		return domain.Project{}, err
	}
	snap, err := client.Collection(projectCollection).Doc(projectID).Get(ctx)
	if err != nil {
		return domain.Project{}, pfirestore.WrapError("projects.find", err)
	}
	return decodeProject(snap)
}

// ListByOwner returns the owner's projects ordered by creation time.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error) {
	client, err := r.client(ctx)
	if err != nil {
		return nil, err
	}

	iter := client.Collection(projectCollection).
		Where("ownerId", "==", ownerID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var projects []domain.Project
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("projects.list", err)
		}
		project, err := decodeProject(snap)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, nil
}

// Update overwrites the mutable project fields.
func (r *ProjectRepository) Update(ctx context.Context, project domain.Project) error {
	client, err := r.client(ctx)
	if err != nil {
		return err
	}
	_, err = client.Collection(projectCollection).Doc(project.ID).Update(ctx, []firestore.Update{
		{Path: "name", Value: project.Name},
		{Path: "description", Value: project.Description},
		{Path: "updatedAt", Value: project.UpdatedAt.UTC()},
	})
	return pfirestore.WrapError("projects.update", err)
}

// Delete removes the project document. Child collections are removed by the
// owning service.
func (r *ProjectRepository) Delete(ctx context.Context, projectID string) error {
	client, err := r.client(ctx)
	if err != nil {
		return err
	}
	_, err = client.Collection(projectCollection).Doc(projectID).Delete(ctx)
	return pfirestore.WrapError("projects.delete", err)
}

func (r *ProjectRepository) client(ctx context.Context) (*firestore.Client, error) {
	if r == nil || r.provider == nil {
		return nil, errors.New("project repository not initialised")
	}
	return r.provider.Client(ctx)
}

type projectDocument struct {
	OwnerID       string    `firestore:"ownerId"`
	Name          string    `firestore:"name"`
	Description   string    `firestore:"description"`
	Prefix        string    `firestore:"prefix"`
	DefaultLocale string    `firestore:"defaultLocale"`
	CreatedAt     time.Time `firestore:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt"`
}

func encodeProject(project domain.Project) projectDocument {
	return projectDocument{
		OwnerID:       project.OwnerID,
		Name:          project.Name,
		Description:   project.Description,
		Prefix:        project.Prefix,
		DefaultLocale: project.DefaultLocale,
		CreatedAt:     project.CreatedAt.UTC(),
		UpdatedAt:     project.UpdatedAt.UTC(),
	}
}

func decodeProject(snap *firestore.DocumentSnapshot) (domain.Project, error) {
	var doc projectDocument
	if err := snap.DataTo(&doc); err != nil {
		return domain.Project{}, fmt.Errorf("decode project %s: %w", snap.Ref.ID, err)
	}
	return domain.Project{
		ID:            snap.Ref.ID,
		OwnerID:       doc.OwnerID,
		Name:          doc.Name,
		Description:   doc.Description,
		Prefix:        doc.Prefix,
		DefaultLocale: doc.DefaultLocale,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}

// Ensure interface compliance.
var _ repositories.ProjectRepository = (*ProjectRepository)(nil)
