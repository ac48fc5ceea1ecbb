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

const jobCollectionPattern = "projects/%s/jobs"

var activeJobStatuses = []string{
	string(domain.JobStatusPending),
	string(domain.JobStatusRunning),
}

// JobRepository persists translation job lifecycle state.
type JobRepository struct {
	provider *pfirestore.Provider
}

// NewJobRepository constructs a Firestore-backed job repository.
func NewJobRepository(provider *pfirestore.Provider) (*JobRepository, error) {
	if provider == nil {
		return nil, errors.New("job repository requires firestore provider")
	}
	return &JobRepository{provider: provider}, nil
}

// Insert creates the job. A project may hold at most one active job, so the
// write fails with a conflict when another pending or running job exists.
func (r *JobRepository) Insert(ctx context.Context, job domain.TranslationJob) error {
	coll, err := r.collection(ctx, job.ProjectID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(job.ID) == "" {
		return errors.New("job repository: job id is required")
	}

	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		activeQuery := coll.Where("status", "in", activeJobStatuses).Limit(1)
		snaps, err := tx.Documents(activeQuery).GetAll()
		if err != nil {
			return err
		}
		if len(snaps) > 0 {
			return status.Error(codes.FailedPrecondition, "project already has an active job")
		}
		return tx.Create(coll.Doc(job.ID), encodeJob(job))
	})
	return pfirestore.WrapError("jobs.insert", err)
}

// FindByID loads a job by its document ID.
func (r *JobRepository) FindByID(ctx context.Context, projectID, jobID string) (domain.TranslationJob, error) {
	coll, err := r.collection(ctx, projectID)
	if err != nil {
		return domain.TranslationJob{}, err
	}
	snap, err := coll.Doc(jobID).Get(ctx)
	if err != nil {
		return domain.TranslationJob{}, pfirestore.WrapError("jobs.find", err)
	}
	return decodeJob(projectID, snap)
}

// ListByProject returns all jobs newest first.
func (r *JobRepository) ListByProject(ctx context.Context, projectID string) ([]domain.TranslationJob, error) {
	coll, err := r.collection(ctx, projectID)
	if err != nil {
		return nil, err
	}

	iter := coll.OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var jobs []domain.TranslationJob
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("jobs.list", err)
		}
		job, err := decodeJob(projectID, snap)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// FindActive returns the project's pending or running job, or a not-found
// error when no job is active.
func (r *JobRepository) FindActive(ctx context.Context, projectID string) (domain.TranslationJob, error) {
	coll, err := r.collection(ctx, projectID)
	if err != nil {
		return domain.TranslationJob{}, err
	}

	iter := coll.Where("status", "in", activeJobStatuses).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return domain.TranslationJob{}, pfirestore.WrapError("jobs.findActive", status.Error(codes.NotFound, "no active job"))
	}
	if err != nil {
		return domain.TranslationJob{}, pfirestore.WrapError("jobs.findActive", err)
	}
	return decodeJob(projectID, snap)
}

// UpdateStatus transitions the job. Terminal states are immutable; attempting
// to change one fails with a conflict.
func (r *JobRepository) UpdateStatus(ctx context.Context, projectID, jobID string, update repositories.JobStatusUpdate) (domain.TranslationJob, error) {
	coll, err := r.collection(ctx, projectID)
	if err != nil {
		return domain.TranslationJob{}, err
	}

	var updated domain.TranslationJob
	err = r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docRef := coll.Doc(jobID)
		snap, err := tx.Get(docRef)
		if err != nil {
			return err
		}
		job, err := decodeJob(projectID, snap)
		if err != nil {
			return err
		}

		if !job.Status.Active() && update.Status != job.Status {
			return status.Error(codes.FailedPrecondition, "job already in a terminal state")
		}

		job.Status = update.Status
		if update.CompletedKeys != nil {
			job.CompletedKeys = *update.CompletedKeys
		}
		if update.FailedKeys != nil {
			job.FailedKeys = *update.FailedKeys
		}
		job.UpdatedAt = time.Now().UTC()

		if err := tx.Set(docRef, encodeJob(job)); err != nil {
			return err
		}
		updated = job
		return nil
	})
	if err != nil {
		return domain.TranslationJob{}, pfirestore.WrapError("jobs.updateStatus", err)
	}
	return updated, nil
}

func (r *JobRepository) collection(ctx context.Context, projectID string) (*firestore.CollectionRef, error) {
	if r == nil || r.provider == nil {
		return nil, errors.New("job repository not initialised")
	}
	if strings.TrimSpace(projectID) == "" {
		return nil, errors.New("job repository: project id is required")
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(fmt.Sprintf(jobCollectionPattern, projectID)), nil
}

type jobDocument struct {
	Mode          string    `firestore:"mode"`
	TargetLocale  string    `firestore:"targetLocale"`
	KeyIDs        []string  `firestore:"keyIds"`
	Status        string    `firestore:"status"`
	CompletedKeys int       `firestore:"completedKeys"`
	FailedKeys    int       `firestore:"failedKeys"`
	TotalKeys     int       `firestore:"totalKeys"`
	CreatedBy     string    `firestore:"createdBy"`
	CreatedAt     time.Time `firestore:"createdAt"`
	UpdatedAt     time.Time `firestore:"updatedAt"`
}

func encodeJob(job domain.TranslationJob) jobDocument {
	return jobDocument{
		Mode:          string(job.Mode),
		TargetLocale:  job.TargetLocale,
		KeyIDs:        job.KeyIDs,
		Status:        string(job.Status),
		CompletedKeys: job.CompletedKeys,
		FailedKeys:    job.FailedKeys,
		TotalKeys:     job.TotalKeys,
		CreatedBy:     job.CreatedBy,
		CreatedAt:     job.CreatedAt.UTC(),
		UpdatedAt:     job.UpdatedAt.UTC(),
	}
}

func decodeJob(projectID string, snap *firestore.DocumentSnapshot) (domain.TranslationJob, error) {
	var doc jobDocument
	if err := snap.DataTo(&doc); err != nil {
		return domain.TranslationJob{}, fmt.Errorf("decode job %s: %w", snap.Ref.ID, err)
	}
	return domain.TranslationJob{
		ID:            snap.Ref.ID,
		ProjectID:     projectID,
		Mode:          domain.JobMode(doc.Mode),
		TargetLocale:  doc.TargetLocale,
		KeyIDs:        doc.KeyIDs,
		Status:        domain.JobStatus(doc.Status),
		CompletedKeys: doc.CompletedKeys,
		FailedKeys:    doc.FailedKeys,
		TotalKeys:     doc.TotalKeys,
		CreatedBy:     doc.CreatedBy,
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}

// Ensure interface compliance.
var _ repositories.JobRepository = (*JobRepository)(nil)
