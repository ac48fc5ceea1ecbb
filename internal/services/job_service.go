package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/karoldydo/i18n-mate-sub003/internal/domain"
	"github.com/karoldydo/i18n-mate-sub003/internal/platform/requestctx"
	"github.com/karoldydo/i18n-mate-sub003/internal/repositories"
)

// JobServiceDeps enumerates collaborators required to construct the service.
type JobServiceDeps struct {
	Projects    repositories.ProjectRepository
	Locales     repositories.LocaleRepository
	Keys        repositories.KeyRepository
	Jobs        repositories.JobRepository
	Publisher   TranslationJobPublisher
	Clock       func() time.Time
	IDGenerator func() string
}

type jobService struct {
	projects  repositories.ProjectRepository
	locales   repositories.LocaleRepository
	keys      repositories.KeyRepository
	jobs      repositories.JobRepository
	publisher TranslationJobPublisher
	clock     func() time.Time
	newID     func() string
}

// NewJobService wires dependencies into a JobService implementation.
func NewJobService(deps JobServiceDeps) (JobService, error) {
	if deps.Projects == nil {
		return nil, errors.New("job service: project repository is required")
	}
	if deps.Locales == nil {
		return nil, errors.New("job service: locale repository is required")
	}
	if deps.Keys == nil {
		return nil, errors.New("job service: key repository is required")
	}
	if deps.Jobs == nil {
		return nil, errors.New("job service: job repository is required")
	}
	if deps.Publisher == nil {
		return nil, errors.New("job service: publisher is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	return &jobService{
		projects:  deps.Projects,
		locales:   deps.Locales,
		keys:      deps.Keys,
		jobs:      deps.Jobs,
		publisher: deps.Publisher,
		clock:     func() time.Time { return clock().UTC() },
		newID:     idGen,
	}, nil
}

func (s *jobService) CreateJob(ctx context.Context, cmd CreateJobCommand) (domain.TranslationJob, error) {
	project, err := s.loadOwnedProject(ctx, cmd.OwnerID, cmd.ProjectID)
	if err != nil {
		return domain.TranslationJob{}, err
	}

	targetLocale := strings.TrimSpace(cmd.TargetLocale)
	if targetLocale == "" || targetLocale == project.DefaultLocale {
		return domain.TranslationJob{}, fmt.Errorf("%w: target locale must be a non-default project locale", ErrInvalidInput)
	}
	if _, err := s.locales.FindByCode(ctx, project.ID, targetLocale); err != nil {
		if isRepoNotFound(err) {
			return domain.TranslationJob{}, ErrLocaleNotFound
		}
		return domain.TranslationJob{}, err
	}

	keyIDs, total, err := s.resolveJobKeys(ctx, project.ID, cmd)
	if err != nil {
		return domain.TranslationJob{}, err
	}

	now := s.clock()
	job := domain.TranslationJob{
		ID:           s.newID(),
		ProjectID:    project.ID,
		Mode:         cmd.Mode,
		TargetLocale: targetLocale,
		KeyIDs:       keyIDs,
		Status:       domain.JobStatusPending,
		TotalKeys:    total,
		CreatedBy:    strings.TrimSpace(cmd.OwnerID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.jobs.Insert(ctx, job); err != nil {
		if isRepoConflict(err) {
			return domain.TranslationJob{}, ErrJobAlreadyActive
		}
		return domain.TranslationJob{}, err
	}

	msg := TranslationJobMessage{
		JobID:        job.ID,
		ProjectID:    job.ProjectID,
		Mode:         string(job.Mode),
		TargetLocale: job.TargetLocale,
		KeyIDs:       job.KeyIDs,
		QueuedAt:     job.CreatedAt,
	}
	if _, err := s.publisher.PublishTranslationJob(ctx, msg); err != nil {
		// The job must not stay pending when the worker never hears about it.
		update := repositories.JobStatusUpdate{Status: domain.JobStatusFailed}
		if _, failErr := s.jobs.UpdateStatus(ctx, job.ProjectID, job.ID, update); failErr != nil {
			requestctx.Logger(ctx).Error("mark unpublished job failed",
				zap.String("job_id", job.ID),
				zap.Error(failErr),
			)
		}
		return domain.TranslationJob{}, fmt.Errorf("publish translation job: %w", err)
	}

	return job, nil
}

func (s *jobService) resolveJobKeys(ctx context.Context, projectID string, cmd CreateJobCommand) ([]string, int, error) {
	switch cmd.Mode {
	case domain.JobModeAll:
		keys, err := s.keys.ListByProject(ctx, projectID)
		if err != nil {
			return nil, 0, err
		}
		return nil, len(keys), nil
	case domain.JobModeSelected, domain.JobModeSingle:
		keyIDs := dedupeKeyIDs(cmd.KeyIDs)
		if len(keyIDs) == 0 {
			return nil, 0, fmt.Errorf("%w: at least one key id is required", ErrInvalidInput)
		}
		if cmd.Mode == domain.JobModeSingle && len(keyIDs) != 1 {
			return nil, 0, fmt.Errorf("%w: single mode requires exactly one key id", ErrInvalidInput)
		}
		for _, keyID := range keyIDs {
			if _, err := s.keys.FindByID(ctx, projectID, keyID); err != nil {
				if isRepoNotFound(err) {
					return nil, 0, ErrKeyNotFound
				}
				return nil, 0, err
			}
		}
		return keyIDs, len(keyIDs), nil
	default:
		return nil, 0, fmt.Errorf("%w: unknown job mode %q", ErrInvalidInput, cmd.Mode)
	}
}

func (s *jobService) GetJob(ctx context.Context, ownerID, projectID, jobID string) (domain.TranslationJob, error) {
	project, err := s.loadOwnedProject(ctx, ownerID, projectID)
	if err != nil {
		return domain.TranslationJob{}, err
	}

	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return domain.TranslationJob{}, fmt.Errorf("%w: job id is required", ErrInvalidInput)
	}
	job, err := s.jobs.FindByID(ctx, project.ID, jobID)
	if err != nil {
		if isRepoNotFound(err) {
			return domain.TranslationJob{}, ErrJobNotFound
		}
		return domain.TranslationJob{}, err
	}
	return job, nil
}

func (s *jobService) ListJobs(ctx context.Context, ownerID, projectID string) ([]domain.TranslationJob, error) {
	project, err := s.loadOwnedProject(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	return s.jobs.ListByProject(ctx, project.ID)
}

func (s *jobService) CancelJob(ctx context.Context, ownerID, projectID, jobID string) (domain.TranslationJob, error) {
	job, err := s.GetJob(ctx, ownerID, projectID, jobID)
	if err != nil {
		return domain.TranslationJob{}, err
	}
	if !job.Status.Active() {
		return domain.TranslationJob{}, ErrJobNotCancellable
	}

	// Cancellation keeps the counters; keys translated so far stay translated.
	update := repositories.JobStatusUpdate{Status: domain.JobStatusCancelled}
	cancelled, err := s.jobs.UpdateStatus(ctx, job.ProjectID, job.ID, update)
	if err != nil {
		if isRepoConflict(err) {
			return domain.TranslationJob{}, ErrJobNotCancellable
		}
		return domain.TranslationJob{}, err
	}
	return cancelled, nil
}

func (s *jobService) loadOwnedProject(ctx context.Context, ownerID, projectID string) (domain.Project, error) {
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

func dedupeKeyIDs(keyIDs []string) []string {
	seen := make(map[string]struct{}, len(keyIDs))
	out := make([]string, 0, len(keyIDs))
	for _, keyID := range keyIDs {
		keyID = strings.TrimSpace(keyID)
		if keyID == "" {
			continue
		}
		if _, ok := seen[keyID]; ok {
			continue
		}
		seen[keyID] = struct{}{}
		out = append(out, keyID)
	}
	return out
}
