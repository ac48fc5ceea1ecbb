package services

import (
	"context"
	"errors"
	"testing"

	"github.com/karoldydo/i18n-mate-sub003/internal/domain"
	"github.com/karoldydo/i18n-mate-sub003/internal/repositories"
)

func newJobService(t *testing.T, env *testEnv) JobService {
	t.Helper()
	svc, err := NewJobService(JobServiceDeps{
		Projects:    env.projects,
		Locales:     env.locales,
		Keys:        env.keys,
		Jobs:        env.jobs,
		Publisher:   env.publisher,
		Clock:       env.clock,
		IDGenerator: env.idGen,
	})
	if err != nil {
		t.Fatalf("NewJobService: %v", err)
	}
	return svc
}

func TestCreateJobPublishesMessage(t *testing.T) {
	env := newTestEnv()
	svc := newJobService(t, env)
	project := env.seedProject("owner-1", "App", "app", "en")
	env.seedLocale(project.ID, "fr")
	env.seedKey(project.ID, "app.home.title")
	env.seedKey(project.ID, "app.home.subtitle")

	job, err := svc.CreateJob(context.Background(), CreateJobCommand{
		OwnerID:      "owner-1",
		ProjectID:    project.ID,
		Mode:         domain.JobModeAll,
		TargetLocale: "fr",
	})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if job.Status != domain.JobStatusPending {
		t.Fatalf("expected pending job, got %s", job.Status)
	}
	if job.TotalKeys != 2 {
		t.Fatalf("expected 2 total keys, got %d", job.TotalKeys)
	}

	if len(env.publisher.messages) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(env.publisher.messages))
	}
	msg := env.publisher.messages[0]
	if msg.JobID != job.ID || msg.TargetLocale != "fr" || msg.Mode != "all" {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestCreateJobSingleActiveInvariant(t *testing.T) {
	env := newTestEnv()
	svc := newJobService(t, env)
	project := env.seedProject("owner-1", "App", "app", "en")
	env.seedLocale(project.ID, "fr")
	env.seedKey(project.ID, "app.home.title")

	cmd := CreateJobCommand{
		OwnerID:      "owner-1",
		ProjectID:    project.ID,
		Mode:         domain.JobModeAll,
		TargetLocale: "fr",
	}
	if _, err := svc.CreateJob(context.Background(), cmd); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if _, err := svc.CreateJob(context.Background(), cmd); !errors.Is(err, ErrJobAlreadyActive) {
		t.Fatalf("expected ErrJobAlreadyActive, got %v", err)
	}
}

func TestCreateJobValidation(t *testing.T) {
	env := newTestEnv()
	svc := newJobService(t, env)
	project := env.seedProject("owner-1", "App", "app", "en")
	env.seedLocale(project.ID, "fr")
	key := env.seedKey(project.ID, "app.home.title")

	// Target locale must be enabled and non-default.
	if _, err := svc.CreateJob(context.Background(), CreateJobCommand{
		OwnerID: "owner-1", ProjectID: project.ID, Mode: domain.JobModeAll, TargetLocale: "en",
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for default target, got %v", err)
	}
	if _, err := svc.CreateJob(context.Background(), CreateJobCommand{
		OwnerID: "owner-1", ProjectID: project.ID, Mode: domain.JobModeAll, TargetLocale: "de",
	}); !errors.Is(err, ErrLocaleNotFound) {
		t.Fatalf("expected ErrLocaleNotFound, got %v", err)
	}

	// Selected mode requires keys that exist.
	if _, err := svc.CreateJob(context.Background(), CreateJobCommand{
		OwnerID: "owner-1", ProjectID: project.ID, Mode: domain.JobModeSelected, TargetLocale: "fr",
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty selection, got %v", err)
	}
	if _, err := svc.CreateJob(context.Background(), CreateJobCommand{
		OwnerID: "owner-1", ProjectID: project.ID, Mode: domain.JobModeSelected, TargetLocale: "fr",
		KeyIDs: []string{"missing"},
	}); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	// Single mode takes exactly one key.
	if _, err := svc.CreateJob(context.Background(), CreateJobCommand{
		OwnerID: "owner-1", ProjectID: project.ID, Mode: domain.JobModeSingle, TargetLocale: "fr",
		KeyIDs: []string{key.ID, key.ID, "other"},
	}); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound for unknown second key, got %v", err)
	}
}

func TestCreateJobPublishFailureMarksJobFailed(t *testing.T) {
	env := newTestEnv()
	env.publisher.err = errors.New("broker down")
	svc := newJobService(t, env)
	project := env.seedProject("owner-1", "App", "app", "en")
	env.seedLocale(project.ID, "fr")
	env.seedKey(project.ID, "app.home.title")

	if _, err := svc.CreateJob(context.Background(), CreateJobCommand{
		OwnerID: "owner-1", ProjectID: project.ID, Mode: domain.JobModeAll, TargetLocale: "fr",
	}); err == nil {
		t.Fatalf("expected publish failure")
	}

	jobs, err := svc.ListJobs(context.Background(), "owner-1", project.ID)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Status != domain.JobStatusFailed {
		t.Fatalf("expected failed job, got %+v", jobs)
	}

	// The failed job no longer blocks a new one.
	env.publisher.err = nil
	if _, err := svc.CreateJob(context.Background(), CreateJobCommand{
		OwnerID: "owner-1", ProjectID: project.ID, Mode: domain.JobModeAll, TargetLocale: "fr",
	}); err != nil {
		t.Fatalf("CreateJob after failure: %v", err)
	}
}

func TestCancelJobPreservesProgress(t *testing.T) {
	env := newTestEnv()
	svc := newJobService(t, env)
	project := env.seedProject("owner-1", "App", "app", "en")
	env.seedLocale(project.ID, "fr")
	env.seedKey(project.ID, "app.home.title")

	job, err := svc.CreateJob(context.Background(), CreateJobCommand{
		OwnerID: "owner-1", ProjectID: project.ID, Mode: domain.JobModeAll, TargetLocale: "fr",
	})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	// Simulate partial worker progress before cancellation.
	completed := 1
	running := repositories.JobStatusUpdate{Status: domain.JobStatusRunning, CompletedKeys: &completed}
	if _, err := env.jobs.UpdateStatus(context.Background(), project.ID, job.ID, running); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	cancelled, err := svc.CancelJob(context.Background(), "owner-1", project.ID, job.ID)
	if err != nil {
		t.Fatalf("CancelJob: %v", err)
	}
	if cancelled.Status != domain.JobStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", cancelled.Status)
	}
	if cancelled.CompletedKeys != 1 {
		t.Fatalf("cancel must preserve completed counters, got %d", cancelled.CompletedKeys)
	}

	if _, err := svc.CancelJob(context.Background(), "owner-1", project.ID, job.ID); !errors.Is(err, ErrJobNotCancellable) {
		t.Fatalf("expected ErrJobNotCancellable, got %v", err)
	}
}
