package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/karoldydo/i18n-mate-sub003/internal/domain"
	"github.com/karoldydo/i18n-mate-sub003/internal/platform/httpx"
	"github.com/karoldydo/i18n-mate-sub003/internal/services"
)

// JobHandlers exposes the machine-translation job endpoints on the
// project-scoped subtree.
type JobHandlers struct {
	jobs services.JobService
}

// NewJobHandlers constructs a job handler set.
func NewJobHandlers(svc services.JobService) *JobHandlers {
	return &JobHandlers{jobs: svc}
}

// Routes registers the job endpoints beneath /{projectId}.
func (h *JobHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}

	r.Get("/jobs", h.list)
	r.Post("/jobs", h.create)
	r.Get("/jobs/{jobId}", h.get)
	r.Post("/jobs/{jobId}:cancel", h.cancel)
}

type createJobRequest struct {
	Mode         string   `json:"mode"`
	TargetLocale string   `json:"targetLocale"`
	KeyIDs       []string `json:"keyIds"`
}

func (h *JobHandlers) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req createJobRequest
	if httpErr := decodeJSONBody(r, &req); httpErr != nil {
		httpx.WriteError(ctx, w, *httpErr)
		return
	}

	job, err := h.jobs.CreateJob(ctx, services.CreateJobCommand{
		OwnerID:      identity.UID,
		ProjectID:    projectIDParam(r),
		Mode:         domain.JobMode(strings.TrimSpace(req.Mode)),
		TargetLocale: req.TargetLocale,
		KeyIDs:       req.KeyIDs,
	})
	if err != nil {
		httpx.WriteError(ctx, w, serviceError(err))
		return
	}

	httpx.WriteJSON(w, http.StatusAccepted, toJobResponse(job))
}

func (h *JobHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	jobs, err := h.jobs.ListJobs(ctx, identity.UID, projectIDParam(r))
	if err != nil {
		httpx.WriteError(ctx, w, serviceError(err))
		return
	}

	httpx.WriteList(w, http.StatusOK, toJobResponses(jobs), len(jobs))
}

func (h *JobHandlers) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	jobID := strings.TrimSpace(chi.URLParam(r, "jobId"))
	job, err := h.jobs.GetJob(ctx, identity.UID, projectIDParam(r), jobID)
	if err != nil {
		httpx.WriteError(ctx, w, serviceError(err))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toJobResponse(job))
}

func (h *JobHandlers) cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	jobID := strings.TrimSpace(chi.URLParam(r, "jobId"))
	job, err := h.jobs.CancelJob(ctx, identity.UID, projectIDParam(r), jobID)
	if err != nil {
		httpx.WriteError(ctx, w, serviceError(err))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toJobResponse(job))
}
