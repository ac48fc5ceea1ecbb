package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/karoldydo/i18n-mate-sub003/internal/platform/auth"
	"github.com/karoldydo/i18n-mate-sub003/internal/platform/httpx"
	"github.com/karoldydo/i18n-mate-sub003/internal/services"
)

// ProjectHandlers exposes the project and locale endpoints, and hosts the
// project-scoped sub-resources (keys, translations, jobs) beneath /{projectId}.
type ProjectHandlers struct {
	authn    *auth.Authenticator
	projects services.ProjectService
	nested   []RouteRegistrar
}

// NewProjectHandlers constructs the project handler set. Nested registrars are
// mounted on the /{projectId} subtree after the project's own routes.
func NewProjectHandlers(authn *auth.Authenticator, svc services.ProjectService, nested ...RouteRegistrar) *ProjectHandlers {
	return &ProjectHandlers{
		authn:    authn,
		projects: svc,
		nested:   nested,
	}
}

// Routes registers the project endpoints beneath the group root.
func (h *ProjectHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}

	route := r
	if h.authn != nil {
		route = route.With(h.authn.RequireAuth())
	}

	route.Get("/", h.list)
	route.Post("/", h.create)

	route.Route("/{projectId}", func(pr chi.Router) {
		pr.Get("/", h.get)
		pr.Put("/", h.update)
		pr.Delete("/", h.delete)

		pr.Get("/locales", h.listLocales)
		pr.Post("/locales", h.addLocale)
		pr.Delete("/locales/{code}", h.deleteLocale)

		for _, reg := range h.nested {
			if reg != nil {
				reg(pr)
			}
		}
	})
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || strings.TrimSpace(identity.UID) == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError(http.StatusUnauthorized, "authentication required"))
		return nil, false
	}
	return identity, true
}

func projectIDParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "projectId"))
}

type createProjectRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Prefix        string `json:"prefix"`
	DefaultLocale string `json:"defaultLocale"`
}

func (h *ProjectHandlers) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req createProjectRequest
	if httpErr := decodeJSONBody(r, &req); httpErr != nil {
		httpx.WriteError(ctx, w, *httpErr)
		return
	}

	project, err := h.projects.CreateProject(ctx, services.CreateProjectCommand{
		OwnerID:       identity.UID,
		Name:          req.Name,
		Description:   req.Description,
		Prefix:        req.Prefix,
		DefaultLocale: req.DefaultLocale,
	})
	if err != nil {
		httpx.WriteError(ctx, w, serviceError(err))
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toProjectResponse(project))
}

func (h *ProjectHandlers) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	projects, err := h.projects.ListProjects(ctx, identity.UID)
	if err != nil {
		httpx.WriteError(ctx, w, serviceError(err))
		return
	}

	httpx.WriteList(w, http.StatusOK, toProjectResponses(projects), len(projects))
}

func (h *ProjectHandlers) get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	project, err := h.projects.GetProject(ctx, identity.UID, projectIDParam(r))
	if err != nil {
		httpx.WriteError(ctx, w, serviceError(err))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProjectResponse(project))
}

type updateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *ProjectHandlers) update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req updateProjectRequest
	if httpErr := decodeJSONBody(r, &req); httpErr != nil {
		httpx.WriteError(ctx, w, *httpErr)
		return
	}

	project, err := h.projects.UpdateProject(ctx, services.UpdateProjectCommand{
		OwnerID:     identity.UID,
		ProjectID:   projectIDParam(r),
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httpx.WriteError(ctx, w, serviceError(err))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandlers) delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	if err := h.projects.DeleteProject(ctx, identity.UID, projectIDParam(r)); err != nil {
		httpx.WriteError(ctx, w, serviceError(err))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

type addLocaleRequest struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

func (h *ProjectHandlers) addLocale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req addLocaleRequest
	if httpErr := decodeJSONBody(r, &req); httpErr != nil {
		httpx.WriteError(ctx, w, *httpErr)
		return
	}

	locale, err := h.projects.AddLocale(ctx, services.AddLocaleCommand{
		OwnerID:   identity.UID,
		ProjectID: projectIDParam(r),
		Code:      req.Code,
		Label:     req.Label,
	})
	if err != nil {
		httpx.WriteError(ctx, w, serviceError(err))
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toLocaleResponse(locale))
}

func (h *ProjectHandlers) listLocales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	locales, err := h.projects.ListLocales(ctx, identity.UID, projectIDParam(r))
	if err != nil {
		httpx.WriteError(ctx, w, serviceError(err))
		return
	}

	httpx.WriteList(w, http.StatusOK, toLocaleResponses(locales), len(locales))
}

func (h *ProjectHandlers) deleteLocale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if err := h.projects.DeleteLocale(ctx, identity.UID, projectIDParam(r), code); err != nil {
		httpx.WriteError(ctx, w, serviceError(err))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
