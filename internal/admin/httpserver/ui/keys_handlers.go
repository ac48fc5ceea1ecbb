package ui

import (
	"context"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/karoldydo/i18n-mate-sub003/internal/admin/editor"
	custommw "github.com/karoldydo/i18n-mate-sub003/internal/admin/httpserver/middleware"
	"github.com/karoldydo/i18n-mate-sub003/internal/admin/keysview"
	"github.com/karoldydo/i18n-mate-sub003/internal/admin/listparams"
	keystpl "github.com/karoldydo/i18n-mate-sub003/internal/admin/templates/keys"
)

const fetchErrMsg = "Could not load translation keys. Please try again shortly."

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	KeysService keysview.Service
	Editors     *editor.Manager
	Logger      *zap.Logger
}

// Handlers exposes HTTP handlers for admin UI pages and fragments.
type Handlers struct {
	keys    keysview.Service
	editors *editor.Manager
	logger  *zap.Logger
}

// NewHandlers wires the UI handler set. When no editor manager is supplied,
// one is built committing through the keys service.
func NewHandlers(deps Dependencies) *Handlers {
	service := deps.KeysService
	if service == nil {
		service = keysview.NewStaticService()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	editors := deps.Editors
	if editors == nil {
		editors = editor.NewManager(CommitThrough(service))
	}
	return &Handlers{keys: service, editors: editors, logger: logger}
}

// CommitThrough adapts the keys service into the editor's commit callback.
func CommitThrough(service keysview.Service) editor.CommitFunc {
	return func(ctx context.Context, target editor.Target, value *string) error {
		return service.UpdateTranslation(ctx, target.Token, keysview.UpdateRequest{
			ProjectID: target.ProjectID,
			KeyID:     target.KeyID,
			Locale:    target.Locale,
			Value:     value,
		})
	}
}

// KeysPage renders the keys index page with SSR.
func (h *Handlers) KeysPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := custommw.UserFromContext(ctx)
	if !ok || user == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	projectID := chi.URLParam(r, "projectID")
	locale := chi.URLParam(r, "locale")
	params := listparams.FromQuery(r.URL.Query())

	result, errMsg := h.list(r, user.Token, projectID, locale, params)

	basePath := custommw.BasePathFromContext(ctx)
	state := keystpl.QueryStateFrom(params)
	table := keystpl.TablePayload(basePath, projectID, locale, state, result, errMsg)
	page := keystpl.BuildPageData(basePath, projectID, locale, state, table)

	templ.Handler(keystpl.Page(page)).ServeHTTP(w, r)
}

// KeysTable renders the keys table fragment for htmx requests.
func (h *Handlers) KeysTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := custommw.UserFromContext(ctx)
	if !ok || user == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	projectID := chi.URLParam(r, "projectID")
	locale := chi.URLParam(r, "locale")
	params := listparams.FromQuery(r.URL.Query())

	result, errMsg := h.list(r, user.Token, projectID, locale, params)

	basePath := custommw.BasePathFromContext(ctx)
	state := keystpl.QueryStateFrom(params)
	table := keystpl.TablePayload(basePath, projectID, locale, state, result, errMsg)

	if canonical := canonicalKeysURL(table.BasePath, params); canonical != "" {
		w.Header().Set("HX-Push-Url", canonical)
	}

	templ.Handler(keystpl.Table(table)).ServeHTTP(w, r)
}

// EditOpen swaps a translation cell into edit mode.
func (h *Handlers) EditOpen(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := custommw.UserFromContext(ctx)
	if !ok || user == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	projectID := chi.URLParam(r, "projectID")
	locale := chi.URLParam(r, "locale")
	keyID := chi.URLParam(r, "keyID")
	fullKey := r.URL.Query().Get("key")

	var current *string
	if r.URL.Query().Has("value") {
		value := r.URL.Query().Get("value")
		current = &value
	}

	e := h.editors.Editor(user.UID)
	e.StartEditing(editor.Target{
		ProjectID: projectID,
		KeyID:     keyID,
		Locale:    locale,
		Token:     user.Token,
	}, current)

	snap := e.Snapshot()
	basePath := custommw.BasePathFromContext(ctx)
	data := keystpl.EditorPayload(basePath, projectID, locale, keyID, fullKey, snap.Value, "", false)

	templ.Handler(keystpl.EditorCell(data)).ServeHTTP(w, r)
}

// EditInput records a keystroke; the editor schedules a debounced autosave.
func (h *Handlers) EditInput(w http.ResponseWriter, r *http.Request) {
	h.withOpenEditor(w, r, func(e *editor.Editor, req editRequest) templ.Component {
		e.Input(req.value)
		snap := e.Snapshot()
		data := keystpl.EditorPayload(req.basePath, req.projectID, req.locale, req.keyID, req.fullKey, req.value, snap.Err, snap.Phase == editor.PhaseSaving)
		return keystpl.EditorCell(data)
	})
}

// EditCommit commits the pending value immediately, as on blur or Enter.
func (h *Handlers) EditCommit(w http.ResponseWriter, r *http.Request) {
	h.withOpenEditor(w, r, func(e *editor.Editor, req editRequest) templ.Component {
		e.Input(req.value)
		e.Blur(r.Context())

		snap := e.Snapshot()
		if snap.Phase != editor.PhaseIdle {
			data := keystpl.EditorPayload(req.basePath, req.projectID, req.locale, req.keyID, req.fullKey, snap.Value, snap.Err, false)
			return keystpl.EditorCell(data)
		}
		return keystpl.ValueCell(req.row(trimmedOrNil(req.value)))
	})
}

// EditCancel discards the pending value and restores the stored one.
func (h *Handlers) EditCancel(w http.ResponseWriter, r *http.Request) {
	h.withOpenEditor(w, r, func(e *editor.Editor, req editRequest) templ.Component {
		snap := e.Snapshot()
		e.Cancel()
		return keystpl.ValueCell(req.row(snap.LastCommitted))
	})
}

type editRequest struct {
	basePath  string
	projectID string
	locale    string
	keyID     string
	fullKey   string
	value     string
}

// row rebuilds the read-only cell payload for the given stored value.
func (req editRequest) row(value *string) keystpl.TableRow {
	result := keysview.ListResult{Rows: []keysview.Row{{
		KeyID:   req.keyID,
		FullKey: req.fullKey,
		Value:   value,
	}}}
	state := keystpl.QueryState{Page: 1, PageSize: listparams.DefaultPageSize}
	table := keystpl.TablePayload(req.basePath, req.projectID, req.locale, state, result, "")
	return table.Rows[0]
}

func (h *Handlers) withOpenEditor(w http.ResponseWriter, r *http.Request, fn func(*editor.Editor, editRequest) templ.Component) {
	ctx := r.Context()
	user, ok := custommw.UserFromContext(ctx)
	if !ok || user == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "could not parse form", http.StatusBadRequest)
		return
	}

	req := editRequest{
		basePath:  custommw.BasePathFromContext(ctx),
		projectID: chi.URLParam(r, "projectID"),
		locale:    chi.URLParam(r, "locale"),
		keyID:     chi.URLParam(r, "keyID"),
		fullKey:   r.PostFormValue("key"),
		value:     r.PostFormValue("value"),
	}

	component := fn(h.editors.Editor(user.UID), req)
	templ.Handler(component).ServeHTTP(w, r)
}

func (h *Handlers) list(r *http.Request, token, projectID, locale string, params listparams.Params) (keysview.ListResult, string) {
	query := keysview.Query{
		Limit:       params.Limit(),
		Offset:      params.Offset(),
		Search:      params.SearchValue,
		MissingOnly: params.MissingOnly,
	}

	var (
		result keysview.ListResult
		err    error
	)
	if locale == "" {
		result, err = h.keys.ListDefaultView(r.Context(), token, projectID, query)
	} else {
		result, err = h.keys.ListPerLanguageView(r.Context(), token, projectID, locale, query)
	}
	if err != nil {
		h.logger.Warn("keys list failed",
			zap.String("project_id", projectID),
			zap.String("locale", locale),
			zap.Error(err))
		return keysview.ListResult{}, fetchErrMsg
	}
	return result, ""
}

// canonicalKeysURL rebuilds the page URL for HX-Push-Url so filter and pager
// fragments keep the address bar in sync.
func canonicalKeysURL(basePath string, params listparams.Params) string {
	values := params.Encode()
	if len(values) == 0 {
		return basePath
	}
	return basePath + "?" + values.Encode()
}

func trimmedOrNil(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
