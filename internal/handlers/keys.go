package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/karoldydo/i18n-mate-sub003/internal/domain"
	"github.com/karoldydo/i18n-mate-sub003/internal/platform/httpx"
	"github.com/karoldydo/i18n-mate-sub003/internal/platform/pagination"
	"github.com/karoldydo/i18n-mate-sub003/internal/services"
)

// KeyHandlers exposes the key list views, key lifecycle and translation
// writes. Routes are registered on the project-scoped subtree.
type KeyHandlers struct {
	translations services.TranslationService
}

// NewKeyHandlers constructs a key handler set.
func NewKeyHandlers(svc services.TranslationService) *KeyHandlers {
	return &KeyHandlers{translations: svc}
}

// Routes registers the key and translation endpoints beneath /{projectId}.
func (h *KeyHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}

	r.Get("/keys", h.listKeys)
	r.Post("/keys", h.createKey)
	r.Delete("/keys/{keyId}", h.deleteKey)

	r.Put("/translations", h.updateTranslation)
}

// listKeys serves both list views: without ?locale= it joins keys with the
// project's default locale, with ?locale=xx it joins the requested locale.
func (h *KeyHandlers) listKeys(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	params := pagination.FromRequest(r, pagination.Options{})
	query := services.KeyListQuery{
		OwnerID:     identity.UID,
		ProjectID:   projectIDParam(r),
		Locale:      strings.TrimSpace(r.URL.Query().Get("locale")),
		Search:      params.Search,
		MissingOnly: params.MissingOnly,
		Offset:      params.Offset(),
		Limit:       params.Limit(),
	}

	var (
		page domain.Page[domain.KeyRow]
		err  error
	)
	if query.Locale == "" {
		page, err = h.translations.ListKeysDefaultView(ctx, query)
	} else {
		page, err = h.translations.ListKeysPerLanguageView(ctx, query)
	}
	if err != nil {
		httpx.WriteError(ctx, w, serviceError(err))
		return
	}

	httpx.WriteList(w, http.StatusOK, toKeyRowResponses(page.Items), page.Total)
}

type createKeyRequest struct {
	FullKey string `json:"fullKey"`
	Value   string `json:"value"`
}

func (h *KeyHandlers) createKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req createKeyRequest
	if httpErr := decodeJSONBody(r, &req); httpErr != nil {
		httpx.WriteError(ctx, w, *httpErr)
		return
	}

	key, err := h.translations.CreateKey(ctx, services.CreateKeyCommand{
		OwnerID:   identity.UID,
		ProjectID: projectIDParam(r),
		FullKey:   req.FullKey,
		Value:     req.Value,
	})
	if err != nil {
		httpx.WriteError(ctx, w, serviceError(err))
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toKeyResponse(key))
}

func (h *KeyHandlers) deleteKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	keyID := strings.TrimSpace(chi.URLParam(r, "keyId"))
	if err := h.translations.DeleteKey(ctx, identity.UID, projectIDParam(r), keyID); err != nil {
		httpx.WriteError(ctx, w, serviceError(err))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

type updateTranslationRequest struct {
	KeyID  string `json:"keyId"`
	Locale string `json:"locale"`
	Value  string `json:"value"`
	// Source marks who authored the value. The translation worker writes
	// results back with "system"; everything else defaults to "user".
	Source string `json:"updatedSource"`
}

func (h *KeyHandlers) updateTranslation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req updateTranslationRequest
	if httpErr := decodeJSONBody(r, &req); httpErr != nil {
		httpx.WriteError(ctx, w, *httpErr)
		return
	}

	source := domain.UpdateSource(strings.TrimSpace(req.Source))
	switch source {
	case "", domain.UpdateSourceUser, domain.UpdateSourceSystem:
	default:
		httpx.WriteError(ctx, w, httpx.NewError(http.StatusBadRequest, `updatedSource must be "user" or "system"`))
		return
	}

	translation, err := h.translations.UpdateTranslation(ctx, services.UpdateTranslationCommand{
		OwnerID:   identity.UID,
		ProjectID: projectIDParam(r),
		KeyID:     req.KeyID,
		Locale:    req.Locale,
		RawValue:  req.Value,
		Source:    source,
	})
	if err != nil {
		httpx.WriteError(ctx, w, serviceError(err))
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTranslationResponse(translation))
}
