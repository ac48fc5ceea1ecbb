package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/karoldydo/i18n-mate-sub003/internal/platform/auth"
	"github.com/karoldydo/i18n-mate-sub003/internal/platform/httpx"
	"github.com/karoldydo/i18n-mate-sub003/internal/platform/requestctx"
	"github.com/karoldydo/i18n-mate-sub003/internal/services"
)

// ExportHandlers serves the translation export endpoint. The handler owns its
// full response ordering: method check, parameter validation, authentication,
// ownership, then the catch-all failure envelope.
type ExportHandlers struct {
	authn  *auth.Authenticator
	export services.ExportService
}

// NewExportHandlers constructs the export handler set.
func NewExportHandlers(authn *auth.Authenticator, svc services.ExportService) *ExportHandlers {
	return &ExportHandlers{
		authn:  authn,
		export: svc,
	}
}

// Export handles GET /export-translations?project_id=<uuid>.
func (h *ExportHandlers) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		httpx.WriteError(ctx, w, httpx.NewError(http.StatusMethodNotAllowed, "Method not allowed"))
		return
	}

	projectID := strings.TrimSpace(r.URL.Query().Get("project_id"))
	if projectID == "" {
		httpx.WriteError(ctx, w, httpx.NewError(http.StatusBadRequest, "Missing project_id parameter"))
		return
	}
	if _, err := uuid.Parse(projectID); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError(http.StatusBadRequest, "Invalid project_id parameter"))
		return
	}

	identity, httpErr := h.authn.Authenticate(r)
	if httpErr != nil {
		httpx.WriteError(ctx, w, *httpErr)
		return
	}

	archive, err := h.export.Export(ctx, identity.UID, projectID)
	if err != nil {
		if errors.Is(err, services.ErrProjectNotFound) {
			httpx.WriteError(ctx, w, httpx.NewError(http.StatusNotFound, "Project not found or access denied"))
			return
		}
		if errors.Is(err, services.ErrLocaleNotFound) {
			httpx.WriteError(ctx, w, httpx.NewError(http.StatusNotFound, "No locales found for project"))
			return
		}
		var localeErr *services.LocaleExportError
		if errors.As(err, &localeErr) {
			requestctx.Logger(ctx).Error("export aggregation failed",
				zap.String("project_id", projectID),
				zap.String("locale", localeErr.Locale),
				zap.Error(err),
			)
			httpx.WriteError(ctx, w, httpx.NewError(http.StatusInternalServerError,
				fmt.Sprintf("Failed to fetch translations for locale %s", localeErr.Locale)))
			return
		}
		requestctx.Logger(ctx).Error("export failed",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		httpx.WriteError(ctx, w, httpx.NewError(http.StatusInternalServerError, "Export generation failed"))
		return
	}

	w.Header().Set("Content-Type", archive.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archive.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(archive.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive.Content)
}
