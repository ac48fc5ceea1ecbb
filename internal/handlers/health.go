package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/karoldydo/i18n-mate-sub003/internal/platform/httpx"
)

var startTime = time.Now()

// ReadinessCheck reports whether a downstream dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

// HealthHandlers serves the liveness and readiness endpoints.
type HealthHandlers struct {
	checks map[string]ReadinessCheck
}

// NewHealthHandlers constructs the health handler set. Named readiness checks
// are probed by Readyz; Healthz never touches dependencies.
func NewHealthHandlers(checks ...map[string]ReadinessCheck) *HealthHandlers {
	h := &HealthHandlers{checks: map[string]ReadinessCheck{}}
	for _, set := range checks {
		for name, check := range set {
			if check != nil {
				h.checks[name] = check
			}
		}
	}
	return h
}

// Healthz responds with a simple status payload for monitoring.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz probes the registered dependency checks and reports per-check status.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	if status != http.StatusOK {
		httpx.WriteError(ctx, w, httpx.NewError(http.StatusServiceUnavailable, "dependencies unavailable").WithDetails(map[string]any{"checks": results}))
		return
	}

	httpx.WriteJSON(w, status, map[string]any{
		"status": "ok",
		"checks": results,
	})
}
