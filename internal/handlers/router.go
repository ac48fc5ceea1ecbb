package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/karoldydo/i18n-mate-sub003/internal/platform/httpx"
)

// RouteRegistrar registers a set of routes against the provided router.
type RouteRegistrar func(r chi.Router)

type routerConfig struct {
	basePath    string
	middlewares []func(http.Handler) http.Handler
	health      *HealthHandlers

	projects RouteRegistrar
	export   http.HandlerFunc

	projectMiddlewares []func(http.Handler) http.Handler
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

const (
	defaultAPIPrefix = "/api/v1"
	defaultTimeout   = 60 * time.Second
)

// NewRouter constructs the chi router with shared middleware and expected route groups.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{
		basePath: defaultAPIPrefix,
		middlewares: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Timeout(defaultTimeout),
		},
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	r := chi.NewRouter()

	if cfg.health == nil {
		cfg.health = NewHealthHandlers()
	}

	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError(http.StatusNotFound, fmt.Sprintf("no route for %s", req.URL.Path)))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError(http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path)))
	})

	r.Get("/healthz", cfg.health.Healthz)
	r.Get("/readyz", cfg.health.Readyz)

	// The export endpoint owns its full error ordering, method checks
	// included, so every verb lands on the same handler.
	if cfg.export != nil {
		r.HandleFunc("/export-translations", cfg.export)
	}

	r.Route(cfg.basePath, func(api chi.Router) {
		api.Route("/projects", func(group chi.Router) {
			for _, mw := range cfg.projectMiddlewares {
				if mw != nil {
					group.Use(mw)
				}
			}
			if cfg.projects != nil {
				cfg.projects(group)
				return
			}
			registerNotImplemented(group, "projects")
		})
	})

	return r
}

// WithMiddlewares appends additional global middleware to the router.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithHealthHandlers overrides the handlers used for /healthz and /readyz endpoints.
func WithHealthHandlers(h *HealthHandlers) Option {
	return func(cfg *routerConfig) {
		cfg.health = h
	}
}

// WithProjectRoutes configures the registrar responsible for the project tree:
// projects, locales, keys, translations and jobs.
func WithProjectRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.projects = reg
	}
}

// WithProjectMiddlewares configures middlewares applied to the /projects group.
func WithProjectMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.projectMiddlewares = append(cfg.projectMiddlewares, mw...)
	}
}

// WithExportHandler configures the handler serving /export-translations.
func WithExportHandler(h http.HandlerFunc) Option {
	return func(cfg *routerConfig) {
		cfg.export = h
	}
}

func registerNotImplemented(r chi.Router, name string) {
	handler := func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError(http.StatusNotImplemented, fmt.Sprintf("%s routes not implemented", name)))
	}
	r.HandleFunc("/*", handler)
	r.HandleFunc("/", handler)
	r.NotFound(handler)
	r.MethodNotAllowed(handler)
}
