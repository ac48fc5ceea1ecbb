package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/karoldydo/i18n-mate-sub003/internal/admin/editor"
	custommw "github.com/karoldydo/i18n-mate-sub003/internal/admin/httpserver/middleware"
	"github.com/karoldydo/i18n-mate-sub003/internal/admin/httpserver/ui"
	"github.com/karoldydo/i18n-mate-sub003/internal/admin/keysview"
)

// Config holds runtime options for the admin HTTP server.
type Config struct {
	Address       string
	BasePath      string
	LoginPath     string
	Authenticator custommw.Authenticator
	KeysService   keysview.Service
	Editors       *editor.Manager
	Logger        *zap.Logger
}

// New constructs the HTTP server with its middleware stack and routes.
func New(cfg Config) *http.Server {
	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(60 * time.Second))

	basePath := normalizeBasePath(cfg.BasePath)
	loginPath := resolveLoginPath(basePath, cfg.LoginPath)

	authenticator := cfg.Authenticator
	if authenticator == nil {
		authenticator = custommw.DefaultAuthenticator()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	handlers := ui.NewHandlers(ui.Dependencies{
		KeysService: cfg.KeysService,
		Editors:     cfg.Editors,
		Logger:      logger,
	})

	mountAdminRoutes(router, basePath, routeOptions{
		Authenticator: authenticator,
		LoginPath:     loginPath,
		Logger:        logger,
		Handlers:      handlers,
	})

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

type routeOptions struct {
	Authenticator custommw.Authenticator
	LoginPath     string
	Logger        *zap.Logger
	Handlers      *ui.Handlers
}

func mountAdminRoutes(router chi.Router, base string, opts routeOptions) {
	router.Route(base, func(r chi.Router) {
		r.Use(custommw.RequestInfoMiddleware(base))
		r.Use(custommw.HTMX())

		r.Get("/login", opts.Handlers.LoginPage)
		r.Post("/login", opts.Handlers.LoginSubmit)

		r.Group(func(r chi.Router) {
			r.Use(custommw.Auth(opts.Logger, opts.Authenticator, opts.LoginPath))

			r.Post("/logout", opts.Handlers.Logout)

			r.Route("/projects/{projectID}/keys", func(r chi.Router) {
				r.Get("/", opts.Handlers.KeysPage)
				RegisterFragment(r, "/table", opts.Handlers.KeysTable)
				mountEditRoutes(r, opts.Handlers)

				r.Route("/{locale}", func(r chi.Router) {
					r.Get("/", opts.Handlers.KeysPage)
					RegisterFragment(r, "/table", opts.Handlers.KeysTable)
					mountEditRoutes(r, opts.Handlers)
				})
			})
		})
	})
}

// mountEditRoutes registers the inline-edit fragment endpoints. They are
// htmx-only: direct navigation to an editor cell makes no sense.
func mountEditRoutes(r chi.Router, handlers *ui.Handlers) {
	r.Route("/edit/{keyID}", func(r chi.Router) {
		r.Use(custommw.RequireHTMX())
		r.Get("/", handlers.EditOpen)
		r.Post("/input", handlers.EditInput)
		r.Post("/commit", handlers.EditCommit)
		r.Post("/cancel", handlers.EditCancel)
	})
}

// RegisterFragment registers a GET handler intended for htmx fragment rendering.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX()).Get(pattern, handler)
}

func normalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return "/admin"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

func resolveLoginPath(base string, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if base == "/" {
		return "/login"
	}
	return base + "/login"
}
