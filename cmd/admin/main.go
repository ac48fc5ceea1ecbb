package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/karoldydo/i18n-mate-sub003/internal/admin/httpserver"
	custommw "github.com/karoldydo/i18n-mate-sub003/internal/admin/httpserver/middleware"
	"github.com/karoldydo/i18n-mate-sub003/internal/admin/keysview"
	platformauth "github.com/karoldydo/i18n-mate-sub003/internal/platform/auth"
	"github.com/karoldydo/i18n-mate-sub003/internal/platform/config"
	"github.com/karoldydo/i18n-mate-sub003/internal/platform/observability"
)

func main() {
	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("admin")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	var keysService keysview.Service
	if cfg.Admin.APIBaseURL != "" {
		keysService, err = keysview.NewHTTPService(cfg.Admin.APIBaseURL, &http.Client{Timeout: 15 * time.Second})
		if err != nil {
			logger.Fatal("failed to initialise keys service", zap.Error(err))
		}
	} else {
		logger.Warn("ADMIN_API_BASE_URL not set; serving the in-memory keys view")
		keysService = keysview.NewStaticService()
	}

	var authenticator custommw.Authenticator
	switch {
	case cfg.Firebase.ProjectID != "":
		verifier, err := platformauth.NewFirebaseVerifier(context.Background(), cfg.Firebase)
		if err != nil {
			logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
		}
		authenticator = custommw.NewFirebaseAuthenticator(verifier)
	case cfg.Admin.APIToken != "":
		authenticator = staticTokenAuthenticator{token: cfg.Admin.APIToken}
	default:
		logger.Warn("no firebase project or operator token configured; accepting any bearer token")
		authenticator = custommw.DefaultAuthenticator()
	}

	server := httpserver.New(httpserver.Config{
		Address:       ":" + cfg.Admin.Port,
		BasePath:      "/admin",
		Authenticator: authenticator,
		KeysService:   keysService,
		Logger:        logger.Named("http"),
	})
	server.ReadTimeout = cfg.Admin.ReadTimeout
	server.WriteTimeout = cfg.Admin.WriteTimeout
	server.IdleTimeout = cfg.Admin.IdleTimeout

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("i18n-mate admin listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// staticTokenAuthenticator grants access when the presented bearer token
// matches the configured operator token.
type staticTokenAuthenticator struct {
	token string
}

func (a staticTokenAuthenticator) Authenticate(_ *http.Request, token string) (*custommw.User, error) {
	if token != a.token {
		return nil, custommw.ErrUnauthorized
	}
	return &custommw.User{UID: "operator", Token: token}, nil
}
