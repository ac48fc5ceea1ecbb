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

	"cloud.google.com/go/pubsub"
	cloudstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/karoldydo/i18n-mate-sub003/internal/handlers"
	"github.com/karoldydo/i18n-mate-sub003/internal/platform/auth"
	"github.com/karoldydo/i18n-mate-sub003/internal/platform/config"
	pfirestore "github.com/karoldydo/i18n-mate-sub003/internal/platform/firestore"
	"github.com/karoldydo/i18n-mate-sub003/internal/platform/jobs"
	"github.com/karoldydo/i18n-mate-sub003/internal/platform/observability"
	platformstorage "github.com/karoldydo/i18n-mate-sub003/internal/platform/storage"
	firestoreRepo "github.com/karoldydo/i18n-mate-sub003/internal/repositories/firestore"
	"github.com/karoldydo/i18n-mate-sub003/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	if _, err := firestoreProvider.Client(ctx); err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		if err := firestoreProvider.Close(); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	registry, err := firestoreRepo.NewRegistry(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise repositories", zap.Error(err))
	}

	firebaseVerifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(firebaseVerifier)

	pubsubClient, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		logger.Fatal("failed to initialise pubsub client", zap.Error(err))
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logger.Warn("pubsub close error", zap.Error(err))
		}
	}()

	publisher, err := jobs.NewPubSubTranslationPublisher(pubsubClient.Topic(cfg.PubSub.TranslationTopic))
	if err != nil {
		logger.Fatal("failed to initialise job publisher", zap.Error(err))
	}

	var uploader services.ArchiveUploader
	if cfg.Features.EnableExportUpload {
		storageClient, err := cloudstorage.NewClient(ctx)
		if err != nil {
			logger.Fatal("failed to initialise storage client", zap.Error(err))
		}
		defer func() {
			if err := storageClient.Close(); err != nil {
				logger.Warn("storage close error", zap.Error(err))
			}
		}()
		uploader, err = platformstorage.NewExportUploader(storageClient, cfg.Storage.ExportsBucket)
		if err != nil {
			logger.Fatal("failed to initialise export uploader", zap.Error(err))
		}
	}

	projectService, err := services.NewProjectService(services.ProjectServiceDeps{
		Projects: registry.Projects(),
		Locales:  registry.Locales(),
	})
	if err != nil {
		logger.Fatal("failed to initialise project service", zap.Error(err))
	}

	translationService, err := services.NewTranslationService(services.TranslationServiceDeps{
		Projects:     registry.Projects(),
		Locales:      registry.Locales(),
		Keys:         registry.Keys(),
		Translations: registry.Translations(),
	})
	if err != nil {
		logger.Fatal("failed to initialise translation service", zap.Error(err))
	}

	jobService, err := services.NewJobService(services.JobServiceDeps{
		Projects:  registry.Projects(),
		Locales:   registry.Locales(),
		Keys:      registry.Keys(),
		Jobs:      registry.Jobs(),
		Publisher: publisher,
	})
	if err != nil {
		logger.Fatal("failed to initialise job service", zap.Error(err))
	}

	exportService, err := services.NewExportService(services.ExportServiceDeps{
		Projects:     registry.Projects(),
		Locales:      registry.Locales(),
		Keys:         registry.Keys(),
		Translations: registry.Translations(),
		Uploader:     uploader,
	})
	if err != nil {
		logger.Fatal("failed to initialise export service", zap.Error(err))
	}

	projectHandlers := handlers.NewProjectHandlers(authenticator, projectService,
		handlers.NewKeyHandlers(translationService).Routes,
		handlers.NewJobHandlers(jobService).Routes,
	)
	exportHandlers := handlers.NewExportHandlers(authenticator, exportService)

	healthHandlers := handlers.NewHealthHandlers(map[string]handlers.ReadinessCheck{
		"firestore": func(ctx context.Context) error {
			_, err := firestoreProvider.Client(ctx)
			return err
		},
	})

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(),
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithProjectRoutes(projectHandlers.Routes),
		handlers.WithExportHandler(exportHandlers.Export),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("i18n-mate api listening")
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
