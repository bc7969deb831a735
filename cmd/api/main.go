package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"github.com/stringlab/internal/api"
	"github.com/stringlab/internal/config"
	"github.com/stringlab/internal/convert"
	"github.com/stringlab/internal/service"
	"github.com/stringlab/internal/storage"
	"github.com/stringlab/internal/storage/cassandra"
	"github.com/stringlab/internal/textgen"
	"github.com/stringlab/internal/version"
	"github.com/stringlab/pkg/logger"
)

const (
	sentryFlushTimeout = 2 * time.Second
	shutdownTimeout    = 5 * time.Second
)

func main() {
	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
			Release:     "stringlab@" + version.Version,
			Debug:       !cfg.IsProduction(),
		}); err != nil {
			log.Warn("Sentry initialization failed", logger.F("error", err.Error()))
		} else {
			defer sentry.Flush(sentryFlushTimeout)
			log.Info("Sentry initialized", logger.F("environment", cfg.Environment))
		}
	}

	runs, closeStore, err := openStorage(cfg, log)
	if err != nil {
		log.Error("Failed to initialize storage",
			logger.F("backend", cfg.StorageBackend),
			logger.F("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	analysis := service.NewAnalysisService(
		textgen.NewTimeSeeded(),
		convert.New(cfg.MaxRecursionDepth),
		runs,
		cfg.MaxStringLength,
		log,
	)

	handler := api.NewHandler(analysis, log)
	router := api.NewRouter(handler, log, api.RouterOptions{
		Timeout: cfg.RequestTimeout,
		Sentry:  cfg.SentryDSN != "",
	})

	server := &http.Server{
		Addr:    cfg.Address(),
		Handler: router,
	}

	go func() {
		log.Info("Server starting",
			logger.F("addr", server.Addr),
			logger.F("storage", cfg.StorageBackend),
			logger.F("version", version.Full()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", logger.F("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", logger.F("error", err.Error()))
		return
	}

	log.Info("Server exited")
}

// openStorage connects the configured run history backend
func openStorage(cfg *config.Config, log *logger.Logger) (storage.RunRepository, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageRedis:
		store, err := storage.NewRedisStore(context.Background(), cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Connected to Redis", logger.F("addr", cfg.Redis.Addr))
		return store, func() { _ = store.Close() }, nil

	case config.StorageCassandra:
		client, err := cassandra.NewClient(cfg.Cassandra, log)
		if err != nil {
			return nil, nil, err
		}
		return cassandra.NewRepository(client, log, cfg.Cassandra.Timeout), client.Close, nil

	default:
		log.Info("Using in-memory run history")
		return storage.NewMemoryStorage(), func() {}, nil
	}
}
