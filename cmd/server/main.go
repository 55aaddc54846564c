package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/yourusername/ytgrab-go/api"
	"github.com/yourusername/ytgrab-go/api/handlers"
	"github.com/yourusername/ytgrab-go/internal/app"
	"github.com/yourusername/ytgrab-go/internal/domain"
	"github.com/yourusername/ytgrab-go/internal/infrastructure"
	"github.com/yourusername/ytgrab-go/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

var version = "dev"

var configPath = flag.String("config", "", "Path to config file (default: ./configs, $HOME/.ytgrab, /etc/ytgrab)")

func main() {
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	general, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Initialize multi-logger (3 categories: access, engine, error)
	multiLog, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Logging.Dir,
		General: general,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer multiLog.Close()

	log := multiLog.General()
	handlers.Version = version

	log.Info("Starting ytgrab server",
		zap.String("version", version),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("backend", config.Engine.Backend),
		zap.String("engine", config.Engine.Binary),
		zap.String("cache_dir", config.Cache.Dir))

	if err := run(config, multiLog); err != nil {
		log.Error("Server failed", zap.Error(err))
		multiLog.Close()
		os.Exit(1)
	}

	log.Info("Server exited")
}

func run(config *domain.Config, multiLog *logger.MultiLogger) error {
	log := multiLog.General()

	backend, err := infrastructure.NewExtractionBackend(&config.Engine, multiLog)
	if err != nil {
		return err
	}
	if err := backend.Check(); err != nil {
		// not fatal: /ready reports it and requests fail with 503
		log.Warn("Extraction engine not available", zap.Error(err))
	}

	cache := infrastructure.NewOsThumbnailCache(config.Cache.Dir)
	if err := cache.Reset(); err != nil {
		log.Warn("Failed to clear thumbnail cache", zap.Error(err))
	}

	notifier := infrastructure.NewNotificationService(&config.Notification, log)

	infoService := app.NewInfoService(backend, cache, config.Server.BasePath, config.Engine.InfoTimeout, log, multiLog)
	orchestrator := app.NewDownloadOrchestrator(backend, afero.NewOsFs(), config.Download.TempDir, config.Engine.DownloadTimeout, notifier, log, multiLog)

	router, err := api.SetupRouter(api.Dependencies{
		Info:               infoService,
		Downloads:          orchestrator,
		Engine:             backend,
		Thumbnails:         cache,
		BasePath:           config.Server.BasePath,
		ExposeEngineErrors: config.Server.ExposeEngineErrors,
		EnableLogAPI:       config.Server.EnableLogAPI,
		Logger:             multiLog,
	})
	if err != nil {
		return fmt.Errorf("failed to set up router: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Received shutdown signal")
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Info("Shutting down server...")

	// In-flight downloads finish or hit their own timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
