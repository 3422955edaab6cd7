package main

import (
	"fmt"
	"os"

	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/api"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/config"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/deeplink"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/logger"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/profiling"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/service"
	"github.com/chuthuong2004/selfhost-deeplink-demo/internal/storage"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Start profiling server (if enabled)
	profiling.StartPprofServer()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log, err := createLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	store, err := storage.NewFileStore(cfg.Database.Path, log)
	if err != nil {
		log.Error("Failed to open referral store", logger.Error(err))
		return 1
	}
	log.Info("Referral store opened", logger.String("path", store.Path()))

	return runServer(cfg, log, store)
}

// loadConfig loads and validates configuration.
func loadConfig() (*config.Config, error) {
	configPath := config.GetConfigPath("config.yml")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if validationErr := cfg.Validate(); validationErr != nil {
		return nil, fmt.Errorf("validate config: %w", validationErr)
	}
	return cfg, nil
}

// createLogger creates a logger instance from configuration.
func createLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return log.With(logger.String("service", cfg.Service.Name)), nil
}

// runServer creates all dependencies and starts the HTTP server.
func runServer(cfg *config.Config, log logger.Logger, store *storage.FileStore) int {
	sweeper := storage.NewSweeper(store, log, cfg.Database.CleanupInterval, cfg.Database.RetentionWindow())
	sweeper.Start()
	defer sweeper.Stop()

	resolver := deeplink.NewResolver(deeplink.Config{
		Domain:          cfg.Service.Domain,
		AppScheme:       cfg.App.Scheme,
		AppPackage:      cfg.App.Package,
		AndroidStoreURL: cfg.Store.AndroidURL,
		IOSStoreURL:     cfg.Store.IOSURL,
		LandingPage:     cfg.Store.LandingPage,
	})
	shares := service.NewShareService(store, cfg.Service.Domain, log)
	metadata := service.NewMetadataService(cfg.Store.LandingPage)

	// done signals background goroutines (rate limiter) on shutdown
	done := make(chan struct{})
	defer close(done)

	srv := api.NewServer(api.Dependencies{
		Config:   cfg,
		Logger:   log,
		Store:    store,
		Shares:   shares,
		Metadata: metadata,
		Resolver: resolver,
		Done:     done,
	})

	log.Info("Deep-link server starting",
		logger.Int("port", cfg.Service.Port),
		logger.String("domain", cfg.Service.Domain),
	)

	if err := srv.Run(); err != nil {
		log.Error("Server error", logger.Error(err))
		return 1
	}

	log.Info("Deep-link server exited cleanly")
	return 0
}
