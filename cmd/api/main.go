package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"adoptme-adoption-process/internal/adapters/coreapi"
	"adoptme-adoption-process/internal/adapters/storage/postgres"
	"adoptme-adoption-process/internal/config"
	"adoptme-adoption-process/internal/platform/logger"
	"adoptme-adoption-process/internal/router"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLog := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	opts := router.Options{Log: appLog}

	if cfg.DBDSN != "" {
		db, err := postgres.Open(cfg.DBDSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			cancel()
			log.Fatalf("postgres schema: %v", err)
		}
		cancel()

		opts.DB = db
	}

	if cfg.UseCoreAPI() {
		core, err := coreapi.NewClient(coreapi.Config{
			BaseURL: cfg.CoreAPIURL,
			APIKey:  cfg.CoreAPIKey,
			Timeout: cfg.CoreAPITimeout,
		})
		if err != nil {
			log.Fatalf("coreapi: %v", err)
		}

		opts.AuthVerifier = coreapi.NewVerifier(core)
		opts.Dispatcher = coreapi.NewNotifier(core)
		opts.Catalog = coreapi.NewCatalogClient(core)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	appLog.Info("starting server", map[string]any{"addr": srv.Addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
