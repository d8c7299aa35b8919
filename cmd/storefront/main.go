// Command storefront runs the storefront session service: product catalog,
// cart, checkout, order ledger, addresses and profile behind a REST API.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	app "github.com/lunaredge/storefront/internal/app"
	"github.com/lunaredge/storefront/internal/app/checkpoint"
	"github.com/lunaredge/storefront/internal/app/httpapi"
	"github.com/lunaredge/storefront/internal/app/services/auth"
	catalogsvc "github.com/lunaredge/storefront/internal/app/services/catalog"
	"github.com/lunaredge/storefront/internal/app/storage"
	"github.com/lunaredge/storefront/internal/app/storage/file"
	"github.com/lunaredge/storefront/internal/app/storage/memory"
	"github.com/lunaredge/storefront/internal/app/storage/postgres"
	"github.com/lunaredge/storefront/internal/app/storage/redis"
	"github.com/lunaredge/storefront/internal/app/system"
	"github.com/lunaredge/storefront/internal/config"
	"github.com/lunaredge/storefront/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/storefront.yaml", "path to the configuration file")
	envFile := flag.String("env", "", "optional .env file loaded before the configuration")
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			fmt.Fprintf(os.Stderr, "load env %s: %v\n", *envFile, err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}).WithField("service", "storefront")

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatalf("service exited")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}

	products, err := catalogsvc.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	log.WithField("products", len(products)).Info("catalog loaded")

	var authClient *auth.Client
	if cfg.Auth.BaseURL != "" {
		authClient = auth.NewClient(cfg.Auth.BaseURL, log.WithField("component", "auth"),
			auth.WithTimeout(time.Duration(cfg.Auth.TimeoutSeconds)*time.Second),
			auth.WithRateLimit(float64(cfg.Auth.RequestsPerSecond), cfg.Auth.Burst),
		)
	}

	application := app.New(kv, products, authClient, log)
	if err := application.Hydrate(ctx); err != nil {
		// The session starts empty rather than refusing to boot.
		log.WithError(err).Warn("state hydration failed")
	}

	manager := system.NewManager(log)
	manager.Register(checkpoint.New(application.State, cfg.Checkpoint.Schedule, log.WithField("component", "checkpoint")))
	if err := manager.Start(ctx); err != nil {
		return err
	}

	handler := httpapi.NewHandler(application, log.WithField("component", "httpapi"), httpapi.Options{
		RequestsPerSecond: cfg.Server.RequestsPerSecond,
		Burst:             cfg.Server.Burst,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server shutdown failed")
	}
	manager.Stop(shutdownCtx)
	application.State.Wait()
	return nil
}

// openStorage builds the persistence backend selected by the configuration.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage.KV, error) {
	switch cfg.Storage.Backend {
	case "memory":
		log.Warn("using in-memory storage; state is lost on exit")
		return memory.New(), nil
	case "file":
		return file.New(cfg.Storage.File.Dir)
	case "redis":
		return redis.New(ctx, cfg.Storage.Redis.Addr, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB)
	case "postgres":
		return postgres.Open(ctx, cfg.Storage.Postgres.DSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
