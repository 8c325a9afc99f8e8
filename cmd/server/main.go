package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"photo-location-service/internal/adapters/cache"
	"photo-location-service/internal/adapters/exif"
	"photo-location-service/internal/adapters/projection"
	"photo-location-service/internal/adapters/publisher"
	"photo-location-service/internal/adapters/repositories"
	"photo-location-service/internal/api"
	"photo-location-service/internal/api/handlers"
	"photo-location-service/internal/config"
	"photo-location-service/internal/domain"
	"photo-location-service/internal/platform/db"
	"photo-location-service/internal/platform/logging"
	"photo-location-service/internal/ports"
	"syscall"
	"time"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Redis, NATS, goexif) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer conn.Close()

	repo, err := initAndSeed(ctx, cfg, conn)
	if err != nil {
		return err
	}

	metaCache, closeCache, err := openMetadataCache(ctx, cfg, conn)
	if err != nil {
		return err
	}
	defer closeCache()

	extractor, err := exif.NewCachedExtractor(
		exif.NewFileExtractor(cfg.Photos.Root, cfg.Photos.DefaultWho),
		metaCache,
		cfg.Photos.Concurrency,
	)
	if err != nil {
		return err
	}

	reference, err := domain.ParseReferencePolicy(cfg.Projection.Reference)
	if err != nil {
		return err
	}

	batches := &handlers.BatchHandler{
		Repo:             repo,
		Extractor:        extractor,
		Projections:      projection.Factory{Default: cfg.Projection.Default},
		DefaultReference: reference,
		Concurrency:      cfg.Photos.Concurrency,
	}

	// Publishing is optional; a broken broker should not keep the API down.
	if cfg.NATS.URL != "" {
		pub, err := publisher.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable, batch publishing disabled", "url", cfg.NATS.URL, "err", err)
		} else {
			defer pub.Close()
			batches.Publisher = pub
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(batches),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Initialize schema and, when configured, seed precomputed batches.
func initAndSeed(ctx context.Context, cfg *config.Config, conn *sql.DB) (ports.RecordRepository, error) {
	if err := repositories.InitSchema(conn); err != nil {
		return nil, fmt.Errorf("init and seed: %w", err)
	}

	repo, err := repositories.NewRecordRepository(cfg.Database.Driver, conn)
	if err != nil {
		return nil, fmt.Errorf("init and seed: %w", err)
	}

	if cfg.Database.SeedPath != "" {
		if err := repositories.SeedFromJSON(ctx, repo, cfg.Database.SeedPath); err != nil {
			return nil, fmt.Errorf("init and seed: %w", err)
		}
		slog.Info("seeded batches", "path", cfg.Database.SeedPath)
	}

	return repo, nil
}

// openMetadataCache prefers Redis when configured and falls back to the
// database cache when Redis is unreachable.
func openMetadataCache(ctx context.Context, cfg *config.Config, conn *sql.DB) (ports.MetadataCache, func(), error) {
	if cfg.Redis.Addr != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		client, err := cache.DialRedis(dialCtx, cfg.Redis.Addr)
		if err == nil {
			ttl := time.Duration(cfg.Redis.TTLSeconds) * time.Second
			return cache.NewRedisMetadataCache(client, ttl), func() { _ = client.Close() }, nil
		}
		slog.Warn("redis unavailable, using database metadata cache", "addr", cfg.Redis.Addr, "err", err)
	}

	c, err := cache.NewSQLCacheForDriver(cfg.Database.Driver, conn)
	if err != nil {
		return nil, nil, err
	}
	return c, func() {}, nil
}
