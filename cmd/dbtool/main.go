package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"photo-location-service/internal/adapters/cache"
	"photo-location-service/internal/adapters/exif"
	"photo-location-service/internal/adapters/projection"
	"photo-location-service/internal/adapters/repositories"
	"photo-location-service/internal/api/dto"
	"photo-location-service/internal/config"
	"photo-location-service/internal/domain"
	"photo-location-service/internal/platform/db"
	"photo-location-service/internal/platform/logging"
	"photo-location-service/internal/services"
)

// dbtool initializes the schema, optionally seeds batches from JSON, and can
// build a batch from the photo files named on the command line:
//
//	dbtool -seed data/seeds/batches.json
//	dbtool -build -reference origin -origin-lat 52.52 -origin-lon 13.405 a.jpg b.jpg
func main() {
	var (
		seedPath  = flag.String("seed", "", "JSON file of precomputed batches to load")
		build     = flag.Bool("build", false, "build a batch from the file arguments and print it as JSON")
		save      = flag.Bool("save", false, "with -build, also store the batch")
		proj      = flag.String("projection", "", "projection name (default from config)")
		reference = flag.String("reference", "", "reference policy: origin, centroid, nearest, tour")
		originLat = flag.Float64("origin-lat", 0, "origin latitude; setting either origin flag sets the origin")
		originLon = flag.Float64("origin-lon", 0, "origin longitude")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// Logs go to stderr so -build output stays valid JSON.
	slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, "text"))

	ctx := context.Background()

	conn, err := db.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		fatal(err)
	}
	defer conn.Close()

	slog.Info("initializing database schema", "driver", cfg.Database.Driver)
	if err := repositories.InitSchema(conn); err != nil {
		fatal(fmt.Errorf("schema initialization failed: %w", err))
	}

	repo, err := repositories.NewRecordRepository(cfg.Database.Driver, conn)
	if err != nil {
		fatal(err)
	}

	seed := *seedPath
	if seed == "" {
		seed = cfg.Database.SeedPath
	}
	if seed != "" {
		slog.Info("seeding database", "path", seed)
		if err := repositories.SeedFromJSON(ctx, repo, seed); err != nil {
			fatal(fmt.Errorf("seeding failed: %w", err))
		}
	}

	if !*build {
		slog.Info("done")
		return
	}

	metaCache, err := cache.NewSQLCacheForDriver(cfg.Database.Driver, conn)
	if err != nil {
		fatal(err)
	}
	extractor, err := exif.NewCachedExtractor(
		exif.NewFileExtractor(cfg.Photos.Root, cfg.Photos.DefaultWho),
		metaCache,
		cfg.Photos.Concurrency,
	)
	if err != nil {
		fatal(err)
	}

	refName := *reference
	if refName == "" {
		refName = cfg.Projection.Reference
	}
	policy, err := domain.ParseReferencePolicy(refName)
	if err != nil {
		fatal(err)
	}

	req := services.BuildRecordsRequest{
		FileNames:   flag.Args(),
		Projection:  *proj,
		Reference:   policy,
		Concurrency: cfg.Photos.Concurrency,
	}
	if originGiven(flag.CommandLine) {
		req.Origin = &domain.Coordinates{Lat: *originLat, Lon: *originLon}
	}

	batch, err := services.BuildRecords(ctx, req, extractor, projection.Factory{Default: cfg.Projection.Default})
	if err != nil {
		fatal(err)
	}

	if *save {
		if err := repo.SaveBatch(ctx, batch); err != nil {
			fatal(err)
		}
		sum := batch.Summary()
		slog.Info("batch saved", "batch_id", sum.ID, "records", sum.RecordCount, "failures", len(batch.Failures))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dto.BatchFromDomain(batch)); err != nil {
		fatal(err)
	}
}

// originGiven reports whether -origin-lat or -origin-lon was set explicitly,
// so an origin at 0,0 is still honored.
func originGiven(fs *flag.FlagSet) bool {
	given := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "origin-lat" || f.Name == "origin-lon" {
			given = true
		}
	})
	return given
}

func fatal(err error) {
	slog.Error("dbtool failed", "err", err)
	os.Exit(1)
}
