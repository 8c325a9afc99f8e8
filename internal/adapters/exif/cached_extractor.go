package exif

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"photo-location-service/internal/domain"
	"photo-location-service/internal/platform/metrics"
	"photo-location-service/internal/platform/obs"
	"photo-location-service/internal/ports"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// CachedExtractor implements ExifBatchExtractor on top of another extractor.
//
// It coordinates:
//   - File name normalization and de-duplication
//   - Persistent metadata caching
//   - Bounded parallel extraction of cache misses
//
// Cache write failures are logged and do not fail the extraction.
// The extractor is safe for concurrent use.
type CachedExtractor struct {
	inner       ports.ExifExtractor
	cache       ports.MetadataCache
	concurrency int
}

func NewCachedExtractor(inner ports.ExifExtractor, cache ports.MetadataCache, concurrency int) (*CachedExtractor, error) {
	if inner == nil {
		return nil, errors.New("cached extractor: inner extractor is nil")
	}
	if concurrency <= 0 {
		concurrency = 8
	}
	return &CachedExtractor{inner: inner, cache: cache, concurrency: concurrency}, nil
}

// Delegate to batched path to reuse caching logic.
func (c *CachedExtractor) Extract(ctx context.Context, fileName string) (domain.PhotoMetadata, error) {
	name := strings.TrimSpace(fileName)
	if name == "" {
		return domain.PhotoMetadata{}, fmt.Errorf("cached extract: %w: file name must be non-empty", domain.ErrInvalidIdentifier)
	}

	metas, errs, err := c.ExtractMany(ctx, []string{name})
	if err != nil {
		return domain.PhotoMetadata{}, err
	}
	if e, ok := errs[name]; ok {
		return domain.PhotoMetadata{}, e
	}

	m, ok := metas[name]
	if !ok {
		return domain.PhotoMetadata{}, fmt.Errorf("cached extract: no result for %q", name)
	}
	return m, nil
}

// ExtractMany returns metadata for every readable file and a per-file error
// for the rest. The returned error is reserved for cache reads and cancellation.
func (c *CachedExtractor) ExtractMany(
	ctx context.Context,
	fileNames []string,
) (_ map[string]domain.PhotoMetadata, _ map[string]error, err error) {
	defer obs.Time(ctx, "exif.cached.ExtractMany")(&err)

	seen := make(map[string]struct{}, len(fileNames))
	names := make([]string, 0, len(fileNames))
	for _, n := range fileNames {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}

	out := make(map[string]domain.PhotoMetadata, len(names))
	failed := make(map[string]error)
	if len(names) == 0 {
		return out, failed, nil
	}

	// Check the persistent cache before reading any file.
	if c.cache != nil {
		hits, err := c.cache.GetMany(ctx, names)
		if err != nil {
			return nil, nil, fmt.Errorf("cached extract: get metadata cache: %w", err)
		}
		for k, v := range hits {
			out[k] = v
		}
	}

	misses := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := out[n]; !ok {
			misses = append(misses, n)
		}
	}
	metrics.ExifCacheHits.Add(float64(len(names) - len(misses)))
	metrics.ExifCacheMisses.Add(float64(len(misses)))

	if len(misses) == 0 {
		return out, failed, nil
	}

	var mu sync.Mutex
	fresh := make(map[string]domain.PhotoMetadata, len(misses))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, name := range misses {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := c.inner.Extract(gctx, name)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[name] = err
				return nil
			}
			m.FileName = name
			fresh[name] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("cached extract: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("cached extract: %w", err)
	}

	if c.cache != nil && len(fresh) > 0 {
		if err := c.cache.PutMany(ctx, fresh); err != nil {
			slog.WarnContext(ctx, "metadata cache write failed", "req_id", obs.RequestID(ctx), "err", err)
		}
	}

	for k, v := range fresh {
		out[k] = v
	}

	return out, failed, nil
}
