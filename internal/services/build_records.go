package services

import (
	"context"
	"errors"
	"fmt"
	"photo-location-service/internal/domain"
	"photo-location-service/internal/platform/metrics"
	"photo-location-service/internal/platform/obs"
	"photo-location-service/internal/ports"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

type BuildRecordsRequest struct {
	FileNames   []string
	Projection  string
	Reference   domain.ReferencePolicy
	Origin      *domain.Coordinates
	Concurrency int
}

type extractResult struct {
	meta domain.PhotoMetadata
	err  error
}

// BuildRecords extracts EXIF metadata for every requested file, projects the
// located photos with one projection, and builds a PhotoLocationRecord per photo.
//
// Each photo is independent: a file that cannot be read or whose values fail
// validation is reported in RecordBatch.Failures and never blocks the others.
// Only request-level problems (unknown projection or policy, missing origin,
// cancelled context) fail the call.
func BuildRecords(
	ctx context.Context,
	req BuildRecordsRequest,
	extractor ports.ExifExtractor,
	factory ports.ProjectionFactory,
) (_ *domain.RecordBatch, err error) {
	defer obs.Time(ctx, "services.BuildRecords")(&err)
	start := time.Now()

	if extractor == nil || factory == nil {
		return nil, errors.New("build records: extractor and projection factory must be non-nil")
	}

	if len(req.FileNames) == 0 {
		return nil, errors.New("build records: at least one file name is required")
	}

	policy := req.Reference
	if policy == "" {
		policy = domain.ReferenceCentroid
	}
	if _, err := domain.ParseReferencePolicy(string(policy)); err != nil {
		return nil, fmt.Errorf("build records: %w", err)
	}
	if policy.NeedsOrigin() && req.Origin == nil {
		return nil, fmt.Errorf("build records: %w: %q", domain.ErrMissingOrigin, policy)
	}
	if req.Origin != nil {
		if err := req.Origin.Validate(); err != nil {
			return nil, fmt.Errorf("build records: origin: %w", err)
		}
	}

	// Fail fast on an unknown projection before touching any file.
	if _, err := factory.NewProjection(req.Projection, domain.Coordinates{}); err != nil {
		return nil, fmt.Errorf("build records: %w", err)
	}

	failures := make([]domain.BuildFailure, 0)
	names := make([]string, 0, len(req.FileNames))
	seen := make(map[string]struct{}, len(req.FileNames))
	for _, raw := range req.FileNames {
		name := strings.TrimSpace(raw)
		if name == "" {
			failures = append(failures, domain.BuildFailure{
				FileName: raw,
				Kind:     domain.FailureInvalidIdentifier,
				Reason:   "file name must be non-empty",
			})
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	results, err := extractAll(ctx, names, extractor, req.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("build records: %w", err)
	}

	located := make([]domain.PhotoMetadata, 0, len(names))
	for i, name := range names {
		res := results[i]
		if res.err != nil {
			failures = append(failures, domain.BuildFailure{
				FileName: name,
				Kind:     domain.FailureKind(res.err),
				Reason:   res.err.Error(),
			})
			continue
		}

		meta := res.meta
		meta.FileName = name
		if err := meta.Coordinates.Validate(); err != nil {
			failures = append(failures, domain.BuildFailure{
				FileName: name,
				Kind:     domain.FailureInvalidCoordinate,
				Reason:   err.Error(),
			})
			continue
		}
		located = append(located, meta)
	}

	coords := make([]domain.Coordinates, len(located))
	for i, m := range located {
		coords[i] = m.Coordinates
	}

	center := domain.Centroid(coords)
	if req.Origin != nil {
		center = *req.Origin
	}

	proj, err := factory.NewProjection(req.Projection, center)
	if err != nil {
		return nil, fmt.Errorf("build records: %w", err)
	}

	projected, err := ProjectBatch(proj, coords, policy, req.Origin)
	if err != nil {
		return nil, fmt.Errorf("build records: %w", err)
	}

	records := make([]domain.PhotoLocationRecord, 0, len(located))
	for _, idx := range projected.Order {
		m := located[idx]
		pp := projected.Points[idx]

		rec, err := domain.NewPhotoLocationRecord(domain.PhotoLocationInput{
			CreationDate: m.CreationDate,
			FileName:     m.FileName,
			GPSLatitude:  m.Coordinates.Lat,
			GPSLongitude: m.Coordinates.Lon,
			Who:          m.Who,
			X:            pp.Point.X,
			Y:            pp.Point.Y,
			Distance:     pp.Distance,
		})
		if err != nil {
			failures = append(failures, domain.BuildFailure{
				FileName: m.FileName,
				Kind:     domain.FailureKind(err),
				Reason:   err.Error(),
			})
			continue
		}
		records = append(records, rec)
	}

	metrics.RecordsBuilt.WithLabelValues(proj.Name()).Add(float64(len(records)))
	for _, f := range failures {
		metrics.RecordFailures.WithLabelValues(f.Kind).Inc()
	}
	metrics.BatchBuildDuration.Observe(time.Since(start).Seconds())

	return &domain.RecordBatch{
		ID:         uuid.NewString(),
		Projection: proj.Name(),
		Reference:  policy,
		Origin:     req.Origin,
		CreatedAt:  time.Now().UTC(),
		Records:    records,
		Failures:   failures,
	}, nil
}

// extractAll returns one result per name, in the same order.
func extractAll(
	ctx context.Context,
	names []string,
	extractor ports.ExifExtractor,
	concurrency int,
) ([]extractResult, error) {
	results := make([]extractResult, len(names))
	if len(names) == 0 {
		return results, nil
	}

	// Prefer a single batched lookup when supported, so caches are queried once.
	if be, ok := extractor.(ports.ExifBatchExtractor); ok {
		metas, errs, err := be.ExtractMany(ctx, names)
		if err != nil {
			return nil, fmt.Errorf("extract metadata: %w", err)
		}
		for i, name := range names {
			if e, ok := errs[name]; ok {
				results[i] = extractResult{err: e}
				continue
			}
			m, ok := metas[name]
			if !ok {
				results[i] = extractResult{err: fmt.Errorf("extract metadata: no result for %q", name)}
				continue
			}
			results[i] = extractResult{meta: m}
		}
		return results, nil
	}

	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			meta, err := extractor.Extract(gctx, name)
			results[i] = extractResult{meta: meta, err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract metadata: %w", err)
	}
	// A cancellation mid-batch shows up as per-file errors; report it once instead.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract metadata: %w", err)
	}

	return results, nil
}
