package domain

import (
	"fmt"
	"strings"
	"time"
)

// ReferencePolicy names what a record's distance is measured against.
type ReferencePolicy string

const (
	// Distance to a fixed origin coordinate.
	ReferenceOrigin ReferencePolicy = "origin"
	// Distance to the mean planar position of the batch.
	ReferenceCentroid ReferencePolicy = "centroid"
	// Distance to the closest other photo in the batch.
	ReferenceNearest ReferencePolicy = "nearest"
	// Leg length of a greedy nearest-neighbor tour starting at the origin.
	ReferenceTour ReferencePolicy = "tour"
)

// ParseReferencePolicy resolves a policy name; the empty string means centroid.
func ParseReferencePolicy(s string) (ReferencePolicy, error) {
	switch p := ReferencePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ReferenceCentroid, nil
	case ReferenceOrigin, ReferenceCentroid, ReferenceNearest, ReferenceTour:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownReference, s)
	}
}

// NeedsOrigin reports whether the policy cannot run without an origin.
func (p ReferencePolicy) NeedsOrigin() bool {
	return p == ReferenceOrigin || p == ReferenceTour
}

// BuildFailure explains why one photo did not produce a record.
type BuildFailure struct {
	FileName string
	Kind     string
	Reason   string
}

// RecordBatch is the set of records produced together with one projection
// and one reference policy, so their x/y/distance values are comparable.
type RecordBatch struct {
	ID         string
	Projection string
	Reference  ReferencePolicy
	Origin     *Coordinates
	CreatedAt  time.Time
	Records    []PhotoLocationRecord
	Failures   []BuildFailure
}

// Summary drops the records and keeps the counts.
func (b *RecordBatch) Summary() BatchSummary {
	return BatchSummary{
		ID:          b.ID,
		Projection:  b.Projection,
		Reference:   b.Reference,
		CreatedAt:   b.CreatedAt,
		RecordCount: len(b.Records),
	}
}

// BatchSummary describes a stored batch without its records.
type BatchSummary struct {
	ID          string
	Projection  string
	Reference   ReferencePolicy
	CreatedAt   time.Time
	RecordCount int
}

// DistanceBand is a contiguous slice of records ordered by distance.
type DistanceBand struct {
	Index       int
	MinDistance float64
	MaxDistance float64
	Records     []PhotoLocationRecord
}
