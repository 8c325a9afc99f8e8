package services

import (
	"cmp"
	"errors"
	"photo-location-service/internal/domain"
	"slices"
)

// GroupByDistance splits records into at most count contiguous bands of
// ascending distance.
//
// Records are sorted by distance (file name breaks ties) and chunked so band
// sizes differ by at most one, with the larger bands first: 10 records in 4
// bands split 3/3/2/2. Fewer records than bands yields one band per record.
// This is a reporting shortcut for clustering consumers, not a clustering
// algorithm.
func GroupByDistance(records []domain.PhotoLocationRecord, count int) ([]domain.DistanceBand, error) {
	if count < 1 {
		return nil, errors.New("group by distance: band count must be at least 1")
	}

	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b domain.PhotoLocationRecord) int {
		if c := cmp.Compare(a.Distance(), b.Distance()); c != 0 {
			return c
		}
		return cmp.Compare(a.FileName(), b.FileName())
	})

	n := len(sorted)
	count = min(count, n)
	if count == 0 {
		return []domain.DistanceBand{}, nil
	}
	base, extra := n/count, n%count

	bands := make([]domain.DistanceBand, 0, count)
	start := 0
	for bi := 0; bi < count; bi++ {
		size := base
		if bi < extra {
			size++
		}
		chunk := sorted[start : start+size]
		start += size

		bands = append(bands, domain.DistanceBand{
			Index:       bi,
			MinDistance: chunk[0].Distance(),
			MaxDistance: chunk[len(chunk)-1].Distance(),
			Records:     chunk,
		})
	}

	return bands, nil
}
