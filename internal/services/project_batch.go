package services

import (
	"errors"
	"fmt"
	"math"
	"photo-location-service/internal/domain"
	"photo-location-service/internal/ports"
)

// ProjectedBatch holds one (x, y, distance) triple per input coordinate, in
// input order, plus the order in which the records should be reported.
type ProjectedBatch struct {
	Points []domain.ProjectedPoint
	Order  []int
}

// ProjectBatch projects every coordinate with the same projection and measures
// each point's distance against the reference chosen by policy. Distances are
// Euclidean in projection units.
//
// origin is required for ReferenceOrigin and ReferenceTour and ignored otherwise.
func ProjectBatch(
	proj ports.Projection,
	coords []domain.Coordinates,
	policy domain.ReferencePolicy,
	origin *domain.Coordinates,
) (*ProjectedBatch, error) {
	if proj == nil {
		return nil, errors.New("project batch: projection must be non-nil")
	}

	if policy.NeedsOrigin() && origin == nil {
		return nil, fmt.Errorf("project batch: %w: %q", domain.ErrMissingOrigin, policy)
	}

	points := make([]domain.PlanarPoint, len(coords))
	for i, c := range coords {
		p, err := proj.Forward(c)
		if err != nil {
			return nil, fmt.Errorf("project batch: point %d: %w", i, err)
		}
		points[i] = p
	}

	var originPoint domain.PlanarPoint
	if origin != nil {
		p, err := proj.Forward(*origin)
		if err != nil {
			return nil, fmt.Errorf("project batch: origin: %w", err)
		}
		originPoint = p
	}

	out := &ProjectedBatch{
		Points: make([]domain.ProjectedPoint, len(points)),
		Order:  identityOrder(len(points)),
	}
	for i, p := range points {
		out.Points[i].Point = p
	}

	if len(points) == 0 {
		return out, nil
	}

	switch policy {
	case domain.ReferenceOrigin:
		for i, p := range points {
			out.Points[i].Distance = p.DistanceTo(originPoint)
		}
	case domain.ReferenceCentroid:
		c := planarCentroid(points)
		for i, p := range points {
			out.Points[i].Distance = p.DistanceTo(c)
		}
	case domain.ReferenceNearest:
		nearestNeighborDistances(points, out.Points)
	case domain.ReferenceTour:
		out.Order = nearestNeighborTour(originPoint, points, out.Points)
	default:
		return nil, fmt.Errorf("project batch: %w: %q", domain.ErrUnknownReference, policy)
	}

	return out, nil
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func planarCentroid(points []domain.PlanarPoint) domain.PlanarPoint {
	var c domain.PlanarPoint
	for _, p := range points {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(points))
	return domain.PlanarPoint{X: c.X / n, Y: c.Y / n}
}

// nearestNeighborDistances stores for each point the distance to the closest
// other point. A lone point has no neighbor and gets 0.
func nearestNeighborDistances(points []domain.PlanarPoint, out []domain.ProjectedPoint) {
	if len(points) == 1 {
		out[0].Distance = 0
		return
	}

	for i, p := range points {
		best := math.Inf(1)
		for j, q := range points {
			if i == j {
				continue
			}
			if d := p.DistanceTo(q); d < best {
				best = d
			}
		}
		out[i].Distance = best
	}
}

// nearestNeighborTour visits every point greedily, always moving to the
// closest unvisited one, starting at start. Each point's distance is the
// length of the leg that reached it. Returns the visiting order.
//
// This does not attempt global tour optimization; it prioritizes
// determinism and simplicity over optimality.
func nearestNeighborTour(start domain.PlanarPoint, points []domain.PlanarPoint, out []domain.ProjectedPoint) []int {
	visited := make([]bool, len(points))
	order := make([]int, 0, len(points))
	current := start

	for len(order) < len(points) {
		best := -1
		minDist := math.Inf(1)

		// Select the next stop by minimum leg length (greedy step).
		for i, p := range points {
			if visited[i] {
				continue
			}
			d := current.DistanceTo(p)
			// Strict comparison keeps the lowest index on ties, so the order is deterministic.
			if best == -1 || d < minDist {
				best = i
				minDist = d
			}
		}

		visited[best] = true
		out[best].Distance = minDist
		order = append(order, best)
		current = points[best]
	}

	return order
}
