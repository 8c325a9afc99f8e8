package dto

import (
	"photo-location-service/internal/domain"
	"time"
)

type CoordinatesRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type BuildBatchRequest struct {
	Files       []string            `json:"files"`
	Projection  string              `json:"projection"`
	Reference   string              `json:"reference"`
	Origin      *CoordinatesRequest `json:"origin"`
	Concurrency int                 `json:"concurrency"`
}

type BatchResponse struct {
	ID         string              `json:"id"`
	Projection string              `json:"projection"`
	Reference  string              `json:"reference"`
	Origin     *CoordinatesRequest `json:"origin,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	Records    []RecordResponse    `json:"records"`
	Failures   []FailureResponse   `json:"failures"`
}

func BatchFromDomain(b *domain.RecordBatch) BatchResponse {
	res := BatchResponse{
		ID:         b.ID,
		Projection: b.Projection,
		Reference:  string(b.Reference),
		CreatedAt:  b.CreatedAt,
		Records:    RecordsFromDomain(b.Records),
		Failures:   make([]FailureResponse, 0, len(b.Failures)),
	}
	if b.Origin != nil {
		res.Origin = &CoordinatesRequest{Lat: b.Origin.Lat, Lon: b.Origin.Lon}
	}
	for _, f := range b.Failures {
		res.Failures = append(res.Failures, FailureResponse{
			FileName: f.FileName,
			Kind:     f.Kind,
			Reason:   f.Reason,
		})
	}
	return res
}

type BatchSummaryResponse struct {
	ID          string    `json:"id"`
	Projection  string    `json:"projection"`
	Reference   string    `json:"reference"`
	CreatedAt   time.Time `json:"created_at"`
	RecordCount int       `json:"record_count"`
}

func SummaryFromDomain(s domain.BatchSummary) BatchSummaryResponse {
	return BatchSummaryResponse{
		ID:          s.ID,
		Projection:  s.Projection,
		Reference:   string(s.Reference),
		CreatedAt:   s.CreatedAt,
		RecordCount: s.RecordCount,
	}
}

type ListBatchesResponse struct {
	Batches []BatchSummaryResponse `json:"batches"`
}

type BandResponse struct {
	Index       int              `json:"index"`
	MinDistance float64          `json:"min_distance"`
	MaxDistance float64          `json:"max_distance"`
	Records     []RecordResponse `json:"records"`
}

type ListBandsResponse struct {
	BatchID string         `json:"batch_id"`
	Bands   []BandResponse `json:"bands"`
}
