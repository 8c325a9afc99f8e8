package dto

import (
	"photo-location-service/internal/domain"
	"time"
)

// RecordResponse keeps the historical field names of the photo location
// contract so existing plotting scripts can read it unchanged.
type RecordResponse struct {
	CreationDate string  `json:"CreationDate"`
	FileName     string  `json:"FileName"`
	GPSLatitude  float64 `json:"GPSLatitude"`
	GPSLongitude float64 `json:"GPSLongitude"`
	Who          string  `json:"Who"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Distance     float64 `json:"distance"`
	// CapturedAt is CreationDate in RFC 3339, empty when it does not parse.
	CapturedAt   string  `json:"captured_at,omitempty"`
}

func RecordFromDomain(r domain.PhotoLocationRecord) RecordResponse {
	return RecordResponse{
		CreationDate: r.CreationDate(),
		FileName:     r.FileName(),
		GPSLatitude:  r.GPSLatitude(),
		GPSLongitude: r.GPSLongitude(),
		Who:          r.Who(),
		X:            r.X(),
		Y:            r.Y(),
		Distance:     r.Distance(),
		CapturedAt:   capturedAt(r),
	}
}

func capturedAt(r domain.PhotoLocationRecord) string {
	t, err := r.CaptureTime()
	if err != nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func RecordsFromDomain(records []domain.PhotoLocationRecord) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, RecordFromDomain(r))
	}
	return out
}

type FailureResponse struct {
	FileName string `json:"file_name"`
	Kind     string `json:"kind"`
	Reason   string `json:"reason"`
}
