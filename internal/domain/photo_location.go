package domain

import (
	"fmt"
	"time"
)

// PhotoLocationInput carries everything needed to build a PhotoLocationRecord:
// the EXIF fields and the x/y/distance already produced by a projection step.
type PhotoLocationInput struct {
	CreationDate string
	FileName     string
	GPSLatitude  float64
	GPSLongitude float64
	Who          string
	X            float64
	Y            float64
	Distance     float64
}

// PhotoLocationRecord describes one photo enriched with its capture location and
// derived planar position. It is a read-only value: fields are only reachable
// through accessors, and two records built from identical input compare equal.
type PhotoLocationRecord struct {
	creationDate string
	fileName     string
	gpsLatitude  float64
	gpsLongitude float64
	who          string
	x            float64
	y            float64
	distance     float64
}

// NewPhotoLocationRecord validates in and returns the record. Either every
// field is accepted or the zero record is returned with an error wrapping
// ErrInvalidIdentifier, ErrInvalidCoordinate or ErrInvalidDerivedValue.
// Values are stored exactly as given.
func NewPhotoLocationRecord(in PhotoLocationInput) (PhotoLocationRecord, error) {
	if in.FileName == "" {
		return PhotoLocationRecord{}, fmt.Errorf("new photo location record: %w: file name must be non-empty", ErrInvalidIdentifier)
	}

	coords := Coordinates{Lat: in.GPSLatitude, Lon: in.GPSLongitude}
	if err := coords.Validate(); err != nil {
		return PhotoLocationRecord{}, fmt.Errorf("new photo location record %q: %w", in.FileName, err)
	}

	derived := []struct {
		name  string
		value float64
	}{
		{"x", in.X},
		{"y", in.Y},
		{"distance", in.Distance},
	}
	for _, d := range derived {
		if !isFinite(d.value) {
			return PhotoLocationRecord{}, fmt.Errorf(
				"new photo location record %q: %w: %s must be finite, got %v",
				in.FileName, ErrInvalidDerivedValue, d.name, d.value,
			)
		}
	}
	if in.Distance < 0 {
		return PhotoLocationRecord{}, fmt.Errorf(
			"new photo location record %q: %w: distance must be non-negative, got %v",
			in.FileName, ErrInvalidDerivedValue, in.Distance,
		)
	}

	return PhotoLocationRecord{
		creationDate: in.CreationDate,
		fileName:     in.FileName,
		gpsLatitude:  in.GPSLatitude,
		gpsLongitude: in.GPSLongitude,
		who:          in.Who,
		x:            in.X,
		y:            in.Y,
		distance:     in.Distance,
	}, nil
}

func (r PhotoLocationRecord) CreationDate() string { return r.creationDate }
func (r PhotoLocationRecord) FileName() string { return r.fileName }
func (r PhotoLocationRecord) GPSLatitude() float64 { return r.gpsLatitude }
func (r PhotoLocationRecord) GPSLongitude() float64 { return r.gpsLongitude }
func (r PhotoLocationRecord) Who() string { return r.who }
func (r PhotoLocationRecord) X() float64 { return r.x }
func (r PhotoLocationRecord) Y() float64 { return r.y }
func (r PhotoLocationRecord) Distance() float64 { return r.distance }

// Coordinates returns the capture location.
func (r PhotoLocationRecord) Coordinates() Coordinates {
	return Coordinates{Lat: r.gpsLatitude, Lon: r.gpsLongitude}
}

// Input returns the values the record was built from, for callers that
// need to derive a modified copy.
func (r PhotoLocationRecord) Input() PhotoLocationInput {
	return PhotoLocationInput{
		CreationDate: r.creationDate,
		FileName:     r.fileName,
		GPSLatitude:  r.gpsLatitude,
		GPSLongitude: r.gpsLongitude,
		Who:          r.who,
		X:            r.x,
		Y:            r.y,
		Distance:     r.distance,
	}
}

// CaptureTime parses CreationDate. The record itself never requires it to parse.
func (r PhotoLocationRecord) CaptureTime() (time.Time, error) {
	return ParseCreationDate(r.creationDate)
}
