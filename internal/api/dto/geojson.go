package dto

import "photo-location-service/internal/domain"

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   PointGeometry  `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type PointGeometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// GeoJSONFromRecords turns records into Point features, [lon, lat] order.
// Derived values ride along as properties.
func GeoJSONFromRecords(records []domain.PhotoLocationRecord) FeatureCollection {
	fc := FeatureCollection{
		Type:     "FeatureCollection",
		Features: make([]Feature, 0, len(records)),
	}
	for _, r := range records {
		props := map[string]any{
			"CreationDate": r.CreationDate(),
			"FileName":     r.FileName(),
			"Who":          r.Who(),
			"x":            r.X(),
			"y":            r.Y(),
			"distance":     r.Distance(),
		}
		if at := capturedAt(r); at != "" {
			props["captured_at"] = at
		}

		fc.Features = append(fc.Features, Feature{
			Type: "Feature",
			Geometry: PointGeometry{
				Type:        "Point",
				Coordinates: r.Coordinates().CoordsToList(),
			},
			Properties: props,
		})
	}
	return fc
}
