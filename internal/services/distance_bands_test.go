package services

import (
	"fmt"
	"photo-location-service/internal/domain"
	"slices"
	"testing"
)

func mustRecord(t *testing.T, name string, distance float64) domain.PhotoLocationRecord {
	t.Helper()
	rec, err := domain.NewPhotoLocationRecord(domain.PhotoLocationInput{
		FileName:     name,
		CreationDate: "2023-05-01T10:00:00Z",
		GPSLatitude:  10,
		GPSLongitude: 10,
		Distance:     distance,
	})
	if err != nil {
		t.Fatalf("build record %q: %v", name, err)
	}
	return rec
}

func TestGroupByDistance(t *testing.T) {
	records := []domain.PhotoLocationRecord{
		mustRecord(t, "e.jpg", 50),
		mustRecord(t, "a.jpg", 10),
		mustRecord(t, "c.jpg", 30),
		mustRecord(t, "b.jpg", 10),
		mustRecord(t, "d.jpg", 40),
	}

	bands, err := GroupByDistance(records, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bands) != 2 {
		t.Fatalf("bands = %d, want 2", len(bands))
	}

	first := bands[0]
	if len(first.Records) != 3 || first.Records[0].FileName() != "a.jpg" || first.Records[1].FileName() != "b.jpg" {
		t.Fatalf("unexpected first band: %+v", first)
	}
	if first.MinDistance != 10 || first.MaxDistance != 30 {
		t.Fatalf("first band range = [%v, %v], want [10, 30]", first.MinDistance, first.MaxDistance)
	}
	if bands[1].Index != 1 || len(bands[1].Records) != 2 || bands[1].MaxDistance != 50 {
		t.Fatalf("unexpected second band: %+v", bands[1])
	}

	// Input order is untouched.
	if records[0].FileName() != "e.jpg" {
		t.Fatalf("input slice was reordered")
	}
}

func TestGroupByDistanceMoreBandsThanRecords(t *testing.T) {
	records := []domain.PhotoLocationRecord{mustRecord(t, "a.jpg", 1), mustRecord(t, "b.jpg", 2)}

	bands, err := GroupByDistance(records, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bands) != 2 {
		t.Fatalf("bands = %d, want 2 (empty bands dropped)", len(bands))
	}

	if _, err := GroupByDistance(records, 0); err == nil {
		t.Fatal("expected error for zero bands")
	}

	empty, err := GroupByDistance(nil, 3)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty input: bands=%v err=%v", empty, err)
	}
}

func TestGroupByDistanceBandSizes(t *testing.T) {
	cases := []struct {
		records int
		count   int
		want    []int
	}{
		{10, 4, []int{3, 3, 2, 2}},
		{4, 3, []int{2, 1, 1}},
		{6, 3, []int{2, 2, 2}},
		{3, 3, []int{1, 1, 1}},
	}
	for _, c := range cases {
		records := make([]domain.PhotoLocationRecord, 0, c.records)
		for i := 0; i < c.records; i++ {
			records = append(records, mustRecord(t, fmt.Sprintf("img%02d.jpg", i), float64(i)))
		}

		bands, err := GroupByDistance(records, c.count)
		if err != nil {
			t.Fatalf("%d/%d: unexpected error: %v", c.records, c.count, err)
		}
		got := make([]int, 0, len(bands))
		for _, b := range bands {
			got = append(got, len(b.Records))
		}
		if !slices.Equal(got, c.want) {
			t.Errorf("%d records in %d bands: sizes %v, want %v", c.records, c.count, got, c.want)
		}
		if last := bands[len(bands)-1]; last.MaxDistance != float64(c.records-1) {
			t.Errorf("%d/%d: last band ends at %v, want %d", c.records, c.count, last.MaxDistance, c.records-1)
		}
	}
}
