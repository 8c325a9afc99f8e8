package repositories

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"photo-location-service/internal/domain"
	"photo-location-service/internal/platform/db"
	"photo-location-service/internal/ports"
	"strings"
	"testing"
	"time"
)

func newTestRepo(t *testing.T) *SqliteRecordRepository {
	t.Helper()

	conn, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := InitSchema(conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	// Running it twice must be harmless.
	if err := InitSchema(conn); err != nil {
		t.Fatalf("init schema again: %v", err)
	}
	return NewSqliteRecordRepository(conn)
}

func mustRecord(t *testing.T, in domain.PhotoLocationInput) domain.PhotoLocationRecord {
	t.Helper()
	r, err := domain.NewPhotoLocationRecord(in)
	if err != nil {
		t.Fatalf("NewPhotoLocationRecord(%+v): %v", in, err)
	}
	return r
}

func sampleBatch(t *testing.T, id string, created time.Time) *domain.RecordBatch {
	return &domain.RecordBatch{
		ID:         id,
		Projection: "equirectangular",
		Reference:  domain.ReferenceOrigin,
		Origin:     &domain.Coordinates{Lat: 52.5, Lon: 13.4},
		CreatedAt:  created,
		Records: []domain.PhotoLocationRecord{
			mustRecord(t, domain.PhotoLocationInput{
				CreationDate: "2021:06:01 11:00:00",
				FileName:     "b.jpg",
				GPSLatitude:  52.51,
				GPSLongitude: 13.41,
				Who:          "alice",
				X:            677.2,
				Y:            1111.9,
				Distance:     1305.4,
			}),
			mustRecord(t, domain.PhotoLocationInput{
				CreationDate: "2021:06:01 10:00:00",
				FileName:     "a.jpg",
				GPSLatitude:  52.5,
				GPSLongitude: 13.4,
				X:            0,
				Y:            0,
				Distance:     0,
			}),
		},
		Failures: []domain.BuildFailure{
			{FileName: "c.jpg", Kind: domain.FailureExtract, Reason: "no location"},
		},
	}
}

func TestSqliteRecordRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	created := time.Date(2024, 3, 1, 12, 0, 0, 123, time.UTC)
	want := sampleBatch(t, "batch-1", created)
	if err := repo.SaveBatch(ctx, want); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	got, err := repo.GetBatch(ctx, "batch-1")
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}

	if got.ID != want.ID || got.Projection != want.Projection || got.Reference != want.Reference {
		t.Fatalf("header mismatch: %+v", got)
	}
	if got.Origin == nil || *got.Origin != *want.Origin {
		t.Fatalf("origin mismatch: %v", got.Origin)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at: expected %v, got %v", created, got.CreatedAt)
	}
	if len(got.Records) != len(want.Records) {
		t.Fatalf("expected %d records, got %d", len(want.Records), len(got.Records))
	}
	// Records come back in saved order with every field intact.
	for i := range want.Records {
		if got.Records[i] != want.Records[i] {
			t.Fatalf("record %d: expected %+v, got %+v", i, want.Records[i], got.Records[i])
		}
	}
	if len(got.Failures) != 1 || got.Failures[0] != want.Failures[0] {
		t.Fatalf("failures mismatch: %+v", got.Failures)
	}
}

func TestSqliteRecordRepositoryReplacesBatch(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	b := sampleBatch(t, "batch-1", time.Now())
	if err := repo.SaveBatch(ctx, b); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}

	b.Records = b.Records[:1]
	b.Failures = nil
	b.Origin = nil
	b.Reference = domain.ReferenceCentroid
	if err := repo.SaveBatch(ctx, b); err != nil {
		t.Fatalf("SaveBatch again: %v", err)
	}

	got, err := repo.GetBatch(ctx, "batch-1")
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if len(got.Records) != 1 || len(got.Failures) != 0 {
		t.Fatalf("expected replaced contents, got %d records, %d failures", len(got.Records), len(got.Failures))
	}
	if got.Origin != nil || got.Reference != domain.ReferenceCentroid {
		t.Fatalf("expected header replaced, got %+v", got)
	}
}

func TestSqliteRecordRepositoryNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetBatch(context.Background(), "nope")
	if !errors.Is(err, ports.ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got %v", err)
	}
}

func TestSqliteRecordRepositoryListBatches(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	older := sampleBatch(t, "older", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := sampleBatch(t, "newer", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	newer.Records = newer.Records[:1]

	for _, b := range []*domain.RecordBatch{older, newer} {
		if err := repo.SaveBatch(ctx, b); err != nil {
			t.Fatalf("SaveBatch(%s): %v", b.ID, err)
		}
	}

	got, err := repo.ListBatches(ctx)
	if err != nil {
		t.Fatalf("ListBatches: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(got))
	}
	if got[0].ID != "newer" || got[0].RecordCount != 1 {
		t.Fatalf("expected newest first with 1 record, got %+v", got[0])
	}
	if got[1].ID != "older" || got[1].RecordCount != 2 {
		t.Fatalf("expected older second with 2 records, got %+v", got[1])
	}
}

func TestSqliteRecordRepositoryRejectsEmptyID(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.SaveBatch(context.Background(), &domain.RecordBatch{}); err == nil {
		t.Fatal("expected error for empty batch id")
	}
}

func TestBindRewritesPlaceholders(t *testing.T) {
	s := recordStore{placeholder: dollar}
	got := s.bind("SELECT a FROM t WHERE b = ? AND c = ?;")
	want := "SELECT a FROM t WHERE b = $1 AND c = $2;"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func TestSeedFromJSON(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	path := writeSeed(t, `[
		{
			"batch_id": "seeded",
			"projection": "equirectangular",
			"reference": "origin",
			"origin": {"lat": 52.5, "lon": 13.4},
			"created_at": "2024-05-01T08:00:00Z",
			"records": [
				{"CreationDate": "2021:06:01 10:00:00", "FileName": "a.jpg", "GPSLatitude": 52.5, "GPSLongitude": 13.4, "Who": "alice", "x": 0, "y": 0, "distance": 0},
				{"CreationDate": "2021:06:01 11:00:00", "FileName": "b.jpg", "GPSLatitude": 52.51, "GPSLongitude": 13.41, "Who": "", "x": 677.2, "y": 1111.9, "distance": 1305.4}
			]
		}
	]`)

	if err := SeedFromJSON(ctx, repo, path); err != nil {
		t.Fatalf("SeedFromJSON: %v", err)
	}

	got, err := repo.GetBatch(ctx, "seeded")
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if len(got.Records) != 2 || got.Records[1].FileName() != "b.jpg" || got.Records[1].Distance() != 1305.4 {
		t.Fatalf("unexpected seeded records: %+v", got.Records)
	}
	if !got.CreatedAt.Equal(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected created_at: %v", got.CreatedAt)
	}
}

func TestSeedFromJSONRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{
			name:    "latitude out of range",
			body:    `[{"batch_id":"b","projection":"equirectangular","records":[{"FileName":"a.jpg","GPSLatitude":95,"GPSLongitude":0}]}]`,
			wantErr: domain.ErrInvalidCoordinate,
		},
		{
			name:    "negative distance",
			body:    `[{"batch_id":"b","projection":"equirectangular","records":[{"FileName":"a.jpg","distance":-1}]}]`,
			wantErr: domain.ErrInvalidDerivedValue,
		},
		{
			name:    "empty file name",
			body:    `[{"batch_id":"b","projection":"equirectangular","records":[{"FileName":""}]}]`,
			wantErr: domain.ErrInvalidIdentifier,
		},
		{
			name:    "origin policy without origin",
			body:    `[{"batch_id":"b","projection":"equirectangular","reference":"origin","records":[]}]`,
			wantErr: domain.ErrMissingOrigin,
		},
		{
			name:    "unknown reference",
			body:    `[{"batch_id":"b","projection":"equirectangular","reference":"sideways","records":[]}]`,
			wantErr: domain.ErrUnknownReference,
		},
		{
			name: "empty batch id",
			body: `[{"batch_id":" ","projection":"equirectangular","records":[]}]`,
		},
		{
			name: "duplicate file name",
			body: `[{"batch_id":"b","projection":"equirectangular","records":[{"FileName":"a.jpg"},{"FileName":"a.jpg"}]}]`,
		},
		{
			name: "malformed json",
			body: `[{`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepo(t)
			err := SeedFromJSON(context.Background(), repo, writeSeed(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			// Nothing is written when any item is invalid.
			list, lerr := repo.ListBatches(context.Background())
			if lerr != nil {
				t.Fatalf("ListBatches: %v", lerr)
			}
			if len(list) != 0 {
				t.Fatalf("expected no batches, got %+v", list)
			}
		})
	}
}

func TestSeedFromJSONErrorIndexes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "second batch invalid",
			body: `[{"batch_id":"a","projection":"equirectangular","records":[]},{"batch_id":"","projection":"equirectangular"}]`,
			want: "item at index 1:",
		},
		{
			name: "first record invalid",
			body: `[{"batch_id":"b","projection":"equirectangular","records":[{"FileName":""}]}]`,
			want: "item at index 0: record at index 0:",
		},
		{
			name: "duplicate second record",
			body: `[{"batch_id":"b","projection":"equirectangular","records":[{"FileName":"a.jpg"},{"FileName":"a.jpg"}]}]`,
			want: "record at index 1: duplicate file name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SeedFromJSON(context.Background(), newTestRepo(t), writeSeed(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}
