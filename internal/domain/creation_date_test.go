package domain

import (
	"testing"
	"time"
)

func TestParseCreationDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2023-05-01T10:00:00Z", time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2023:05:01 10:00:00", time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2023:05:01 10:00:00.250", time.Date(2023, 5, 1, 10, 0, 0, 250_000_000, time.UTC)},
		{"2023:05:01 12:00:00+02:00", time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2023-05-01 10:00:00", time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)},
		{" 2023-05-01 ", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, c := range cases {
		got, err := ParseCreationDate(c.in)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", c.in, err)
			continue
		}
		if !got.Equal(c.want) {
			t.Errorf("%q: got %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseCreationDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "yesterday", "2023/05/01"} {
		if _, err := ParseCreationDate(in); err == nil {
			t.Errorf("%q: expected error", in)
		}
	}
}
