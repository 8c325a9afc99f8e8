package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layouts seen in camera EXIF writers and in exported metadata. Layouts
// without an offset are interpreted as UTC.
var creationDateLayouts = []string{
	"2006:01:02 15:04:05.999999999Z07:00",
	"2006:01:02 15:04:05.999999999",
	"2006:01:02 15:04:05Z07:00",
	"2006:01:02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseCreationDate parses a capture timestamp in any of the supported layouts.
func ParseCreationDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, errors.New("parse creation date: timestamp is required")
	}

	for _, layout := range creationDateLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, time.UTC); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse creation date: unsupported timestamp %q", value)
}
