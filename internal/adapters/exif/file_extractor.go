package exif

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"photo-location-service/internal/domain"
	"photo-location-service/internal/platform/obs"
	"strings"

	goexif "github.com/rwcarlsen/goexif/exif"
)

var (
	ErrNoLocation  = errors.New("photo has no GPS location")
	ErrOutsideRoot = errors.New("file name escapes the photo root")
)

// FileExtractor reads EXIF metadata from image files under Root.
//
// File names are relative to Root; names that would escape it are rejected.
// When Root is empty, names are used as given. The creation date is the raw
// DateTimeOriginal tag (DateTime as fallback) and attribution comes from the
// Artist tag, or DefaultWho when the camera did not record one.
type FileExtractor struct {
	Root       string
	DefaultWho string
}

func NewFileExtractor(root, defaultWho string) *FileExtractor {
	return &FileExtractor{Root: root, DefaultWho: defaultWho}
}

func (f *FileExtractor) Extract(ctx context.Context, fileName string) (_ domain.PhotoMetadata, err error) {
	defer obs.Time(ctx, "exif.Extract")(&err)

	if err := ctx.Err(); err != nil {
		return domain.PhotoMetadata{}, err
	}

	path, err := f.resolve(fileName)
	if err != nil {
		return domain.PhotoMetadata{}, fmt.Errorf("extract exif %q: %w", fileName, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return domain.PhotoMetadata{}, fmt.Errorf("extract exif %q: open: %w", fileName, err)
	}
	defer file.Close()

	x, err := goexif.Decode(file)
	// Non-critical errors leave a usable, partially decoded tag set.
	if err != nil && (x == nil || goexif.IsCriticalError(err)) {
		return domain.PhotoMetadata{}, fmt.Errorf("extract exif %q: decode: %w", fileName, err)
	}

	lat, lon, err := x.LatLong()
	if err != nil {
		return domain.PhotoMetadata{}, fmt.Errorf("extract exif %q: %w: %v", fileName, ErrNoLocation, err)
	}

	created := stringTag(x, goexif.DateTimeOriginal)
	if created == "" {
		created = stringTag(x, goexif.DateTime)
	}

	who := stringTag(x, goexif.Artist)
	if who == "" {
		who = f.DefaultWho
	}

	return domain.PhotoMetadata{
		FileName:     fileName,
		CreationDate: created,
		Coordinates:  domain.Coordinates{Lat: lat, Lon: lon},
		Who:          who,
	}, nil
}

func (f *FileExtractor) resolve(fileName string) (string, error) {
	name := strings.TrimSpace(fileName)
	if name == "" {
		return "", fmt.Errorf("%w: file name must be non-empty", domain.ErrInvalidIdentifier)
	}

	if f.Root == "" {
		return name, nil
	}

	if !filepath.IsLocal(name) {
		return "", ErrOutsideRoot
	}
	return filepath.Join(f.Root, name), nil
}

// stringTag returns the trimmed value of an ASCII tag, or "" when missing.
func stringTag(x *goexif.Exif, field goexif.FieldName) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}
