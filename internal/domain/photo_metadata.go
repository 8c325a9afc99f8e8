package domain

// PhotoMetadata is what EXIF extraction yields for one image file.
// CreationDate keeps the writer's own format.
type PhotoMetadata struct {
	FileName     string
	CreationDate string
	Coordinates  Coordinates
	Who          string
}
