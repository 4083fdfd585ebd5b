package media

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Asset is an uploaded file tracked in the media library.
type Asset struct {
	bun.BaseModel `bun:"table:media_assets,alias:ma"`

	ID         uuid.UUID  `bun:",pk,type:uuid"               json:"id"`
	Filename   string     `bun:"filename,notnull"            json:"filename"`
	StoredPath string     `bun:"stored_path,notnull"         json:"stored_path"`
	URL        string     `bun:"url,notnull"                 json:"url"`
	MimeType   string     `bun:"mime_type,notnull"           json:"mime_type"`
	Size       int64      `bun:"size,notnull"                json:"size"`
	Width      *int       `bun:"width"                       json:"width,omitempty"`
	Height     *int       `bun:"height"                      json:"height,omitempty"`
	AltText    string     `bun:"alt_text"                    json:"alt_text"`
	UploadedBy *uuid.UUID `bun:"uploaded_by,type:uuid,nullzero" json:"uploaded_by,omitempty"`
	CreatedAt  time.Time  `bun:"created_at,nullzero"         json:"created_at"`
}

// IsImage reports whether the asset has a raster image mime type.
func (a *Asset) IsImage() bool {
	return a != nil && len(a.MimeType) > 6 && a.MimeType[:6] == "image/"
}

type UploadRequest struct {
	Filename   string
	Content    io.Reader
	AltText    string
	UploadedBy *uuid.UUID
}

type ListOptions struct {
	Limit  int
	Offset int
}
