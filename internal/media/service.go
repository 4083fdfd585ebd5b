package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

const (
	DefaultMaxSize  int64 = 10 << 20
	DefaultBaseURL        = "/media/"
	DefaultPageSize       = 50
	MaxPageSize           = 200
	MaxAltLength          = 300
	sniffLength           = 512
)

var (
	ErrContentRequired = errors.New("media: file content is required")
	ErrFileEmpty       = errors.New("media: file is empty")
	ErrFileTooLarge    = errors.New("media: file exceeds the maximum size")
	ErrTypeNotAllowed  = errors.New("media: file type is not allowed")
	ErrAltTooLong      = errors.New("media: alt text is too long")
	ErrIDRequired      = errors.New("media: id is required")
)

// DefaultAllowedTypes maps sniffed mime types to stored file extensions.
var DefaultAllowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

type Service interface {
	Upload(ctx context.Context, req UploadRequest) (*Asset, error)
	List(ctx context.Context, opts ListOptions) ([]*Asset, int, error)
	Get(ctx context.Context, id uuid.UUID) (*Asset, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateAlt(ctx context.Context, id uuid.UUID, alt string) (*Asset, error)
}

type ServiceOption func(*service)

func WithMaxSize(size int64) ServiceOption {
	return func(s *service) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

// WithAllowedTypes replaces the mime allow-list. Keys are mime types, values
// the extension used for stored files.
func WithAllowedTypes(types map[string]string) ServiceOption {
	return func(s *service) {
		if len(types) > 0 {
			s.allowed = types
		}
	}
}

func WithBaseURL(base string) ServiceOption {
	return func(s *service) {
		if base = strings.TrimSpace(base); base != "" {
			s.baseURL = strings.TrimRight(base, "/") + "/"
		}
	}
}

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	repo    AssetRepository
	store   Store
	maxSize int64
	allowed map[string]string
	baseURL string
	now     func() time.Time
	logger  interfaces.Logger
}

func NewService(repo AssetRepository, store Store, opts ...ServiceOption) Service {
	s := &service{
		repo:    repo,
		store:   store,
		maxSize: DefaultMaxSize,
		allowed: DefaultAllowedTypes,
		baseURL: DefaultBaseURL,
		now:     time.Now,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload buffers at most maxSize bytes, sniffs the content type and stores
// the file under YYYY/MM/<uuid><ext>.
func (s *service) Upload(ctx context.Context, req UploadRequest) (*Asset, error) {
	if req.Content == nil {
		return nil, ErrContentRequired
	}
	alt := strings.TrimSpace(req.AltText)
	if len([]rune(alt)) > MaxAltLength {
		return nil, ErrAltTooLong
	}

	data, err := io.ReadAll(io.LimitReader(req.Content, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("media: read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrFileEmpty
	}
	if int64(len(data)) > s.maxSize {
		return nil, ErrFileTooLarge
	}

	mimeType := sniff(data)
	ext, ok := s.allowed[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotAllowed, mimeType)
	}

	now := s.now().UTC()
	id := uuid.New()
	stored := path.Join(now.Format("2006"), now.Format("01"), id.String()+ext)

	asset := &Asset{
		ID:         id,
		Filename:   cleanFilename(req.Filename, id.String()+ext),
		StoredPath: stored,
		URL:        s.baseURL + stored,
		MimeType:   mimeType,
		Size:       int64(len(data)),
		AltText:    alt,
		UploadedBy: req.UploadedBy,
		CreatedAt:  now,
	}
	if asset.IsImage() {
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			width, height := cfg.Width, cfg.Height
			asset.Width = &width
			asset.Height = &height
		}
	}

	if err := s.store.Put(ctx, stored, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	if _, err := s.repo.Create(ctx, asset); err != nil {
		if cleanupErr := s.store.Delete(ctx, stored); cleanupErr != nil {
			s.logger.Warn("media.upload.cleanup_failed", "path", stored, "error", cleanupErr)
		}
		return nil, err
	}
	s.logger.Info("media.uploaded", "asset_id", id.String(), "mime_type", mimeType, "size", asset.Size)
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]*Asset, int, error) {
	return s.repo.List(ctx, opts)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Asset, error) {
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes the stored file before the row so a failed removal leaves
// the asset listed.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	asset, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, asset.StoredPath); err != nil {
		return err
	}
	return s.repo.Delete(ctx, asset.ID)
}

func (s *service) UpdateAlt(ctx context.Context, id uuid.UUID, alt string) (*Asset, error) {
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}
	alt = strings.TrimSpace(alt)
	if len([]rune(alt)) > MaxAltLength {
		return nil, ErrAltTooLong
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.repo.UpdateAlt(ctx, id, alt); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func sniff(data []byte) string {
	head := data
	if len(head) > sniffLength {
		head = head[:sniffLength]
	}
	mimeType := http.DetectContentType(head)
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.TrimSpace(mimeType)
}

func cleanFilename(name, fallback string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	name = path.Base(name)
	if name == "." || name == "/" || name == "" {
		return fallback
	}
	return name
}
