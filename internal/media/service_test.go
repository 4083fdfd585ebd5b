package media_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/media"
	"github.com/goliatone/go-folio/pkg/testsupport"
)

var uploadTime = time.Date(2025, time.March, 7, 9, 30, 0, 0, time.UTC)

func newService(t *testing.T, opts ...media.ServiceOption) (media.Service, *media.FSStore) {
	t.Helper()
	db := testsupport.NewBunDB(t)
	store := media.NewFSStore(t.TempDir())
	opts = append([]media.ServiceOption{media.WithClock(func() time.Time { return uploadTime })}, opts...)
	return media.NewService(media.NewBunAssetRepository(db), store, opts...), store
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestUploadStoresImageWithDimensions(t *testing.T) {
	svc, store := newService(t)
	uploader := uuid.New()

	asset, err := svc.Upload(context.Background(), media.UploadRequest{
		Filename:   "../photos/cover.png",
		Content:    bytes.NewReader(pngBytes(t, 12, 8)),
		AltText:    " Cover ",
		UploadedBy: &uploader,
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if asset.MimeType != "image/png" || asset.Filename != "cover.png" || asset.AltText != "Cover" {
		t.Fatalf("unexpected asset %+v", asset)
	}
	if !strings.HasPrefix(asset.StoredPath, "2025/03/") || !strings.HasSuffix(asset.StoredPath, ".png") {
		t.Fatalf("unexpected stored path %q", asset.StoredPath)
	}
	if asset.URL != "/media/"+asset.StoredPath {
		t.Fatalf("unexpected url %q", asset.URL)
	}
	if asset.Width == nil || *asset.Width != 12 || asset.Height == nil || *asset.Height != 8 {
		t.Fatalf("expected 12x8 dimensions, got %v x %v", asset.Width, asset.Height)
	}
	if asset.UploadedBy == nil || *asset.UploadedBy != uploader {
		t.Fatalf("expected uploader to be recorded")
	}
	if _, err := os.Stat(filepath.Join(store.Root(), filepath.FromSlash(asset.StoredPath))); err != nil {
		t.Fatalf("expected stored file: %v", err)
	}
}

func TestUploadRejectsDisallowedAndOversized(t *testing.T) {
	svc, _ := newService(t, media.WithMaxSize(64))
	ctx := context.Background()

	_, err := svc.Upload(ctx, media.UploadRequest{Filename: "x.html", Content: strings.NewReader("<html><script>alert(1)</script></html>")})
	if !errors.Is(err, media.ErrTypeNotAllowed) {
		t.Fatalf("expected ErrTypeNotAllowed, got %v", err)
	}
	_, err = svc.Upload(ctx, media.UploadRequest{Filename: "big.png", Content: bytes.NewReader(bytes.Repeat([]byte("a"), 100))})
	if !errors.Is(err, media.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	_, err = svc.Upload(ctx, media.UploadRequest{Filename: "empty.png", Content: bytes.NewReader(nil)})
	if !errors.Is(err, media.ErrFileEmpty) {
		t.Fatalf("expected ErrFileEmpty, got %v", err)
	}
}

func TestUpdateAltListAndDelete(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	asset, err := svc.Upload(ctx, media.UploadRequest{Filename: "a.png", Content: bytes.NewReader(pngBytes(t, 2, 2))})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	updated, err := svc.UpdateAlt(ctx, asset.ID, "صورة")
	if err != nil {
		t.Fatalf("update alt: %v", err)
	}
	if updated.AltText != "صورة" || updated.StoredPath != asset.StoredPath {
		t.Fatalf("unexpected update %+v", updated)
	}

	list, total, err := svc.List(ctx, media.ListOptions{})
	if err != nil || total != 1 || len(list) != 1 {
		t.Fatalf("expected one asset, got %d/%d (%v)", len(list), total, err)
	}

	if err := svc.Delete(ctx, asset.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Root(), filepath.FromSlash(asset.StoredPath))); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, got %v", err)
	}
	var notFound *domain.NotFoundError
	if _, err := svc.Get(ctx, asset.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestFSStoreRejectsEscapingPaths(t *testing.T) {
	store := media.NewFSStore(t.TempDir())
	for _, p := range []string{"../x", "/etc/passwd", "", "a/../../b"} {
		if err := store.Put(context.Background(), p, strings.NewReader("x")); !errors.Is(err, media.ErrPathInvalid) {
			t.Fatalf("path %q: expected ErrPathInvalid, got %v", p, err)
		}
	}
}
