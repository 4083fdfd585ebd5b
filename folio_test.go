package folio_test

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-folio"
	"github.com/goliatone/go-folio/internal/blog"
	"github.com/goliatone/go-folio/pkg/testsupport"
)

func TestModuleServesPublishedPost(t *testing.T) {
	ctx := context.Background()
	cfg := folio.DefaultConfig()
	cfg.Auth.Secret = "module-test-secret-0123456789abcdef"
	cfg.Media.Dir = t.TempDir()
	cfg.Logging.Provider = "none"
	cfg.HTTP.BaseURL = "https://folio.example"

	module, err := folio.New(cfg, folio.WithBunDB(testsupport.NewBunDB(t)))
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	defer module.Close()
	if err := module.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	if _, err := module.Blog().Create(ctx, blog.CreatePostRequest{
		Status: "published",
		Translations: []blog.PostTranslationInput{
			{Locale: "en", Title: "Hello Folio"},
			{Locale: "ar", Title: "مرحبا فوليو"},
		},
	}); err != nil {
		t.Fatalf("create post: %v", err)
	}

	handler, err := module.Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ar/posts/hello-folio", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "مرحبا فوليو") || !strings.Contains(rec.Body.String(), "https://folio.example/en/blog/hello-folio") {
		t.Fatalf("unexpected post payload %s", rec.Body.String())
	}
}

func TestMigrationsFSContainsSQL(t *testing.T) {
	matches, err := fs.Glob(folio.MigrationsFS(), "*.up.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("expected embedded up migrations")
	}
}
