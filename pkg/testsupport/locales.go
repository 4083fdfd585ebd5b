package testsupport

import (
	"context"
	"testing"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/locales"
)

// SeedLocales stores the default en/ar locales and returns their repository.
func SeedLocales(t testing.TB, db *bun.DB) *locales.BunLocaleRepository {
	t.Helper()

	repo := locales.NewBunLocaleRepository(db)
	if _, err := locales.NewService(repo).Seed(context.Background()); err != nil {
		t.Fatalf("seed locales: %v", err)
	}
	return repo
}
