package locales_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/locales"
	"github.com/goliatone/go-folio/pkg/testsupport"
)

func fixedClock() func() time.Time {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func newServices(t *testing.T) map[string]locales.Service {
	t.Helper()
	return map[string]locales.Service{
		"memory": locales.NewService(locales.NewMemoryLocaleRepository(), locales.WithClock(fixedClock())),
		"bun":    locales.NewService(locales.NewBunLocaleRepository(testsupport.NewBunDB(t)), locales.WithClock(fixedClock())),
	}
}

func TestSeedCreatesEnglishAndArabic(t *testing.T) {
	for name, svc := range newServices(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			created, err := svc.Seed(ctx)
			if err != nil {
				t.Fatalf("seed: %v", err)
			}
			if len(created) != 2 {
				t.Fatalf("expected two locales, got %d", len(created))
			}

			again, err := svc.Seed(ctx)
			if err != nil {
				t.Fatalf("second seed: %v", err)
			}
			if len(again) != 0 {
				t.Fatalf("expected seed to be idempotent, got %d new", len(again))
			}

			def, err := svc.Default(ctx)
			if err != nil {
				t.Fatalf("default: %v", err)
			}
			if def.Code != "en" {
				t.Fatalf("expected en default, got %s", def.Code)
			}

			ar, err := svc.Get(ctx, "AR")
			if err != nil {
				t.Fatalf("get ar: %v", err)
			}
			if !ar.IsRTL() || ar.IsDefault {
				t.Fatalf("expected non-default rtl arabic, got %+v", ar)
			}
		})
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	for name, svc := range newServices(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := svc.Seed(ctx); err != nil {
				t.Fatalf("seed: %v", err)
			}

			cases := map[string]string{
				"ar":    "ar",
				"ar-EG": "ar",
				"fr":    "en",
				"":      "en",
				"%%":    "en",
			}
			for input, want := range cases {
				got, err := svc.Resolve(ctx, input)
				if err != nil {
					t.Fatalf("resolve %q: %v", input, err)
				}
				if got.Code != want {
					t.Fatalf("resolve %q: expected %s, got %s", input, want, got.Code)
				}
			}
		})
	}
}

func TestDefaultLocaleInvariants(t *testing.T) {
	for name, svc := range newServices(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := svc.Seed(ctx); err != nil {
				t.Fatalf("seed: %v", err)
			}
			en, _ := svc.Get(ctx, "en")
			ar, _ := svc.Get(ctx, "ar")

			_, err := svc.Update(ctx, en.ID, locales.UpdateLocaleRequest{
				Code: "en", Name: "English", Direction: "ltr", IsDefault: true, IsActive: false,
			})
			if !errors.Is(err, locales.ErrDefaultLocaleInactive) {
				t.Fatalf("expected ErrDefaultLocaleInactive, got %v", err)
			}

			_, err = svc.Update(ctx, en.ID, locales.UpdateLocaleRequest{
				Code: "en", Name: "English", Direction: "ltr", IsDefault: false, IsActive: true,
			})
			if !errors.Is(err, locales.ErrDefaultLocaleRequired) {
				t.Fatalf("expected ErrDefaultLocaleRequired, got %v", err)
			}

			promoted, err := svc.Update(ctx, ar.ID, locales.UpdateLocaleRequest{
				Code: "ar", Name: "Arabic", NativeName: "العربية", Direction: "rtl", IsDefault: true, IsActive: true, Position: 1,
			})
			if err != nil {
				t.Fatalf("promote ar: %v", err)
			}
			if !promoted.IsDefault {
				t.Fatal("expected ar to be default")
			}

			all, err := svc.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			defaults := 0
			for _, l := range all {
				if l.IsDefault {
					defaults++
				}
			}
			if defaults != 1 {
				t.Fatalf("expected exactly one default, got %d", defaults)
			}

			// en is no longer default and can now be deactivated.
			if _, err := svc.Update(ctx, en.ID, locales.UpdateLocaleRequest{
				Code: "en", Name: "English", Direction: "ltr", IsActive: false,
			}); err != nil {
				t.Fatalf("deactivate en: %v", err)
			}
			active, err := svc.Active(ctx)
			if err != nil {
				t.Fatalf("active: %v", err)
			}
			if len(active) != 1 || active[0].Code != "ar" {
				t.Fatalf("expected only ar active, got %v", active)
			}
		})
	}
}

func TestCreateValidation(t *testing.T) {
	svc := locales.NewService(locales.NewMemoryLocaleRepository())
	ctx := context.Background()

	if _, err := svc.Create(ctx, locales.CreateLocaleRequest{Name: "x"}); !errors.Is(err, locales.ErrCodeRequired) {
		t.Fatalf("expected ErrCodeRequired, got %v", err)
	}
	if _, err := svc.Create(ctx, locales.CreateLocaleRequest{Code: "not a tag", Name: "x"}); !errors.Is(err, locales.ErrCodeInvalid) {
		t.Fatalf("expected ErrCodeInvalid, got %v", err)
	}
	first, err := svc.Create(ctx, locales.CreateLocaleRequest{Code: "fr", Name: "French", IsActive: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !first.IsDefault {
		t.Fatal("expected the first locale to become default")
	}
	if first.Direction != domain.DirectionLTR {
		t.Fatalf("expected ltr, got %s", first.Direction)
	}
	if _, err := svc.Create(ctx, locales.CreateLocaleRequest{Code: "FR", Name: "French"}); !errors.Is(err, locales.ErrLocaleExists) {
		t.Fatalf("expected ErrLocaleExists, got %v", err)
	}

	var nf *domain.NotFoundError
	if _, err := svc.Get(ctx, "de"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
