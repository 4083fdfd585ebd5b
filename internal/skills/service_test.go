package skills_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/skills"
	"github.com/goliatone/go-folio/pkg/testsupport"
)

func newService(t *testing.T) skills.Service {
	t.Helper()
	db := testsupport.NewBunDB(t)
	return skills.NewService(skills.NewBunSkillRepository(db), testsupport.SeedLocales(t, db))
}

func create(t *testing.T, svc skills.Service, category, name string, position int) *skills.Skill {
	t.Helper()
	record, err := svc.Create(context.Background(), skills.CreateSkillRequest{
		Category: category,
		Level:    80,
		Position: position,
		Translations: []skills.SkillTranslationInput{
			{Locale: "en", Name: name},
			{Locale: "ar", Name: name + " (ar)"},
		},
	})
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	return record
}

func TestListOrdersByCategoryThenPosition(t *testing.T) {
	svc := newService(t)
	create(t, svc, "Languages", "Rust", 1)
	create(t, svc, "Languages", "Go", 0)
	create(t, svc, "Cloud", "Kubernetes", 5)

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var names []string
	for _, s := range list {
		for _, tr := range s.Translations {
			if tr.Locale == "en" {
				names = append(names, tr.Name)
			}
		}
	}
	want := []string{"Kubernetes", "Go", "Rust"}
	if len(names) != len(want) {
		t.Fatalf("expected %d skills, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, names)
		}
	}
	if list[0].Category != "cloud" {
		t.Fatalf("expected lowercased category, got %q", list[0].Category)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, skills.CreateSkillRequest{Category: "x", Level: 101, Translations: []skills.SkillTranslationInput{{Locale: "en", Name: "Go"}}}); !errors.Is(err, skills.ErrLevelOutOfRange) {
		t.Fatalf("expected ErrLevelOutOfRange, got %v", err)
	}
	if _, err := svc.Create(ctx, skills.CreateSkillRequest{Level: 10, Translations: []skills.SkillTranslationInput{{Locale: "en", Name: "Go"}}}); !errors.Is(err, skills.ErrCategoryRequired) {
		t.Fatalf("expected ErrCategoryRequired, got %v", err)
	}
	if _, err := svc.Create(ctx, skills.CreateSkillRequest{Category: "x", Translations: []skills.SkillTranslationInput{{Locale: "en"}}}); !errors.Is(err, skills.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestUpdateKeepsTranslationsWhenOmitted(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	record := create(t, svc, "languages", "Go", 0)

	updated, err := svc.Update(ctx, skills.UpdateSkillRequest{ID: record.ID, Category: "languages", Level: 95})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Level != 95 || len(updated.Translations) != 2 {
		t.Fatalf("unexpected update result %+v", updated)
	}
}

func TestReorderAndDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	a := create(t, svc, "languages", "Go", 0)
	b := create(t, svc, "languages", "Rust", 1)

	if err := svc.Reorder(ctx, []uuid.UUID{a.ID}); !errors.Is(err, skills.ErrReorderMismatch) {
		t.Fatalf("expected ErrReorderMismatch, got %v", err)
	}
	if err := svc.Reorder(ctx, []uuid.UUID{b.ID, a.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list[0].ID != b.ID {
		t.Fatalf("expected Rust first after reorder")
	}

	if err := svc.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var notFound *domain.NotFoundError
	if _, err := svc.Get(ctx, a.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := svc.Delete(ctx, a.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestLocalizedUsesRequestedLocale(t *testing.T) {
	svc := newService(t)
	create(t, svc, "languages", "Go", 0)

	list, err := svc.Localized(context.Background(), "ar")
	if err != nil {
		t.Fatalf("localized: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Go (ar)" || list[0].Translation.Fallback {
		t.Fatalf("unexpected localized list %+v", list)
	}
}
