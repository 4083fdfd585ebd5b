package projects_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/projects"
	"github.com/goliatone/go-folio/internal/richtext"
	"github.com/goliatone/go-folio/pkg/testsupport"
)

func newService(t *testing.T) projects.Service {
	t.Helper()
	db := testsupport.NewBunDB(t)
	return projects.NewService(projects.NewBunProjectRepository(db), testsupport.SeedLocales(t, db))
}

func createProject(t *testing.T, svc projects.Service, title, status string, featured bool) *projects.Project {
	t.Helper()
	record, err := svc.Create(context.Background(), projects.CreateProjectRequest{
		Status:       status,
		Featured:     featured,
		Technologies: []string{"Go", " go ", "Postgres"},
		Translations: []projects.ProjectTranslationInput{
			{Locale: "en", Title: title, Body: richtext.Paragraphs("A long description of " + title)},
			{Locale: "ar", Title: title + " بالعربية"},
		},
	})
	if err != nil {
		t.Fatalf("create %s: %v", title, err)
	}
	return record
}

func TestCreateDerivesSlugAndSummary(t *testing.T) {
	svc := newService(t)
	record := createProject(t, svc, "Payment Gateway", "published", true)

	if record.Slug != "payment-gateway" {
		t.Fatalf("expected derived slug, got %q", record.Slug)
	}
	if len(record.Technologies) != 2 {
		t.Fatalf("expected deduplicated technologies, got %v", record.Technologies)
	}
	for _, tr := range record.Translations {
		if tr.Locale == "en" && tr.Summary == "" {
			t.Fatalf("expected summary derived from body")
		}
	}
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	svc := newService(t)
	createProject(t, svc, "Payment Gateway", "draft", false)

	_, err := svc.Create(context.Background(), projects.CreateProjectRequest{
		Slug:         "payment-gateway",
		Translations: []projects.ProjectTranslationInput{{Locale: "en", Title: "Another"}},
	})
	if !errors.Is(err, projects.ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got %v", err)
	}
}

func TestCreateRejectsScheduledStatus(t *testing.T) {
	svc := newService(t)
	_, err := svc.Create(context.Background(), projects.CreateProjectRequest{
		Status:       "scheduled",
		Translations: []projects.ProjectTranslationInput{{Locale: "en", Title: "Later"}},
	})
	if !errors.Is(err, projects.ErrStatusInvalid) {
		t.Fatalf("expected ErrStatusInvalid, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	createProject(t, svc, "Alpha", "published", true)
	createProject(t, svc, "Beta", "published", false)
	createProject(t, svc, "Gamma", "draft", true)

	published, total, err := svc.List(ctx, projects.ListOptions{Status: domain.StatusPublished})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(published) != 2 {
		t.Fatalf("expected two published projects, got %d/%d", len(published), total)
	}

	featured, _, err := svc.List(ctx, projects.ListOptions{Status: domain.StatusPublished, FeaturedOnly: true})
	if err != nil {
		t.Fatalf("list featured: %v", err)
	}
	if len(featured) != 1 || featured[0].Slug != "alpha" {
		t.Fatalf("expected only alpha, got %+v", featured)
	}

	limited, _, err := svc.List(ctx, projects.ListOptions{Limit: 1})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}

func TestLocalizedBySlug(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	createProject(t, svc, "Alpha", "published", false)

	view, err := svc.LocalizedBySlug(ctx, "ALPHA", "ar")
	if err != nil {
		t.Fatalf("localized: %v", err)
	}
	if view.Title != "Alpha بالعربية" || view.Translation.Fallback {
		t.Fatalf("unexpected arabic view %+v", view)
	}

	var notFound *domain.NotFoundError
	if _, err := svc.LocalizedBySlug(ctx, "missing", "en"); !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	alpha := createProject(t, svc, "Alpha", "draft", false)
	createProject(t, svc, "Beta", "draft", false)

	if _, err := svc.Update(ctx, projects.UpdateProjectRequest{ID: alpha.ID, Slug: "beta"}); !errors.Is(err, projects.ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists on rename, got %v", err)
	}

	updated, err := svc.Update(ctx, projects.UpdateProjectRequest{ID: alpha.ID, Status: "published", Slug: "alpha-v2"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Slug != "alpha-v2" || updated.Status != domain.StatusPublished || len(updated.Translations) != 2 {
		t.Fatalf("unexpected update %+v", updated)
	}
	kept, err := svc.Update(ctx, projects.UpdateProjectRequest{ID: alpha.ID, CoverURL: "https://example.com/alpha.png"})
	if err != nil {
		t.Fatalf("update without status: %v", err)
	}
	if kept.Status != domain.StatusPublished || kept.Slug != "alpha-v2" {
		t.Fatalf("expected blank status and slug to keep stored values, got %s %s", kept.Status, kept.Slug)
	}

	if err := svc.Delete(ctx, alpha.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var notFound *domain.NotFoundError
	if _, err := svc.GetBySlug(ctx, "alpha-v2"); !errors.As(err, &notFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
