package site_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-folio/internal/blog"
	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/experience"
	"github.com/goliatone/go-folio/internal/locales"
	"github.com/goliatone/go-folio/internal/profile"
	"github.com/goliatone/go-folio/internal/projects"
	"github.com/goliatone/go-folio/internal/richtext"
	"github.com/goliatone/go-folio/internal/site"
	"github.com/goliatone/go-folio/internal/skills"
	"github.com/goliatone/go-folio/internal/testimonials"
	"github.com/goliatone/go-folio/pkg/testsupport"
)

type fixture struct {
	svc      site.Services
	site     *site.Service
	projects projects.Service
	blog     blog.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testsupport.NewBunDB(t)
	localeRepo := testsupport.SeedLocales(t, db)
	clock := func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }

	svc := site.Services{
		Locales:      locales.NewService(localeRepo),
		Profile:      profile.NewService(profile.NewBunProfileRepository(db), localeRepo),
		Skills:       skills.NewService(skills.NewBunSkillRepository(db), localeRepo),
		Experience:   experience.NewService(experience.NewBunExperienceRepository(db), localeRepo),
		Projects:     projects.NewService(projects.NewBunProjectRepository(db), localeRepo),
		Blog:         blog.NewService(blog.NewBunPostRepository(db), localeRepo, blog.WithClock(clock)),
		Testimonials: testimonials.NewService(testimonials.NewBunTestimonialRepository(db), localeRepo),
	}
	return &fixture{
		svc:      svc,
		site:     site.NewService(svc, site.WithBaseURL("https://example.com/"), site.WithPageSize(2)),
		projects: svc.Projects,
		blog:     svc.Blog,
	}
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	if _, err := f.svc.Profile.Upsert(ctx, profile.UpsertProfileRequest{
		Email: "dev@example.com",
		Translations: []profile.ProfileTranslationInput{
			{Locale: "en", FullName: "Sara Haddad", Headline: "Backend engineer"},
			{Locale: "ar", FullName: "سارة حداد", Headline: "مهندسة خلفيات"},
		},
	}); err != nil {
		t.Fatalf("profile: %v", err)
	}

	for i, s := range []struct{ category, name string }{
		{"backend", "Go"}, {"backend", "PostgreSQL"}, {"frontend", "TypeScript"},
	} {
		if _, err := f.svc.Skills.Create(ctx, skills.CreateSkillRequest{
			Category: s.category,
			Level:    4,
			Position: i,
			Translations: []skills.SkillTranslationInput{
				{Locale: "en", Name: s.name},
			},
		}); err != nil {
			t.Fatalf("skill %s: %v", s.name, err)
		}
	}

	if _, err := f.svc.Experience.Create(ctx, experience.CreateExperienceRequest{
		Company:   "Acme",
		StartDate: time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC),
		Translations: []experience.ExperienceTranslationInput{
			{Locale: "en", Role: "Engineer"},
			{Locale: "ar", Role: "مهندسة"},
		},
	}); err != nil {
		t.Fatalf("experience: %v", err)
	}

	for _, p := range []struct {
		title    string
		status   string
		featured bool
	}{
		{"Folio", "published", true},
		{"Ledger", "published", false},
		{"Secret", "draft", true},
	} {
		if _, err := f.projects.Create(ctx, projects.CreateProjectRequest{
			Status:   p.status,
			Featured: p.featured,
			Translations: []projects.ProjectTranslationInput{
				{Locale: "en", Title: p.title, Body: richtext.Paragraphs("About " + p.title)},
			},
		}); err != nil {
			t.Fatalf("project %s: %v", p.title, err)
		}
	}

	for _, p := range []struct {
		title  string
		status string
		tags   []string
	}{
		{"First Post", "published", []string{"go"}},
		{"Second Post", "published", []string{"sql"}},
		{"Third Post", "published", []string{"go"}},
		{"Hidden Draft", "draft", []string{"go"}},
	} {
		if _, err := f.blog.Create(ctx, blog.CreatePostRequest{
			Status: p.status,
			Tags:   p.tags,
			Translations: []blog.PostTranslationInput{
				{Locale: "en", Title: p.title, Body: richtext.Paragraphs("Body of " + p.title)},
				{Locale: "ar", Title: p.title + " (ar)", Body: richtext.Paragraphs("نص")},
			},
		}); err != nil {
			t.Fatalf("post %s: %v", p.title, err)
		}
	}

	if _, err := f.svc.Testimonials.Create(ctx, testimonials.CreateTestimonialRequest{
		AuthorName: "Omar",
		Rating:     5,
		Published:  true,
		Translations: []testimonials.TestimonialTranslationInput{
			{Locale: "en", Quote: "Great work"},
		},
	}); err != nil {
		t.Fatalf("testimonial: %v", err)
	}
}

func TestHomeGathersSectionsWithFallback(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	home, err := f.site.Home(context.Background(), "ar")
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	if home.Locale.Code != "ar" || home.Locale.Direction != domain.DirectionRTL {
		t.Fatalf("expected rtl arabic locale, got %+v", home.Locale)
	}
	if len(home.Locales) != 2 {
		t.Fatalf("expected 2 locales, got %d", len(home.Locales))
	}
	if home.Profile == nil || home.Profile.FullName != "سارة حداد" {
		t.Fatalf("expected arabic profile, got %+v", home.Profile)
	}
	if len(home.Skills) != 2 || home.Skills[0].Category != "backend" || len(home.Skills[0].Skills) != 2 {
		t.Fatalf("unexpected skill groups: %+v", home.Skills)
	}
	if !home.Skills[0].Skills[0].Translation.Fallback {
		t.Fatalf("expected english fallback for skills")
	}
	if len(home.Experience) != 1 || home.Experience[0].Role != "مهندسة" {
		t.Fatalf("unexpected experience: %+v", home.Experience)
	}
	if len(home.Projects) != 1 || home.Projects[0].Title != "Folio" {
		t.Fatalf("expected only the featured published project, got %+v", home.Projects)
	}
	if len(home.Posts) != site.DefaultHomePosts {
		t.Fatalf("expected %d posts, got %d", site.DefaultHomePosts, len(home.Posts))
	}
	for _, post := range home.Posts {
		if post.Status != domain.StatusPublished {
			t.Fatalf("home leaked unpublished post %s", post.Slug)
		}
	}
	if len(home.Testimonials) != 1 || home.Testimonials[0].Quote != "Great work" {
		t.Fatalf("unexpected testimonials: %+v", home.Testimonials)
	}
}

func TestHomeWithoutProfileAndUnknownLocale(t *testing.T) {
	f := newFixture(t)

	home, err := f.site.Home(context.Background(), "fr")
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	if home.Locale.Code != "en" {
		t.Fatalf("expected default locale, got %s", home.Locale.Code)
	}
	if home.Profile != nil {
		t.Fatalf("expected no profile")
	}
}

func TestPostsPaginateAndFilterByTag(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	page, err := f.site.Posts(ctx, "en", "", 2)
	if err != nil {
		t.Fatalf("posts: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 || len(page.Items) != 1 {
		t.Fatalf("unexpected page: total=%d pages=%d items=%d", page.Total, page.TotalPages, len(page.Items))
	}

	tagged, err := f.site.Posts(ctx, "en", "go", 0)
	if err != nil {
		t.Fatalf("tagged posts: %v", err)
	}
	if tagged.Page != 1 || tagged.Total != 2 {
		t.Fatalf("expected 2 published go posts on page 1, got total=%d page=%d", tagged.Total, tagged.Page)
	}
}

func TestDetailHidesDraftsAndListsAlternates(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	ctx := context.Background()

	detail, err := f.site.Post(ctx, "ar", "first-post")
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if detail.Post.Title != "First Post (ar)" {
		t.Fatalf("expected arabic title, got %q", detail.Post.Title)
	}
	if len(detail.Alternates) != 2 || detail.Alternates[1].URL != "https://example.com/ar/blog/first-post" {
		t.Fatalf("unexpected alternates: %+v", detail.Alternates)
	}

	var notFound *domain.NotFoundError
	if _, err := f.site.Post(ctx, "en", "hidden-draft"); !errors.As(err, &notFound) {
		t.Fatalf("expected draft post to be hidden, got %v", err)
	}
	if _, err := f.site.Project(ctx, "en", "secret"); !errors.As(err, &notFound) {
		t.Fatalf("expected draft project to be hidden, got %v", err)
	}

	list, err := f.site.Projects(ctx, "en")
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("expected 2 published projects, got %d", list.Total)
	}
}

func TestSitemapListsEveryLocale(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	urls, err := f.site.Sitemap(context.Background())
	if err != nil {
		t.Fatalf("sitemap: %v", err)
	}
	// 3 static pages, 2 projects, 3 posts, each in 2 locales.
	if len(urls) != 16 {
		t.Fatalf("expected 16 urls, got %d", len(urls))
	}

	var buf bytes.Buffer
	if err := site.WriteSitemap(&buf, urls); err != nil {
		t.Fatalf("write sitemap: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<loc>https://example.com/en/projects/folio</loc>",
		"<loc>https://example.com/ar/blog/third-post</loc>",
		`hreflang="ar" href="https://example.com/ar/projects/ledger"`,
		`xmlns:xhtml="http://www.w3.org/1999/xhtml"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("sitemap missing %s\n%s", want, out)
		}
	}
	if strings.Contains(out, "secret") || strings.Contains(out, "hidden-draft") {
		t.Fatalf("sitemap leaked draft content")
	}
}

func TestRouterRejectsUnknownLocale(t *testing.T) {
	router := site.NewRouter("https://example.com", []string{"en"})
	if _, err := router.URL("de", site.RouteHome, ""); err == nil {
		t.Fatalf("expected error for unregistered locale")
	}
	href, err := router.URL("en", site.RouteProject, "folio")
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	if href != "https://example.com/en/projects/folio" {
		t.Fatalf("unexpected url %s", href)
	}
}
