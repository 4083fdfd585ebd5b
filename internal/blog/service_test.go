package blog_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/blog"
	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/richtext"
	"github.com/goliatone/go-folio/pkg/testsupport"
)

var baseTime = time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc   blog.Service
	clock *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testsupport.NewBunDB(t)
	now := baseTime
	f := &fixture{clock: &now}
	f.svc = blog.NewService(
		blog.NewBunPostRepository(db),
		testsupport.SeedLocales(t, db),
		blog.WithClock(func() time.Time { return *f.clock }),
	)
	return f
}

func words(n int) string {
	return strings.TrimSpace(strings.Repeat("word ", n))
}

func (f *fixture) create(t *testing.T, title, status string, tags ...string) *blog.Post {
	t.Helper()
	post, err := f.svc.Create(context.Background(), blog.CreatePostRequest{
		Status: status,
		Tags:   tags,
		Translations: []blog.PostTranslationInput{
			{Locale: "en", Title: title, Body: richtext.Paragraphs(words(50))},
			{Locale: "ar", Title: title + " ar", Body: richtext.Paragraphs(words(450))},
		},
	})
	if err != nil {
		t.Fatalf("create %s: %v", title, err)
	}
	return post
}

func TestCreateComputesReadingTimeAndExcerpt(t *testing.T) {
	f := newFixture(t)
	post := f.create(t, "Hello World", "published", "Go", "go", "SQL")

	if post.Slug != "hello-world" {
		t.Fatalf("expected slug hello-world, got %q", post.Slug)
	}
	if post.ReadingMinutes != 3 {
		t.Fatalf("expected reading minutes from longest translation (450 words), got %d", post.ReadingMinutes)
	}
	if len(post.Tags) != 2 || post.Tags[0] != "go" {
		t.Fatalf("expected normalised tags, got %v", post.Tags)
	}
	if post.PublishedAt == nil || !post.PublishedAt.Equal(baseTime) {
		t.Fatalf("expected published_at stamped, got %v", post.PublishedAt)
	}
	for _, tr := range post.Translations {
		if n := len([]rune(tr.Excerpt)); n == 0 || n > blog.ExcerptLength {
			t.Fatalf("unexpected excerpt length %d for %s", n, tr.Locale)
		}
		if tr.MetaDescription != tr.Excerpt {
			t.Fatalf("expected meta description to default to excerpt")
		}
	}
}

func TestScheduledRequiresFuturePublishAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tr := []blog.PostTranslationInput{{Locale: "en", Title: "Later"}}

	if _, err := f.svc.Create(ctx, blog.CreatePostRequest{Status: "scheduled", Translations: tr}); !errors.Is(err, blog.ErrPublishAtRequired) {
		t.Fatalf("expected ErrPublishAtRequired, got %v", err)
	}
	past := baseTime.Add(-time.Hour)
	if _, err := f.svc.Create(ctx, blog.CreatePostRequest{Status: "scheduled", PublishAt: &past, Translations: tr}); !errors.Is(err, blog.ErrPublishAtInPast) {
		t.Fatalf("expected ErrPublishAtInPast, got %v", err)
	}
}

func TestPublishDuePromotesScheduledPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soon := baseTime.Add(time.Hour)
	later := baseTime.Add(48 * time.Hour)

	due, err := f.svc.Create(ctx, blog.CreatePostRequest{Status: "scheduled", PublishAt: &soon, Translations: []blog.PostTranslationInput{{Locale: "en", Title: "Soon"}}})
	if err != nil {
		t.Fatalf("create soon: %v", err)
	}
	if _, err := f.svc.Create(ctx, blog.CreatePostRequest{Status: "scheduled", PublishAt: &later, Translations: []blog.PostTranslationInput{{Locale: "en", Title: "Later"}}}); err != nil {
		t.Fatalf("create later: %v", err)
	}

	ids, err := f.svc.PublishDue(ctx, baseTime.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("publish due: %v", err)
	}
	if len(ids) != 1 || ids[0] != due.ID {
		t.Fatalf("expected only the due post, got %v", ids)
	}

	post, err := f.svc.Get(ctx, due.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if post.Status != domain.StatusPublished || post.PublishedAt == nil || !post.PublishedAt.Equal(soon) {
		t.Fatalf("unexpected promoted post %+v", post)
	}

	again, err := f.svc.PublishDue(ctx, baseTime.Add(2*time.Hour))
	if err != nil || len(again) != 0 {
		t.Fatalf("expected nothing left to publish, got %v (%v)", again, err)
	}
}

func TestPublishAndUnpublish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.create(t, "Draft post", "draft")

	*f.clock = baseTime.Add(time.Hour)
	published, err := f.svc.Publish(ctx, post.ID)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.PublishedAt == nil || !published.PublishedAt.Equal(*f.clock) {
		t.Fatalf("expected published_at stamp, got %v", published.PublishedAt)
	}
	if _, err := f.svc.Publish(ctx, post.ID); !errors.Is(err, blog.ErrAlreadyPublished) {
		t.Fatalf("expected ErrAlreadyPublished, got %v", err)
	}

	unpublished, err := f.svc.Unpublish(ctx, post.ID)
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if unpublished.Status != domain.StatusDraft || unpublished.PublishedAt != nil {
		t.Fatalf("unexpected unpublished post %+v", unpublished)
	}
	if _, err := f.svc.Unpublish(ctx, post.ID); !errors.Is(err, blog.ErrNotPublished) {
		t.Fatalf("expected ErrNotPublished, got %v", err)
	}
}

func TestListByTagAndLocalized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "Go tips", "published", "go")
	f.create(t, "SQL tips", "published", "sql")
	f.create(t, "Unfinished", "draft", "go")

	posts, total, err := f.svc.Localized(ctx, "ar", blog.ListOptions{Status: domain.StatusPublished, Tag: "Go"})
	if err != nil {
		t.Fatalf("localized: %v", err)
	}
	if total != 1 || len(posts) != 1 || posts[0].Title != "Go tips ar" {
		t.Fatalf("unexpected posts %+v", posts)
	}
	if posts[0].BodyHTML != "" {
		t.Fatalf("list views should not carry the body")
	}

	view, err := f.svc.LocalizedBySlug(ctx, "go-tips", "en")
	if err != nil {
		t.Fatalf("by slug: %v", err)
	}
	if !strings.HasPrefix(view.BodyHTML, "<p>word") {
		t.Fatalf("expected rendered body, got %q", view.BodyHTML)
	}

	tags, err := f.svc.Tags(ctx, domain.StatusPublished)
	if err != nil {
		t.Fatalf("tags: %v", err)
	}
	if len(tags) != 2 || tags[0] != "go" || tags[1] != "sql" {
		t.Fatalf("unexpected tags %v", tags)
	}
}

func TestUpdateWithBlankStatusKeepsPublication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.create(t, "Stays Live", "published", "go")

	*f.clock = baseTime.Add(time.Hour)
	updated, err := f.svc.Update(ctx, blog.UpdatePostRequest{ID: post.ID, Tags: []string{"sql"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusPublished || updated.PublishedAt == nil || !updated.PublishedAt.Equal(baseTime) {
		t.Fatalf("expected publication kept, got %s %v", updated.Status, updated.PublishedAt)
	}
	if len(updated.Tags) != 1 || updated.Tags[0] != "sql" || len(updated.Translations) != 2 {
		t.Fatalf("unexpected update %+v", updated)
	}

	soon := baseTime.Add(48 * time.Hour)
	scheduled, err := f.svc.Update(ctx, blog.UpdatePostRequest{ID: post.ID, Status: "scheduled", PublishAt: &soon})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	again, err := f.svc.Update(ctx, blog.UpdatePostRequest{ID: scheduled.ID, CoverURL: "https://example.com/c.png"})
	if err != nil {
		t.Fatalf("update scheduled without status: %v", err)
	}
	if again.Status != domain.StatusScheduled || again.PublishAt == nil || !again.PublishAt.Equal(soon) {
		t.Fatalf("expected schedule kept, got %s %v", again.Status, again.PublishAt)
	}
}

func TestListByTagMatchesLiterally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "Underscore", "published", "go_lang")
	f.create(t, "Dash", "published", "go-lang")
	f.create(t, "Percent", "published", "golang")

	posts, total, err := f.svc.List(ctx, blog.ListOptions{Tag: "go_lang"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(posts) != 1 || posts[0].Slug != "underscore" {
		t.Fatalf("expected only the go_lang post, got %d posts", total)
	}
	if _, total, err := f.svc.List(ctx, blog.ListOptions{Tag: "go%"}); err != nil || total != 0 {
		t.Fatalf("expected no match for a wildcard tag, got %d (%v)", total, err)
	}
}

func TestDeleteAndSlugConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.create(t, "Unique", "draft")

	if _, err := f.svc.Create(ctx, blog.CreatePostRequest{Slug: "unique", Translations: []blog.PostTranslationInput{{Locale: "en", Title: "Dup"}}}); !errors.Is(err, blog.ErrSlugExists) {
		t.Fatalf("expected ErrSlugExists, got %v", err)
	}
	if err := f.svc.Delete(ctx, post.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var notFound *domain.NotFoundError
	if _, err := f.svc.Get(ctx, post.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

var errTranslationWrite = errors.New("translation write failed")

// flakyTranslations fails the next failures translation writes.
type flakyTranslations struct {
	*blog.BunPostRepository
	failures int
}

func (r *flakyTranslations) ReplaceTranslations(ctx context.Context, postID uuid.UUID, rows []*blog.PostTranslation, now time.Time) error {
	if r.failures > 0 {
		r.failures--
		return errTranslationWrite
	}
	return r.BunPostRepository.ReplaceTranslations(ctx, postID, rows, now)
}

func TestCreateRollsBackWhenTranslationsFail(t *testing.T) {
	db := testsupport.NewBunDB(t)
	repo := &flakyTranslations{BunPostRepository: blog.NewBunPostRepository(db), failures: 1}
	svc := blog.NewService(repo, testsupport.SeedLocales(t, db), blog.WithClock(func() time.Time { return baseTime }))
	ctx := context.Background()
	req := blog.CreatePostRequest{
		Slug:         "hello",
		Status:       "published",
		Translations: []blog.PostTranslationInput{{Locale: "en", Title: "Hello"}},
	}

	if _, err := svc.Create(ctx, req); !errors.Is(err, errTranslationWrite) {
		t.Fatalf("expected translation failure, got %v", err)
	}
	if _, total, err := svc.List(ctx, blog.ListOptions{}); err != nil || total != 0 {
		t.Fatalf("expected no stored posts after failed create, got %d (%v)", total, err)
	}

	post, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("retry create: %v", err)
	}
	if post.Slug != "hello" || len(post.Translations) != 1 {
		t.Fatalf("unexpected post after retry %+v", post)
	}
}
