package markdown

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-folio/internal/blog"
	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/richtext"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

var (
	ErrPostsServiceRequired = errors.New("markdown importer: blog service is required")
	ErrLocaleMissing        = errors.New("markdown importer: locale could not be determined")
	ErrDuplicateLocale      = errors.New("markdown importer: locale imported twice for one slug")
)

// ImportOptions controls a single import run.
type ImportOptions struct {
	// DryRun resolves every document without writing.
	DryRun bool
}

// ImportResult lists the affected slugs per outcome.
type ImportResult struct {
	Created []string
	Updated []string
	Skipped []string
	Errors  []error
}

type ImporterOption func(*Importer)

func WithClock(clock func() time.Time) ImporterOption {
	return func(i *Importer) {
		if clock != nil {
			i.now = clock
		}
	}
}

func WithLogger(logger interfaces.Logger) ImporterOption {
	return func(i *Importer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// Importer turns markdown documents into blog posts. Files sharing a slug
// become the translations of one post; posts that already exist are
// updated in place and untouched locales are kept.
type Importer struct {
	posts  blog.Service
	now    func() time.Time
	logger interfaces.Logger
}

func NewImporter(posts blog.Service, opts ...ImporterOption) (*Importer, error) {
	if posts == nil {
		return nil, ErrPostsServiceRequired
	}
	i := &Importer{
		posts:  posts,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Import applies docs grouped by slug. A failing group is recorded in the
// result and does not stop the remaining groups; the returned error joins
// every group failure.
func (i *Importer) Import(ctx context.Context, docs []*Document, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}
	groups := groupBySlug(docs)
	slugs := make([]string, 0, len(groups))
	for slug := range groups {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	for _, slug := range slugs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		outcome, err := i.applyGroup(ctx, slug, groups[slug], opts)
		if err != nil {
			err = fmt.Errorf("%s: %w", slug, err)
			i.logger.Warn("markdown.import.failed", "slug", slug, "error", err)
			result.Errors = append(result.Errors, err)
			continue
		}
		switch outcome {
		case outcomeCreated:
			result.Created = append(result.Created, slug)
		case outcomeUpdated:
			result.Updated = append(result.Updated, slug)
		default:
			result.Skipped = append(result.Skipped, slug)
		}
		i.logger.Debug("markdown.import.applied", "slug", slug, "outcome", outcome, "dry_run", opts.DryRun)
	}

	i.logger.Info("markdown.import.completed",
		"created", len(result.Created),
		"updated", len(result.Updated),
		"skipped", len(result.Skipped),
		"failed", len(result.Errors),
		"dry_run", opts.DryRun,
	)
	return result, errors.Join(result.Errors...)
}

type outcome string

const (
	outcomeCreated outcome = "created"
	outcomeUpdated outcome = "updated"
	outcomeSkipped outcome = "skipped"
)

func (i *Importer) applyGroup(ctx context.Context, slug string, docs []*Document, opts ImportOptions) (outcome, error) {
	inputs, err := buildInputs(slug, docs)
	if err != nil {
		return "", err
	}
	status, publishAt := resolveSchedule(docs, i.now().UTC())
	cover, tags := postAttributes(docs)

	existing, err := i.posts.GetBySlug(ctx, slug)
	var missing *domain.NotFoundError
	switch {
	case errors.As(err, &missing):
		if opts.DryRun {
			return outcomeCreated, nil
		}
		_, err = i.posts.Create(ctx, blog.CreatePostRequest{
			Slug:         slug,
			Status:       string(status),
			PublishAt:    publishAt,
			CoverURL:     cover,
			Tags:         tags,
			Translations: inputs,
		})
		if err != nil {
			return "", err
		}
		return outcomeCreated, nil
	case err != nil:
		return "", err
	}

	merged := mergeTranslations(existing.Translations, inputs)
	if unchanged(existing, status, publishAt, cover, tags, inputs) {
		return outcomeSkipped, nil
	}
	if opts.DryRun {
		return outcomeUpdated, nil
	}
	_, err = i.posts.Update(ctx, blog.UpdatePostRequest{
		ID:           existing.ID,
		Status:       string(status),
		PublishAt:    publishAt,
		CoverURL:     cover,
		Tags:         tags,
		Translations: merged,
	})
	if err != nil {
		return "", err
	}
	return outcomeUpdated, nil
}

func groupBySlug(docs []*Document) map[string][]*Document {
	groups := make(map[string][]*Document)
	for _, doc := range docs {
		if doc == nil || doc.Slug == "" {
			continue
		}
		groups[doc.Slug] = append(groups[doc.Slug], doc)
	}
	return groups
}

func buildInputs(slug string, docs []*Document) ([]blog.PostTranslationInput, error) {
	seen := make(map[string]string, len(docs))
	inputs := make([]blog.PostTranslationInput, 0, len(docs))
	for _, doc := range docs {
		if prev, dup := seen[doc.Locale]; dup {
			return nil, fmt.Errorf("%w: %s and %s", ErrDuplicateLocale, prev, doc.FilePath)
		}
		seen[doc.Locale] = doc.FilePath

		body, err := richtext.FromMarkdown(doc.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", doc.FilePath, err)
		}
		title := doc.FrontMatter.Title
		if title == "" {
			title = fallbackTitle(slug)
		}
		inputs = append(inputs, blog.PostTranslationInput{
			Locale:          doc.Locale,
			Title:           title,
			Excerpt:         doc.FrontMatter.Excerpt,
			Body:            body,
			MetaDescription: doc.FrontMatter.MetaDescription,
		})
	}
	return inputs, nil
}

// resolveSchedule reads the status from the first document that sets one.
// Without an explicit status a future date schedules the post and a past
// date publishes it. A draft flag on any document wins.
func resolveSchedule(docs []*Document, now time.Time) (domain.Status, *time.Time) {
	var raw string
	var at time.Time
	for _, doc := range docs {
		if doc.FrontMatter.Draft {
			return domain.StatusDraft, nil
		}
		if raw == "" {
			raw = doc.FrontMatter.Status
		}
		if at.IsZero() {
			at = doc.FrontMatter.PublishAt
		}
		if at.IsZero() {
			at = doc.FrontMatter.Date
		}
	}

	status := domain.ParseStatus(raw)
	if raw == "" {
		switch {
		case at.IsZero():
			status = domain.StatusDraft
		case at.After(now):
			status = domain.StatusScheduled
		default:
			status = domain.StatusPublished
		}
	}
	if status == domain.StatusScheduled && !at.IsZero() && !at.After(now) {
		status = domain.StatusPublished
	}
	if status != domain.StatusScheduled || at.IsZero() {
		return status, nil
	}
	utc := at.UTC()
	return status, &utc
}

func postAttributes(docs []*Document) (string, []string) {
	var cover string
	var tags []string
	seen := map[string]struct{}{}
	for _, doc := range docs {
		if cover == "" {
			cover = doc.FrontMatter.Cover
		}
		for _, tag := range doc.FrontMatter.Tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return cover, tags
}

// mergeTranslations keeps stored locales the import does not mention.
func mergeTranslations(existing []*blog.PostTranslation, imported []blog.PostTranslationInput) []blog.PostTranslationInput {
	merged := append([]blog.PostTranslationInput(nil), imported...)
	for _, row := range existing {
		if slices.ContainsFunc(imported, func(in blog.PostTranslationInput) bool { return in.Locale == row.Locale }) {
			continue
		}
		merged = append(merged, blog.PostTranslationInput{
			Locale:          row.Locale,
			Title:           row.Title,
			Excerpt:         row.Excerpt,
			Body:            row.Body,
			MetaDescription: row.MetaDescription,
		})
	}
	return merged
}

func unchanged(existing *blog.Post, status domain.Status, publishAt *time.Time, cover string, tags []string, inputs []blog.PostTranslationInput) bool {
	if existing.Status != status || existing.CoverURL != cover || !slices.Equal(existing.Tags, tags) {
		return false
	}
	if status == domain.StatusScheduled && (existing.PublishAt == nil || !existing.PublishAt.Equal(*publishAt)) {
		return false
	}
	for _, in := range inputs {
		idx := slices.IndexFunc(existing.Translations, func(row *blog.PostTranslation) bool { return row.Locale == in.Locale })
		if idx < 0 {
			return false
		}
		row := existing.Translations[idx]
		if row.Title != in.Title {
			return false
		}
		if in.Excerpt != "" && row.Excerpt != in.Excerpt {
			return false
		}
		if in.MetaDescription != "" && row.MetaDescription != in.MetaDescription {
			return false
		}
		if !sameDocument(row.Body, in.Body) {
			return false
		}
	}
	return true
}

func sameDocument(a, b richtext.Document) bool {
	left, errA := json.Marshal(a)
	right, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(left, right)
}

func fallbackTitle(slug string) string {
	words := strings.Fields(strings.ReplaceAll(slug, "-", " "))
	for idx, word := range words {
		words[idx] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
