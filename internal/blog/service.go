package blog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/richtext"
	"github.com/goliatone/go-folio/internal/translations"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// ExcerptLength is the rune budget of generated excerpts.
const ExcerptLength = 160

var (
	ErrSlugExists          = errors.New("blog: slug already exists")
	ErrStatusInvalid       = errors.New("blog: unknown status")
	ErrTitleRequired       = errors.New("blog: title is required")
	ErrPublishAtRequired   = errors.New("blog: scheduled posts need a publish time")
	ErrPublishAtInPast     = errors.New("blog: publish time must be in the future")
	ErrURLInvalid          = errors.New("blog: url must be http(s) or relative")
	ErrIDRequired          = errors.New("blog: id is required")
	ErrAlreadyPublished    = errors.New("blog: post is already published")
	ErrNotPublished        = errors.New("blog: post is not published")
	ErrMetaDescriptionSize = errors.New("blog: meta description must be at most 320 characters")
)

// Service manages blog posts.
type Service interface {
	Create(ctx context.Context, req CreatePostRequest) (*Post, error)
	Update(ctx context.Context, req UpdatePostRequest) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	List(ctx context.Context, opts ListOptions) ([]*Post, int, error)
	Publish(ctx context.Context, id uuid.UUID) (*Post, error)
	Unpublish(ctx context.Context, id uuid.UUID) (*Post, error)
	// PublishDue promotes scheduled posts whose publish time has passed.
	PublishDue(ctx context.Context, now time.Time) ([]uuid.UUID, error)
	Localized(ctx context.Context, locale string, opts ListOptions) ([]LocalizedPost, int, error)
	LocalizedBySlug(ctx context.Context, slug, locale string) (*LocalizedPost, error)
	// Tags lists the distinct tags used by posts with the given status.
	Tags(ctx context.Context, status domain.Status) ([]string, error)
}

type ServiceOption func(*service)

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
	repo    PostRepository
	locales translations.LocaleSource
	now     func() time.Time
	logger  interfaces.Logger
}

func NewService(repo PostRepository, locales translations.LocaleSource, opts ...ServiceOption) Service {
	s := &service{
		repo:    repo,
		locales: locales,
		now:     time.Now,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req CreatePostRequest) (*Post, error) {
	policy, err := translations.LoadPolicy(ctx, s.locales)
	if err != nil {
		return nil, err
	}
	rows, err := buildTranslations(policy, req.Translations)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	status, publishAt, err := validateSchedule(req.Status, req.PublishAt, now)
	if err != nil {
		return nil, err
	}
	slug, err := domain.NormalizeSlug(req.Slug, defaultTitle(policy, rows))
	if err != nil {
		return nil, fmt.Errorf("blog: %w", err)
	}
	if err := s.ensureSlugFree(ctx, slug, uuid.Nil); err != nil {
		return nil, err
	}
	if err := validateURL(req.CoverURL); err != nil {
		return nil, err
	}

	record := &Post{
		ID:             uuid.New(),
		Slug:           slug,
		Status:         status,
		PublishAt:      publishAt,
		CoverURL:       strings.TrimSpace(req.CoverURL),
		Tags:           normalizeTags(req.Tags),
		ReadingMinutes: readingMinutes(rows),
		AuthorID:       req.AuthorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if status == domain.StatusPublished {
		record.PublishedAt = &now
	}
	if _, err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceTranslations(ctx, record.ID, rows, now); err != nil {
		// drop the bare root row so a retry can reuse it
		if rollbackErr := s.repo.Delete(context.WithoutCancel(ctx), record.ID); rollbackErr != nil {
			s.logger.Error("post create rollback failed", "post_id", record.ID, "error", rollbackErr)
		}
		return nil, err
	}
	s.logger.Info("post created", "post_id", record.ID, "slug", slug, "status", status)
	return s.repo.GetByID(ctx, record.ID)
}

func (s *service) Update(ctx context.Context, req UpdatePostRequest) (*Post, error) {
	if req.ID == uuid.Nil {
		return nil, ErrIDRequired
	}
	existing, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	policy, err := translations.LoadPolicy(ctx, s.locales)
	if err != nil {
		return nil, err
	}
	rows := existing.Translations
	replace := req.Translations != nil
	if replace {
		if rows, err = buildTranslations(policy, req.Translations); err != nil {
			return nil, err
		}
	}
	now := s.now().UTC()
	rawStatus, requestedAt := req.Status, req.PublishAt
	if strings.TrimSpace(rawStatus) == "" {
		rawStatus = existing.Status.String()
		if requestedAt == nil {
			requestedAt = existing.PublishAt
		}
	}
	status, publishAt, err := validateSchedule(rawStatus, requestedAt, now)
	if err != nil {
		return nil, err
	}
	slug := existing.Slug
	if strings.TrimSpace(req.Slug) != "" {
		if slug, err = domain.NormalizeSlug(req.Slug, ""); err != nil {
			return nil, fmt.Errorf("blog: %w", err)
		}
		if err := s.ensureSlugFree(ctx, slug, existing.ID); err != nil {
			return nil, err
		}
	}
	if err := validateURL(req.CoverURL); err != nil {
		return nil, err
	}

	existing.Slug = slug
	existing.PublishAt = publishAt
	existing.CoverURL = strings.TrimSpace(req.CoverURL)
	existing.Tags = normalizeTags(req.Tags)
	existing.ReadingMinutes = readingMinutes(rows)
	existing.UpdatedAt = now
	applyStatus(existing, status, now)
	if _, err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	if replace {
		if err := s.repo.ReplaceTranslations(ctx, existing.ID, rows, now); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(ctx, existing.ID)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrIDRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("post deleted", "post_id", id)
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Post, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	return s.repo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]*Post, int, error) {
	return s.repo.List(ctx, opts)
}

func (s *service) Publish(ctx context.Context, id uuid.UUID) (*Post, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == domain.StatusPublished {
		return nil, ErrAlreadyPublished
	}
	now := s.now().UTC()
	applyStatus(existing, domain.StatusPublished, now)
	existing.UpdatedAt = now
	if _, err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	s.logger.Info("post published", "post_id", id)
	return s.repo.GetByID(ctx, id)
}

func (s *service) Unpublish(ctx context.Context, id uuid.UUID) (*Post, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != domain.StatusPublished {
		return nil, ErrNotPublished
	}
	now := s.now().UTC()
	applyStatus(existing, domain.StatusDraft, now)
	existing.UpdatedAt = now
	if _, err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	s.logger.Info("post unpublished", "post_id", id)
	return s.repo.GetByID(ctx, id)
}

func (s *service) PublishDue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	ids, err := s.repo.PublishDue(ctx, now.UTC())
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		s.logger.Info("scheduled posts published", "count", len(ids))
	}
	return ids, nil
}

func (s *service) Localized(ctx context.Context, locale string, opts ListOptions) ([]LocalizedPost, int, error) {
	records, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	policy, err := translations.LoadPolicy(ctx, s.locales)
	if err != nil {
		return nil, 0, err
	}
	out := make([]LocalizedPost, 0, len(records))
	for _, record := range records {
		if view, ok := localize(record, locale, policy.Default, false); ok {
			out = append(out, view)
		}
	}
	return out, total, nil
}

func (s *service) LocalizedBySlug(ctx context.Context, slug, locale string) (*LocalizedPost, error) {
	record, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	policy, err := translations.LoadPolicy(ctx, s.locales)
	if err != nil {
		return nil, err
	}
	view, ok := localize(record, locale, policy.Default, true)
	if !ok {
		return nil, domain.NewNotFound("post translation", slug)
	}
	return &view, nil
}

func (s *service) Tags(ctx context.Context, status domain.Status) ([]string, error) {
	records, _, err := s.repo.List(ctx, ListOptions{Status: status})
	if err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	var tags []string
	for _, record := range records {
		for _, tag := range record.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

func (s *service) ensureSlugFree(ctx context.Context, slug string, self uuid.UUID) error {
	found, err := s.repo.GetBySlug(ctx, slug)
	var notFound *domain.NotFoundError
	switch {
	case errors.As(err, &notFound):
		return nil
	case err != nil:
		return err
	case found.ID != self:
		return fmt.Errorf("%w: %s", ErrSlugExists, slug)
	}
	return nil
}

// applyStatus moves record to status, stamping PublishedAt on first
// publication and clearing it when the post leaves the published state.
func applyStatus(record *Post, status domain.Status, now time.Time) {
	switch status {
	case domain.StatusPublished:
		if record.Status != domain.StatusPublished || record.PublishedAt == nil {
			stamp := now
			record.PublishedAt = &stamp
		}
	default:
		record.PublishedAt = nil
	}
	record.Status = status
}

func validateSchedule(raw string, publishAt *time.Time, now time.Time) (domain.Status, *time.Time, error) {
	status := domain.ParseStatus(raw)
	if !status.IsValid() {
		return "", nil, fmt.Errorf("%w: %s", ErrStatusInvalid, raw)
	}
	var at *time.Time
	if publishAt != nil && !publishAt.IsZero() {
		utc := publishAt.UTC()
		at = &utc
	}
	if status == domain.StatusScheduled {
		if at == nil {
			return "", nil, ErrPublishAtRequired
		}
		if !at.After(now) {
			return "", nil, ErrPublishAtInPast
		}
	}
	return status, at, nil
}

func buildTranslations(policy translations.Policy, inputs []PostTranslationInput) ([]*PostTranslation, error) {
	refs := make([]*PostTranslationInput, 0, len(inputs))
	for i := range inputs {
		refs = append(refs, &inputs[i])
	}
	if err := translations.Normalize(policy, refs, func(in *PostTranslationInput, code string) { in.Locale = code }, true); err != nil {
		return nil, err
	}
	rows := make([]*PostTranslation, 0, len(refs))
	for _, in := range refs {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w (%s)", ErrTitleRequired, in.Locale)
		}
		if err := richtext.Validate(in.Body); err != nil {
			return nil, err
		}
		meta := strings.TrimSpace(in.MetaDescription)
		if len([]rune(meta)) > 320 {
			return nil, ErrMetaDescriptionSize
		}
		excerpt := strings.TrimSpace(in.Excerpt)
		if excerpt == "" {
			excerpt = richtext.Excerpt(richtext.PlainText(in.Body), ExcerptLength)
		}
		if meta == "" {
			meta = excerpt
		}
		rows = append(rows, &PostTranslation{
			Locale:          in.Locale,
			Title:           title,
			Excerpt:         excerpt,
			Body:            in.Body,
			BodyHTML:        richtext.RenderHTML(in.Body),
			MetaDescription: meta,
		})
	}
	return rows, nil
}

// readingMinutes uses the longest translation so every locale shows the
// same estimate.
func readingMinutes(rows []*PostTranslation) int {
	longest := 0
	for _, row := range rows {
		if words := richtext.WordCount(richtext.PlainText(row.Body)); words > longest {
			longest = words
		}
	}
	return richtext.ReadingMinutes(longest)
}

func localize(record *Post, locale, defaultLocale string, withBody bool) (LocalizedPost, bool) {
	row, resolution, ok := translations.Resolve(record.Translations, locale, defaultLocale)
	if !ok {
		return LocalizedPost{}, false
	}
	view := LocalizedPost{
		ID:              record.ID,
		Slug:            record.Slug,
		Status:          record.Status,
		PublishedAt:     record.PublishedAt,
		CoverURL:        record.CoverURL,
		Tags:            record.Tags,
		ReadingMinutes:  record.ReadingMinutes,
		Title:           row.Title,
		Excerpt:         row.Excerpt,
		MetaDescription: row.MetaDescription,
		UpdatedAt:       record.UpdatedAt,
		Translation:     resolution,
	}
	if withBody {
		view.BodyHTML = row.BodyHTML
	}
	return view, true
}

func defaultTitle(policy translations.Policy, rows []*PostTranslation) string {
	row, _, ok := translations.Pick(rows, policy.Default, policy.Default)
	if !ok {
		return ""
	}
	return row.Title
}

func validateURL(raw string) error {
	if raw = strings.TrimSpace(raw); raw != "" && !richtext.SafeURL(raw) {
		return fmt.Errorf("%w: %s", ErrURLInvalid, raw)
	}
	return nil
}

func normalizeTags(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, tag := range in {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || strings.ContainsAny(tag, `"%\`) {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
