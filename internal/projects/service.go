package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/richtext"
	"github.com/goliatone/go-folio/internal/translations"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

var (
	ErrSlugExists    = errors.New("projects: slug already exists")
	ErrStatusInvalid = errors.New("projects: status must be draft, published or archived")
	ErrTitleRequired = errors.New("projects: title is required")
	ErrURLInvalid    = errors.New("projects: url must be http(s) or relative")
	ErrIDRequired    = errors.New("projects: id is required")
)

// Service manages portfolio projects.
type Service interface {
	Create(ctx context.Context, req CreateProjectRequest) (*Project, error)
	Update(ctx context.Context, req UpdateProjectRequest) (*Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Project, error)
	GetBySlug(ctx context.Context, slug string) (*Project, error)
	List(ctx context.Context, opts ListOptions) ([]*Project, int, error)
	Localized(ctx context.Context, locale string, opts ListOptions) ([]LocalizedProject, int, error)
	LocalizedBySlug(ctx context.Context, slug, locale string) (*LocalizedProject, error)
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
	repo    ProjectRepository
	locales translations.LocaleSource
	now     func() time.Time
	logger  interfaces.Logger
}

func NewService(repo ProjectRepository, locales translations.LocaleSource, opts ...ServiceOption) Service {
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

func (s *service) Create(ctx context.Context, req CreateProjectRequest) (*Project, error) {
	policy, err := translations.LoadPolicy(ctx, s.locales)
	if err != nil {
		return nil, err
	}
	rows, err := buildTranslations(policy, req.Translations)
	if err != nil {
		return nil, err
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	slug, err := domain.NormalizeSlug(req.Slug, defaultTitle(policy, rows))
	if err != nil {
		return nil, fmt.Errorf("projects: %w", err)
	}
	if err := s.ensureSlugFree(ctx, slug, uuid.Nil); err != nil {
		return nil, err
	}
	if err := validateURLs(req.CoverURL, req.RepoURL, req.LiveURL); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	record := &Project{
		ID:           uuid.New(),
		Slug:         slug,
		Status:       status,
		CoverURL:     strings.TrimSpace(req.CoverURL),
		RepoURL:      strings.TrimSpace(req.RepoURL),
		LiveURL:      strings.TrimSpace(req.LiveURL),
		Technologies: normalizeTechnologies(req.Technologies),
		Featured:     req.Featured,
		Position:     req.Position,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceTranslations(ctx, record.ID, rows, now); err != nil {
		// drop the bare root row so a retry can reuse it
		if rollbackErr := s.repo.Delete(context.WithoutCancel(ctx), record.ID); rollbackErr != nil {
			s.logger.Error("project create rollback failed", "project_id", record.ID, "error", rollbackErr)
		}
		return nil, err
	}
	s.logger.Info("project created", "project_id", record.ID, "slug", slug, "status", status)
	return s.repo.GetByID(ctx, record.ID)
}

func (s *service) Update(ctx context.Context, req UpdateProjectRequest) (*Project, error) {
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
	var rows []*ProjectTranslation
	if req.Translations != nil {
		if rows, err = buildTranslations(policy, req.Translations); err != nil {
			return nil, err
		}
	}
	status := existing.Status
	if strings.TrimSpace(req.Status) != "" {
		if status, err = parseStatus(req.Status); err != nil {
			return nil, err
		}
	}
	slug := existing.Slug
	if strings.TrimSpace(req.Slug) != "" {
		if slug, err = domain.NormalizeSlug(req.Slug, ""); err != nil {
			return nil, fmt.Errorf("projects: %w", err)
		}
		if err := s.ensureSlugFree(ctx, slug, existing.ID); err != nil {
			return nil, err
		}
	}
	if err := validateURLs(req.CoverURL, req.RepoURL, req.LiveURL); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	existing.Slug = slug
	existing.Status = status
	existing.CoverURL = strings.TrimSpace(req.CoverURL)
	existing.RepoURL = strings.TrimSpace(req.RepoURL)
	existing.LiveURL = strings.TrimSpace(req.LiveURL)
	existing.Technologies = normalizeTechnologies(req.Technologies)
	existing.Featured = req.Featured
	existing.Position = req.Position
	existing.UpdatedAt = now
	if _, err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	if rows != nil {
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
	s.logger.Info("project deleted", "project_id", id)
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Project, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Project, error) {
	return s.repo.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]*Project, int, error) {
	return s.repo.List(ctx, opts)
}

func (s *service) Localized(ctx context.Context, locale string, opts ListOptions) ([]LocalizedProject, int, error) {
	records, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	policy, err := translations.LoadPolicy(ctx, s.locales)
	if err != nil {
		return nil, 0, err
	}
	out := make([]LocalizedProject, 0, len(records))
	for _, record := range records {
		if view, ok := localize(record, locale, policy.Default, false); ok {
			out = append(out, view)
		}
	}
	return out, total, nil
}

func (s *service) LocalizedBySlug(ctx context.Context, slug, locale string) (*LocalizedProject, error) {
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
		return nil, domain.NewNotFound("project translation", slug)
	}
	return &view, nil
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

func localize(record *Project, locale, defaultLocale string, withBody bool) (LocalizedProject, bool) {
	row, resolution, ok := translations.Resolve(record.Translations, locale, defaultLocale)
	if !ok {
		return LocalizedProject{}, false
	}
	view := LocalizedProject{
		ID:           record.ID,
		Slug:         record.Slug,
		Status:       record.Status,
		CoverURL:     record.CoverURL,
		RepoURL:      record.RepoURL,
		LiveURL:      record.LiveURL,
		Technologies: record.Technologies,
		Featured:     record.Featured,
		Title:        row.Title,
		Summary:      row.Summary,
		UpdatedAt:    record.UpdatedAt,
		Translation:  resolution,
	}
	if withBody {
		view.BodyHTML = row.BodyHTML
	}
	return view, true
}

func buildTranslations(policy translations.Policy, inputs []ProjectTranslationInput) ([]*ProjectTranslation, error) {
	refs := make([]*ProjectTranslationInput, 0, len(inputs))
	for i := range inputs {
		refs = append(refs, &inputs[i])
	}
	if err := translations.Normalize(policy, refs, func(in *ProjectTranslationInput, code string) { in.Locale = code }, true); err != nil {
		return nil, err
	}
	rows := make([]*ProjectTranslation, 0, len(refs))
	for _, in := range refs {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w (%s)", ErrTitleRequired, in.Locale)
		}
		if err := richtext.Validate(in.Body); err != nil {
			return nil, err
		}
		summary := strings.TrimSpace(in.Summary)
		if summary == "" {
			summary = richtext.Excerpt(richtext.PlainText(in.Body), 160)
		}
		rows = append(rows, &ProjectTranslation{
			Locale:   in.Locale,
			Title:    title,
			Summary:  summary,
			Body:     in.Body,
			BodyHTML: richtext.RenderHTML(in.Body),
		})
	}
	return rows, nil
}

func defaultTitle(policy translations.Policy, rows []*ProjectTranslation) string {
	row, _, ok := translations.Pick(rows, policy.Default, policy.Default)
	if !ok {
		return ""
	}
	return row.Title
}

func parseStatus(raw string) (domain.Status, error) {
	status := domain.ParseStatus(raw)
	switch status {
	case domain.StatusDraft, domain.StatusPublished, domain.StatusArchived:
		return status, nil
	}
	return "", fmt.Errorf("%w: %s", ErrStatusInvalid, raw)
}

func validateURLs(urls ...string) error {
	for _, raw := range urls {
		if raw = strings.TrimSpace(raw); raw != "" && !richtext.SafeURL(raw) {
			return fmt.Errorf("%w: %s", ErrURLInvalid, raw)
		}
	}
	return nil
}

func normalizeTechnologies(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, tech := range in {
		tech = strings.TrimSpace(tech)
		key := strings.ToLower(tech)
		if tech == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tech)
	}
	return out
}
