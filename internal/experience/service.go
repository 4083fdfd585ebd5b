package experience

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/richtext"
	"github.com/goliatone/go-folio/internal/translations"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

var (
	ErrCompanyRequired       = errors.New("experience: company is required")
	ErrStartDateRequired     = errors.New("experience: start date is required")
	ErrEndBeforeStart        = errors.New("experience: end date must not precede start date")
	ErrEmploymentTypeInvalid = errors.New("experience: unknown employment type")
	ErrURLInvalid            = errors.New("experience: url must be http(s) or relative")
	ErrRoleRequired          = errors.New("experience: role is required")
	ErrIDRequired            = errors.New("experience: id is required")
)

var employmentTypes = map[string]bool{"": true, "full-time": true, "part-time": true, "contract": true, "freelance": true, "internship": true}

// Service manages experience entries.
type Service interface {
	Create(ctx context.Context, req CreateExperienceRequest) (*Experience, error)
	Update(ctx context.Context, req UpdateExperienceRequest) (*Experience, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Experience, error)
	List(ctx context.Context) ([]*Experience, error)
	Localized(ctx context.Context, locale string) ([]LocalizedExperience, error)
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
	repo    ExperienceRepository
	locales translations.LocaleSource
	now     func() time.Time
	logger  interfaces.Logger
}

func NewService(repo ExperienceRepository, locales translations.LocaleSource, opts ...ServiceOption) Service {
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

type rootFields struct {
	company        string
	companyURL     string
	logoURL        string
	employmentType string
	start          time.Time
	end            *time.Time
}

func (s *service) Create(ctx context.Context, req CreateExperienceRequest) (*Experience, error) {
	root, err := validateRoot(req.Company, req.CompanyURL, req.LogoURL, req.EmploymentType, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	rows, err := s.buildTranslations(ctx, req.Translations)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	record := &Experience{
		ID:        uuid.New(),
		Position:  req.Position,
		CreatedAt: now,
	}
	root.apply(record, now)
	if _, err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceTranslations(ctx, record.ID, rows, now); err != nil {
		// drop the bare root row so a retry can reuse it
		if rollbackErr := s.repo.Delete(context.WithoutCancel(ctx), record.ID); rollbackErr != nil {
			s.logger.Error("experience create rollback failed", "experience_id", record.ID, "error", rollbackErr)
		}
		return nil, err
	}
	s.logger.Debug("experience created", "experience_id", record.ID, "company", record.Company)
	return s.repo.GetByID(ctx, record.ID)
}

func (s *service) Update(ctx context.Context, req UpdateExperienceRequest) (*Experience, error) {
	if req.ID == uuid.Nil {
		return nil, ErrIDRequired
	}
	root, err := validateRoot(req.Company, req.CompanyURL, req.LogoURL, req.EmploymentType, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	var rows []*ExperienceTranslation
	if req.Translations != nil {
		if rows, err = s.buildTranslations(ctx, req.Translations); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	existing.Position = req.Position
	root.apply(existing, now)
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
	return s.repo.Delete(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Experience, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*Experience, error) {
	return s.repo.List(ctx)
}

func (s *service) Localized(ctx context.Context, locale string) ([]LocalizedExperience, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	policy, err := translations.LoadPolicy(ctx, s.locales)
	if err != nil {
		return nil, err
	}
	out := make([]LocalizedExperience, 0, len(records))
	for _, record := range records {
		row, resolution, ok := translations.Resolve(record.Translations, locale, policy.Default)
		if !ok {
			continue
		}
		out = append(out, LocalizedExperience{
			ID:             record.ID,
			Company:        record.Company,
			CompanyURL:     record.CompanyURL,
			LogoURL:        record.LogoURL,
			EmploymentType: record.EmploymentType,
			StartDate:      record.StartDate,
			EndDate:        record.EndDate,
			Current:        record.IsCurrent(),
			Role:           row.Role,
			Location:       row.Location,
			Description:    row.Description,
			Highlights:     row.Highlights,
			Translation:    resolution,
		})
	}
	return out, nil
}

func (s *service) buildTranslations(ctx context.Context, inputs []ExperienceTranslationInput) ([]*ExperienceTranslation, error) {
	policy, err := translations.LoadPolicy(ctx, s.locales)
	if err != nil {
		return nil, err
	}
	refs := make([]*ExperienceTranslationInput, 0, len(inputs))
	for i := range inputs {
		refs = append(refs, &inputs[i])
	}
	if err := translations.Normalize(policy, refs, func(in *ExperienceTranslationInput, code string) { in.Locale = code }, true); err != nil {
		return nil, err
	}
	rows := make([]*ExperienceTranslation, 0, len(refs))
	for _, in := range refs {
		role := strings.TrimSpace(in.Role)
		if role == "" {
			return nil, fmt.Errorf("%w (%s)", ErrRoleRequired, in.Locale)
		}
		var highlights []string
		for _, h := range in.Highlights {
			if h = strings.TrimSpace(h); h != "" {
				highlights = append(highlights, h)
			}
		}
		rows = append(rows, &ExperienceTranslation{
			Locale:      in.Locale,
			Role:        role,
			Location:    strings.TrimSpace(in.Location),
			Description: strings.TrimSpace(in.Description),
			Highlights:  highlights,
		})
	}
	return rows, nil
}

func validateRoot(company, companyURL, logoURL, employmentType string, start time.Time, end *time.Time) (rootFields, error) {
	root := rootFields{
		company:        strings.TrimSpace(company),
		companyURL:     strings.TrimSpace(companyURL),
		logoURL:        strings.TrimSpace(logoURL),
		employmentType: strings.ToLower(strings.TrimSpace(employmentType)),
	}
	if root.company == "" {
		return root, ErrCompanyRequired
	}
	if start.IsZero() {
		return root, ErrStartDateRequired
	}
	root.start = dateOnly(start)
	if end != nil && !end.IsZero() {
		e := dateOnly(*end)
		if e.Before(root.start) {
			return root, ErrEndBeforeStart
		}
		root.end = &e
	}
	if !employmentTypes[root.employmentType] {
		return root, fmt.Errorf("%w: %s", ErrEmploymentTypeInvalid, root.employmentType)
	}
	for _, raw := range []string{root.companyURL, root.logoURL} {
		if raw != "" && !richtext.SafeURL(raw) {
			return root, fmt.Errorf("%w: %s", ErrURLInvalid, raw)
		}
	}
	return root, nil
}

func (r rootFields) apply(record *Experience, now time.Time) {
	record.Company = r.company
	record.CompanyURL = r.companyURL
	record.LogoURL = r.logoURL
	record.EmploymentType = r.employmentType
	record.StartDate = r.start
	record.EndDate = r.end
	record.UpdatedAt = now
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
