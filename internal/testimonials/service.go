package testimonials

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
	ErrAuthorRequired   = errors.New("testimonials: author name is required")
	ErrRatingOutOfRange = errors.New("testimonials: rating must be between 1 and 5")
	ErrQuoteRequired    = errors.New("testimonials: quote is required")
	ErrURLInvalid       = errors.New("testimonials: avatar url must be http(s) or relative")
	ErrIDRequired       = errors.New("testimonials: id is required")
)

type Service interface {
	Create(ctx context.Context, req CreateTestimonialRequest) (*Testimonial, error)
	Update(ctx context.Context, req UpdateTestimonialRequest) (*Testimonial, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Testimonial, error)
	List(ctx context.Context, publishedOnly bool) ([]*Testimonial, error)
	Localized(ctx context.Context, locale string) ([]LocalizedTestimonial, error)
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
	repo    TestimonialRepository
	locales translations.LocaleSource
	now     func() time.Time
	logger  interfaces.Logger
}

func NewService(repo TestimonialRepository, locales translations.LocaleSource, opts ...ServiceOption) Service {
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

func (s *service) Create(ctx context.Context, req CreateTestimonialRequest) (*Testimonial, error) {
	if err := validateRoot(req.AuthorName, req.AvatarURL, req.Rating); err != nil {
		return nil, err
	}
	rows, err := s.buildTranslations(ctx, req.Translations)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	record := &Testimonial{
		ID:         uuid.New(),
		AuthorName: strings.TrimSpace(req.AuthorName),
		AvatarURL:  strings.TrimSpace(req.AvatarURL),
		Company:    strings.TrimSpace(req.Company),
		Rating:     req.Rating,
		Position:   req.Position,
		Published:  req.Published,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceTranslations(ctx, record.ID, rows, now); err != nil {
		// drop the bare root row so a retry can reuse it
		if rollbackErr := s.repo.Delete(context.WithoutCancel(ctx), record.ID); rollbackErr != nil {
			s.logger.Error("testimonial create rollback failed", "testimonial_id", record.ID, "error", rollbackErr)
		}
		return nil, err
	}
	return s.repo.GetByID(ctx, record.ID)
}

func (s *service) Update(ctx context.Context, req UpdateTestimonialRequest) (*Testimonial, error) {
	if req.ID == uuid.Nil {
		return nil, ErrIDRequired
	}
	if err := validateRoot(req.AuthorName, req.AvatarURL, req.Rating); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	var rows []*TestimonialTranslation
	if req.Translations != nil {
		if rows, err = s.buildTranslations(ctx, req.Translations); err != nil {
			return nil, err
		}
	}
	now := s.now().UTC()
	existing.AuthorName = strings.TrimSpace(req.AuthorName)
	existing.AvatarURL = strings.TrimSpace(req.AvatarURL)
	existing.Company = strings.TrimSpace(req.Company)
	existing.Rating = req.Rating
	existing.Position = req.Position
	existing.Published = req.Published
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
	return s.repo.Delete(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Testimonial, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, publishedOnly bool) ([]*Testimonial, error) {
	return s.repo.List(ctx, publishedOnly)
}

// Localized returns published testimonials only.
func (s *service) Localized(ctx context.Context, locale string) ([]LocalizedTestimonial, error) {
	records, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	policy, err := translations.LoadPolicy(ctx, s.locales)
	if err != nil {
		return nil, err
	}
	out := make([]LocalizedTestimonial, 0, len(records))
	for _, record := range records {
		row, resolution, ok := translations.Resolve(record.Translations, locale, policy.Default)
		if !ok {
			continue
		}
		out = append(out, LocalizedTestimonial{
			ID:          record.ID,
			AuthorName:  record.AuthorName,
			AvatarURL:   record.AvatarURL,
			Company:     record.Company,
			Rating:      record.Rating,
			Quote:       row.Quote,
			AuthorRole:  row.AuthorRole,
			Translation: resolution,
		})
	}
	return out, nil
}

func (s *service) buildTranslations(ctx context.Context, inputs []TestimonialTranslationInput) ([]*TestimonialTranslation, error) {
	policy, err := translations.LoadPolicy(ctx, s.locales)
	if err != nil {
		return nil, err
	}
	refs := make([]*TestimonialTranslationInput, 0, len(inputs))
	for i := range inputs {
		refs = append(refs, &inputs[i])
	}
	if err := translations.Normalize(policy, refs, func(in *TestimonialTranslationInput, code string) { in.Locale = code }, true); err != nil {
		return nil, err
	}
	rows := make([]*TestimonialTranslation, 0, len(refs))
	for _, in := range refs {
		quote := strings.TrimSpace(in.Quote)
		if quote == "" {
			return nil, fmt.Errorf("%w (%s)", ErrQuoteRequired, in.Locale)
		}
		rows = append(rows, &TestimonialTranslation{
			Locale:     in.Locale,
			Quote:      quote,
			AuthorRole: strings.TrimSpace(in.AuthorRole),
		})
	}
	return rows, nil
}

func validateRoot(author, avatar string, rating int) error {
	if strings.TrimSpace(author) == "" {
		return ErrAuthorRequired
	}
	if rating < 1 || rating > 5 {
		return ErrRatingOutOfRange
	}
	if avatar = strings.TrimSpace(avatar); avatar != "" && !richtext.SafeURL(avatar) {
		return ErrURLInvalid
	}
	return nil
}
