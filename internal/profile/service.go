package profile

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/identity"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/richtext"
	"github.com/goliatone/go-folio/internal/translations"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

var (
	ErrFullNameRequired  = errors.New("profile: full name is required")
	ErrEmailInvalid      = errors.New("profile: email is invalid")
	ErrURLInvalid        = errors.New("profile: url must be http(s) or relative")
	ErrSocialInvalid     = errors.New("profile: social links need a name and an http(s) url")
	ErrYearsInvalid      = errors.New("profile: years of experience cannot be negative")
	ErrTranslationAbsent = errors.New("profile: no translations available")
)

// Service manages the singleton profile.
type Service interface {
	Get(ctx context.Context) (*Profile, error)
	// Upsert creates the profile on first call. Later calls replace the root
	// fields and the translations of the locales present in the request.
	Upsert(ctx context.Context, req UpsertProfileRequest) (*Profile, error)
	Localized(ctx context.Context, locale string) (*LocalizedProfile, error)
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
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
	repo    ProfileRepository
	locales translations.LocaleSource
	now     func() time.Time
	logger  interfaces.Logger
}

func NewService(repo ProfileRepository, locales translations.LocaleSource, opts ...ServiceOption) Service {
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

func (s *service) Get(ctx context.Context) (*Profile, error) {
	return s.repo.Get(ctx)
}

func (s *service) Upsert(ctx context.Context, req UpsertProfileRequest) (*Profile, error) {
	if err := validateRoot(req); err != nil {
		return nil, err
	}
	policy, err := translations.LoadPolicy(ctx, s.locales)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx)
	var notFound *domain.NotFoundError
	switch {
	case errors.As(err, &notFound):
		existing = nil
	case err != nil:
		return nil, err
	}

	inputs := make([]*ProfileTranslationInput, 0, len(req.Translations))
	for i := range req.Translations {
		inputs = append(inputs, &req.Translations[i])
	}
	if err := translations.Normalize(policy, inputs, func(in *ProfileTranslationInput, code string) { in.Locale = code }, existing == nil); err != nil {
		return nil, err
	}

	incoming := make([]*ProfileTranslation, 0, len(inputs))
	for _, in := range inputs {
		row, err := buildTranslation(in)
		if err != nil {
			return nil, err
		}
		incoming = append(incoming, row)
	}

	now := s.now().UTC()
	record := &Profile{
		Email:           strings.TrimSpace(req.Email),
		Phone:           strings.TrimSpace(req.Phone),
		Location:        strings.TrimSpace(req.Location),
		AvatarURL:       strings.TrimSpace(req.AvatarURL),
		ResumeURL:       strings.TrimSpace(req.ResumeURL),
		Socials:         normalizeSocials(req.Socials),
		YearsExperience: req.YearsExperience,
		Available:       req.Available,
		UpdatedAt:       now,
	}

	var rows []*ProfileTranslation
	if existing == nil {
		record.ID = identity.ProfileUUID()
		record.CreatedAt = now
		if _, err := s.repo.Create(ctx, record); err != nil {
			return nil, err
		}
		rows = incoming
	} else {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		if _, err := s.repo.Update(ctx, record); err != nil {
			return nil, err
		}
		rows = translations.Merge(existing.Translations, incoming)
	}

	if err := s.repo.ReplaceTranslations(ctx, record.ID, rows, now); err != nil {
		if existing == nil {
			if rollbackErr := s.repo.Delete(context.WithoutCancel(ctx), record.ID); rollbackErr != nil {
				s.logger.Error("profile create rollback failed", "profile_id", record.ID, "error", rollbackErr)
			}
		}
		return nil, err
	}
	s.logger.Info("profile saved", "profile_id", record.ID, "locales", translations.Codes(rows))
	return s.repo.Get(ctx)
}

func (s *service) Localized(ctx context.Context, locale string) (*LocalizedProfile, error) {
	record, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	policy, err := translations.LoadPolicy(ctx, s.locales)
	if err != nil {
		return nil, err
	}
	row, resolution, ok := translations.Resolve(record.Translations, locale, policy.Default)
	if !ok {
		return nil, ErrTranslationAbsent
	}
	return &LocalizedProfile{
		ID:              record.ID,
		Email:           record.Email,
		Phone:           record.Phone,
		Location:        record.Location,
		AvatarURL:       record.AvatarURL,
		ResumeURL:       record.ResumeURL,
		Socials:         record.Socials,
		YearsExperience: record.YearsExperience,
		Available:       record.Available,
		FullName:        row.FullName,
		Headline:        row.Headline,
		Tagline:         row.Tagline,
		BioHTML:         row.BioHTML,
		CTALabel:        row.CTALabel,
		Translation:     resolution,
	}, nil
}

func validateRoot(req UpsertProfileRequest) error {
	if email := strings.TrimSpace(req.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return fmt.Errorf("%w: %s", ErrEmailInvalid, email)
		}
	}
	for _, raw := range []string{req.AvatarURL, req.ResumeURL} {
		if raw = strings.TrimSpace(raw); raw != "" && !richtext.SafeURL(raw) {
			return fmt.Errorf("%w: %s", ErrURLInvalid, raw)
		}
	}
	for name, link := range req.Socials {
		link = strings.TrimSpace(link)
		if strings.TrimSpace(name) == "" || !(strings.HasPrefix(link, "https://") || strings.HasPrefix(link, "http://")) {
			return fmt.Errorf("%w: %s", ErrSocialInvalid, name)
		}
	}
	if req.YearsExperience < 0 {
		return ErrYearsInvalid
	}
	return nil
}

func buildTranslation(in *ProfileTranslationInput) (*ProfileTranslation, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, fmt.Errorf("%w (%s)", ErrFullNameRequired, in.Locale)
	}
	if err := richtext.Validate(in.Bio); err != nil {
		return nil, err
	}
	return &ProfileTranslation{
		Locale:   in.Locale,
		FullName: name,
		Headline: strings.TrimSpace(in.Headline),
		Tagline:  strings.TrimSpace(in.Tagline),
		Bio:      in.Bio,
		BioHTML:  richtext.RenderHTML(in.Bio),
		CTALabel: strings.TrimSpace(in.CTALabel),
	}, nil
}

func normalizeSocials(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for name, link := range in {
		out[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(link)
	}
	return out
}
