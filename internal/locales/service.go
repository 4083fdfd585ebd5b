package locales

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/identity"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

var (
	ErrCodeRequired          = errors.New("locales: code is required")
	ErrCodeInvalid           = errors.New("locales: code is not a valid language tag")
	ErrNameRequired          = errors.New("locales: name is required")
	ErrLocaleExists          = errors.New("locales: locale already exists")
	ErrDefaultLocaleRequired = errors.New("locales: a default locale is required; promote another locale instead")
	ErrDefaultLocaleInactive = errors.New("locales: the default locale cannot be deactivated")
	ErrNoActiveLocales       = errors.New("locales: no active locales configured")
)

// Service manages the set of site locales.
type Service interface {
	List(ctx context.Context) ([]*Locale, error)
	Active(ctx context.Context) ([]*Locale, error)
	Default(ctx context.Context) (*Locale, error)
	Get(ctx context.Context, code string) (*Locale, error)
	// Resolve returns the active locale for code, falling back to the default.
	Resolve(ctx context.Context, code string) (*Locale, error)
	Create(ctx context.Context, req CreateLocaleRequest) (*Locale, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateLocaleRequest) (*Locale, error)
	Seed(ctx context.Context) ([]*Locale, error)
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

// WithSeedLocales overrides the locales created by Seed.
func WithSeedLocales(seed []CreateLocaleRequest) ServiceOption {
	return func(s *service) {
		s.seed = append([]CreateLocaleRequest(nil), seed...)
	}
}

// DefaultSeed is the English/Arabic pair every install starts with.
func DefaultSeed() []CreateLocaleRequest {
	return []CreateLocaleRequest{
		{Code: "en", Name: "English", NativeName: "English", Direction: "ltr", IsDefault: true, IsActive: true, Position: 0},
		{Code: "ar", Name: "Arabic", NativeName: "العربية", Direction: "rtl", IsActive: true, Position: 1},
	}
}

type service struct {
	repo   LocaleRepository
	now    func() time.Time
	logger interfaces.Logger
	seed   []CreateLocaleRequest
}

func NewService(repo LocaleRepository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		now:    time.Now,
		logger: logging.NoOp(),
		seed:   DefaultSeed(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) List(ctx context.Context) ([]*Locale, error) {
	return s.repo.List(ctx)
}

func (s *service) Active(ctx context.Context) ([]*Locale, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]*Locale, 0, len(all))
	for _, l := range all {
		if l.IsActive {
			active = append(active, l)
		}
	}
	return active, nil
}

func (s *service) Default(ctx context.Context) (*Locale, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var firstActive *Locale
	for _, l := range all {
		if l.IsDefault {
			return l, nil
		}
		if firstActive == nil && l.IsActive {
			firstActive = l
		}
	}
	if firstActive != nil {
		return firstActive, nil
	}
	return nil, ErrNoActiveLocales
}

func (s *service) Get(ctx context.Context, code string) (*Locale, error) {
	normalized, err := NormalizeCode(code)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByCode(ctx, normalized)
}

func (s *service) Resolve(ctx context.Context, code string) (*Locale, error) {
	if normalized, err := NormalizeCode(code); err == nil {
		if l, err := s.repo.GetByCode(ctx, normalized); err == nil && l.IsActive {
			return l, nil
		}
		// Fall back to the base language ("ar-EG" -> "ar").
		if base, _, ok := strings.Cut(normalized, "-"); ok {
			if l, err := s.repo.GetByCode(ctx, base); err == nil && l.IsActive {
				return l, nil
			}
		}
	}
	return s.Default(ctx)
}

func (s *service) Create(ctx context.Context, req CreateLocaleRequest) (*Locale, error) {
	code, err := NormalizeCode(req.Code)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if existing, err := s.repo.GetByCode(ctx, code); err == nil && existing != nil {
		return nil, ErrLocaleExists
	} else if err != nil && !isNotFound(err) {
		return nil, err
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	makeDefault := req.IsDefault || len(all) == 0
	if makeDefault && !req.IsActive {
		return nil, ErrDefaultLocaleInactive
	}

	now := s.now().UTC()
	record := &Locale{
		ID:         identity.LocaleUUID(code),
		Code:       code,
		Name:       name,
		NativeName: strings.TrimSpace(req.NativeName),
		Direction:  domain.ParseDirection(req.Direction),
		IsActive:   req.IsActive,
		Position:   req.Position,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	if makeDefault {
		if err := s.repo.SetDefault(ctx, created.ID, now); err != nil {
			return nil, err
		}
		created.IsDefault = true
	}
	s.logger.Info("locale.created", "code", created.Code, "default", created.IsDefault)
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateLocaleRequest) (*Locale, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	code, err := NormalizeCode(req.Code)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if code != existing.Code {
		if other, err := s.repo.GetByCode(ctx, code); err == nil && other != nil && other.ID != id {
			return nil, ErrLocaleExists
		}
	}
	if existing.IsDefault && !req.IsDefault {
		return nil, ErrDefaultLocaleRequired
	}
	if (existing.IsDefault || req.IsDefault) && !req.IsActive {
		return nil, ErrDefaultLocaleInactive
	}

	now := s.now().UTC()
	existing.Code = code
	existing.Name = name
	existing.NativeName = strings.TrimSpace(req.NativeName)
	existing.Direction = domain.ParseDirection(req.Direction)
	existing.IsActive = req.IsActive
	existing.Position = req.Position
	existing.UpdatedAt = now

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	if req.IsDefault && !updated.IsDefault {
		if err := s.repo.SetDefault(ctx, updated.ID, now); err != nil {
			return nil, err
		}
		updated.IsDefault = true
	}
	s.logger.Info("locale.updated", "code", updated.Code, "active", updated.IsActive, "default", updated.IsDefault)
	return updated, nil
}

// Seed creates any missing seed locales and leaves existing rows untouched.
func (s *service) Seed(ctx context.Context) ([]*Locale, error) {
	created := make([]*Locale, 0, len(s.seed))
	for _, req := range s.seed {
		code, err := NormalizeCode(req.Code)
		if err != nil {
			return nil, err
		}
		if _, err := s.repo.GetByCode(ctx, code); err == nil {
			continue
		} else if !isNotFound(err) {
			return nil, err
		}
		locale, err := s.Create(ctx, req)
		if err != nil {
			return nil, err
		}
		created = append(created, locale)
	}
	return created, nil
}

// NormalizeCode validates code as a BCP 47 tag and returns its lowercase form.
func NormalizeCode(code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "", ErrCodeRequired
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", ErrCodeInvalid
	}
	return strings.ToLower(tag.String()), nil
}

var rtlScripts = map[string]bool{"Arab": true, "Hebr": true, "Thaa": true, "Syrc": true, "Nkoo": true}

// DirectionFor guesses the writing direction of code from its likely script.
func DirectionFor(code string) string {
	tag, err := language.Parse(strings.TrimSpace(code))
	if err != nil {
		return string(domain.DirectionLTR)
	}
	if script, _ := tag.Script(); rtlScripts[script.String()] {
		return string(domain.DirectionRTL)
	}
	return string(domain.DirectionLTR)
}

func isNotFound(err error) bool {
	var nf *domain.NotFoundError
	return errors.As(err, &nf)
}
