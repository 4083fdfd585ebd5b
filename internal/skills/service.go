package skills

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/translations"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

const (
	MinLevel = 0
	MaxLevel = 100
)

var (
	ErrCategoryRequired = errors.New("skills: category is required")
	ErrLevelOutOfRange  = errors.New("skills: level must be between 0 and 100")
	ErrNameRequired     = errors.New("skills: name is required")
	ErrIDRequired       = errors.New("skills: id is required")
	ErrReorderMismatch  = errors.New("skills: reorder must list every skill exactly once")
)

// Service manages skills.
type Service interface {
	Create(ctx context.Context, req CreateSkillRequest) (*Skill, error)
	Update(ctx context.Context, req UpdateSkillRequest) (*Skill, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*Skill, error)
	// List orders skills by category then position.
	List(ctx context.Context) ([]*Skill, error)
	Localized(ctx context.Context, locale string) ([]LocalizedSkill, error)
	// Reorder assigns positions following ids.
	Reorder(ctx context.Context, ids []uuid.UUID) error
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
	repo    SkillRepository
	locales translations.LocaleSource
	now     func() time.Time
	logger  interfaces.Logger
}

func NewService(repo SkillRepository, locales translations.LocaleSource, opts ...ServiceOption) Service {
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

func (s *service) Create(ctx context.Context, req CreateSkillRequest) (*Skill, error) {
	category, err := validateRoot(req.Category, req.Level)
	if err != nil {
		return nil, err
	}
	rows, err := s.buildTranslations(ctx, req.Translations, true)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	record := &Skill{
		ID:        uuid.New(),
		Category:  category,
		Level:     req.Level,
		Icon:      strings.TrimSpace(req.Icon),
		Position:  req.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceTranslations(ctx, record.ID, rows, now); err != nil {
		// drop the bare root row so a retry can reuse it
		if rollbackErr := s.repo.Delete(context.WithoutCancel(ctx), record.ID); rollbackErr != nil {
			s.logger.Error("skill create rollback failed", "skill_id", record.ID, "error", rollbackErr)
		}
		return nil, err
	}
	s.logger.Debug("skill created", "skill_id", record.ID, "category", category)
	return s.repo.GetByID(ctx, record.ID)
}

func (s *service) Update(ctx context.Context, req UpdateSkillRequest) (*Skill, error) {
	if req.ID == uuid.Nil {
		return nil, ErrIDRequired
	}
	category, err := validateRoot(req.Category, req.Level)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	var rows []*SkillTranslation
	if req.Translations != nil {
		if rows, err = s.buildTranslations(ctx, req.Translations, true); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	existing.Category = category
	existing.Level = req.Level
	existing.Icon = strings.TrimSpace(req.Icon)
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
	return s.repo.Delete(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Skill, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*Skill, error) {
	return s.repo.List(ctx)
}

func (s *service) Localized(ctx context.Context, locale string) ([]LocalizedSkill, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	policy, err := translations.LoadPolicy(ctx, s.locales)
	if err != nil {
		return nil, err
	}
	out := make([]LocalizedSkill, 0, len(records))
	for _, record := range records {
		row, resolution, ok := translations.Resolve(record.Translations, locale, policy.Default)
		if !ok {
			continue
		}
		out = append(out, LocalizedSkill{
			ID:          record.ID,
			Category:    record.Category,
			Level:       record.Level,
			Icon:        record.Icon,
			Position:    record.Position,
			Name:        row.Name,
			Description: row.Description,
			Translation: resolution,
		})
	}
	return out, nil
}

func (s *service) Reorder(ctx context.Context, ids []uuid.UUID) error {
	records, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	if len(ids) != len(records) {
		return ErrReorderMismatch
	}
	known := make(map[uuid.UUID]bool, len(records))
	for _, record := range records {
		known[record.ID] = false
	}
	for _, id := range ids {
		seen, ok := known[id]
		if !ok || seen {
			return fmt.Errorf("%w: %s", ErrReorderMismatch, id)
		}
		known[id] = true
	}
	return s.repo.SetPositions(ctx, ids, s.now().UTC())
}

func (s *service) buildTranslations(ctx context.Context, inputs []SkillTranslationInput, requireDefault bool) ([]*SkillTranslation, error) {
	policy, err := translations.LoadPolicy(ctx, s.locales)
	if err != nil {
		return nil, err
	}
	refs := make([]*SkillTranslationInput, 0, len(inputs))
	for i := range inputs {
		refs = append(refs, &inputs[i])
	}
	if err := translations.Normalize(policy, refs, func(in *SkillTranslationInput, code string) { in.Locale = code }, requireDefault); err != nil {
		return nil, err
	}
	rows := make([]*SkillTranslation, 0, len(refs))
	for _, in := range refs {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w (%s)", ErrNameRequired, in.Locale)
		}
		rows = append(rows, &SkillTranslation{
			Locale:      in.Locale,
			Name:        name,
			Description: strings.TrimSpace(in.Description),
		})
	}
	return rows, nil
}

func validateRoot(category string, level int) (string, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return "", ErrCategoryRequired
	}
	if level < MinLevel || level > MaxLevel {
		return "", ErrLevelOutOfRange
	}
	return category, nil
}
