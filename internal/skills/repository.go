package skills

import (
	"context"
	"fmt"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/storage"
)

// SkillRepository persists skills and their translations.
type SkillRepository interface {
	List(ctx context.Context) ([]*Skill, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Skill, error)
	Create(ctx context.Context, record *Skill) (*Skill, error)
	Update(ctx context.Context, record *Skill) (*Skill, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceTranslations(ctx context.Context, skillID uuid.UUID, rows []*SkillTranslation, now time.Time) error
	// SetPositions writes positions[i] = i for the given ids in one transaction.
	SetPositions(ctx context.Context, ids []uuid.UUID, now time.Time) error
}

func NewSkillRepository(db *bun.DB) repository.Repository[*Skill] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Skill]{
		NewRecord: func() *Skill { return &Skill{} },
		GetID: func(s *Skill) uuid.UUID {
			return s.ID
		},
		SetID: func(s *Skill, id uuid.UUID) {
			s.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(s *Skill) string {
			return s.ID.String()
		},
	})
}

type BunSkillRepository struct {
	db   *bun.DB
	repo repository.Repository[*Skill]
}

func NewBunSkillRepository(db *bun.DB) *BunSkillRepository {
	return &BunSkillRepository{db: db, repo: NewSkillRepository(db)}
}

func (r *BunSkillRepository) List(ctx context.Context) ([]*Skill, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.category ASC, ?TableAlias.position ASC, ?TableAlias.created_at ASC")
		}),
	)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "skill", "")
	}
	if err := r.attach(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BunSkillRepository) GetByID(ctx context.Context, id uuid.UUID) (*Skill, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, storage.MapRepositoryError(err, "skill", id.String())
	}
	if err := r.attach(ctx, []*Skill{record}); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunSkillRepository) Create(ctx context.Context, record *Skill) (*Skill, error) {
	return r.repo.Create(ctx, record)
}

func (r *BunSkillRepository) Update(ctx context.Context, record *Skill) (*Skill, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns("category", "level", "icon", "position", "updated_at"),
	)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "skill", record.ID.String())
	}
	return updated, nil
}

func (r *BunSkillRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return storage.DeleteWithTranslations[Skill, SkillTranslation](ctx, r.db, "skill", "skill_id", id)
}

func (r *BunSkillRepository) ReplaceTranslations(ctx context.Context, skillID uuid.UUID, rows []*SkillTranslation, now time.Time) error {
	return storage.ReplaceTranslations(ctx, r.db, "skill_id", skillID, rows, now)
}

func (r *BunSkillRepository) SetPositions(ctx context.Context, ids []uuid.UUID, now time.Time) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for position, id := range ids {
			if _, err := tx.NewUpdate().
				Model((*Skill)(nil)).
				Set("position = ?", position).
				Set("updated_at = ?", now).
				Where("id = ?", id.String()).
				Exec(ctx); err != nil {
				return fmt.Errorf("reorder skill %s: %w", id, err)
			}
		}
		return nil
	})
}

func (r *BunSkillRepository) attach(ctx context.Context, records []*Skill) error {
	ids := make([]uuid.UUID, 0, len(records))
	byID := make(map[uuid.UUID]*Skill, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
		byID[record.ID] = record
		record.Translations = nil
	}
	rows, err := storage.LoadTranslations[SkillTranslation](ctx, r.db, "skill_id", ids)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if parent, ok := byID[row.SkillID]; ok {
			parent.Translations = append(parent.Translations, row)
		}
	}
	return nil
}
