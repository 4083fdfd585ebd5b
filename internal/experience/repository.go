package experience

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/storage"
)

// ExperienceRepository persists experience entries and their translations.
type ExperienceRepository interface {
	// List orders current roles first, then by start date descending.
	List(ctx context.Context) ([]*Experience, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Experience, error)
	Create(ctx context.Context, record *Experience) (*Experience, error)
	Update(ctx context.Context, record *Experience) (*Experience, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceTranslations(ctx context.Context, experienceID uuid.UUID, rows []*ExperienceTranslation, now time.Time) error
}

func NewExperienceRepository(db *bun.DB) repository.Repository[*Experience] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Experience]{
		NewRecord: func() *Experience { return &Experience{} },
		GetID: func(e *Experience) uuid.UUID {
			return e.ID
		},
		SetID: func(e *Experience, id uuid.UUID) {
			e.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(e *Experience) string {
			return e.ID.String()
		},
	})
}

type BunExperienceRepository struct {
	db   *bun.DB
	repo repository.Repository[*Experience]
}

func NewBunExperienceRepository(db *bun.DB) *BunExperienceRepository {
	return &BunExperienceRepository{db: db, repo: NewExperienceRepository(db)}
}

func (r *BunExperienceRepository) List(ctx context.Context) ([]*Experience, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("CASE WHEN ?TableAlias.end_date IS NULL THEN 0 ELSE 1 END ASC, ?TableAlias.start_date DESC, ?TableAlias.position ASC")
		}),
	)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "experience", "")
	}
	if err := r.attach(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *BunExperienceRepository) GetByID(ctx context.Context, id uuid.UUID) (*Experience, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, storage.MapRepositoryError(err, "experience", id.String())
	}
	if err := r.attach(ctx, []*Experience{record}); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunExperienceRepository) Create(ctx context.Context, record *Experience) (*Experience, error) {
	return r.repo.Create(ctx, record)
}

func (r *BunExperienceRepository) Update(ctx context.Context, record *Experience) (*Experience, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(
			"company",
			"company_url",
			"logo_url",
			"employment_type",
			"start_date",
			"end_date",
			"position",
			"updated_at",
		),
	)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "experience", record.ID.String())
	}
	return updated, nil
}

func (r *BunExperienceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return storage.DeleteWithTranslations[Experience, ExperienceTranslation](ctx, r.db, "experience", "experience_id", id)
}

func (r *BunExperienceRepository) ReplaceTranslations(ctx context.Context, experienceID uuid.UUID, rows []*ExperienceTranslation, now time.Time) error {
	return storage.ReplaceTranslations(ctx, r.db, "experience_id", experienceID, rows, now)
}

func (r *BunExperienceRepository) attach(ctx context.Context, records []*Experience) error {
	ids := make([]uuid.UUID, 0, len(records))
	byID := make(map[uuid.UUID]*Experience, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
		byID[record.ID] = record
		record.Translations = nil
	}
	rows, err := storage.LoadTranslations[ExperienceTranslation](ctx, r.db, "experience_id", ids)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if parent, ok := byID[row.ExperienceID]; ok {
			parent.Translations = append(parent.Translations, row)
		}
	}
	return nil
}
