package profile

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/storage"
)

// ProfileRepository persists the singleton profile.
type ProfileRepository interface {
	// Get returns the profile with translations or a NotFoundError.
	Get(ctx context.Context) (*Profile, error)
	Create(ctx context.Context, record *Profile) (*Profile, error)
	Update(ctx context.Context, record *Profile) (*Profile, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceTranslations(ctx context.Context, profileID uuid.UUID, rows []*ProfileTranslation, now time.Time) error
}

// NewProfileRepository builds the go-repository-bun repository for profiles.
func NewProfileRepository(db *bun.DB) repository.Repository[*Profile] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Profile]{
		NewRecord: func() *Profile { return &Profile{} },
		GetID: func(p *Profile) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Profile, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(p *Profile) string {
			return p.ID.String()
		},
	})
}

type BunProfileRepository struct {
	db   *bun.DB
	repo repository.Repository[*Profile]
}

func NewBunProfileRepository(db *bun.DB) *BunProfileRepository {
	return &BunProfileRepository{db: db, repo: NewProfileRepository(db)}
}

func (r *BunProfileRepository) Get(ctx context.Context) (*Profile, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.created_at ASC")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "profile", "")
	}
	if len(records) == 0 {
		return nil, domain.NewNotFound("profile", "")
	}
	record := records[0]
	rows, err := storage.LoadTranslations[ProfileTranslation](ctx, r.db, "profile_id", []uuid.UUID{record.ID})
	if err != nil {
		return nil, err
	}
	record.Translations = rows
	return record, nil
}

func (r *BunProfileRepository) Create(ctx context.Context, record *Profile) (*Profile, error) {
	return r.repo.Create(ctx, record)
}

func (r *BunProfileRepository) Update(ctx context.Context, record *Profile) (*Profile, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(
			"email",
			"phone",
			"location",
			"avatar_url",
			"resume_url",
			"socials",
			"years_experience",
			"available",
			"updated_at",
		),
	)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "profile", record.ID.String())
	}
	return updated, nil
}

func (r *BunProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return storage.DeleteWithTranslations[Profile, ProfileTranslation](ctx, r.db, "profile", "profile_id", id)
}

func (r *BunProfileRepository) ReplaceTranslations(ctx context.Context, profileID uuid.UUID, rows []*ProfileTranslation, now time.Time) error {
	return storage.ReplaceTranslations(ctx, r.db, "profile_id", profileID, rows, now)
}
