package media

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/storage"
)

type AssetRepository interface {
	List(ctx context.Context, opts ListOptions) ([]*Asset, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Asset, error)
	Create(ctx context.Context, record *Asset) (*Asset, error)
	UpdateAlt(ctx context.Context, id uuid.UUID, alt string) (*Asset, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

func NewAssetRepository(db *bun.DB) repository.Repository[*Asset] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Asset]{
		NewRecord: func() *Asset { return &Asset{} },
		GetID: func(a *Asset) uuid.UUID {
			return a.ID
		},
		SetID: func(a *Asset, id uuid.UUID) {
			a.ID = id
		},
		GetIdentifier: func() string {
			return "stored_path"
		},
		GetIdentifierValue: func(a *Asset) string {
			return a.StoredPath
		},
	})
}

type BunAssetRepository struct {
	repo repository.Repository[*Asset]
}

func NewBunAssetRepository(db *bun.DB) *BunAssetRepository {
	return &BunAssetRepository{repo: NewAssetRepository(db)}
}

func (r *BunAssetRepository) List(ctx context.Context, opts ListOptions) ([]*Asset, int, error) {
	records, total, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.created_at DESC, ?TableAlias.filename ASC")
		}),
		repository.SelectPaginate(listLimit(opts.Limit), max(opts.Offset, 0)),
	)
	if err != nil {
		return nil, 0, storage.MapRepositoryError(err, "media asset", "")
	}
	return records, total, nil
}

func (r *BunAssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*Asset, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, storage.MapRepositoryError(err, "media asset", id.String())
	}
	return record, nil
}

func (r *BunAssetRepository) Create(ctx context.Context, record *Asset) (*Asset, error) {
	return r.repo.Create(ctx, record)
}

func (r *BunAssetRepository) UpdateAlt(ctx context.Context, id uuid.UUID, alt string) (*Asset, error) {
	updated, err := r.repo.Update(ctx, &Asset{ID: id, AltText: alt},
		repository.UpdateByID(id.String()),
		repository.UpdateColumns("alt_text"),
	)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "media asset", id.String())
	}
	return updated, nil
}

func (r *BunAssetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &Asset{ID: id})
}

func listLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	}
	return limit
}
