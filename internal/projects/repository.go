package projects

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/storage"
)

const projectNamespace = "project"

// ProjectRepository persists projects and their translations.
type ProjectRepository interface {
	List(ctx context.Context, opts ListOptions) ([]*Project, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Project, error)
	GetBySlug(ctx context.Context, slug string) (*Project, error)
	Create(ctx context.Context, record *Project) (*Project, error)
	Update(ctx context.Context, record *Project) (*Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceTranslations(ctx context.Context, projectID uuid.UUID, rows []*ProjectTranslation, now time.Time) error
}

func NewProjectRepository(db *bun.DB) repository.Repository[*Project] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Project]{
		NewRecord: func() *Project { return &Project{} },
		GetID: func(p *Project) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Project, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(p *Project) string {
			return p.Slug
		},
	})
}

// BunProjectRepository reads through go-repository-cache when configured.
type BunProjectRepository struct {
	db          *bun.DB
	repo        repository.Repository[*Project]
	invalidator storage.Invalidator
}

func NewBunProjectRepository(db *bun.DB) *BunProjectRepository {
	return NewBunProjectRepositoryWithCache(db, nil, nil)
}

func NewBunProjectRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunProjectRepository {
	return &BunProjectRepository{
		db:          db,
		repo:        storage.WrapWithCache(NewProjectRepository(db), cacheService, keySerializer),
		invalidator: storage.NewInvalidator(cacheService, projectNamespace),
	}
}

func (r *BunProjectRepository) List(ctx context.Context, opts ListOptions) ([]*Project, int, error) {
	filter := repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		if opts.Status != "" {
			q = q.Where("?TableAlias.status = ?", opts.Status)
		}
		if opts.FeaturedOnly {
			q = q.Where("?TableAlias.featured = ?", true)
		}
		return q.OrderExpr("?TableAlias.featured DESC, ?TableAlias.position ASC, ?TableAlias.created_at DESC")
	})
	var (
		records []*Project
		total   int
		err     error
	)
	if opts.Limit > 0 {
		records, total, err = r.repo.List(ctx, filter, repository.SelectPaginate(opts.Limit, opts.Offset))
	} else {
		records, total, err = r.repo.List(ctx, filter)
	}
	if err != nil {
		return nil, 0, storage.MapRepositoryError(err, "project", "")
	}
	out, err := r.attach(ctx, records)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *BunProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, storage.MapRepositoryError(err, "project", id.String())
	}
	out, err := r.attach(ctx, []*Project{record})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (r *BunProjectRepository) GetBySlug(ctx context.Context, slug string) (*Project, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "project", slug)
	}
	out, err := r.attach(ctx, []*Project{record})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (r *BunProjectRepository) Create(ctx context.Context, record *Project) (*Project, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, r.invalidator.Invalidate(ctx)
}

func (r *BunProjectRepository) Update(ctx context.Context, record *Project) (*Project, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(
			"slug",
			"status",
			"cover_url",
			"repo_url",
			"live_url",
			"technologies",
			"featured",
			"position",
			"updated_at",
		),
	)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "project", record.ID.String())
	}
	return updated, r.invalidator.Invalidate(ctx)
}

func (r *BunProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := storage.DeleteWithTranslations[Project, ProjectTranslation](ctx, r.db, "project", "project_id", id); err != nil {
		return err
	}
	return r.invalidator.Invalidate(ctx)
}

func (r *BunProjectRepository) ReplaceTranslations(ctx context.Context, projectID uuid.UUID, rows []*ProjectTranslation, now time.Time) error {
	if err := storage.ReplaceTranslations(ctx, r.db, "project_id", projectID, rows, now); err != nil {
		return err
	}
	return r.invalidator.Invalidate(ctx)
}

// attach copies records before loading translations so cached values are
// never mutated.
func (r *BunProjectRepository) attach(ctx context.Context, records []*Project) ([]*Project, error) {
	out := make([]*Project, 0, len(records))
	ids := make([]uuid.UUID, 0, len(records))
	byID := make(map[uuid.UUID]*Project, len(records))
	for _, record := range records {
		copied := *record
		copied.Translations = nil
		out = append(out, &copied)
		ids = append(ids, copied.ID)
		byID[copied.ID] = &copied
	}
	rows, err := storage.LoadTranslations[ProjectTranslation](ctx, r.db, "project_id", ids)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if parent, ok := byID[row.ProjectID]; ok {
			parent.Translations = append(parent.Translations, row)
		}
	}
	return out, nil
}
