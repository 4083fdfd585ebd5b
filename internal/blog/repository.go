package blog

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/storage"
)

const postNamespace = "post"

// likeEscaper neutralises LIKE wildcards; queries pair it with ESCAPE '!'.
var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

// PostRepository persists posts and their translations.
type PostRepository interface {
	List(ctx context.Context, opts ListOptions) ([]*Post, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	Create(ctx context.Context, record *Post) (*Post, error)
	Update(ctx context.Context, record *Post) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceTranslations(ctx context.Context, postID uuid.UUID, rows []*PostTranslation, now time.Time) error
	// PublishDue flips scheduled posts with publish_at <= now to published and
	// returns their ids.
	PublishDue(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

func NewPostRepository(db *bun.DB) repository.Repository[*Post] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post { return &Post{} },
		GetID: func(p *Post) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(p *Post) string {
			return p.Slug
		},
	})
}

// BunPostRepository reads through go-repository-cache when configured.
type BunPostRepository struct {
	db          *bun.DB
	repo        repository.Repository[*Post]
	invalidator storage.Invalidator
}

func NewBunPostRepository(db *bun.DB) *BunPostRepository {
	return NewBunPostRepositoryWithCache(db, nil, nil)
}

func NewBunPostRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunPostRepository {
	return &BunPostRepository{
		db:          db,
		repo:        storage.WrapWithCache(NewPostRepository(db), cacheService, keySerializer),
		invalidator: storage.NewInvalidator(cacheService, postNamespace),
	}
}

func (r *BunPostRepository) List(ctx context.Context, opts ListOptions) ([]*Post, int, error) {
	tag := likeEscaper.Replace(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(opts.Tag)), `"`, ""))
	filter := repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		if opts.Status != "" {
			q = q.Where("?TableAlias.status = ?", opts.Status)
		}
		if tag != "" {
			q = q.Where("?TableAlias.tags LIKE ? ESCAPE '!'", `%"`+tag+`"%`)
		}
		return q.OrderExpr("COALESCE(?TableAlias.published_at, ?TableAlias.publish_at, ?TableAlias.created_at) DESC, ?TableAlias.slug ASC")
	})
	var (
		records []*Post
		total   int
		err     error
	)
	if opts.Limit > 0 {
		records, total, err = r.repo.List(ctx, filter, repository.SelectPaginate(opts.Limit, opts.Offset))
	} else {
		records, total, err = r.repo.List(ctx, filter)
	}
	if err != nil {
		return nil, 0, storage.MapRepositoryError(err, "post", "")
	}
	out, err := r.attach(ctx, records)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *BunPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, storage.MapRepositoryError(err, "post", id.String())
	}
	out, err := r.attach(ctx, []*Post{record})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (r *BunPostRepository) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	record, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "post", slug)
	}
	out, err := r.attach(ctx, []*Post{record})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (r *BunPostRepository) Create(ctx context.Context, record *Post) (*Post, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, r.invalidator.Invalidate(ctx)
}

func (r *BunPostRepository) Update(ctx context.Context, record *Post) (*Post, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(
			"slug",
			"status",
			"publish_at",
			"published_at",
			"cover_url",
			"tags",
			"reading_minutes",
			"author_id",
			"updated_at",
		),
	)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "post", record.ID.String())
	}
	return updated, r.invalidator.Invalidate(ctx)
}

func (r *BunPostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := storage.DeleteWithTranslations[Post, PostTranslation](ctx, r.db, "post", "post_id", id); err != nil {
		return err
	}
	return r.invalidator.Invalidate(ctx)
}

func (r *BunPostRepository) ReplaceTranslations(ctx context.Context, postID uuid.UUID, rows []*PostTranslation, now time.Time) error {
	if err := storage.ReplaceTranslations(ctx, r.db, "post_id", postID, rows, now); err != nil {
		return err
	}
	return r.invalidator.Invalidate(ctx)
}

func (r *BunPostRepository) PublishDue(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	var ids []string
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().
			Model((*Post)(nil)).
			Column("id").
			Where("status = ?", domain.StatusScheduled).
			Where("publish_at IS NOT NULL").
			Where("publish_at <= ?", now).
			Scan(ctx, &ids); err != nil {
			return fmt.Errorf("select due posts: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}
		if _, err := tx.NewUpdate().
			Model((*Post)(nil)).
			Set("status = ?", domain.StatusPublished).
			Set("published_at = publish_at").
			Set("updated_at = ?", now).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx); err != nil {
			return fmt.Errorf("publish due posts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	published := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("publish due posts: %w", err)
		}
		published = append(published, id)
	}
	if len(published) > 0 {
		if err := r.invalidator.Invalidate(ctx); err != nil {
			return published, err
		}
	}
	return published, nil
}

func (r *BunPostRepository) attach(ctx context.Context, records []*Post) ([]*Post, error) {
	out := make([]*Post, 0, len(records))
	ids := make([]uuid.UUID, 0, len(records))
	byID := make(map[uuid.UUID]*Post, len(records))
	for _, record := range records {
		copied := *record
		copied.Translations = nil
		out = append(out, &copied)
		ids = append(ids, copied.ID)
		byID[copied.ID] = &copied
	}
	rows, err := storage.LoadTranslations[PostTranslation](ctx, r.db, "post_id", ids)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if parent, ok := byID[row.PostID]; ok {
			parent.Translations = append(parent.Translations, row)
		}
	}
	return out, nil
}
