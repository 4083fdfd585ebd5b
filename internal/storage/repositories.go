package storage

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/domain"
)

// MapRepositoryError converts go-repository-bun not-found failures into
// domain.NotFoundError and annotates everything else with the resource.
func MapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return domain.NewNotFound(resource, key)
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

// WrapWithCache decorates base with go-repository-cache when both services are set.
func WrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}

// CachePrefix returns the key prefix used when invalidating a namespace.
func CachePrefix(namespace string) string {
	if namespace == "" {
		return ""
	}
	return namespace + cache.KeySeparator
}

// Invalidator drops cached reads for a namespace after writes.
type Invalidator struct {
	service cache.CacheService
	prefix  string
}

// NewInvalidator returns an invalidator; a nil cache service makes it a no-op.
func NewInvalidator(service cache.CacheService, namespace string) Invalidator {
	if service == nil {
		return Invalidator{}
	}
	return Invalidator{service: service, prefix: CachePrefix(namespace)}
}

func (i Invalidator) Invalidate(ctx context.Context) error {
	if i.service == nil || i.prefix == "" {
		return nil
	}
	return i.service.DeleteByPrefix(ctx, i.prefix)
}

// Translation is implemented by per-locale rows owned by a parent record.
type Translation interface {
	Prepare(parentID uuid.UUID, now time.Time)
}

// ReplaceTranslations deletes every row of T owned by parentID and inserts rows.
func ReplaceTranslations[T any, PT interface {
	*T
	Translation
}](ctx context.Context, db bun.IDB, foreignKey string, parentID uuid.UUID, rows []PT, now time.Time) error {
	if db == nil {
		return fmt.Errorf("storage: database not configured")
	}
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*T)(nil)).
			Where("? = ?", bun.Ident(foreignKey), parentID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete translations: %w", err)
		}

		toInsert := make([]PT, 0, len(rows))
		for _, row := range rows {
			if row == nil {
				continue
			}
			row.Prepare(parentID, now)
			toInsert = append(toInsert, row)
		}
		if len(toInsert) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&toInsert).Exec(ctx); err != nil {
			return fmt.Errorf("insert translations: %w", err)
		}
		return nil
	})
}

// DeleteWithTranslations removes the parent row and its translation rows.
func DeleteWithTranslations[P any, T any](ctx context.Context, db bun.IDB, resource, foreignKey string, id uuid.UUID) error {
	if db == nil {
		return fmt.Errorf("storage: database not configured")
	}
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*T)(nil)).
			Where("? = ?", bun.Ident(foreignKey), id).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete %s translations: %w", resource, err)
		}
		result, err := tx.NewDelete().
			Model((*P)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete %s: %w", resource, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("%s delete rows affected: %w", resource, err)
		}
		if affected == 0 {
			return domain.NewNotFound(resource, id.String())
		}
		return nil
	})
}

// LoadTranslations selects the T rows owned by parentIDs ordered by locale.
func LoadTranslations[T any](ctx context.Context, db bun.IDB, foreignKey string, parentIDs []uuid.UUID) ([]*T, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	if db == nil {
		return nil, fmt.Errorf("storage: database not configured")
	}
	keys := make([]string, 0, len(parentIDs))
	for _, id := range parentIDs {
		keys = append(keys, id.String())
	}
	var rows []*T
	if err := db.NewSelect().
		Model(&rows).
		Where("? IN (?)", bun.Ident(foreignKey), bun.In(keys)).
		OrderExpr("locale ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}
	return rows, nil
}
