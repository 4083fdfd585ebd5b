package locales

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/storage"
)

const localeNamespace = "locale"

// LocaleRepository persists locales.
type LocaleRepository interface {
	List(ctx context.Context) ([]*Locale, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Locale, error)
	GetByCode(ctx context.Context, code string) (*Locale, error)
	Create(ctx context.Context, locale *Locale) (*Locale, error)
	Update(ctx context.Context, locale *Locale) (*Locale, error)
	// SetDefault marks id as the only default locale.
	SetDefault(ctx context.Context, id uuid.UUID, now time.Time) error
}

// NewLocaleRepository builds the go-repository-bun repository for locales.
func NewLocaleRepository(db *bun.DB) repository.Repository[*Locale] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Locale]{
		NewRecord: func() *Locale { return &Locale{} },
		GetID: func(l *Locale) uuid.UUID {
			return l.ID
		},
		SetID: func(l *Locale, id uuid.UUID) {
			l.ID = id
		},
		GetIdentifier: func() string {
			return "code"
		},
		GetIdentifierValue: func(l *Locale) string {
			return l.Code
		},
	})
}

// BunLocaleRepository implements LocaleRepository with optional caching.
type BunLocaleRepository struct {
	db          *bun.DB
	repo        repository.Repository[*Locale]
	invalidator storage.Invalidator
}

func NewBunLocaleRepository(db *bun.DB) *BunLocaleRepository {
	return NewBunLocaleRepositoryWithCache(db, nil, nil)
}

// NewBunLocaleRepositoryWithCache constructs a LocaleRepository with optional caching.
func NewBunLocaleRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunLocaleRepository {
	return &BunLocaleRepository{
		db:          db,
		repo:        storage.WrapWithCache(NewLocaleRepository(db), cacheService, keySerializer),
		invalidator: storage.NewInvalidator(cacheService, localeNamespace),
	}
}

func (r *BunLocaleRepository) List(ctx context.Context) ([]*Locale, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.position ASC, ?TableAlias.code ASC")
		}),
	)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "locale", "")
	}
	return records, nil
}

func (r *BunLocaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*Locale, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, storage.MapRepositoryError(err, "locale", id.String())
	}
	return record, nil
}

func (r *BunLocaleRepository) GetByCode(ctx context.Context, code string) (*Locale, error) {
	record, err := r.repo.GetByIdentifier(ctx, code)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "locale", code)
	}
	return record, nil
}

func (r *BunLocaleRepository) Create(ctx context.Context, locale *Locale) (*Locale, error) {
	record, err := r.repo.Create(ctx, locale)
	if err != nil {
		return nil, err
	}
	return record, r.invalidator.Invalidate(ctx)
}

func (r *BunLocaleRepository) Update(ctx context.Context, locale *Locale) (*Locale, error) {
	record, err := r.repo.Update(ctx, locale,
		repository.UpdateByID(locale.ID.String()),
		repository.UpdateColumns(
			"code",
			"name",
			"native_name",
			"direction",
			"is_default",
			"is_active",
			"position",
			"updated_at",
		),
	)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "locale", locale.ID.String())
	}
	return record, r.invalidator.Invalidate(ctx)
}

func (r *BunLocaleRepository) SetDefault(ctx context.Context, id uuid.UUID, now time.Time) error {
	if r.db == nil {
		return fmt.Errorf("locale repository: database not configured")
	}
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().
			Model((*Locale)(nil)).
			Set("is_default = ?", false).
			Set("updated_at = ?", now).
			Where("is_default = ?", true).
			Where("id <> ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("clear default locale: %w", err)
		}
		result, err := tx.NewUpdate().
			Model((*Locale)(nil)).
			Set("is_default = ?", true).
			Set("updated_at = ?", now).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("set default locale: %w", err)
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			return domain.NewNotFound("locale", id.String())
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.invalidator.Invalidate(ctx)
}

// MemoryLocaleRepository stores locales in memory.
type MemoryLocaleRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*Locale
	codeIdx map[string]uuid.UUID
}

func NewMemoryLocaleRepository() *MemoryLocaleRepository {
	return &MemoryLocaleRepository{
		byID:    make(map[uuid.UUID]*Locale),
		codeIdx: make(map[string]uuid.UUID),
	}
}

func (m *MemoryLocaleRepository) List(_ context.Context) ([]*Locale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Locale, 0, len(m.byID))
	for _, l := range m.byID {
		out = append(out, cloneLocale(l))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Code < out[j].Code
	})
	return out, nil
}

func (m *MemoryLocaleRepository) GetByID(_ context.Context, id uuid.UUID) (*Locale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.byID[id]
	if !ok {
		return nil, domain.NewNotFound("locale", id.String())
	}
	return cloneLocale(l), nil
}

func (m *MemoryLocaleRepository) GetByCode(_ context.Context, code string) (*Locale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.codeIdx[strings.ToLower(code)]
	if !ok {
		return nil, domain.NewNotFound("locale", code)
	}
	return cloneLocale(m.byID[id]), nil
}

func (m *MemoryLocaleRepository) Create(_ context.Context, locale *Locale) (*Locale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := cloneLocale(locale)
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	m.byID[copied.ID] = copied
	m.codeIdx[strings.ToLower(copied.Code)] = copied.ID
	return cloneLocale(copied), nil
}

func (m *MemoryLocaleRepository) Update(_ context.Context, locale *Locale) (*Locale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[locale.ID]
	if !ok {
		return nil, domain.NewNotFound("locale", locale.ID.String())
	}
	delete(m.codeIdx, strings.ToLower(existing.Code))
	copied := cloneLocale(locale)
	m.byID[copied.ID] = copied
	m.codeIdx[strings.ToLower(copied.Code)] = copied.ID
	return cloneLocale(copied), nil
}

func (m *MemoryLocaleRepository) SetDefault(_ context.Context, id uuid.UUID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.NewNotFound("locale", id.String())
	}
	for key, l := range m.byID {
		want := key == id
		if l.IsDefault != want {
			l.IsDefault = want
			l.UpdatedAt = now
		}
	}
	return nil
}

func cloneLocale(src *Locale) *Locale {
	if src == nil {
		return nil
	}
	copied := *src
	return &copied
}
