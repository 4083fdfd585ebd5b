package audit

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/storage"
)

type EntryRepository interface {
	Create(ctx context.Context, entry *Entry) (*Entry, error)
	List(ctx context.Context, filter Filter) ([]*Entry, int, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
}

func NewEntryRepository(db *bun.DB) repository.Repository[*Entry] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Entry]{
		NewRecord: func() *Entry { return &Entry{} },
		GetID: func(e *Entry) uuid.UUID {
			return e.ID
		},
		SetID: func(e *Entry, id uuid.UUID) {
			e.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(e *Entry) string {
			return e.ID.String()
		},
	})
}

type BunEntryRepository struct {
	db   *bun.DB
	repo repository.Repository[*Entry]
}

func NewBunEntryRepository(db *bun.DB) *BunEntryRepository {
	return &BunEntryRepository{db: db, repo: NewEntryRepository(db)}
}

func (r *BunEntryRepository) Create(ctx context.Context, entry *Entry) (*Entry, error) {
	return r.repo.Create(ctx, entry)
}

func (r *BunEntryRepository) List(ctx context.Context, filter Filter) ([]*Entry, int, error) {
	records, total, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if filter.ActorID != nil {
				q = q.Where("?TableAlias.actor_id = ?", filter.ActorID.String())
			}
			if filter.Action != "" {
				q = q.Where("?TableAlias.action = ?", filter.Action)
			}
			if filter.Resource != "" {
				q = q.Where("?TableAlias.resource = ?", filter.Resource)
			}
			if filter.Outcome != "" {
				q = q.Where("?TableAlias.outcome = ?", filter.Outcome)
			}
			if filter.Since != nil {
				q = q.Where("?TableAlias.created_at >= ?", filter.Since.UTC())
			}
			return q.OrderExpr("?TableAlias.created_at DESC, ?TableAlias.id ASC")
		}),
		repository.SelectPaginate(filter.Limit, filter.Offset),
	)
	if err != nil {
		return nil, 0, storage.MapRepositoryError(err, "audit entry", "")
	}
	return records, total, nil
}

func (r *BunEntryRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.db.NewDelete().
		Model((*Entry)(nil)).
		Where("created_at < ?", cutoff.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	return int(affected), err
}

// MemoryEntryRepository keeps entries in memory.
type MemoryEntryRepository struct {
	mu      sync.RWMutex
	entries []*Entry
}

func NewMemoryEntryRepository() *MemoryEntryRepository {
	return &MemoryEntryRepository{}
}

func (m *MemoryEntryRepository) Create(_ context.Context, entry *Entry) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := cloneEntry(entry)
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	m.entries = append(m.entries, copied)
	return cloneEntry(copied), nil
}

func (m *MemoryEntryRepository) List(_ context.Context, filter Filter) ([]*Entry, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matched := make([]*Entry, 0, len(m.entries))
	for _, entry := range m.entries {
		if filter.matches(entry) {
			matched = append(matched, cloneEntry(entry))
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	start := min(max(filter.Offset, 0), total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return matched[start:end], total, nil
}

func (m *MemoryEntryRepository) DeleteBefore(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	removed := 0
	for _, entry := range m.entries {
		if entry.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	m.entries = kept
	return removed, nil
}

func (f Filter) matches(entry *Entry) bool {
	if f.ActorID != nil && (entry.ActorID == nil || *entry.ActorID != *f.ActorID) {
		return false
	}
	if f.Action != "" && entry.Action != f.Action {
		return false
	}
	if f.Resource != "" && entry.Resource != f.Resource {
		return false
	}
	if f.Outcome != "" && entry.Outcome != f.Outcome {
		return false
	}
	if f.Since != nil && entry.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}

func cloneEntry(src *Entry) *Entry {
	copied := *src
	if src.ActorID != nil {
		id := *src.ActorID
		copied.ActorID = &id
	}
	copied.Metadata = maps.Clone(src.Metadata)
	return &copied
}
