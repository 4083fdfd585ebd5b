package users

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/storage"
)

type UserRepository interface {
	List(ctx context.Context) ([]*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
	// TouchLogin records a successful login without rewriting other columns.
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountActiveAdmins(ctx context.Context) (int, error)
}

func NewUserRepository(db *bun.DB) repository.Repository[*User] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			u.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
		GetIdentifierValue: func(u *User) string {
			return u.Email
		},
	})
}

type BunUserRepository struct {
	db   *bun.DB
	repo repository.Repository[*User]
}

func NewBunUserRepository(db *bun.DB) *BunUserRepository {
	return &BunUserRepository{db: db, repo: NewUserRepository(db)}
}

func (r *BunUserRepository) List(ctx context.Context) ([]*User, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.email ASC")
		}),
	)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "user", "")
	}
	return records, nil
}

func (r *BunUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, storage.MapRepositoryError(err, "user", id.String())
	}
	return record, nil
}

func (r *BunUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	record, err := r.repo.GetByIdentifier(ctx, email)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "user", email)
	}
	return record, nil
}

func (r *BunUserRepository) Create(ctx context.Context, user *User) (*User, error) {
	return r.repo.Create(ctx, user)
}

func (r *BunUserRepository) Update(ctx context.Context, user *User) (*User, error) {
	updated, err := r.repo.Update(ctx, user,
		repository.UpdateByID(user.ID.String()),
		repository.UpdateColumns("email", "name", "password_hash", "role", "status", "last_login_at", "password_changed_at", "updated_at"),
	)
	if err != nil {
		return nil, storage.MapRepositoryError(err, "user", user.ID.String())
	}
	return updated, nil
}

func (r *BunUserRepository) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.NewUpdate().
		Model((*User)(nil)).
		Set("last_login_at = ?", at).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return storage.MapRepositoryError(err, "user", id.String())
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NewNotFound("user", id.String())
	}
	return nil
}

func (r *BunUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &User{ID: id})
}

func (r *BunUserRepository) CountActiveAdmins(ctx context.Context) (int, error) {
	return r.db.NewSelect().
		Model((*User)(nil)).
		Where("role = ?", domain.RoleAdmin).
		Where("status = ?", domain.UserStatusActive).
		Count(ctx)
}

// MemoryUserRepository keeps users in memory.
type MemoryUserRepository struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*User
	emailIdx map[string]uuid.UUID
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:     make(map[uuid.UUID]*User),
		emailIdx: make(map[string]uuid.UUID),
	}
}

func (m *MemoryUserRepository) List(_ context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *MemoryUserRepository) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.NewNotFound("user", id.String())
	}
	return cloneUser(u), nil
}

func (m *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emailIdx[strings.ToLower(email)]
	if !ok {
		return nil, domain.NewNotFound("user", email)
	}
	return cloneUser(m.byID[id]), nil
}

func (m *MemoryUserRepository) Create(_ context.Context, user *User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := cloneUser(user)
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	m.byID[copied.ID] = copied
	m.emailIdx[strings.ToLower(copied.Email)] = copied.ID
	return cloneUser(copied), nil
}

func (m *MemoryUserRepository) Update(_ context.Context, user *User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[user.ID]
	if !ok {
		return nil, domain.NewNotFound("user", user.ID.String())
	}
	delete(m.emailIdx, strings.ToLower(existing.Email))
	copied := cloneUser(user)
	m.byID[copied.ID] = copied
	m.emailIdx[strings.ToLower(copied.Email)] = copied.ID
	return cloneUser(copied), nil
}

func (m *MemoryUserRepository) TouchLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[id]
	if !ok {
		return domain.NewNotFound("user", id.String())
	}
	stamped := at
	existing.LastLoginAt = &stamped
	existing.UpdatedAt = at
	return nil
}

func (m *MemoryUserRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.byID[id]
	if !ok {
		return domain.NewNotFound("user", id.String())
	}
	delete(m.emailIdx, strings.ToLower(existing.Email))
	delete(m.byID, id)
	return nil
}

func (m *MemoryUserRepository) CountActiveAdmins(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, u := range m.byID {
		if u.IsActiveAdmin() {
			count++
		}
	}
	return count, nil
}

func cloneUser(src *User) *User {
	if src == nil {
		return nil
	}
	copied := *src
	if src.LastLoginAt != nil {
		at := *src.LastLoginAt
		copied.LastLoginAt = &at
	}
	if src.PasswordChangedAt != nil {
		at := *src.PasswordChangedAt
		copied.PasswordChangedAt = &at
	}
	return &copied
}
