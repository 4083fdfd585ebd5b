package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/domain"
)

// User is an admin console account.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID         `bun:",pk,type:uuid"           json:"id"`
	Email        string            `bun:"email,notnull"           json:"email"`
	Name         string            `bun:"name"                    json:"name"`
	PasswordHash string            `bun:"password_hash,notnull"   json:"-"`
	Role         domain.Role       `bun:"role,notnull"            json:"role"`
	Status       domain.UserStatus `bun:"status,notnull"          json:"status"`
	LastLoginAt  *time.Time        `bun:"last_login_at,nullzero"  json:"last_login_at,omitempty"`
	// PasswordChangedAt invalidates sessions issued before it.
	PasswordChangedAt *time.Time `bun:"password_changed_at,nullzero" json:"-"`
	CreatedAt         time.Time  `bun:"created_at,nullzero"     json:"created_at"`
	UpdatedAt         time.Time  `bun:"updated_at,nullzero"     json:"updated_at"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == domain.UserStatusActive
}

func (u *User) IsActiveAdmin() bool {
	return u.IsActive() && u.Role == domain.RoleAdmin
}

type CreateUserRequest struct {
	Email    string
	Name     string
	Password string
	Role     domain.Role
	Status   domain.UserStatus
}
