package domain

import "strings"

// Status represents lifecycle states for portfolio entities
type Status string

const (
	// StatusDraft indicates content still under preparation
	StatusDraft Status = "draft"
	// StatusPublished identifies content available on the public site
	StatusPublished Status = "published"
	// StatusScheduled marks content that has a future publish time configured
	StatusScheduled Status = "scheduled"
	// StatusArchived marks content that is retained but not publicly visible
	StatusArchived Status = "archived"
)

// ParseStatus normalises the input, defaulting blank values to draft.
func ParseStatus(input string) Status {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return StatusDraft
	}
	return Status(trimmed)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusScheduled, StatusArchived:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// Role is the coarse authorization level attached to a user account.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// ParseRole normalises role input. Unknown roles are returned as-is so callers
// can reject them through IsValid.
func ParseRole(input string) Role {
	return Role(strings.ToLower(strings.TrimSpace(input)))
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// UserStatus tracks whether an account may sign in and run actions.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusPending   UserStatus = "pending"
	UserStatusSuspended UserStatus = "suspended"
)

func ParseUserStatus(input string) UserStatus {
	return UserStatus(strings.ToLower(strings.TrimSpace(input)))
}

func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusActive, UserStatusPending, UserStatusSuspended:
		return true
	}
	return false
}

func (s UserStatus) String() string { return string(s) }

// Direction is the text direction of a locale.
type Direction string

const (
	DirectionLTR Direction = "ltr"
	DirectionRTL Direction = "rtl"
)

func ParseDirection(input string) Direction {
	if strings.EqualFold(strings.TrimSpace(input), string(DirectionRTL)) {
		return DirectionRTL
	}
	return DirectionLTR
}
