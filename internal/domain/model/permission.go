package model

import (
	"time"
)

// AccessLevel is what a user may do inside a category. A missing grant row
// means LevelNone: access is denied by default, never assumed.
type AccessLevel int

const (
	LevelNone AccessLevel = iota
	LevelRead
	LevelWrite
)

// AccessAction is the kind of operation being attempted on a category.
type AccessAction int

const (
	ActionRead AccessAction = iota
	ActionWrite
)

// PermissionGrant links a user to a category. WriteAccess false means the
// grant is read-only.
type PermissionGrant struct {
	UserID      string    `json:"user_id"`
	CategoryID  string    `json:"category_id"`
	WriteAccess bool      `json:"write_access"`
	GrantedAt   time.Time `json:"granted_at"`
}

func (g *PermissionGrant) Level() AccessLevel {
	if g == nil {
		return LevelNone
	}
	if g.WriteAccess {
		return LevelWrite
	}
	return LevelRead
}

// PrivilegedUser is a grant joined with the user it belongs to.
type PrivilegedUser struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	WriteAccess bool   `json:"write_access"`
}
