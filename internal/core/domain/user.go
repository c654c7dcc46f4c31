package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is the authorization level attached to a user.
type Role string

const (
	RoleUser      Role = "User"
	RoleModerator Role = "Moderator"
	RoleAdmin     Role = "Admin"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrForbidden          = errors.New("access forbidden")
)

// ParseRole resolves a role name case-insensitively. Only the closed set
// User, Moderator and Admin is accepted.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, true
	case "moderator":
		return RoleModerator, true
	case "admin":
		return RoleAdmin, true
	default:
		return "", false
	}
}

// Roles lists every role in ascending order of privilege.
func Roles() []Role {
	return []Role{RoleUser, RoleModerator, RoleAdmin}
}

// CanReview reports whether the role may review submitted feedback.
func (r Role) CanReview() bool {
	return r == RoleAdmin || r == RoleModerator
}

// ReviewerRoles returns the roles allowed into the feedback review queue.
func ReviewerRoles() []Role {
	var out []Role
	for _, r := range Roles() {
		if r.CanReview() {
			out = append(out, r)
		}
	}
	return out
}

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
