package ports

import (
	"context"

	"github.com/partlens/recognition-api/internal/core/domain"
)

// UpdateUserInput is a partial update; nil fields are left untouched.
type UpdateUserInput struct {
	Password *string
	Role     *string
}

// AdminService manages user accounts.
type AdminService interface {
	CreateUser(ctx context.Context, username, password, role string) (*domain.User, error)
	UpdateUser(ctx context.Context, username string, input UpdateUserInput) error
	DeleteUser(ctx context.Context, username string) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
	// ChangePassword returns false without an error when the identity is
	// unknown or the old password does not match.
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) (bool, error)
}
