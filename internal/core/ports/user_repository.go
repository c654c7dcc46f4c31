package ports

import (
	"context"

	"github.com/partlens/recognition-api/internal/core/domain"
)

// UserUpdate carries the fields of a partial user update. Nil means unchanged.
type UserUpdate struct {
	PasswordHash *string
	Role         *domain.Role
}

// UserRepository defines credential persistence. Username uniqueness is
// enforced by the store, which reports conflicts as domain.ErrUserExists.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, username string, update UserUpdate) error
	// Delete removes the user; a missing user is not an error.
	Delete(ctx context.Context, username string) error
	List(ctx context.Context) ([]*domain.User, error)
}
