package ports

import (
	"context"
	"time"

	"github.com/partlens/recognition-api/internal/core/domain"
)

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*Session, error)
	GetRole(ctx context.Context, username string) (domain.Role, error)
}
