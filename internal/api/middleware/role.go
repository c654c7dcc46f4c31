package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/partlens/recognition-api/internal/core/domain"
)

// RoleResolver returns the role currently stored for a username.
type RoleResolver interface {
	GetRole(ctx context.Context, username string) (domain.Role, error)
}

// FreshRole replaces the role claim set by Auth with the stored role. A token
// whose user no longer exists is rejected with 401. Mount it ahead of RBAC on
// privileged routes.
func FreshRole(roles RoleResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, _ := c.Get(CtxUsername).(string)
			role, err := roles.GetRole(c.Request().Context(), username)
			switch {
			case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrValidation):
				return echo.NewHTTPError(http.StatusUnauthorized, "account no longer exists")
			case err != nil:
				return fmt.Errorf("resolve role for %q: %w", username, err)
			}

			c.Set(CtxRole, string(role))
			return next(c)
		}
	}
}
