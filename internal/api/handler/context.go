package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/partlens/recognition-api/internal/api/middleware"
	"github.com/partlens/recognition-api/internal/core/domain"
)

// principal is the authenticated caller as injected by the Auth middleware.
type principal struct {
	Username string
	Role     domain.Role
}

// ctxPrincipal extracts the caller and fails fast when the Auth middleware
// did not run.
func ctxPrincipal(c echo.Context) (principal, error) {
	username, _ := c.Get(middleware.CtxUsername).(string)
	roleName, _ := c.Get(middleware.CtxRole).(string)
	role, ok := domain.ParseRole(roleName)
	if username == "" || !ok {
		return principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return principal{Username: username, Role: role}, nil
}

// envelope is the success wrapper shared by every response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func ok() envelope { return envelope{Success: true} }

func okMessage(msg string) envelope { return envelope{Success: true, Message: msg} }
