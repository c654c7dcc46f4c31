package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/partlens/recognition-api/internal/core/domain"
	"github.com/partlens/recognition-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// loginRequest accepts the identity as either username or userId.
type loginRequest struct {
	Username string `json:"username" validate:"required_without=UserID"`
	UserID   string `json:"userId"   validate:"required_without=Username"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success   bool        `json:"success"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	UserID    string      `json:"userId"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
}

type permissionsResponse struct {
	Success bool        `json:"success"`
	UserID  string      `json:"userId"`
	Role    domain.Role `json:"role"`
}

// Login authenticates a user and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  envelope
// @Failure      401   {object}  envelope
// @Failure      429   {object}  envelope
// @Router       /api/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = strings.TrimSpace(req.UserID)
	}

	session, err := h.authService.Login(c.Request().Context(), username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{
		Success:   true,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		UserID:    session.User.Username,
		Username:  session.User.Username,
		Role:      session.User.Role,
	})
}

// Permissions returns the role of a user. Callers may look up themselves;
// Admins may look up anyone.
//
// @Summary      Get a user's role
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Param        userId  query     string  false  "Username (defaults to the caller)"
// @Success      200     {object}  permissionsResponse
// @Failure      403     {object}  envelope
// @Failure      404     {object}  envelope
// @Router       /api/permissions [get]
func (h *AuthHandler) Permissions(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	username := strings.TrimSpace(c.QueryParam("userId"))
	if username == "" {
		username = p.Username
	}
	if username != p.Username && p.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	role, err := h.authService.GetRole(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, permissionsResponse{Success: true, UserID: username, Role: role})
}
