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

type AdminHandler struct {
	admin ports.AdminService
}

func NewAdminHandler(admin ports.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role"     validate:"required"`
}

type updateUserRequest struct {
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

type changePasswordRequest struct {
	UserID string `json:"userId" validate:"required"`
	OldPwd string `json:"oldPwd" validate:"required"`
	NewPwd string `json:"newPwd" validate:"required,max=72"`
}

// userView is the public shape of a user; userId carries the username that
// every user-addressed endpoint takes.
type userView struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt,omitempty"`
}

func toUserView(u *domain.User) userView {
	return userView{ID: u.ID, UserID: u.Username, Username: u.Username, Role: u.Role, CreatedAt: u.CreatedAt}
}

type userResponse struct {
	Success bool     `json:"success"`
	User    userView `json:"user"`
}

type usersResponse struct {
	Success bool       `json:"success"`
	Users   []userView `json:"users"`
}

// CreateUser creates an account with a role.
//
// @Summary      Create user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "New user"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  envelope
// @Failure      403   {object}  envelope
// @Failure      409   {object}  envelope
// @Router       /api/admin/user [post]
func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.admin.CreateUser(c.Request().Context(), strings.TrimSpace(req.Username), req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, userResponse{Success: true, User: toUserView(user)})
}

// UpdateUser changes the password and/or role of a user.
//
// @Summary      Update user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Username"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  envelope
// @Failure      400   {object}  envelope
// @Failure      404   {object}  envelope
// @Router       /api/admin/user/{id} [put]
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
	}

	err := h.admin.UpdateUser(c.Request().Context(), c.Param("id"), ports.UpdateUserInput{
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okMessage("user updated"))
}

// DeleteUser removes a user. Deleting an unknown user succeeds.
//
// @Summary      Delete user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Username"
// @Success      200  {object}  envelope
// @Router       /api/admin/user/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrValidation)
	}
	if err := h.admin.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okMessage("user deleted"))
}

// ListUsers returns all users without credentials.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usersResponse
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.admin.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	return c.JSON(http.StatusOK, usersResponse{Success: true, Users: views})
}

// ChangePassword replaces a password after verifying the old one. Callers
// may change their own password; Admins may change anyone's.
//
// @Summary      Change password
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Old and new password"
// @Success      200   {object}  envelope
// @Failure      400   {object}  envelope
// @Failure      403   {object}  envelope
// @Router       /api/admin/change-password [post]
func (h *AdminHandler) ChangePassword(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	target := strings.TrimSpace(req.UserID)
	if target != p.Username && p.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	changed, err := h.admin.ChangePassword(c.Request().Context(), target, req.OldPwd, req.NewPwd)
	if err != nil {
		return err
	}
	if !changed {
		return c.JSON(http.StatusBadRequest, envelope{Success: false, Message: "password change failed"})
	}
	return c.JSON(http.StatusOK, okMessage("password changed"))
}
