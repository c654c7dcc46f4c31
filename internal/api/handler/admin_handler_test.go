package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/partlens/recognition-api/internal/core/domain"
	"github.com/partlens/recognition-api/internal/core/ports"
)

type stubAdminService struct {
	createFn   func(ctx context.Context, username, password, role string) (*domain.User, error)
	updateFn   func(ctx context.Context, username string, input ports.UpdateUserInput) error
	deleteFn   func(ctx context.Context, username string) error
	listFn     func(ctx context.Context) ([]*domain.User, error)
	changePwFn func(ctx context.Context, username, oldPassword, newPassword string) (bool, error)
}

func (s *stubAdminService) CreateUser(ctx context.Context, username, password, role string) (*domain.User, error) {
	return s.createFn(ctx, username, password, role)
}

func (s *stubAdminService) UpdateUser(ctx context.Context, username string, input ports.UpdateUserInput) error {
	return s.updateFn(ctx, username, input)
}

func (s *stubAdminService) DeleteUser(ctx context.Context, username string) error {
	return s.deleteFn(ctx, username)
}

func (s *stubAdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubAdminService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) (bool, error) {
	return s.changePwFn(ctx, username, oldPassword, newPassword)
}

func TestAdminHandler_CreateUser_Success(t *testing.T) {
	stub := &stubAdminService{
		createFn: func(ctx context.Context, username, password, role string) (*domain.User, error) {
			if username != "alice" || password != "pw1" || role != "User" {
				t.Fatalf("unexpected args: %s %s %s", username, password, role)
			}
			return &domain.User{ID: "u1", Username: username, Role: domain.RoleUser, CreatedAt: time.Now()}, nil
		},
	}

	c, rec := jsonContext(newEcho(), http.MethodPost, "/api/admin/user", `{"username":"alice","password":"pw1","role":"User"}`)
	if err := NewAdminHandler(stub).CreateUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	user, ok := decodeBody(t, rec)["user"].(map[string]any)
	if !ok {
		t.Fatalf("missing user in response")
	}
	if user["userId"] != "alice" || user["id"] != "u1" || user["role"] != "User" {
		t.Fatalf("unexpected user: %v", user)
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
}

func TestAdminHandler_CreateUser_Errors(t *testing.T) {
	stub := &stubAdminService{
		createFn: func(ctx context.Context, username, password, role string) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAdminHandler(stub)

	c, _ := jsonContext(newEcho(), http.MethodPost, "/api/admin/user", `{"username":"alice","role":"User"}`)
	if err := handler.CreateUser(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	c, _ = jsonContext(newEcho(), http.MethodPost, "/api/admin/user", `{"username":"alice","password":"pw","role":"User"}`)
	if err := handler.CreateUser(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAdminHandler_UpdateUser_PassesOnlySuppliedFields(t *testing.T) {
	var got ports.UpdateUserInput
	var gotUser string
	stub := &stubAdminService{
		updateFn: func(ctx context.Context, username string, input ports.UpdateUserInput) error {
			gotUser, got = username, input
			return nil
		},
	}

	c, rec := jsonContext(newEcho(), http.MethodPut, "/api/admin/user/dave", `{"role":"Moderator"}`)
	c.SetParamNames("id")
	c.SetParamValues("dave")
	if err := NewAdminHandler(stub).UpdateUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUser != "dave" || got.Password != nil || got.Role == nil || *got.Role != "Moderator" {
		t.Fatalf("unexpected update: %s %+v", gotUser, got)
	}
}

func TestAdminHandler_UpdateUser_NotFound(t *testing.T) {
	stub := &stubAdminService{
		updateFn: func(ctx context.Context, username string, input ports.UpdateUserInput) error {
			return domain.ErrUserNotFound
		},
	}

	c, _ := jsonContext(newEcho(), http.MethodPut, "/api/admin/user/ghost", `{"password":"x"}`)
	c.SetParamNames("id")
	c.SetParamValues("ghost")
	if err := NewAdminHandler(stub).UpdateUser(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAdminHandler_DeleteUser(t *testing.T) {
	deleted := ""
	stub := &stubAdminService{
		deleteFn: func(ctx context.Context, username string) error {
			deleted = username
			return nil
		},
	}

	c, rec := jsonContext(newEcho(), http.MethodDelete, "/api/admin/user/frank", "")
	c.SetParamNames("id")
	c.SetParamValues("frank")
	if err := NewAdminHandler(stub).DeleteUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK || deleted != "frank" {
		t.Fatalf("unexpected result: %d %q", rec.Code, deleted)
	}
}

func TestAdminHandler_ListUsers(t *testing.T) {
	stub := &stubAdminService{
		listFn: func(ctx context.Context) ([]*domain.User, error) {
			return []*domain.User{
				{ID: "1", Username: "adam", Role: domain.RoleAdmin},
				{ID: "2", Username: "zoe", Role: domain.RoleUser},
			}, nil
		},
	}

	c, rec := jsonContext(newEcho(), http.MethodGet, "/api/admin/users", "")
	if err := NewAdminHandler(stub).ListUsers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	users, ok := decodeBody(t, rec)["users"].([]any)
	if !ok || len(users) != 2 {
		t.Fatalf("expected 2 users, got %v", rec.Body.String())
	}
	if first := users[0].(map[string]any); first["username"] != "adam" {
		t.Fatalf("unexpected order: %v", users)
	}
}

func TestAdminHandler_ChangePassword(t *testing.T) {
	stub := &stubAdminService{
		changePwFn: func(ctx context.Context, username, oldPassword, newPassword string) (bool, error) {
			return oldPassword == "old", nil
		},
	}
	handler := NewAdminHandler(stub)

	tests := []struct {
		name     string
		caller   string
		role     domain.Role
		body     string
		wantErr  error
		wantCode int
	}{
		{name: "self", caller: "gina", role: domain.RoleUser, body: `{"userId":"gina","oldPwd":"old","newPwd":"new"}`, wantCode: http.StatusOK},
		{name: "wrong old password", caller: "gina", role: domain.RoleUser, body: `{"userId":"gina","oldPwd":"bad","newPwd":"new"}`, wantCode: http.StatusBadRequest},
		{name: "other as user", caller: "gina", role: domain.RoleUser, body: `{"userId":"hank","oldPwd":"old","newPwd":"new"}`, wantErr: domain.ErrForbidden},
		{name: "other as admin", caller: "root", role: domain.RoleAdmin, body: `{"userId":"hank","oldPwd":"old","newPwd":"new"}`, wantCode: http.StatusOK},
		{name: "missing new password", caller: "gina", role: domain.RoleUser, body: `{"userId":"gina","oldPwd":"old"}`, wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := jsonContext(newEcho(), http.MethodPost, "/api/admin/change-password", tt.body)
			authenticate(c, tt.caller, tt.role)

			err := handler.ChangePassword(c)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if want := tt.wantCode == http.StatusOK; decodeBody(t, rec)["success"] != want {
				t.Fatalf("expected success=%v, got %s", want, rec.Body.String())
			}
		})
	}
}
