package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/partlens/recognition-api/internal/core/domain"
	"github.com/partlens/recognition-api/internal/core/ports"
)

// AdminService implements user account management.
type AdminService struct {
	repo ports.UserRepository
	log  zerolog.Logger
	cost int
}

func NewAdminService(repo ports.UserRepository, log zerolog.Logger) *AdminService {
	return &AdminService{repo: repo, log: log, cost: bcrypt.DefaultCost}
}

func (s *AdminService) CreateUser(ctx context.Context, username, password, role string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}
	r, ok := domain.ParseRole(role)
	if !ok {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         r,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", created.Username).Str("role", string(created.Role)).Msg("user created")
	created.PasswordHash = ""
	return created, nil
}

// EnsureAdmin creates an Admin account when username is not taken yet. Empty
// credentials skip seeding. It reports whether an account was created.
func (s *AdminService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		s.log.Info().Msg("admin seed skipped: credentials not configured")
		return false, nil
	}
	_, err := s.CreateUser(ctx, username, password, string(domain.RoleAdmin))
	switch {
	case errors.Is(err, domain.ErrUserExists):
		s.log.Info().Str("username", username).Msg("admin already exists")
		return false, nil
	case err != nil:
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}

// UpdateUser applies a partial update. With neither field set it does nothing.
func (s *AdminService) UpdateUser(ctx context.Context, username string, input ports.UpdateUserInput) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if input.Password == nil && input.Role == nil {
		return nil
	}

	var update ports.UserUpdate
	if input.Role != nil {
		r, ok := domain.ParseRole(*input.Role)
		if !ok {
			return fmt.Errorf("%w: unknown role %q", domain.ErrValidation, *input.Role)
		}
		update.Role = &r
	}
	if input.Password != nil {
		if *input.Password == "" {
			return fmt.Errorf("%w: password cannot be empty", domain.ErrValidation)
		}
		hash, err := s.hash(*input.Password)
		if err != nil {
			return err
		}
		update.PasswordHash = &hash
	}

	if err := s.repo.Update(ctx, username, update); err != nil {
		return err
	}

	s.log.Info().
		Str("username", username).
		Bool("password_changed", update.PasswordHash != nil).
		Bool("role_changed", update.Role != nil).
		Msg("user updated")
	return nil
}

// DeleteUser is idempotent: deleting an unknown user succeeds.
func (s *AdminService) DeleteUser(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if err := s.repo.Delete(ctx, username); err != nil {
		return err
	}
	s.log.Info().Str("username", username).Msg("user deleted")
	return nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		u.PasswordHash = ""
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// ChangePassword verifies the old password before storing the new one. An
// unknown identity and a wrong password both report false.
func (s *AdminService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) (bool, error) {
	if newPassword == "" {
		return false, fmt.Errorf("%w: new password is required", domain.ErrValidation)
	}

	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return false, nil
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return false, err
	}
	if err := s.repo.Update(ctx, user.Username, ports.UserUpdate{PasswordHash: &hash}); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}

	s.log.Info().Str("username", user.Username).Msg("password changed")
	return true, nil
}

func (s *AdminService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: password exceeds 72 bytes", domain.ErrValidation)
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
