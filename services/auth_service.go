package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/pickleball-tournament/models"
	"github.com/Dosada05/pickleball-tournament/repositories"
	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 10

// dummyHash сравнивается при неизвестном пользователе, чтобы время ответа
// не выдавало, существует ли учетная запись.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("pickleball-dummy-password"), BcryptCost)

type AuthService interface {
	Login(ctx context.Context, username, password string) (bool, error)
	Logout(ctx context.Context)
	Role() models.Role
}

// RoleKeeper хранит "липкую" роль клиента.
type RoleKeeper interface {
	Role() models.Role
	SetRole(ctx context.Context, role models.Role)
}

type authService struct {
	userRepo repositories.UserRepository
	roles    RoleKeeper
	logger   *slog.Logger
}

func NewAuthService(userRepo repositories.UserRepository, roles RoleKeeper, logger *slog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		roles:    roles,
		logger:   logger,
	}
}

// Login returns true when the credentials match; on success the role becomes admin.
// Unknown user and wrong password are indistinguishable to the caller.
func (s *authService) Login(ctx context.Context, username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return false, ErrCredentialsNeeded
	}

	hash := dummyHash
	user, err := s.userRepo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		hash = []byte(user.PasswordHash)
	case errors.Is(err, repositories.ErrUserNotFound):
	default:
		return false, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || user == nil {
		s.logger.InfoContext(ctx, "login failed")
		return false, nil
	}

	s.roles.SetRole(ctx, models.RoleAdmin)
	s.logger.InfoContext(ctx, "login successful", slog.String("username", username))
	return true, nil
}

func (s *authService) Logout(ctx context.Context) {
	s.roles.SetRole(ctx, models.RoleUser)
}

func (s *authService) Role() models.Role {
	return s.roles.Role()
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// EnsureUser создает учетную запись или обновляет пароль существующей.
func EnsureUser(ctx context.Context, repo repositories.UserRepository, username, passwordHash string) (created bool, err error) {
	username = strings.TrimSpace(username)
	if username == "" || passwordHash == "" {
		return false, ErrCredentialsNeeded
	}

	err = repo.Create(ctx, &models.User{Username: username, PasswordHash: passwordHash})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repositories.ErrUserUsernameConflict):
		if err := repo.UpdatePassword(ctx, username, passwordHash); err != nil {
			return false, fmt.Errorf("failed to update password: %w", err)
		}
		return false, nil
	default:
		return false, fmt.Errorf("failed to create user: %w", err)
	}
}
