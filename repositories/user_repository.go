package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Dosada05/pickleball-tournament/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserUsernameConflict = errors.New("username is already taken")
)

// UserRepository - хранилище учетных данных администраторов.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdatePassword(ctx context.Context, username string, passwordHash string) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, user.Username, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pqErrorCode(err) == pqUniqueViolation {
			return ErrUserUsernameConflict
		}
		return fmt.Errorf("failed to create user %q: %w", user.Username, err)
	}
	return nil
}

func (r *postgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`

	var user models.User
	err := r.db.QueryRowContext(ctx, query, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return &user, nil
}

func (r *postgresUserRepository) UpdatePassword(ctx context.Context, username string, passwordHash string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE username = $2`, passwordHash, username)
	if err != nil {
		return fmt.Errorf("failed to update password for %q: %w", username, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}

type memoryUserRepository struct {
	mu     sync.RWMutex
	users  map[string]models.User
	nextID int
}

// NewMemoryUserRepository returns a repository preloaded with users.
func NewMemoryUserRepository(users ...models.User) UserRepository {
	r := &memoryUserRepository{users: make(map[string]models.User, len(users))}
	for _, u := range users {
		r.nextID++
		u.ID = r.nextID
		r.users[u.Username] = u
	}
	return r
}

func (r *memoryUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return ErrUserUsernameConflict
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.users[user.Username] = *user
	return nil
}

func (r *memoryUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (r *memoryUserRepository) UpdatePassword(ctx context.Context, username string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	r.users[username] = user
	return nil
}
