package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/auth-gateway/internal/domain"
)

var (
	// ErrUserNotFound is returned by Find for an unknown username.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned by Add when the username is already taken.
	ErrUserExists = errors.New("user already exists")
)

// UserRepository is the credential store, keyed by username. Implementations
// must be safe for concurrent use; Add must reject duplicates atomically.
type UserRepository interface {
	Exists(ctx context.Context, name string) (bool, error)
	Find(ctx context.Context, name string) (*domain.User, error)
	Add(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Exists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE name=$1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, name).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *userRepository) Find(ctx context.Context, name string) (*domain.User, error) {
	const query = `
        SELECT name, password_hash, role, created_at
        FROM users WHERE name=$1`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, name).Scan(
		&user.Name,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Add(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, password_hash, role)
        VALUES ($1, $2, $3)
        ON CONFLICT (name) DO NOTHING
        RETURNING created_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.PasswordHash,
		user.Role,
	).Scan(&user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserExists
	}
	return err
}

func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	const query = `
        SELECT name, password_hash, role, created_at
        FROM users ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.Name, &user.PasswordHash, &user.Role, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}
