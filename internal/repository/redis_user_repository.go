package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/auth-gateway/internal/domain"
)

// redisUserRecord is the JSON value stored per username in the users hash.
type redisUserRecord struct {
	PasswordHash string      `json:"password_hash"`
	Role         domain.Role `json:"role"`
	CreatedAt    time.Time   `json:"created_at"`
}

type redisUserRepository struct {
	client *redis.Client
	key    string
}

// NewRedisUserRepository stores all users as fields of a single hash at key.
func NewRedisUserRepository(client *redis.Client, key string) UserRepository {
	return &redisUserRepository{client: client, key: key}
}

func (r *redisUserRepository) Exists(ctx context.Context, name string) (bool, error) {
	return r.client.HExists(ctx, r.key, name).Result()
}

func (r *redisUserRepository) Find(ctx context.Context, name string) (*domain.User, error) {
	raw, err := r.client.HGet(ctx, r.key, name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return decodeRedisUser(name, raw)
}

func (r *redisUserRepository) Add(ctx context.Context, user *domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(redisUserRecord{
		PasswordHash: user.PasswordHash,
		Role:         user.Role,
		CreatedAt:    user.CreatedAt,
	})
	if err != nil {
		return err
	}

	added, err := r.client.HSetNX(ctx, r.key, user.Name, payload).Result()
	if err != nil {
		return err
	}
	if !added {
		return ErrUserExists
	}
	return nil
}

func (r *redisUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	all, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(all))
	for name, raw := range all {
		user, err := decodeRedisUser(name, raw)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b *domain.User) int {
		return strings.Compare(a.Name, b.Name)
	})
	return users, nil
}

func decodeRedisUser(name, raw string) (*domain.User, error) {
	var rec redisUserRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode user %q: %w", name, err)
	}
	return &domain.User{
		Name:         name,
		PasswordHash: rec.PasswordHash,
		Role:         rec.Role,
		CreatedAt:    rec.CreatedAt,
	}, nil
}
