package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-gateway/internal/domain"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	exists, err := repo.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Find(ctx, "alice")
	assert.ErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, repo.Add(ctx, &domain.User{Name: "alice", PasswordHash: "h1", Role: domain.RoleUser}))

	exists, err = repo.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Add(ctx, &domain.User{Name: "alice", PasswordHash: "h2", Role: domain.RoleAdmin})
	assert.ErrorIs(t, err, ErrUserExists)

	user, err := repo.Find(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, "h1", user.PasswordHash)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestMemoryUserRepositoryFindReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	require.NoError(t, repo.Add(ctx, &domain.User{Name: "bob", Role: domain.RoleUser}))

	user, err := repo.Find(ctx, "bob")
	require.NoError(t, err)
	user.Role = domain.RoleAdmin

	again, err := repo.Find(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, again.Role)
}

func TestMemoryUserRepositoryListSorted(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	for _, name := range []string{"carol", "alice", "bob"} {
		require.NoError(t, repo.Add(ctx, &domain.User{Name: name, Role: domain.RoleUser}))
	}

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice", users[0].Name)
	assert.Equal(t, "bob", users[1].Name)
	assert.Equal(t, "carol", users[2].Name)
}

func TestMemoryUserRepositoryConcurrentAdd(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	var wg sync.WaitGroup
	var created atomic.Int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Add(ctx, &domain.User{Name: "dup", PasswordHash: fmt.Sprint(i), Role: domain.RoleUser})
			if err == nil {
				created.Add(1)
				return
			}
			if !errors.Is(err, ErrUserExists) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
}
