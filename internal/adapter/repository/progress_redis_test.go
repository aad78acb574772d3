package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabucaps/brazilian/internal/entity"
)

var errIndexDown = errors.New("users index unavailable")

// failIndexHook rejects any command batch that touches the users index.
type failIndexHook struct{}

func (failIndexHook) DialHook(next goredis.DialHook) goredis.DialHook { return next }

func (failIndexHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		if cmd.Name() == "sadd" {
			return errIndexDown
		}
		return next(ctx, cmd)
	}
}

func (failIndexHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		for _, cmd := range cmds {
			if cmd.Name() == "sadd" {
				return errIndexDown
			}
		}
		return next(ctx, cmds)
	}
}

func TestRedisCreateUserIsAllOrNothing(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	prefix := fmt.Sprintf("test:%d:", time.Now().UnixNano())

	healthy, cleanup, err := NewRedisClient(addr, 0)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	t.Cleanup(func() {
		keys, _ := healthy.Keys(context.Background(), prefix+"*").Result()
		if len(keys) > 0 {
			healthy.Del(context.Background(), keys...)
		}
	})

	broken, cleanupBroken, err := NewRedisClient(addr, 0)
	require.NoError(t, err)
	t.Cleanup(cleanupBroken)
	broken.AddHook(failIndexHook{})

	_, err = NewProgressRedisRepository(broken, prefix).CreateUser(ctx, &entity.User{ID: "ana", Name: "Ana"})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrStoreUnavailable)

	repo := NewProgressRedisRepository(healthy, prefix)
	_, err = repo.GetUser(ctx, "ana")
	assert.ErrorIs(t, err, entity.ErrUserNotFound, "a failed create must not leave the user behind")

	_, err = repo.CreateUser(ctx, &entity.User{ID: "ana", Name: "Ana"})
	require.NoError(t, err)
	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ana", users[0].ID)
}
