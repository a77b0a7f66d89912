//go:build integration

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vims/internal/auth/models"
	id "vims/pkg/domain"
	"vims/pkg/platform/sentinel"
	"vims/pkg/testutil/containers"
)

func TestRedisSessionStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rc := containers.NewRedisContainer(t)
	store := NewRedis(rc.Client)
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))

		session := &models.Session{
			ID:        "sess-1",
			UserID:    id.NewUserID(),
			CreatedAt: time.Now().UTC(),
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		}
		require.NoError(t, store.Create(ctx, session))

		got, err := store.FindByID(ctx, "sess-1")
		require.NoError(t, err)
		assert.Equal(t, session.UserID, got.UserID)
		assert.False(t, got.Revoked)
	})

	t.Run("missing session is not found", func(t *testing.T) {
		_, err := store.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("revoke keeps the record but kills liveness", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))

		session := &models.Session{
			ID:        "sess-2",
			UserID:    id.NewUserID(),
			CreatedAt: time.Now().UTC(),
			ExpiresAt: time.Now().UTC().Add(time.Hour),
		}
		require.NoError(t, store.Create(ctx, session))
		require.NoError(t, store.Revoke(ctx, "sess-2"))

		got, err := store.FindByID(ctx, "sess-2")
		require.NoError(t, err)
		assert.True(t, got.Revoked)
		assert.False(t, got.Live(time.Now().UTC()))
	})

	t.Run("expired sessions age out with the key TTL", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))

		session := &models.Session{
			ID:        "sess-3",
			UserID:    id.NewUserID(),
			CreatedAt: time.Now().UTC().Add(-2 * time.Hour),
			ExpiresAt: time.Now().UTC().Add(-time.Hour),
		}
		err := store.Create(ctx, session)
		assert.ErrorIs(t, err, sentinel.ErrInvalidState)
	})
}
