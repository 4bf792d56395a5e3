package auth

import (
	"context"
	"testing"

	"channelpost-bot/internal/channel/channeltest"
	"channelpost-bot/internal/database"
	"channelpost-bot/internal/database/databasetest"
	"channelpost-bot/internal/database/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ownerID = int64(1)

func setupChecker(t *testing.T) (*AdminChecker, *databasetest.Store, *channeltest.Fake) {
	t.Helper()
	store := databasetest.New()
	fake := channeltest.New()
	ac, err := NewAdminChecker(store, fake, ownerID, zerolog.Nop())
	require.NoError(t, err)
	return ac, store, fake
}

func TestNewAdminCheckerValidation(t *testing.T) {
	_, err := NewAdminChecker(nil, nil, ownerID, zerolog.Nop())
	assert.Error(t, err)
	_, err = NewAdminChecker(databasetest.New(), nil, 0, zerolog.Nop())
	assert.Error(t, err)
}

func TestBootstrap(t *testing.T) {
	ac, store, _ := setupChecker(t)
	ctx := context.Background()

	// A stale owner label from a previous OWNER_ID must be cleared.
	require.NoError(t, store.AddAdmin(ctx, &models.Admin{UserID: 99, Name: models.OwnerName}))
	require.NoError(t, store.AddAdmin(ctx, &models.Admin{UserID: 5, Username: "kept"}))

	require.NoError(t, ac.Bootstrap(ctx, []int64{5, 6, ownerID}))
	require.NoError(t, ac.Bootstrap(ctx, []int64{5, 6, ownerID}))

	admins, err := ac.List(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 4)
	assert.Equal(t, models.Admin{UserID: ownerID, Name: models.OwnerName}, models.Admin{UserID: admins[0].UserID, Name: admins[0].Name})
	assert.Equal(t, "kept", admins[1].Username)
	assert.Equal(t, int64(6), admins[2].UserID)
	assert.Equal(t, int64(99), admins[3].UserID)
	assert.Empty(t, admins[3].Name)
}

func TestIsAdmin(t *testing.T) {
	ac, store, _ := setupChecker(t)
	ctx := context.Background()
	require.NoError(t, store.AddAdmin(ctx, &models.Admin{UserID: 5}))

	for _, tc := range []struct {
		userID int64
		want   bool
	}{{ownerID, true}, {5, true}, {6, false}} {
		got, err := ac.IsAdmin(ctx, tc.userID)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "user %d", tc.userID)
	}
}

func TestAddSnapshotsUser(t *testing.T) {
	ac, _, fake := setupChecker(t)
	ctx := context.Background()
	fake.Users[5] = [2]string{"alice", "Alice"}

	admin, err := ac.Add(ctx, ownerID, 5)
	require.NoError(t, err)
	assert.Equal(t, "alice", admin.Username)
	assert.Equal(t, "Alice", admin.Name)

	// Unknown users are still added, just without a name.
	admin, err = ac.Add(ctx, ownerID, 6)
	require.NoError(t, err)
	assert.Empty(t, admin.Username)

	ok, err := ac.IsAdmin(ctx, 6)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAddAndRemoveAreOwnerOnly(t *testing.T) {
	ac, store, _ := setupChecker(t)
	ctx := context.Background()
	require.NoError(t, store.AddAdmin(ctx, &models.Admin{UserID: 5}))

	_, err := ac.Add(ctx, 5, 6)
	assert.ErrorIs(t, err, ErrOwnerOnly)
	assert.ErrorIs(t, ac.Remove(ctx, 5, 5), ErrOwnerOnly)
}

func TestRemove(t *testing.T) {
	ac, store, _ := setupChecker(t)
	ctx := context.Background()
	require.NoError(t, ac.Bootstrap(ctx, nil))
	require.NoError(t, store.AddAdmin(ctx, &models.Admin{UserID: 5}))

	assert.ErrorIs(t, ac.Remove(ctx, ownerID, ownerID), ErrOwnerImmutable)
	assert.NoError(t, ac.Remove(ctx, ownerID, 5))
	assert.ErrorIs(t, ac.Remove(ctx, ownerID, 5), database.ErrNotFound)

	ok, err := ac.IsAdmin(ctx, ownerID)
	require.NoError(t, err)
	assert.True(t, ok)
}
