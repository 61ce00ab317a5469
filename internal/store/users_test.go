package store

import (
	"context"
	"testing"

	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/models"
	"github.com/araofarias801-dev/araoalvesdefarias036500/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(testutil.OpenDB(t))

	user := &models.User{Username: "alice", PasswordHash: "hash", Roles: "ROLE_USER"}
	require.NoError(t, users.Create(ctx, user))
	assert.NotZero(t, user.ID)

	found, err := users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, []string{"ROLE_USER"}, found.RoleList())

	byID, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	var n int64
	require.NoError(t, users.db.Model(&models.User{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestUserStore_NotFound(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(testutil.OpenDB(t))
	require.NoError(t, users.Create(ctx, &models.User{Username: "alice", PasswordHash: "hash", Roles: "ROLE_USER"}))

	_, err := users.FindByUsername(ctx, "bob")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = users.FindByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, ErrNotFound, "lookups are case-sensitive")

	_, err = users.FindByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStore_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(testutil.OpenDB(t))

	require.NoError(t, users.Create(ctx, &models.User{Username: "alice", PasswordHash: "a", Roles: "ROLE_USER"}))
	err := users.Create(ctx, &models.User{Username: "alice", PasswordHash: "b", Roles: "ROLE_USER"})
	assert.ErrorIs(t, err, ErrDuplicate)
}
