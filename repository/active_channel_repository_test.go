package repository

import (
	"context"
	"testing"

	"voicebot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveChannelRepository_GetByOwner(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewActiveChannelRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no channel owned", func(t *testing.T) {
		channel, err := repo.GetByOwner(ctx, 42)
		require.NoError(t, err)
		assert.Nil(t, channel)
	})

	t.Run("channel found", func(t *testing.T) {
		original := testutil.CreateTestActiveChannel(555, 42, 10)
		err := repo.Create(ctx, original)
		require.NoError(t, err)

		channel, err := repo.GetByOwner(ctx, 42)
		require.NoError(t, err)
		require.NotNil(t, channel)

		assert.Equal(t, int64(555), channel.ChannelID)
		assert.Equal(t, int64(42), channel.OwnerID)
		assert.Equal(t, int64(10), channel.GuildID)
		assert.False(t, channel.CreatedAt.IsZero())
	})
}

func TestActiveChannelRepository_GetByChannelID(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewActiveChannelRepository(testDB.DB)
	ctx := context.Background()

	t.Run("untracked channel", func(t *testing.T) {
		channel, err := repo.GetByChannelID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, channel)
	})

	t.Run("tracked channel", func(t *testing.T) {
		err := repo.Create(ctx, testutil.CreateTestActiveChannel(555, 42, 10))
		require.NoError(t, err)

		channel, err := repo.GetByChannelID(ctx, 555)
		require.NoError(t, err)
		require.NotNil(t, channel)
		assert.Equal(t, int64(42), channel.OwnerID)
	})
}

func TestActiveChannelRepository_Create_EnforcesSingleChannelPerOwner(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewActiveChannelRepository(testDB.DB)
	ctx := context.Background()

	err := repo.Create(ctx, testutil.CreateTestActiveChannel(555, 42, 10))
	require.NoError(t, err)

	// A second live channel for the same owner violates the unique constraint
	err = repo.Create(ctx, testutil.CreateTestActiveChannel(556, 42, 10))
	assert.Error(t, err)
}

func TestActiveChannelRepository_ListByGuild(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewActiveChannelRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.CreateTestActiveChannel(555, 42, 10)))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestActiveChannel(556, 43, 10)))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestActiveChannel(557, 44, 11)))

	channels, err := repo.ListByGuild(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, channels, 2)

	channels, err = repo.ListByGuild(ctx, 12)
	require.NoError(t, err)
	assert.Empty(t, channels)
}

func TestActiveChannelRepository_TransferOwner(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewActiveChannelRepository(testDB.DB)
	ctx := context.Background()

	t.Run("existing row", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, testutil.CreateTestActiveChannel(555, 42, 10)))

		updated, err := repo.TransferOwner(ctx, 555, 43)
		require.NoError(t, err)
		assert.True(t, updated)

		channel, err := repo.GetByChannelID(ctx, 555)
		require.NoError(t, err)
		assert.Equal(t, int64(43), channel.OwnerID)
	})

	t.Run("missing row reports false", func(t *testing.T) {
		updated, err := repo.TransferOwner(ctx, 999, 43)
		require.NoError(t, err)
		assert.False(t, updated)
	})
}

func TestActiveChannelRepository_Delete(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewActiveChannelRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.CreateTestActiveChannel(555, 42, 10)))

	deleted, err := repo.Delete(ctx, 555)
	require.NoError(t, err)
	assert.True(t, deleted)

	channel, err := repo.GetByChannelID(ctx, 555)
	require.NoError(t, err)
	assert.Nil(t, channel)

	// Deleting again is an idempotent no-op
	deleted, err = repo.Delete(ctx, 555)
	require.NoError(t, err)
	assert.False(t, deleted)
}
