package repository

import (
	"context"
	"testing"

	"voicebot/repository/testutil"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildSetupRepository_GetAndUpsert(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildSetupRepository(testDB.DB)
	ctx := context.Background()

	t.Run("guild never set up", func(t *testing.T) {
		setup, err := repo.Get(ctx, 10)
		require.NoError(t, err)
		assert.Nil(t, setup)
	})

	t.Run("insert and retrieve", func(t *testing.T) {
		original := testutil.CreateTestGuildSetup(10, 99)
		err := repo.Upsert(ctx, original)
		require.NoError(t, err)
		assert.False(t, original.CreatedAt.IsZero())

		setup, err := repo.Get(ctx, 10)
		require.NoError(t, err)
		require.NotNil(t, setup)
		assert.Equal(t, original.OwnerID, setup.OwnerID)
		assert.Equal(t, original.LobbyChannelID, setup.LobbyChannelID)
		assert.Equal(t, original.CategoryID, setup.CategoryID)
	})

	t.Run("upsert participates in an enclosing transaction", func(t *testing.T) {
		err := testDB.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
			txRepo := newGuildSetupRepositoryWithTx(tx)
			setup := testutil.CreateTestGuildSetup(11, 98)
			return txRepo.Upsert(ctx, setup)
		})
		require.NoError(t, err)

		setup, err := repo.Get(ctx, 11)
		require.NoError(t, err)
		require.NotNil(t, setup)
		assert.Equal(t, int64(98), setup.OwnerID)
	})

	t.Run("re-running setup overwrites the row", func(t *testing.T) {
		updated := testutil.CreateTestGuildSetup(10, 99)
		updated.LobbyChannelID = 300
		updated.CategoryID = 400
		err := repo.Upsert(ctx, updated)
		require.NoError(t, err)

		setup, err := repo.Get(ctx, 10)
		require.NoError(t, err)
		require.NotNil(t, setup)
		assert.Equal(t, int64(300), setup.LobbyChannelID)
		assert.Equal(t, int64(400), setup.CategoryID)
	})
}

func TestGuildDefaultsRepository_GetAndUpsert(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildDefaultsRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no defaults configured", func(t *testing.T) {
		defaults, err := repo.Get(ctx, 10)
		require.NoError(t, err)
		assert.Nil(t, defaults)
	})

	t.Run("insert and overwrite", func(t *testing.T) {
		err := repo.Upsert(ctx, testutil.CreateTestGuildDefaults(10, "general", 5))
		require.NoError(t, err)

		defaults, err := repo.Get(ctx, 10)
		require.NoError(t, err)
		require.NotNil(t, defaults)
		assert.Equal(t, "general", defaults.DefaultName)
		assert.Equal(t, 5, defaults.DefaultLimit)

		err = repo.Upsert(ctx, testutil.CreateTestGuildDefaults(10, "general", 8))
		require.NoError(t, err)

		defaults, err = repo.Get(ctx, 10)
		require.NoError(t, err)
		require.NotNil(t, defaults)
		assert.Equal(t, 8, defaults.DefaultLimit)
	})
}

func TestUserPreferenceRepository_GetAndUpsert(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserPreferenceRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no preference stored", func(t *testing.T) {
		pref, err := repo.Get(ctx, 42)
		require.NoError(t, err)
		assert.Nil(t, pref)
	})

	t.Run("insert and overwrite", func(t *testing.T) {
		err := repo.Upsert(ctx, testutil.CreateTestUserPreference(42, "The Cave", 0))
		require.NoError(t, err)

		pref, err := repo.Get(ctx, 42)
		require.NoError(t, err)
		require.NotNil(t, pref)
		assert.Equal(t, "The Cave", pref.ChannelName)
		assert.Equal(t, 0, pref.ChannelLimit)

		err = repo.Upsert(ctx, testutil.CreateTestUserPreference(42, "War Room", 6))
		require.NoError(t, err)

		pref, err = repo.Get(ctx, 42)
		require.NoError(t, err)
		require.NotNil(t, pref)
		assert.Equal(t, "War Room", pref.ChannelName)
		assert.Equal(t, 6, pref.ChannelLimit)
	})
}
