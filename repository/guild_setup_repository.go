package repository

import (
	"context"
	"fmt"

	"voicebot/database"
	"voicebot/models"
	"github.com/jackc/pgx/v5"
)

// GuildSetupRepository implements the GuildSetupRepository interface
type GuildSetupRepository struct {
	q queryable
}

// NewGuildSetupRepository creates a new guild setup repository
func NewGuildSetupRepository(db *database.DB) *GuildSetupRepository {
	return &GuildSetupRepository{q: db.Pool}
}

// newGuildSetupRepositoryWithTx creates a new guild setup repository with a transaction
func newGuildSetupRepositoryWithTx(tx queryable) *GuildSetupRepository {
	return &GuildSetupRepository{q: tx}
}

// Get retrieves the setup row for a guild
func (r *GuildSetupRepository) Get(ctx context.Context, guildID int64) (*models.GuildSetup, error) {
	query := `
		SELECT guild_id, owner_id, lobby_channel_id, category_id, created_at, updated_at
		FROM guilds
		WHERE guild_id = $1
	`

	var setup models.GuildSetup
	err := r.q.QueryRow(ctx, query, guildID).Scan(
		&setup.GuildID,
		&setup.OwnerID,
		&setup.LobbyChannelID,
		&setup.CategoryID,
		&setup.CreatedAt,
		&setup.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setup for guild %d: %w", guildID, err)
	}

	return &setup, nil
}

// Upsert creates or overwrites the setup row for a guild
func (r *GuildSetupRepository) Upsert(ctx context.Context, setup *models.GuildSetup) error {
	query := `
		INSERT INTO guilds (guild_id, owner_id, lobby_channel_id, category_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guild_id) DO UPDATE
		SET owner_id = EXCLUDED.owner_id,
		    lobby_channel_id = EXCLUDED.lobby_channel_id,
		    category_id = EXCLUDED.category_id,
		    updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		setup.GuildID,
		setup.OwnerID,
		setup.LobbyChannelID,
		setup.CategoryID,
	).Scan(&setup.CreatedAt, &setup.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert setup for guild %d: %w", setup.GuildID, err)
	}

	return nil
}
