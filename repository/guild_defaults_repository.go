package repository

import (
	"context"
	"fmt"

	"voicebot/database"
	"voicebot/models"
	"github.com/jackc/pgx/v5"
)

// GuildDefaultsRepository implements the GuildDefaultsRepository interface
type GuildDefaultsRepository struct {
	q queryable
}

// NewGuildDefaultsRepository creates a new guild defaults repository
func NewGuildDefaultsRepository(db *database.DB) *GuildDefaultsRepository {
	return &GuildDefaultsRepository{q: db.Pool}
}

// newGuildDefaultsRepositoryWithTx creates a new guild defaults repository with a transaction
func newGuildDefaultsRepositoryWithTx(tx queryable) *GuildDefaultsRepository {
	return &GuildDefaultsRepository{q: tx}
}

// Get retrieves the defaults row for a guild
func (r *GuildDefaultsRepository) Get(ctx context.Context, guildID int64) (*models.GuildDefaults, error) {
	query := `
		SELECT guild_id, default_name, default_limit, created_at, updated_at
		FROM guild_settings
		WHERE guild_id = $1
	`

	var defaults models.GuildDefaults
	err := r.q.QueryRow(ctx, query, guildID).Scan(
		&defaults.GuildID,
		&defaults.DefaultName,
		&defaults.DefaultLimit,
		&defaults.CreatedAt,
		&defaults.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get defaults for guild %d: %w", guildID, err)
	}

	return &defaults, nil
}

// Upsert creates or overwrites the defaults row for a guild
func (r *GuildDefaultsRepository) Upsert(ctx context.Context, defaults *models.GuildDefaults) error {
	query := `
		INSERT INTO guild_settings (guild_id, default_name, default_limit)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id) DO UPDATE
		SET default_name = EXCLUDED.default_name,
		    default_limit = EXCLUDED.default_limit,
		    updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		defaults.GuildID,
		defaults.DefaultName,
		defaults.DefaultLimit,
	).Scan(&defaults.CreatedAt, &defaults.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert defaults for guild %d: %w", defaults.GuildID, err)
	}

	return nil
}
