package repository

import (
	"context"
	"fmt"

	"voicebot/database"
	"voicebot/models"
	"github.com/jackc/pgx/v5"
)

// ActiveChannelRepository implements the ActiveChannelRepository interface
type ActiveChannelRepository struct {
	q queryable
}

// NewActiveChannelRepository creates a new active channel repository
func NewActiveChannelRepository(db *database.DB) *ActiveChannelRepository {
	return &ActiveChannelRepository{q: db.Pool}
}

// newActiveChannelRepositoryWithTx creates a new active channel repository with a transaction
func newActiveChannelRepositoryWithTx(tx queryable) *ActiveChannelRepository {
	return &ActiveChannelRepository{q: tx}
}

// GetByOwner retrieves the live channel owned by a user
func (r *ActiveChannelRepository) GetByOwner(ctx context.Context, ownerID int64) (*models.ActiveChannel, error) {
	query := `
		SELECT channel_id, owner_id, guild_id, created_at
		FROM voice_channels
		WHERE owner_id = $1
	`

	var channel models.ActiveChannel
	err := r.q.QueryRow(ctx, query, ownerID).Scan(
		&channel.ChannelID,
		&channel.OwnerID,
		&channel.GuildID,
		&channel.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel owned by user %d: %w", ownerID, err)
	}

	return &channel, nil
}

// GetByChannelID retrieves a live channel row by channel ID
func (r *ActiveChannelRepository) GetByChannelID(ctx context.Context, channelID int64) (*models.ActiveChannel, error) {
	query := `
		SELECT channel_id, owner_id, guild_id, created_at
		FROM voice_channels
		WHERE channel_id = $1
	`

	var channel models.ActiveChannel
	err := r.q.QueryRow(ctx, query, channelID).Scan(
		&channel.ChannelID,
		&channel.OwnerID,
		&channel.GuildID,
		&channel.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel %d: %w", channelID, err)
	}

	return &channel, nil
}

// ListByGuild returns all live channels in a guild
func (r *ActiveChannelRepository) ListByGuild(ctx context.Context, guildID int64) ([]*models.ActiveChannel, error) {
	query := `
		SELECT channel_id, owner_id, guild_id, created_at
		FROM voice_channels
		WHERE guild_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var channels []*models.ActiveChannel
	for rows.Next() {
		var channel models.ActiveChannel
		err := rows.Scan(
			&channel.ChannelID,
			&channel.OwnerID,
			&channel.GuildID,
			&channel.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, &channel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate channels: %w", err)
	}

	return channels, nil
}

// Create inserts a new live channel row. The unique constraint on owner_id
// rejects a second live channel for the same owner.
func (r *ActiveChannelRepository) Create(ctx context.Context, channel *models.ActiveChannel) error {
	query := `
		INSERT INTO voice_channels (channel_id, owner_id, guild_id)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		channel.ChannelID,
		channel.OwnerID,
		channel.GuildID,
	).Scan(&channel.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create channel row for channel %d: %w", channel.ChannelID, err)
	}

	return nil
}

// TransferOwner updates the owner of a live channel. Returns false when the
// row no longer exists so the caller can no-op instead of failing.
func (r *ActiveChannelRepository) TransferOwner(ctx context.Context, channelID, newOwnerID int64) (bool, error) {
	query := `
		UPDATE voice_channels
		SET owner_id = $1
		WHERE channel_id = $2
	`

	result, err := r.q.Exec(ctx, query, newOwnerID, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to transfer owner of channel %d: %w", channelID, err)
	}

	return result.RowsAffected() > 0, nil
}

// Delete removes a live channel row. Returns false when the row was already gone.
func (r *ActiveChannelRepository) Delete(ctx context.Context, channelID int64) (bool, error) {
	query := `
		DELETE FROM voice_channels
		WHERE channel_id = $1
	`

	result, err := r.q.Exec(ctx, query, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to delete channel row for channel %d: %w", channelID, err)
	}

	return result.RowsAffected() > 0, nil
}
