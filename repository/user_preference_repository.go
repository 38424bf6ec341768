package repository

import (
	"context"
	"fmt"

	"voicebot/database"
	"voicebot/models"
	"github.com/jackc/pgx/v5"
)

// UserPreferenceRepository implements the UserPreferenceRepository interface
type UserPreferenceRepository struct {
	q queryable
}

// NewUserPreferenceRepository creates a new user preference repository
func NewUserPreferenceRepository(db *database.DB) *UserPreferenceRepository {
	return &UserPreferenceRepository{q: db.Pool}
}

// newUserPreferenceRepositoryWithTx creates a new user preference repository with a transaction
func newUserPreferenceRepositoryWithTx(tx queryable) *UserPreferenceRepository {
	return &UserPreferenceRepository{q: tx}
}

// Get retrieves a user's preference row
func (r *UserPreferenceRepository) Get(ctx context.Context, userID int64) (*models.UserPreference, error) {
	query := `
		SELECT user_id, channel_name, channel_limit, created_at, updated_at
		FROM user_settings
		WHERE user_id = $1
	`

	var pref models.UserPreference
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&pref.UserID,
		&pref.ChannelName,
		&pref.ChannelLimit,
		&pref.CreatedAt,
		&pref.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preference for user %d: %w", userID, err)
	}

	return &pref, nil
}

// Upsert creates or overwrites a user's preference row
func (r *UserPreferenceRepository) Upsert(ctx context.Context, pref *models.UserPreference) error {
	query := `
		INSERT INTO user_settings (user_id, channel_name, channel_limit)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET channel_name = EXCLUDED.channel_name,
		    channel_limit = EXCLUDED.channel_limit,
		    updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		pref.UserID,
		pref.ChannelName,
		pref.ChannelLimit,
	).Scan(&pref.CreatedAt, &pref.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert preference for user %d: %w", pref.UserID, err)
	}

	return nil
}
