package models

import (
	"time"
)

// GuildSetup records the join-to-create configuration for a guild.
// One row per guild, overwritten wholesale when setup is re-run.
type GuildSetup struct {
	GuildID        int64     `db:"guild_id"`
	OwnerID        int64     `db:"owner_id"`
	LobbyChannelID int64     `db:"lobby_channel_id"`
	CategoryID     int64     `db:"category_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}
