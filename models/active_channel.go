package models

import (
	"time"
)

// ActiveChannel maps a live dynamic voice channel to its current owner.
// A row exists exactly while the remote channel is live; owner_id is unique
// among live rows so a user owns at most one channel at any instant.
type ActiveChannel struct {
	ChannelID int64     `db:"channel_id"`
	OwnerID   int64     `db:"owner_id"`
	GuildID   int64     `db:"guild_id"`
	CreatedAt time.Time `db:"created_at"`
}
