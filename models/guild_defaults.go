package models

import (
	"time"
)

// GuildDefaults holds guild-level defaults applied to newly created channels.
// Absence of a row means the guild has no default limit (0 = unlimited).
type GuildDefaults struct {
	GuildID      int64     `db:"guild_id"`
	DefaultName  string    `db:"default_name"`
	DefaultLimit int       `db:"default_limit"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
