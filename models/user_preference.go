package models

import (
	"time"
)

// UserPreference holds a user's preferred channel name and limit.
// A limit of 0 means "defer to the guild default" when one exists,
// otherwise unlimited.
type UserPreference struct {
	UserID       int64     `db:"user_id"`
	ChannelName  string    `db:"channel_name"`
	ChannelLimit int       `db:"channel_limit"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
