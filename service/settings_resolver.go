package service

import (
	"fmt"

	"voicebot/models"
)

// ResolveChannelSettings merges a user's preference and the guild defaults
// into the concrete name and limit for a newly provisioned channel. Either
// input may be nil.
//
// The limit precedence is a three-way merge with 0 as the "unset" sentinel:
// an explicit non-zero user limit always wins, a user limit of 0 defers to
// the guild default when one exists, and with no guild default the user
// limit is taken as-is (0 meaning unlimited).
func ResolveChannelSettings(pref *models.UserPreference, defaults *models.GuildDefaults, displayName string) (string, int) {
	if pref == nil {
		name := fmt.Sprintf("%s's channel", displayName)
		if defaults == nil {
			return name, 0
		}
		return name, defaults.DefaultLimit
	}

	if defaults == nil {
		return pref.ChannelName, pref.ChannelLimit
	}
	if pref.ChannelLimit == 0 {
		return pref.ChannelName, defaults.DefaultLimit
	}
	return pref.ChannelName, pref.ChannelLimit
}
