package testutil

import (
	"time"

	"voicebot/models"
)

// CreateTestGuildSetup creates a guild setup with default values
func CreateTestGuildSetup(guildID, ownerID int64) *models.GuildSetup {
	now := time.Now()
	return &models.GuildSetup{
		GuildID:        guildID,
		OwnerID:        ownerID,
		LobbyChannelID: guildID + 1,
		CategoryID:     guildID + 2,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CreateTestGuildDefaults creates guild defaults with a specific limit
func CreateTestGuildDefaults(guildID int64, name string, limit int) *models.GuildDefaults {
	now := time.Now()
	return &models.GuildDefaults{
		GuildID:      guildID,
		DefaultName:  name,
		DefaultLimit: limit,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CreateTestUserPreference creates a user preference with a name and limit
func CreateTestUserPreference(userID int64, name string, limit int) *models.UserPreference {
	now := time.Now()
	return &models.UserPreference{
		UserID:       userID,
		ChannelName:  name,
		ChannelLimit: limit,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CreateTestActiveChannel creates an active channel row
func CreateTestActiveChannel(channelID, ownerID, guildID int64) *models.ActiveChannel {
	return &models.ActiveChannel{
		ChannelID: channelID,
		OwnerID:   ownerID,
		GuildID:   guildID,
		CreatedAt: time.Now(),
	}
}
