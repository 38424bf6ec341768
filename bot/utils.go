package bot

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// parseSnowflake converts a Discord string ID to int64. An empty string
// (discordgo's "no channel") parses to 0.
func parseSnowflake(id string) int64 {
	if id == "" {
		return 0
	}
	parsed, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		log.WithField("id", id).WithError(err).Error("Failed to parse Discord snowflake")
		return 0
	}
	return parsed
}

// formatSnowflake converts an int64 ID back to Discord's string form
func formatSnowflake(id int64) string {
	return strconv.FormatInt(id, 10)
}

// mention formats a user mention from an int64 ID
func mention(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}

// respondEphemeral sends an ephemeral response to an interaction
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.WithError(err).Error("Error sending interaction response")
	}
}
