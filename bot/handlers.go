package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"voicebot/service"
)

const (
	defaultCategoryName = "Voice Channels"
	defaultChannelName  = "Join To Create"
)

func (b *Bot) handleSetup(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	userID := parseSnowflake(i.Member.User.ID)
	guildID := parseSnowflake(i.GuildID)

	categoryName := defaultCategoryName
	channelName := defaultChannelName
	for _, opt := range options {
		switch opt.Name {
		case "category_name":
			categoryName = opt.StringValue()
		case "channel_name":
			channelName = opt.StringValue()
		}
	}

	_, err := b.guildSettingsService.Setup(ctx, guildID, userID, b.guildOwnerID(s, i.GuildID), categoryName, channelName)
	if err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			respondEphemeral(s, i, fmt.Sprintf("%s only the owner of the server can setup the bot!", mention(userID)))
			return
		}
		log.WithFields(log.Fields{
			"guildID": guildID,
			"userID":  userID,
		}).WithError(err).Error("Setup failed")
		respondEphemeral(s, i, fmt.Sprintf("An error occurred: %v", err))
		return
	}

	respondEphemeral(s, i, "**You are all setup and ready to go!**")
}

func (b *Bot) handleSetDefaultLimit(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	userID := parseSnowflake(i.Member.User.ID)
	guildID := parseSnowflake(i.GuildID)

	var limit int
	for _, opt := range options {
		if opt.Name == "limit" {
			limit = int(opt.IntValue())
		}
	}

	err := b.guildSettingsService.SetDefaultLimit(ctx, guildID, userID, b.guildOwnerID(s, i.GuildID), limit)
	if err != nil {
		if errors.Is(err, service.ErrPermissionDenied) {
			respondEphemeral(s, i, fmt.Sprintf("%s only the owner of the server can setup the bot!", mention(userID)))
			return
		}
		log.WithFields(log.Fields{
			"guildID": guildID,
			"userID":  userID,
		}).WithError(err).Error("Set default limit failed")
		respondEphemeral(s, i, "Unable to change the default limit. Please try again.")
		return
	}

	respondEphemeral(s, i, "You have changed the default channel limit for your server!")
}

func (b *Bot) handleLock(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := parseSnowflake(i.Member.User.ID)
	guildID := parseSnowflake(i.GuildID)

	if err := b.ownershipService.Lock(ctx, guildID, userID); err != nil {
		b.respondOwnershipError(s, i, userID, err, "lock")
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("%s Voice chat locked! 🔒", mention(userID)))
}

func (b *Bot) handleUnlock(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := parseSnowflake(i.Member.User.ID)
	guildID := parseSnowflake(i.GuildID)

	if err := b.ownershipService.Unlock(ctx, guildID, userID); err != nil {
		b.respondOwnershipError(s, i, userID, err, "unlock")
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("%s Voice chat unlocked! 🔓", mention(userID)))
}

func (b *Bot) handlePermit(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	userID := parseSnowflake(i.Member.User.ID)
	guildID := parseSnowflake(i.GuildID)

	target := b.memberOption(s, options)
	if target == nil {
		respondEphemeral(s, i, "Invalid member.")
		return
	}
	targetID := parseSnowflake(target.ID)

	if err := b.ownershipService.Permit(ctx, guildID, userID, targetID); err != nil {
		b.respondOwnershipError(s, i, userID, err, "permit")
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("%s You have permitted %s to have access to the channel. ✅", mention(userID), target.Username))
}

func (b *Bot) handleReject(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	userID := parseSnowflake(i.Member.User.ID)
	guildID := parseSnowflake(i.GuildID)

	target := b.memberOption(s, options)
	if target == nil {
		respondEphemeral(s, i, "Invalid member.")
		return
	}
	targetID := parseSnowflake(target.ID)

	if err := b.ownershipService.Reject(ctx, guildID, userID, targetID); err != nil {
		b.respondOwnershipError(s, i, userID, err, "reject")
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("%s You have rejected %s from accessing the channel. ❌", mention(userID), target.Username))
}

func (b *Bot) handleLimit(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	userID := parseSnowflake(i.Member.User.ID)
	guildID := parseSnowflake(i.GuildID)

	var limit int
	for _, opt := range options {
		if opt.Name == "limit" {
			limit = int(opt.IntValue())
		}
	}

	if err := b.ownershipService.SetLimit(ctx, guildID, userID, limit); err != nil {
		b.respondOwnershipError(s, i, userID, err, "limit")
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("%s You have set the channel limit to be %d!", mention(userID), limit))
}

func (b *Bot) handleName(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()
	userID := parseSnowflake(i.Member.User.ID)
	guildID := parseSnowflake(i.GuildID)

	var name string
	for _, opt := range options {
		if opt.Name == "name" {
			name = opt.StringValue()
		}
	}

	if err := b.ownershipService.Rename(ctx, guildID, userID, name); err != nil {
		b.respondOwnershipError(s, i, userID, err, "name")
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("%s You have changed the channel name to %s!", mention(userID), name))
}

func (b *Bot) handleClaim(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := parseSnowflake(i.Member.User.ID)
	guildID := parseSnowflake(i.GuildID)

	voiceState, err := s.State.VoiceState(i.GuildID, i.Member.User.ID)
	if err != nil || voiceState.ChannelID == "" {
		respondEphemeral(s, i, fmt.Sprintf("%s you're not in a voice channel.", mention(userID)))
		return
	}
	channelID := parseSnowflake(voiceState.ChannelID)

	_, err = b.ownershipService.Claim(ctx, guildID, userID, channelID)
	if err != nil {
		var alreadyOwned *service.AlreadyOwnedError
		switch {
		case errors.As(err, &alreadyOwned):
			respondEphemeral(s, i, fmt.Sprintf("%s This channel is already owned by %s!", mention(userID), mention(alreadyOwned.OwnerID)))
		case errors.Is(err, service.ErrNotOwnable):
			respondEphemeral(s, i, fmt.Sprintf("%s You can't own that channel!", mention(userID)))
		default:
			log.WithFields(log.Fields{
				"guildID":   guildID,
				"userID":    userID,
				"channelID": channelID,
			}).WithError(err).Error("Claim failed")
			respondEphemeral(s, i, "Unable to claim the channel. Please try again.")
		}
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("%s You are now the owner of the channel!", mention(userID)))
}

// respondOwnershipError maps domain rejections to the user-facing responses
// and logs everything else
func (b *Bot) respondOwnershipError(s *discordgo.Session, i *discordgo.InteractionCreate, userID int64, err error, command string) {
	if errors.Is(err, service.ErrNotOwner) {
		respondEphemeral(s, i, fmt.Sprintf("%s You don't own a channel.", mention(userID)))
		return
	}
	log.WithFields(log.Fields{
		"guildID": i.GuildID,
		"userID":  userID,
		"command": command,
	}).WithError(err).Error("Voice command failed")
	respondEphemeral(s, i, "Unable to process the command. Please try again.")
}

// memberOption extracts the user from a member option
func (b *Bot) memberOption(s *discordgo.Session, options []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.User {
	for _, opt := range options {
		if opt.Name == "member" {
			return opt.UserValue(s)
		}
	}
	return nil
}

// guildOwnerID resolves the owner of a guild, preferring the state cache
func (b *Bot) guildOwnerID(s *discordgo.Session, guildID string) int64 {
	if guild, err := s.State.Guild(guildID); err == nil && guild.OwnerID != "" {
		return parseSnowflake(guild.OwnerID)
	}

	guild, err := s.Guild(guildID)
	if err != nil {
		log.WithField("guildID", guildID).WithError(err).Error("Failed to resolve guild owner")
		return 0
	}
	return parseSnowflake(guild.OwnerID)
}
