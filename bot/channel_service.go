package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"voicebot/service"
)

// channelService implements service.ChannelService over a discordgo session.
// Remote 404s map to service.ErrChannelNotFound and 403s to
// service.ErrPermissionDenied; everything else surfaces as a transient failure.
type channelService struct {
	session *discordgo.Session
}

// NewChannelService creates a ChannelService backed by a discordgo session
func NewChannelService(session *discordgo.Session) service.ChannelService {
	return &channelService{session: session}
}

func (c *channelService) CreateCategory(ctx context.Context, guildID int64, name string) (int64, error) {
	channel, err := c.session.GuildChannelCreate(formatSnowflake(guildID), name, discordgo.ChannelTypeGuildCategory)
	if err != nil {
		return 0, fmt.Errorf("failed to create category %q: %w", name, mapRESTError(err))
	}
	return parseSnowflake(channel.ID), nil
}

func (c *channelService) CreateVoiceChannel(ctx context.Context, guildID, categoryID int64, name string) (int64, error) {
	channel, err := c.session.GuildChannelCreateComplex(formatSnowflake(guildID), discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     discordgo.ChannelTypeGuildVoice,
		ParentID: formatSnowflake(categoryID),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create voice channel %q: %w", name, mapRESTError(err))
	}
	return parseSnowflake(channel.ID), nil
}

func (c *channelService) DeleteChannel(ctx context.Context, channelID int64) error {
	if _, err := c.session.ChannelDelete(formatSnowflake(channelID)); err != nil {
		return mapRESTError(err)
	}
	return nil
}

func (c *channelService) EditChannel(ctx context.Context, channelID int64, edit service.ChannelEdit) error {
	data := &discordgo.ChannelEdit{}
	if edit.Name != nil {
		data.Name = *edit.Name
	}
	if edit.UserLimit != nil {
		data.UserLimit = *edit.UserLimit
	}
	if _, err := c.session.ChannelEdit(formatSnowflake(channelID), data); err != nil {
		return mapRESTError(err)
	}
	return nil
}

func (c *channelService) SetMemberPermissions(ctx context.Context, channelID, memberID int64, perms service.PermissionUpdate) error {
	allow, deny := overwriteBits(perms)
	err := c.session.ChannelPermissionSet(
		formatSnowflake(channelID),
		formatSnowflake(memberID),
		discordgo.PermissionOverwriteTypeMember,
		allow, deny,
	)
	if err != nil {
		return mapRESTError(err)
	}
	return nil
}

func (c *channelService) SetRolePermissions(ctx context.Context, channelID, roleID int64, perms service.PermissionUpdate) error {
	allow, deny := overwriteBits(perms)
	err := c.session.ChannelPermissionSet(
		formatSnowflake(channelID),
		formatSnowflake(roleID),
		discordgo.PermissionOverwriteTypeRole,
		allow, deny,
	)
	if err != nil {
		return mapRESTError(err)
	}
	return nil
}

func (c *channelService) MoveMember(ctx context.Context, guildID, memberID, channelID int64) error {
	target := formatSnowflake(channelID)
	if err := c.session.GuildMemberMove(formatSnowflake(guildID), formatSnowflake(memberID), &target); err != nil {
		return mapRESTError(err)
	}
	return nil
}

func (c *channelService) ChannelMembers(ctx context.Context, guildID, channelID int64) ([]int64, error) {
	guild, err := c.session.State.Guild(formatSnowflake(guildID))
	if err != nil {
		return nil, fmt.Errorf("guild %d not in state cache: %w", guildID, err)
	}

	channelStr := formatSnowflake(channelID)
	var members []int64
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == channelStr {
			members = append(members, parseSnowflake(vs.UserID))
		}
	}
	return members, nil
}

func (c *channelService) ChannelExists(ctx context.Context, channelID int64) (bool, error) {
	if _, err := c.session.State.Channel(formatSnowflake(channelID)); err == nil {
		return true, nil
	}

	_, err := c.session.Channel(formatSnowflake(channelID))
	if err == nil {
		return true, nil
	}
	if errors.Is(mapRESTError(err), service.ErrChannelNotFound) {
		return false, nil
	}
	return false, err
}

func (c *channelService) MemberDisplayName(ctx context.Context, guildID, memberID int64) string {
	member, err := c.session.GuildMember(formatSnowflake(guildID), formatSnowflake(memberID))
	if err != nil {
		log.WithFields(log.Fields{
			"guildID":  guildID,
			"memberID": memberID,
		}).WithError(err).Warn("Failed to fetch member for display name")
		return "Unknown"
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User != nil {
		if member.User.GlobalName != "" {
			return member.User.GlobalName
		}
		return member.User.Username
	}
	return "Unknown"
}

func (c *channelService) BotUserID() int64 {
	if c.session.State.User == nil {
		return 0
	}
	return parseSnowflake(c.session.State.User.ID)
}

// overwriteBits translates a tri-state permission update into the allow/deny
// bitmasks Discord's overwrite API expects. Note that an overwrite set
// replaces the previous overwrite for that target entirely, so callers pass
// every permission they want kept.
func overwriteBits(perms service.PermissionUpdate) (allow, deny int64) {
	apply := func(value *bool, bit int64) {
		if value == nil {
			return
		}
		if *value {
			allow |= bit
		} else {
			deny |= bit
		}
	}
	apply(perms.Connect, discordgo.PermissionVoiceConnect)
	apply(perms.View, discordgo.PermissionViewChannel)
	apply(perms.Manage, discordgo.PermissionManageChannels)
	return allow, deny
}

// mapRESTError converts discordgo REST errors into the domain taxonomy
func mapRESTError(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusNotFound:
			return service.ErrChannelNotFound
		case http.StatusForbidden:
			return service.ErrPermissionDenied
		}
	}
	return err
}
