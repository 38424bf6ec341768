package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"voicebot/events"
	"voicebot/service"

	"github.com/bwmarrin/discordgo"
)

type Bot struct {
	session              *discordgo.Session
	lifecycleService     service.LifecycleService
	ownershipService     service.OwnershipService
	guildSettingsService service.GuildSettingsService
	eventBus             *events.Bus
}

// NewSession creates an unopened discordgo session so the ChannelService can
// be constructed and injected into the services before the bot starts.
func NewSession(token string) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildVoiceStates
	return dg, nil
}

// New wires the handlers onto the session, opens the gateway connection and
// registers the slash commands.
func New(session *discordgo.Session, lifecycleService service.LifecycleService, ownershipService service.OwnershipService, guildSettingsService service.GuildSettingsService, eventBus *events.Bus) (*Bot, error) {
	bot := &Bot{
		session:              session,
		lifecycleService:     lifecycleService,
		ownershipService:     ownershipService,
		guildSettingsService: guildSettingsService,
		eventBus:             eventBus,
	}

	// Register slash command handlers
	session.AddHandler(bot.handleCommands)

	// Register the presence transition listener
	session.AddHandler(bot.handleVoiceStateUpdate)

	// Open websocket connection
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		session.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Operator-visible log lines for channel lifecycle transitions
	eventBus.Subscribe(events.EventTypeChannelProvisioned, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.ChannelProvisionedEvent); ok {
			log.WithFields(log.Fields{
				"guildID":   e.GuildID,
				"ownerID":   e.OwnerID,
				"channelID": e.ChannelID,
				"name":      e.Name,
				"userLimit": e.UserLimit,
			}).Info("Dynamic channel provisioned")
		}
	})
	eventBus.Subscribe(events.EventTypeChannelReleased, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.ChannelReleasedEvent); ok {
			log.WithFields(log.Fields{
				"guildID":   e.GuildID,
				"ownerID":   e.OwnerID,
				"channelID": e.ChannelID,
			}).Info("Dynamic channel released")
		}
	})
	eventBus.Subscribe(events.EventTypeOwnershipTransferred, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.OwnershipTransferredEvent); ok {
			log.WithFields(log.Fields{
				"guildID":         e.GuildID,
				"channelID":       e.ChannelID,
				"previousOwnerID": e.PreviousOwnerID,
				"newOwnerID":      e.NewOwnerID,
			}).Info("Channel ownership transferred")
		}
	})

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// handleVoiceStateUpdate translates gateway voice state updates into
// presence transition events for the lifecycle service. Failures are logged
// and never block the next gateway event.
func (b *Bot) handleVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	event := service.VoiceStateEvent{
		GuildID:        parseSnowflake(vs.GuildID),
		MemberID:       parseSnowflake(vs.UserID),
		AfterChannelID: parseSnowflake(vs.ChannelID),
	}
	if vs.BeforeUpdate != nil {
		event.BeforeChannelID = parseSnowflake(vs.BeforeUpdate.ChannelID)
	}

	if err := b.lifecycleService.HandleVoiceStateUpdate(context.Background(), event); err != nil {
		log.WithFields(log.Fields{
			"guildID":         event.GuildID,
			"memberID":        event.MemberID,
			"beforeChannelID": event.BeforeChannelID,
			"afterChannelID":  event.AfterChannelID,
		}).WithError(err).Error("Voice state update handling failed")
	}
}

func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "voice",
			Description: "Voice channel management",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "setup",
					Description: "Setup the join-to-create voice system (Admin only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "category_name",
							Description: "Name for the voice category",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "channel_name",
							Description: "Name for the join-to-create channel",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "setlimit",
					Description: "Set the default limit for new channels (Admin only)",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "limit",
							Description: "Default user limit (0 = unlimited)",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "lock",
					Description: "Lock your voice channel",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "unlock",
					Description: "Unlock your voice channel",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "permit",
					Description: "Permit a user to join your channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "member",
							Description: "User to permit",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reject",
					Description: "Reject/Remove a user from your channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "member",
							Description: "User to reject",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "limit",
					Description: "Set the user limit for your channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "limit",
							Description: "User limit (0 = unlimited)",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "name",
					Description: "Change the name of your channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "New channel name",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "claim",
					Description: "Claim ownership of the channel if the owner left",
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.ApplicationCommandData().Name != "voice" {
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "setup":
		b.handleSetup(s, i, options[0].Options)
	case "setlimit":
		b.handleSetDefaultLimit(s, i, options[0].Options)
	case "lock":
		b.handleLock(s, i)
	case "unlock":
		b.handleUnlock(s, i)
	case "permit":
		b.handlePermit(s, i, options[0].Options)
	case "reject":
		b.handleReject(s, i, options[0].Options)
	case "limit":
		b.handleLimit(s, i, options[0].Options)
	case "name":
		b.handleName(s, i, options[0].Options)
	case "claim":
		b.handleClaim(s, i)
	}
}
