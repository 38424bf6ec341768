package service

import (
	"context"
	"fmt"

	"voicebot/events"
	"voicebot/models"
)

// guildSettingsService implements the GuildSettingsService interface
type guildSettingsService struct {
	uowFactory     UnitOfWorkFactory
	channels       ChannelService
	adminDiscordID int64
}

// NewGuildSettingsService creates a new guild settings service. adminDiscordID
// optionally names a user who may run setup commands in any guild (0 disables it).
func NewGuildSettingsService(uowFactory UnitOfWorkFactory, channels ChannelService, adminDiscordID int64) GuildSettingsService {
	return &guildSettingsService{
		uowFactory:     uowFactory,
		channels:       channels,
		adminDiscordID: adminDiscordID,
	}
}

// Setup provisions a category and lobby channel and records the guild setup.
// Re-running setup overwrites the previous row wholesale; the old category
// and lobby are left in place for the operator to remove.
func (s *guildSettingsService) Setup(ctx context.Context, guildID, actingUserID, guildOwnerID int64, categoryName, channelName string) (*models.GuildSetup, error) {
	if !s.authorized(actingUserID, guildOwnerID) {
		return nil, ErrPermissionDenied
	}

	categoryID, err := s.channels.CreateCategory(ctx, guildID, categoryName)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	lobbyChannelID, err := s.channels.CreateVoiceChannel(ctx, guildID, categoryID, channelName)
	if err != nil {
		return nil, fmt.Errorf("failed to create lobby channel: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	setup := &models.GuildSetup{
		GuildID:        guildID,
		OwnerID:        actingUserID,
		LobbyChannelID: lobbyChannelID,
		CategoryID:     categoryID,
	}
	if err := uow.GuildSetupRepository().Upsert(ctx, setup); err != nil {
		return nil, fmt.Errorf("failed to record guild setup: %w", err)
	}

	uow.EventBus().Publish(events.GuildSetupCompletedEvent{
		GuildID:        guildID,
		OwnerID:        actingUserID,
		LobbyChannelID: lobbyChannelID,
		CategoryID:     categoryID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return setup, nil
}

// SetDefaultLimit records the guild-wide default limit for new channels,
// seeding the default name from the acting user's display name on first insert.
func (s *guildSettingsService) SetDefaultLimit(ctx context.Context, guildID, actingUserID, guildOwnerID int64, limit int) error {
	if !s.authorized(actingUserID, guildOwnerID) {
		return ErrPermissionDenied
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.GuildDefaultsRepository().Get(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to get guild defaults: %w", err)
	}

	defaultName := fmt.Sprintf("%s's channel", s.channels.MemberDisplayName(ctx, guildID, actingUserID))
	if existing != nil {
		defaultName = existing.DefaultName
	}

	if err := uow.GuildDefaultsRepository().Upsert(ctx, &models.GuildDefaults{
		GuildID:      guildID,
		DefaultName:  defaultName,
		DefaultLimit: limit,
	}); err != nil {
		return fmt.Errorf("failed to persist guild defaults: %w", err)
	}

	return uow.Commit()
}

func (s *guildSettingsService) authorized(actingUserID, guildOwnerID int64) bool {
	if actingUserID == guildOwnerID {
		return true
	}
	return s.adminDiscordID != 0 && actingUserID == s.adminDiscordID
}
