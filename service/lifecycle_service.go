package service

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"voicebot/events"
	"voicebot/models"
)

// lifecycleService implements the LifecycleService interface
type lifecycleService struct {
	uowFactory UnitOfWorkFactory
	channels   ChannelService
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(uowFactory UnitOfWorkFactory, channels ChannelService) LifecycleService {
	return &lifecycleService{
		uowFactory: uowFactory,
		channels:   channels,
	}
}

// HandleVoiceStateUpdate processes one presence transition. The leave side is
// evaluated before the join side because a move carries both. Each side runs
// in its own unit of work; a failure on one side is logged and does not stop
// the other, and no failure escalates past this method.
func (s *lifecycleService) HandleVoiceStateUpdate(ctx context.Context, event VoiceStateEvent) error {
	var firstErr error

	if event.BeforeChannelID != 0 {
		if err := s.cleanupVacatedChannel(ctx, event.GuildID, event.BeforeChannelID); err != nil {
			log.WithFields(log.Fields{
				"guildID":   event.GuildID,
				"memberID":  event.MemberID,
				"channelID": event.BeforeChannelID,
			}).WithError(err).Error("Failed to clean up vacated channel")
			firstErr = err
		}
	}

	if event.AfterChannelID != 0 {
		if err := s.provisionFromLobby(ctx, event.GuildID, event.MemberID, event.AfterChannelID); err != nil {
			log.WithFields(log.Fields{
				"guildID":   event.GuildID,
				"memberID":  event.MemberID,
				"channelID": event.AfterChannelID,
			}).WithError(err).Error("Failed to provision dynamic channel")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// cleanupVacatedChannel deletes a tracked dynamic channel once its last
// member has left, then removes the tracking row. The remote delete happens
// before the local commit; a channel that is already gone counts as deleted.
func (s *lifecycleService) cleanupVacatedChannel(ctx context.Context, guildID, channelID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tracked, err := uow.ActiveChannelRepository().GetByChannelID(ctx, channelID)
	if err != nil {
		return fmt.Errorf("failed to look up vacated channel: %w", err)
	}
	if tracked == nil {
		// Not a dynamic channel
		return nil
	}

	members, err := s.channels.ChannelMembers(ctx, guildID, channelID)
	if err != nil {
		return fmt.Errorf("failed to check channel membership: %w", err)
	}
	if len(members) > 0 {
		// Someone is still connected
		return nil
	}

	if err := s.channels.DeleteChannel(ctx, channelID); err != nil && !errors.Is(err, ErrChannelNotFound) {
		// Stop tracking regardless: the next event cannot re-trigger cleanup
		// for a channel we no longer track, and retrying forever would starve
		// the event stream.
		log.WithFields(log.Fields{
			"guildID":   guildID,
			"channelID": channelID,
		}).WithError(err).Error("Failed to delete remote channel, removing tracking row anyway")
	}

	deleted, err := uow.ActiveChannelRepository().Delete(ctx, channelID)
	if err != nil {
		return fmt.Errorf("failed to delete channel row: %w", err)
	}
	if deleted {
		uow.EventBus().Publish(events.ChannelReleasedEvent{
			GuildID:   guildID,
			OwnerID:   tracked.OwnerID,
			ChannelID: channelID,
		})
	}

	return uow.Commit()
}

// provisionFromLobby creates a dynamic channel for a member who joined the
// guild's lobby channel, moves them into it, and records ownership.
func (s *lifecycleService) provisionFromLobby(ctx context.Context, guildID, memberID, joinedChannelID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	setup, err := uow.GuildSetupRepository().Get(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to get guild setup: %w", err)
	}
	if setup == nil || setup.LobbyChannelID != joinedChannelID {
		// Guild not set up, or the member joined an ordinary channel
		return nil
	}

	existing, err := uow.ActiveChannelRepository().GetByOwner(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to check existing ownership: %w", err)
	}
	if existing != nil {
		// A user owns at most one live channel. This happens when a member
		// rejoins the lobby before their previous channel's cleanup landed.
		log.WithFields(log.Fields{
			"guildID":        guildID,
			"memberID":       memberID,
			"ownedChannelID": existing.ChannelID,
		}).Warn("Member already owns a live channel, skipping provisioning")
		return nil
	}

	exists, err := s.channels.ChannelExists(ctx, setup.CategoryID)
	if err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if !exists {
		// The configured category was deleted out from under us. The joining
		// member has no interaction to answer, so the operator log is the
		// only reconciliation surface.
		log.WithFields(log.Fields{
			"guildID":    guildID,
			"categoryID": setup.CategoryID,
		}).Warn("Configured category no longer exists, skipping provisioning")
		return nil
	}

	pref, err := uow.UserPreferenceRepository().Get(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to get user preference: %w", err)
	}
	defaults, err := uow.GuildDefaultsRepository().Get(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to get guild defaults: %w", err)
	}

	displayName := s.channels.MemberDisplayName(ctx, guildID, memberID)
	name, limit := ResolveChannelSettings(pref, defaults, displayName)

	// Remote state first, local commit last. A failure below leaves a
	// partially configured remote channel for the operator to reconcile;
	// nothing is rolled back automatically.
	channelID, err := s.channels.CreateVoiceChannel(ctx, guildID, setup.CategoryID, name)
	if err != nil {
		return fmt.Errorf("failed to create voice channel: %w", err)
	}

	if err := s.channels.MoveMember(ctx, guildID, memberID, channelID); err != nil {
		return fmt.Errorf("failed to move member into channel %d: %w", channelID, err)
	}

	if err := s.channels.SetMemberPermissions(ctx, channelID, s.channels.BotUserID(), PermissionUpdate{
		Connect: boolPtr(true),
		View:    boolPtr(true),
	}); err != nil {
		return fmt.Errorf("failed to grant bot permissions on channel %d: %w", channelID, err)
	}

	if err := s.channels.SetMemberPermissions(ctx, channelID, memberID, PermissionUpdate{
		Connect: boolPtr(true),
		View:    boolPtr(true),
		Manage:  boolPtr(true),
	}); err != nil {
		return fmt.Errorf("failed to grant owner permissions on channel %d: %w", channelID, err)
	}

	// Second pass for the limit: it is not settable at creation time
	if err := s.channels.EditChannel(ctx, channelID, ChannelEdit{
		Name:      stringPtr(name),
		UserLimit: intPtr(limit),
	}); err != nil {
		return fmt.Errorf("failed to apply settings to channel %d: %w", channelID, err)
	}

	if err := uow.ActiveChannelRepository().Create(ctx, &models.ActiveChannel{
		ChannelID: channelID,
		OwnerID:   memberID,
		GuildID:   guildID,
	}); err != nil {
		return fmt.Errorf("failed to record channel ownership: %w", err)
	}

	uow.EventBus().Publish(events.ChannelProvisionedEvent{
		GuildID:   guildID,
		OwnerID:   memberID,
		ChannelID: channelID,
		Name:      name,
		UserLimit: limit,
	})

	return uow.Commit()
}
