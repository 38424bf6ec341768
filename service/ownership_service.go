package service

import (
	"context"
	"fmt"

	"voicebot/events"
	"voicebot/models"
)

// ownershipService implements the OwnershipService interface
type ownershipService struct {
	uowFactory UnitOfWorkFactory
	channels   ChannelService
}

// NewOwnershipService creates a new ownership service
func NewOwnershipService(uowFactory UnitOfWorkFactory, channels ChannelService) OwnershipService {
	return &ownershipService{
		uowFactory: uowFactory,
		channels:   channels,
	}
}

// Claim transfers ownership of an abandoned dynamic channel to the caller.
// Ownership can only pass while the recorded owner is physically absent.
func (s *ownershipService) Claim(ctx context.Context, guildID, userID, channelID int64) (*ClaimResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tracked, err := uow.ActiveChannelRepository().GetByChannelID(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up channel: %w", err)
	}
	if tracked == nil {
		return nil, ErrNotOwnable
	}

	if tracked.OwnerID == userID {
		// Re-claiming your own channel is a no-op success
		return &ClaimResult{
			ChannelID:       channelID,
			PreviousOwnerID: userID,
			NewOwnerID:      userID,
			Transferred:     false,
		}, nil
	}

	members, err := s.channels.ChannelMembers(ctx, guildID, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to check channel membership: %w", err)
	}
	for _, memberID := range members {
		if memberID == tracked.OwnerID {
			return nil, &AlreadyOwnedError{OwnerID: tracked.OwnerID}
		}
	}

	updated, err := uow.ActiveChannelRepository().TransferOwner(ctx, channelID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to transfer ownership: %w", err)
	}
	if !updated {
		// The row vanished between the lookup and the update: a cleanup won
		// the race and the channel is on its way out.
		return nil, ErrNotOwnable
	}

	// Demote the old owner but keep their access
	if err := s.channels.SetMemberPermissions(ctx, channelID, tracked.OwnerID, PermissionUpdate{
		Connect: boolPtr(true),
		View:    boolPtr(true),
		Manage:  boolPtr(false),
	}); err != nil {
		return nil, fmt.Errorf("failed to demote previous owner: %w", err)
	}

	if err := s.channels.SetMemberPermissions(ctx, channelID, userID, PermissionUpdate{
		Connect: boolPtr(true),
		View:    boolPtr(true),
		Manage:  boolPtr(true),
	}); err != nil {
		return nil, fmt.Errorf("failed to grant new owner permissions: %w", err)
	}

	uow.EventBus().Publish(events.OwnershipTransferredEvent{
		GuildID:         guildID,
		ChannelID:       channelID,
		PreviousOwnerID: tracked.OwnerID,
		NewOwnerID:      userID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &ClaimResult{
		ChannelID:       channelID,
		PreviousOwnerID: tracked.OwnerID,
		NewOwnerID:      userID,
		Transferred:     true,
	}, nil
}

// Lock denies connect on the caller's channel for the guild's everyone role
func (s *ownershipService) Lock(ctx context.Context, guildID, userID int64) error {
	owned, err := s.ownedChannel(ctx, userID)
	if err != nil {
		return err
	}

	// The everyone role shares the guild's ID
	return s.channels.SetRolePermissions(ctx, owned.ChannelID, guildID, PermissionUpdate{
		Connect: boolPtr(false),
	})
}

// Unlock restores connect on the caller's channel for the guild's everyone role
func (s *ownershipService) Unlock(ctx context.Context, guildID, userID int64) error {
	owned, err := s.ownedChannel(ctx, userID)
	if err != nil {
		return err
	}

	return s.channels.SetRolePermissions(ctx, owned.ChannelID, guildID, PermissionUpdate{
		Connect: boolPtr(true),
	})
}

// Permit grants a member connect access to the caller's channel
func (s *ownershipService) Permit(ctx context.Context, guildID, userID, memberID int64) error {
	owned, err := s.ownedChannel(ctx, userID)
	if err != nil {
		return err
	}

	return s.channels.SetMemberPermissions(ctx, owned.ChannelID, memberID, PermissionUpdate{
		Connect: boolPtr(true),
	})
}

// Reject revokes a member's connect access to the caller's channel. A member
// who is currently connected is relocated to the guild's lobby channel when
// one is configured.
func (s *ownershipService) Reject(ctx context.Context, guildID, userID, memberID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	owned, err := uow.ActiveChannelRepository().GetByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up owned channel: %w", err)
	}
	if owned == nil {
		return ErrNotOwner
	}

	members, err := s.channels.ChannelMembers(ctx, guildID, owned.ChannelID)
	if err != nil {
		return fmt.Errorf("failed to check channel membership: %w", err)
	}

	for _, present := range members {
		if present != memberID {
			continue
		}
		setup, err := uow.GuildSetupRepository().Get(ctx, guildID)
		if err != nil {
			return fmt.Errorf("failed to get guild setup: %w", err)
		}
		if setup != nil {
			if err := s.channels.MoveMember(ctx, guildID, memberID, setup.LobbyChannelID); err != nil {
				return fmt.Errorf("failed to relocate rejected member: %w", err)
			}
		}
		break
	}

	return s.channels.SetMemberPermissions(ctx, owned.ChannelID, memberID, PermissionUpdate{
		Connect: boolPtr(false),
		View:    boolPtr(true),
	})
}

// SetLimit edits the caller's channel limit and persists it as their
// preference, keeping whatever name was stored before.
func (s *ownershipService) SetLimit(ctx context.Context, guildID, userID int64, limit int) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	owned, err := uow.ActiveChannelRepository().GetByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up owned channel: %w", err)
	}
	if owned == nil {
		return ErrNotOwner
	}

	if err := s.channels.EditChannel(ctx, owned.ChannelID, ChannelEdit{UserLimit: intPtr(limit)}); err != nil {
		return fmt.Errorf("failed to edit channel limit: %w", err)
	}

	pref, err := uow.UserPreferenceRepository().Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user preference: %w", err)
	}

	name := s.channels.MemberDisplayName(ctx, guildID, userID)
	if pref != nil {
		name = pref.ChannelName
	}
	if err := uow.UserPreferenceRepository().Upsert(ctx, &models.UserPreference{
		UserID:       userID,
		ChannelName:  name,
		ChannelLimit: limit,
	}); err != nil {
		return fmt.Errorf("failed to persist user preference: %w", err)
	}

	return uow.Commit()
}

// Rename edits the caller's channel name and persists it as their
// preference, keeping whatever limit was stored before.
func (s *ownershipService) Rename(ctx context.Context, guildID, userID int64, name string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	owned, err := uow.ActiveChannelRepository().GetByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up owned channel: %w", err)
	}
	if owned == nil {
		return ErrNotOwner
	}

	if err := s.channels.EditChannel(ctx, owned.ChannelID, ChannelEdit{Name: stringPtr(name)}); err != nil {
		return fmt.Errorf("failed to edit channel name: %w", err)
	}

	pref, err := uow.UserPreferenceRepository().Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user preference: %w", err)
	}

	limit := 0
	if pref != nil {
		limit = pref.ChannelLimit
	}
	if err := uow.UserPreferenceRepository().Upsert(ctx, &models.UserPreference{
		UserID:       userID,
		ChannelName:  name,
		ChannelLimit: limit,
	}); err != nil {
		return fmt.Errorf("failed to persist user preference: %w", err)
	}

	return uow.Commit()
}

// ownedChannel resolves the live channel owned by a user for the read-only
// commands, rejecting callers who own nothing.
func (s *ownershipService) ownedChannel(ctx context.Context, userID int64) (*models.ActiveChannel, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	owned, err := uow.ActiveChannelRepository().GetByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up owned channel: %w", err)
	}
	if owned == nil {
		return nil, ErrNotOwner
	}
	return owned, nil
}
