package service

import (
	"context"

	"voicebot/events"
	"voicebot/models"
)

// GuildSetupRepository defines the interface for guild setup data access
type GuildSetupRepository interface {
	// Get retrieves the setup row for a guild, or nil if the guild was never set up
	Get(ctx context.Context, guildID int64) (*models.GuildSetup, error)

	// Upsert creates or overwrites the setup row for a guild
	Upsert(ctx context.Context, setup *models.GuildSetup) error
}

// GuildDefaultsRepository defines the interface for guild default settings data access
type GuildDefaultsRepository interface {
	// Get retrieves the defaults row for a guild, or nil if none exists
	Get(ctx context.Context, guildID int64) (*models.GuildDefaults, error)

	// Upsert creates or overwrites the defaults row for a guild
	Upsert(ctx context.Context, defaults *models.GuildDefaults) error
}

// UserPreferenceRepository defines the interface for per-user channel preference data access
type UserPreferenceRepository interface {
	// Get retrieves a user's preference row, or nil if none exists
	Get(ctx context.Context, userID int64) (*models.UserPreference, error)

	// Upsert creates or overwrites a user's preference row
	Upsert(ctx context.Context, pref *models.UserPreference) error
}

// ActiveChannelRepository defines the interface for live dynamic channel tracking
type ActiveChannelRepository interface {
	// GetByOwner retrieves the live channel owned by a user, or nil if none exists
	GetByOwner(ctx context.Context, ownerID int64) (*models.ActiveChannel, error)

	// GetByChannelID retrieves a live channel row by channel ID, or nil if untracked
	GetByChannelID(ctx context.Context, channelID int64) (*models.ActiveChannel, error)

	// ListByGuild returns all live channels in a guild
	ListByGuild(ctx context.Context, guildID int64) ([]*models.ActiveChannel, error)

	// Create inserts a new live channel row. The unique constraint on owner_id
	// enforces the at-most-one-live-channel-per-user invariant.
	Create(ctx context.Context, channel *models.ActiveChannel) error

	// TransferOwner updates the owner of a live channel. Returns false when no
	// row exists, so a claim racing a cleanup no-ops instead of failing loudly.
	TransferOwner(ctx context.Context, channelID, newOwnerID int64) (bool, error)

	// Delete removes a live channel row. Returns false when the row was already
	// gone, making cleanup idempotent.
	Delete(ctx context.Context, channelID int64) (bool, error)
}

// PermissionUpdate describes a tri-state permission overwrite for a channel.
// A nil field leaves the permission unset in the overwrite.
type PermissionUpdate struct {
	Connect *bool
	View    *bool
	Manage  *bool
}

// ChannelEdit describes a partial edit of a remote channel
type ChannelEdit struct {
	Name      *string
	UserLimit *int
}

// ChannelService defines the remote channel operations consumed by the
// services. Implementations map remote "not found" and "forbidden" outcomes
// to ErrChannelNotFound and ErrPermissionDenied.
type ChannelService interface {
	// CreateCategory creates a channel category and returns its ID
	CreateCategory(ctx context.Context, guildID int64, name string) (int64, error)

	// CreateVoiceChannel creates a voice channel under a category and returns its ID
	CreateVoiceChannel(ctx context.Context, guildID, categoryID int64, name string) (int64, error)

	// DeleteChannel deletes a channel
	DeleteChannel(ctx context.Context, channelID int64) error

	// EditChannel applies a partial edit to a channel
	EditChannel(ctx context.Context, channelID int64, edit ChannelEdit) error

	// SetMemberPermissions replaces the permission overwrite for a member
	SetMemberPermissions(ctx context.Context, channelID, memberID int64, perms PermissionUpdate) error

	// SetRolePermissions replaces the permission overwrite for a role
	SetRolePermissions(ctx context.Context, channelID, roleID int64, perms PermissionUpdate) error

	// MoveMember moves a member into a voice channel
	MoveMember(ctx context.Context, guildID, memberID, channelID int64) error

	// ChannelMembers returns the IDs of members currently connected to a voice channel
	ChannelMembers(ctx context.Context, guildID, channelID int64) ([]int64, error)

	// ChannelExists reports whether a channel (or category) still exists remotely
	ChannelExists(ctx context.Context, channelID int64) (bool, error)

	// MemberDisplayName returns the best available display name for a member
	MemberDisplayName(ctx context.Context, guildID, memberID int64) string

	// BotUserID returns the bot's own user ID
	BotUserID() int64
}

// VoiceStateEvent is a presence transition delivered by the gateway.
// A zero channel ID means "not in a voice channel" on that side; a move
// carries both a before and an after channel.
type VoiceStateEvent struct {
	GuildID         int64
	MemberID        int64
	BeforeChannelID int64
	AfterChannelID  int64
}

// LifecycleService drives dynamic channel creation and cleanup from
// presence transition events
type LifecycleService interface {
	// HandleVoiceStateUpdate processes one presence transition: leave-side
	// cleanup first, then join-side provisioning. Failures on either side are
	// logged and never block subsequent events.
	HandleVoiceStateUpdate(ctx context.Context, event VoiceStateEvent) error
}

// ClaimResult describes the outcome of a successful claim
type ClaimResult struct {
	ChannelID       int64
	PreviousOwnerID int64
	NewOwnerID      int64
	// Transferred is false when the caller already owned the channel
	Transferred bool
}

// OwnershipService exposes owner-gated operations on live dynamic channels
type OwnershipService interface {
	// Claim transfers ownership of an abandoned dynamic channel to the caller.
	// Returns ErrNotOwnable for untracked channels and AlreadyOwnedError while
	// the recorded owner is still present. Re-claiming an owned channel is an
	// idempotent success.
	Claim(ctx context.Context, guildID, userID, channelID int64) (*ClaimResult, error)

	// Lock denies connect on the caller's channel for the guild's everyone role
	Lock(ctx context.Context, guildID, userID int64) error

	// Unlock restores connect on the caller's channel for the guild's everyone role
	Unlock(ctx context.Context, guildID, userID int64) error

	// Permit grants a member connect access to the caller's channel
	Permit(ctx context.Context, guildID, userID, memberID int64) error

	// Reject revokes a member's connect access and, if they are currently
	// present, relocates them to the guild's lobby channel when one is configured
	Reject(ctx context.Context, guildID, userID, memberID int64) error

	// SetLimit edits the caller's channel limit and persists it as their preference
	SetLimit(ctx context.Context, guildID, userID int64, limit int) error

	// Rename edits the caller's channel name and persists it as their preference
	Rename(ctx context.Context, guildID, userID int64, name string) error
}

// GuildSettingsService exposes the guild-level configuration commands
type GuildSettingsService interface {
	// Setup provisions a category and lobby channel and records the guild setup.
	// Only the guild owner or the configured admin may run it.
	Setup(ctx context.Context, guildID, actingUserID, guildOwnerID int64, categoryName, channelName string) (*models.GuildSetup, error)

	// SetDefaultLimit records the guild-wide default limit for new channels.
	// Only the guild owner or the configured admin may run it.
	SetDefaultLimit(ctx context.Context, guildID, actingUserID, guildOwnerID int64, limit int) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	GuildSetupRepository() GuildSetupRepository
	GuildDefaultsRepository() GuildDefaultsRepository
	UserPreferenceRepository() UserPreferenceRepository
	ActiveChannelRepository() ActiveChannelRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
