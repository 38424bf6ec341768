package service

import (
	"context"

	"voicebot/events"
	"voicebot/models"

	"github.com/stretchr/testify/mock"
)

// MockGuildSetupRepository is a mock implementation of GuildSetupRepository
type MockGuildSetupRepository struct {
	mock.Mock
}

func (m *MockGuildSetupRepository) Get(ctx context.Context, guildID int64) (*models.GuildSetup, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSetup), args.Error(1)
}

func (m *MockGuildSetupRepository) Upsert(ctx context.Context, setup *models.GuildSetup) error {
	args := m.Called(ctx, setup)
	return args.Error(0)
}

// MockGuildDefaultsRepository is a mock implementation of GuildDefaultsRepository
type MockGuildDefaultsRepository struct {
	mock.Mock
}

func (m *MockGuildDefaultsRepository) Get(ctx context.Context, guildID int64) (*models.GuildDefaults, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildDefaults), args.Error(1)
}

func (m *MockGuildDefaultsRepository) Upsert(ctx context.Context, defaults *models.GuildDefaults) error {
	args := m.Called(ctx, defaults)
	return args.Error(0)
}

// MockUserPreferenceRepository is a mock implementation of UserPreferenceRepository
type MockUserPreferenceRepository struct {
	mock.Mock
}

func (m *MockUserPreferenceRepository) Get(ctx context.Context, userID int64) (*models.UserPreference, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPreference), args.Error(1)
}

func (m *MockUserPreferenceRepository) Upsert(ctx context.Context, pref *models.UserPreference) error {
	args := m.Called(ctx, pref)
	return args.Error(0)
}

// MockActiveChannelRepository is a mock implementation of ActiveChannelRepository
type MockActiveChannelRepository struct {
	mock.Mock
}

func (m *MockActiveChannelRepository) GetByOwner(ctx context.Context, ownerID int64) (*models.ActiveChannel, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActiveChannel), args.Error(1)
}

func (m *MockActiveChannelRepository) GetByChannelID(ctx context.Context, channelID int64) (*models.ActiveChannel, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActiveChannel), args.Error(1)
}

func (m *MockActiveChannelRepository) ListByGuild(ctx context.Context, guildID int64) ([]*models.ActiveChannel, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ActiveChannel), args.Error(1)
}

func (m *MockActiveChannelRepository) Create(ctx context.Context, channel *models.ActiveChannel) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockActiveChannelRepository) TransferOwner(ctx context.Context, channelID, newOwnerID int64) (bool, error) {
	args := m.Called(ctx, channelID, newOwnerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockActiveChannelRepository) Delete(ctx context.Context, channelID int64) (bool, error) {
	args := m.Called(ctx, channelID)
	return args.Bool(0), args.Error(1)
}

// MockChannelService is a mock implementation of ChannelService
type MockChannelService struct {
	mock.Mock
}

func (m *MockChannelService) CreateCategory(ctx context.Context, guildID int64, name string) (int64, error) {
	args := m.Called(ctx, guildID, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChannelService) CreateVoiceChannel(ctx context.Context, guildID, categoryID int64, name string) (int64, error) {
	args := m.Called(ctx, guildID, categoryID, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChannelService) DeleteChannel(ctx context.Context, channelID int64) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *MockChannelService) EditChannel(ctx context.Context, channelID int64, edit ChannelEdit) error {
	args := m.Called(ctx, channelID, edit)
	return args.Error(0)
}

func (m *MockChannelService) SetMemberPermissions(ctx context.Context, channelID, memberID int64, perms PermissionUpdate) error {
	args := m.Called(ctx, channelID, memberID, perms)
	return args.Error(0)
}

func (m *MockChannelService) SetRolePermissions(ctx context.Context, channelID, roleID int64, perms PermissionUpdate) error {
	args := m.Called(ctx, channelID, roleID, perms)
	return args.Error(0)
}

func (m *MockChannelService) MoveMember(ctx context.Context, guildID, memberID, channelID int64) error {
	args := m.Called(ctx, guildID, memberID, channelID)
	return args.Error(0)
}

func (m *MockChannelService) ChannelMembers(ctx context.Context, guildID, channelID int64) ([]int64, error) {
	args := m.Called(ctx, guildID, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockChannelService) ChannelExists(ctx context.Context, channelID int64) (bool, error) {
	args := m.Called(ctx, channelID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChannelService) MemberDisplayName(ctx context.Context, guildID, memberID int64) string {
	args := m.Called(ctx, guildID, memberID)
	return args.String(0)
}

func (m *MockChannelService) BotUserID() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// injected through SetRepositories rather than mock expectations so tests
// don't have to stub every getter.
type MockUnitOfWork struct {
	mock.Mock
	guildSetupRepo     GuildSetupRepository
	guildDefaultsRepo  GuildDefaultsRepository
	userPreferenceRepo UserPreferenceRepository
	activeChannelRepo  ActiveChannelRepository
	eventPublisher     EventPublisher
}

// SetRepositories configures the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(
	guildSetupRepo GuildSetupRepository,
	guildDefaultsRepo GuildDefaultsRepository,
	userPreferenceRepo UserPreferenceRepository,
	activeChannelRepo ActiveChannelRepository,
	eventPublisher EventPublisher,
) {
	m.guildSetupRepo = guildSetupRepo
	m.guildDefaultsRepo = guildDefaultsRepo
	m.userPreferenceRepo = userPreferenceRepo
	m.activeChannelRepo = activeChannelRepo
	m.eventPublisher = eventPublisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) GuildSetupRepository() GuildSetupRepository {
	return m.guildSetupRepo
}

func (m *MockUnitOfWork) GuildDefaultsRepository() GuildDefaultsRepository {
	return m.guildDefaultsRepo
}

func (m *MockUnitOfWork) UserPreferenceRepository() UserPreferenceRepository {
	return m.userPreferenceRepo
}

func (m *MockUnitOfWork) ActiveChannelRepository() ActiveChannelRepository {
	return m.activeChannelRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventPublisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
