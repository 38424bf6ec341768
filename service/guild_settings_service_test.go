package service

import (
	"context"
	"testing"

	"voicebot/events"
	"voicebot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type guildSettingsMocks struct {
	factory   *MockUnitOfWorkFactory
	uow       *MockUnitOfWork
	setupRepo *MockGuildSetupRepository
	defaults  *MockGuildDefaultsRepository
	prefs     *MockUserPreferenceRepository
	active    *MockActiveChannelRepository
	channels  *MockChannelService
	publisher *MockEventPublisher
}

func newGuildSettingsMocks() *guildSettingsMocks {
	m := &guildSettingsMocks{
		factory:   new(MockUnitOfWorkFactory),
		uow:       new(MockUnitOfWork),
		setupRepo: new(MockGuildSetupRepository),
		defaults:  new(MockGuildDefaultsRepository),
		prefs:     new(MockUserPreferenceRepository),
		active:    new(MockActiveChannelRepository),
		channels:  new(MockChannelService),
		publisher: new(MockEventPublisher),
	}
	m.uow.SetRepositories(m.setupRepo, m.defaults, m.prefs, m.active, m.publisher)
	return m
}

func TestGuildSettingsService_Setup(t *testing.T) {
	ctx := context.Background()
	m := newGuildSettingsMocks()
	service := NewGuildSettingsService(m.factory, m.channels, 0)

	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)

	// Remote structures first, local record last
	m.channels.On("CreateCategory", ctx, int64(10), "Voice Channels").Return(int64(200), nil)
	m.channels.On("CreateVoiceChannel", ctx, int64(10), int64(200), "Join To Create").Return(int64(100), nil)
	m.setupRepo.On("Upsert", ctx, mock.MatchedBy(func(s *models.GuildSetup) bool {
		return s.GuildID == 10 && s.OwnerID == 99 && s.LobbyChannelID == 100 && s.CategoryID == 200
	})).Return(nil)
	m.publisher.On("Publish", events.GuildSetupCompletedEvent{
		GuildID:        10,
		OwnerID:        99,
		LobbyChannelID: 100,
		CategoryID:     200,
	}).Return()

	setup, err := service.Setup(ctx, 10, 99, 99, "Voice Channels", "Join To Create")

	assert.NoError(t, err)
	assert.Equal(t, int64(100), setup.LobbyChannelID)
	assert.Equal(t, int64(200), setup.CategoryID)
	m.channels.AssertExpectations(t)
	m.setupRepo.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}

func TestGuildSettingsService_Setup_RejectsNonOwner(t *testing.T) {
	ctx := context.Background()
	m := newGuildSettingsMocks()
	service := NewGuildSettingsService(m.factory, m.channels, 0)

	setup, err := service.Setup(ctx, 10, 42, 99, "Voice Channels", "Join To Create")

	assert.Nil(t, setup)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	m.channels.AssertNotCalled(t, "CreateCategory", mock.Anything, mock.Anything, mock.Anything)
}

func TestGuildSettingsService_Setup_AllowsConfiguredAdmin(t *testing.T) {
	ctx := context.Background()
	m := newGuildSettingsMocks()
	service := NewGuildSettingsService(m.factory, m.channels, 42)

	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)

	m.channels.On("CreateCategory", ctx, int64(10), "Voice Channels").Return(int64(200), nil)
	m.channels.On("CreateVoiceChannel", ctx, int64(10), int64(200), "Join To Create").Return(int64(100), nil)
	m.setupRepo.On("Upsert", ctx, mock.AnythingOfType("*models.GuildSetup")).Return(nil)
	m.publisher.On("Publish", mock.AnythingOfType("events.GuildSetupCompletedEvent")).Return()

	_, err := service.Setup(ctx, 10, 42, 99, "Voice Channels", "Join To Create")

	assert.NoError(t, err)
	m.channels.AssertExpectations(t)
}

func TestGuildSettingsService_SetDefaultLimit_SeedsDefaultName(t *testing.T) {
	ctx := context.Background()
	m := newGuildSettingsMocks()
	service := NewGuildSettingsService(m.factory, m.channels, 0)

	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)

	m.defaults.On("Get", ctx, int64(10)).Return(nil, nil)
	m.channels.On("MemberDisplayName", ctx, int64(10), int64(99)).Return("Marcus")
	m.defaults.On("Upsert", ctx, mock.MatchedBy(func(d *models.GuildDefaults) bool {
		return d.GuildID == 10 && d.DefaultName == "Marcus's channel" && d.DefaultLimit == 5
	})).Return(nil)

	err := service.SetDefaultLimit(ctx, 10, 99, 99, 5)

	assert.NoError(t, err)
	m.defaults.AssertExpectations(t)
}

func TestGuildSettingsService_SetDefaultLimit_KeepsExistingName(t *testing.T) {
	ctx := context.Background()
	m := newGuildSettingsMocks()
	service := NewGuildSettingsService(m.factory, m.channels, 0)

	existing := &models.GuildDefaults{GuildID: 10, DefaultName: "general", DefaultLimit: 3}

	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)

	m.defaults.On("Get", ctx, int64(10)).Return(existing, nil)
	m.channels.On("MemberDisplayName", ctx, int64(10), int64(99)).Return("Marcus")
	m.defaults.On("Upsert", ctx, mock.MatchedBy(func(d *models.GuildDefaults) bool {
		return d.GuildID == 10 && d.DefaultName == "general" && d.DefaultLimit == 7
	})).Return(nil)

	err := service.SetDefaultLimit(ctx, 10, 99, 99, 7)

	assert.NoError(t, err)
	m.defaults.AssertExpectations(t)
}

func TestGuildSettingsService_SetDefaultLimit_RejectsNonOwner(t *testing.T) {
	ctx := context.Background()
	m := newGuildSettingsMocks()
	service := NewGuildSettingsService(m.factory, m.channels, 0)

	err := service.SetDefaultLimit(ctx, 10, 42, 99, 5)

	assert.ErrorIs(t, err, ErrPermissionDenied)
	m.defaults.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}
