package service

import (
	"context"
	"errors"
	"testing"

	"voicebot/events"
	"voicebot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type ownershipMocks struct {
	factory   *MockUnitOfWorkFactory
	uow       *MockUnitOfWork
	setupRepo *MockGuildSetupRepository
	defaults  *MockGuildDefaultsRepository
	prefs     *MockUserPreferenceRepository
	active    *MockActiveChannelRepository
	channels  *MockChannelService
	publisher *MockEventPublisher
}

func newOwnershipMocks() *ownershipMocks {
	m := &ownershipMocks{
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
	m.factory.On("Create").Return(m.uow)
	return m
}

func (m *ownershipMocks) assertExpectations(t *testing.T) {
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.setupRepo.AssertExpectations(t)
	m.defaults.AssertExpectations(t)
	m.prefs.AssertExpectations(t)
	m.active.AssertExpectations(t)
	m.channels.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
}

func TestOwnershipService_Claim_TransfersAbandonedChannel(t *testing.T) {
	ctx := context.Background()
	m := newOwnershipMocks()
	service := NewOwnershipService(m.factory, m.channels)

	tracked := &models.ActiveChannel{ChannelID: 555, OwnerID: 42, GuildID: 10}

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)

	m.active.On("GetByChannelID", ctx, int64(555)).Return(tracked, nil)
	// The recorded owner is not among the connected members
	m.channels.On("ChannelMembers", ctx, int64(10), int64(555)).Return([]int64{43, 44}, nil)
	m.active.On("TransferOwner", ctx, int64(555), int64(43)).Return(true, nil)
	m.channels.On("SetMemberPermissions", ctx, int64(555), int64(42), PermissionUpdate{
		Connect: boolPtr(true),
		View:    boolPtr(true),
		Manage:  boolPtr(false),
	}).Return(nil)
	m.channels.On("SetMemberPermissions", ctx, int64(555), int64(43), PermissionUpdate{
		Connect: boolPtr(true),
		View:    boolPtr(true),
		Manage:  boolPtr(true),
	}).Return(nil)
	m.publisher.On("Publish", events.OwnershipTransferredEvent{
		GuildID:         10,
		ChannelID:       555,
		PreviousOwnerID: 42,
		NewOwnerID:      43,
	}).Return()

	result, err := service.Claim(ctx, 10, 43, 555)

	assert.NoError(t, err)
	assert.True(t, result.Transferred)
	assert.Equal(t, int64(42), result.PreviousOwnerID)
	assert.Equal(t, int64(43), result.NewOwnerID)
	m.assertExpectations(t)
}

func TestOwnershipService_Claim_OwnChannelIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := newOwnershipMocks()
	service := NewOwnershipService(m.factory, m.channels)

	tracked := &models.ActiveChannel{ChannelID: 555, OwnerID: 42, GuildID: 10}

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.active.On("GetByChannelID", ctx, int64(555)).Return(tracked, nil)

	result, err := service.Claim(ctx, 10, 42, 555)

	assert.NoError(t, err)
	assert.False(t, result.Transferred)
	assert.Equal(t, int64(42), result.NewOwnerID)
	m.active.AssertNotCalled(t, "TransferOwner", mock.Anything, mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestOwnershipService_Claim_RejectedWhileOwnerPresent(t *testing.T) {
	ctx := context.Background()
	m := newOwnershipMocks()
	service := NewOwnershipService(m.factory, m.channels)

	tracked := &models.ActiveChannel{ChannelID: 555, OwnerID: 42, GuildID: 10}

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.active.On("GetByChannelID", ctx, int64(555)).Return(tracked, nil)
	m.channels.On("ChannelMembers", ctx, int64(10), int64(555)).Return([]int64{42, 43}, nil)

	result, err := service.Claim(ctx, 10, 43, 555)

	assert.Nil(t, result)
	var alreadyOwned *AlreadyOwnedError
	assert.True(t, errors.As(err, &alreadyOwned))
	assert.Equal(t, int64(42), alreadyOwned.OwnerID)
	m.assertExpectations(t)
}

func TestOwnershipService_Claim_UntrackedChannelNotOwnable(t *testing.T) {
	ctx := context.Background()
	m := newOwnershipMocks()
	service := NewOwnershipService(m.factory, m.channels)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.active.On("GetByChannelID", ctx, int64(555)).Return(nil, nil)

	result, err := service.Claim(ctx, 10, 43, 555)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNotOwnable)
	m.assertExpectations(t)
}

func TestOwnershipService_Claim_RowVanishedDuringTransfer(t *testing.T) {
	ctx := context.Background()
	m := newOwnershipMocks()
	service := NewOwnershipService(m.factory, m.channels)

	tracked := &models.ActiveChannel{ChannelID: 555, OwnerID: 42, GuildID: 10}

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.active.On("GetByChannelID", ctx, int64(555)).Return(tracked, nil)
	m.channels.On("ChannelMembers", ctx, int64(10), int64(555)).Return([]int64{43}, nil)
	m.active.On("TransferOwner", ctx, int64(555), int64(43)).Return(false, nil)

	result, err := service.Claim(ctx, 10, 43, 555)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNotOwnable)
	m.assertExpectations(t)
}

func TestOwnershipService_Lock(t *testing.T) {
	ctx := context.Background()
	m := newOwnershipMocks()
	service := NewOwnershipService(m.factory, m.channels)

	owned := &models.ActiveChannel{ChannelID: 555, OwnerID: 42, GuildID: 10}

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.active.On("GetByOwner", ctx, int64(42)).Return(owned, nil)
	// The everyone role shares the guild's ID
	m.channels.On("SetRolePermissions", ctx, int64(555), int64(10), PermissionUpdate{
		Connect: boolPtr(false),
	}).Return(nil)

	err := service.Lock(ctx, 10, 42)

	assert.NoError(t, err)
	m.assertExpectations(t)
}

func TestOwnershipService_Unlock(t *testing.T) {
	ctx := context.Background()
	m := newOwnershipMocks()
	service := NewOwnershipService(m.factory, m.channels)

	owned := &models.ActiveChannel{ChannelID: 555, OwnerID: 42, GuildID: 10}

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.active.On("GetByOwner", ctx, int64(42)).Return(owned, nil)
	m.channels.On("SetRolePermissions", ctx, int64(555), int64(10), PermissionUpdate{
		Connect: boolPtr(true),
	}).Return(nil)

	err := service.Unlock(ctx, 10, 42)

	assert.NoError(t, err)
	m.assertExpectations(t)
}

func TestOwnershipService_Lock_WithoutOwnedChannel(t *testing.T) {
	ctx := context.Background()
	m := newOwnershipMocks()
	service := NewOwnershipService(m.factory, m.channels)

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.active.On("GetByOwner", ctx, int64(42)).Return(nil, nil)

	err := service.Lock(ctx, 10, 42)

	assert.ErrorIs(t, err, ErrNotOwner)
	m.channels.AssertNotCalled(t, "SetRolePermissions", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestOwnershipService_Permit(t *testing.T) {
	ctx := context.Background()
	m := newOwnershipMocks()
	service := NewOwnershipService(m.factory, m.channels)

	owned := &models.ActiveChannel{ChannelID: 555, OwnerID: 42, GuildID: 10}

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.active.On("GetByOwner", ctx, int64(42)).Return(owned, nil)
	m.channels.On("SetMemberPermissions", ctx, int64(555), int64(77), PermissionUpdate{
		Connect: boolPtr(true),
	}).Return(nil)

	err := service.Permit(ctx, 10, 42, 77)

	assert.NoError(t, err)
	m.assertExpectations(t)
}

func TestOwnershipService_Reject_RelocatesPresentMember(t *testing.T) {
	ctx := context.Background()
	m := newOwnershipMocks()
	service := NewOwnershipService(m.factory, m.channels)

	owned := &models.ActiveChannel{ChannelID: 555, OwnerID: 42, GuildID: 10}
	setup := &models.GuildSetup{GuildID: 10, OwnerID: 99, LobbyChannelID: 100, CategoryID: 200}

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.active.On("GetByOwner", ctx, int64(42)).Return(owned, nil)
	m.channels.On("ChannelMembers", ctx, int64(10), int64(555)).Return([]int64{42, 77}, nil)
	m.setupRepo.On("Get", ctx, int64(10)).Return(setup, nil)
	m.channels.On("MoveMember", ctx, int64(10), int64(77), int64(100)).Return(nil)
	m.channels.On("SetMemberPermissions", ctx, int64(555), int64(77), PermissionUpdate{
		Connect: boolPtr(false),
		View:    boolPtr(true),
	}).Return(nil)

	err := service.Reject(ctx, 10, 42, 77)

	assert.NoError(t, err)
	m.assertExpectations(t)
}

func TestOwnershipService_Reject_AbsentMemberOnlyLosesAccess(t *testing.T) {
	ctx := context.Background()
	m := newOwnershipMocks()
	service := NewOwnershipService(m.factory, m.channels)

	owned := &models.ActiveChannel{ChannelID: 555, OwnerID: 42, GuildID: 10}

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.active.On("GetByOwner", ctx, int64(42)).Return(owned, nil)
	m.channels.On("ChannelMembers", ctx, int64(10), int64(555)).Return([]int64{42}, nil)
	m.channels.On("SetMemberPermissions", ctx, int64(555), int64(77), PermissionUpdate{
		Connect: boolPtr(false),
		View:    boolPtr(true),
	}).Return(nil)

	err := service.Reject(ctx, 10, 42, 77)

	assert.NoError(t, err)
	m.channels.AssertNotCalled(t, "MoveMember", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestOwnershipService_SetLimit_SeedsPreferenceFromDisplayName(t *testing.T) {
	ctx := context.Background()
	m := newOwnershipMocks()
	service := NewOwnershipService(m.factory, m.channels)

	owned := &models.ActiveChannel{ChannelID: 555, OwnerID: 42, GuildID: 10}

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.active.On("GetByOwner", ctx, int64(42)).Return(owned, nil)
	m.channels.On("EditChannel", ctx, int64(555), ChannelEdit{UserLimit: intPtr(5)}).Return(nil)
	m.prefs.On("Get", ctx, int64(42)).Return(nil, nil)
	m.channels.On("MemberDisplayName", ctx, int64(10), int64(42)).Return("Marcus")
	m.prefs.On("Upsert", ctx, mock.MatchedBy(func(p *models.UserPreference) bool {
		return p.UserID == 42 && p.ChannelName == "Marcus" && p.ChannelLimit == 5
	})).Return(nil)

	err := service.SetLimit(ctx, 10, 42, 5)

	assert.NoError(t, err)
	m.assertExpectations(t)
}

func TestOwnershipService_SetLimit_KeepsStoredName(t *testing.T) {
	ctx := context.Background()
	m := newOwnershipMocks()
	service := NewOwnershipService(m.factory, m.channels)

	owned := &models.ActiveChannel{ChannelID: 555, OwnerID: 42, GuildID: 10}
	pref := &models.UserPreference{UserID: 42, ChannelName: "The Cave", ChannelLimit: 3}

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.active.On("GetByOwner", ctx, int64(42)).Return(owned, nil)
	m.channels.On("EditChannel", ctx, int64(555), ChannelEdit{UserLimit: intPtr(8)}).Return(nil)
	m.prefs.On("Get", ctx, int64(42)).Return(pref, nil)
	m.channels.On("MemberDisplayName", ctx, int64(10), int64(42)).Return("Marcus")
	m.prefs.On("Upsert", ctx, mock.MatchedBy(func(p *models.UserPreference) bool {
		return p.UserID == 42 && p.ChannelName == "The Cave" && p.ChannelLimit == 8
	})).Return(nil)

	err := service.SetLimit(ctx, 10, 42, 8)

	assert.NoError(t, err)
	m.assertExpectations(t)
}

func TestOwnershipService_Rename_KeepsStoredLimit(t *testing.T) {
	ctx := context.Background()
	m := newOwnershipMocks()
	service := NewOwnershipService(m.factory, m.channels)

	owned := &models.ActiveChannel{ChannelID: 555, OwnerID: 42, GuildID: 10}
	pref := &models.UserPreference{UserID: 42, ChannelName: "The Cave", ChannelLimit: 3}

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.active.On("GetByOwner", ctx, int64(42)).Return(owned, nil)
	m.channels.On("EditChannel", ctx, int64(555), ChannelEdit{Name: stringPtr("War Room")}).Return(nil)
	m.prefs.On("Get", ctx, int64(42)).Return(pref, nil)
	m.prefs.On("Upsert", ctx, mock.MatchedBy(func(p *models.UserPreference) bool {
		return p.UserID == 42 && p.ChannelName == "War Room" && p.ChannelLimit == 3
	})).Return(nil)

	err := service.Rename(ctx, 10, 42, "War Room")

	assert.NoError(t, err)
	m.assertExpectations(t)
}

func TestOwnershipService_Rename_WithoutPreferenceDefaultsLimitToZero(t *testing.T) {
	ctx := context.Background()
	m := newOwnershipMocks()
	service := NewOwnershipService(m.factory, m.channels)

	owned := &models.ActiveChannel{ChannelID: 555, OwnerID: 42, GuildID: 10}

	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.active.On("GetByOwner", ctx, int64(42)).Return(owned, nil)
	m.channels.On("EditChannel", ctx, int64(555), ChannelEdit{Name: stringPtr("War Room")}).Return(nil)
	m.prefs.On("Get", ctx, int64(42)).Return(nil, nil)
	m.prefs.On("Upsert", ctx, mock.MatchedBy(func(p *models.UserPreference) bool {
		return p.UserID == 42 && p.ChannelName == "War Room" && p.ChannelLimit == 0
	})).Return(nil)

	err := service.Rename(ctx, 10, 42, "War Room")

	assert.NoError(t, err)
	m.assertExpectations(t)
}
