package service

import (
	"context"
	"testing"
	"time"

	"rewarder/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReadMocks() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockUserRepository, *MockScheduledRewardRepository, *MockRewardLogRepository) {
	factory := new(MockUnitOfWorkFactory)
	uow := new(MockUnitOfWork)
	userRepo := new(MockUserRepository)
	rewardRepo := new(MockScheduledRewardRepository)
	logRepo := new(MockRewardLogRepository)
	uow.SetRepositories(userRepo, rewardRepo, logRepo)

	factory.On("Create").Return(uow)
	uow.On("Begin", context.Background()).Return(nil)
	uow.On("Rollback").Return(nil)
	return factory, uow, userRepo, rewardRepo, logRepo
}

func TestProfileService_GetProfile(t *testing.T) {
	ctx := context.Background()
	factory, uow, userRepo, _, _ := newReadMocks()

	userRepo.On("GetByID", ctx, int64(7)).Return(&models.User{
		ID:       7,
		Username: "alice",
		Email:    "alice@example.com",
		Coins:    120,
	}, nil)

	profile, err := NewProfileService(factory).GetProfile(ctx, 7)

	require.NoError(t, err)
	assert.Equal(t, &models.Profile{Username: "alice", Email: "alice@example.com", Coins: 120}, profile)
	// Reads never commit
	uow.AssertNotCalled(t, "Commit")
}

func TestProfileService_GetProfile_NotFound(t *testing.T) {
	ctx := context.Background()
	factory, _, userRepo, _, _ := newReadMocks()

	userRepo.On("GetByID", ctx, int64(8)).Return(nil, nil)

	_, err := NewProfileService(factory).GetProfile(ctx, 8)

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestProfileService_ListRewards(t *testing.T) {
	ctx := context.Background()
	factory, _, _, rewardRepo, _ := newReadMocks()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rewards := []*models.ScheduledReward{
		{ID: 2, UserID: 7, Amount: 10, ExecuteAt: base.Add(24 * time.Hour)},
		{ID: 1, UserID: 7, Amount: 20, ExecuteAt: base, IsExecuted: true},
	}
	rewardRepo.On("GetByUser", ctx, int64(7)).Return(rewards, nil)

	got, err := NewProfileService(factory).ListRewards(ctx, 7)

	require.NoError(t, err)
	assert.Equal(t, rewards, got)
}

func TestProfileService_ListRewardLogs_ClampsLimit(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"zero uses default", 0, DefaultRewardLogLimit},
		{"too large uses default", 10000, DefaultRewardLogLimit},
		{"explicit limit kept", 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			factory, _, _, _, logRepo := newReadMocks()

			logRepo.On("GetByUser", ctx, int64(7), tt.wantLimit).Return([]*models.RewardLog{}, nil)

			_, err := NewProfileService(factory).ListRewardLogs(ctx, 7, tt.limit)

			require.NoError(t, err)
			logRepo.AssertExpectations(t)
		})
	}
}
