package api

import (
	"context"

	"rewarder/models"

	"github.com/stretchr/testify/mock"
)

type mockUserLookup struct {
	mock.Mock
}

func (m *mockUserLookup) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockRewardRequestService struct {
	mock.Mock
}

func (m *mockRewardRequestService) RequestReward(ctx context.Context, userID int64, amount int64) (*models.ScheduledReward, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduledReward), args.Error(1)
}

type mockProfileService struct {
	mock.Mock
}

func (m *mockProfileService) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockProfileService) ListRewards(ctx context.Context, userID int64) ([]*models.ScheduledReward, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScheduledReward), args.Error(1)
}

func (m *mockProfileService) ListRewardLogs(ctx context.Context, userID int64, limit int) ([]*models.RewardLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RewardLog), args.Error(1)
}
