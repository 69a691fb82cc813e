package service

import (
	"context"
	"fmt"

	"rewarder/models"
)

// DefaultRewardLogLimit caps reward log listings when the caller gives no limit
const DefaultRewardLogLimit = 100

type profileService struct {
	uowFactory UnitOfWorkFactory
}

// NewProfileService creates a new profile service
func NewProfileService(uowFactory UnitOfWorkFactory) ProfileService {
	return &profileService{uowFactory: uowFactory}
}

// GetProfile returns the user's username, email and balance
func (s *profileService) GetProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return user.Profile(), nil
}

// ListRewards returns the user's scheduled rewards, latest execute_at first
func (s *profileService) ListRewards(ctx context.Context, userID int64) ([]*models.ScheduledReward, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	rewards, err := uow.ScheduledRewardRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	return rewards, nil
}

// ListRewardLogs returns the user's credited rewards, newest first
func (s *profileService) ListRewardLogs(ctx context.Context, userID int64, limit int) ([]*models.RewardLog, error) {
	if limit <= 0 || limit > DefaultRewardLogLimit {
		limit = DefaultRewardLogLimit
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.RewardLogRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reward logs: %w", err)
	}
	return entries, nil
}
