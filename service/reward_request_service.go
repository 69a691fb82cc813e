package service

import (
	"context"
	"fmt"
	"time"

	"rewarder/events"
	"rewarder/models"

	log "github.com/sirupsen/logrus"
)

// RewardRules are the limits applied to reward requests
type RewardRules struct {
	MaxAmount int64
	Delay     time.Duration
	Location  *time.Location   // Calendar for the once-per-day window
	Now       func() time.Time // Defaults to time.Now
}

type rewardRequestService struct {
	uowFactory UnitOfWorkFactory
	rules      RewardRules
	now        func() time.Time
}

// NewRewardRequestService creates a new reward request service
func NewRewardRequestService(uowFactory UnitOfWorkFactory, rules RewardRules) RewardRequestService {
	return newRewardRequestService(uowFactory, rules)
}

func newRewardRequestService(uowFactory UnitOfWorkFactory, rules RewardRules) *rewardRequestService {
	if rules.Location == nil {
		rules.Location = time.UTC
	}
	now := rules.Now
	if now == nil {
		now = time.Now
	}
	return &rewardRequestService{
		uowFactory: uowFactory,
		rules:      rules,
		now:        now,
	}
}

// RequestReward schedules amount coins for the user, executable after the configured delay.
// A user may have at most one request created per calendar day, executed or not.
func (s *rewardRequestService) RequestReward(ctx context.Context, userID int64, amount int64) (*models.ScheduledReward, error) {
	if err := ValidateAmount(amount, s.rules.MaxAmount); err != nil {
		return nil, err
	}

	now := s.now().UTC()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Row lock serialises concurrent requests from the same user so the
	// daily check below always sees a competing insert
	user, err := uow.UserRepository().GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	dayStart, dayEnd := DayWindow(now, s.rules.Location)
	count, err := uow.ScheduledRewardRepository().CountCreatedBetween(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to count today's rewards: %w", err)
	}
	if count > 0 {
		nextReset := GetNextResetTime(now, s.rules.Location).Format(time.RFC3339)
		return nil, &ValidationError{
			Message: fmt.Sprintf("Award can be requested once per day. Next request available at %s.", nextReset),
			Err:     ErrRateLimitExceeded,
		}
	}

	reward := &models.ScheduledReward{
		UserID:    userID,
		Amount:    amount,
		ExecuteAt: now.Add(s.rules.Delay),
		CreatedAt: now,
		Username:  user.Username,
	}
	if err := uow.ScheduledRewardRepository().Create(ctx, reward); err != nil {
		return nil, fmt.Errorf("failed to create scheduled reward: %w", err)
	}

	uow.EventBus().Publish(events.RewardRequestedEvent{
		RewardID:  reward.ID,
		UserID:    reward.UserID,
		Amount:    reward.Amount,
		ExecuteAt: reward.ExecuteAt,
		CreatedAt: reward.CreatedAt,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"reward_id":  reward.ID,
		"user_id":    userID,
		"amount":     amount,
		"execute_at": reward.ExecuteAt,
	}).Info("Scheduled reward")

	return reward, nil
}
