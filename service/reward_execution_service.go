package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rewarder/events"
	"rewarder/models"

	log "github.com/sirupsen/logrus"
)

type rewardExecutionService struct {
	uowFactory UnitOfWorkFactory
}

// NewRewardExecutionService creates a new reward execution service
func NewRewardExecutionService(uowFactory UnitOfWorkFactory) RewardExecutionService {
	return &rewardExecutionService{
		uowFactory: uowFactory,
	}
}

// RunDueRewards executes every reward due at now and returns how many were applied
func (s *rewardExecutionService) RunDueRewards(ctx context.Context, now time.Time) (int, error) {
	executed, err := s.ProcessDueRewards(ctx, now)
	return len(executed), err
}

// ProcessDueRewards executes due rewards one by one. Failures of individual
// rewards are logged and skipped; they stay unexecuted for the next pass.
// Only a failure to list due rewards is returned.
func (s *rewardExecutionService) ProcessDueRewards(ctx context.Context, now time.Time) ([]*models.ScheduledReward, error) {
	due, err := s.getDueRewards(ctx, now)
	if err != nil {
		return nil, err
	}

	executed := make([]*models.ScheduledReward, 0, len(due))
	var failed int
	for _, reward := range due {
		if ctx.Err() != nil {
			break
		}

		ok, err := s.ExecuteOne(ctx, reward, now)
		if err != nil {
			failed++
			entry := log.WithFields(log.Fields{
				"reward_id": reward.ID,
				"user_id":   reward.UserID,
				"amount":    reward.Amount,
			}).WithError(err)
			if errors.Is(err, ErrInvariantViolation) {
				entry.Error("Ledger invariant violated while executing reward, skipping")
			} else {
				entry.Warn("Failed to execute reward, will retry on next pass")
			}
			continue
		}
		if ok {
			executed = append(executed, reward)
		}
	}

	if len(due) > 0 {
		log.WithFields(log.Fields{
			"due":      len(due),
			"executed": len(executed),
			"failed":   failed,
		}).Info("Completed reward execution pass")
	}

	return executed, nil
}

func (s *rewardExecutionService) getDueRewards(ctx context.Context, now time.Time) ([]*models.ScheduledReward, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	due, err := uow.ScheduledRewardRepository().GetDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get due rewards: %w", err)
	}
	return due, nil
}

// ExecuteOne applies reward in a single transaction: claim the row, credit the
// balance, append the log entry. It returns false without changes when the
// reward is not due or another pass has already claimed it.
func (s *rewardExecutionService) ExecuteOne(ctx context.Context, reward *models.ScheduledReward, now time.Time) (bool, error) {
	entry, ok := models.PlanExecution(reward, now)
	if !ok {
		return false, nil
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	claimed, err := uow.ScheduledRewardRepository().Claim(ctx, reward.ID, now)
	if err != nil {
		return false, fmt.Errorf("failed to claim reward %d: %w", reward.ID, err)
	}
	if !claimed {
		log.WithField("reward_id", reward.ID).Debug("Reward already executed or not yet due, skipping")
		return false, nil
	}

	newBalance, err := uow.UserRepository().AddCoins(ctx, reward.UserID, reward.Amount)
	if err != nil {
		return false, fmt.Errorf("failed to credit user %d: %w", reward.UserID, err)
	}

	if err := uow.RewardLogRepository().Create(ctx, entry); err != nil {
		return false, fmt.Errorf("failed to record reward log for reward %d: %w", reward.ID, err)
	}

	uow.EventBus().Publish(events.RewardExecutedEvent{
		RewardID:   reward.ID,
		UserID:     reward.UserID,
		Username:   reward.Username,
		Amount:     reward.Amount,
		NewBalance: newBalance,
		ExecutedAt: now,
	})

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	executedAt := now
	reward.IsExecuted = true
	reward.ExecutedAt = &executedAt

	log.WithFields(log.Fields{
		"reward_id":   reward.ID,
		"user_id":     reward.UserID,
		"amount":      reward.Amount,
		"new_balance": newBalance,
	}).Info("Executed scheduled reward")

	return true, nil
}
