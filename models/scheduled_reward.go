package models

import (
	"fmt"
	"time"
)

// ScheduledReward is a coin award that becomes payable at ExecuteAt.
// Amount, ExecuteAt and CreatedAt never change after creation; IsExecuted
// moves from false to true exactly once.
type ScheduledReward struct {
	ID         int64      `db:"id"`
	UserID     int64      `db:"user_id"`
	Amount     int64      `db:"amount"`
	ExecuteAt  time.Time  `db:"execute_at"`
	IsExecuted bool       `db:"is_executed"`
	ExecutedAt *time.Time `db:"executed_at"`
	CreatedAt  time.Time  `db:"created_at"`

	Username string `db:"-"` // Populated by joins for display
}

// IsDue reports whether the reward is unexecuted and its execution time has arrived
func (r *ScheduledReward) IsDue(now time.Time) bool {
	return !r.IsExecuted && !now.Before(r.ExecuteAt)
}

func (r *ScheduledReward) String() string {
	return fmt.Sprintf("%d coins to be given for %s at %s",
		r.Amount, displayName(r.Username, r.UserID), r.ExecuteAt.UTC().Format(time.RFC3339))
}

// ScheduledRewardReason is the audit reason recorded when a scheduled reward is applied
func ScheduledRewardReason(rewardID int64) string {
	return fmt.Sprintf("Scheduled reward (ID: %d)", rewardID)
}

// PlanExecution decides whether reward can be applied at now and, if so,
// returns the log entry that records it. It never modifies reward.
func PlanExecution(reward *ScheduledReward, now time.Time) (*RewardLog, bool) {
	if reward == nil || !reward.IsDue(now) {
		return nil, false
	}

	rewardID := reward.ID
	reason := ScheduledRewardReason(reward.ID)
	return &RewardLog{
		UserID:            reward.UserID,
		Amount:            reward.Amount,
		GivenAt:           now,
		Reason:            &reason,
		ScheduledRewardID: &rewardID,
		Username:          reward.Username,
	}, true
}

func displayName(username string, userID int64) string {
	if username != "" {
		return username
	}
	return fmt.Sprintf("user %d", userID)
}
