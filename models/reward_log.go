package models

import (
	"fmt"
	"time"
)

// RewardLog is an append-only record of coins credited to a user
type RewardLog struct {
	ID                int64     `db:"id"`
	UserID            int64     `db:"user_id"`
	Amount            int64     `db:"amount"`
	GivenAt           time.Time `db:"given_at"`
	Reason            *string   `db:"reason"`
	ScheduledRewardID *int64    `db:"scheduled_reward_id"`

	Username string `db:"-"`
}

func (l *RewardLog) String() string {
	return fmt.Sprintf("%d coins was given to %s at %s",
		l.Amount, displayName(l.Username, l.UserID), l.GivenAt.UTC().Format(time.RFC3339))
}
