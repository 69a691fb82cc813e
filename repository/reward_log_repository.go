package repository

import (
	"context"
	"fmt"
	"time"

	"rewarder/database"
	"rewarder/models"
	"rewarder/service"
)

// RewardLogRepository implements the RewardLogRepository interface
type RewardLogRepository struct {
	q queryable
}

// NewRewardLogRepository creates a new reward log repository
func NewRewardLogRepository(db *database.DB) *RewardLogRepository {
	return &RewardLogRepository{q: db.Pool}
}

// newRewardLogRepositoryWithTx creates a new reward log repository with a transaction
func newRewardLogRepositoryWithTx(tx queryable) *RewardLogRepository {
	return &RewardLogRepository{q: tx}
}

// Create appends a log entry. A second entry for the same scheduled reward
// is rejected by the unique index and reported as ErrInvariantViolation.
func (r *RewardLogRepository) Create(ctx context.Context, entry *models.RewardLog) error {
	query := `
		INSERT INTO reward_logs (user_id, amount, given_at, reason, scheduled_reward_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, given_at
	`

	givenAt := entry.GivenAt
	if givenAt.IsZero() {
		givenAt = time.Now().UTC()
	}

	err := r.q.QueryRow(ctx, query,
		entry.UserID,
		entry.Amount,
		givenAt,
		entry.Reason,
		entry.ScheduledRewardID,
	).Scan(&entry.ID, &entry.GivenAt)

	if isUniqueViolation(err, "idx_reward_logs_scheduled_reward") {
		return fmt.Errorf("reward log already exists for scheduled reward %d: %w",
			derefInt64(entry.ScheduledRewardID), service.ErrInvariantViolation)
	}
	if err != nil {
		return fmt.Errorf("failed to create reward log for user %d: %w", entry.UserID, err)
	}
	return nil
}

// GetByUser returns a user's log entries, newest first
func (r *RewardLogRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.RewardLog, error) {
	query := `
		SELECT rl.id, rl.user_id, rl.amount, rl.given_at, rl.reason, rl.scheduled_reward_id, u.username
		FROM reward_logs rl
		JOIN users u ON u.id = rl.user_id
		WHERE rl.user_id = $1
		ORDER BY rl.given_at DESC, rl.id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reward logs for user %d: %w", userID, err)
	}
	defer rows.Close()

	entries := make([]*models.RewardLog, 0)
	for rows.Next() {
		var entry models.RewardLog
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Amount,
			&entry.GivenAt,
			&entry.Reason,
			&entry.ScheduledRewardID,
			&entry.Username,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reward log: %w", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reward logs: %w", err)
	}
	return entries, nil
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
