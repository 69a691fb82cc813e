package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rewarder/database"
	"rewarder/models"

	"github.com/jackc/pgx/v5"
)

// ScheduledRewardRepository implements the ScheduledRewardRepository interface
type ScheduledRewardRepository struct {
	q queryable
}

// NewScheduledRewardRepository creates a new scheduled reward repository
func NewScheduledRewardRepository(db *database.DB) *ScheduledRewardRepository {
	return &ScheduledRewardRepository{q: db.Pool}
}

// newScheduledRewardRepositoryWithTx creates a new scheduled reward repository with a transaction
func newScheduledRewardRepositoryWithTx(tx queryable) *ScheduledRewardRepository {
	return &ScheduledRewardRepository{q: tx}
}

const scheduledRewardColumns = `sr.id, sr.user_id, sr.amount, sr.execute_at, sr.is_executed, sr.executed_at, sr.created_at, u.username`

func scanScheduledReward(row pgx.Row) (*models.ScheduledReward, error) {
	var reward models.ScheduledReward
	err := row.Scan(
		&reward.ID,
		&reward.UserID,
		&reward.Amount,
		&reward.ExecuteAt,
		&reward.IsExecuted,
		&reward.ExecutedAt,
		&reward.CreatedAt,
		&reward.Username,
	)
	if err != nil {
		return nil, err
	}
	return &reward, nil
}

func collectScheduledRewards(rows pgx.Rows) ([]*models.ScheduledReward, error) {
	defer rows.Close()

	rewards := make([]*models.ScheduledReward, 0)
	for rows.Next() {
		reward, err := scanScheduledReward(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled reward: %w", err)
		}
		rewards = append(rewards, reward)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scheduled rewards: %w", err)
	}
	return rewards, nil
}

// Create stores a new unexecuted reward
func (r *ScheduledRewardRepository) Create(ctx context.Context, reward *models.ScheduledReward) error {
	query := `
		INSERT INTO scheduled_rewards (user_id, amount, execute_at, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, execute_at, is_executed, created_at
	`

	createdAt := reward.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	err := r.q.QueryRow(ctx, query, reward.UserID, reward.Amount, reward.ExecuteAt, createdAt).Scan(
		&reward.ID,
		&reward.ExecuteAt,
		&reward.IsExecuted,
		&reward.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create scheduled reward for user %d: %w", reward.UserID, err)
	}
	return nil
}

// GetByID retrieves a scheduled reward by ID
func (r *ScheduledRewardRepository) GetByID(ctx context.Context, id int64) (*models.ScheduledReward, error) {
	query := `
		SELECT ` + scheduledRewardColumns + `
		FROM scheduled_rewards sr
		JOIN users u ON u.id = sr.user_id
		WHERE sr.id = $1
	`

	reward, err := scanScheduledReward(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled reward %d: %w", id, err)
	}
	return reward, nil
}

// CountCreatedBetween counts a user's rewards created in [from, to), executed or not
func (r *ScheduledRewardRepository) CountCreatedBetween(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM scheduled_rewards
		WHERE user_id = $1
		  AND created_at >= $2
		  AND created_at < $3
	`

	var count int
	if err := r.q.QueryRow(ctx, query, userID, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rewards for user %d: %w", userID, err)
	}
	return count, nil
}

// GetDue returns unexecuted rewards whose execute_at has passed, oldest first
func (r *ScheduledRewardRepository) GetDue(ctx context.Context, now time.Time) ([]*models.ScheduledReward, error) {
	query := `
		SELECT ` + scheduledRewardColumns + `
		FROM scheduled_rewards sr
		JOIN users u ON u.id = sr.user_id
		WHERE sr.is_executed = FALSE
		  AND sr.execute_at <= $1
		ORDER BY sr.execute_at ASC, sr.id ASC
	`

	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due rewards: %w", err)
	}
	return collectScheduledRewards(rows)
}

// GetByUser returns a user's rewards, latest execute_at first
func (r *ScheduledRewardRepository) GetByUser(ctx context.Context, userID int64) ([]*models.ScheduledReward, error) {
	query := `
		SELECT ` + scheduledRewardColumns + `
		FROM scheduled_rewards sr
		JOIN users u ON u.id = sr.user_id
		WHERE sr.user_id = $1
		ORDER BY sr.execute_at DESC, sr.id DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rewards for user %d: %w", userID, err)
	}
	return collectScheduledRewards(rows)
}

// Claim flips is_executed from false to true for a due reward. The conditional
// update is the only guard against double execution: of any number of
// concurrent claims on one row exactly one affects it.
func (r *ScheduledRewardRepository) Claim(ctx context.Context, id int64, now time.Time) (bool, error) {
	query := `
		UPDATE scheduled_rewards
		SET is_executed = TRUE, executed_at = $2
		WHERE id = $1
		  AND is_executed = FALSE
		  AND execute_at <= $2
	`

	result, err := r.q.Exec(ctx, query, id, now)
	if err != nil {
		return false, fmt.Errorf("failed to claim scheduled reward %d: %w", id, err)
	}
	return result.RowsAffected() == 1, nil
}
