package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"rewarder/database"
	"rewarder/models"

	"github.com/stretchr/testify/require"
)

var userSeq atomic.Int64

// CreateTestUser inserts a user with a unique username and the given balance
func CreateTestUser(t *testing.T, db *database.DB, coins int64) *models.User {
	t.Helper()

	n := userSeq.Add(1)
	user := &models.User{
		Username: fmt.Sprintf("user%d", n),
		Email:    fmt.Sprintf("user%d@example.com", n),
	}

	err := db.QueryRow(context.Background(), `
		INSERT INTO users (username, email, coins)
		VALUES ($1, $2, $3)
		RETURNING id, coins, created_at, updated_at
	`, user.Username, user.Email, coins).Scan(&user.ID, &user.Coins, &user.CreatedAt, &user.UpdatedAt)
	require.NoError(t, err)

	return user
}

// CreateTestScheduledReward inserts an unexecuted reward with explicit timestamps
func CreateTestScheduledReward(t *testing.T, db *database.DB, userID, amount int64, createdAt, executeAt time.Time) *models.ScheduledReward {
	t.Helper()

	reward := &models.ScheduledReward{
		UserID:    userID,
		Amount:    amount,
		ExecuteAt: executeAt,
		CreatedAt: createdAt,
	}

	err := db.QueryRow(context.Background(), `
		INSERT INTO scheduled_rewards (user_id, amount, execute_at, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, userID, amount, executeAt, createdAt).Scan(&reward.ID)
	require.NoError(t, err)

	return reward
}

// GetCoins reads a user's current balance
func GetCoins(t *testing.T, db *database.DB, userID int64) int64 {
	t.Helper()

	var coins int64
	err := db.QueryRow(context.Background(), `SELECT coins FROM users WHERE id = $1`, userID).Scan(&coins)
	require.NoError(t, err)
	return coins
}

// CountRewardLogs counts log entries referring to a scheduled reward
func CountRewardLogs(t *testing.T, db *database.DB, scheduledRewardID int64) int {
	t.Helper()

	var count int
	err := db.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM reward_logs WHERE scheduled_reward_id = $1`, scheduledRewardID).Scan(&count)
	require.NoError(t, err)
	return count
}
