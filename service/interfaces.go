package service

import (
	"context"
	"time"

	"rewarder/events"
	"rewarder/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by ID, returning nil when no such user exists
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByIDForUpdate retrieves a user and locks the row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error)

	// GetByUsername retrieves a user by username, returning nil when no such user exists
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create creates a new user with a zero balance
	Create(ctx context.Context, username, email string) (*models.User, error)

	// AddCoins atomically increments a user's balance and returns the new balance
	AddCoins(ctx context.Context, id int64, amount int64) (int64, error)
}

// ScheduledRewardRepository defines the interface for scheduled reward data access
type ScheduledRewardRepository interface {
	// Create stores a new reward, filling in its ID
	Create(ctx context.Context, reward *models.ScheduledReward) error

	// GetByID retrieves a reward by ID, returning nil when it does not exist
	GetByID(ctx context.Context, id int64) (*models.ScheduledReward, error)

	// CountCreatedBetween counts a user's rewards created in [from, to)
	CountCreatedBetween(ctx context.Context, userID int64, from, to time.Time) (int, error)

	// GetDue returns unexecuted rewards with execute_at <= now, oldest first
	GetDue(ctx context.Context, now time.Time) ([]*models.ScheduledReward, error)

	// GetByUser returns a user's rewards, latest execute_at first
	GetByUser(ctx context.Context, userID int64) ([]*models.ScheduledReward, error)

	// Claim marks a due reward executed. It returns false when the reward was
	// already executed or is not yet due, leaving the row untouched.
	Claim(ctx context.Context, id int64, now time.Time) (bool, error)
}

// RewardLogRepository defines the interface for the reward audit log
type RewardLogRepository interface {
	// Create appends a log entry, filling in its ID
	Create(ctx context.Context, entry *models.RewardLog) error

	// GetByUser returns a user's log entries, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.RewardLog, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and releases pending events
	Commit() error

	// Rollback rolls back the transaction and drops pending events
	Rollback() error

	UserRepository() UserRepository
	ScheduledRewardRepository() ScheduledRewardRepository
	RewardLogRepository() RewardLogRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// RewardRequestService validates and stores reward requests
type RewardRequestService interface {
	// RequestReward schedules amount coins for the user after the configured delay
	RequestReward(ctx context.Context, userID int64, amount int64) (*models.ScheduledReward, error)
}

// RewardExecutionService applies due rewards
type RewardExecutionService interface {
	// RunDueRewards executes every reward due at now and returns how many were applied
	RunDueRewards(ctx context.Context, now time.Time) (int, error)

	// ProcessDueRewards is RunDueRewards returning the applied rewards themselves
	ProcessDueRewards(ctx context.Context, now time.Time) ([]*models.ScheduledReward, error)

	// ExecuteOne applies a single reward if it is still due and unexecuted
	ExecuteOne(ctx context.Context, reward *models.ScheduledReward, now time.Time) (bool, error)
}

// ProfileService serves read-only views of a user's own data
type ProfileService interface {
	GetProfile(ctx context.Context, userID int64) (*models.Profile, error)
	ListRewards(ctx context.Context, userID int64) ([]*models.ScheduledReward, error)
	ListRewardLogs(ctx context.Context, userID int64, limit int) ([]*models.RewardLog, error)
}

// UserService manages accounts
type UserService interface {
	CreateUser(ctx context.Context, username, email string) (*models.User, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}
