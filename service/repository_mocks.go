package service

import (
	"context"
	"sync"
	"time"

	"rewarder/events"
	"rewarder/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, username, email string) (*models.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) AddCoins(ctx context.Context, id int64, amount int64) (int64, error) {
	args := m.Called(ctx, id, amount)
	return args.Get(0).(int64), args.Error(1)
}

// MockScheduledRewardRepository is a mock implementation of ScheduledRewardRepository
type MockScheduledRewardRepository struct {
	mock.Mock
}

func (m *MockScheduledRewardRepository) Create(ctx context.Context, reward *models.ScheduledReward) error {
	args := m.Called(ctx, reward)
	return args.Error(0)
}

func (m *MockScheduledRewardRepository) GetByID(ctx context.Context, id int64) (*models.ScheduledReward, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduledReward), args.Error(1)
}

func (m *MockScheduledRewardRepository) CountCreatedBetween(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockScheduledRewardRepository) GetDue(ctx context.Context, now time.Time) ([]*models.ScheduledReward, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScheduledReward), args.Error(1)
}

func (m *MockScheduledRewardRepository) GetByUser(ctx context.Context, userID int64) ([]*models.ScheduledReward, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScheduledReward), args.Error(1)
}

func (m *MockScheduledRewardRepository) Claim(ctx context.Context, id int64, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

// MockRewardLogRepository is a mock implementation of RewardLogRepository
type MockRewardLogRepository struct {
	mock.Mock
}

func (m *MockRewardLogRepository) Create(ctx context.Context, entry *models.RewardLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockRewardLogRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.RewardLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RewardLog), args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []events.Event
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// Published returns a copy of the recorded events
func (m *MockEventPublisher) Published() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.Event, len(m.Events))
	copy(out, m.Events)
	return out
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	userRepo            UserRepository
	scheduledRewardRepo ScheduledRewardRepository
	rewardLogRepo       RewardLogRepository
	eventBus            *MockEventPublisher
}

// SetRepositories wires the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(userRepo UserRepository, scheduledRewardRepo ScheduledRewardRepository, rewardLogRepo RewardLogRepository) {
	m.userRepo = userRepo
	m.scheduledRewardRepo = scheduledRewardRepo
	m.rewardLogRepo = rewardLogRepo
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) ScheduledRewardRepository() ScheduledRewardRepository {
	return m.scheduledRewardRepo
}

func (m *MockUnitOfWork) RewardLogRepository() RewardLogRepository {
	return m.rewardLogRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		m.eventBus = &MockEventPublisher{}
	}
	return m.eventBus
}

// PublishedEvents returns the events published through this unit of work
func (m *MockUnitOfWork) PublishedEvents() []events.Event {
	if m.eventBus == nil {
		return nil
	}
	return m.eventBus.Published()
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
