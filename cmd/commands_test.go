package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"rewarder/api"
	"rewarder/models"
	"rewarder/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) RunDueRewards(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *mockEngine) ProcessDueRewards(ctx context.Context, now time.Time) ([]*models.ScheduledReward, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ScheduledReward), args.Error(1)
}

func (m *mockEngine) ExecuteOne(ctx context.Context, reward *models.ScheduledReward, now time.Time) (bool, error) {
	args := m.Called(ctx, reward, now)
	return args.Bool(0), args.Error(1)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) CreateUser(ctx context.Context, username, email string) (*models.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUsers) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUsers) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestProcessRewards_PrintsEachReward(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 10, 0, 0, time.UTC)
	engine := new(mockEngine)
	engine.On("ProcessDueRewards", ctx, now).Return([]*models.ScheduledReward{
		{ID: 1, UserID: 1, Username: "alice", Amount: 10, ExecuteAt: time.Date(2024, 5, 1, 12, 5, 0, 0, time.UTC), IsExecuted: true},
		{ID: 2, UserID: 2, Username: "bob", Amount: 20, ExecuteAt: time.Date(2024, 5, 1, 12, 6, 0, 0, time.UTC), IsExecuted: true},
	}, nil)

	var out bytes.Buffer
	require.NoError(t, processRewards(ctx, engine, now, &out))

	assert.Equal(t,
		"Processed reward: 10 coins to be given for alice at 2024-05-01T12:05:00Z\n"+
			"Processed reward: 20 coins to be given for bob at 2024-05-01T12:06:00Z\n"+
			"Successfully processed 2 rewards\n",
		out.String())
}

func TestProcessRewards_NothingDue(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	engine := new(mockEngine)
	engine.On("ProcessDueRewards", ctx, now).Return([]*models.ScheduledReward{}, nil)

	var out bytes.Buffer
	require.NoError(t, processRewards(ctx, engine, now, &out))

	assert.Equal(t, "Successfully processed 0 rewards\n", out.String())
}

func TestProcessRewards_Error(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	engine := new(mockEngine)
	engine.On("ProcessDueRewards", ctx, now).Return(nil, errors.New("database unavailable"))

	var out bytes.Buffer
	err := processRewards(ctx, engine, now, &out)

	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestIssueToken(t *testing.T) {
	ctx := context.Background()
	secret := []byte("cli-secret")

	t.Run("known user", func(t *testing.T) {
		users := new(mockUsers)
		users.On("GetUserByUsername", ctx, "alice").Return(&models.User{ID: 11, Username: "alice"}, nil)

		var out bytes.Buffer
		require.NoError(t, issueToken(ctx, users, secret, time.Hour, "alice", &out))

		userID, err := api.ParseToken(secret, string(bytes.TrimSpace(out.Bytes())))
		require.NoError(t, err)
		assert.Equal(t, int64(11), userID)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := new(mockUsers)
		users.On("GetUserByUsername", ctx, "ghost").Return(nil, service.ErrUserNotFound)

		var out bytes.Buffer
		err := issueToken(ctx, users, secret, time.Hour, "ghost", &out)

		assert.ErrorIs(t, err, service.ErrUserNotFound)
		assert.Empty(t, out.String())
	})
}
