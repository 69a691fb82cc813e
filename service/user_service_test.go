package service

import (
	"context"
	"testing"

	"rewarder/events"
	"rewarder/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()
	factory, uow, userRepo, _, _ := newReadMocks()
	uow.On("Commit").Return(nil)

	created := &models.User{ID: 1, Username: "alice", Email: "alice@example.com"}
	userRepo.On("GetByUsername", ctx, "alice").Return(nil, nil)
	userRepo.On("Create", ctx, "alice", "alice@example.com").Return(created, nil)

	user, err := NewUserService(factory).CreateUser(ctx, "  alice ", "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, created, user)
	assert.Equal(t, int64(0), user.Coins)

	published := uow.PublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.UserCreatedEvent{UserID: 1, Username: "alice"}, published[0])
	uow.AssertExpectations(t)
}

func TestUserService_CreateUser_Duplicate(t *testing.T) {
	ctx := context.Background()
	factory, uow, userRepo, _, _ := newReadMocks()

	userRepo.On("GetByUsername", ctx, "alice").Return(&models.User{ID: 1, Username: "alice"}, nil)

	_, err := NewUserService(factory).CreateUser(ctx, "alice", "")

	assert.ErrorIs(t, err, ErrUserExists)
	uow.AssertNotCalled(t, "Commit")
}

func TestUserService_CreateUser_EmptyUsername(t *testing.T) {
	factory := new(MockUnitOfWorkFactory)

	_, err := NewUserService(factory).CreateUser(context.Background(), "   ", "x@example.com")

	assert.True(t, IsValidationError(err))
	factory.AssertNotCalled(t, "Create")
}

func TestUserService_GetUserByUsername_NotFound(t *testing.T) {
	ctx := context.Background()
	factory, _, userRepo, _, _ := newReadMocks()

	userRepo.On("GetByUsername", ctx, "ghost").Return(nil, nil)

	_, err := NewUserService(factory).GetUserByUsername(ctx, "ghost")

	assert.ErrorIs(t, err, ErrUserNotFound)
}
