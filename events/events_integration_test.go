package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan RewardExecutedEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	mainBus.Subscribe(EventTypeRewardExecuted, func(ctx context.Context, event Event) {
		defer wg.Done()
		if executed, ok := event.(RewardExecutedEvent); ok {
			eventReceived <- executed
		} else {
			t.Errorf("Expected RewardExecutedEvent, got %T", event)
		}
	})

	testEvent := RewardExecutedEvent{
		RewardID:   10,
		UserID:     123456,
		Amount:     50,
		NewBalance: 150,
		ExecutedAt: time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC),
	}

	transactionalBus.Publish(testEvent)
	assert.Equal(t, 1, transactionalBus.Pending())

	err := transactionalBus.Flush(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, transactionalBus.Pending())

	wg.Wait()

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent, received)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

// TestMultipleEventsDelivery tests delivering multiple events in sequence
func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventsReceived := make(chan RewardRequestedEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeRewardRequested, func(ctx context.Context, event Event) {
		defer wg.Done()
		if requested, ok := event.(RewardRequestedEvent); ok {
			eventsReceived <- requested
		}
	})

	for _, userID := range []int64{1, 2, 3} {
		transactionalBus.Publish(RewardRequestedEvent{RewardID: userID * 10, UserID: userID, Amount: 5})
	}

	assert.NoError(t, transactionalBus.Flush(context.Background()))
	wg.Wait()

	// Order may vary since handlers run in goroutines
	userIDs := make(map[int64]bool)
	for i := 0; i < 3; i++ {
		select {
		case event := <-eventsReceived:
			userIDs[event.UserID] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("Only received %d out of 3 events", len(userIDs))
		}
	}

	assert.True(t, userIDs[1])
	assert.True(t, userIDs[2])
	assert.True(t, userIDs[3])
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)
	mainBus.Subscribe(EventTypeRewardExecuted, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(RewardExecutedEvent{RewardID: 1, UserID: 1, Amount: 1})
	transactionalBus.Discard()

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribeAll_ReceivesEveryType(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	seen := make(map[EventType]bool)
	var wg sync.WaitGroup
	wg.Add(len(AllEventTypes))

	bus.SubscribeAll(func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		seen[event.Type()] = true
		mu.Unlock()
	})

	ctx := context.Background()
	bus.Emit(ctx, UserCreatedEvent{UserID: 1, Username: "alice"})
	bus.Emit(ctx, RewardRequestedEvent{RewardID: 1, UserID: 1, Amount: 1})
	bus.Emit(ctx, RewardExecutedEvent{RewardID: 1, UserID: 1, Amount: 1})
	wg.Wait()

	for _, eventType := range AllEventTypes {
		assert.True(t, seen[eventType], "missing %s", eventType)
	}
}

func TestEmit_HandlerPanicIsRecovered(t *testing.T) {
	bus := NewBus()

	done := make(chan struct{})
	bus.Subscribe(EventTypeUserCreated, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypeUserCreated, func(ctx context.Context, event Event) {
		close(done)
	})

	bus.Emit(context.Background(), UserCreatedEvent{UserID: 1})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("healthy handler was not called")
	}
}
