package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeUserCreated     EventType = "user_created"
	EventTypeRewardRequested EventType = "reward_requested"
	EventTypeRewardExecuted  EventType = "reward_executed"
)

// AllEventTypes lists every event type the services emit
var AllEventTypes = []EventType{
	EventTypeUserCreated,
	EventTypeRewardRequested,
	EventTypeRewardExecuted,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// UserCreatedEvent represents a new account
type UserCreatedEvent struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// RewardRequestedEvent is emitted once a scheduled reward has been stored
type RewardRequestedEvent struct {
	RewardID  int64     `json:"reward_id"`
	UserID    int64     `json:"user_id"`
	Amount    int64     `json:"amount"`
	ExecuteAt time.Time `json:"execute_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (e RewardRequestedEvent) Type() EventType {
	return EventTypeRewardRequested
}

// RewardExecutedEvent is emitted after a scheduled reward has been credited
type RewardExecutedEvent struct {
	RewardID   int64     `json:"reward_id"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	Amount     int64     `json:"amount"`
	NewBalance int64     `json:"new_balance"`
	ExecutedAt time.Time `json:"executed_at"`
}

func (e RewardExecutedEvent) Type() EventType {
	return EventTypeRewardExecuted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll registers handler for every known event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes {
		b.Subscribe(eventType, handler)
	}
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Call handlers asynchronously to avoid blocking the emitting transaction
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until the
// transaction commits, then forwards them to the underlying bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events to main event bus")

	// Handlers outlive the request, so they must not inherit its cancellation
	eventCtx := context.WithoutCancel(ctx)

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard is called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of events waiting for Flush
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
