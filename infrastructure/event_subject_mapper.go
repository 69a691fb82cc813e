package infrastructure

import (
	"fmt"

	"rewarder/events"
)

// RewardsStreamName is the JetStream stream holding exported ledger events
const RewardsStreamName = "REWARDS"

// EventSubjectMapper maps domain events to NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeUserCreated:
		return "rewards.users.created"
	case events.EventTypeRewardRequested:
		return "rewards.scheduled.requested"
	case events.EventTypeRewardExecuted:
		return "rewards.scheduled.executed"
	default:
		return fmt.Sprintf("rewards.unknown.%s", event.Type())
	}
}

// GetAllSubjects returns all subjects this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{"rewards.>"}
}
