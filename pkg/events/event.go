package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent embeds the common fields of concrete events.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeTurnCompleted = "TURN_COMPLETED"
	TypeTurnFailed    = "TURN_FAILED"
)

// NewTurnCompleted marks one finished conversation turn.
func NewTurnCompleted(sessionKey string, sources []string) Event {
	return BaseEvent{
		Type: TypeTurnCompleted,
		Data: map[string]interface{}{
			"session_key": sessionKey,
			"sources":     sources,
		},
		OccurredAt: time.Now(),
	}
}

// NewTurnFailed carries the user-facing message of a failed turn.
func NewTurnFailed(sessionKey, message string) Event {
	return BaseEvent{
		Type: TypeTurnFailed,
		Data: map[string]interface{}{
			"session_key": sessionKey,
			"message":     message,
		},
		OccurredAt: time.Now(),
	}
}
