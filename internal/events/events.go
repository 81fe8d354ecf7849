package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nathfavour/plantainbanana/internal/gate"
)

// GateEvent is a single gate lifecycle transition as seen by handlers.
type GateEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is the lifecycle transition, e.g. "run_started"
	Type gate.EventKind `json:"type"`

	// Label identifies the run the event belongs to, if any
	Label string `json:"label,omitempty"`

	// Busy is the gate's busy flag when the event was produced
	Busy bool `json:"busy"`

	// QueueLen is the number of waiting callers when the event was produced
	QueueLen int `json:"queue_len"`

	// Duration is the run duration, set for run_finished
	Duration time.Duration `json:"duration,omitempty"`

	// Err is the work failure or the cancellation reason, if any
	Err error `json:"-"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewGateEvent converts a gate event into a GateEvent with a fresh ID.
func NewGateEvent(ev gate.Event) *GateEvent {
	return &GateEvent{
		ID:        uuid.New(),
		Type:      ev.Kind,
		Label:     ev.Label,
		Busy:      ev.Busy,
		QueueLen:  ev.QueueLen,
		Duration:  ev.Duration,
		Err:       ev.Err,
		CreatedAt: time.Now(),
	}
}

// EventHandler defines an interface for components that react to gate events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *GateEvent) error
}

// EventEmitter defines an interface for components that publish gate events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *GateEvent) error
}
