package gate

import "time"

// EventKind names a point in the gate lifecycle.
type EventKind string

// Lifecycle events delivered to observers.
const (
	EventQueued         EventKind = "run_queued"
	EventStarted        EventKind = "run_started"
	EventFinished       EventKind = "run_finished"
	EventTimeout        EventKind = "run_timeout"
	EventQueueCancelled EventKind = "queue_cancelled"
	EventBusyChanged    EventKind = "busy_changed"
)

// Event describes a lifecycle transition of a gate.
type Event struct {
	Kind  EventKind
	Label string

	// Busy is the gate's busy flag at the time of the event.
	Busy bool

	// QueueLen is the number of waiting callers at the time of the event.
	QueueLen int

	// Duration is set on EventFinished.
	Duration time.Duration

	// Err carries the work failure on EventFinished and the reason on
	// EventQueueCancelled.
	Err error
}

// Observer receives gate lifecycle events. Events are delivered one at a
// time in the order the gate produced them. Observe must not call back into
// the gate that is notifying it.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) {
	f(ev)
}
