package events

import (
	"context"

	"github.com/nathfavour/plantainbanana/internal/gate"
)

// GateObserver adapts an EventEmitter to gate.Observer.
type GateObserver struct {
	emitter EventEmitter
}

// NewGateObserver returns a gate.Observer that publishes every gate event
// to emitter. Handler failures are logged by the emitter and otherwise
// ignored: the gate never waits on or reacts to its observers' errors.
func NewGateObserver(emitter EventEmitter) *GateObserver {
	return &GateObserver{emitter: emitter}
}

// Observe implements gate.Observer.
func (o *GateObserver) Observe(ev gate.Event) {
	_ = o.emitter.EmitEvent(context.Background(), NewGateEvent(ev))
}

var _ gate.Observer = (*GateObserver)(nil)
