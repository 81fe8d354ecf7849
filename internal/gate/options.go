package gate

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// DefaultTimeout is used when Config.DefaultTimeout is left at zero.
const DefaultTimeout = 180 * time.Second

// Config holds gate-wide settings.
type Config struct {
	// DefaultTimeout is the run deadline applied when a call does not pass
	// WithTimeout. A negative value disables the deadline by default.
	DefaultTimeout time.Duration

	// Clock arms the deadline timers. Nil means the wall clock.
	Clock clock.Clock
}

// DefaultConfig returns a Config with the process-wide defaults.
func DefaultConfig() Config {
	return Config{
		DefaultTimeout: DefaultTimeout,
	}
}

// Options describes a single run.
type Options struct {
	// Timeout is the deadline after which the run context is cancelled with
	// ErrTimeout. Zero or negative means no deadline.
	Timeout time.Duration

	// Label identifies the run in logs and events. It has no behavioral effect.
	Label string
}

// Option customizes a single run.
type Option func(*Options)

// WithTimeout overrides the gate's default deadline for one run.
// A zero or negative duration disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithLabel attaches a diagnostic label to one run.
func WithLabel(label string) Option {
	return func(o *Options) {
		o.Label = label
	}
}

func (g *Gate) options(opts []Option) Options {
	o := Options{Timeout: g.defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Label == "" {
		o.Label = uuid.NewString()
	}
	return o
}
