package gate

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edwingeng/deque"
)

// Work is a unit of work run under the gate. ctx is the run's cancellation
// token.
type Work func(ctx context.Context) error

type waiterState int

const (
	waiterPending waiterState = iota
	waiterGranted
	waiterDropped
	waiterAbandoned
)

// waiter is a queued acquisition. ready is closed exactly once, under the
// gate mutex, when the waiter is granted or dropped.
type waiter struct {
	ready chan struct{}
	state waiterState
	err   error
}

// Status is a point-in-time view of a gate.
type Status struct {
	Busy   bool `json:"busy"`
	Queued int  `json:"queued"`
}

// Gate runs at most one unit of work at a time, granting waiters in arrival
// order. The zero value is not usable; construct gates with New.
type Gate struct {
	mu sync.Mutex

	// locked is true while a run is in progress or about to begin.
	locked bool

	// waiters holds *waiter in arrival order. Abandoned entries stay in the
	// deque until they reach the front; queued counts only pending ones.
	waiters deque.Deque
	queued  int

	// notifyMu serializes observer delivery so events arrive in the order
	// the state transitions happened.
	notifyMu  sync.Mutex
	observers []Observer

	defaultTimeout time.Duration
	clock          clock.Clock
	logger         *slog.Logger
}

// New creates an idle gate.
func New(cfg Config, logger *slog.Logger, observers ...Observer) *Gate {
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.DefaultTimeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &Gate{
		waiters:        deque.NewDeque(),
		observers:      observers,
		defaultTimeout: timeout,
		clock:          clk,
		logger:         logger,
	}
}

// Busy reports whether a run is active. Queued callers only exist while a
// run is active, so Busy also covers them.
func (g *Gate) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.locked
}

// QueueLen returns the number of callers waiting for the gate.
func (g *Gate) QueueLen() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.queued
}

// Snapshot returns the busy flag and queue length read atomically.
func (g *Gate) Snapshot() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Status{Busy: g.locked, Queued: g.queued}
}

// Run waits for the gate, then runs work with a fresh cancellation token.
// The error returned by work is passed through unchanged. The gate is
// released before Run returns on every path, including a panic in work.
//
// If ctx ends while the caller is still queued, Run returns ctx.Err() and
// work is never invoked. A caller dropped by CancelAll receives an error
// matching ErrCancelledWhileQueued.
func (g *Gate) Run(ctx context.Context, work Work, opts ...Option) error {
	o := g.options(opts)
	if err := g.acquire(ctx, o.Label); err != nil {
		return err
	}
	return g.run(ctx, work, o)
}

// TryRun runs work only if the gate is free right now. ran is false when
// the gate was held; in that case nothing is queued and err is nil.
func (g *Gate) TryRun(ctx context.Context, work Work, opts ...Option) (ran bool, err error) {
	o := g.options(opts)
	if !g.tryAcquire(o.Label) {
		g.logger.Debug("gate busy, run skipped", "label", o.Label)
		return false, nil
	}
	return true, g.run(ctx, work, o)
}

// CancelAll drops every caller still waiting in the queue and returns how
// many were dropped. Each dropped caller's Run returns an error matching
// both ErrCancelledWhileQueued and reason. The active run is not affected.
func (g *Gate) CancelAll(reason error) int {
	g.mu.Lock()
	dropped := 0
	for !g.waiters.Empty() {
		w := g.waiters.PopFront().(*waiter)
		if w.state != waiterPending {
			continue
		}
		w.state = waiterDropped
		w.err = queueCancelledError(reason)
		close(w.ready)
		dropped++
	}
	g.queued = 0

	if dropped == 0 {
		g.mu.Unlock()
		return 0
	}

	g.logger.Info("queued runs cancelled", "dropped", dropped, "reason", reason)
	g.unlockAndNotify(Event{Kind: EventQueueCancelled, Busy: g.locked, Err: reason})
	return dropped
}

func (g *Gate) tryAcquire(label string) bool {
	g.mu.Lock()
	if g.locked {
		g.mu.Unlock()
		return false
	}
	g.locked = true
	g.unlockAndNotify(Event{Kind: EventBusyChanged, Label: label, Busy: true})
	return true
}

func (g *Gate) acquire(ctx context.Context, label string) error {
	if g.tryAcquire(label) {
		return nil
	}

	g.mu.Lock()
	// The holder may have released between tryAcquire and here.
	if !g.locked {
		g.locked = true
		g.unlockAndNotify(Event{Kind: EventBusyChanged, Label: label, Busy: true})
		return nil
	}
	w := &waiter{ready: make(chan struct{})}
	g.waiters.PushBack(w)
	g.queued++
	g.logger.Debug("run queued", "label", label, "queue_len", g.queued)
	g.unlockAndNotify(Event{Kind: EventQueued, Label: label, Busy: true, QueueLen: g.queued})

	select {
	case <-w.ready:
		return w.err
	case <-ctx.Done():
	}

	g.mu.Lock()
	if w.state == waiterPending {
		w.state = waiterAbandoned
		g.queued--
		g.mu.Unlock()
		g.logger.Debug("queued run abandoned", "label", label, "error", ctx.Err())
		return ctx.Err()
	}
	g.mu.Unlock()

	if w.err != nil {
		return w.err
	}
	// Granted while the caller was giving up: pass the lock on.
	g.release(label)
	return ctx.Err()
}

// release hands the lock to the oldest pending waiter, or goes idle when
// there is none. The lock is never observed free during a hand-off.
func (g *Gate) release(label string) {
	g.mu.Lock()
	for !g.waiters.Empty() {
		w := g.waiters.PopFront().(*waiter)
		if w.state != waiterPending {
			continue
		}
		w.state = waiterGranted
		g.queued--
		close(w.ready)
		g.mu.Unlock()
		return
	}
	g.locked = false
	g.unlockAndNotify(Event{Kind: EventBusyChanged, Label: label, Busy: false})
}

func (g *Gate) run(ctx context.Context, work Work, o Options) (err error) {
	runCtx, cancel := context.WithCancelCause(ctx)

	var timer *clock.Timer
	if o.Timeout > 0 {
		timer = g.clock.AfterFunc(o.Timeout, func() {
			g.expire(runCtx, cancel, o)
		})
	}

	started := g.clock.Now()
	g.logger.Debug("run started", "label", o.Label, "timeout_ms", o.Timeout.Milliseconds())
	g.notify(Event{Kind: EventStarted, Label: o.Label, Busy: true, QueueLen: g.QueueLen()})

	defer func() {
		if timer != nil {
			timer.Stop()
		}
		cancel(nil)

		elapsed := g.clock.Since(started)
		g.logger.Debug("run finished",
			"label", o.Label,
			"duration_ms", elapsed.Milliseconds(),
			"error", err)
		g.notify(Event{Kind: EventFinished, Label: o.Label, Busy: true, Duration: elapsed, Err: err})

		g.release(o.Label)
	}()

	return work(runCtx)
}

// expire cancels the run with ErrTimeout. A timer that fires after the run
// already ended, which Stop cannot rule out, reports nothing.
func (g *Gate) expire(runCtx context.Context, cancel context.CancelCauseFunc, o Options) {
	cancel(ErrTimeout)
	if !errors.Is(context.Cause(runCtx), ErrTimeout) {
		return
	}
	g.logger.Warn("run deadline exceeded, cancellation signaled",
		"label", o.Label,
		"timeout_ms", o.Timeout.Milliseconds())
	g.notify(Event{Kind: EventTimeout, Label: o.Label, Busy: true, QueueLen: g.QueueLen()})
}

// unlockAndNotify releases g.mu and delivers events to observers. notifyMu
// is taken before g.mu is released so that deliveries keep the order of
// the transitions that produced them.
func (g *Gate) unlockAndNotify(events ...Event) {
	if len(g.observers) == 0 {
		g.mu.Unlock()
		return
	}
	g.notifyMu.Lock()
	g.mu.Unlock()
	defer g.notifyMu.Unlock()
	g.deliver(events)
}

func (g *Gate) notify(events ...Event) {
	if len(g.observers) == 0 {
		return
	}
	g.notifyMu.Lock()
	defer g.notifyMu.Unlock()
	g.deliver(events)
}

func (g *Gate) deliver(events []Event) {
	for _, ev := range events {
		for _, o := range g.observers {
			o.Observe(ev)
		}
	}
}
