package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nathfavour/plantainbanana/internal/gate"
)

// LoggingHandler writes every gate event to a structured log.
type LoggingHandler struct {
	logger *slog.Logger
}

// NewLoggingHandler creates a LoggingHandler.
func NewLoggingHandler(logger *slog.Logger) *LoggingHandler {
	return &LoggingHandler{logger: logger.With("component", "gate_events")}
}

// HandleEvent implements EventHandler.
func (h *LoggingHandler) HandleEvent(ctx context.Context, event *GateEvent) error {
	level := slog.LevelDebug
	switch event.Type {
	case gate.EventTimeout, gate.EventQueueCancelled:
		level = slog.LevelWarn
	case gate.EventFinished:
		if event.Err != nil {
			level = slog.LevelInfo
		}
	}

	attrs := []slog.Attr{
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", string(event.Type)),
		slog.String("label", event.Label),
		slog.Bool("busy", event.Busy),
		slog.Int("queue_len", event.QueueLen),
	}
	if event.Type == gate.EventFinished {
		attrs = append(attrs, slog.Int64("duration_ms", event.Duration.Milliseconds()))
	}
	if event.Err != nil {
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}

	h.logger.LogAttrs(ctx, level, "gate event", attrs...)
	return nil
}

// Stats summarizes gate activity since startup.
type Stats struct {
	RunsStarted     int       `json:"runs_started"`
	RunsFailed      int       `json:"runs_failed"`
	RunsSucceeded   int       `json:"runs_succeeded"`
	Timeouts        int       `json:"timeouts"`
	QueueCancels    int       `json:"queue_cancels"`
	LastRunDuration string    `json:"last_run_duration,omitempty"`
	LastBusyChange  time.Time `json:"last_busy_change"`
}

// StatsHandler aggregates gate events into Stats.
type StatsHandler struct {
	mu    sync.Mutex
	stats Stats
}

// NewStatsHandler creates an empty StatsHandler.
func NewStatsHandler() *StatsHandler {
	return &StatsHandler{}
}

// HandleEvent implements EventHandler.
func (h *StatsHandler) HandleEvent(_ context.Context, event *GateEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch event.Type {
	case gate.EventStarted:
		h.stats.RunsStarted++
	case gate.EventFinished:
		if event.Err != nil {
			h.stats.RunsFailed++
		} else {
			h.stats.RunsSucceeded++
		}
		h.stats.LastRunDuration = event.Duration.String()
	case gate.EventTimeout:
		h.stats.Timeouts++
	case gate.EventQueueCancelled:
		h.stats.QueueCancels++
	case gate.EventBusyChanged:
		h.stats.LastBusyChange = event.CreatedAt
	}
	return nil
}

// Stats returns a copy of the aggregated statistics.
func (h *StatsHandler) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}
