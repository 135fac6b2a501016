package action

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Event captures lightweight execution telemetry for one action.
type Event struct {
	Name      string
	Duration  time.Duration
	Success   bool
	Err       error
	Fields    map[string]any
	StartedAt time.Time
}

// Observer receives action execution events.
type Observer interface {
	ObserveAction(ctx context.Context, event Event)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) ObserveAction(context.Context, Event) {}

type logObserver struct {
	logger *slog.Logger
}

// NewLogObserver writes action events to logger.
func NewLogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		return NoopObserver{}
	}
	return &logObserver{logger: logger}
}

func (o *logObserver) ObserveAction(ctx context.Context, event Event) {
	attrs := make([]any, 0, 8+len(event.Fields)*2)
	attrs = append(attrs,
		"action", event.Name,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
	)
	for k, v := range event.Fields {
		attrs = append(attrs, k, v)
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		// Rejected input is a user mistake, not a fault.
		if errors.Is(event.Err, ErrInvalidInput) {
			o.logger.WarnContext(ctx, "action_use_case", attrs...)
			return
		}
		o.logger.ErrorContext(ctx, "action_use_case", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "action_use_case", attrs...)
}
