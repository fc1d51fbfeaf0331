package audit

import (
	"context"
	"log/slog"
	"time"
)

// Publisher hands workflow events to the worker without blocking the request
// path. The audit trail is best-effort: a full inbox drops the event with a
// log line rather than stalling a payment.
type Publisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

func NewPublisher(inbox chan<- Event, logger *slog.Logger) *Publisher {
	return &Publisher{inbox: inbox, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit inbox full, event dropped",
			"action", event.Action,
			"subject_id", event.SubjectID,
		)
	}
}
