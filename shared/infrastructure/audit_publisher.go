package infrastructure

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/commercium/checkout-system/shared/events"
)

// EventAppender is the audit-trail sink. Implemented by PostgresEventStore.
type EventAppender interface {
	Append(ctx context.Context, evts ...*events.Event) error
}

// AuditingPublisher writes every event to the durable audit trail before
// forwarding it to the outbound publisher. An append failure blocks the
// publish; a broadcast failure is logged only, since the record already
// exists and downstream consumers tolerate gaps.
type AuditingPublisher struct {
	trail  EventAppender
	next   events.Publisher
	logger zerolog.Logger
}

// NewAuditingPublisher wraps next with the audit trail.
func NewAuditingPublisher(trail EventAppender, next events.Publisher, logger zerolog.Logger) *AuditingPublisher {
	return &AuditingPublisher{
		trail:  trail,
		next:   next,
		logger: logger.With().Str("component", "audit_publisher").Logger(),
	}
}

func (p *AuditingPublisher) Publish(ctx context.Context, evts ...*events.Event) error {
	if len(evts) == 0 {
		return nil
	}

	if err := p.trail.Append(ctx, evts...); err != nil {
		return err
	}

	if p.next == nil {
		return nil
	}

	if err := p.next.Publish(ctx, evts...); err != nil {
		p.logger.Error().Err(err).Int("events", len(evts)).Msg("outbound publish failed after audit append")
	}
	return nil
}
