// Package audit delivers audit events to the sink without letting sink
// failures leak into the operations that produced them.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lodestone-search/lodestone/internal/domain"
	"github.com/lodestone-search/lodestone/internal/metrics"
)

// appendTimeout bounds one sink write so a stalled sink cannot pin goroutines.
const appendTimeout = 5 * time.Second

// Sink is the audit persistence contract.
type Sink interface {
	Append(ctx context.Context, ev domain.Event) error
	Recent(ctx context.Context, t domain.Tenant, entityType string, count int) ([]domain.Event, error)
}

// Dispatcher hands events to the sink. Delivery is best-effort: a failed
// append is counted and logged, never propagated.
type Dispatcher struct {
	sink   Sink
	logger *zap.Logger
}

// NewDispatcher creates an audit dispatcher.
func NewDispatcher(sink Sink, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{sink: sink, logger: logger}
}

// Dispatch appends each event. Delivery outlives the request context: an
// already-answered request must still get its audit record written.
func (d *Dispatcher) Dispatch(ctx context.Context, events []domain.Event) {
	if len(events) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), appendTimeout)
	defer cancel()

	for _, ev := range events {
		if err := d.sink.Append(ctx, ev); err != nil {
			metrics.AuditEventsTotal.WithLabelValues(string(ev.Kind), "dropped").Inc()
			d.logger.Warn("Audit event dropped",
				zap.String("kind", string(ev.Kind)),
				zap.String("entity_id", ev.EntityID),
				zap.Error(err),
			)
			continue
		}
		metrics.AuditEventsTotal.WithLabelValues(string(ev.Kind), "ok").Inc()
	}
}

// Recent returns a tenant's latest audit events, newest first.
func (d *Dispatcher) Recent(ctx context.Context, t domain.Tenant, entityType string, count int) ([]domain.Event, error) {
	return d.sink.Recent(ctx, t, entityType, count)
}
