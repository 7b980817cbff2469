package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/idoblon/vendorrs-backend/internal/analytics/writer"
	"github.com/idoblon/vendorrs-backend/pkg/logger"
	"github.com/idoblon/vendorrs-backend/pkg/outbox/payloads"
	"github.com/idoblon/vendorrs-backend/pkg/outbox/registry"
)

var ErrUnsupportedEventType = errors.New("unsupported revenue event type")

// Writer delivers revenue rows to the warehouse.
type Writer interface {
	InsertRevenue(ctx context.Context, row writer.RevenueEventRow) error
}

// Router turns resolved order events into revenue rows.
type Router struct {
	writer Writer
	logg   *logger.Logger
}

func NewRouter(w Writer, logg *logger.Logger) (*Router, error) {
	if w == nil {
		return nil, errors.New("writer is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Router{writer: w, logg: logg}, nil
}

// Handle writes a row for status changes that move revenue. Order events that
// never move revenue on their own are acknowledged without a write.
func (r *Router) Handle(ctx context.Context, event *registry.ResolvedEvent) error {
	if event == nil {
		return registry.NewNonRetryableError(errors.New("nil revenue event"))
	}
	logCtx := r.logg.WithFields(ctx, map[string]any{
		"event_id":   event.Envelope.EventID,
		"event_type": event.Descriptor.EventType,
	})

	switch payload := event.Payload.(type) {
	case *payloads.OrderStatusChangedEvent:
		return r.handleStatusChanged(logCtx, event, payload)
	case *payloads.OrderCreatedEvent,
		*payloads.OrderCancelledEvent,
		*payloads.OrderDeliveredEvent,
		*payloads.PaymentUpdatedEvent:
		r.logg.Debug(logCtx, "event carries no revenue movement")
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedEventType, event.Descriptor.EventType)
	}
}
