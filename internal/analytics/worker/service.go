package worker

import (
	"context"
	"errors"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/idoblon/vendorrs-backend/internal/analytics/router"
	"github.com/idoblon/vendorrs-backend/pkg/db/models"
	"github.com/idoblon/vendorrs-backend/pkg/logger"
	"github.com/idoblon/vendorrs-backend/pkg/outbox/registry"
)

const (
	ConsumerName = "analytics-worker"
	flushTimeout = 10 * time.Second
)

// Handler processes a resolved order event.
type Handler interface {
	Handle(ctx context.Context, event *registry.ResolvedEvent) error
}

// HandlerFunc adapts functions to the Handler interface.
type HandlerFunc func(ctx context.Context, event *registry.ResolvedEvent) error

func (fn HandlerFunc) Handle(ctx context.Context, event *registry.ResolvedEvent) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

type resolver interface {
	Resolve(event models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

type flusher interface {
	Flush(ctx context.Context) error
}

type Params struct {
	Subscription *gcppubsub.Subscriber
	Registry     resolver
	Handler      Handler
	Manager      idempotencyChecker
	// Flusher, when set, drains buffered rows once receiving stops.
	Flusher flusher
	Logger  *logger.Logger
}

// Service consumes order events from Pub/Sub while honoring Redis idempotency.
type Service struct {
	subscription *gcppubsub.Subscriber
	registry     resolver
	handler      Handler
	manager      idempotencyChecker
	flusher      flusher
	logg         *logger.Logger
}

func NewService(params Params) (*Service, error) {
	if params.Subscription == nil {
		return nil, errors.New("orders subscription is required")
	}
	if params.Registry == nil {
		return nil, errors.New("event registry is required")
	}
	if params.Handler == nil {
		return nil, errors.New("revenue handler is required")
	}
	if params.Manager == nil {
		return nil, errors.New("idempotency manager is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}

	return &Service{
		subscription: params.Subscription,
		registry:     params.Registry,
		handler:      params.Handler,
		manager:      params.Manager,
		flusher:      params.Flusher,
		logg:         params.Logger,
	}, nil
}

type processResult struct {
	nack bool
}

// Run consumes messages until ctx is cancelled, then flushes pending rows.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if s.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
	return multierr.Append(err, s.flush(ctx))
}

func (s *Service) flush(ctx context.Context) error {
	if s.flusher == nil {
		return nil
	}
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	return s.flusher.Flush(flushCtx)
}

func (s *Service) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	fields := map[string]any{"message_id": msg.ID}
	logCtx := s.logg.WithFields(ctx, fields)

	event, err := s.decode(msg)
	if err != nil {
		fields["error"] = err.Error()
		s.logg.Warn(s.logg.WithFields(ctx, fields), "invalid order event")
		return processResult{}
	}
	fields["event_id"] = event.Envelope.EventID
	fields["event_type"] = event.Descriptor.EventType
	fields["occurred_at"] = event.Envelope.OccurredAt.Format(time.RFC3339Nano)
	logCtx = s.logg.WithFields(ctx, fields)

	eventID, err := uuid.Parse(event.Envelope.EventID)
	if err != nil {
		s.logg.Warn(logCtx, "invalid event id")
		return processResult{}
	}

	already, err := s.manager.CheckAndMarkProcessed(logCtx, ConsumerName, eventID)
	if err != nil {
		s.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		s.logg.Info(logCtx, "event already processed")
		return processResult{}
	}

	if err := s.handler.Handle(logCtx, event); err != nil {
		if isPermanent(err) {
			s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "order event dropped")
			return processResult{}
		}
		s.logg.Error(logCtx, "handler error", err)
		_ = s.manager.Delete(logCtx, ConsumerName, eventID)
		return processResult{nack: true}
	}

	s.logg.Info(logCtx, "order event handled")
	return processResult{}
}

// decode rebuilds the outbox row from the message and resolves its payload.
func (s *Service) decode(msg *gcppubsub.Message) (*registry.ResolvedEvent, error) {
	row, err := registry.FromMessage(msg.Attributes, msg.Data)
	if err != nil {
		return nil, err
	}
	event, err := s.registry.Resolve(row)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(event.Envelope.EventID) == "" {
		event.Envelope.EventID = strings.TrimSpace(msg.Attributes[registry.AttrEventID])
	}
	if event.Envelope.EventID == "" {
		return nil, errors.New("event_id missing")
	}
	if event.Envelope.OccurredAt.IsZero() {
		if created, err := time.Parse(time.RFC3339Nano, msg.Attributes[registry.AttrCreatedAt]); err == nil {
			event.Envelope.OccurredAt = created.UTC()
		}
	}
	return event, nil
}

func isPermanent(err error) bool {
	var nonRetryable registry.NonRetryableError
	return errors.Is(err, router.ErrUnsupportedEventType) || errors.As(err, &nonRetryable)
}
