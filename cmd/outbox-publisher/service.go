package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/idoblon/vendorrs-backend/pkg/config"
	"github.com/idoblon/vendorrs-backend/pkg/db/models"
	"github.com/idoblon/vendorrs-backend/pkg/logger"
	"github.com/idoblon/vendorrs-backend/pkg/metrics"
	"github.com/idoblon/vendorrs-backend/pkg/outbox"
	"github.com/idoblon/vendorrs-backend/pkg/outbox/registry"
)

const (
	workerName = "outbox-publisher"

	defaultBatchSize   = 50
	defaultPollMs      = 500
	defaultMaxAttempts = 10
	publishTimeout     = 15 * time.Second
	maxBackoff         = 10 * time.Second
	jitterWindow       = 250 * time.Millisecond
	leaseTTL           = 30 * time.Second
)

type pinger interface {
	Ping(context.Context) error
}

type pubSubClient interface {
	pinger
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublished(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, cause error, maxAttempts int, terminal bool) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

// lease keeps a single replica draining the table per batch.
type lease interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type publisherFactory func(topic string) publisher

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type ServiceParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               pinger
	PubSub           pubSubClient
	Repository       outboxRepository
	Registry         registryResolver
	PublisherFactory publisherFactory
	Lease            lease
	Metrics          *metrics.WorkerMetrics
}

// Service drains outbox_events onto Pub/Sub. Delivery is at least once;
// consumers dedupe on the event_id attribute.
type Service struct {
	logg       *logger.Logger
	db         pinger
	repo       outboxRepository
	pubsub     pubSubClient
	registry   registryResolver
	publishers publisherFactory
	lease      lease
	metrics    *metrics.WorkerMetrics

	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	required := []struct {
		name    string
		missing bool
	}{
		{"config", params.Config == nil},
		{"logger", params.Logger == nil},
		{"database client", params.DB == nil},
		{"pubsub client", params.PubSub == nil},
		{"outbox repository", params.Repository == nil},
		{"event registry", params.Registry == nil},
	}
	for _, dep := range required {
		if dep.missing {
			return nil, fmt.Errorf("%s is required", dep.name)
		}
	}

	publishers := params.PublisherFactory
	if publishers == nil {
		publishers = func(topic string) publisher {
			return wrapGCPPublisher(params.PubSub.Publisher(topic))
		}
	}

	cfg := params.Config.Outbox
	return &Service{
		logg:         params.Logger,
		db:           params.DB,
		repo:         params.Repository,
		pubsub:       params.PubSub,
		registry:     params.Registry,
		publishers:   publishers,
		lease:        params.Lease,
		metrics:      params.Metrics,
		batchSize:    positiveOr(cfg.BatchSize, defaultBatchSize),
		maxAttempts:  positiveOr(cfg.MaxAttempts, defaultMaxAttempts),
		pollInterval: time.Duration(positiveOr(cfg.PollIntervalMS, defaultPollMs)) * time.Millisecond,
	}, nil
}

func positiveOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

// Run polls until ctx is cancelled. A full batch polls again at once, an idle
// one waits pollInterval, and a failing one backs off up to maxBackoff.
func (s *Service) Run(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	if err := s.pubsub.Ping(ctx); err != nil {
		return fmt.Errorf("pubsub not ready: %w", err)
	}

	delay := s.pollInterval
	for ctx.Err() == nil {
		processed, err := s.processBatch(ctx)
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox batch failed", err)
			delay = nextBackoff(delay, s.pollInterval, maxBackoff)
		case processed:
			delay = s.pollInterval
			continue
		default:
			delay = s.pollInterval
		}
		if err := wait(ctx, jittered(delay)); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// processBatch publishes one page of pending rows and reports whether any
// were handled. Only bookkeeping failures surface as errors; publish failures
// are recorded on the row.
func (s *Service) processBatch(ctx context.Context) (processed bool, err error) {
	if s.lease != nil {
		ok, leaseErr := s.lease.Acquire(ctx)
		if leaseErr != nil || !ok {
			return false, leaseErr
		}
		defer func() {
			err = multierr.Append(err, s.lease.Release(context.WithoutCancel(ctx)))
		}()
	}

	started := time.Now()
	events, err := s.repo.FetchUnpublished(ctx, s.batchSize)
	if err != nil {
		s.metrics.IncFailure(workerName)
		return false, fmt.Errorf("fetch unpublished: %w", err)
	}
	if len(events) == 0 {
		return false, nil
	}

	published := 0
	for _, event := range events {
		ok, markErr := s.publishOne(ctx, event)
		if ok {
			published++
		}
		err = multierr.Append(err, markErr)
	}
	s.metrics.ObserveBatch(workerName, time.Since(started))
	s.metrics.AddSuccess(workerName, published)
	return true, err
}

func (s *Service) publishOne(ctx context.Context, event models.OutboxEvent) (bool, error) {
	resolved, err := s.registry.Resolve(event)
	if err != nil {
		return false, s.recordFailure(ctx, event, outbox.PayloadEnvelope{}, "", err)
	}

	topic := resolved.Descriptor.Topic
	if err := s.send(ctx, topic, event, resolved.Envelope); err != nil {
		return false, s.recordFailure(ctx, event, resolved.Envelope, topic, err)
	}
	if err := s.repo.MarkPublished(ctx, event.ID); err != nil {
		return true, fmt.Errorf("mark published %s: %w", event.ID, err)
	}
	s.logg.Debug(s.logg.WithFields(ctx, eventFields(event, resolved.Envelope, topic)), "outbox event published")
	return true, nil
}

func (s *Service) send(ctx context.Context, topic string, event models.OutboxEvent, envelope outbox.PayloadEnvelope) error {
	pub := s.publishers(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher not configured for topic %s", topic))
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	result := pub.Publish(ctx, &gcppubsub.Message{
		Data:       event.Payload,
		Attributes: registry.Attributes(event, envelope),
	})
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher returned nil for topic %s", topic))
	}
	_, err := result.Get(ctx)
	return err
}

// recordFailure stores cause on the row. Non-retryable causes dead-letter it
// immediately; others count toward maxAttempts.
func (s *Service) recordFailure(ctx context.Context, event models.OutboxEvent, envelope outbox.PayloadEnvelope, topic string, cause error) error {
	var nonRetryable registry.NonRetryableError
	terminal := errors.As(cause, &nonRetryable)
	attempt := event.AttemptCount + 1
	s.metrics.IncFailure(workerName)

	fields := eventFields(event, envelope, topic)
	fields["attempt_count"] = attempt
	fields["error"] = cause.Error()
	msg := "outbox publish failed"
	if terminal || attempt >= s.maxAttempts {
		fields["dead_lettered"] = true
		msg = "outbox event will not be retried"
	}
	s.logg.Warn(s.logg.WithFields(ctx, fields), msg)

	if err := s.repo.MarkFailed(ctx, event.ID, cause, s.maxAttempts, terminal); err != nil {
		return fmt.Errorf("mark failed %s: %w", event.ID, err)
	}
	return nil
}

func eventFields(event models.OutboxEvent, envelope outbox.PayloadEnvelope, topic string) map[string]any {
	fields := map[string]any{
		"outbox_id":     event.ID.String(),
		"event_type":    string(event.EventType),
		"aggregate_id":  event.AggregateID.String(),
		"attempt_count": event.AttemptCount,
	}
	if envelope.EventID != "" {
		fields["event_id"] = envelope.EventID
	}
	if topic != "" {
		fields["topic"] = topic
	}
	return fields
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// nextBackoff doubles current, starting from base and capped at limit.
func nextBackoff(current, base, limit time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	return min(current*2, limit)
}

func jittered(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + rand.N(jitterWindow)
}
