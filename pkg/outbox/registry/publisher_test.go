package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/idoblon/vendorrs-backend/pkg/config"
	"github.com/idoblon/vendorrs-backend/pkg/db/models"
	"github.com/idoblon/vendorrs-backend/pkg/enums"
	"github.com/idoblon/vendorrs-backend/pkg/outbox"
	"github.com/idoblon/vendorrs-backend/pkg/outbox/payloads"
)

func TestEventRegistryResolveSuccess(t *testing.T) {
	reg := newTestEventRegistry(t)

	orderID := uuid.New()
	payloadBytes := mustMarshal(t, payloads.OrderStatusChangedEvent{
		OrderID:     orderID,
		From:        enums.OrderStatusPending,
		To:          enums.OrderStatusConfirmed,
		TotalAmount: decimal.RequireFromString("2432"),
	})

	event := models.OutboxEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Payload:       mustEnvelope(t, payloadBytes),
	}

	resolved, err := reg.Resolve(event)
	require.NoError(t, err)
	require.Equal(t, "orders-topic", resolved.Descriptor.Topic)
	require.Equal(t, enums.EventOrderStatusChanged, resolved.Descriptor.EventType)

	payload, ok := resolved.Payload.(*payloads.OrderStatusChangedEvent)
	require.True(t, ok, "unexpected payload type %T", resolved.Payload)
	require.Equal(t, orderID, payload.OrderID)
	require.Equal(t, enums.OrderStatusConfirmed, payload.To)
	require.True(t, payload.TotalAmount.Equal(decimal.NewFromInt(2432)))
	require.NotEmpty(t, resolved.Envelope.EventID)
	require.False(t, resolved.Envelope.OccurredAt.IsZero())
}

func TestEventRegistryResolveRejectsBadRows(t *testing.T) {
	reg := newTestEventRegistry(t)

	cases := map[string]models.OutboxEvent{
		"unknown event": {
			EventType:     enums.OutboxEventType("order_state_changed"),
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Payload:       mustEnvelope(t, []byte(`{}`)),
		},
		"aggregate mismatch": {
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.OutboxAggregateType("center"),
			AggregateID:   uuid.New(),
			Payload:       mustEnvelope(t, []byte(`{}`)),
		},
		"missing aggregate id": {
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.Nil,
			Payload:       mustEnvelope(t, []byte(`{}`)),
		},
		"null payload": {
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Payload:       mustEnvelope(t, []byte("null")),
		},
		"broken envelope": {
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   uuid.New(),
			Payload:       json.RawMessage(`{"data":`),
		},
	}

	for name, event := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Resolve(event)
			require.Error(t, err)
			var nonRetry NonRetryableError
			require.True(t, errors.As(err, &nonRetry), "expected non-retryable error, got %T", err)
		})
	}
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	_, err := NewEventRegistry(config.PubSubConfig{})
	require.Error(t, err)
}

func TestAttributesRoundTripThroughFromMessage(t *testing.T) {
	orderID := uuid.New()
	envelopeBytes := mustEnvelope(t, mustMarshal(t, payloads.PaymentUpdatedEvent{OrderID: orderID, PaymentStatus: enums.PaymentStatusCompleted}))
	row := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventPaymentUpdated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Payload:       envelopeBytes,
		CreatedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	var envelope outbox.PayloadEnvelope
	require.NoError(t, json.Unmarshal(envelopeBytes, &envelope))

	attrs := Attributes(row, envelope)
	require.Equal(t, envelope.EventID, attrs[AttrEventID])
	require.Equal(t, "payment_updated", attrs[AttrEventType])
	require.Equal(t, "2026-03-01T10:00:00.000Z", attrs[AttrCreatedAt])

	rebuilt, err := FromMessage(attrs, envelopeBytes)
	require.NoError(t, err)

	resolved, err := newTestEventRegistry(t).Resolve(rebuilt)
	require.NoError(t, err)
	payload := resolved.Payload.(*payloads.PaymentUpdatedEvent)
	require.Equal(t, enums.PaymentStatusCompleted, payload.PaymentStatus)
}

func TestFromMessageRejectsUnknownAttributes(t *testing.T) {
	_, err := FromMessage(map[string]string{AttrEventType: "nope"}, nil)
	var nonRetry NonRetryableError
	require.True(t, errors.As(err, &nonRetry))

	_, err = FromMessage(map[string]string{
		AttrEventType:     "order_created",
		AttrAggregateType: "order",
		AttrAggregateID:   "not-a-uuid",
	}, nil)
	require.True(t, errors.As(err, &nonRetry))
}

func newTestEventRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{OrdersTopic: "orders-topic"})
	require.NoError(t, err)
	return reg
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func mustEnvelope(t *testing.T, payload []byte) json.RawMessage {
	t.Helper()
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       payload,
	}
	data, err := json.Marshal(envelope)
	require.NoError(t, err)
	return data
}
