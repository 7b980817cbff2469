package router

import (
	"context"
	"fmt"
	"time"

	"github.com/idoblon/vendorrs-backend/internal/analytics"
	"github.com/idoblon/vendorrs-backend/internal/analytics/writer"
	"github.com/idoblon/vendorrs-backend/pkg/outbox/payloads"
	"github.com/idoblon/vendorrs-backend/pkg/outbox/registry"
)

func (r *Router) handleStatusChanged(ctx context.Context, event *registry.ResolvedEvent, payload *payloads.OrderStatusChangedEvent) error {
	ctx = r.logg.WithOrderID(ctx, payload.OrderID.String())
	ctx = r.logg.WithCenterID(ctx, payload.CenterID.String())

	revenue := analytics.RevenueDelta(payload.From, payload.To, payload.TotalAmount)
	if revenue.IsZero() {
		r.logg.Debug(ctx, "status change leaves revenue unchanged")
		return nil
	}

	row, err := buildRevenueRow(event, payload)
	if err != nil {
		r.logg.Error(ctx, "failed to build revenue row", err)
		return registry.NewNonRetryableError(err)
	}
	if err := r.writer.InsertRevenue(ctx, row); err != nil {
		r.logg.Error(ctx, "failed to insert revenue row", err)
		return err
	}

	r.logg.Info(r.logg.WithField(ctx, "revenue_delta", revenue.String()), "revenue row inserted")
	return nil
}

func buildRevenueRow(event *registry.ResolvedEvent, payload *payloads.OrderStatusChangedEvent) (writer.RevenueEventRow, error) {
	revenue := analytics.RevenueDelta(payload.From, payload.To, payload.TotalAmount)
	commission := analytics.RevenueDelta(payload.From, payload.To, payload.CommissionAmount)

	units := int64(payload.Units)
	if revenue.IsNegative() {
		units = -units
	}

	encoded, err := writer.EncodeJSON(payload)
	if err != nil {
		return writer.RevenueEventRow{}, fmt.Errorf("encode payload json: %w", err)
	}

	return writer.RevenueEventRow{
		EventID:         event.Envelope.EventID,
		EventType:       string(event.Descriptor.EventType),
		OccurredAt:      analytics.RevenueTimestamp(payload.ChangedAt, event.Envelope.OccurredAt, time.Now()),
		OrderID:         payload.OrderID.String(),
		OrderNumber:     payload.OrderNumber,
		VendorID:        payload.VendorID.String(),
		CenterID:        payload.CenterID.String(),
		FromStatus:      string(payload.From),
		ToStatus:        string(payload.To),
		RevenueDelta:    revenue.Rat(),
		CommissionDelta: commission.Rat(),
		UnitsDelta:      units,
		Payload:         encoded,
	}, nil
}
