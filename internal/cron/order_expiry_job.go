package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/idoblon/vendorrs-backend/internal/orders"
	"github.com/idoblon/vendorrs-backend/pkg/db/models"
	"github.com/idoblon/vendorrs-backend/pkg/enums"
	pkgerrors "github.com/idoblon/vendorrs-backend/pkg/errors"
	"github.com/idoblon/vendorrs-backend/pkg/logger"
	"github.com/idoblon/vendorrs-backend/pkg/pagination"
)

const (
	defaultPendingOrderTTL = 7 * 24 * time.Hour
	expiryPageSize         = pagination.MaxLimit
)

// orderWorkflow is the slice of the orders service the expiry job drives.
type orderWorkflow interface {
	ListOrders(ctx context.Context, actor orders.Actor, filters orders.ListFilters, params pagination.Params) (*orders.OrderList, error)
	TransitionOrder(ctx context.Context, input orders.TransitionInput) (*models.Order, error)
}

type OrderExpiryJobParams struct {
	Logger  *logger.Logger
	Orders  orderWorkflow
	ActorID uuid.UUID
	TTL     time.Duration
	Now     func() time.Time
}

type orderExpiryJob struct {
	logg   *logger.Logger
	orders orderWorkflow
	actor  orders.Actor
	ttl    time.Duration
	now    func() time.Time
}

// NewOrderExpiryJob cancels PENDING orders older than the TTL. Cancellation
// runs through the regular transition so reservations are released and the
// status change is recorded like any admin cancellation.
func NewOrderExpiryJob(params OrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.Orders == nil {
		return nil, errors.New("orders service required")
	}
	if params.ActorID == uuid.Nil {
		return nil, errors.New("system actor id required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultPendingOrderTTL
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &orderExpiryJob{
		logg:   params.Logger,
		orders: params.Orders,
		actor:  orders.Actor{UserID: params.ActorID, Role: enums.UserRoleAdmin},
		ttl:    ttl,
		now:    now,
	}, nil
}

func (j *orderExpiryJob) Name() string { return "order-expiry" }

func (j *orderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	status := enums.OrderStatusPending
	filters := orders.ListFilters{Status: &status, CreatedTo: &cutoff}

	var (
		cursor  string
		expired int
		errs    error
	)
	for {
		page, err := j.orders.ListOrders(ctx, j.actor, filters, pagination.Params{Limit: expiryPageSize, Cursor: cursor})
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("list pending orders: %w", err))
		}
		for _, order := range page.Orders {
			ok, err := j.expire(ctx, order)
			if ok {
				expired++
			}
			errs = multierr.Append(errs, err)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":  cutoff,
		"expired": expired,
	}), "pending order expiry complete")
	return errs
}

// expire cancels one order. Orders that moved on since they were listed are
// skipped without error.
func (j *orderExpiryJob) expire(ctx context.Context, order models.Order) (bool, error) {
	notes := fmt.Sprintf("expired after %s in PENDING", j.ttl)
	_, err := j.orders.TransitionOrder(ctx, orders.TransitionInput{
		Actor:   j.actor,
		OrderID: order.ID,
		To:      enums.OrderStatusCancelled,
		Notes:   &notes,
	})
	if err == nil {
		return true, nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		switch typed.Code() {
		case pkgerrors.CodeStateConflict, pkgerrors.CodeConflict, pkgerrors.CodeNotFound:
			j.logg.Warn(j.logg.WithOrderID(ctx, order.ID.String()), "pending order changed before expiry")
			return false, nil
		}
	}
	return false, fmt.Errorf("expire order %s: %w", order.ID, err)
}
