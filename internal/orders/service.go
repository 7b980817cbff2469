package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/idoblon/vendorrs-backend/internal/inventory"
	"github.com/idoblon/vendorrs-backend/internal/pricing"
	"github.com/idoblon/vendorrs-backend/pkg/db"
	"github.com/idoblon/vendorrs-backend/pkg/db/models"
	"github.com/idoblon/vendorrs-backend/pkg/enums"
	pkgerrors "github.com/idoblon/vendorrs-backend/pkg/errors"
	"github.com/idoblon/vendorrs-backend/pkg/logger"
	"github.com/idoblon/vendorrs-backend/pkg/metrics"
	"github.com/idoblon/vendorrs-backend/pkg/outbox"
	"github.com/idoblon/vendorrs-backend/pkg/outbox/payloads"
	"github.com/idoblon/vendorrs-backend/pkg/pagination"
)

// Service defines the order lifecycle workflows.
type Service interface {
	QuotePricing(ctx context.Context, input QuoteInput) (*pricing.Summary, error)
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	TransitionOrder(ctx context.Context, input TransitionInput) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, input PaymentUpdateInput) (*models.Order, error)
	GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, actor Actor, filters ListFilters, params pagination.Params) (*OrderList, error)
	DeactivateOrder(ctx context.Context, actor Actor, orderID uuid.UUID) error
}

type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Outbox    outboxPublisher
	Inventory InventoryManager
	Pricer    Pricer
	Metrics   *metrics.OrderMetrics
	Logger    *logger.Logger
	Now       func() time.Time
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	inventory InventoryManager
	pricer    Pricer
	metrics   *metrics.OrderMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory manager required")
	}
	if params.Pricer == nil {
		return nil, fmt.Errorf("pricer required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		outbox:    params.Outbox,
		inventory: params.Inventory,
		pricer:    params.Pricer,
		metrics:   params.Metrics,
		logg:      params.Logger,
		now:       now,
	}, nil
}

func (s *service) QuotePricing(ctx context.Context, input QuoteInput) (*pricing.Summary, error) {
	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	vendorID := input.VendorID
	if input.Actor.Role == enums.UserRoleVendor {
		vendorID = input.Actor.UserID
	}
	participants, err := s.loadParticipants(ctx, s.repo, vendorID, input.CenterID)
	if err != nil {
		return nil, err
	}
	lines, _, err := s.priceLines(ctx, s.repo, input.Items)
	if err != nil {
		return nil, err
	}
	summary, err := s.pricer.Calculate(pricing.Input{
		Lines:          lines,
		VendorDistrict: participants.vendor.District,
		CenterDistrict: participants.center.District,
		ShippingCost:   input.ShippingCost,
		ShippingMethod: input.ShippingMethod,
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	switch input.Actor.Role {
	case enums.UserRoleVendor:
		if input.VendorID != uuid.Nil && input.VendorID != input.Actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendors can only order for themselves")
		}
		input.VendorID = input.Actor.UserID
	case enums.UserRoleAdmin:
		if input.VendorID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only vendors can place orders")
	}
	if input.CenterID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "center id required")
	}

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = enums.PaymentMethodCashOnDelivery
	}
	if !paymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", paymentMethod))
	}
	priority := input.Priority
	if priority == "" {
		priority = enums.OrderPriorityNormal
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid priority %q", priority))
	}

	participants, err := s.loadParticipants(ctx, s.repo, input.VendorID, input.CenterID)
	if err != nil {
		return nil, err
	}
	lines, specs, err := s.priceLines(ctx, s.repo, input.Items)
	if err != nil {
		return nil, err
	}
	summary, err := s.pricer.Calculate(pricing.Input{
		Lines:          lines,
		VendorDistrict: participants.vendor.District,
		CenterDistrict: participants.center.District,
		ShippingCost:   input.ShippingCost,
		ShippingMethod: input.ShippingMethod,
	})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := buildOrder(input, summary, specs, paymentMethod, priority, now)

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.inventory.Reserve(ctx, tx, order.CenterID, inventoryLines(order.Items)); err != nil {
			return err
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order number already exists")
			}
			return db.Translate(err, "create order")
		}
		if err := repo.CreateOrderItems(ctx, order.Items); err != nil {
			return db.Translate(err, "create order items")
		}
		if err := repo.AppendHistory(ctx, &order.StatusHistory[0]); err != nil {
			return db.Translate(err, "append status history")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(input.Actor),
			OccurredAt:    now,
			Data: payloads.OrderCreatedEvent{
				OrderID:          order.ID,
				OrderNumber:      order.OrderNumber,
				VendorID:         order.VendorID,
				CenterID:         order.CenterID,
				TotalAmount:      order.TotalAmount,
				CommissionAmount: order.CommissionAmount,
				Units:            summary.Units(),
				Priority:         string(order.Priority),
			},
		})
	})
	if err != nil {
		if code := pkgerrors.CodeOf(err); code == pkgerrors.CodeInsufficientStock || code == pkgerrors.CodeNotFound {
			s.metrics.IncReservationFailure(string(code))
		}
		return nil, err
	}

	s.metrics.IncCreated()
	s.log(ctx, order, "order.created", map[string]any{
		"vendor_id":    order.VendorID.String(),
		"total_amount": order.TotalAmount.String(),
		"commission":   order.CommissionAmount.String(),
	})
	return order, nil
}

func (s *service) TransitionOrder(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.To.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", input.To))
	}

	var (
		from   enums.OrderStatus
		result *models.Order
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadActiveOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if err := authorize(input.Actor, order); err != nil {
			return err
		}
		from = order.Status
		if !CanTransition(from, input.To) {
			return NewInvalidTransitionError(from, input.To)
		}
		if !roleMayTarget(input.Actor.Role, input.To) {
			return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("%s cannot move orders to %s", input.Actor.Role, input.To))
		}

		now := s.now().UTC()
		extra := map[string]any{}
		if input.To == enums.OrderStatusDelivered {
			extra["delivery_actual_date"] = now
		}
		swapped, err := repo.CompareAndSwapStatus(ctx, StatusSwap{
			OrderID:         order.ID,
			ExpectedStatus:  from,
			ExpectedVersion: order.Version,
			NewStatus:       input.To,
			Extra:           extra,
		})
		if err != nil {
			return db.Translate(err, "update order status")
		}
		if !swapped {
			return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
		}

		if err := repo.AppendHistory(ctx, &models.OrderStatusHistory{
			ID:        uuid.New(),
			OrderID:   order.ID,
			Status:    input.To,
			UpdatedBy: input.Actor.UserID,
			Notes:     input.Notes,
			ChangedAt: now,
		}); err != nil {
			return db.Translate(err, "append status history")
		}

		restocked, err := s.applyInventory(ctx, tx, order, from, input.To)
		if err != nil {
			return err
		}

		if err := s.emitTransition(ctx, tx, input, order, from, restocked, now); err != nil {
			return err
		}

		result, err = repo.FindOrder(ctx, order.ID)
		return db.Translate(err, "reload order")
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(string(from), string(input.To))
	s.log(ctx, result, "order.status_changed", map[string]any{
		"from":     from,
		"to":       input.To,
		"actor_id": input.Actor.UserID.String(),
	})
	return result, nil
}

// applyInventory runs the stock side effect of a transition. It reports
// whether committed stock was put back on the shelf.
func (s *service) applyInventory(ctx context.Context, tx *gorm.DB, order *models.Order, from, to enums.OrderStatus) (bool, error) {
	lines := inventoryLines(order.Items)
	switch to {
	case enums.OrderStatusConfirmed:
		return false, s.inventory.Commit(ctx, tx, order.CenterID, lines)
	case enums.OrderStatusCancelled:
		if from == enums.OrderStatusPending {
			return false, s.inventory.Release(ctx, tx, order.CenterID, lines)
		}
		return true, s.inventory.Restock(ctx, tx, order.CenterID, lines)
	case enums.OrderStatusDelivered:
		return false, s.inventory.Finalize(ctx, tx, order.CenterID)
	case enums.OrderStatusReturned:
		// Delivered orders were already uncounted on delivery.
		if from == enums.OrderStatusShipped {
			return false, s.inventory.DecrementCenterOrders(ctx, tx, order.CenterID)
		}
	}
	return false, nil
}

func (s *service) emitTransition(ctx context.Context, tx *gorm.DB, input TransitionInput, order *models.Order, from enums.OrderStatus, restocked bool, now time.Time) error {
	notes := ""
	if input.Notes != nil {
		notes = strings.TrimSpace(*input.Notes)
	}
	events := []outbox.DomainEvent{{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actorRef(input.Actor),
		OccurredAt:    now,
		Data: payloads.OrderStatusChangedEvent{
			OrderID:          order.ID,
			OrderNumber:      order.OrderNumber,
			VendorID:         order.VendorID,
			CenterID:         order.CenterID,
			From:             from,
			To:               input.To,
			Version:          order.Version + 1,
			TotalAmount:      order.TotalAmount,
			CommissionAmount: order.CommissionAmount,
			Units:            units(order.Items),
			ChangedBy:        input.Actor.UserID,
			ChangedAt:        now,
			Notes:            notes,
		},
	}}

	switch input.To {
	case enums.OrderStatusCancelled:
		events = append(events, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(input.Actor),
			OccurredAt:    now,
			Data: payloads.OrderCancelledEvent{
				OrderID:     order.ID,
				CenterID:    order.CenterID,
				From:        from,
				Restocked:   restocked,
				CancelledAt: now,
				Reason:      notes,
			},
		})
	case enums.OrderStatusDelivered:
		events = append(events, outbox.DomainEvent{
			EventType:     enums.EventOrderDelivered,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(input.Actor),
			OccurredAt:    now,
			Data: payloads.OrderDeliveredEvent{
				OrderID:     order.ID,
				CenterID:    order.CenterID,
				TotalAmount: order.TotalAmount,
				DeliveredAt: now,
			},
		})
	}

	for _, event := range events {
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
	}
	return nil
}

// UpdatePaymentStatus records a status reported by the payment processor.
// It never moves the order status.
func (s *service) UpdatePaymentStatus(ctx context.Context, input PaymentUpdateInput) (*models.Order, error) {
	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	if input.Actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can update payments")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment status %q", input.Status))
	}
	if input.PaidAmount != nil && input.PaidAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paid amount must not be negative")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadActiveOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		updates := map[string]any{"payment_status": input.Status}
		if input.TransactionID != nil {
			updates["payment_transaction_id"] = strings.TrimSpace(*input.TransactionID)
		}
		if input.PaidAmount != nil {
			updates["paid_amount"] = input.PaidAmount.Round(2)
		}
		paidDate := order.PaidDate
		if input.Status == enums.PaymentStatusCompleted && paidDate == nil {
			paidDate = &now
			updates["paid_date"] = now
		}
		if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
			return db.Translate(err, "update payment")
		}

		result, err = repo.FindOrder(ctx, order.ID)
		if err != nil {
			return db.Translate(err, "reload order")
		}

		transactionID := ""
		if result.PaymentTransactionID != nil {
			transactionID = *result.PaymentTransactionID
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentUpdated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actorRef(input.Actor),
			OccurredAt:    now,
			Data: payloads.PaymentUpdatedEvent{
				OrderID:       order.ID,
				PaymentStatus: input.Status,
				TransactionID: transactionID,
				PaidAmount:    result.PaidAmount,
				PaidDate:      paidDate,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx, result, "order.payment_updated", map[string]any{"payment_status": input.Status})
	return result, nil
}

func (s *service) GetOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	if !order.IsActive && actor.Role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err := authorize(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders scopes the listing to the caller: vendors and centers only see
// their own orders, admins may filter freely.
func (s *service) ListOrders(ctx context.Context, actor Actor, filters ListFilters, params pagination.Params) (*OrderList, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", *filters.Status))
	}
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	self := actor.UserID
	switch actor.Role {
	case enums.UserRoleVendor:
		filters.VendorID = &self
		filters.IncludeInactive = false
	case enums.UserRoleCenter:
		filters.CenterID = &self
		filters.IncludeInactive = false
	case enums.UserRoleAdmin:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot list orders")
	}

	rows, err := s.repo.ListOrders(ctx, filters, params)
	if err != nil {
		return nil, db.Translate(err, "list orders")
	}
	page, next := pagination.Trim(rows, params.Limit, func(order models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: order.CreatedAt, ID: order.ID}
	})
	return &OrderList{Orders: page, NextCursor: next}, nil
}

// DeactivateOrder soft deletes an order that can no longer move inventory.
func (s *service) DeactivateOrder(ctx context.Context, actor Actor, orderID uuid.UUID) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.Role != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can delete orders")
	}
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		order, err = s.loadActiveOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if !IsTerminal(order.Status) && order.Status != enums.OrderStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only delivered, cancelled or returned orders can be deleted").
				WithDetails(map[string]any{"status": order.Status})
		}
		return db.Translate(repo.UpdateOrder(ctx, order.ID, map[string]any{"is_active": false}), "deactivate order")
	})
	if err != nil {
		return err
	}
	s.log(ctx, order, "order.deactivated", nil)
	return nil
}

type participants struct {
	vendor *models.User
	center *models.User
}

func (s *service) loadParticipants(ctx context.Context, repo Repository, vendorID, centerID uuid.UUID) (*participants, error) {
	if vendorID == uuid.Nil || centerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor and center ids required")
	}
	vendor, err := repo.FindUser(ctx, vendorID)
	if err != nil {
		return nil, notFoundOr(err, "load vendor")
	}
	if vendor.Role != enums.UserRoleVendor || !vendor.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}
	center, err := repo.FindUser(ctx, centerID)
	if err != nil {
		return nil, notFoundOr(err, "load center")
	}
	if center.Role != enums.UserRoleCenter || !center.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "center not found")
	}
	return &participants{vendor: vendor, center: center}, nil
}

// priceLines resolves products into pricing lines using the current catalog
// price; specifications are returned index-aligned with the lines.
func (s *service) priceLines(ctx context.Context, repo Repository, items []ItemInput) ([]pricing.Line, []map[string]any, error) {
	if len(items) == 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for i, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required").
				WithDetails(map[string]any{"field": fmt.Sprintf("items[%d].productId", i)})
		}
		if _, ok := seen[item.ProductID]; !ok {
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}

	products, err := repo.FindProducts(ctx, ids)
	if err != nil {
		return nil, nil, db.Translate(err, "load products")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	lines := make([]pricing.Line, 0, len(items))
	specs := make([]map[string]any, 0, len(items))
	for i, item := range items {
		product, ok := byID[item.ProductID]
		if !ok || !product.IsActive {
			// Unknown products are bad input; a known product missing from the
			// center's shelf is reported as NotFound by the reservation.
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product").
				WithDetails(map[string]any{
					"field":     fmt.Sprintf("items[%d].productId", i),
					"productId": item.ProductID.String(),
				})
		}
		lines = append(lines, pricing.Line{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
		})
		specs = append(specs, item.Specifications)
	}
	return lines, specs, nil
}

func (s *service) loadActiveOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "load order")
	}
	if !order.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) log(ctx context.Context, order *models.Order, msg string, fields map[string]any) {
	if s.logg == nil || order == nil {
		return
	}
	logCtx := s.logg.WithOrderID(ctx, order.ID.String())
	logCtx = s.logg.WithCenterID(logCtx, order.CenterID.String())
	logCtx = s.logg.WithField(logCtx, "order_number", order.OrderNumber)
	if len(fields) > 0 {
		logCtx = s.logg.WithFields(logCtx, fields)
	}
	s.logg.Info(logCtx, msg)
}

func buildOrder(input CreateOrderInput, summary pricing.Summary, specs []map[string]any, method enums.PaymentMethod, priority enums.OrderPriority, now time.Time) *models.Order {
	orderID := uuid.New()
	items := make([]models.OrderItem, 0, len(summary.Lines))
	for i, line := range summary.Lines {
		items = append(items, models.OrderItem{
			ID:             uuid.New(),
			OrderID:        orderID,
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			TotalPrice:     line.TotalPrice,
			Specifications: specs[i],
			CreatedAt:      now,
		})
	}
	return &models.Order{
		ID:                   orderID,
		OrderNumber:          NewOrderNumber(now, orderID),
		VendorID:             input.VendorID,
		CenterID:             input.CenterID,
		Subtotal:             summary.Subtotal,
		TaxRate:              summary.TaxRate,
		TaxAmount:            summary.TaxAmount,
		ShippingMethod:       summary.ShippingMethod,
		ShippingCost:         summary.ShippingCost,
		DiscountPercentage:   summary.DiscountPercentage,
		DiscountAmount:       summary.DiscountAmount,
		TotalAmount:          summary.TotalAmount,
		CommissionAmount:     summary.CommissionAmount,
		CommissionPercentage: summary.CommissionPercentage,
		PaymentMethod:        method,
		PaymentStatus:        enums.PaymentStatusPending,
		Status:               enums.OrderStatusPending,
		Priority:             priority,
		Notes:                trimmed(input.Notes),
		DeliveryExpectedDate: input.DeliveryExpectedDate,
		DeliveryAddress:      trimmed(input.DeliveryAddress),
		IsActive:             true,
		Version:              1,
		Items:                items,
		StatusHistory: []models.OrderStatusHistory{{
			ID:        uuid.New(),
			OrderID:   orderID,
			Status:    enums.OrderStatusPending,
			UpdatedBy: input.Actor.UserID,
			Notes:     trimmed(input.Notes),
			ChangedAt: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewOrderNumber renders ORD-YYYYMMDD-XXXXXXXX from the creation date and
// the first eight hex digits of the order id.
func NewOrderNumber(now time.Time, orderID uuid.UUID) string {
	suffix := strings.ToUpper(strings.ReplaceAll(orderID.String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}

func inventoryLines(items []models.OrderItem) []inventory.Line {
	lines := make([]inventory.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return lines
}

func units(items []models.OrderItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func requireActor(actor Actor) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !actor.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "unknown role")
	}
	return nil
}

func authorize(actor Actor, order *models.Order) error {
	switch actor.Role {
	case enums.UserRoleAdmin:
		return nil
	case enums.UserRoleVendor:
		if order.VendorID == actor.UserID {
			return nil
		}
	case enums.UserRoleCenter:
		if order.CenterID == actor.UserID {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to caller")
}

func actorRef(actor Actor) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)}
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, strings.TrimPrefix(message, "load ")+" not found")
	}
	return db.Translate(err, message)
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	out := strings.TrimSpace(*value)
	if out == "" {
		return nil
	}
	return &out
}
