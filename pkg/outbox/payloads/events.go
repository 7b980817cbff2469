package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/idoblon/vendorrs-backend/pkg/enums"
)

// OrderCreatedEvent is emitted once an order is persisted in PENDING.
type OrderCreatedEvent struct {
	OrderID          uuid.UUID       `json:"orderId"`
	OrderNumber      string          `json:"orderNumber"`
	VendorID         uuid.UUID       `json:"vendorId"`
	CenterID         uuid.UUID       `json:"centerId"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	CommissionAmount decimal.Decimal `json:"commissionAmount"`
	Units            int             `json:"units"`
	Priority         string          `json:"priority"`
}

// OrderStatusChangedEvent carries everything downstream revenue consumers
// need without reading the order back.
type OrderStatusChangedEvent struct {
	OrderID          uuid.UUID         `json:"orderId"`
	OrderNumber      string            `json:"orderNumber"`
	VendorID         uuid.UUID         `json:"vendorId"`
	CenterID         uuid.UUID         `json:"centerId"`
	From             enums.OrderStatus `json:"from"`
	To               enums.OrderStatus `json:"to"`
	Version          int               `json:"version"`
	TotalAmount      decimal.Decimal   `json:"totalAmount"`
	CommissionAmount decimal.Decimal   `json:"commissionAmount"`
	Units            int               `json:"units"`
	ChangedBy        uuid.UUID         `json:"changedBy"`
	ChangedAt        time.Time         `json:"changedAt"`
	Notes            string            `json:"notes,omitempty"`
}

// OrderCancelledEvent is emitted alongside the status change into CANCELLED.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID         `json:"orderId"`
	CenterID    uuid.UUID         `json:"centerId"`
	From        enums.OrderStatus `json:"from"`
	Restocked   bool              `json:"restocked"`
	CancelledAt time.Time         `json:"cancelledAt"`
	Reason      string            `json:"reason,omitempty"`
}

// OrderDeliveredEvent is emitted alongside the status change into DELIVERED.
type OrderDeliveredEvent struct {
	OrderID     uuid.UUID       `json:"orderId"`
	CenterID    uuid.UUID       `json:"centerId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	DeliveredAt time.Time       `json:"deliveredAt"`
}

// PaymentUpdatedEvent reports a payment status recorded from the processor.
type PaymentUpdatedEvent struct {
	OrderID       uuid.UUID           `json:"orderId"`
	PaymentStatus enums.PaymentStatus `json:"paymentStatus"`
	TransactionID string              `json:"transactionId,omitempty"`
	PaidAmount    decimal.NullDecimal `json:"paidAmount"`
	PaidDate      *time.Time          `json:"paidDate,omitempty"`
}
