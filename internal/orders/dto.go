package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/idoblon/vendorrs-backend/internal/pricing"
	"github.com/idoblon/vendorrs-backend/pkg/db/models"
	"github.com/idoblon/vendorrs-backend/pkg/enums"
)

// Actor is the authenticated caller on whose behalf a workflow runs.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

type ItemInput struct {
	ProductID      uuid.UUID
	Quantity       int
	Specifications map[string]any
}

// QuoteInput prices a prospective order without touching inventory.
type QuoteInput struct {
	Actor          Actor
	VendorID       uuid.UUID
	CenterID       uuid.UUID
	Items          []ItemInput
	ShippingMethod enums.ShippingMethod
	ShippingCost   *decimal.Decimal
}

type CreateOrderInput struct {
	Actor                Actor
	VendorID             uuid.UUID
	CenterID             uuid.UUID
	Items                []ItemInput
	PaymentMethod        enums.PaymentMethod
	ShippingMethod       enums.ShippingMethod
	ShippingCost         *decimal.Decimal
	Priority             enums.OrderPriority
	Notes                *string
	DeliveryAddress      *string
	DeliveryExpectedDate *time.Time
}

type TransitionInput struct {
	Actor   Actor
	OrderID uuid.UUID
	To      enums.OrderStatus
	Notes   *string
}

type PaymentUpdateInput struct {
	Actor         Actor
	OrderID       uuid.UUID
	Status        enums.PaymentStatus
	TransactionID *string
	PaidAmount    *decimal.Decimal
}

// OrderList wraps a page of orders plus the next page cursor.
type OrderList struct {
	Orders     []models.Order
	NextCursor string
}

// OrderDTO is the camelCase rendering of an order used by the API.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	VendorID        uuid.UUID           `json:"vendorId"`
	CenterID        uuid.UUID           `json:"centerId"`
	Items           []OrderItemDTO      `json:"items"`
	OrderSummary    OrderSummaryDTO     `json:"orderSummary"`
	AdminCommission CommissionDTO       `json:"adminCommission"`
	Payment         PaymentDTO          `json:"payment"`
	Status          enums.OrderStatus   `json:"status"`
	StatusHistory   []StatusHistoryDTO  `json:"statusHistory"`
	Priority        enums.OrderPriority `json:"priority"`
	Notes           *string             `json:"notes,omitempty"`
	DeliveryDetails DeliveryDetailsDTO  `json:"deliveryDetails"`
	IsActive        bool                `json:"isActive"`
	Version         int                 `json:"version"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

type OrderItemDTO struct {
	ProductID      uuid.UUID       `json:"productId"`
	ProductName    string          `json:"productName"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	Specifications map[string]any  `json:"specifications,omitempty"`
}

type OrderSummaryDTO struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         TaxDTO          `json:"tax"`
	Shipping    ShippingDTO     `json:"shipping"`
	Discount    DiscountDTO     `json:"discount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type TaxDTO struct {
	Rate   decimal.Decimal `json:"rate"`
	Amount decimal.Decimal `json:"amount"`
}

type ShippingDTO struct {
	Method enums.ShippingMethod `json:"method"`
	Cost   decimal.Decimal      `json:"cost"`
}

// DiscountDTO.Value is the percentage applied to the subtotal.
type DiscountDTO struct {
	Value  decimal.Decimal `json:"value"`
	Amount decimal.Decimal `json:"amount"`
}

type CommissionDTO struct {
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

type PaymentDTO struct {
	Method        enums.PaymentMethod `json:"method"`
	Status        enums.PaymentStatus `json:"status"`
	TransactionID *string             `json:"transactionId,omitempty"`
	PaidAmount    *decimal.Decimal    `json:"paidAmount,omitempty"`
	PaidDate      *time.Time          `json:"paidDate,omitempty"`
}

type StatusHistoryDTO struct {
	Status    enums.OrderStatus `json:"status"`
	UpdatedBy uuid.UUID         `json:"updatedBy"`
	Notes     *string           `json:"notes,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

type DeliveryDetailsDTO struct {
	ExpectedDate *time.Time `json:"expectedDate,omitempty"`
	ActualDate   *time.Time `json:"actualDate,omitempty"`
	Address      *string    `json:"address,omitempty"`
}

// QuoteDTO renders a pricing summary in the same shape as OrderSummaryDTO.
type QuoteDTO struct {
	Items           []OrderItemDTO  `json:"items"`
	OrderSummary    OrderSummaryDTO `json:"orderSummary"`
	AdminCommission CommissionDTO   `json:"adminCommission"`
	Units           int             `json:"units"`
}

func NewOrderDTO(order models.Order) OrderDTO {
	dto := OrderDTO{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		VendorID:    order.VendorID,
		CenterID:    order.CenterID,
		Items:       make([]OrderItemDTO, 0, len(order.Items)),
		OrderSummary: OrderSummaryDTO{
			Subtotal:    order.Subtotal,
			Tax:         TaxDTO{Rate: order.TaxRate, Amount: order.TaxAmount},
			Shipping:    ShippingDTO{Method: order.ShippingMethod, Cost: order.ShippingCost},
			Discount:    DiscountDTO{Value: order.DiscountPercentage, Amount: order.DiscountAmount},
			TotalAmount: order.TotalAmount,
		},
		AdminCommission: CommissionDTO{Amount: order.CommissionAmount, Percentage: order.CommissionPercentage},
		Payment: PaymentDTO{
			Method:        order.PaymentMethod,
			Status:        order.PaymentStatus,
			TransactionID: order.PaymentTransactionID,
			PaidDate:      order.PaidDate,
		},
		Status:        order.Status,
		StatusHistory: make([]StatusHistoryDTO, 0, len(order.StatusHistory)),
		Priority:      order.Priority,
		Notes:         order.Notes,
		DeliveryDetails: DeliveryDetailsDTO{
			ExpectedDate: order.DeliveryExpectedDate,
			ActualDate:   order.DeliveryActualDate,
			Address:      order.DeliveryAddress,
		},
		IsActive:  order.IsActive,
		Version:   order.Version,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
	if order.PaidAmount.Valid {
		amount := order.PaidAmount.Decimal
		dto.Payment.PaidAmount = &amount
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			TotalPrice:     item.TotalPrice,
			Specifications: item.Specifications,
		})
	}
	for _, entry := range order.StatusHistory {
		dto.StatusHistory = append(dto.StatusHistory, StatusHistoryDTO{
			Status:    entry.Status,
			UpdatedBy: entry.UpdatedBy,
			Notes:     entry.Notes,
			Timestamp: entry.ChangedAt,
		})
	}
	return dto
}

func NewQuoteDTO(summary pricing.Summary) QuoteDTO {
	items := make([]OrderItemDTO, 0, len(summary.Lines))
	for _, line := range summary.Lines {
		items = append(items, OrderItemDTO{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  line.TotalPrice,
		})
	}
	return QuoteDTO{
		Items: items,
		OrderSummary: OrderSummaryDTO{
			Subtotal:    summary.Subtotal,
			Tax:         TaxDTO{Rate: summary.TaxRate, Amount: summary.TaxAmount},
			Shipping:    ShippingDTO{Method: summary.ShippingMethod, Cost: summary.ShippingCost},
			Discount:    DiscountDTO{Value: summary.DiscountPercentage, Amount: summary.DiscountAmount},
			TotalAmount: summary.TotalAmount,
		},
		AdminCommission: CommissionDTO{Amount: summary.CommissionAmount, Percentage: summary.CommissionPercentage},
		Units:           summary.Units(),
	}
}
