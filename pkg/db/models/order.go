package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/idoblon/vendorrs-backend/pkg/enums"
)

// Order is a vendor purchase against a single distribution center. Pricing
// columns are frozen at creation; only status, payment and delivery fields move.
type Order struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber string    `gorm:"column:order_number;not null;uniqueIndex"`
	VendorID    uuid.UUID `gorm:"column:vendor_id;type:uuid;not null;index"`
	CenterID    uuid.UUID `gorm:"column:center_id;type:uuid;not null;index"`

	Subtotal           decimal.Decimal      `gorm:"column:subtotal;type:numeric(14,2);not null"`
	TaxRate            decimal.Decimal      `gorm:"column:tax_rate;type:numeric(6,4);not null"`
	TaxAmount          decimal.Decimal      `gorm:"column:tax_amount;type:numeric(14,2);not null"`
	ShippingMethod     enums.ShippingMethod `gorm:"column:shipping_method;type:text;not null"`
	ShippingCost       decimal.Decimal      `gorm:"column:shipping_cost;type:numeric(14,2);not null"`
	DiscountPercentage decimal.Decimal      `gorm:"column:discount_percentage;type:numeric(5,2);not null"`
	DiscountAmount     decimal.Decimal      `gorm:"column:discount_amount;type:numeric(14,2);not null"`
	TotalAmount        decimal.Decimal      `gorm:"column:total_amount;type:numeric(14,2);not null"`

	CommissionAmount     decimal.Decimal `gorm:"column:commission_amount;type:numeric(14,2);not null"`
	CommissionPercentage decimal.Decimal `gorm:"column:commission_percentage;type:numeric(5,2);not null"`

	PaymentMethod        enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentStatus        enums.PaymentStatus `gorm:"column:payment_status;type:text;not null"`
	PaymentTransactionID *string             `gorm:"column:payment_transaction_id"`
	PaidAmount           decimal.NullDecimal `gorm:"column:paid_amount;type:numeric(14,2)"`
	PaidDate             *time.Time          `gorm:"column:paid_date"`

	Status   enums.OrderStatus   `gorm:"column:status;type:text;not null;index"`
	Priority enums.OrderPriority `gorm:"column:priority;type:text;not null"`
	Notes    *string             `gorm:"column:notes"`

	DeliveryExpectedDate *time.Time `gorm:"column:delivery_expected_date"`
	DeliveryActualDate   *time.Time `gorm:"column:delivery_actual_date"`
	DeliveryAddress      *string    `gorm:"column:delivery_address"`

	IsActive bool `gorm:"column:is_active;not null"`
	Version  int  `gorm:"column:version;not null"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
