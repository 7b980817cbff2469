package orders

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/idoblon/vendorrs-backend/api/validators"
	internalorders "github.com/idoblon/vendorrs-backend/internal/orders"
	"github.com/idoblon/vendorrs-backend/pkg/enums"
)

const maxNotesLength = 1000

type itemRequest struct {
	ProductID      string         `json:"productId" validate:"required,uuid"`
	Quantity       int            `json:"quantity" validate:"required,gt=0"`
	Specifications map[string]any `json:"specifications"`
}

type quoteRequest struct {
	VendorID       string           `json:"vendorId" validate:"omitempty,uuid"`
	CenterID       string           `json:"centerId" validate:"required,uuid"`
	Items          []itemRequest    `json:"items" validate:"required,min=1,dive"`
	ShippingMethod string           `json:"shippingMethod" validate:"omitempty,oneof=STANDARD EXPRESS PICKUP"`
	ShippingCost   *decimal.Decimal `json:"shippingCost"`
}

type createOrderRequest struct {
	VendorID             string           `json:"vendorId" validate:"omitempty,uuid"`
	CenterID             string           `json:"centerId" validate:"required,uuid"`
	Items                []itemRequest    `json:"items" validate:"required,min=1,dive"`
	ShippingMethod       string           `json:"shippingMethod" validate:"omitempty,oneof=STANDARD EXPRESS PICKUP"`
	ShippingCost         *decimal.Decimal `json:"shippingCost"`
	PaymentMethod        string           `json:"paymentMethod"`
	Priority             string           `json:"priority"`
	Notes                *string          `json:"notes" validate:"omitempty,max=1000"`
	DeliveryAddress      *string          `json:"deliveryAddress" validate:"omitempty,max=500"`
	DeliveryExpectedDate *time.Time       `json:"deliveryExpectedDate"`
}

type transitionRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes" validate:"omitempty,max=1000"`
}

type paymentRequest struct {
	Status        string           `json:"status" validate:"required"`
	TransactionID *string          `json:"transactionId" validate:"omitempty,max=200"`
	PaidAmount    *decimal.Decimal `json:"paidAmount"`
}

func (r itemRequest) toInput() internalorders.ItemInput {
	return internalorders.ItemInput{
		ProductID:      uuid.MustParse(r.ProductID),
		Quantity:       r.Quantity,
		Specifications: r.Specifications,
	}
}

func toItemInputs(requested []itemRequest) []internalorders.ItemInput {
	items := make([]internalorders.ItemInput, 0, len(requested))
	for _, item := range requested {
		items = append(items, item.toInput())
	}
	return items
}

func optionalUUID(raw string) uuid.UUID {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil
	}
	return uuid.MustParse(raw)
}

func (r quoteRequest) toInput(actor internalorders.Actor) internalorders.QuoteInput {
	return internalorders.QuoteInput{
		Actor:          actor,
		VendorID:       optionalUUID(r.VendorID),
		CenterID:       uuid.MustParse(r.CenterID),
		Items:          toItemInputs(r.Items),
		ShippingMethod: enums.ShippingMethod(r.ShippingMethod),
		ShippingCost:   r.ShippingCost,
	}
}

func (r createOrderRequest) toInput(actor internalorders.Actor) internalorders.CreateOrderInput {
	return internalorders.CreateOrderInput{
		Actor:                actor,
		VendorID:             optionalUUID(r.VendorID),
		CenterID:             uuid.MustParse(r.CenterID),
		Items:                toItemInputs(r.Items),
		PaymentMethod:        enums.PaymentMethod(strings.TrimSpace(r.PaymentMethod)),
		ShippingMethod:       enums.ShippingMethod(r.ShippingMethod),
		ShippingCost:         r.ShippingCost,
		Priority:             enums.OrderPriority(strings.TrimSpace(r.Priority)),
		Notes:                validators.SanitizeOptional(r.Notes, maxNotesLength),
		DeliveryAddress:      validators.SanitizeOptional(r.DeliveryAddress, 500),
		DeliveryExpectedDate: r.DeliveryExpectedDate,
	}
}
