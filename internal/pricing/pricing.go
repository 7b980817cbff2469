// Package pricing computes order summaries from priced lines and the
// vendor/center districts. It performs no I/O.
package pricing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/idoblon/vendorrs-backend/pkg/enums"
	pkgerrors "github.com/idoblon/vendorrs-backend/pkg/errors"
)

const moneyPlaces = 2

var (
	TaxRate               = decimal.RequireFromString("0.18")
	CommissionPercentage  = decimal.NewFromInt(5)
	SameDistrictDiscount  = decimal.NewFromInt(15)
	CrossDistrictDiscount = decimal.NewFromInt(5)
	DefaultShippingCost   = decimal.NewFromInt(500)

	hundred = decimal.NewFromInt(100)
)

type Line struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

type PricedLine struct {
	Line
	TotalPrice decimal.Decimal
}

type Input struct {
	Lines          []Line
	VendorDistrict string
	CenterDistrict string
	// ShippingCost overrides the calculator default when set.
	ShippingCost   *decimal.Decimal
	ShippingMethod enums.ShippingMethod
}

// Summary is the immutable result of a calculation. Every monetary field is
// rounded to two places, so TotalAmount equals
// Subtotal + TaxAmount - DiscountAmount + ShippingCost - CommissionAmount exactly.
type Summary struct {
	Lines                  []PricedLine
	Subtotal               decimal.Decimal
	TaxRate                decimal.Decimal
	TaxAmount              decimal.Decimal
	ShippingMethod         enums.ShippingMethod
	ShippingCost           decimal.Decimal
	DiscountPercentage     decimal.Decimal
	DiscountAmount         decimal.Decimal
	AmountBeforeCommission decimal.Decimal
	CommissionPercentage   decimal.Decimal
	CommissionAmount       decimal.Decimal
	TotalAmount            decimal.Decimal
}

// Units returns the number of items across all lines.
func (s Summary) Units() int {
	total := 0
	for _, line := range s.Lines {
		total += line.Quantity
	}
	return total
}

type Calculator struct {
	defaultShipping decimal.Decimal
}

// NewCalculator builds a calculator that falls back to defaultShipping when an
// input carries no shipping cost. A negative default is replaced by DefaultShippingCost.
func NewCalculator(defaultShipping decimal.Decimal) *Calculator {
	if defaultShipping.IsNegative() {
		defaultShipping = DefaultShippingCost
	}
	return &Calculator{defaultShipping: defaultShipping}
}

// Calculate prices input with the package default shipping cost.
func Calculate(input Input) (Summary, error) {
	return NewCalculator(DefaultShippingCost).Calculate(input)
}

func (c *Calculator) Calculate(input Input) (Summary, error) {
	if len(input.Lines) == 0 {
		return Summary{}, validation("items", "at least one item is required")
	}

	shippingMethod := input.ShippingMethod
	if shippingMethod == "" {
		shippingMethod = enums.ShippingMethodStandard
	}
	if !shippingMethod.IsValid() {
		return Summary{}, validation("shippingMethod", fmt.Sprintf("unsupported shipping method %q", shippingMethod))
	}

	shipping := c.defaultShipping
	if input.ShippingCost != nil {
		shipping = *input.ShippingCost
	}
	if shipping.IsNegative() {
		return Summary{}, validation("shippingCost", "shipping cost must not be negative")
	}
	shipping = round(shipping)

	priced := make([]PricedLine, 0, len(input.Lines))
	subtotal := decimal.Zero
	for i, line := range input.Lines {
		if line.Quantity <= 0 {
			return Summary{}, validation(fmt.Sprintf("items[%d].quantity", i), "quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return Summary{}, validation(fmt.Sprintf("items[%d].unitPrice", i), "unit price must not be negative")
		}
		unit := round(line.UnitPrice)
		lineTotal := round(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))
		line.UnitPrice = unit
		priced = append(priced, PricedLine{Line: line, TotalPrice: lineTotal})
		subtotal = subtotal.Add(lineTotal)
	}

	tax := round(subtotal.Mul(TaxRate))
	discountPct := DistrictDiscount(input.VendorDistrict, input.CenterDistrict)
	discount := round(subtotal.Mul(discountPct).Div(hundred))
	beforeCommission := subtotal.Add(tax).Add(shipping).Sub(discount)
	commission := round(beforeCommission.Mul(CommissionPercentage).Div(hundred))

	return Summary{
		Lines:                  priced,
		Subtotal:               subtotal,
		TaxRate:                TaxRate,
		TaxAmount:              tax,
		ShippingMethod:         shippingMethod,
		ShippingCost:           shipping,
		DiscountPercentage:     discountPct,
		DiscountAmount:         discount,
		AmountBeforeCommission: beforeCommission,
		CommissionPercentage:   CommissionPercentage,
		CommissionAmount:       commission,
		TotalAmount:            beforeCommission.Sub(commission),
	}, nil
}

// DistrictDiscount returns the discount percentage for a vendor/center pair:
// 15 for the same district, 5 for two different known districts, 0 otherwise.
func DistrictDiscount(vendorDistrict, centerDistrict string) decimal.Decimal {
	vendor := strings.TrimSpace(vendorDistrict)
	center := strings.TrimSpace(centerDistrict)
	switch {
	case vendor == "" || center == "":
		return decimal.Zero
	case strings.EqualFold(vendor, center):
		return SameDistrictDiscount
	default:
		return CrossDistrictDiscount
	}
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

func validation(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]any{"field": field})
}
