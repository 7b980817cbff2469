package enums

import "slices"

// ShippingMethod selects how goods leave the distribution center.
type ShippingMethod string

const (
	ShippingMethodStandard ShippingMethod = "STANDARD"
	ShippingMethodExpress  ShippingMethod = "EXPRESS"
	ShippingMethodPickup   ShippingMethod = "PICKUP"
)

var validShippingMethods = []ShippingMethod{
	ShippingMethodStandard, ShippingMethodExpress, ShippingMethodPickup,
}

func (s ShippingMethod) String() string { return string(s) }

func (s ShippingMethod) IsValid() bool { return slices.Contains(validShippingMethods, s) }

func ParseShippingMethod(value string) (ShippingMethod, error) {
	return parse("shipping method", value, validShippingMethods)
}
