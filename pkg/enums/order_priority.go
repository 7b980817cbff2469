package enums

import "slices"

// OrderPriority orders fulfilment queues at a center.
type OrderPriority string

const (
	OrderPriorityLow    OrderPriority = "LOW"
	OrderPriorityNormal OrderPriority = "NORMAL"
	OrderPriorityHigh   OrderPriority = "HIGH"
	OrderPriorityUrgent OrderPriority = "URGENT"
)

var validOrderPriorities = []OrderPriority{
	OrderPriorityLow, OrderPriorityNormal, OrderPriorityHigh, OrderPriorityUrgent,
}

func (o OrderPriority) String() string { return string(o) }

func (o OrderPriority) IsValid() bool { return slices.Contains(validOrderPriorities, o) }

func ParseOrderPriority(value string) (OrderPriority, error) {
	return parse("order priority", value, validOrderPriorities)
}
