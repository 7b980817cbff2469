package orders

import (
	"fmt"

	"github.com/idoblon/vendorrs-backend/pkg/enums"
	pkgerrors "github.com/idoblon/vendorrs-backend/pkg/errors"
)

var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:  {enums.OrderStatusInProgress, enums.OrderStatusCancelled},
	enums.OrderStatusInProgress: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:    {enums.OrderStatusDelivered, enums.OrderStatusReturned},
	enums.OrderStatusDelivered:  {enums.OrderStatusReturned},
	enums.OrderStatusCancelled:  nil,
	enums.OrderStatusReturned:   nil,
}

// roleTargets lists the statuses each non-admin role may move its own orders into.
var roleTargets = map[enums.UserRole]map[enums.OrderStatus]bool{
	enums.UserRoleCenter: {
		enums.OrderStatusConfirmed:  true,
		enums.OrderStatusInProgress: true,
		enums.OrderStatusShipped:    true,
		enums.OrderStatusDelivered:  true,
		enums.OrderStatusCancelled:  true,
	},
	enums.UserRoleVendor: {
		enums.OrderStatusCancelled: true,
		enums.OrderStatusReturned:  true,
	},
}

// CanTransition reports whether the table allows from -> to.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, candidate := range transitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns a copy of the statuses reachable from from.
func AllowedTransitions(from enums.OrderStatus) []enums.OrderStatus {
	allowed := transitions[from]
	out := make([]enums.OrderStatus, len(allowed))
	copy(out, allowed)
	return out
}

// IsTerminal reports whether no transition leaves status.
func IsTerminal(status enums.OrderStatus) bool {
	allowed, known := transitions[status]
	return known && len(allowed) == 0
}

func roleMayTarget(role enums.UserRole, to enums.OrderStatus) bool {
	if role == enums.UserRoleAdmin {
		return true
	}
	return roleTargets[role][to]
}

// NewInvalidTransitionError reports a transition outside the table.
func NewInvalidTransitionError(from, to enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("invalid status transition from %s to %s", from, to)).
		WithDetails(map[string]any{
			"from":    from,
			"to":      to,
			"allowed": AllowedTransitions(from),
		})
}
