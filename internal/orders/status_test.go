package orders

import (
	"testing"

	"github.com/idoblon/vendorrs-backend/pkg/enums"
	pkgerrors "github.com/idoblon/vendorrs-backend/pkg/errors"
)

var allStatuses = []enums.OrderStatus{
	enums.OrderStatusPending,
	enums.OrderStatusConfirmed,
	enums.OrderStatusInProgress,
	enums.OrderStatusShipped,
	enums.OrderStatusDelivered,
	enums.OrderStatusCancelled,
	enums.OrderStatusReturned,
}

func TestCanTransitionMatchesTable(t *testing.T) {
	expected := map[enums.OrderStatus]map[enums.OrderStatus]bool{
		enums.OrderStatusPending:    {enums.OrderStatusConfirmed: true, enums.OrderStatusCancelled: true},
		enums.OrderStatusConfirmed:  {enums.OrderStatusInProgress: true, enums.OrderStatusCancelled: true},
		enums.OrderStatusInProgress: {enums.OrderStatusShipped: true, enums.OrderStatusCancelled: true},
		enums.OrderStatusShipped:    {enums.OrderStatusDelivered: true, enums.OrderStatusReturned: true},
		enums.OrderStatusDelivered:  {enums.OrderStatusReturned: true},
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := expected[from][to]
			if got := CanTransition(from, to); got != want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestIsTerminal(t *testing.T) {
	for _, status := range allStatuses {
		want := status == enums.OrderStatusCancelled || status == enums.OrderStatusReturned
		if got := IsTerminal(status); got != want {
			t.Fatalf("IsTerminal(%s) = %v, want %v", status, got, want)
		}
	}
	if IsTerminal("UNKNOWN") {
		t.Fatal("unknown statuses are not terminal")
	}
}

func TestAllowedTransitionsReturnsCopy(t *testing.T) {
	allowed := AllowedTransitions(enums.OrderStatusPending)
	if len(allowed) != 2 {
		t.Fatalf("expected 2 transitions, got %v", allowed)
	}
	allowed[0] = enums.OrderStatusReturned
	if CanTransition(enums.OrderStatusPending, enums.OrderStatusReturned) {
		t.Fatal("mutating the returned slice must not change the table")
	}
}

func TestInvalidTransitionErrorNamesStatuses(t *testing.T) {
	err := NewInvalidTransitionError(enums.OrderStatusPending, enums.OrderStatusShipped)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["from"] != enums.OrderStatusPending || details["to"] != enums.OrderStatusShipped {
		t.Fatalf("unexpected details %+v", details)
	}
}

func TestRoleMayTarget(t *testing.T) {
	if roleMayTarget(enums.UserRoleVendor, enums.OrderStatusConfirmed) {
		t.Fatal("vendors must not confirm orders")
	}
	if !roleMayTarget(enums.UserRoleVendor, enums.OrderStatusCancelled) {
		t.Fatal("vendors may cancel their orders")
	}
	if !roleMayTarget(enums.UserRoleCenter, enums.OrderStatusShipped) {
		t.Fatal("centers may ship orders")
	}
	if roleMayTarget(enums.UserRoleCenter, enums.OrderStatusReturned) {
		t.Fatal("centers must not mark returns")
	}
	if !roleMayTarget(enums.UserRoleAdmin, enums.OrderStatusReturned) {
		t.Fatal("admins may apply any transition")
	}
}
