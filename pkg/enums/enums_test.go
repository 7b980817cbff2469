package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	for _, status := range validOrderStatuses {
		got, err := ParseOrderStatus(string(status))
		if err != nil || got != status {
			t.Fatalf("expected %s to parse, got %s err=%v", status, got, err)
		}
	}
	if _, err := ParseOrderStatus("pending"); err == nil {
		t.Fatal("lowercase status should be rejected")
	}
	if OrderStatus("ARCHIVED").IsValid() {
		t.Fatal("unknown status should be invalid")
	}
}

func TestParsePaymentStatus(t *testing.T) {
	got, err := ParsePaymentStatus("COMPLETED")
	if err != nil || got != PaymentStatusCompleted {
		t.Fatalf("unexpected parse result %s err=%v", got, err)
	}
	if _, err := ParsePaymentStatus("paid"); err == nil {
		t.Fatal("expected unknown payment status to fail")
	}
}

func TestParseOrderPriorityAndRole(t *testing.T) {
	if p, err := ParseOrderPriority("URGENT"); err != nil || p != OrderPriorityUrgent {
		t.Fatalf("unexpected priority %s err=%v", p, err)
	}
	if _, err := ParseUserRole("SUPERUSER"); err == nil {
		t.Fatal("expected unknown role to fail")
	}
	if !UserRoleCenter.IsValid() {
		t.Fatal("center role should be valid")
	}
}

func TestOutboxEnums(t *testing.T) {
	if !EventOrderCancelled.IsValid() || !AggregateOrder.IsValid() {
		t.Fatal("expected order event enums to be valid")
	}
	if _, err := ParseOutboxEventType("order_state_changed"); err == nil {
		t.Fatal("expected unknown event type to fail")
	}
}

func TestParseErrorNamesKind(t *testing.T) {
	_, err := ParseShippingMethod("DRONE")
	if err == nil || err.Error() != `invalid shipping method "DRONE"` {
		t.Fatalf("unexpected error %v", err)
	}
	if m, err := ParsePaymentMethod("CREDIT"); err != nil || m != PaymentMethodCredit {
		t.Fatalf("unexpected payment method %s err=%v", m, err)
	}
}
