package analytics

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/idoblon/vendorrs-backend/pkg/enums"
)

func amount(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestAggregateGroupsByCenter(t *testing.T) {
	east := Center{ID: uuid.New(), Name: "Biratnagar Hub", Location: "Morang"}
	west := Center{ID: uuid.New(), Name: "Butwal Hub", Location: "Rupandehi"}
	idle := Center{ID: uuid.New(), Name: "Dhangadhi Hub", Location: "Kailali"}

	orders := []OrderFact{
		{CenterID: east.ID, TotalAmount: amount("2432"), CommissionAmount: amount("128"), Units: 2},
		{CenterID: east.ID, TotalAmount: amount("1000.50"), CommissionAmount: amount("52.66"), Units: 1},
		{CenterID: west.ID, TotalAmount: amount("700"), CommissionAmount: amount("36.84"), Units: 5},
		{CenterID: uuid.New(), TotalAmount: amount("99999"), CommissionAmount: amount("1"), Units: 1},
	}

	records := Aggregate(orders, []Center{east, west, idle})
	if len(records) != 3 {
		t.Fatalf("expected one record per center, got %d", len(records))
	}

	got := map[uuid.UUID]RevenueAggregate{}
	for _, record := range records {
		got[record.CenterID] = record
	}

	e := got[east.ID]
	if !e.TotalRevenue.Equal(amount("3432.50")) || !e.TotalCommission.Equal(amount("180.66")) {
		t.Fatalf("unexpected east totals %s / %s", e.TotalRevenue, e.TotalCommission)
	}
	if e.OrderCount != 2 || e.TotalUnits != 3 {
		t.Fatalf("unexpected east counts %d / %d", e.OrderCount, e.TotalUnits)
	}
	if !e.AverageOrderValue.Equal(amount("1716.25")) {
		t.Fatalf("unexpected east average %s", e.AverageOrderValue)
	}
	if e.CenterName != "Biratnagar Hub" || e.CenterLocation != "Morang" {
		t.Fatalf("center enrichment missing: %+v", e)
	}

	i := got[idle.ID]
	if !i.TotalRevenue.IsZero() || i.OrderCount != 0 || !i.AverageOrderValue.IsZero() {
		t.Fatalf("expected zero record for idle center, got %+v", i)
	}
}

func TestAggregateAverageRounds(t *testing.T) {
	center := Center{ID: uuid.New()}
	orders := []OrderFact{
		{CenterID: center.ID, TotalAmount: amount("10")},
		{CenterID: center.ID, TotalAmount: amount("10")},
		{CenterID: center.ID, TotalAmount: amount("10.01")},
	}

	records := Aggregate(orders, []Center{center})
	if !records[0].AverageOrderValue.Equal(amount("10")) {
		t.Fatalf("expected 10.00 average, got %s", records[0].AverageOrderValue)
	}
}

func TestIsRevenueBearing(t *testing.T) {
	bearing := map[enums.OrderStatus]bool{
		enums.OrderStatusConfirmed: true,
		enums.OrderStatusShipped:   true,
		enums.OrderStatusDelivered: true,
	}
	for _, status := range []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusConfirmed,
		enums.OrderStatusInProgress,
		enums.OrderStatusShipped,
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
		enums.OrderStatusReturned,
	} {
		if IsRevenueBearing(status) != bearing[status] {
			t.Fatalf("IsRevenueBearing(%s) mismatch", status)
		}
	}
}
