// Package analytics ranks distribution centers by the revenue of their
// orders and serves the admin analytics views.
package analytics

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/idoblon/vendorrs-backend/pkg/enums"
)

// RevenueBearingStatuses are the statuses whose orders count toward revenue.
var RevenueBearingStatuses = []enums.OrderStatus{
	enums.OrderStatusConfirmed,
	enums.OrderStatusShipped,
	enums.OrderStatusDelivered,
}

// IsRevenueBearing reports whether orders in status count toward revenue.
func IsRevenueBearing(status enums.OrderStatus) bool {
	for _, candidate := range RevenueBearingStatuses {
		if candidate == status {
			return true
		}
	}
	return false
}

// OrderFact is the slice of an order the aggregator needs.
type OrderFact struct {
	OrderID          uuid.UUID
	CenterID         uuid.UUID
	TotalAmount      decimal.Decimal
	CommissionAmount decimal.Decimal
	Units            int
}

// Center is a ranking candidate.
type Center struct {
	ID       uuid.UUID
	Name     string
	Location string
	District string
}

type RevenueAggregate struct {
	CenterID          uuid.UUID       `json:"centerId"`
	CenterName        string          `json:"centerName"`
	CenterLocation    string          `json:"centerLocation"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalCommission   decimal.Decimal `json:"totalCommission"`
	OrderCount        int             `json:"orderCount"`
	TotalUnits        int             `json:"totalUnits"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

// Aggregate folds orders into one record per candidate center, zero-revenue
// centers included. Orders for centers outside the candidate set are ignored;
// callers are expected to pass revenue bearing orders only.
func Aggregate(orders []OrderFact, centers []Center) []RevenueAggregate {
	records := make([]RevenueAggregate, len(centers))
	byCenter := make(map[uuid.UUID]*RevenueAggregate, len(centers))
	for i, center := range centers {
		records[i] = RevenueAggregate{
			CenterID:          center.ID,
			CenterName:        center.Name,
			CenterLocation:    center.Location,
			TotalRevenue:      decimal.Zero,
			TotalCommission:   decimal.Zero,
			AverageOrderValue: decimal.Zero,
		}
		byCenter[center.ID] = &records[i]
	}

	for _, order := range orders {
		record, ok := byCenter[order.CenterID]
		if !ok {
			continue
		}
		record.TotalRevenue = record.TotalRevenue.Add(order.TotalAmount)
		record.TotalCommission = record.TotalCommission.Add(order.CommissionAmount)
		record.OrderCount++
		record.TotalUnits += order.Units
	}

	for i := range records {
		if records[i].OrderCount > 0 {
			records[i].AverageOrderValue = records[i].TotalRevenue.
				Div(decimal.NewFromInt(int64(records[i].OrderCount))).
				Round(2)
		}
	}
	return records
}
