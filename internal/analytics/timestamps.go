package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/idoblon/vendorrs-backend/pkg/enums"
)

// RevenueTimestamp picks when a revenue change is recognised: the status
// change time, then the event occurrence time, then fallback.
func RevenueTimestamp(changedAt, occurredAt, fallback time.Time) time.Time {
	if !changedAt.IsZero() {
		return changedAt.UTC()
	}
	if !occurredAt.IsZero() {
		return occurredAt.UTC()
	}
	return fallback.UTC()
}

// RevenueDelta is the signed movement of amount caused by a status change.
// Entering a revenue bearing status adds it, leaving one subtracts it.
func RevenueDelta(from, to enums.OrderStatus, amount decimal.Decimal) decimal.Decimal {
	fromBearing, toBearing := IsRevenueBearing(from), IsRevenueBearing(to)
	switch {
	case toBearing && !fromBearing:
		return amount
	case fromBearing && !toBearing:
		return amount.Neg()
	default:
		return decimal.Zero
	}
}
