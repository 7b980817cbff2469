package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

// RevenueSchema is the layout of the order revenue events table. Deltas are
// NUMERIC so money never passes through floats.
var RevenueSchema = bigquery.Schema{
	{Name: "event_id", Type: bigquery.StringFieldType, Required: true},
	{Name: "event_type", Type: bigquery.StringFieldType, Required: true},
	{Name: "occurred_at", Type: bigquery.TimestampFieldType, Required: true},
	{Name: "order_id", Type: bigquery.StringFieldType, Required: true},
	{Name: "order_number", Type: bigquery.StringFieldType},
	{Name: "vendor_id", Type: bigquery.StringFieldType},
	{Name: "center_id", Type: bigquery.StringFieldType, Required: true},
	{Name: "from_status", Type: bigquery.StringFieldType},
	{Name: "to_status", Type: bigquery.StringFieldType},
	{Name: "revenue_delta", Type: bigquery.NumericFieldType},
	{Name: "commission_delta", Type: bigquery.NumericFieldType},
	{Name: "units_delta", Type: bigquery.IntegerFieldType},
	{Name: "payload", Type: bigquery.JSONFieldType},
}

// revenueTableMetadata partitions by day on occurred_at so ranking windows
// prune partitions.
func revenueTableMetadata() *bigquery.TableMetadata {
	return &bigquery.TableMetadata{
		Schema: RevenueSchema,
		TimePartitioning: &bigquery.TimePartitioning{
			Type:  bigquery.DayPartitioningType,
			Field: "occurred_at",
		},
		Clustering:  &bigquery.Clustering{Fields: []string{"center_id"}},
		Description: "Signed revenue movements per order status change",
		Labels:      map[string]string{"owner": "vendorrs"},
	}
}

const metadataTimeout = 10 * time.Second
