package writer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"github.com/sethvargo/go-retry"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pkgbigquery "github.com/idoblon/vendorrs-backend/pkg/bigquery"
	"github.com/idoblon/vendorrs-backend/pkg/outbox/registry"
)

// RevenueEventRow mirrors the order_revenue_events BigQuery schema. Deltas are
// signed: a move out of a revenue bearing status is negative.
type RevenueEventRow struct {
	EventID         string             `bigquery:"event_id"`
	EventType       string             `bigquery:"event_type"`
	OccurredAt      time.Time          `bigquery:"occurred_at"`
	OrderID         string             `bigquery:"order_id"`
	OrderNumber     string             `bigquery:"order_number"`
	VendorID        string             `bigquery:"vendor_id"`
	CenterID        string             `bigquery:"center_id"`
	FromStatus      string             `bigquery:"from_status"`
	ToStatus        string             `bigquery:"to_status"`
	RevenueDelta    *big.Rat           `bigquery:"revenue_delta"`
	CommissionDelta *big.Rat           `bigquery:"commission_delta"`
	UnitsDelta      int64              `bigquery:"units_delta"`
	Payload         cbigquery.NullJSON `bigquery:"payload"`
}

type Config struct {
	RevenueTable string
	// BatchSize of 1 writes every row as it arrives.
	BatchSize   int
	RetryPolicy RetryPolicy
}

// RetryPolicy bounds retries of transient insert failures. MaxAttempts counts
// the first try.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaximumBackoff time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = 250 * time.Millisecond
	}
	if p.MaximumBackoff <= 0 {
		p.MaximumBackoff = 2 * time.Second
	}
	p.MaximumBackoff = max(p.MaximumBackoff, p.InitialBackoff)
	return p
}

func (p RetryPolicy) backoff() retry.Backoff {
	b := retry.NewExponential(p.InitialBackoff)
	b = retry.WithCappedDuration(p.MaximumBackoff, b)
	return retry.WithMaxRetries(uint64(p.MaxAttempts-1), b)
}

// BigQueryWriter buffers revenue rows and inserts them with retries. It is
// safe for concurrent use by Pub/Sub receive callbacks.
type BigQueryWriter struct {
	client pkgbigquery.RowInserter
	table  string
	batch  int
	policy RetryPolicy

	mu      sync.Mutex
	pending []RevenueEventRow
}

func New(client pkgbigquery.RowInserter, cfg Config) (*BigQueryWriter, error) {
	if client == nil {
		return nil, errors.New("bigquery client required")
	}
	table := strings.TrimSpace(cfg.RevenueTable)
	if table == "" {
		return nil, errors.New("revenue table is required")
	}
	return &BigQueryWriter{
		client: client,
		table:  table,
		batch:  max(cfg.BatchSize, 1),
		policy: cfg.RetryPolicy.withDefaults(),
	}, nil
}

// InsertRevenue queues a row and flushes once the batch is full. On a
// transient failure the new row is dequeued, since the caller nacks and the
// redelivery brings it back; rows buffered earlier stay for the next flush.
// A permanent failure discards the whole batch and returns a
// registry.NonRetryableError.
func (w *BigQueryWriter) InsertRevenue(ctx context.Context, row RevenueEventRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = append(w.pending, row)
	if len(w.pending) < w.batch {
		return nil
	}
	err := w.flushLocked(ctx)
	var permanent registry.NonRetryableError
	if err != nil && !errors.As(err, &permanent) {
		w.pending = w.pending[:len(w.pending)-1]
	}
	return err
}

func (w *BigQueryWriter) Flush(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked(ctx)
}

func (w *BigQueryWriter) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *BigQueryWriter) flushLocked(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}
	// The event id doubles as InsertID so BigQuery drops redelivered rows.
	rows := make([]any, 0, len(w.pending))
	for i := range w.pending {
		rows = append(rows, &cbigquery.StructSaver{Struct: &w.pending[i], InsertID: w.pending[i].EventID})
	}

	err := retry.Do(ctx, w.policy.backoff(), func(ctx context.Context) error {
		err := w.client.InsertRows(ctx, w.table, rows)
		if err != nil && isRetryableBigQueryError(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err == nil {
		w.pending = w.pending[:0]
		return nil
	}
	insertErr := fmt.Errorf("insert %d rows into %s: %w", len(rows), w.table, err)
	if ctx.Err() != nil || isRetryableBigQueryError(err) {
		return insertErr
	}
	// A rejected batch is dropped so it cannot block the rows behind it.
	w.pending = w.pending[:0]
	return registry.NewNonRetryableError(insertErr)
}

var (
	retryableHTTP = map[int]bool{
		http.StatusRequestTimeout:      true,
		http.StatusTooManyRequests:     true,
		http.StatusInternalServerError: true,
		http.StatusBadGateway:          true,
		http.StatusServiceUnavailable:  true,
		http.StatusGatewayTimeout:      true,
	}
	retryableGRPC = map[codes.Code]bool{
		codes.Aborted:           true,
		codes.DeadlineExceeded:  true,
		codes.Internal:          true,
		codes.ResourceExhausted: true,
		codes.Unavailable:       true,
	}
)

// isRetryableBigQueryError treats multi-row failures as retryable only when
// every inner failure is.
func isRetryableBigQueryError(err error) bool {
	if err == nil {
		return false
	}

	var multi *cbigquery.MultiError
	if errors.As(err, &multi) && multi != nil {
		return allRetryable(*multi)
	}
	var rowErrs *cbigquery.PutMultiError
	if errors.As(err, &rowErrs) && rowErrs != nil {
		inner := make([]error, 0, len(*rowErrs))
		for _, rowErr := range *rowErrs {
			inner = append(inner, rowErr.Errors)
		}
		return allRetryable(inner)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return retryableHTTP[apiErr.Code]
	}
	if st, ok := status.FromError(err); ok && st != nil {
		return retryableGRPC[st.Code()]
	}
	return false
}

func allRetryable(errs []error) bool {
	if len(errs) == 0 {
		return false
	}
	for _, err := range errs {
		if !isRetryableBigQueryError(err) {
			return false
		}
	}
	return true
}

// EncodeJSON serializes a payload for a BigQuery JSON column. Raw JSON passes
// through untouched; nil becomes NULL.
func EncodeJSON(payload any) (cbigquery.NullJSON, error) {
	var encoded []byte
	switch value := payload.(type) {
	case nil:
		return cbigquery.NullJSON{}, nil
	case json.RawMessage:
		encoded = value
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return cbigquery.NullJSON{}, fmt.Errorf("marshal json: %w", err)
		}
		encoded = b
	}
	if len(encoded) == 0 {
		return cbigquery.NullJSON{}, nil
	}
	return cbigquery.NullJSON{Valid: true, JSONVal: string(encoded)}, nil
}
