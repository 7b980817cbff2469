package writer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	cbigquery "cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/idoblon/vendorrs-backend/pkg/outbox/registry"
)

func TestNewWriterValidation(t *testing.T) {
	if _, err := New(nil, Config{RevenueTable: "order_revenue_events"}); err == nil {
		t.Fatal("expected error when client missing")
	}
	if _, err := New(&fakeInserter{}, Config{RevenueTable: " "}); err == nil {
		t.Fatal("expected error when revenue table missing")
	}
}

func TestEncodeJSON(t *testing.T) {
	nj, err := EncodeJSON(map[string]any{"orderId": "abc"})
	if err != nil {
		t.Fatalf("unexpected error encoding json: %v", err)
	}
	if !nj.Valid {
		t.Fatal("expected json to be marked valid")
	}

	nj, err = EncodeJSON(nil)
	if err != nil {
		t.Fatalf("unexpected error for nil json: %v", err)
	}
	if nj.Valid {
		t.Fatal("expected nil json to be invalid")
	}

	raw := json.RawMessage(`{"orderId":"def"}`)
	nj, err = EncodeJSON(raw)
	if err != nil {
		t.Fatalf("unexpected error encoding raw json: %v", err)
	}
	if nj.JSONVal != string(raw) {
		t.Fatalf("expected raw json passed through, got %s", nj.JSONVal)
	}
}

func TestWriterRetriesOnTransientError(t *testing.T) {
	writer, fake := newWriterWithFakeInserter(t)
	fake.responses = []error{
		&googleapi.Error{Code: http.StatusServiceUnavailable},
		nil,
	}

	if err := writer.InsertRevenue(context.Background(), RevenueEventRow{EventID: "1"}); err != nil {
		t.Fatalf("unexpected error writing row: %v", err)
	}
	if len(fake.calls) != 2 {
		t.Fatalf("expected two insert attempts, got %d", len(fake.calls))
	}
	if fake.calls[1].table != "order_revenue_events" {
		t.Fatalf("unexpected table on retry: %s", fake.calls[1].table)
	}
	if writer.Pending() != 0 {
		t.Fatal("expected buffer to be empty after success")
	}
}

func TestWriterStopsOnPermanentError(t *testing.T) {
	writer, fake := newWriterWithFakeInserter(t)
	fake.responses = []error{&googleapi.Error{Code: http.StatusBadRequest}}

	err := writer.InsertRevenue(context.Background(), RevenueEventRow{EventID: "1"})
	if err == nil {
		t.Fatal("expected permanent error to surface")
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(fake.calls))
	}
	var permanent registry.NonRetryableError
	if !errors.As(err, &permanent) {
		t.Fatalf("expected non-retryable error, got %T", err)
	}
	if writer.Pending() != 0 {
		t.Fatalf("expected rejected row to be discarded, got %d", writer.Pending())
	}
}

func TestWriterRejectedRowDoesNotBlockLaterRows(t *testing.T) {
	writer, fake := newWriterWithFakeInserter(t)
	rejected := &googleapi.Error{Code: http.StatusBadRequest}
	fake.responses = []error{rejected, rejected, nil}

	ctx := context.Background()
	if err := writer.InsertRevenue(ctx, RevenueEventRow{EventID: "bad"}); err == nil {
		t.Fatal("expected rejected row to error")
	}
	// redelivery of the same event
	if err := writer.InsertRevenue(ctx, RevenueEventRow{EventID: "bad"}); err == nil {
		t.Fatal("expected redelivered row to error")
	}
	if err := writer.InsertRevenue(ctx, RevenueEventRow{EventID: "good"}); err != nil {
		t.Fatalf("healthy row rejected: %v", err)
	}

	for i, call := range fake.calls {
		if call.rowCount != 1 {
			t.Fatalf("call %d inserted %d rows, expected 1", i, call.rowCount)
		}
	}
	if got := fake.calls[2].insertIDs; len(got) != 1 || got[0] != "good" {
		t.Fatalf("expected only the healthy row on the last insert, got %v", got)
	}
	if writer.Pending() != 0 {
		t.Fatalf("expected empty buffer, got %d", writer.Pending())
	}
}

func TestWriterTransientFailureDequeuesOnlyNewRow(t *testing.T) {
	writer, fake := newWriterWithFakeInserter(t)
	writer.batch = 2
	unavailable := status.Error(codes.Unavailable, "try later")
	fake.responses = []error{unavailable, unavailable, unavailable}

	ctx := context.Background()
	if err := writer.InsertRevenue(ctx, RevenueEventRow{EventID: "1"}); err != nil {
		t.Fatalf("unexpected error buffering row: %v", err)
	}
	err := writer.InsertRevenue(ctx, RevenueEventRow{EventID: "2"})
	if err == nil {
		t.Fatal("expected transient error after retries")
	}
	var permanent registry.NonRetryableError
	if errors.As(err, &permanent) {
		t.Fatal("transient failure must stay retryable")
	}
	if writer.Pending() != 1 {
		t.Fatalf("expected earlier row to stay buffered, got %d", writer.Pending())
	}

	// the nacked event comes back and the batch goes through
	if err := writer.InsertRevenue(ctx, RevenueEventRow{EventID: "2"}); err != nil {
		t.Fatalf("unexpected error on redelivery: %v", err)
	}
	last := fake.calls[len(fake.calls)-1]
	if len(last.insertIDs) != 2 || last.insertIDs[0] != "1" || last.insertIDs[1] != "2" {
		t.Fatalf("expected rows 1 and 2 once each, got %v", last.insertIDs)
	}
}

func TestWriterGivesUpAfterMaxAttempts(t *testing.T) {
	writer, fake := newWriterWithFakeInserter(t)
	unavailable := status.Error(codes.Unavailable, "try later")
	fake.responses = []error{unavailable, unavailable, unavailable, unavailable}

	if err := writer.InsertRevenue(context.Background(), RevenueEventRow{EventID: "1"}); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if len(fake.calls) != 3 {
		t.Fatalf("expected three attempts, got %d", len(fake.calls))
	}
}

func TestWriterBatching(t *testing.T) {
	writer, fake := newWriterWithFakeInserter(t)
	writer.batch = 2

	if err := writer.InsertRevenue(context.Background(), RevenueEventRow{EventID: "1"}); err != nil {
		t.Fatalf("unexpected error on first insert: %v", err)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("expected no insert before batch full, got %d", len(fake.calls))
	}
	if err := writer.InsertRevenue(context.Background(), RevenueEventRow{EventID: "2"}); err != nil {
		t.Fatalf("unexpected error on second insert: %v", err)
	}
	if len(fake.calls) != 1 || fake.calls[0].rowCount != 2 {
		t.Fatalf("expected one insert of two rows, got %+v", fake.calls)
	}
}

func TestWriterFlush(t *testing.T) {
	writer, fake := newWriterWithFakeInserter(t)
	writer.batch = 10
	if err := writer.InsertRevenue(context.Background(), RevenueEventRow{EventID: "1"}); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
	if err := writer.Flush(context.Background()); err != nil {
		t.Fatalf("unexpected flush error: %v", err)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("expected flush to insert once, got %d", len(fake.calls))
	}
	if writer.Pending() != 0 {
		t.Fatalf("expected empty buffer after flush, got %d", writer.Pending())
	}
}

func TestWriterConcurrentInserts(t *testing.T) {
	writer, fake := newWriterWithFakeInserter(t)
	writer.batch = 5

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = writer.InsertRevenue(context.Background(), RevenueEventRow{EventID: "evt"})
		}()
	}
	wg.Wait()
	if err := writer.Flush(context.Background()); err != nil {
		t.Fatalf("unexpected flush error: %v", err)
	}

	total := 0
	for _, call := range fake.calls {
		total += call.rowCount
	}
	if total != 20 {
		t.Fatalf("expected 20 rows inserted, got %d", total)
	}
}

func TestIsRetryableBigQueryError(t *testing.T) {
	cases := map[string]struct {
		err  error
		want bool
	}{
		"nil":              {nil, false},
		"plain":            {errors.New("boom"), false},
		"http 503":         {&googleapi.Error{Code: http.StatusServiceUnavailable}, true},
		"http 400":         {&googleapi.Error{Code: http.StatusBadRequest}, false},
		"grpc unavailable": {status.Error(codes.Unavailable, "x"), true},
		"grpc invalid":     {status.Error(codes.InvalidArgument, "x"), false},
	}
	for name, tc := range cases {
		if got := isRetryableBigQueryError(tc.err); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", name, tc.want, got)
		}
	}
}

type insertCall struct {
	table     string
	rowCount  int
	insertIDs []string
}

type fakeInserter struct {
	mu        sync.Mutex
	responses []error
	calls     []insertCall
	index     int
}

func (f *fakeInserter) InsertRows(_ context.Context, table string, rows []any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := insertCall{table: table, rowCount: len(rows)}
	for _, row := range rows {
		if saver, ok := row.(*cbigquery.StructSaver); ok {
			call.insertIDs = append(call.insertIDs, saver.InsertID)
		}
	}
	f.calls = append(f.calls, call)
	var err error
	if f.index < len(f.responses) {
		err = f.responses[f.index]
	}
	f.index++
	return err
}

func newWriterWithFakeInserter(t *testing.T) (*BigQueryWriter, *fakeInserter) {
	t.Helper()
	fake := &fakeInserter{}
	writer, err := New(fake, Config{
		RevenueTable: "order_revenue_events",
		RetryPolicy:  RetryPolicy{InitialBackoff: time.Millisecond, MaximumBackoff: 2 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("construct writer: %v", err)
	}
	return writer, fake
}
