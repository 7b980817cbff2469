package routes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/idoblon/vendorrs-backend/internal/analytics"
	"github.com/idoblon/vendorrs-backend/internal/orders"
	"github.com/idoblon/vendorrs-backend/internal/pricing"
	pkgAuth "github.com/idoblon/vendorrs-backend/pkg/auth"
	"github.com/idoblon/vendorrs-backend/pkg/config"
	"github.com/idoblon/vendorrs-backend/pkg/db/models"
	"github.com/idoblon/vendorrs-backend/pkg/enums"
	"github.com/idoblon/vendorrs-backend/pkg/metrics"
	"github.com/idoblon/vendorrs-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubOrders struct {
	mu      sync.Mutex
	creates int
}

func (s *stubOrders) QuotePricing(context.Context, orders.QuoteInput) (*pricing.Summary, error) {
	return &pricing.Summary{}, nil
}

func (s *stubOrders) CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	return &models.Order{ID: uuid.New(), VendorID: input.Actor.UserID, CenterID: input.CenterID, Status: enums.OrderStatusPending}, nil
}

func (s *stubOrders) TransitionOrder(ctx context.Context, input orders.TransitionInput) (*models.Order, error) {
	return &models.Order{ID: input.OrderID, Status: input.To}, nil
}

func (s *stubOrders) UpdatePaymentStatus(ctx context.Context, input orders.PaymentUpdateInput) (*models.Order, error) {
	return &models.Order{ID: input.OrderID, PaymentStatus: input.Status}, nil
}

func (s *stubOrders) GetOrder(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: orderID}, nil
}

func (s *stubOrders) ListOrders(context.Context, orders.Actor, orders.ListFilters, pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (s *stubOrders) DeactivateOrder(context.Context, orders.Actor, uuid.UUID) error {
	return nil
}

type stubAnalytics struct{}

func (stubAnalytics) TopCenters(ctx context.Context, q analytics.Query) (*analytics.Ranking, error) {
	return &analytics.Ranking{K: q.K}, nil
}

func (stubAnalytics) Overview(context.Context, analytics.Query) (*analytics.Overview, error) {
	return &analytics.Overview{}, nil
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", goredis.Nil
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

type harness struct {
	handler http.Handler
	orders  *stubOrders
	cfg     *config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{
		App:      config.AppConfig{Env: "dev", CORSAllowedOrigins: []string{"http://localhost:3000"}},
		JWT:      config.JWTConfig{Secret: "router-secret", Issuer: "vendorrs"},
		Eventing: config.EventingConfig{IdempotencyKeyTTL: time.Hour},
	}
	reg := prometheus.NewRegistry()
	metrics.NewOrderMetrics(reg).IncCreated()

	ordersSvc := &stubOrders{}
	handler := NewRouter(Deps{
		Config:      cfg,
		DB:          stubPinger{},
		Redis:       stubPinger{},
		Idempotency: &memoryStore{data: map[string]string{}},
		Gatherer:    reg,
		Orders:      ordersSvc,
		Analytics:   stubAnalytics{},
	})
	return &harness{handler: handler, orders: ordersSvc, cfg: cfg}
}

func (h *harness) token(t *testing.T, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(h.cfg.JWT, time.Now(), time.Hour, pkgAuth.AccessTokenPayload{UserID: uuid.New(), Role: role})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func (h *harness) do(method, path, token, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	if rec := h.do(http.MethodGet, "/health/live", "", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("live: expected 200 got %d", rec.Code)
	}
	if rec := h.do(http.MethodGet, "/health/ready", "", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200 got %d", rec.Code)
	}
	rec := h.do(http.MethodGet, "/metrics", "", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "orders_created_total") {
		t.Fatalf("expected order counter in metrics output:\n%s", rec.Body.String())
	}
}

func TestOrdersRequireAuth(t *testing.T) {
	h := newHarness(t)
	if rec := h.do(http.MethodGet, "/api/v1/orders", "", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestRoleGates(t *testing.T) {
	h := newHarness(t)
	vendor := h.token(t, enums.UserRoleVendor)
	center := h.token(t, enums.UserRoleCenter)
	admin := h.token(t, enums.UserRoleAdmin)
	orderPath := "/api/v1/orders/" + uuid.NewString()

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		want   int
	}{
		{"vendor analytics", http.MethodGet, "/api/v1/analytics/overview", vendor, "", http.StatusForbidden},
		{"admin analytics", http.MethodGet, "/api/v1/analytics/centers/top?k=3", admin, "", http.StatusOK},
		{"vendor delete", http.MethodDelete, orderPath, vendor, "", http.StatusForbidden},
		{"admin delete", http.MethodDelete, orderPath, admin, "", http.StatusNoContent},
		{"center payment", http.MethodPatch, orderPath + "/payment", center, `{"status":"COMPLETED"}`, http.StatusForbidden},
		{"admin payment", http.MethodPatch, orderPath + "/payment", admin, `{"status":"COMPLETED"}`, http.StatusOK},
		{"center detail", http.MethodGet, orderPath, center, "", http.StatusOK},
		{"center create", http.MethodPost, "/api/v1/orders", center, `{}`, http.StatusForbidden},
	}
	for _, tc := range cases {
		headers := map[string]string{"Idempotency-Key": uuid.NewString()}
		if rec := h.do(tc.method, tc.path, tc.token, tc.body, headers); rec.Code != tc.want {
			t.Fatalf("%s: expected %d got %d (%s)", tc.name, tc.want, rec.Code, rec.Body.String())
		}
	}
}

func TestCreateOrderIdempotency(t *testing.T) {
	h := newHarness(t)
	vendor := h.token(t, enums.UserRoleVendor)
	body := `{"centerId":"` + uuid.NewString() + `","items":[{"productId":"` + uuid.NewString() + `","quantity":2}]}`

	if rec := h.do(http.MethodPost, "/api/v1/orders", vendor, body, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing key: expected 400 got %d", rec.Code)
	}

	headers := map[string]string{"Idempotency-Key": "order-1"}
	first := h.do(http.MethodPost, "/api/v1/orders", vendor, body, headers)
	if first.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201 got %d (%s)", first.Code, first.Body.String())
	}
	second := h.do(http.MethodPost, "/api/v1/orders", vendor, body, headers)
	if second.Code != http.StatusCreated {
		t.Fatalf("replay: expected 201 got %d", second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("expected identical replay body")
	}
	if h.orders.creates != 1 {
		t.Fatalf("expected one create call, got %d", h.orders.creates)
	}
}

func TestTransitionRequiresIdempotencyKey(t *testing.T) {
	h := newHarness(t)
	center := h.token(t, enums.UserRoleCenter)
	path := "/api/v1/orders/" + uuid.NewString() + "/status"

	if rec := h.do(http.MethodPatch, path, center, `{"status":"CONFIRMED"}`, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	rec := h.do(http.MethodPatch, path, center, `{"status":"CONFIRMED"}`, map[string]string{"Idempotency-Key": "t-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", rec.Code, rec.Body.String())
	}
}
