package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/idoblon/vendorrs-backend/api/middleware"
	"github.com/idoblon/vendorrs-backend/internal/orders"
	"github.com/idoblon/vendorrs-backend/internal/pricing"
	"github.com/idoblon/vendorrs-backend/pkg/db/models"
	"github.com/idoblon/vendorrs-backend/pkg/enums"
	pkgerrors "github.com/idoblon/vendorrs-backend/pkg/errors"
	"github.com/idoblon/vendorrs-backend/pkg/pagination"
)

type stubService struct {
	quoteInput      orders.QuoteInput
	createInput     orders.CreateOrderInput
	transitionInput orders.TransitionInput
	paymentInput    orders.PaymentUpdateInput
	listFilters     orders.ListFilters
	listParams      pagination.Params
	actor           orders.Actor
	deletedID       uuid.UUID

	order *models.Order
	list  *orders.OrderList
	err   error
	calls int
}

func (s *stubService) QuotePricing(ctx context.Context, input orders.QuoteInput) (*pricing.Summary, error) {
	s.calls++
	s.quoteInput = input
	if s.err != nil {
		return nil, s.err
	}
	return &pricing.Summary{ShippingMethod: enums.ShippingMethodStandard}, nil
}

func (s *stubService) CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*models.Order, error) {
	s.calls++
	s.createInput = input
	return s.order, s.err
}

func (s *stubService) TransitionOrder(ctx context.Context, input orders.TransitionInput) (*models.Order, error) {
	s.calls++
	s.transitionInput = input
	return s.order, s.err
}

func (s *stubService) UpdatePaymentStatus(ctx context.Context, input orders.PaymentUpdateInput) (*models.Order, error) {
	s.calls++
	s.paymentInput = input
	return s.order, s.err
}

func (s *stubService) GetOrder(ctx context.Context, actor orders.Actor, orderID uuid.UUID) (*models.Order, error) {
	s.calls++
	s.actor = actor
	return s.order, s.err
}

func (s *stubService) ListOrders(ctx context.Context, actor orders.Actor, filters orders.ListFilters, params pagination.Params) (*orders.OrderList, error) {
	s.calls++
	s.actor = actor
	s.listFilters = filters
	s.listParams = params
	return s.list, s.err
}

func (s *stubService) DeactivateOrder(ctx context.Context, actor orders.Actor, orderID uuid.UUID) error {
	s.calls++
	s.actor = actor
	s.deletedID = orderID
	return s.err
}

func newTestRouter(svc orders.Service, userID uuid.UUID, role enums.UserRole) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithIdentity(req.Context(), userID, role)))
		})
	})
	r.Post("/orders/quote", Quote(svc, nil))
	r.Post("/orders", Create(svc, nil))
	r.Get("/orders", List(svc, nil))
	r.Get("/orders/{orderId}", Detail(svc, nil))
	r.Patch("/orders/{orderId}/status", Transition(svc, nil))
	r.Patch("/orders/{orderId}/payment", Payment(svc, nil))
	r.Delete("/orders/{orderId}", Delete(svc, nil))
	return r
}

func serve(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestCreateOrder(t *testing.T) {
	vendorID := uuid.New()
	centerID := uuid.New()
	productID := uuid.New()
	orderID := uuid.New()
	svc := &stubService{order: &models.Order{ID: orderID, VendorID: vendorID, CenterID: centerID, Status: enums.OrderStatusPending}}
	router := newTestRouter(svc, vendorID, enums.UserRoleVendor)

	body := `{"centerId":"` + centerID.String() + `","items":[{"productId":"` + productID.String() + `","quantity":3}],"paymentMethod":"BANK_TRANSFER","notes":"  leave at gate  "}`
	rec := serve(t, router, http.MethodPost, "/orders", body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, vendorID, svc.createInput.Actor.UserID)
	require.Equal(t, enums.UserRoleVendor, svc.createInput.Actor.Role)
	require.Equal(t, uuid.Nil, svc.createInput.VendorID)
	require.Equal(t, centerID, svc.createInput.CenterID)
	require.Len(t, svc.createInput.Items, 1)
	require.Equal(t, productID, svc.createInput.Items[0].ProductID)
	require.Equal(t, 3, svc.createInput.Items[0].Quantity)
	require.Equal(t, enums.PaymentMethodBankTransfer, svc.createInput.PaymentMethod)
	require.NotNil(t, svc.createInput.Notes)
	require.Equal(t, "leave at gate", *svc.createInput.Notes)

	var dto orders.OrderDTO
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &dto))
	require.Equal(t, orderID, dto.ID)
	require.Equal(t, enums.OrderStatusPending, dto.Status)
}

func TestCreateOrderValidation(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(svc, uuid.New(), enums.UserRoleVendor)

	cases := map[string]string{
		"missing items":   `{"centerId":"` + uuid.NewString() + `","items":[]}`,
		"bad center":      `{"centerId":"nope","items":[{"productId":"` + uuid.NewString() + `","quantity":1}]}`,
		"zero quantity":   `{"centerId":"` + uuid.NewString() + `","items":[{"productId":"` + uuid.NewString() + `","quantity":0}]}`,
		"unknown field":   `{"centerId":"` + uuid.NewString() + `","items":[{"productId":"` + uuid.NewString() + `","quantity":1}],"extra":true}`,
		"empty body":      ``,
		"bad ship method": `{"centerId":"` + uuid.NewString() + `","items":[{"productId":"` + uuid.NewString() + `","quantity":1}],"shippingMethod":"DRONE"}`,
	}
	for name, body := range cases {
		rec := serve(t, router, http.MethodPost, "/orders", body)
		require.Equal(t, http.StatusBadRequest, rec.Code, name)
		require.Equal(t, string(pkgerrors.CodeValidation), decode(t, rec).Error.Code, name)
	}
	require.Zero(t, svc.calls)
}

func TestCreateOrderInsufficientStockDetails(t *testing.T) {
	svc := &stubService{err: pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
		WithDetails(map[string]any{"available": 2, "requested": 5})}
	router := newTestRouter(svc, uuid.New(), enums.UserRoleVendor)

	body := `{"centerId":"` + uuid.NewString() + `","items":[{"productId":"` + uuid.NewString() + `","quantity":5}]}`
	rec := serve(t, router, http.MethodPost, "/orders", body)

	require.Equal(t, http.StatusConflict, rec.Code)
	env := decode(t, rec)
	require.Equal(t, string(pkgerrors.CodeInsufficientStock), env.Error.Code)
	require.EqualValues(t, 2, env.Error.Details["available"])
}

func TestQuote(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(svc, uuid.New(), enums.UserRoleAdmin)
	vendorID := uuid.New()

	body := `{"vendorId":"` + vendorID.String() + `","centerId":"` + uuid.NewString() + `","items":[{"productId":"` + uuid.NewString() + `","quantity":1}],"shippingMethod":"EXPRESS","shippingCost":"120.50"}`
	rec := serve(t, router, http.MethodPost, "/orders/quote", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, vendorID, svc.quoteInput.VendorID)
	require.Equal(t, enums.ShippingMethodExpress, svc.quoteInput.ShippingMethod)
	require.NotNil(t, svc.quoteInput.ShippingCost)
	require.Equal(t, "120.5", svc.quoteInput.ShippingCost.String())
}

func TestListOrders(t *testing.T) {
	centerID := uuid.New()
	svc := &stubService{list: &orders.OrderList{
		Orders:     []models.Order{{ID: uuid.New()}, {ID: uuid.New()}},
		NextCursor: "next-page",
	}}
	router := newTestRouter(svc, uuid.New(), enums.UserRoleAdmin)

	rec := serve(t, router, http.MethodGet, "/orders?limit=2&status=confirmed&centerId="+centerID.String()+"&from=2024-01-01T00:00:00Z&cursor=abc", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 2, svc.listParams.Limit)
	require.Equal(t, "abc", svc.listParams.Cursor)
	require.NotNil(t, svc.listFilters.Status)
	require.Equal(t, enums.OrderStatusConfirmed, *svc.listFilters.Status)
	require.NotNil(t, svc.listFilters.CenterID)
	require.Equal(t, centerID, *svc.listFilters.CenterID)
	require.NotNil(t, svc.listFilters.CreatedFrom)
	require.Nil(t, svc.listFilters.CreatedTo)

	var page struct {
		Items      []orders.OrderDTO `json:"items"`
		NextCursor string            `json:"nextCursor"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &page))
	require.Len(t, page.Items, 2)
	require.Equal(t, "next-page", page.NextCursor)
}

func TestListOrdersRejectsBadQuery(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(svc, uuid.New(), enums.UserRoleAdmin)

	for _, target := range []string{
		"/orders?status=LOST",
		"/orders?limit=0",
		"/orders?limit=1000",
		"/orders?from=yesterday",
		"/orders?vendorId=abc",
	} {
		rec := serve(t, router, http.MethodGet, target, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
	require.Zero(t, svc.calls)
}

func TestDetailRejectsInvalidID(t *testing.T) {
	svc := &stubService{}
	rec := serve(t, newTestRouter(svc, uuid.New(), enums.UserRoleVendor), http.MethodGet, "/orders/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, svc.calls)
}

func TestDetailNotFound(t *testing.T) {
	svc := &stubService{err: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	rec := serve(t, newTestRouter(svc, uuid.New(), enums.UserRoleCenter), http.MethodGet, "/orders/"+uuid.NewString(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, enums.UserRoleCenter, svc.actor.Role)
}

func TestTransition(t *testing.T) {
	orderID := uuid.New()
	centerID := uuid.New()
	svc := &stubService{order: &models.Order{ID: orderID, Status: enums.OrderStatusConfirmed}}
	router := newTestRouter(svc, centerID, enums.UserRoleCenter)

	rec := serve(t, router, http.MethodPatch, "/orders/"+orderID.String()+"/status", `{"status":"confirmed","notes":"packed"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, orderID, svc.transitionInput.OrderID)
	require.Equal(t, enums.OrderStatusConfirmed, svc.transitionInput.To)
	require.Equal(t, centerID, svc.transitionInput.Actor.UserID)
	require.Equal(t, "packed", *svc.transitionInput.Notes)
}

func TestTransitionInvalid(t *testing.T) {
	svc := &stubService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "invalid transition").
		WithDetails(map[string]any{"from": "DELIVERED", "to": "PENDING"})}
	router := newTestRouter(svc, uuid.New(), enums.UserRoleAdmin)

	rec := serve(t, router, http.MethodPatch, "/orders/"+uuid.NewString()+"/status", `{"status":"PENDING"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decode(t, rec)
	require.Equal(t, string(pkgerrors.CodeStateConflict), env.Error.Code)
	require.Equal(t, "DELIVERED", env.Error.Details["from"])
}

func TestPayment(t *testing.T) {
	orderID := uuid.New()
	svc := &stubService{order: &models.Order{ID: orderID}}
	router := newTestRouter(svc, uuid.New(), enums.UserRoleAdmin)

	rec := serve(t, router, http.MethodPatch, "/orders/"+orderID.String()+"/payment", `{"status":"completed","transactionId":"txn-1","paidAmount":1520}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, enums.PaymentStatusCompleted, svc.paymentInput.Status)
	require.Equal(t, "txn-1", *svc.paymentInput.TransactionID)
	require.Equal(t, "1520", svc.paymentInput.PaidAmount.String())
}

func TestDelete(t *testing.T) {
	orderID := uuid.New()
	svc := &stubService{}
	rec := serve(t, newTestRouter(svc, uuid.New(), enums.UserRoleAdmin), http.MethodDelete, "/orders/"+orderID.String(), "")

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, orderID, svc.deletedID)
}

func TestNilServiceIsInternalError(t *testing.T) {
	rec := serve(t, newTestRouter(nil, uuid.New(), enums.UserRoleAdmin), http.MethodGet, "/orders", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
