package orders

import (
	"net/http"
	"strings"

	"github.com/idoblon/vendorrs-backend/api/middleware"
	"github.com/idoblon/vendorrs-backend/api/responses"
	"github.com/idoblon/vendorrs-backend/api/validators"
	internalorders "github.com/idoblon/vendorrs-backend/internal/orders"
	"github.com/idoblon/vendorrs-backend/pkg/enums"
	pkgerrors "github.com/idoblon/vendorrs-backend/pkg/errors"
	"github.com/idoblon/vendorrs-backend/pkg/logger"
	"github.com/idoblon/vendorrs-backend/pkg/pagination"
	"github.com/idoblon/vendorrs-backend/pkg/types"
)

func actorFromRequest(r *http.Request) internalorders.Actor {
	return internalorders.Actor{
		UserID: middleware.UserIDFromContext(r.Context()),
		Role:   middleware.RoleFromContext(r.Context()),
	}
}

func unavailable(svc internalorders.Service, logg *logger.Logger, w http.ResponseWriter, r *http.Request) bool {
	if svc != nil {
		return false
	}
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
	return true
}

// Quote prices a prospective order without reserving stock.
func Quote(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if unavailable(svc, logg, w, r) {
			return
		}
		var req quoteRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.QuotePricing(r.Context(), req.toInput(actorFromRequest(r)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewQuoteDTO(*summary))
	}
}

// Create places an order and reserves stock at the center.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if unavailable(svc, logg, w, r) {
			return
		}
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.CreateOrder(r.Context(), req.toInput(actorFromRequest(r)))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, internalorders.NewOrderDTO(*order))
	}
}

// List returns a cursor page of orders visible to the caller.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if unavailable(svc, logg, w, r) {
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := parseListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		list, err := svc.ListOrders(r.Context(), actorFromRequest(r), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items := make([]internalorders.OrderDTO, 0, len(list.Orders))
		for _, order := range list.Orders {
			items = append(items, internalorders.NewOrderDTO(order))
		}
		responses.WriteSuccess(w, types.ListResult[internalorders.OrderDTO]{Items: items, NextCursor: list.NextCursor})
	}
}

func parseListFilters(r *http.Request) (internalorders.ListFilters, error) {
	var filters internalorders.ListFilters
	var err error

	if filters.VendorID, err = validators.ParseQueryUUID(r, "vendorId"); err != nil {
		return filters, err
	}
	if filters.CenterID, err = validators.ParseQueryUUID(r, "centerId"); err != nil {
		return filters, err
	}
	if filters.CreatedFrom, err = validators.ParseQueryTime(r, "from"); err != nil {
		return filters, err
	}
	if filters.CreatedTo, err = validators.ParseQueryTime(r, "to"); err != nil {
		return filters, err
	}
	if filters.IncludeInactive, err = validators.ParseQueryBool(r, "includeInactive"); err != nil {
		return filters, err
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, parseErr := enums.ParseOrderStatus(strings.ToUpper(raw))
		if parseErr != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter")
		}
		filters.Status = &status
	}
	return filters, nil
}

// Detail returns a single order after the ownership check.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if unavailable(svc, logg, w, r) {
			return
		}
		orderID, err := validators.ParsePathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetOrder(r.Context(), actorFromRequest(r), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderDTO(*order))
	}
}

// Transition moves an order to the requested status.
func Transition(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if unavailable(svc, logg, w, r) {
			return
		}
		orderID, err := validators.ParsePathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req transitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.TransitionOrder(r.Context(), internalorders.TransitionInput{
			Actor:   actorFromRequest(r),
			OrderID: orderID,
			To:      enums.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
			Notes:   validators.SanitizeOptional(req.Notes, maxNotesLength),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderDTO(*order))
	}
}

// Payment records a payment status change. Admin only.
func Payment(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if unavailable(svc, logg, w, r) {
			return
		}
		orderID, err := validators.ParsePathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req paymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.UpdatePaymentStatus(r.Context(), internalorders.PaymentUpdateInput{
			Actor:         actorFromRequest(r),
			OrderID:       orderID,
			Status:        enums.PaymentStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
			TransactionID: validators.SanitizeOptional(req.TransactionID, 200),
			PaidAmount:    req.PaidAmount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, internalorders.NewOrderDTO(*order))
	}
}

// Delete soft deletes an order. Admin only.
func Delete(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if unavailable(svc, logg, w, r) {
			return
		}
		orderID, err := validators.ParsePathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeactivateOrder(r.Context(), actorFromRequest(r), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
