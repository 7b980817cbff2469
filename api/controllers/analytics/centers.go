package analytics

import (
	"net/http"

	"github.com/idoblon/vendorrs-backend/api/responses"
	internalanalytics "github.com/idoblon/vendorrs-backend/internal/analytics"
	pkgerrors "github.com/idoblon/vendorrs-backend/pkg/errors"
	"github.com/idoblon/vendorrs-backend/pkg/logger"
)

// TopCenters returns the K highest revenue centers for the requested window.
func TopCenters(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		q, err := parseQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ranking, err := svc.TopCenters(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ranking)
	}
}

// Overview returns platform revenue totals together with the top centers.
func Overview(svc internalanalytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}
		q, err := parseQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		overview, err := svc.Overview(r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, overview)
	}
}
