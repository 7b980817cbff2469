package analytics

import (
	"net/http"

	"github.com/idoblon/vendorrs-backend/api/validators"
	internalanalytics "github.com/idoblon/vendorrs-backend/internal/analytics"
	pkgerrors "github.com/idoblon/vendorrs-backend/pkg/errors"
)

// maxQueryK bounds the raw query parameter; the service applies the configured maximum.
const maxQueryK = 1000

// parseQuery reads k, from and to. Omitted values leave the service defaults
// and an open window in place.
func parseQuery(r *http.Request) (internalanalytics.Query, error) {
	var q internalanalytics.Query

	k, err := validators.ParseQueryInt(r, "k", 0, 1, maxQueryK)
	if err != nil {
		return q, err
	}
	q.K = k

	if q.Window.From, err = validators.ParseQueryTime(r, "from"); err != nil {
		return q, err
	}
	if q.Window.To, err = validators.ParseQueryTime(r, "to"); err != nil {
		return q, err
	}
	if q.Window.From != nil && q.Window.To != nil && q.Window.To.Before(*q.Window.From) {
		return q, pkgerrors.New(pkgerrors.CodeValidation, "to must not be before from")
	}
	return q, nil
}
