package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics tracks order lifecycle and ranking activity.
type OrderMetrics struct {
	created             prometheus.Counter
	transitions         *prometheus.CounterVec
	reservationFailures *prometheus.CounterVec
	rankingDuration     *prometheus.HistogramVec
}

// NewOrderMetrics registers the order metrics on reg. A nil registerer yields
// a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders successfully created.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Applied order status transitions.",
	}, []string{"from", "to"})
	reservationFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_reservation_failures_total",
		Help: "Order creations rejected while reserving stock.",
	}, []string{"reason"})
	rankingDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "center_ranking_duration_seconds",
		Help:    "Time spent ranking centers by revenue.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	reg.MustRegister(created, transitions, reservationFailures, rankingDuration)
	return &OrderMetrics{
		created:             created,
		transitions:         transitions,
		reservationFailures: reservationFailures,
		rankingDuration:     rankingDuration,
	}
}

func (m *OrderMetrics) IncCreated() {
	if m == nil || m.created == nil {
		return
	}
	m.created.Inc()
}

func (m *OrderMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func (m *OrderMetrics) IncReservationFailure(reason string) {
	if m == nil || m.reservationFailures == nil {
		return
	}
	m.reservationFailures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObserveRanking records how long a ranking took; source is "cache" or "db".
func (m *OrderMetrics) ObserveRanking(source string, duration time.Duration) {
	if m == nil || m.rankingDuration == nil {
		return
	}
	m.rankingDuration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
