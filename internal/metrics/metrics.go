package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the checkout collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// method, path, status_code
	HTTPRequestsTotal *prometheus.CounterVec

	// method, path
	HTTPRequestDuration *prometheus.HistogramVec

	// per seat; status: confirmed, rejected, protocol_error
	SeatReservationsTotal *prometheus.CounterVec

	// per batch; outcome: complete, partial
	ReservationBatchesTotal *prometheus.CounterVec

	// status: succeeded, failed, ambiguous
	PaymentsTotal *prometheus.CounterVec

	// operation: reserve, pay
	BookingAPIDuration *prometheus.HistogramVec

	// from, to
	StateTransitionsTotal *prometheus.CounterVec

	ActiveSessions prometheus.Gauge
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		SeatReservationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_seat_reservations_total",
				Help: "Total number of per-seat reservation attempts",
			},
			[]string{"status"},
		),
		ReservationBatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_reservation_batches_total",
				Help: "Total number of submitted reservation batches",
			},
			[]string{"outcome"},
		),
		PaymentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_payments_total",
				Help: "Total number of payment submissions by outcome",
			},
			[]string{"status"},
		),
		BookingAPIDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "checkout_booking_api_duration_seconds",
				Help:    "Latency of calls to the booking API",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		StateTransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "checkout_state_transitions_total",
				Help: "Total number of checkout state transitions",
			},
			[]string{"from", "to"},
		),
		ActiveSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "checkout_active_sessions",
				Help: "Current number of live checkout sessions",
			},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SeatReservationsTotal,
		m.ReservationBatchesTotal,
		m.PaymentsTotal,
		m.BookingAPIDuration,
		m.StateTransitionsTotal,
		m.ActiveSessions,
	)

	return m
}

func (m *Metrics) SeatReserved(status string) {
	if m == nil {
		return
	}
	m.SeatReservationsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) BatchSubmitted(outcome string) {
	if m == nil {
		return
	}
	m.ReservationBatchesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PaymentResolved(status string) {
	if m == nil {
		return
	}
	m.PaymentsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveBookingAPI(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.BookingAPIDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.StateTransitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}
