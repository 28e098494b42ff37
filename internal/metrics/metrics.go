package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/simaogato/investfolio-backend/internal/domain"
)

// Metrics holds all Prometheus metrics for the portfolio engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	OperationsTotal   *prometheus.CounterVec   // labels: operation, outcome
	OperationDuration *prometheus.HistogramVec // labels: operation
	UnitsTraded       *prometheus.CounterVec   // labels: type
	LockWait          prometheus.Histogram
	HTTPRequests      *prometheus.CounterVec // labels: method, route, status
}

// NewMetrics registers and returns all Prometheus metrics on a private registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		OperationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "investfolio_operations_total",
			Help: "Portfolio engine operations by outcome (ok or error kind)",
		}, []string{"operation", "outcome"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "investfolio_operation_duration_seconds",
			Help:    "Portfolio engine operation latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		UnitsTraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "investfolio_units_traded_total",
			Help: "Units bought and sold",
		}, []string{"type"}),
		LockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "investfolio_holding_lock_wait_seconds",
			Help:    "Time spent waiting for the per-holding lock",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "investfolio_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.OperationsTotal,
		m.OperationDuration,
		m.UnitsTraded,
		m.LockWait,
		m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gatherer returns the underlying registry
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// ObserveOperation records the outcome and latency of one engine operation.
// The outcome label is "ok" or the lower-cased domain error kind.
func (m *Metrics) ObserveOperation(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, Outcome(err)).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// AddUnits counts units traded by a committed buy or sell
func (m *Metrics) AddUnits(txnType domain.TransactionType, units decimal.Decimal) {
	if m == nil {
		return
	}
	m.UnitsTraded.WithLabelValues(string(txnType)).Add(units.InexactFloat64())
}

// ObserveLockWait records how long an operation waited for its holding lock
func (m *Metrics) ObserveLockWait(d time.Duration) {
	if m == nil {
		return
	}
	m.LockWait.Observe(d.Seconds())
}

// ObserveHTTP counts one served HTTP request
func (m *Metrics) ObserveHTTP(method, route, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
}

// Outcome maps an error to a metric label
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := domain.KindOf(err); kind != "" {
		return strings.ToLower(string(kind))
	}
	return "error"
}
