// Package metrics exposes the Prometheus collectors of the store backend.
// A nil *Metrics, or one built without a registerer, records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	salesFinalized prometheus.Counter
	saleFailures   *prometheus.CounterVec
	stockMovements *prometheus.CounterVec
	receiptJobs    *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	salesFinalized := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "store_sales_finalized_total",
		Help: "Sales committed successfully.",
	})
	saleFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_sale_failures_total",
		Help: "Sale finalizations rolled back, by error code and reason.",
	}, []string{"code", "reason"})
	stockMovements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_stock_movements_total",
		Help: "Persisted stock changes, by movement kind.",
	}, []string{"kind"})
	receiptJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_receipt_jobs_total",
		Help: "Receipt hand-off jobs, by outcome.",
	}, []string{"outcome"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(salesFinalized, saleFailures, stockMovements, receiptJobs, httpDuration)
	return &Metrics{
		salesFinalized: salesFinalized,
		saleFailures:   saleFailures,
		stockMovements: stockMovements,
		receiptJobs:    receiptJobs,
		httpDuration:   httpDuration,
	}
}

func (m *Metrics) IncSaleFinalized() {
	if m == nil || m.salesFinalized == nil {
		return
	}
	m.salesFinalized.Inc()
}

func (m *Metrics) IncSaleFailure(code, reason string) {
	if m == nil || m.saleFailures == nil {
		return
	}
	m.saleFailures.WithLabelValues(normalizeLabel(code), normalizeLabel(reason)).Inc()
}

func (m *Metrics) IncStockMovement(kind string) {
	if m == nil || m.stockMovements == nil {
		return
	}
	m.stockMovements.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *Metrics) IncReceiptJob(outcome string) {
	if m == nil || m.receiptJobs == nil {
		return
	}
	m.receiptJobs.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil || m.httpDuration == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, normalizeLabel(route), strconv.Itoa(status)).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
