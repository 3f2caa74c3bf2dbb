package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncSaleFinalized()
	m.IncSaleFinalized()
	m.IncSaleFailure("CONFLICT", "ITEM_ALREADY_SOLD")
	m.IncStockMovement("sale")
	m.IncReceiptJob("")
	m.ObserveHTTP(http.MethodPost, "/v1/sales", http.StatusCreated, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.salesFinalized))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.saleFailures.WithLabelValues("CONFLICT", "ITEM_ALREADY_SOLD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stockMovements.WithLabelValues("sale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.receiptJobs.WithLabelValues("unknown")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpDuration))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncSaleFinalized()
		m.IncSaleFailure("", "")
		m.IncStockMovement("recount")
		m.IncReceiptJob("sent")
		m.ObserveHTTP("GET", "/health", 200, time.Millisecond)
	})

	empty := New(nil)
	assert.NotPanics(t, func() { empty.IncSaleFinalized() })
}
