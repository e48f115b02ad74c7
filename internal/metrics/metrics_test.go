package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.BillCreated()
	m.BillCreated()
	m.BillDeleted()
	m.MemberRemoved("resplit")
	m.SettlementStatus("pending")
	m.SettlementStatus("paid")
	m.NotificationDropped()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.billsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.billsDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.memberRemovals.WithLabelValues("resplit")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.memberRemovals.WithLabelValues("absorb")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.settlements.WithLabelValues("paid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notificationsDropped))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.BillCreated()
		m.ObserveRPC("/x", "ok", time.Millisecond)
		m.ObserveSimplified(3)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := NewRegistry()
	m := New(reg)
	m.ObserveRPC("/splitledger.v1.BillService/CreateBill", "ok", 15*time.Millisecond)
	m.ObserveSimplified(2)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `splitledger_rpc_requests_total{code="ok",procedure="/splitledger.v1.BillService/CreateBill"} 1`)
	assert.Contains(t, string(body), "splitledger_simplified_transactions_count 1")
	assert.Contains(t, string(body), "go_goroutines")
}
