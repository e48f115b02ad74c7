// Package metrics exposes Prometheus collectors for the ledger server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitledger"

// Metrics holds the server's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	rpcRequests          *prometheus.CounterVec
	rpcDuration          *prometheus.HistogramVec
	billsCreated         prometheus.Counter
	billsDeleted         prometheus.Counter
	memberRemovals       *prometheus.CounterVec
	settlements          *prometheus.CounterVec
	simplifiedDebts      prometheus.Histogram
	notificationsDropped prometheus.Counter
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		rpcRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		billsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bills_created_total",
			Help:      "Bills created.",
		}),
		billsDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bills_deleted_total",
			Help:      "Bills deleted.",
		}),
		memberRemovals: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "member_removals_total",
			Help:      "Participants removed from groups, by resolution policy.",
		}, []string{"resolution"}),
		settlements: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Settlements entering each status.",
		}, []string{"status"}),
		simplifiedDebts: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simplified_transactions",
			Help:      "Transactions produced per debt simplification.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		notificationsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dropped_total",
			Help:      "Dashboard notifications dropped for slow subscribers.",
		}),
	}
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the metrics in reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// ObserveRPC records one finished RPC with its status code and latency.
func (m *Metrics) ObserveRPC(procedure, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(d.Seconds())
}

// BillCreated counts a persisted bill.
func (m *Metrics) BillCreated() {
	if m == nil {
		return
	}
	m.billsCreated.Inc()
}

// BillDeleted counts a deleted bill.
func (m *Metrics) BillDeleted() {
	if m == nil {
		return
	}
	m.billsDeleted.Inc()
}

// MemberRemoved counts a member removal by resolution policy.
func (m *Metrics) MemberRemoved(resolution string) {
	if m == nil {
		return
	}
	m.memberRemovals.WithLabelValues(resolution).Inc()
}

// SettlementStatus counts a settlement entering status.
func (m *Metrics) SettlementStatus(status string) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(status).Inc()
}

// ObserveSimplified records how many payments a group simplified to.
func (m *Metrics) ObserveSimplified(n int) {
	if m == nil {
		return
	}
	m.simplifiedDebts.Observe(float64(n))
}

// NotificationDropped counts an event dropped for a slow subscriber.
func (m *Metrics) NotificationDropped() {
	if m == nil {
		return
	}
	m.notificationsDropped.Inc()
}
