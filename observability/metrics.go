package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// MarketMetrics records marketplace activity for the /metrics endpoint.
type MarketMetrics struct {
	rpcRequests *prometheus.CounterVec
	purchases   *prometheus.CounterVec
	saleVolume  *prometheus.CounterVec
	mintedTotal prometheus.Counter
	collections prometheus.Counter
}

var (
	marketMetricsOnce sync.Once
	marketRegistry    *MarketMetrics
)

// Metrics returns the lazily-initialised marketplace metrics registry.
func Metrics() *MarketMetrics {
	marketMetricsOnce.Do(func() {
		marketRegistry = &MarketMetrics{
			rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "modelmarket",
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total JSON-RPC requests segmented by method and outcome.",
			}, []string{"method", "outcome"}),
			purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "modelmarket",
				Subsystem: "market",
				Name:      "purchases_total",
				Help:      "Total successful purchases segmented by fee lane.",
			}, []string{"lane"}),
			saleVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "modelmarket",
				Subsystem: "market",
				Name:      "sale_volume_total",
				Help:      "Total sale value settled, segmented by fee lane.",
			}, []string{"lane"}),
			mintedTotal: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "modelmarket",
				Subsystem: "market",
				Name:      "assets_minted_total",
				Help:      "Total assets minted across all collections.",
			}),
			collections: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "modelmarket",
				Subsystem: "market",
				Name:      "collections_created_total",
				Help:      "Total collections provisioned through the registry.",
			}),
		}
		prometheus.MustRegister(
			marketRegistry.rpcRequests,
			marketRegistry.purchases,
			marketRegistry.saleVolume,
			marketRegistry.mintedTotal,
			marketRegistry.collections,
		)
	})
	return marketRegistry
}

// ObserveRPC records a completed JSON-RPC request.
func (m *MarketMetrics) ObserveRPC(method, outcome string) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(method, outcome).Inc()
}

// ObservePurchase records a successful purchase and its sale value on the
// given fee lane.
func (m *MarketMetrics) ObservePurchase(lane string, price float64) {
	if m == nil {
		return
	}
	m.purchases.WithLabelValues(lane).Inc()
	if price > 0 {
		m.saleVolume.WithLabelValues(lane).Add(price)
	}
	m.mintedTotal.Inc()
}

// ObserveCollectionCreated records a provisioned collection.
func (m *MarketMetrics) ObserveCollectionCreated() {
	if m == nil {
		return
	}
	m.collections.Inc()
}
