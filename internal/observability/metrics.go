package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the exchange.
type Metrics struct {
	// --- Engine operations ---
	OpsApplied  *prometheus.CounterVec
	OpsRejected *prometheus.CounterVec
	OpDuration  *prometheus.HistogramVec
	Sequence    prometheus.Gauge

	// --- Order book ---
	OrdersPlaced   *prometheus.CounterVec
	OrdersMatched  prometheus.Counter
	MatchedVolume  prometheus.Counter
	EscrowHeld     *prometheus.GaugeVec
	OrdersResting  prometheus.Gauge

	// --- Settlement ---
	MarketsResolved prometheus.Counter
	RedeemedGross   prometheus.Counter
	FeesCollected   prometheus.Counter

	// --- Persistence ---
	PersistEventsWritten prometheus.Counter
	PersistBatchDur      prometheus.Histogram
	PersistBatchSize     prometheus.Histogram
	PersistErrors        *prometheus.CounterVec

	// --- Outbound publishing ---
	PublishDrops prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	latencyBuckets := []float64{
		0.000001, 0.000005, 0.00001, 0.000025, 0.00005,
		0.0001, 0.00025, 0.0005, 0.001, 0.002, 0.005, 0.01,
	}

	return &Metrics{
		OpsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fanpredix_engine_ops_applied_total",
			Help: "Operations successfully applied by the engine",
		}, []string{"op"}),

		OpsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fanpredix_engine_ops_rejected_total",
			Help: "Operations rejected by validation or escrow",
		}, []string{"op", "reason"}),

		OpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fanpredix_engine_op_duration_seconds",
			Help:    "Time to apply a single operation",
			Buckets: latencyBuckets,
		}, []string{"op"}),

		Sequence: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fanpredix_engine_sequence",
			Help: "Current engine event sequence",
		}),

		OrdersPlaced: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fanpredix_orders_placed_total",
			Help: "Orders accepted, by side",
		}, []string{"side"}),

		OrdersMatched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fanpredix_orders_matched_total",
			Help: "Matching events produced",
		}),

		MatchedVolume: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fanpredix_matched_volume_total",
			Help: "Total back-stake volume matched (token smallest units)",
		}),

		EscrowHeld: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fanpredix_escrow_held",
			Help: "Escrow currently held per market",
		}, []string{"market_id"}),

		OrdersResting: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fanpredix_orders_resting",
			Help: "Orders currently resting on the book",
		}),

		MarketsResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fanpredix_markets_resolved_total",
			Help: "Markets resolved",
		}),

		RedeemedGross: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fanpredix_redeemed_gross_total",
			Help: "Gross winnings redeemed (token smallest units)",
		}),

		FeesCollected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fanpredix_fees_collected_total",
			Help: "Platform fees routed to treasury (token smallest units)",
		}),

		PersistEventsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fanpredix_persist_events_written_total",
			Help: "Events written to the event log",
		}),

		PersistBatchDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fanpredix_persist_batch_duration_seconds",
			Help:    "Time to flush one persistence batch",
			Buckets: prometheus.DefBuckets,
		}),

		PersistBatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fanpredix_persist_batch_size",
			Help:    "Events per persistence batch",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		}),

		PersistErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fanpredix_persist_errors_total",
			Help: "Persistence failures by stage",
		}, []string{"stage"}),

		PublishDrops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fanpredix_publish_drops_total",
			Help: "Outbound events dropped on full projection channel",
		}),
	}
}
