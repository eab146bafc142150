package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MatchingMetrics covers the matching cycle and the order lifecycle API.
type MatchingMetrics struct {
	// Matching cycle
	CyclesTotal              prometheus.Counter
	CycleDuration            prometheus.Histogram
	CategoriesProcessedTotal prometheus.Counter
	CategoryErrorsTotal      *prometheus.CounterVec
	TradesCommittedTotal     *prometheus.CounterVec
	RaceLostTotal            prometheus.Counter

	// Lifecycle API
	OrdersSubmittedTotal *prometheus.CounterVec
	PriceAmendmentsTotal *prometheus.CounterVec
}

func NewMatchingMetrics() *MatchingMetrics {
	return &MatchingMetrics{
		CyclesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matching_cycles_total",
			Help: "Total number of matching cycles started",
		}),

		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "matching_cycle_duration_seconds",
			Help:    "Duration of a full matching cycle",
			Buckets: prometheus.DefBuckets,
		}),

		CategoriesProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matching_categories_processed_total",
			Help: "Total number of categories processed across cycles",
		}),

		CategoryErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matching_category_errors_total",
				Help: "Total number of per-category processing failures",
			},
			[]string{"category"},
		),

		TradesCommittedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matching_trades_committed_total",
				Help: "Total number of trades committed to the store",
			},
			[]string{"category"},
		),

		RaceLostTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "matching_settlement_races_lost_total",
			Help: "Total number of settlement chunks dropped after losing a conditioned-write race",
		}),

		OrdersSubmittedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orders_submitted_total",
				Help: "Total number of submitted orders",
			},
			[]string{"role", "category"},
		),

		PriceAmendmentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_price_amendments_total",
				Help: "Total number of successful price amendments",
			},
			[]string{"role"},
		),
	}
}
