// Package metrics constructs the metrics the application will track.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request level metrics tracked by the web middleware.
var (
	requests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "powledger",
		Name:      "requests_total",
		Help:      "Number of requests handled.",
	})

	errorCount = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "powledger",
		Name:      "errors_total",
		Help:      "Number of requests that returned an error.",
	})

	panics = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "powledger",
		Name:      "panics_total",
		Help:      "Number of handlers that panicked.",
	})
)

// AddRequests increments the request count by 1.
func AddRequests() {
	requests.Inc()
}

// AddErrors increments the errors count by 1.
func AddErrors() {
	errorCount.Inc()
}

// AddPanics increments the panics count by 1.
func AddPanics() {
	panics.Inc()
}

// =============================================================================

// Ledger represents the values of a ledger exposed as gauges.
type Ledger interface {
	QueryBlockCount() int
	QueryMempoolLength() int
	QueryReservedLength() int
	Difficulty() uint
}

// RegisterLedger registers gauges that read the ledger every time they are
// scraped.
func RegisterLedger(reg prometheus.Registerer, l Ledger) error {
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "powledger",
			Name:      "blocks",
			Help:      "Number of blocks in the chain.",
		}, func() float64 { return float64(l.QueryBlockCount()) }),

		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "powledger",
			Name:      "mempool",
			Help:      "Number of transactions waiting to be mined.",
		}, func() float64 { return float64(l.QueryMempoolLength()) }),

		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "powledger",
			Name:      "reserved",
			Help:      "Number of transactions handed to miners.",
		}, func() float64 { return float64(l.QueryReservedLength()) }),

		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "powledger",
			Name:      "difficulty",
			Help:      "Leading zeros required for the next block.",
		}, func() float64 { return float64(l.Difficulty()) }),
	}

	for _, g := range gauges {
		if err := reg.Register(g); err != nil {
			return err
		}
	}

	return nil
}
