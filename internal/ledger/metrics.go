package ledger

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	postingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "postings_total",
			Help:      "Ledger postings by direction and outcome",
		},
		[]string{"direction", "outcome"},
	)

	postingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ledger",
			Name:      "posting_duration_seconds",
			Help:      "Time to validate, lock and commit a posting",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	publishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ledger",
			Name:      "event_publish_failures_total",
			Help:      "TransactionPosted events that could not be delivered",
		},
	)
)

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "committed"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrInvalidTransaction):
		return "invalid"
	case errors.Is(err, ErrAccountNotFound):
		return "not_found"
	case errors.Is(err, ErrAccountInactive):
		return "inactive"
	default:
		return "storage_failure"
	}
}
