// Package metrics exposes prometheus instruments for the lending operations.
package metrics

import (
	"errors"

	"musicschool_backend/inventory"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "musicschool_lending_operations_total",
		Help: "Lending registry operations by outcome.",
	}, []string{"operation", "outcome"})

	instrumentsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "musicschool_instruments",
		Help: "Registered instruments by lifecycle status.",
	}, []string{"status"})

	overdueInstruments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "musicschool_instruments_overdue",
		Help: "Same-day borrows past their due moment.",
	})

	renewalDueInstruments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "musicschool_instruments_renewal_due",
		Help: "Long-term loans inside or past the renewal warning window.",
	})
)

// RecordOperation counts one registry call. Rejections are split by error
// kind so a spike of invalid-transition responses is visible separately from
// bad input.
func RecordOperation(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, inventory.ErrValidation):
		outcome = "validation"
	case errors.Is(err, inventory.ErrInvalidStateTransition):
		outcome = "invalid_transition"
	case errors.Is(err, inventory.ErrNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	operationsTotal.WithLabelValues(op, outcome).Inc()
}

// ObserveSummary refreshes the status gauges from a registry summary.
func ObserveSummary(s inventory.Summary) {
	instrumentsByStatus.WithLabelValues("available").Set(float64(s.Available))
	instrumentsByStatus.WithLabelValues("borrowed").Set(float64(s.Borrowed))
	instrumentsByStatus.WithLabelValues("loaned").Set(float64(s.Loaned))
	instrumentsByStatus.WithLabelValues("maintenance").Set(float64(s.Maintenance))
	overdueInstruments.Set(float64(s.Overdue))
	renewalDueInstruments.Set(float64(s.NeedsRenewal))
}
