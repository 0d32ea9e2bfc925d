package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hotelstaff/roster/modules/roster/services/exchange"
	"github.com/hotelstaff/roster/modules/roster/services/repair"
)

var (
	importRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Subsystem: "import",
		Name:      "records_total",
		Help:      "Imported staff records broken down by outcome.",
	}, []string{"outcome"})

	repairOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Subsystem: "repair",
		Name:      "outcomes_total",
		Help:      "Vacation reference checks broken down by repair status.",
	}, []string{"status"})

	repairRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roster",
		Subsystem: "repair",
		Name:      "runs_total",
		Help:      "Repair runs broken down by trigger and result.",
	}, []string{"trigger", "result"})
)

func observeImport(r *exchange.Report) {
	if r.DryRun {
		return
	}
	importRecords.WithLabelValues(string(exchange.OutcomeAccepted)).Add(float64(r.Accepted))
	importRecords.WithLabelValues(string(exchange.OutcomeSkippedDuplicate)).Add(float64(r.SkippedDuplicate))
	importRecords.WithLabelValues(string(exchange.OutcomeSkippedInvalid)).Add(float64(r.SkippedInvalid))
}

func observeRepair(trigger string, res *repair.Result, err error) {
	if err != nil {
		repairRuns.WithLabelValues(trigger, "error").Inc()
		return
	}
	repairRuns.WithLabelValues(trigger, "ok").Inc()
	counts := map[repair.Status]int{
		repair.StatusOK:            res.OK,
		repair.StatusFixed:         res.Fixed,
		repair.StatusUnrecoverable: res.Unrecoverable,
		repair.StatusFailed:        res.Failed,
		repair.StatusSkipped:       res.Skipped,
	}
	for status, n := range counts {
		repairOutcomes.WithLabelValues(string(status)).Add(float64(n))
	}
}
