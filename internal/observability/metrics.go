// Package observability exposes Prometheus metrics for the credit engine.
// Counters are registered with promauto on the default registry and served
// by the API layer on /metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CreditsAwarded counts credits granted, labelled by activity kind.
	CreditsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "greenledger",
		Name:      "credits_awarded_total",
		Help:      "Total credits awarded, by activity kind.",
	}, []string{"activity_kind"})

	// AwardNoops counts award calls that computed a zero amount.
	AwardNoops = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "greenledger",
		Name:      "award_noops_total",
		Help:      "Award calls that resulted in no credits.",
	})

	// AwardFailures counts award calls that failed (validation or storage).
	AwardFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "greenledger",
		Name:      "award_failures_total",
		Help:      "Award calls that returned an error.",
	})

	// StreakBonuses counts streak bonuses granted by the detector.
	StreakBonuses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "greenledger",
		Name:      "streak_bonuses_total",
		Help:      "Seven-day streak bonuses awarded.",
	})
)
