// Package metrics exposes the prometheus collectors backing the
// operational surface SPEC_FULL.md adds alongside the bot turn
// pipeline: pending bot-turn count, per-turn duration, plan length,
// and feasible/rejected option counts. Grounded on the teacher-adjacent
// `luxfi-consensus` example's api/metrics package: a constructor
// registering a fixed set of named collectors against a
// prometheus.Registerer and returning a struct of typed accessors,
// rather than reaching for package-level global collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ironroute"

// Collectors holds every prometheus collector the bot turn pipeline
// reports to.
type Collectors struct {
	PendingBotTurns  prometheus.Gauge
	QueuedBotTurns   prometheus.Gauge
	TurnDuration     prometheus.Histogram
	PlanLength       prometheus.Histogram
	OptionsFeasible  prometheus.Counter
	OptionsRejected  prometheus.Counter
	TurnsExecuted    prometheus.Counter
	TurnsFailed      prometheus.Counter
}

// New constructs Collectors and registers each of them against reg.
func New(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		PendingBotTurns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "pending_bot_turns",
			Help:      "Number of games with a bot turn currently in flight.",
		}),
		QueuedBotTurns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "queued_bot_turns",
			Help:      "Number of games deferred because no human is connected.",
		}),
		TurnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "turn_duration_seconds",
			Help:      "Wall-clock duration of a bot turn from snapshot capture to seat advance.",
			Buckets:   prometheus.DefBuckets,
		}),
		PlanLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "plan_length",
			Help:      "Number of actions in a planner-emitted TurnPlan.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 8, 13},
		}),
		OptionsFeasible: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "options_feasible_total",
			Help:      "Count of candidate options the FeasibilityService accepted.",
		}),
		OptionsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "options_rejected_total",
			Help:      "Count of candidate options the FeasibilityService rejected.",
		}),
		TurnsExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "turns_executed_total",
			Help:      "Count of bot turns that ran to completion successfully.",
		}),
		TurnsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "turns_failed_total",
			Help:      "Count of bot turns that stopped on a failed action.",
		}),
	}

	collectors := []prometheus.Collector{
		c.PendingBotTurns, c.QueuedBotTurns, c.TurnDuration, c.PlanLength,
		c.OptionsFeasible, c.OptionsRejected, c.TurnsExecuted, c.TurnsFailed,
	}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}
