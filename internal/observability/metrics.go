package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	checkInOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkin_pipeline",
		Subsystem: "verification",
		Name:      "outcomes_total",
		Help:      "Terminal check-in pipeline outcomes by status or error code.",
	}, []string{"outcome"})
	checkInMatchRules = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkin_pipeline",
		Subsystem: "resolution",
		Name:      "match_rules_total",
		Help:      "Successful station resolutions by matching rule.",
	}, []string{"rule"})
)

func init() {
	prometheus.MustRegister(checkInOutcomes, checkInMatchRules)
}

// RecordOutcome counts one terminal pipeline result: "verified", "pending"
// or an error code such as "ambiguous".
func RecordOutcome(outcome string) {
	if outcome == "" {
		return
	}
	checkInOutcomes.WithLabelValues(outcome).Inc()
}

// RecordMatchRule counts one successful resolution by rule.
func RecordMatchRule(rule string) {
	if rule == "" {
		return
	}
	checkInMatchRules.WithLabelValues(rule).Inc()
}
