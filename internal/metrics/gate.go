package metrics

import "github.com/prometheus/client_golang/prometheus"

// Access gate and data source Prometheus metrics.
var (
	GateDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "liquiditick",
			Name:      "gate_decisions_total",
			Help:      "Access gate decisions by operation and outcome",
		},
		[]string{"operation", "decision"}, // decision: allowed / denied / bypass
	)

	UsageChargedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "liquiditick",
			Name:      "usage_charged_total",
			Help:      "Free-tier quota units consumed",
		},
	)

	SourceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "liquiditick",
			Name:      "source_requests_total",
			Help:      "Opportunity data source calls by operation and connectivity status",
		},
		[]string{"operation", "status"}, // status: online / offline
	)

	SourceRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "liquiditick",
			Name:      "source_request_duration_seconds",
			Help:      "Opportunity data source call duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	OpportunityCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "liquiditick",
			Name:      "opportunity_cache_total",
			Help:      "Opportunity cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ReportNarrativesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "liquiditick",
			Name:      "report_narratives_total",
			Help:      "Daily report narratives by source",
		},
		[]string{"source"}, // "model" / "template"
	)
)

var gateMetricsRegistered bool

// RegisterGateMetrics registers the gate, source and report metrics. Must be called once from main.
func RegisterGateMetrics() {
	if gateMetricsRegistered {
		return
	}
	prometheus.MustRegister(GateDecisionsTotal)
	prometheus.MustRegister(UsageChargedTotal)
	prometheus.MustRegister(SourceRequestsTotal)
	prometheus.MustRegister(SourceRequestDuration)
	prometheus.MustRegister(OpportunityCacheTotal)
	prometheus.MustRegister(ReportNarrativesTotal)
	gateMetricsRegistered = true
}
