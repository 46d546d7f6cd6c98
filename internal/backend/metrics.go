package backend

import "github.com/prometheus/client_golang/prometheus"

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paperd",
			Subsystem: "backend",
			Name:      "generations_total",
			Help:      "Total number of generation calls by outcome",
		},
		[]string{"backend", "outcome"},
	)

	generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "paperd",
			Subsystem: "backend",
			Name:      "generation_duration_seconds",
			Help:      "Duration of generation calls in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"backend"},
	)

	modelLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "paperd",
			Subsystem: "backend",
			Name:      "model_loads_total",
			Help:      "Total number of backend constructions by outcome",
		},
		[]string{"backend", "outcome"},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "paperd",
			Subsystem: "backend",
			Name:      "queue_depth",
			Help:      "Generation requests waiting or in flight on the model handle",
		},
	)
)

func init() {
	prometheus.MustRegister(generationsTotal, generationDuration, modelLoadsTotal, queueDepth)
}

// outcomeLabel maps an error onto a low-cardinality label value.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsBusy(err):
		return "busy"
	case IsModelUnavailable(err):
		return "unavailable"
	default:
		return "error"
	}
}
