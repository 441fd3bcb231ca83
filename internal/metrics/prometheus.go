package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "math_tutor_solve_duration_seconds",
			Help:    "Question solving duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"route"},
	)

	SolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "math_tutor_solve_total",
			Help: "Total number of questions solved",
		},
		[]string{"route"},
	)

	AdapterAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "math_tutor_adapter_attempts_total",
			Help: "Adapter attempts by outcome",
		},
		[]string{"adapter", "outcome"},
	)

	ConfidenceScore = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "math_tutor_confidence_score",
			Help:    "Answer confidence scores",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
		[]string{"route"},
	)

	FeedbackRating = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "math_tutor_feedback_rating",
			Help:    "User feedback ratings",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
		[]string{"topic"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "math_tutor_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "math_tutor_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	GuardRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "math_tutor_guard_rejections_total",
			Help: "Questions rejected by the content guard",
		},
		[]string{"reason"},
	)

	KBRecordsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "math_tutor_kb_records_total",
			Help: "Records loaded in the knowledge base",
		},
	)

	ProblemsIngested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "math_tutor_problems_ingested_total",
			Help: "Problems embedded into the vector store",
		},
	)
)

func Init() {
	prometheus.MustRegister(SolveDuration)
	prometheus.MustRegister(SolveTotal)
	prometheus.MustRegister(AdapterAttempts)
	prometheus.MustRegister(ConfidenceScore)
	prometheus.MustRegister(FeedbackRating)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(GuardRejections)
	prometheus.MustRegister(KBRecordsTotal)
	prometheus.MustRegister(ProblemsIngested)
}

func RecordSolve(route string, duration time.Duration) {
	SolveTotal.WithLabelValues(route).Inc()
	SolveDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func RecordConfidence(route string, confidence float64) {
	ConfidenceScore.WithLabelValues(route).Observe(confidence)
}

func RecordAdapterAttempt(adapter, outcome string) {
	AdapterAttempts.WithLabelValues(adapter, outcome).Inc()
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
