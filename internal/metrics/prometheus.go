package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalyzeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "manovie_analyze_duration_seconds",
			Help:    "End-to-end analyze request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	AnalyzeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manovie_analyze_total",
			Help: "Total number of analyze requests",
		},
		[]string{"status"},
	)

	ScoringFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manovie_scoring_failures_total",
			Help: "Upstream scoring failures",
		},
		[]string{"provider"},
	)

	EntriesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "manovie_entries_created_total",
			Help: "Sentiment entries persisted",
		},
	)

	ReportRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manovie_report_requests_total",
			Help: "Report requests by kind",
		},
		[]string{"kind"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manovie_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "manovie_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	LoginsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "manovie_logins_recorded_total",
			Help: "Login log writes",
		},
	)
)

func Init() {
	prometheus.MustRegister(AnalyzeDuration)
	prometheus.MustRegister(AnalyzeTotal)
	prometheus.MustRegister(ScoringFailures)
	prometheus.MustRegister(EntriesCreated)
	prometheus.MustRegister(ReportRequests)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(LoginsRecorded)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
