// Package metrics registers the Prometheus collectors shared by the
// pipeline stages and the serve-mode HTTP surface.
package metrics

import (
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors holds every Prometheus collector for the analyzer.
var Collectors = struct {
	ClassificationsTotal *prometheus.CounterVec
	GPTCalls             prometheus.Counter
	GPTCacheHits         prometheus.Counter
	GPTCacheMisses       prometheus.Counter
	YouTubeRequests      prometheus.Counter
	StageDuration        *prometheus.HistogramVec
	RequestDuration      *prometheus.HistogramVec
	RequestsInFlight     prometheus.Gauge
	DBPoolActive         prometheus.GaugeFunc
	DBPoolIdle           prometheus.GaugeFunc
}{}

var initOnce sync.Once

// Init registers all collectors. Safe to call more than once; only the
// first call registers.
func Init(pool *pgxpool.Pool) {
	initOnce.Do(func() { register(pool) })
}

func register(pool *pgxpool.Pool) {
	Collectors.ClassificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyzer_classifications_total",
			Help: "Videos classified, by method.",
		},
		[]string{"method"},
	)

	Collectors.GPTCalls = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analyzer_gpt_calls_total",
			Help: "Chat completion requests actually sent to the AI classifier.",
		},
	)

	Collectors.GPTCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analyzer_gpt_cache_hits_total",
			Help: "AI classifier responses served from cache.",
		},
	)

	Collectors.GPTCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analyzer_gpt_cache_misses_total",
			Help: "AI classifier cache misses.",
		},
	)

	Collectors.YouTubeRequests = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analyzer_youtube_requests_total",
			Help: "Requests sent to the YouTube Data API.",
		},
	)

	Collectors.StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analyzer_stage_duration_seconds",
			Help:    "Duration of pipeline stages.",
			Buckets: prometheus.ExponentialBuckets(0.1, 4, 10),
		},
		[]string{"stage"},
	)

	Collectors.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analyzer_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Collectors.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "analyzer_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	prometheus.MustRegister(
		Collectors.ClassificationsTotal,
		Collectors.GPTCalls,
		Collectors.GPTCacheHits,
		Collectors.GPTCacheMisses,
		Collectors.YouTubeRequests,
		Collectors.StageDuration,
		Collectors.RequestDuration,
		Collectors.RequestsInFlight,
	)

	// DB pool gauges read live stats from pgxpool.
	if pool != nil {
		Collectors.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "analyzer_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)
		Collectors.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "analyzer_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)
		prometheus.MustRegister(Collectors.DBPoolActive, Collectors.DBPoolIdle)
	}
}
