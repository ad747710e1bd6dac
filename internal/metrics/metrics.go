package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	IsochroneRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orspost_isochrone_requests_total",
		Help: "Isochrone requests by provenance (cache, external, geometric) or failed",
	}, []string{"from"})
	IsochroneDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orspost_isochrone_duration_ms",
		Help:    "Isochrone request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orspost_cache_hits_total",
		Help: "Total isochrone cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orspost_cache_misses_total",
		Help: "Total isochrone cache misses",
	})
	CacheWritesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orspost_cache_writes_total",
		Help: "Total isochrone cache upserts",
	})
	RedisErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orspost_redis_errors_total",
		Help: "Total redis tier errors (request falls through to postgres)",
	})
	ORSRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orspost_ors_requests_total",
		Help: "Total openrouteservice isochrone requests",
	})
	ORSFailTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orspost_ors_fail_total",
		Help: "Total openrouteservice isochrone failures",
	})
	ORSDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orspost_ors_duration_ms",
		Help:    "openrouteservice call duration in milliseconds",
		Buckets: []float64{50, 100, 200, 500, 1000, 2000, 5000, 10000},
	})
	InsightRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orspost_insight_requests_total",
		Help: "Insight requests by outcome (ok, no_isochrone, failed)",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(IsochroneRequestsTotal)
	prometheus.MustRegister(IsochroneDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(CacheWritesTotal)
	prometheus.MustRegister(RedisErrorsTotal)
	prometheus.MustRegister(ORSRequestsTotal)
	prometheus.MustRegister(ORSFailTotal)
	prometheus.MustRegister(ORSDurationMs)
	prometheus.MustRegister(InsightRequestsTotal)
}

// Handler 暴露已注册指标，供 /metrics 挂载
func Handler() http.Handler { return promhttp.Handler() }
