package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchRequests counts catalog searches by kind (ingredients, preference).
	SearchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mealplanner_search_requests_total",
		Help: "Total number of catalog searches by kind",
	}, []string{"kind"})

	// PlanMutations counts successful plan writes by operation.
	PlanMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mealplanner_plan_mutations_total",
		Help: "Total number of plan mutations by operation",
	}, []string{"op"})

	// CacheLookups counts catalog cache lookups by result (hit, miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mealplanner_cache_lookups_total",
		Help: "Catalog cache lookups by result",
	}, []string{"result"})

	// DatabaseQueryLatency records repository query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mealplanner_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WebSocketBackpressureDrops counts plan events dropped for slow clients.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mealplanner_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// TrackQuery returns a function that records query latency when called.
//
//	defer observability.TrackQuery("upsert", "meal_plan")()
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
