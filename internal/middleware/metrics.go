package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by operation.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mealplanner_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})

	// ActiveWebSockets is the number of open plan feed connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mealplanner_active_websockets",
		Help: "Number of active plan feed WebSocket connections",
	})
)

var (
	promOnce    sync.Once
	httpMetrics *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the HTTP request metrics collector. Collectors register
// with the default registry, so only the first call's serviceName is used.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		httpMetrics = fiberprometheus.NewWith(serviceName, "mealplanner", "http")
	})
	return httpMetrics
}

// MetricsMiddleware records request counts and latencies through prom.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
