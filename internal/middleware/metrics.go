package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
)

// InitMetrics creates the HTTP request collectors for serviceName.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware records request count and latency, skipping the scrape
// endpoint and health probes.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Path() {
		case "/metrics", "/health/live", "/health/ready":
			return c.Next()
		}
		return prom.Middleware(c)
	}
}
