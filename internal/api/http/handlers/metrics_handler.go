package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nikobathrooms/niko-auth-gateway/internal/observability"
)

// MetricsHandler exposes the in-memory counters for operators.
type MetricsHandler struct {
	metrics *observability.Metrics
}

// NewMetricsHandler constructs handler.
func NewMetricsHandler(metrics *observability.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Counters handles GET /metrics.
func (h *MetricsHandler) Counters(c *fiber.Ctx) error {
	requests, errors := h.metrics.Snapshot()
	return c.JSON(fiber.Map{
		"requests": requests,
		"errors":   errors,
	})
}
