package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gitanomongolomon/gmm-site/internal/api/dto"
	"github.com/gitanomongolomon/gmm-site/internal/telemetry"
)

// TelemetryHandler serves the server status widget.
type TelemetryHandler struct {
	monitor *telemetry.Monitor
}

// NewTelemetryHandler constructs handler.
func NewTelemetryHandler(monitor *telemetry.Monitor) *TelemetryHandler {
	return &TelemetryHandler{monitor: monitor}
}

// Status GET /api/telemetry.
func (h *TelemetryHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.NewTelemetryResponse(h.monitor.Current(c.UserContext()))})
}
