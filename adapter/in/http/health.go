package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports process liveness and knowledge store connectivity.
type HealthHandler struct {
	stats StatsProvider
}

func NewHealthHandler(stats StatsProvider) *HealthHandler {
	return &HealthHandler{stats: stats}
}

func (h *HealthHandler) Register(app *fiber.App) {
	app.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	storeStatus := "unknown"
	if h.stats != nil {
		if stats, err := h.stats.Stats(c.Context()); err == nil {
			storeStatus = stats.Status
		}
	}

	return c.JSON(fiber.Map{
		"status":         "ok",
		"knowledgeStore": storeStatus,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}
