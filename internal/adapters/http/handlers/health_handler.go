package handlers

import (
	"time"

	"libris-backend/internal/config"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler handles liveness and readiness endpoints
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns API status
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "libris-backend",
		"status":  "running",
		"message": "📚 Libris API v1.0 is running",
		"mode":    config.AppConfig.AppMode,
		"docs":    "/swagger/index.html",
	})
}

// HealthCheck handles health check
// @Summary Health check
// @Description Check API and database health
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "healthy"
	if err := config.HealthCheck(); err != nil {
		status = "degraded"
		dbStatus = "unhealthy"
	}

	body := fiber.Map{
		"status":         status,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"checks": fiber.Map{
			"api":      "healthy",
			"database": dbStatus,
		},
	}

	if status != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(body)
	}
	return c.JSON(body)
}

// APIInfo handles API v1 info
// @Summary API v1 Info
// @Description Returns API v1 information
// @Tags Health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
func (h *HealthHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Libris API v1.0",
		"version": "1.0.0",
		"resources": []string{
			"/auth", "/users", "/books", "/copies", "/loans", "/companies",
		},
	})
}
