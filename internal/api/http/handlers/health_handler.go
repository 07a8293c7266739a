package handlers

import (
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-scoring-service/internal/service"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	engine      *service.UserService
	mu          *sync.Mutex
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, engine *service.UserService, mu *sync.Mutex) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, engine: engine, mu: mu}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness. The registry lives in memory, so
// readiness amounts to the engine being wired up.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	h.mu.Lock()
	count := h.engine.UserCount()
	h.mu.Unlock()

	return c.JSON(fiber.Map{
		"status": "ready",
		"dependencies": fiber.Map{
			"registry": "ok",
		},
		"users": count,
	})
}
