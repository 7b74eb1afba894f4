package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/manovie/backend/internal/api/response"
	"github.com/manovie/backend/internal/storage/sqlite"
)

type HealthHandler struct {
	store *sqlite.Client
}

func NewHealthHandler(store *sqlite.Client) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Healthcheck(c *fiber.Ctx) error {
	dbStatus := "connected"
	if err := h.store.Ping(); err != nil {
		dbStatus = "disconnected"
	}

	return response.OK(c, fiber.StatusOK, fiber.Map{
		"status":   "OK",
		"database": dbStatus,
	}, "Server is healthy")
}
