package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/manovie/backend/internal/api/response"
	"github.com/manovie/backend/internal/metrics"
	"github.com/manovie/backend/internal/middleware/auth"
	"github.com/manovie/backend/internal/storage/sqlite"
	"github.com/manovie/backend/pkg/logger"
)

type LoginLogHandler struct {
	store *sqlite.Client
}

func NewLoginLogHandler(store *sqlite.Client) *LoginLogHandler {
	return &LoginLogHandler{store: store}
}

// RecordLogin is called by the client once per session start. The write is
// an audit side effect: a storage failure is logged but never surfaced, so
// a broken log table cannot block sign-in.
func (h *LoginLogHandler) RecordLogin(c *fiber.Ctx) error {
	userID := auth.UserID(c)

	ip := c.Get("X-Forwarded-For")
	if ip == "" {
		ip = c.IP()
	}
	userAgent := c.Get(fiber.HeaderUserAgent)

	if err := h.store.RecordLogin(userID, ip, userAgent, "Unknown", time.Now()); err != nil {
		logger.Warn("Failed to record login",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	} else {
		metrics.LoginsRecorded.Inc()
	}

	return response.OK(c, fiber.StatusOK, nil, "Login recorded")
}

func (h *LoginLogHandler) GetLoginLogs(c *fiber.Ctx) error {
	logs, err := h.store.LoginLogs(auth.UserID(c))
	if err != nil {
		logger.Error("Failed to load login logs", zap.Error(err))
		return response.Error(c, fiber.StatusInternalServerError, "Failed to retrieve login logs")
	}

	return response.OK(c, fiber.StatusOK, logs, "Login logs retrieved")
}
