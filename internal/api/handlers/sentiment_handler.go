package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/manovie/backend/internal/analysis"
	"github.com/manovie/backend/internal/analytics"
	"github.com/manovie/backend/internal/api/response"
	"github.com/manovie/backend/internal/middleware/auth"
	"github.com/manovie/backend/pkg/logger"
)

type SentimentHandler struct {
	service *analysis.Service
	engine  *analytics.Engine
}

func NewSentimentHandler(service *analysis.Service, engine *analytics.Engine) *SentimentHandler {
	return &SentimentHandler{
		service: service,
		engine:  engine,
	}
}

func (h *SentimentHandler) Analyze(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}

	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	result, err := h.service.Analyze(c.Context(), auth.UserID(c), req.Text)
	if err != nil {
		var scoringErr *analysis.ScoringError
		switch {
		case errors.Is(err, analysis.ErrEmptyText):
			return response.Error(c, fiber.StatusBadRequest, "Text is required")
		case errors.As(err, &scoringErr):
			logger.Error("Scoring dependency failed", zap.Error(err))
			return response.Error(c, fiber.StatusBadGateway, "Failed to analyze text")
		default:
			logger.Error("Analyze failed", zap.Error(err))
			return response.Error(c, fiber.StatusInternalServerError, "Failed to analyze text")
		}
	}

	return response.OK(c, fiber.StatusOK, result, "Analysis successful")
}

func (h *SentimentHandler) Trends(c *fiber.Ctx) error {
	rng := c.Query("range", "week")

	buckets, err := h.engine.Trends(c.Context(), auth.UserID(c), rng)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidRange) {
			return response.Error(c, fiber.StatusBadRequest, err.Error())
		}
		logger.Error("Failed to compute trends", zap.Error(err))
		return response.Error(c, fiber.StatusInternalServerError, "Failed to retrieve trends")
	}

	return response.OK(c, fiber.StatusOK, buckets, "Sentiment trends retrieved for "+rng)
}

func (h *SentimentHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.engine.Summary(c.Context(), auth.UserID(c))
	if err != nil {
		logger.Error("Failed to compute mood summary", zap.Error(err))
		return response.Error(c, fiber.StatusInternalServerError, "Failed to retrieve mood summary")
	}

	if summary == nil {
		return response.OK(c, fiber.StatusOK, nil, "No sentiment data found")
	}

	return response.OK(c, fiber.StatusOK, summary, "Mood summary retrieved")
}

func (h *SentimentHandler) Total(c *fiber.Ctx) error {
	total, err := h.engine.TotalJournals(c.Context(), auth.UserID(c))
	if err != nil {
		logger.Error("Failed to count journals", zap.Error(err))
		return response.Error(c, fiber.StatusInternalServerError, "Failed to retrieve journal count")
	}

	return response.OK(c, fiber.StatusOK, fiber.Map{"totalJournals": total}, "Journal count retrieved")
}

func (h *SentimentHandler) History(c *fiber.Ctx) error {
	rng := c.Query("range", "week")

	entries, err := h.engine.History(c.Context(), auth.UserID(c), rng)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidRange) {
			return response.Error(c, fiber.StatusBadRequest, err.Error())
		}
		logger.Error("Failed to load history", zap.Error(err))
		return response.Error(c, fiber.StatusInternalServerError, "Failed to retrieve history")
	}

	return response.OK(c, fiber.StatusOK, entries, "User sentiment history retrieved")
}

func (h *SentimentHandler) WeeklyStability(c *fiber.Ctx) error {
	result, err := h.engine.WeeklyStability(c.Context(), auth.UserID(c))
	if err != nil {
		logger.Error("Failed to compute weekly stability", zap.Error(err))
		return response.Error(c, fiber.StatusInternalServerError, "Failed to retrieve weekly stability")
	}

	return response.OK(c, fiber.StatusOK, result, "Weekly stability retrieved")
}
