package validation

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/manovie/backend/internal/api/response"
)

type Config struct {
	// MaxTextLength caps the journal text accepted by the analyze route.
	MaxTextLength int
}

// Middleware rejects malformed analyze submissions before they reach the
// scoring pipeline: wrong content type, unparseable JSON, oversized or
// NUL-polluted text.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxTextLength == 0 {
		cfg.MaxTextLength = 10000
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		contentType := c.Get(fiber.HeaderContentType)
		if !strings.Contains(contentType, fiber.MIMEApplicationJSON) {
			return response.Error(c, fiber.StatusUnsupportedMediaType, "Unsupported content type")
		}

		if !strings.HasSuffix(c.Path(), "/analyze") {
			return c.Next()
		}

		var req struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&req); err != nil {
			return response.Error(c, fiber.StatusBadRequest, "Invalid JSON format")
		}

		if len(req.Text) > cfg.MaxTextLength {
			return response.Error(c, fiber.StatusBadRequest, "Text exceeds maximum length")
		}

		if strings.ContainsRune(req.Text, '\x00') {
			return response.Error(c, fiber.StatusBadRequest, "Invalid text content")
		}

		return c.Next()
	}
}
