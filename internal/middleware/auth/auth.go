// Package auth verifies the bearer token minted by the identity service
// and injects the user id every downstream query is scoped by. Token
// issuance and refresh live outside this backend.
package auth

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/manovie/backend/internal/api/response"
	"github.com/manovie/backend/pkg/logger"
)

const userIDKey = "userID"

type Config struct {
	JWTSecret string
}

func Middleware(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return response.Error(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		userID, err := verify(token, cfg.JWTSecret)
		if err != nil {
			logger.Debug("Token verification failed", zap.Error(err))
			return response.Error(c, fiber.StatusUnauthorized, "Invalid access token")
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user id injected by Middleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

func extractToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	// The web client may carry the token in a cookie instead.
	return c.Cookies("accessToken")
}

func verify(tokenStr, secret string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type")
	}

	for _, key := range []string{"sub", "_id", "id"} {
		if id, ok := claims[key].(string); ok && id != "" {
			return id, nil
		}
	}

	return "", fmt.Errorf("token carries no user id")
}
