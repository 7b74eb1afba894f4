// Package response shapes every reply into one envelope, success or
// failure, so clients never branch on payload shape. "No data" is a
// success with a null or sentinel data field; error statuses are reserved
// for actual failures.
package response

import "github.com/gofiber/fiber/v2"

type Envelope struct {
	StatusCode int         `json:"statusCode"`
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
}

func OK(c *fiber.Ctx, status int, data interface{}, message string) error {
	return c.Status(status).JSON(Envelope{
		StatusCode: status,
		Success:    true,
		Data:       data,
		Message:    message,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Envelope{
		StatusCode: status,
		Success:    false,
		Message:    message,
	})
}

// ErrorHandler is the app-level fiber error handler; anything escaping a
// handler still leaves in the envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	if e, ok := err.(*fiber.Error); ok {
		status = e.Code
		message = e.Message
	}

	return Error(c, status, message)
}
