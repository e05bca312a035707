package handlers

import (
	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// Common error messages
const (
	ErrBadRequest          = "Invalid request"
	ErrInternalServerError = "Something went wrong. Please try again."
	ErrUnauthorized        = "You must be logged in to do that"
	ErrFetchFailed         = "Error fetching files and folders"
)

// Every handler resolves to a terminal JSON response so the UI can stop
// its spinner; the "status" field drives toast severity client-side.

func sendError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":  message,
		"status": "error",
	})
}

func sendInternalServerError(c *fiber.Ctx, message string, err error) error {
	log.Errorf("Internal error: %v", err)
	return sendError(c, message)
}

func sendValidationError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error":  message,
		"status": "warning",
	})
}

func sendBadRequestError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  message,
		"status": "warning",
	})
}

func sendUnauthorizedError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":  message,
		"status": "destructive",
	})
}

func sendNotFoundError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error":  message,
		"status": "warning",
	})
}

func sendConflictError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{
		"error":  message,
		"status": "warning",
	})
}

func sendRateLimitedError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error":  message,
		"status": "destructive",
	})
}
