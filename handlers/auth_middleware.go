package handlers

import (
	fiber "github.com/gofiber/fiber/v2"
)

// RequireAuth resolves the requesting user and stores the id in Locals.
// API routes answer 401 when no valid session exists.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := authService.Authenticate(c)
		if err != nil {
			return sendUnauthorizedError(c, ErrUnauthorized)
		}
		c.Locals("user_id", userID)
		return c.Next()
	}
}

// RequireAuthPage is the page-route variant: unauthenticated visitors are
// redirected to the login page instead of getting a JSON error.
func RequireAuthPage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := authService.Authenticate(c)
		if err != nil {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		c.Locals("user_id", userID)
		return c.Next()
	}
}

// currentUserID returns the authenticated user id stored by RequireAuth.
func currentUserID(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}
