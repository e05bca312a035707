package handlers

import (
	fiber "github.com/gofiber/fiber/v2"
)

// HandleRoot sends visitors to the dashboard when signed in, otherwise to
// the login page.
func HandleRoot(c *fiber.Ctx) error {
	if _, err := authService.Authenticate(c); err == nil {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	return c.Redirect("/login", fiber.StatusSeeOther)
}

// HandleLoginPage serves the sign-in page
func HandleLoginPage(c *fiber.Ctx) error {
	if _, err := authService.Authenticate(c); err == nil {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	return c.Render("login", fiber.Map{
		"Title": "Sign in",
	})
}

// HandleRegisterPage serves the sign-up page
func HandleRegisterPage(c *fiber.Ctx) error {
	if _, err := authService.Authenticate(c); err == nil {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	if requireCaptcha && c.Cookies("captcha_solved") != "true" {
		c.Cookie(&fiber.Cookie{
			Name:     "captcha_redirect",
			Value:    "/register",
			MaxAge:   3600,
			HTTPOnly: true,
			Secure:   isSecureRequest(c),
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.Redirect("/captcha", fiber.StatusSeeOther)
	}
	return c.Render("register", fiber.Map{
		"Title": "Create account",
	})
}

// HandleDashboardPage serves the file browser shell. The browser state
// itself is fetched by the page through the JSON API.
func HandleDashboardPage(c *fiber.Ctx) error {
	return c.Render("dashboard", fiber.Map{
		"Title":  "My files",
		"UserID": currentUserID(c),
	})
}

// HandleNotFound serves a plain 404 for unmatched routes.
func HandleNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).SendString("Not Found")
}
