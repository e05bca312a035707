package handlers

import (
	"github.com/dchest/captcha"
	fiber "github.com/gofiber/fiber/v2"
)

// CaptchaFormData represents form data for captcha verification
type CaptchaFormData struct {
	ID     string `json:"id" form:"id"`
	Answer string `json:"answer" form:"answer"`
}

// HandleCaptchaPage serves the captcha verification page
func HandleCaptchaPage(c *fiber.Ctx) error {
	errorMsg := ""
	if c.Query("error") == "invalid" {
		errorMsg = "Invalid captcha. Please try again."
	}

	return c.Render("captcha", fiber.Map{
		"Title":     "Verify you are human",
		"CaptchaID": captcha.NewLen(6),
		"Error":     errorMsg,
	})
}

// HandleCaptchaImage serves captcha images
func HandleCaptchaImage(c *fiber.Ctx) error {
	c.Type("png")
	captcha.WriteImage(c.Response().BodyWriter(), c.Params("id"), 240, 80)
	return nil
}

// HandleCaptchaNew generates a new captcha ID
func HandleCaptchaNew(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"captcha_id": captcha.NewLen(6)})
}

// HandleCaptchaVerify verifies captcha answers
func HandleCaptchaVerify(c *fiber.Ctx) error {
	var formData CaptchaFormData
	if err := c.BodyParser(&formData); err != nil {
		return sendBadRequestError(c, ErrBadRequest)
	}

	if captcha.VerifyString(formData.ID, formData.Answer) {
		c.Cookie(&fiber.Cookie{
			Name:     "captcha_solved",
			Value:    "true",
			MaxAge:   3600, // 1 hour
			HTTPOnly: true,
			Secure:   isSecureRequest(c),
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		redirectURL := c.Cookies("captcha_redirect")
		if redirectURL == "" {
			redirectURL = "/register"
		}
		return c.Redirect(redirectURL, fiber.StatusSeeOther)
	}
	return c.Redirect("/captcha?error=invalid", fiber.StatusSeeOther)
}
