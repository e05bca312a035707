package handlers

import (
	"errors"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/Harsh275110/StoreIt/models"
)

const (
	maxLoginFailures   = 5
	loginFailureWindow = 15 * time.Minute
)

// authService is the authentication strategy selected at startup.
var authService AuthService

// requireCaptcha gates registration behind a solved captcha.
var requireCaptcha bool

// loginFailure tracks failed sign-in attempts per client IP.
type loginFailure struct {
	count    int
	lastSeen time.Time
}

var loginFailures = NewTTLStore[loginFailure](loginFailureWindow, time.Minute, func(f *loginFailure) time.Time {
	return f.lastSeen
})

// AuthFormData represents a credentials submission.
type AuthFormData struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// RegisterUserHandler processes a registration submission.
func RegisterUserHandler(c *fiber.Ctx) error {
	if requireCaptcha && c.Cookies("captcha_solved") != "true" {
		return sendBadRequestError(c, "Please solve the captcha first")
	}

	var form AuthFormData
	if err := c.BodyParser(&form); err != nil {
		return sendBadRequestError(c, ErrBadRequest)
	}

	user, err := authService.SignUp(form.Email, form.Password)
	if err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			return sendConflictError(c, "This email is already registered. Try signing in instead.")
		}
		var validation models.ValidationError
		if errors.As(err, &validation) {
			return sendValidationError(c, validation.Error())
		}
		return sendInternalServerError(c, "Failed to create account. Please try again.", err)
	}

	log.Infof("Registered new user %s", user.Email)
	return c.Status(fiber.StatusCreated).JSON(user)
}

// LoginUserHandler validates credentials and establishes a session.
func LoginUserHandler(c *fiber.Ctx) error {
	ip := c.IP()
	if failures, ok := loginFailures.Get(ip); ok && failures.count >= maxLoginFailures {
		return sendRateLimitedError(c, "Too many failed login attempts. Please try again later.")
	}

	var form AuthFormData
	if err := c.BodyParser(&form); err != nil {
		return sendBadRequestError(c, ErrBadRequest)
	}

	user, err := authService.SignIn(c, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			recordLoginFailure(ip)
			return sendUnauthorizedError(c, "Invalid email or password")
		}
		return sendInternalServerError(c, "Failed to sign in. Please try again.", err)
	}

	loginFailures.Delete(ip)
	return c.JSON(user)
}

// FederatedLoginHandler starts the identity-provider sign-in flow.
func FederatedLoginHandler(c *fiber.Ctx) error {
	target, err := authService.FederatedLoginStart(c)
	if err != nil {
		if errors.Is(err, ErrFederatedDisabled) {
			return sendValidationError(c, "Federated sign-in is not configured")
		}
		return sendInternalServerError(c, "Failed to start federated sign-in", err)
	}
	return c.Redirect(target, fiber.StatusSeeOther)
}

// FederatedCallbackHandler completes the provider flow and opens a
// session. This is a browser navigation, so failures land back on the
// login page instead of a JSON error.
func FederatedCallbackHandler(c *fiber.Ctx) error {
	user, err := authService.FederatedCallback(c)
	if err != nil {
		log.Warnf("Federated sign-in failed: %v", err)
		return c.Redirect("/login?error=federated", fiber.StatusSeeOther)
	}

	log.Infof("Federated sign-in for %s", user.Email)
	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

// LogoutHandler revokes the session and clears its cookies.
func LogoutHandler(c *fiber.Ctx) error {
	if err := authService.SignOut(c); err != nil {
		return sendInternalServerError(c, "Failed to sign out. Please try again.", err)
	}
	return c.JSON(fiber.Map{"message": "Signed out successfully"})
}

func recordLoginFailure(ip string) {
	failures := loginFailures.GetOrCreate(ip, func() *loginFailure { return &loginFailure{} })
	failures.count++
	failures.lastSeen = time.Now()
}
