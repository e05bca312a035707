package handlers

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/Harsh275110/StoreIt/models"
)

func TestMockAuthSignUp(t *testing.T) {
	s := NewMockAuthService("")

	user, err := s.SignUp("demo@example.com", "secret99")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.ID, "mock-"))
	assert.Equal(t, "demo@example.com", user.Email)
	assert.Equal(t, "demo", user.DisplayName)
}

func TestMockAuthSignUpRejectsDuplicates(t *testing.T) {
	s := NewMockAuthService("")

	_, err := s.SignUp("demo@example.com", "secret99")
	require.NoError(t, err)

	_, err = s.SignUp("Demo@Example.com", "other-pw1")
	assert.ErrorIs(t, err, models.ErrEmailTaken, "emails are case insensitive")
}

func TestMockAuthSignUpValidatesInput(t *testing.T) {
	s := NewMockAuthService("")

	var validation models.ValidationError
	_, err := s.SignUp("not-an-email", "secret99")
	assert.ErrorAs(t, err, &validation)

	_, err = s.SignUp("demo@example.com", "weak")
	assert.ErrorAs(t, err, &validation)
}

func TestMockAuthSignInAndAuthenticate(t *testing.T) {
	s := NewMockAuthService("")
	app := fiber.New()

	user, err := s.SignUp("demo@example.com", "secret99")
	require.NoError(t, err)

	c := app.AcquireCtx(&fasthttp.RequestCtx{})
	signedIn, err := s.SignIn(c, "demo@example.com", "secret99")
	require.NoError(t, err)
	assert.Equal(t, user.ID, signedIn.ID)

	// Replay the issued cookie on a fresh request.
	cookie := string(c.Response().Header.PeekCookie("mock_session"))
	require.NotEmpty(t, cookie)
	token := strings.SplitN(strings.SplitN(cookie, ";", 2)[0], "=", 2)[1]

	c2 := app.AcquireCtx(&fasthttp.RequestCtx{})
	c2.Request().Header.SetCookie("mock_session", token)

	userID, err := s.Authenticate(c2)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestMockAuthSignInWrongPassword(t *testing.T) {
	s := NewMockAuthService("")
	app := fiber.New()

	_, err := s.SignUp("demo@example.com", "secret99")
	require.NoError(t, err)

	c := app.AcquireCtx(&fasthttp.RequestCtx{})
	_, err = s.SignIn(c, "demo@example.com", "wrong-pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.SignIn(c, "nobody@example.com", "secret99")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown accounts fail the same way")
}

func TestMockAuthAuthenticateWithoutSession(t *testing.T) {
	s := NewMockAuthService("")
	app := fiber.New()

	c := app.AcquireCtx(&fasthttp.RequestCtx{})
	_, err := s.Authenticate(c)
	assert.Error(t, err)
}

func TestMockAuthFederatedCallbackFabricatesUser(t *testing.T) {
	s := NewMockAuthService("")
	app := fiber.New()

	c := app.AcquireCtx(&fasthttp.RequestCtx{})
	target, err := s.FederatedLoginStart(c)
	require.NoError(t, err)
	assert.Equal(t, "/api/auth/federated/callback", target, "demo mode skips the provider round trip")

	user, err := s.FederatedCallback(c)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.ID, "mock-google-"))
	assert.True(t, strings.HasSuffix(user.Email, "@gmail.com"))
	assert.True(t, strings.HasPrefix(user.DisplayName, "Google User "))

	// The callback opens a usable session.
	cookie := string(c.Response().Header.PeekCookie("mock_session"))
	require.NotEmpty(t, cookie)
	token := strings.SplitN(strings.SplitN(cookie, ";", 2)[0], "=", 2)[1]

	c2 := app.AcquireCtx(&fasthttp.RequestCtx{})
	c2.Request().Header.SetCookie("mock_session", token)

	userID, err := s.Authenticate(c2)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestMockAuthStateSurvivesRestart(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "mock_users.json")
	app := fiber.New()

	s := NewMockAuthService(statePath)
	_, err := s.SignUp("demo@example.com", "secret99")
	require.NoError(t, err)

	reborn := NewMockAuthService(statePath)
	c := app.AcquireCtx(&fasthttp.RequestCtx{})
	user, err := reborn.SignIn(c, "demo@example.com", "secret99")
	require.NoError(t, err)
	assert.Equal(t, "demo@example.com", user.Email, "the password hash round-trips through the state file")
}
