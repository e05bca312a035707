package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/Harsh275110/StoreIt/models"
)

// ErrInvalidCredentials is returned by SignIn for a wrong email or password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrFederatedDisabled is returned when no OAuth provider is configured.
var ErrFederatedDisabled = errors.New("federated sign-in is not configured")

// oauthStateCookie carries the CSRF state between the redirect to the
// provider and its callback.
const oauthStateCookie = "oauth_state"

// AuthService is the authentication capability behind the auth routes.
// The database implementation issues JWT access/refresh cookies; the mock
// implementation keeps a JSON-persisted user registry for demo mode. The
// implementation is selected once at startup.
type AuthService interface {
	// SignUp registers a new account.
	SignUp(email, password string) (*models.User, error)

	// SignIn verifies credentials and attaches session credentials to
	// the response.
	SignIn(c *fiber.Ctx, email, password string) (*models.User, error)

	// SignOut revokes the session and clears its cookies.
	SignOut(c *fiber.Ctx) error

	// Authenticate resolves the requesting user's id from the request,
	// silently rotating expired credentials when possible.
	Authenticate(c *fiber.Ctx) (string, error)

	// FederatedLoginStart begins the identity-provider sign-in flow and
	// returns the URL the client should be redirected to.
	FederatedLoginStart(c *fiber.Ctx) (string, error)

	// FederatedCallback completes the provider flow, creating the account
	// on first sign-in, and attaches session credentials to the response.
	FederatedCallback(c *fiber.Ctx) (*models.User, error)
}

// dbAuthService implements AuthService on the SQLite user table with
// JWT access/refresh cookies. Federated sign-in runs the OAuth
// authorization-code flow when a provider is configured.
type dbAuthService struct {
	oauth       *oauth2.Config
	userInfoURL string
}

// NewDBAuthService creates the database-backed AuthService. OAuth
// settings come from STOREIT_OAUTH_* environment variables; without a
// client id and secret federated sign-in stays disabled.
func NewDBAuthService() AuthService {
	return &dbAuthService{
		oauth:       federatedConfigFromEnv(),
		userInfoURL: envOrDefault("STOREIT_OAUTH_USERINFO_URL", "https://openidconnect.googleapis.com/v1/userinfo"),
	}
}

func federatedConfigFromEnv() *oauth2.Config {
	clientID := os.Getenv("STOREIT_OAUTH_CLIENT_ID")
	clientSecret := os.Getenv("STOREIT_OAUTH_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  os.Getenv("STOREIT_OAUTH_REDIRECT_URL"),
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  envOrDefault("STOREIT_OAUTH_AUTH_URL", "https://accounts.google.com/o/oauth2/auth"),
			TokenURL: envOrDefault("STOREIT_OAUTH_TOKEN_URL", "https://oauth2.googleapis.com/token"),
		},
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func (s *dbAuthService) SignUp(email, password string) (*models.User, error) {
	return models.CreateUser(email, password)
}

func (s *dbAuthService) SignIn(c *fiber.Ctx, email, password string) (*models.User, error) {
	user, err := models.FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	// Merge-write the profile on every sign-in; created_at is never touched.
	if err := models.UpsertUserProfile(user); err != nil {
		return nil, err
	}

	return user, s.issueSession(c, user.ID)
}

func (s *dbAuthService) SignOut(c *fiber.Ctx) error {
	refreshToken := c.Cookies("refresh_token")

	if claims, err := models.ValidateToken(refreshToken); err == nil && claims != nil {
		if err := models.IncrementRefreshTokenVersion(claims.UserID); err != nil {
			return err
		}
	}

	clearAuthCookies(c)
	return nil
}

func (s *dbAuthService) Authenticate(c *fiber.Ctx) (string, error) {
	if accessToken := c.Cookies("access_token"); accessToken != "" {
		claims, err := models.ValidateToken(accessToken)
		if err == nil && claims.TokenType == "access" {
			return claims.UserID, nil
		}
	}

	refreshToken := c.Cookies("refresh_token")
	if refreshToken == "" {
		return "", errors.New("no credentials")
	}

	newAccessToken, userID, err := models.RefreshAccessToken(refreshToken)
	if err != nil {
		return "", err
	}
	newRefreshToken, err := models.GenerateNewRefreshToken(userID)
	if err != nil {
		return "", err
	}

	setAuthCookies(c, newAccessToken, newRefreshToken)
	return userID, nil
}

func (s *dbAuthService) FederatedLoginStart(c *fiber.Ctx) (string, error) {
	if s.oauth == nil {
		return "", ErrFederatedDisabled
	}

	state, err := models.GenerateRandomKey(16)
	if err != nil {
		return "", err
	}
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		MaxAge:   600,
		HTTPOnly: true,
		Secure:   isSecureRequest(c),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return s.oauth.AuthCodeURL(state), nil
}

func (s *dbAuthService) FederatedCallback(c *fiber.Ctx) (*models.User, error) {
	if s.oauth == nil {
		return nil, ErrFederatedDisabled
	}

	state := c.Query("state")
	if state == "" || state != c.Cookies(oauthStateCookie) {
		return nil, errors.New("oauth state mismatch")
	}
	code := c.Query("code")
	if code == "" {
		return nil, errors.New("missing authorization code")
	}

	token, err := s.oauth.Exchange(c.Context(), code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	profile, err := s.fetchProfile(c.Context(), token)
	if err != nil {
		return nil, err
	}

	user, err := models.FindUserByEmail(profile.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = models.CreateFederatedUser(profile.Email, profile.Name, profile.Picture)
		if err != nil {
			return nil, err
		}
	} else {
		if profile.Name != "" {
			user.DisplayName = profile.Name
		}
		if profile.Picture != "" {
			user.Avatar = profile.Picture
		}
		if err := models.UpsertUserProfile(user); err != nil {
			return nil, err
		}
	}

	return user, s.issueSession(c, user.ID)
}

// federatedProfile is the subset of the OpenID userinfo response we use.
type federatedProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *dbAuthService) fetchProfile(ctx context.Context, token *oauth2.Token) (*federatedProfile, error) {
	resp, err := s.oauth.Client(ctx, token).Get(s.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed: %s", resp.Status)
	}

	var profile federatedProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}
	if profile.Email == "" {
		return nil, errors.New("identity provider returned no email")
	}
	return &profile, nil
}

func (s *dbAuthService) issueSession(c *fiber.Ctx, userID string) error {
	accessToken, err := models.CreateAccessToken(userID)
	if err != nil {
		return err
	}
	refreshToken, err := models.GenerateNewRefreshToken(userID)
	if err != nil {
		return err
	}
	setAuthCookies(c, accessToken, refreshToken)
	return nil
}

// isSecureRequest reports whether the request arrived over HTTPS,
// directly or behind a proxy.
func isSecureRequest(c *fiber.Ctx) bool {
	return c.Protocol() == "https" || c.Get("X-Forwarded-Proto") == "https"
}

func setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	// Lax so top-level navigations still send cookies.
	secure := isSecureRequest(c)
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Expires:  time.Now().Add(models.AccessTokenDuration),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Expires:  time.Now().Add(models.RefreshTokenDuration),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}

func clearAuthCookies(c *fiber.Ctx) {
	expiredTime := time.Now().Add(-time.Hour)
	secure := isSecureRequest(c)
	for _, name := range []string{"access_token", "refresh_token", "mock_session"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Expires:  expiredTime,
			HTTPOnly: true,
			Secure:   secure,
			SameSite: fiber.CookieSameSiteLaxMode,
			Path:     "/",
		})
	}
}
