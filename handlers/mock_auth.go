package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Harsh275110/StoreIt/models"
)

// mockSessionDuration is how long a demo session stays valid.
const mockSessionDuration = 24 * time.Hour

// mockAuthState is the JSON-serialized demo registry: registered users
// and their live sessions, the server-side analog of the original demo's
// browser-local storage.
type mockAuthState struct {
	Users    []mockUser        `json:"users"`
	Sessions map[string]string `json:"sessions"` // token -> user id
}

// mockUser mirrors models.User with the password hash serializable,
// which models.User deliberately hides from JSON.
type mockUser struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"hashed_password"`
	DisplayName    string    `json:"display_name"`
	CreatedAt      time.Time `json:"created_at"`
}

// mockAuthService implements AuthService without any external service:
// users live in a JSON state file, sessions are opaque random tokens.
// Demo mode only; not interoperable with the database-backed accounts.
type mockAuthService struct {
	mu        sync.Mutex
	statePath string
	users     map[string]models.User // keyed by email
	sessions  map[string]string      // token -> user id
}

// NewMockAuthService creates the demo AuthService, restoring any previous
// state from statePath. statePath may be empty to disable persistence.
func NewMockAuthService(statePath string) AuthService {
	s := &mockAuthService{
		statePath: statePath,
		users:     make(map[string]models.User),
		sessions:  make(map[string]string),
	}
	s.loadState()
	return s
}

func (s *mockAuthService) SignUp(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := models.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := models.ValidatePassword(password); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[email]; ok {
		return nil, models.ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:          "mock-" + uuid.NewString(),
		Email:       email,
		Password:    string(hashed),
		DisplayName: strings.SplitN(email, "@", 2)[0],
		CreatedAt:   time.Now(),
	}
	s.users[email] = user
	s.saveStateLocked()

	return &user, nil
}

func (s *mockAuthService) SignIn(c *fiber.Ctx, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[email]
	if !ok || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.openSessionLocked(c, user.ID); err != nil {
		return nil, err
	}
	return &user, nil
}

// FederatedLoginStart skips the provider round trip entirely; the
// callback fabricates an identity on its own.
func (s *mockAuthService) FederatedLoginStart(c *fiber.Ctx) (string, error) {
	return "/api/auth/federated/callback", nil
}

// FederatedCallback creates a canned provider identity and signs it in,
// the server-side analog of the original demo's fake Google user.
func (s *mockAuthService) FederatedCallback(c *fiber.Ctx) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := rand.Intn(1000)
	user := models.User{
		ID:          "mock-google-" + uuid.NewString(),
		Email:       fmt.Sprintf("user%d@gmail.com", n),
		DisplayName: fmt.Sprintf("Google User %d", n),
		Avatar:      "https://via.placeholder.com/150",
		CreatedAt:   time.Now(),
	}
	s.users[user.Email] = user

	if err := s.openSessionLocked(c, user.ID); err != nil {
		return nil, err
	}
	return &user, nil
}

// openSessionLocked issues a session token and its cookie. Callers hold
// the mutex.
func (s *mockAuthService) openSessionLocked(c *fiber.Ctx, userID string) error {
	token, err := models.GenerateRandomKey(32)
	if err != nil {
		return err
	}
	s.sessions[token] = userID
	s.saveStateLocked()

	c.Cookie(&fiber.Cookie{
		Name:     "mock_session",
		Value:    token,
		Expires:  time.Now().Add(mockSessionDuration),
		HTTPOnly: true,
		Secure:   isSecureRequest(c),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return nil
}

func (s *mockAuthService) SignOut(c *fiber.Ctx) error {
	token := c.Cookies("mock_session")

	s.mu.Lock()
	delete(s.sessions, token)
	s.saveStateLocked()
	s.mu.Unlock()

	clearAuthCookies(c)
	return nil
}

func (s *mockAuthService) Authenticate(c *fiber.Ctx) (string, error) {
	token := c.Cookies("mock_session")
	if token == "" {
		return "", errors.New("no credentials")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.sessions[token]
	if !ok {
		return "", errors.New("invalid session")
	}
	return userID, nil
}

func (s *mockAuthService) saveStateLocked() {
	if s.statePath == "" {
		return
	}

	state := mockAuthState{Sessions: s.sessions}
	for _, user := range s.users {
		state.Users = append(state.Users, mockUser{
			ID:             user.ID,
			Email:          user.Email,
			HashedPassword: user.Password,
			DisplayName:    user.DisplayName,
			CreatedAt:      user.CreatedAt,
		})
	}

	data, err := json.Marshal(state)
	if err != nil {
		log.Warnf("Failed to encode mock auth state: %v", err)
		return
	}
	if err := os.WriteFile(s.statePath, data, 0600); err != nil {
		log.Warnf("Failed to persist mock auth state: %v", err)
	}
}

func (s *mockAuthService) loadState() {
	if s.statePath == "" {
		return
	}

	data, err := os.ReadFile(s.statePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("Failed to read mock auth state: %v", err)
		}
		return
	}

	var state mockAuthState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Warnf("Failed to decode mock auth state: %v", err)
		return
	}

	for _, user := range state.Users {
		s.users[user.Email] = models.User{
			ID:          user.ID,
			Email:       user.Email,
			Password:    user.HashedPassword,
			DisplayName: user.DisplayName,
			CreatedAt:   user.CreatedAt,
		}
	}
	if state.Sessions != nil {
		s.sessions = state.Sessions
	}
}
