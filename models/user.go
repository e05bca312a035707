package models

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrEmailTaken is returned when registering an email that already has an account.
var ErrEmailTaken = errors.New("email already registered")

// ValidationError marks a rejection of user input, as opposed to a fault
// talking to the database.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// User represents the users table schema
type User struct {
	ID                  string    `json:"id"`
	Email               string    `json:"email"`
	Password            string    `json:"-"`
	DisplayName         string    `json:"display_name"`
	Avatar              string    `json:"avatar,omitempty"`
	RefreshTokenVersion uint      `json:"-"`
	CreatedAt           time.Time `json:"created_at"`
}

// ValidateEmail performs a minimal sanity check on an email address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return ValidationError("invalid email address")
	}
	return nil
}

// ValidatePassword enforces the password policy: at least 8 characters
// containing at least one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ValidationError("password must be at least 8 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ValidationError("password must contain at least one letter and one digit")
	}
	return nil
}

// CreateUser registers a new user with a bcrypt-hashed password.
func CreateUser(email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	existing, err := FindUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:          uuid.NewString(),
		Email:       email,
		Password:    string(hashed),
		DisplayName: displayNameFromEmail(email),
		CreatedAt:   time.Now(),
	}

	query := `
	INSERT INTO users (id, email, password, display_name, avatar, refresh_token_version, created_at)
	VALUES (?, ?, ?, ?, ?, 0, ?)
	`
	if _, err := db.Exec(query, user.ID, user.Email, user.Password, user.DisplayName, user.Avatar, user.CreatedAt); err != nil {
		return nil, err
	}

	return user, nil
}

// CreateFederatedUser registers an account established through an
// identity provider. No password hash is stored, so password sign-in
// always fails for these accounts.
func CreateFederatedUser(email, displayName, avatar string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if displayName == "" {
		displayName = displayNameFromEmail(email)
	}

	user := &User{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: displayName,
		Avatar:      avatar,
		CreatedAt:   time.Now(),
	}

	query := `
	INSERT INTO users (id, email, password, display_name, avatar, refresh_token_version, created_at)
	VALUES (?, ?, '', ?, ?, 0, ?)
	`
	if _, err := db.Exec(query, user.ID, user.Email, user.DisplayName, user.Avatar, user.CreatedAt); err != nil {
		return nil, err
	}

	return user, nil
}

// UpsertUserProfile refreshes display name and avatar for an existing user
// without touching created_at, creating the row if it does not exist yet.
// Mirrors the merge-write performed on first federated login.
func UpsertUserProfile(user *User) error {
	query := `
	INSERT INTO users (id, email, password, display_name, avatar, refresh_token_version, created_at)
	VALUES (?, ?, ?, ?, ?, 0, ?)
	ON CONFLICT(id) DO UPDATE SET display_name = excluded.display_name, avatar = excluded.avatar
	`
	_, err := db.Exec(query, user.ID, user.Email, user.Password, user.DisplayName, user.Avatar, time.Now())
	return err
}

// FindUserByEmail retrieves a user by email, or nil when no account exists.
func FindUserByEmail(email string) (*User, error) {
	query := `
	SELECT id, email, password, display_name, avatar, refresh_token_version, created_at
	FROM users
	WHERE email = ?
	`
	return scanUser(db.QueryRow(query, strings.ToLower(strings.TrimSpace(email))))
}

// GetUserByID retrieves a user by id, or nil when not found.
func GetUserByID(id string) (*User, error) {
	query := `
	SELECT id, email, password, display_name, avatar, refresh_token_version, created_at
	FROM users
	WHERE id = ?
	`
	return scanUser(db.QueryRow(query, id))
}

func scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Password, &user.DisplayName, &user.Avatar, &user.RefreshTokenVersion, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CountUsers returns the total number of registered users
func CountUsers() (int64, error) {
	return CountRecords(`SELECT COUNT(*) FROM users`)
}

// ResetUserPassword replaces a user's password after validating the new one.
func ResetUserPassword(email, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := FindUserByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no account for %s", email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = db.Exec(`UPDATE users SET password = ? WHERE id = ?`, string(hashed), user.ID)
	return err
}

// IncrementRefreshTokenVersion bumps the refresh token version, revoking
// all outstanding refresh tokens for the user.
func IncrementRefreshTokenVersion(userID string) error {
	_, err := db.Exec(`UPDATE users SET refresh_token_version = refresh_token_version + 1 WHERE id = ?`, userID)
	return err
}

func displayNameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
