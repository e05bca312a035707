package models

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// AccessTokenDuration is how long an access token stays valid.
	AccessTokenDuration = 15 * time.Minute
	// RefreshTokenDuration is how long a refresh token stays valid.
	RefreshTokenDuration = 7 * 24 * time.Hour
)

// TokenClaims defines the JWT claims carried by access and refresh tokens.
type TokenClaims struct {
	UserID              string `json:"user_id"`
	TokenType           string `json:"token_type"`
	RefreshTokenVersion uint   `json:"refresh_token_version,omitempty"`
	jwt.RegisteredClaims
}

// GenerateRandomKey creates a new random key of the specified length
func GenerateRandomKey(length int) (string, error) {
	key := make([]byte, length)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// EnsureSigningKey loads the persisted JWT signing key, generating and
// storing one on first run.
func EnsureSigningKey() (string, error) {
	var key string
	err := db.QueryRow(`SELECT value FROM app_keys WHERE name = 'jwt_key'`).Scan(&key)
	if err == nil {
		return key, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	key, err = GenerateRandomKey(32)
	if err != nil {
		return "", err
	}
	if _, err := db.Exec(`INSERT INTO app_keys (name, value) VALUES ('jwt_key', ?)`, key); err != nil {
		return "", err
	}
	return key, nil
}

func signingKey() ([]byte, error) {
	key, err := EnsureSigningKey()
	if err != nil {
		return nil, errors.New("failed to get signing key")
	}
	return []byte(key), nil
}

// CreateAccessToken generates a new access token for a user id.
func CreateAccessToken(userID string) (string, error) {
	secret, err := signingKey()
	if err != nil {
		return "", err
	}
	claims := &TokenClaims{
		UserID:    userID,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(AccessTokenDuration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// GenerateNewRefreshToken creates a refresh token pinned to the user's
// current refresh token version. Bumping the version invalidates it.
func GenerateNewRefreshToken(userID string) (string, error) {
	user, err := GetUserByID(userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", errors.New("user not found")
	}

	secret, err := signingKey()
	if err != nil {
		return "", err
	}
	claims := &TokenClaims{
		UserID:              userID,
		TokenType:           "refresh",
		RefreshTokenVersion: user.RefreshTokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(RefreshTokenDuration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates a token, returning its claims.
func ValidateToken(tokenString string) (*TokenClaims, error) {
	secret, err := signingKey()
	if err != nil {
		return nil, err
	}

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token expired")
		}
		return nil, errors.New("token invalid")
	}
	if !token.Valid {
		return nil, errors.New("token invalid")
	}
	return claims, nil
}

// RefreshAccessToken validates a refresh token against the user's current
// refresh token version and issues a new access token.
func RefreshAccessToken(refreshToken string) (string, string, error) {
	claims, err := ValidateToken(refreshToken)
	if err != nil {
		return "", "", err
	}
	if claims.TokenType != "refresh" {
		return "", "", errors.New("not a refresh token")
	}

	user, err := GetUserByID(claims.UserID)
	if err != nil {
		return "", "", err
	}
	if user == nil {
		return "", "", errors.New("user not found")
	}
	if claims.RefreshTokenVersion != user.RefreshTokenVersion {
		return "", "", errors.New("refresh token revoked")
	}

	accessToken, err := CreateAccessToken(user.ID)
	if err != nil {
		return "", "", err
	}
	return accessToken, user.ID, nil
}
