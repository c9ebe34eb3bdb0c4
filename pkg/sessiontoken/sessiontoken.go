package sessiontoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/annaimjamhari/aircond-crm-app/pkg/config"
	"github.com/golang-jwt/jwt/v4"
)

// SessionClaims are the signed claims carried by a session cookie.
// The session id must still resolve in the server-side session store;
// the signature alone does not authenticate a request.
type SessionClaims struct {
	SessionID string `json:"session_id"`
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

var cfg *config.SessionConfig

// Initialize sets the session token configuration
func Initialize(sessionConfig *config.SessionConfig) {
	cfg = sessionConfig
}

// Generate creates a signed session token bound to the given session record
func Generate(sessionID string, userID uint, username string, expiresAt time.Time) (string, error) {
	if cfg == nil {
		return "", errors.New("session token configuration not provided")
	}

	claims := SessionClaims{
		SessionID: sessionID,
		UserID:    userID,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.SigningKey))
}

func keyFunc(token *jwt.Token) (interface{}, error) {
	// Validate the signing method
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return []byte(cfg.SigningKey), nil
}

// Validate verifies the token signature and expiry and returns its claims
func Validate(tokenString string) (*SessionClaims, error) {
	if cfg == nil {
		return nil, errors.New("session token configuration not provided")
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, keyFunc)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// ClaimsIgnoringExpiry verifies the signature only and returns the claims
// even when the token is past its expiry. An expired token must never
// authenticate a request, but it still names the server-side session that
// should be cleaned up.
func ClaimsIgnoringExpiry(tokenString string) (*SessionClaims, error) {
	if cfg == nil {
		return nil, errors.New("session token configuration not provided")
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.ParseWithClaims(tokenString, &SessionClaims{}, keyFunc)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
