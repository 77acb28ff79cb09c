package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "salescope"

// SessionCookie names the HTTP-only cookie carrying the session token.
const SessionCookie = "salescope_session"

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims carries the authenticated user through a signed token.
type SessionClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// TokenManager issues and validates HS256 session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// TTL reports the configured token lifetime, used to set cookie expiry.
func (tm *TokenManager) TTL() time.Duration { return tm.ttl }

// Issue creates a signed token whose subject is the user ID.
func (tm *TokenManager) Issue(userID, name string) (string, error) {
	now := time.Now().UTC()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
		Name: name,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a token string and returns its claims when the signature
// and expiry check out.
func (tm *TokenManager) Validate(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return tm.secret, nil
		},
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
