package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession is returned for expired or tampered session tokens.
var ErrInvalidSession = errors.New("invalid session token")

// SessionManager issues and verifies HMAC-signed session JWTs after a
// successful shared-secret login. The subject claim carries the display
// name shown on confirmation documents.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionManager builds a manager. An empty secret disables sessions;
// callers must refuse to start in that case.
func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a session token for the authenticated user.
func (m *SessionManager) Issue(user string) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("auth: session secret not configured")
	}
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   user,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks the token and returns the display name it was issued for.
func (m *SessionManager) Verify(tokenString string) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrInvalidSession
	}
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}
