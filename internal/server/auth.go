package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Auth issues and verifies the bearer tokens guarding dataset endpoints.
type Auth struct {
	secret []byte
	ttl    time.Duration
}

// NewAuth creates an Auth with the signing secret and token lifetime.
func NewAuth(secret string, ttl time.Duration) (*Auth, error) {
	if secret == "" {
		return nil, errors.New("server: jwt secret must not be empty")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Auth{secret: []byte(secret), ttl: ttl}, nil
}

// IssueToken mints an HS256 token for the given user.
func (a *Auth) IssueToken(username string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(a.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    "genelink",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expires, nil
}

// VerifyToken validates a token and returns its subject.
func (a *Auth) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("genelink"),
	)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errors.New("invalid token: missing subject")
	}
	return claims.Subject, nil
}

// Middleware rejects requests without a valid Authorization bearer token.
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Missing bearer token", "")
			return
		}
		if _, err := a.VerifyToken(token); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Invalid token", err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
