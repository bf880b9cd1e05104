package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"caredays/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns the caller's subject
// (the national identifier asserted by the issuer).
type TokenValidator interface {
	ValidateToken(tokenString string) (subject string, err error)
}

// HMACValidator validates HS256 tokens against a shared signing key.
type HMACValidator struct {
	SigningKey []byte
}

func (v HMACValidator) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return v.SigningKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("token is missing the sub claim")
	}
	return subject, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// subject and raw token in the request context for downstream calls.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				unauthorized(w)
				return
			}
			subject, err := validator.ValidateToken(raw)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"correlation_id", requestcontext.CorrelationID(ctx),
					"error", err,
				)
				unauthorized(w)
				return
			}
			ctx = requestcontext.WithSubject(ctx, subject)
			ctx = requestcontext.WithIDToken(ctx, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
}
