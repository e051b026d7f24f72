package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/snetlabs/social-network/internal/api"
)

type contextKey string

// SubjectKey carries the verified token subject (the canonical username).
const SubjectKey contextKey = "subject"

// Authenticate validates the bearer token on each request and adds its
// subject to the request context.
func Authenticate(authService AuthService, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				return
			}

			subject, err := authService.VerifyToken(headerParts[1])
			if err != nil {
				l.WarnContext(ctx, "Token rejected", slog.Any("error", err))
				switch {
				case errors.Is(err, api.ErrExpiredToken):
					api.ErrorResponse(w, r, http.StatusUnauthorized, api.ErrExpiredToken.Error())
				default:
					api.ErrorResponse(w, r, http.StatusUnauthorized, api.ErrInvalidToken.Error())
				}
				return
			}

			ctx = context.WithValue(ctx, SubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubjectFromContext returns the verified token subject, if present.
func GetSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectKey).(string)
	return subject, ok
}
