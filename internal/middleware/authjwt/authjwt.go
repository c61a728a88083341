// Package authjwt guards routes behind a valid access token and exposes the
// decoded claims to downstream handlers.
package authjwt

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	resp "quizserver/internal/lib/api/response"
	"quizserver/internal/lib/jwt"
	"quizserver/internal/models"

	"github.com/go-chi/render"
)

type ctxKey struct{}

// New verifies the Bearer token on every request and stores its claims in the
// request context. Missing, invalid and expired tokens all yield 401, with
// distinguishable error messages.
func New(log *slog.Logger, tm *jwt.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, r, "authorization required")
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				unauthorized(w, r, "invalid authorization header")
				return
			}

			claims, err := tm.ParseToken(token)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					unauthorized(w, r, "token expired")
					return
				}

				unauthorized(w, r, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose claims do not carry the ADMIN role.
// It must run after New.
func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := FromContext(r.Context())
			if !ok || claims.Role != models.RoleAdmin {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error("admin access required"))

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// FromContext returns the access token claims stored by New.
func FromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(ctxKey{}).(*jwt.Claims)
	return claims, ok
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, resp.Error(msg))
}
