// Package authn resolves bearer tokens into request-scoped users.
package authn

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	resp "account_service/internal/lib/api/response"
	sl "account_service/internal/lib/logger"
	"account_service/internal/models"

	"github.com/go-chi/render"
)

type contextKey struct{}

var userKey contextKey

type TokenResolver interface {
	UserByToken(ctx context.Context, rawToken string) (models.User, error)
}

// New returns middleware that requires a valid bearer token and stores the
// resolved user in the request context.
func New(log *slog.Logger, resolver TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.authn.New"

			token, ok := bearerToken(r)
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Unauthenticated."))

				return
			}

			user, err := resolver.UserByToken(r.Context(), token)
			if err != nil {
				log.Info("failed to resolve bearer token", slog.String("op", op), sl.Err(err))

				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Unauthenticated."))

				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")

	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))

	return token, token != ""
}

func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user stored by the middleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}
