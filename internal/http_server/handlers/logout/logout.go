package logout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"account_service/internal/auth"
	resp "account_service/internal/lib/api/response"
	"account_service/internal/lib/api/userview"
	sl "account_service/internal/lib/logger"
	"account_service/internal/http_server/middleware/authn"
	"account_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	Message string        `json:"message"`
	Data    userview.User `json:"data"`
}

type TokenRevoker interface {
	Logout(ctx context.Context, userID int64) (models.User, error)
}

// New revokes every token of the authenticated caller, not just the one
// presented on this request.
func New(
	log *slog.Logger,
	revoker TokenRevoker,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logout.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		current, ok := authn.UserFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("Unauthenticated."))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := revoker.Logout(ctx, current.ID)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("User not found"))

				return
			}

			log.Error("failed to logout user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("user logged out successfully", slog.Int64("uid", user.ID))

		render.JSON(w, r, Response{
			Message: "Logged out successfully",
			Data:    userview.From(user),
		})
	}
}
