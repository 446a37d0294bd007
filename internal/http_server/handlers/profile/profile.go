package profile

import (
	"log/slog"
	"net/http"

	resp "account_service/internal/lib/api/response"
	"account_service/internal/lib/api/userview"
	"account_service/internal/http_server/middleware/authn"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	Message string        `json:"message"`
	Data    userview.User `json:"data"`
}

func New(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profile.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, ok := authn.UserFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("Unauthenticated."))

			return
		}

		log.Info("profile fetched", slog.Int64("uid", user.ID))

		render.JSON(w, r, Response{
			Message: "Profile data fetched",
			Data:    userview.From(user),
		})
	}
}
