package verify

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	resp "account_service/internal/lib/api/response"
	sl "account_service/internal/lib/logger"
	"account_service/internal/lib/verification"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	Message string `json:"message"`
}

type EmailVerifier interface {
	MarkEmailVerified(ctx context.Context, userID int64) error
}

func New(
	log *slog.Logger,
	verifier EmailVerifier,
	tokenSecret string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.verify.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token := r.URL.Query().Get("token")
		if token == "" {
			log.Warn("missing verification token")

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("missing token"))

			return
		}

		userID, err := verification.ParseVerificationToken(token, tokenSecret)
		if err != nil {
			log.Warn("invalid verification token", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("invalid or expired token"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := verifier.MarkEmailVerified(ctx, userID); err != nil {
			log.Error("failed to mark user as verified", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("email verified successfully", slog.Int64("uid", userID))

		render.JSON(w, r, Response{Message: "Email verified"})
	}
}
