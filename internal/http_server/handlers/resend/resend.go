package resend

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"account_service/internal/auth"
	resp "account_service/internal/lib/api/response"
	sl "account_service/internal/lib/logger"
	"account_service/internal/lib/verification"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email string `json:"email" validate:"required,email"`
}

type Response struct {
	Message string `json:"message"`
}

type VerificationChecker interface {
	CheckUserVerification(ctx context.Context, email string) (int64, bool, error)
}

// New re-queues a verification email. Already-verified accounts still get a
// 200 so the endpoint does not leak verification state.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	checker VerificationChecker,
	msgSender verification.Publisher,
	verificationTokenTTL time.Duration,
	verificationTokenSecret string,
	address string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.resend.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Info("Invalid request", sl.Err(err))

			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		userID, isVerified, err := checker.CheckUserVerification(ctx, req.Email)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				log.Info("resend requested for unknown email")

				render.JSON(w, r, Response{Message: "Verification email sent"})

				return
			}

			log.Error("failed to check user verification", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		if !isVerified {
			err = verification.SendVerificationEmail(
				ctx,
				log,
				msgSender,
				verificationTokenTTL,
				verificationTokenSecret,
				userID,
				address,
				req.Email,
			)
			if err != nil {
				log.Error("Failed to queue verification email", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))

				return
			}
		}

		render.JSON(w, r, Response{Message: "Verification email sent"})
	}
}
