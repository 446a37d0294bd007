// Package weblogin implements the cookie-session variant of login served
// outside the /api prefix. It issues no bearer token; the session lives in
// Redis behind an HttpOnly cookie.
package weblogin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"account_service/internal/auth"
	resp "account_service/internal/lib/api/response"
	sl "account_service/internal/lib/logger"
	"account_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const cookieName = "account_session"

type Request struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type Response struct {
	Message string `json:"message"`
}

type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, email, password string) (models.User, error)
}

type SessionStore interface {
	SaveSession(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	verifier PasswordVerifier,
	sessions SessionStore,
	sessionTTL time.Duration,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.weblogin.New"

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

		user, err := verifier.VerifyPassword(ctx, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, Response{Message: "Mismatch email and password!"})

				return
			}

			log.Error("failed to verify credentials", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		// Fresh session id on every login.
		sessionID := uuid.NewString()

		if err := sessions.SaveSession(ctx, sessionID, user.ID, sessionTTL); err != nil {
			log.Error("failed to save session", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    sessionID,
			Path:     "/",
			MaxAge:   int(sessionTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		log.Info("web session created", slog.Int64("uid", user.ID))

		render.JSON(w, r, Response{Message: "Successful login!"})
	}
}
