package register

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
	"account_service/internal/lib/verification"
	"account_service/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
	Country              string `json:"country" validate:"required"`
	Language             string `json:"language" validate:"required"`
}

type Response struct {
	User  userview.User `json:"user"`
	Token string        `json:"token"`
}

type UserRegistrar interface {
	Register(ctx context.Context, name, email, password, country, language string) (models.User, string, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	registrar UserRegistrar,
	msgSender verification.Publisher,
	verificationTokenTTL time.Duration,
	verificationTokenSecret string,
	address string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.New"

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

		log.Info("Request body decoded")

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Info("Invalid request", sl.Err(err))

			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, token, err := registrar.Register(ctx, req.Name, req.Email, req.Password, req.Country, req.Language)
		if err != nil {
			if errors.Is(err, auth.ErrEmailTaken) {
				render.Status(r, http.StatusUnprocessableEntity)
				render.JSON(w, r, resp.Field("email", "The email has already been taken."))

				return
			}

			log.Error("failed to register user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Something went wrong while registration"))

			return
		}

		log.Info("User registered", slog.Int64("id", user.ID))

		// Delivery is queued; a broken broker must not fail the registration.
		err = verification.SendVerificationEmail(
			ctx,
			log,
			msgSender,
			verificationTokenTTL,
			verificationTokenSecret,
			user.ID,
			address,
			req.Email,
		)
		if err != nil {
			log.Error("Failed to queue verification email", sl.Err(err))
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			User:  userview.From(user),
			Token: token,
		})
	}
}
