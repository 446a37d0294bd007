package countries

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"account_service/internal/catalog"
	resp "account_service/internal/lib/api/response"
	sl "account_service/internal/lib/logger"
	"account_service/internal/models"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Provider interface {
	Countries(ctx context.Context) ([]models.Country, error)
	LanguagesForCountry(ctx context.Context, countryID int64) ([]models.Language, error)
}

// List serves GET /api/countries: every country, no pagination.
func List(log *slog.Logger, provider Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.countries.List"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		countries, err := provider.Countries(r.Context())
		if err != nil {
			log.Error("failed to list countries", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, countries)
	}
}

// Languages serves GET /api/countries/{id}/languages.
func Languages(log *slog.Logger, provider Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.countries.Languages"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		countryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Country not found"})

			return
		}

		languages, err := provider.LanguagesForCountry(r.Context(), countryID)
		if err != nil {
			if errors.Is(err, catalog.ErrCountryNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, map[string]string{"error": "Country not found"})

				return
			}

			log.Error("failed to list languages", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		render.JSON(w, r, languages)
	}
}
