// Package catalog serves the static country→language reference data.
// Read-only: the tables are populated at deploy time and never mutated here.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sl "account_service/internal/lib/logger"
	"account_service/internal/models"
	"account_service/internal/storage"
)

var ErrCountryNotFound = errors.New("country not found")

type Catalog struct {
	log      *slog.Logger
	provider Provider
}

type Provider interface {
	Countries(ctx context.Context) ([]models.Country, error)
	CountryByID(ctx context.Context, id int64) (models.Country, error)
	LanguagesForCountry(ctx context.Context, countryID int64) ([]models.Language, error)
}

func New(log *slog.Logger, provider Provider) *Catalog {
	return &Catalog{log: log, provider: provider}
}

// Countries returns every country, unpaginated and unfiltered.
func (c *Catalog) Countries(ctx context.Context) ([]models.Country, error) {
	const op = "catalog.Countries"

	countries, err := c.provider.Countries(ctx)
	if err != nil {
		c.log.Error("failed to list countries", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return countries, nil
}

// LanguagesForCountry returns the languages joined to the country, in no
// guaranteed order. Unknown ids yield ErrCountryNotFound.
func (c *Catalog) LanguagesForCountry(ctx context.Context, countryID int64) ([]models.Language, error) {
	const op = "catalog.LanguagesForCountry"

	if _, err := c.provider.CountryByID(ctx, countryID); err != nil {
		if errors.Is(err, storage.ErrCountryNotFound) {
			return nil, ErrCountryNotFound
		}

		c.log.Error("failed to get country", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	languages, err := c.provider.LanguagesForCountry(ctx, countryID)
	if err != nil {
		c.log.Error("failed to list languages", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return languages, nil
}
