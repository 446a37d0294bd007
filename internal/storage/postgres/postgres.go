package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"account_service/internal/config"
	"account_service/internal/models"
	"account_service/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	poolConfig, err := pgxpool.ParseConfig(dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) SaveUser(ctx context.Context, name, email string, passHash []byte, country, language string) (models.User, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (name, email, password_hash, country, language)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at;
	`

	u := models.User{
		Name:     name,
		Email:    email,
		PassHash: passHash,
		Country:  country,
		Language: language,
	}

	err := r.pool.QueryRow(ctx, query, name, email, string(passHash), country, language).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, storage.ErrUserExists
		}

		return models.User{}, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return u, nil
}

func (r *PostgresRepo) UserByEmail(ctx context.Context, email string) (models.User, error) {
	query := `
		SELECT id, name, email, password_hash, country, language, email_verified_at, created_at, updated_at
		FROM users
		WHERE email = $1;
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PostgresRepo) UserByID(ctx context.Context, id int64) (models.User, error) {
	query := `
		SELECT id, name, email, password_hash, country, language, email_verified_at, created_at, updated_at
		FROM users
		WHERE id = $1;
	`

	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PostgresRepo) scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	var passHash string

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&passHash,
		&u.Country,
		&u.Language,
		&u.EmailVerifiedAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, err
	}

	u.PassHash = []byte(passHash)

	return u, nil
}

func (r *PostgresRepo) SetEmailVerified(ctx context.Context, userID int64) error {
	query := `UPDATE users SET email_verified_at = NOW(), updated_at = NOW() WHERE id = $1`

	_, err := r.pool.Exec(ctx, query, userID)

	return err
}

func (r *PostgresRepo) SaveAccessToken(ctx context.Context, id string, userID int64, tokenHash []byte) error {
	const query = `
		INSERT INTO access_tokens (id, user_id, token_hash)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query, id, userID, tokenHash)
	return err
}

func (r *PostgresRepo) UserIDByTokenHash(ctx context.Context, tokenHash []byte) (int64, error) {
	const query = `
		SELECT user_id
		FROM access_tokens
		WHERE token_hash = $1;
	`

	var userID int64

	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, storage.ErrTokenNotFound
	}

	return userID, err
}

// DeleteTokensForUser removes every access token issued to the user,
// regardless of which one the caller presented.
func (r *PostgresRepo) DeleteTokensForUser(ctx context.Context, userID int64) (int64, error) {
	query := `DELETE FROM access_tokens WHERE user_id = $1`

	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *PostgresRepo) Countries(ctx context.Context) ([]models.Country, error) {
	const op = "storage.postgres.Countries"

	query := `SELECT id, name FROM countries`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	countries := []models.Country{}

	for rows.Next() {
		var c models.Country
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		countries = append(countries, c)
	}

	return countries, rows.Err()
}

func (r *PostgresRepo) CountryByID(ctx context.Context, id int64) (models.Country, error) {
	query := `SELECT id, name FROM countries WHERE id = $1`

	var c models.Country

	err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Country{}, storage.ErrCountryNotFound
	}

	return c, err
}

func (r *PostgresRepo) LanguagesForCountry(ctx context.Context, countryID int64) ([]models.Language, error) {
	const op = "storage.postgres.LanguagesForCountry"

	query := `
		SELECT l.id, l.name
		FROM languages l
		JOIN country_language cl ON cl.language_id = l.id
		WHERE cl.country_id = $1;
	`

	rows, err := r.pool.Query(ctx, query, countryID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	languages := []models.Language{}

	for rows.Next() {
		var l models.Language
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		languages = append(languages, l)
	}

	return languages, rows.Err()
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}
