package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	sl "account_service/internal/lib/logger"
	"account_service/internal/models"
	"account_service/internal/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidToken       = errors.New("invalid access token")
)

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	tokens      TokenStore
}

type UserSaver interface {
	SaveUser(ctx context.Context, name, email string, passHash []byte, country, language string) (models.User, error)
	SetEmailVerified(ctx context.Context, userID int64) error
}

type UserProvider interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
}

type TokenStore interface {
	SaveAccessToken(ctx context.Context, id string, userID int64, tokenHash []byte) error
	UserIDByTokenHash(ctx context.Context, tokenHash []byte) (int64, error)
	DeleteTokensForUser(ctx context.Context, userID int64) (int64, error)
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	tokens TokenStore,
) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		tokens:      tokens,
	}
}

// Register persists a new user with a bcrypt password hash and issues the
// first access token. The plaintext token is returned exactly once.
func (a *Auth) Register(
	ctx context.Context,
	name, email, password, country, language string,
) (models.User, string, error) {
	const op = "auth.Register"

	log := a.log.With(slog.String("op", op))

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	user, err := a.usrSaver.SaveUser(ctx, name, email, passHash, country, language)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("email already registered")
			return models.User{}, "", ErrEmailTaken
		}

		log.Error("failed to save user", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := a.issueToken(ctx, user.ID)
	if err != nil {
		log.Error("failed to issue access token", sl.Err(err))
		return models.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.Int64("uid", user.ID))

	return user, token, nil
}

// Login verifies the credentials and issues a fresh access token. Previously
// issued tokens stay valid; only Logout revokes them.
func (a *Auth) Login(ctx context.Context, email, password string) (string, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return "", ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))
		return "", ErrInvalidCredentials
	}

	token, err := a.issueToken(ctx, user.ID)
	if err != nil {
		log.Error("failed to issue access token", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in", slog.Int64("uid", user.ID))

	return token, nil
}

// VerifyPassword checks credentials without issuing a token. Used by the
// cookie-session login variant.
func (a *Auth) VerifyPassword(ctx context.Context, email, password string) (models.User, error) {
	const op = "auth.VerifyPassword"

	user, err := a.usrProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// Logout revokes every access token issued to the user and returns the user
// record that was current at logout.
func (a *Auth) Logout(ctx context.Context, userID int64) (models.User, error) {
	const op = "auth.Logout"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found at logout", slog.Int64("uid", userID))
			return models.User{}, ErrUserNotFound
		}

		log.Error("failed to get user", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	revoked, err := a.tokens.DeleteTokensForUser(ctx, userID)
	if err != nil {
		log.Error("failed to revoke tokens", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged out", slog.Int64("uid", userID), slog.Int64("tokens_revoked", revoked))

	return user, nil
}

// UserByToken resolves a presented bearer token to its live user.
func (a *Auth) UserByToken(ctx context.Context, rawToken string) (models.User, error) {
	const op = "auth.UserByToken"

	hash := hashToken(rawToken)

	userID, err := a.tokens.UserIDByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return models.User{}, ErrInvalidToken
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := a.usrProvider.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, ErrInvalidToken
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UserByID fetches a user record, mapping storage misses to ErrUserNotFound.
func (a *Auth) UserByID(ctx context.Context, userID int64) (models.User, error) {
	const op = "auth.UserByID"

	user, err := a.usrProvider.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// MarkEmailVerified stamps users.email_verified_at for the user.
func (a *Auth) MarkEmailVerified(ctx context.Context, userID int64) error {
	const op = "auth.MarkEmailVerified"

	if err := a.usrSaver.SetEmailVerified(ctx, userID); err != nil {
		a.log.Error("failed to set email verified", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CheckUserVerification reports whether the user's email is verified.
func (a *Auth) CheckUserVerification(ctx context.Context, email string) (int64, bool, error) {
	const op = "auth.CheckUserVerification"

	user, err := a.usrProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return 0, false, ErrUserNotFound
		}

		return 0, false, fmt.Errorf("%s: %w", op, err)
	}

	return user.ID, user.EmailVerifiedAt != nil, nil
}

// issueToken stores the SHA-256 hash of a fresh random token and returns the
// plaintext. Tokens accumulate per user until logout.
func (a *Auth) issueToken(ctx context.Context, userID int64) (string, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	token := hex.EncodeToString(raw)

	if err := a.tokens.SaveAccessToken(ctx, uuid.NewString(), userID, hashToken(token)); err != nil {
		return "", err
	}

	return token, nil
}

func hashToken(raw string) []byte {
	sum := sha256.Sum256([]byte(raw))
	return sum[:]
}
