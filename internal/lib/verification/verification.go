package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"account_service/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const purposeEmailVerification = "email_verification"

// AccountKind selects which verification link a mail is built for. The set
// is closed; link construction matches exhaustively and returns
// ErrUnknownAccountKind for anything else instead of guessing.
type AccountKind int

const (
	KindUser AccountKind = iota
	KindAdmin
)

var ErrUnknownAccountKind = errors.New("unknown account kind")

type Publisher interface {
	SendMessage(ctx context.Context, msg models.Message) error
}

// LinkFor builds the verification URL for the given account kind.
func LinkFor(kind AccountKind, baseURL, token string) (string, error) {
	switch kind {
	case KindUser:
		return fmt.Sprintf("%s/api/verify?token=%s", baseURL, token), nil
	case KindAdmin:
		return fmt.Sprintf("%s/admin/verify?token=%s", baseURL, token), nil
	default:
		return "", ErrUnknownAccountKind
	}
}

// SendVerificationEmail signs a short-lived verification token for the user
// and publishes the mail message to the queue. Publish failures are logged
// but do not fail the registration that triggered them.
func SendVerificationEmail(
	ctx context.Context,
	log *slog.Logger,
	pub Publisher,
	tokenTTL time.Duration,
	tokenSecret string,
	userID int64,
	baseURL, email string,
) error {
	token, err := generateVerificationToken(userID, tokenTTL, tokenSecret)
	if err != nil {
		log.Error("failed to generate verification token", slog.Any("err", err))

		return err
	}

	verifyLink, err := LinkFor(KindUser, baseURL, token)
	if err != nil {
		return err
	}

	msg := models.Message{
		Email:   email,
		Link:    verifyLink,
		Purpose: purposeEmailVerification,
	}

	if err := pub.SendMessage(ctx, msg); err != nil {
		log.Error("failed to publish verification link", slog.Any("err", err))
	}

	return nil
}

func ParseVerificationToken(tokenStr, secret string) (int64, error) {
	const op = "verification.ParseVerificationToken"

	claims := jwt.MapClaims{}

	parsedToken, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%s: unexpected signing method", op)
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: failed to parse token: %w", op, err)
	}

	if !parsedToken.Valid {
		return 0, fmt.Errorf("%s: invalid token", op)
	}

	if purpose, ok := claims["purpose"].(string); !ok || purpose != purposeEmailVerification {
		return 0, fmt.Errorf("%s: invalid token purpose", op)
	}

	if expFloat, ok := claims["exp"].(float64); ok {
		if time.Now().Unix() > int64(expFloat) {
			return 0, fmt.Errorf("%s: token expired", op)
		}
	} else {
		return 0, fmt.Errorf("%s: missing exp claim", op)
	}

	subFloat, ok := claims["sub"].(float64)
	if !ok {
		return 0, fmt.Errorf("%s: missing sub claim", op)
	}

	return int64(subFloat), nil
}

func generateVerificationToken(userID int64, tokenTTL time.Duration, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub":     userID,
		"purpose": purposeEmailVerification,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}
