package verification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestVerificationToken_RoundTrip(t *testing.T) {
	token, err := generateVerificationToken(42, time.Hour, secret)
	require.NoError(t, err)

	userID, err := ParseVerificationToken(token, secret)
	require.NoError(t, err)
	require.Equal(t, int64(42), userID)
}

func TestParseVerificationToken_Expired(t *testing.T) {
	token, err := generateVerificationToken(42, -time.Minute, secret)
	require.NoError(t, err)

	_, err = ParseVerificationToken(token, secret)
	require.Error(t, err)
}

func TestParseVerificationToken_WrongSecret(t *testing.T) {
	token, err := generateVerificationToken(42, time.Hour, secret)
	require.NoError(t, err)

	_, err = ParseVerificationToken(token, "other-secret")
	require.Error(t, err)
}

func TestParseVerificationToken_Garbage(t *testing.T) {
	_, err := ParseVerificationToken("not.a.jwt", secret)
	require.Error(t, err)
}

func TestLinkFor_KnownKinds(t *testing.T) {
	link, err := LinkFor(KindUser, "http://localhost:8080", "tok")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/api/verify?token=tok", link)

	link, err = LinkFor(KindAdmin, "http://localhost:8080", "tok")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/admin/verify?token=tok", link)
}

func TestLinkFor_UnknownKind(t *testing.T) {
	_, err := LinkFor(AccountKind(99), "http://localhost:8080", "tok")
	require.ErrorIs(t, err, ErrUnknownAccountKind)
}
