package auth

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"account_service/internal/models"
	"account_service/internal/storage"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ---- fake storage ----

type fakeStorage struct {
	nextID   int64
	users    map[string]*models.User // by email
	usersByID map[int64]*models.User  // by id
	tokens   map[string]int64        // token hash -> user id
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		users:    map[string]*models.User{},
		usersByID: map[int64]*models.User{},
		tokens:   map[string]int64{},
	}
}

func (f *fakeStorage) SaveUser(ctx context.Context, name, email string, passHash []byte, country, language string) (models.User, error) {
	if _, ok := f.users[email]; ok {
		return models.User{}, storage.ErrUserExists
	}

	f.nextID++
	u := &models.User{
		ID:       f.nextID,
		Name:     name,
		Email:    email,
		PassHash: passHash,
		Country:  country,
		Language: language,
	}
	f.users[email] = u
	f.usersByID[u.ID] = u

	return *u, nil
}

func (f *fakeStorage) SetEmailVerified(ctx context.Context, userID int64) error {
	return nil
}

func (f *fakeStorage) UserByEmail(ctx context.Context, email string) (models.User, error) {
	u, ok := f.users[email]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}
	return *u, nil
}

func (f *fakeStorage) UserByID(ctx context.Context, id int64) (models.User, error) {
	u, ok := f.usersByID[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}
	return *u, nil
}

func (f *fakeStorage) SaveAccessToken(ctx context.Context, id string, userID int64, tokenHash []byte) error {
	f.tokens[string(tokenHash)] = userID
	return nil
}

func (f *fakeStorage) UserIDByTokenHash(ctx context.Context, tokenHash []byte) (int64, error) {
	userID, ok := f.tokens[string(tokenHash)]
	if !ok {
		return 0, storage.ErrTokenNotFound
	}
	return userID, nil
}

func (f *fakeStorage) DeleteTokensForUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	for hash, uid := range f.tokens {
		if uid == userID {
			delete(f.tokens, hash)
			n++
		}
	}
	return n, nil
}

func newTestAuth(f *fakeStorage) *Auth {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, f, f, f)
}

// ---- tests ----

func TestRegister_IssuesTokenAndHashesPassword(t *testing.T) {
	f := newFakeStorage()
	a := newTestAuth(f)

	user, token, err := a.Register(context.Background(), "A", "a@x.com", "password1", "UK", "English")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, int64(1), user.ID)

	require.NotEqual(t, []byte("password1"), user.PassHash)
	require.False(t, bytes.Contains(user.PassHash, []byte("password1")))
	require.NoError(t, bcrypt.CompareHashAndPassword(user.PassHash, []byte("password1")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFakeStorage()
	a := newTestAuth(f)

	_, _, err := a.Register(context.Background(), "A", "a@x.com", "password1", "UK", "English")
	require.NoError(t, err)

	_, _, err = a.Register(context.Background(), "B", "a@x.com", "password2", "UK", "English")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFakeStorage()
	a := newTestAuth(f)

	_, _, err := a.Register(context.Background(), "A", "a@x.com", "password1", "UK", "English")
	require.NoError(t, err)

	for _, password := range []string{"password2", "PASSWORD1", "password1 ", ""} {
		_, err := a.Login(context.Background(), "a@x.com", password)
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	f := newFakeStorage()
	a := newTestAuth(f)

	_, err := a.Login(context.Background(), "nobody@x.com", "password1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_TokensAccumulate(t *testing.T) {
	f := newFakeStorage()
	a := newTestAuth(f)

	_, first, err := a.Register(context.Background(), "A", "a@x.com", "password1", "UK", "English")
	require.NoError(t, err)

	second, err := a.Login(context.Background(), "a@x.com", "password1")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// Earlier tokens stay valid until logout.
	for _, token := range []string{first, second} {
		user, err := a.UserByToken(context.Background(), token)
		require.NoError(t, err)
		require.Equal(t, "a@x.com", user.Email)
	}
}

func TestLogout_RevokesEveryToken(t *testing.T) {
	f := newFakeStorage()
	a := newTestAuth(f)

	user, first, err := a.Register(context.Background(), "A", "a@x.com", "password1", "UK", "English")
	require.NoError(t, err)

	second, err := a.Login(context.Background(), "a@x.com", "password1")
	require.NoError(t, err)

	loggedOut, err := a.Logout(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Email, loggedOut.Email)

	for _, token := range []string{first, second} {
		_, err := a.UserByToken(context.Background(), token)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestLogout_MissingUser(t *testing.T) {
	f := newFakeStorage()
	a := newTestAuth(f)

	_, err := a.Logout(context.Background(), 42)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserByToken_Unknown(t *testing.T) {
	f := newFakeStorage()
	a := newTestAuth(f)

	_, err := a.UserByToken(context.Background(), "deadbeef")
	require.ErrorIs(t, err, ErrInvalidToken)
}
