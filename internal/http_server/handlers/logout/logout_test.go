package logout

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"account_service/internal/auth"
	"account_service/internal/http_server/middleware/authn"
	"account_service/internal/models"

	"github.com/stretchr/testify/require"
)

type fakeRevoker struct {
	user models.User
	err  error

	calledWith int64
}

func (f *fakeRevoker) Logout(ctx context.Context, userID int64) (models.User, error) {
	f.calledWith = userID
	return f.user, f.err
}

func doRequest(t *testing.T, revoker *fakeRevoker, withUser bool) *httptest.ResponseRecorder {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(log, revoker)

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	if withUser {
		req = req.WithContext(authn.WithUser(req.Context(), models.User{ID: 7, Email: "a@x.com"}))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestLogout_Success(t *testing.T) {
	revoker := &fakeRevoker{user: models.User{ID: 7, Name: "A", Email: "a@x.com"}}

	rec := doRequest(t, revoker, true)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(7), revoker.calledWith)

	var got Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "a@x.com", got.Data.Email)
}

func TestLogout_UserMissing(t *testing.T) {
	revoker := &fakeRevoker{err: auth.ErrUserNotFound}

	rec := doRequest(t, revoker, true)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogout_Unauthenticated(t *testing.T) {
	rec := doRequest(t, &fakeRevoker{}, false)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
