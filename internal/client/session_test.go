package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"account_service/internal/lib/api/userview"

	"github.com/stretchr/testify/require"
)

type fakeNavigator struct {
	pushed []string
}

func (f *fakeNavigator) Push(name string) {
	f.pushed = append(f.pushed, name)
}

// backend simulates the server side of the session flows: a user store keyed
// by token, register/login that issue tokens, and logout that revokes them.
type backend struct {
	users map[string]userview.User
}

func newBackend() *backend {
	return &backend{users: map[string]userview.User{}}
}

func (b *backend) handler(t *testing.T) http.Handler {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/api/register", func(w http.ResponseWriter, r *http.Request) {
		var form map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&form))

		if form["email"] == "taken@x.com" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]any{
				"errors": map[string][]string{"email": {"The email has already been taken."}},
			})
			return
		}

		user := userview.User{ID: 1, Name: form["name"], Email: form["email"]}
		b.users["issued-token"] = user

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"user": user, "token": "issued-token"})
	})

	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var form map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&form))

		if form["password"] != "password1" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{
				"errors": map[string][]string{"email": {"The provided credentials are incorrect"}},
			})
			return
		}

		b.users["issued-token"] = userview.User{ID: 1, Email: form["email"]}
		json.NewEncoder(w).Encode(map[string]any{"message": "Login successful", "token_type": "Bearer", "token": "issued-token"})
	})

	mux.HandleFunc("/api/user", func(w http.ResponseWriter, r *http.Request) {
		user, ok := b.users[bearer(r)]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(user)
	})

	mux.HandleFunc("/api/logout", func(w http.ResponseWriter, r *http.Request) {
		user, ok := b.users[bearer(r)]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		delete(b.users, bearer(r))
		json.NewEncoder(w).Encode(map[string]any{"message": "Logged out successfully", "data": user})
	})

	return mux
}

func bearer(r *http.Request) string {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) <= len(prefix) {
		return ""
	}
	return header[len(prefix):]
}

func newController(t *testing.T, srv *httptest.Server) (*SessionController, *fakeNavigator, TokenStore) {
	t.Helper()

	nav := &fakeNavigator{}
	tokens := NewFileTokenStore(filepath.Join(t.TempDir(), "token.json"))

	return NewSessionController(srv.URL, tokens, nav), nav, tokens
}

func TestAuthenticate_RegisterSuccess(t *testing.T) {
	srv := httptest.NewServer(newBackend().handler(t))
	defer srv.Close()

	ctrl, nav, tokens := newController(t, srv)

	err := ctrl.Authenticate(context.Background(), RouteRegister, map[string]string{
		"name": "A", "email": "a@x.com", "password": "password1",
	})
	require.NoError(t, err)

	token, err := tokens.Token()
	require.NoError(t, err)
	require.Equal(t, "issued-token", token)

	user := ctrl.User()
	require.NotNil(t, user)
	require.Equal(t, "a@x.com", user.Email)

	require.Equal(t, []string{RouteHome}, nav.pushed)
	require.Empty(t, ctrl.Errors())
}

func TestAuthenticate_FieldErrorsCached(t *testing.T) {
	srv := httptest.NewServer(newBackend().handler(t))
	defer srv.Close()

	ctrl, nav, tokens := newController(t, srv)

	err := ctrl.Authenticate(context.Background(), RouteRegister, map[string]string{
		"email": "taken@x.com",
	})
	require.ErrorIs(t, err, ErrAuthenticationFailed)

	require.Equal(t, []string{"The email has already been taken."}, ctrl.Errors()["email"])
	require.Empty(t, nav.pushed)

	token, err := tokens.Token()
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestAuthenticate_LoginThenGuard(t *testing.T) {
	srv := httptest.NewServer(newBackend().handler(t))
	defer srv.Close()

	ctrl, nav, _ := newController(t, srv)

	err := ctrl.Authenticate(context.Background(), RouteLogin, map[string]string{
		"email": "a@x.com", "password": "password1",
	})
	require.NoError(t, err)
	require.Equal(t, []string{RouteHome}, nav.pushed)

	// Login carries no user object; the guard refresh fills the cache.
	redirect := ctrl.Guard(context.Background(), Route{Name: RouteLogin, Meta: RouteMeta{GuestOnly: true}})
	require.Equal(t, RouteHome, redirect)
	require.NotNil(t, ctrl.User())
}

func TestAuthenticate_UnknownRoute(t *testing.T) {
	srv := httptest.NewServer(newBackend().handler(t))
	defer srv.Close()

	ctrl, _, _ := newController(t, srv)

	err := ctrl.Authenticate(context.Background(), "settings", nil)
	require.Error(t, err)
}

func TestGuard_Redirects(t *testing.T) {
	backend := newBackend()
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	ctrl, _, tokens := newController(t, srv)

	// Guest hitting a protected route goes to login.
	redirect := ctrl.Guard(context.Background(), Route{Name: RouteHome, Meta: RouteMeta{RequiresAuth: true}})
	require.Equal(t, RouteLogin, redirect)

	// Guest hitting a guest-only route proceeds.
	redirect = ctrl.Guard(context.Background(), Route{Name: RouteLogin, Meta: RouteMeta{GuestOnly: true}})
	require.Empty(t, redirect)

	backend.users["issued-token"] = userview.User{ID: 1, Email: "a@x.com"}
	require.NoError(t, tokens.SetToken("issued-token"))

	// Authenticated user hitting a guest-only route goes home.
	redirect = ctrl.Guard(context.Background(), Route{Name: RouteRegister, Meta: RouteMeta{GuestOnly: true}})
	require.Equal(t, RouteHome, redirect)

	// Authenticated user proceeds to a protected route.
	redirect = ctrl.Guard(context.Background(), Route{Name: RouteHome, Meta: RouteMeta{RequiresAuth: true}})
	require.Empty(t, redirect)
}

func TestGuard_StaleTokenClearsCache(t *testing.T) {
	backend := newBackend()
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	ctrl, _, tokens := newController(t, srv)

	backend.users["issued-token"] = userview.User{ID: 1, Email: "a@x.com"}
	require.NoError(t, tokens.SetToken("issued-token"))

	ctrl.FetchCurrentUser(context.Background())
	require.NotNil(t, ctrl.User())

	// Token revoked server side, e.g. logout from another device.
	delete(backend.users, "issued-token")

	redirect := ctrl.Guard(context.Background(), Route{Name: RouteHome, Meta: RouteMeta{RequiresAuth: true}})
	require.Equal(t, RouteLogin, redirect)
	require.Nil(t, ctrl.User())
}

func TestLogout(t *testing.T) {
	backend := newBackend()
	srv := httptest.NewServer(backend.handler(t))
	defer srv.Close()

	ctrl, nav, tokens := newController(t, srv)

	err := ctrl.Authenticate(context.Background(), RouteLogin, map[string]string{
		"email": "a@x.com", "password": "password1",
	})
	require.NoError(t, err)

	require.NoError(t, ctrl.Logout(context.Background()))

	require.Nil(t, ctrl.User())
	require.Empty(t, ctrl.Errors())

	token, err := tokens.Token()
	require.NoError(t, err)
	require.Empty(t, token)

	require.Equal(t, []string{RouteHome, RouteLogin}, nav.pushed)
}

func TestLogout_ServerRejects(t *testing.T) {
	srv := httptest.NewServer(newBackend().handler(t))
	defer srv.Close()

	ctrl, _, tokens := newController(t, srv)
	require.NoError(t, tokens.SetToken("never-issued"))

	err := ctrl.Logout(context.Background())
	require.ErrorIs(t, err, ErrLogoutFailed)

	// A failed logout keeps the token so the caller can retry.
	token, err := tokens.Token()
	require.NoError(t, err)
	require.Equal(t, "never-issued", token)
}
