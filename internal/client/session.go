// Package client is the session controller consumed by the frontend shell:
// it caches the current user, attaches the bearer token to outgoing
// requests, and decides redirects before every route transition.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"account_service/internal/lib/api/userview"
)

const (
	RouteHome     = "home"
	RouteLogin    = "login"
	RouteRegister = "register"
)

var (
	ErrAuthenticationFailed = errors.New("failed to authenticate")
	ErrLogoutFailed         = errors.New("failed to logout")
)

// RouteMeta marks a destination as requiring authentication or as
// guest-only (login/register pages).
type RouteMeta struct {
	RequiresAuth bool
	GuestOnly    bool
}

type Route struct {
	Name string
	Meta RouteMeta
}

// Navigator is the navigation handle the controller pushes redirects to.
type Navigator interface {
	Push(name string)
}

// TokenStore persists the opaque bearer token between sessions.
type TokenStore interface {
	Token() (string, error)
	SetToken(token string) error
	Clear() error
}

// SessionController holds the single cached-user slot and the cached
// field-error map. All state is behind the instance, not package globals;
// the mutex serializes overlapping guard invocations.
type SessionController struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenStore
	nav        Navigator

	mu   sync.Mutex
	user *userview.User
	errs map[string][]string
}

func NewSessionController(baseURL string, tokens TokenStore, nav Navigator) *SessionController {
	return &SessionController{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		tokens:     tokens,
		nav:        nav,
		errs:       map[string][]string{},
	}
}

// User returns the cached user, or nil when nobody is logged in.
func (s *SessionController) User() *userview.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil
	}

	u := *s.user
	return &u
}

// Errors returns the field errors cached by the last Authenticate call.
func (s *SessionController) Errors() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]string, len(s.errs))
	for k, v := range s.errs {
		out[k] = append([]string(nil), v...)
	}

	return out
}

// FetchCurrentUser refreshes the cached user from GET /api/user when a token
// is stored. Any failure leaves the cache empty and is not surfaced.
func (s *SessionController) FetchCurrentUser(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetchCurrentUserLocked(ctx)
}

func (s *SessionController) fetchCurrentUserLocked(ctx context.Context) {
	token, err := s.tokens.Token()
	if err != nil || token == "" {
		s.user = nil
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/user", nil)
	if err != nil {
		s.user = nil
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := s.httpClient.Do(req)
	if err != nil {
		s.user = nil
		return
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		s.user = nil
		return
	}

	var user userview.User
	if err := json.NewDecoder(res.Body).Decode(&user); err != nil {
		s.user = nil
		return
	}

	s.user = &user
}

type authPayload struct {
	Errors map[string][]string `json:"errors"`
	Token  string              `json:"token"`
	User   *userview.User      `json:"user"`
}

// Authenticate posts the form to /api/register or /api/login. Field errors
// from the server are cached and reported as ErrAuthenticationFailed; on
// success the token is persisted and navigation moves to home.
func (s *SessionController) Authenticate(ctx context.Context, route string, form map[string]string) error {
	if route != RouteRegister && route != RouteLogin {
		return fmt.Errorf("unknown auth route %q", route)
	}

	body, err := json.Marshal(form)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/"+route, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var payload authPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(payload.Errors) > 0 {
		s.errs = payload.Errors
		return ErrAuthenticationFailed
	}

	s.errs = map[string][]string{}

	if err := s.tokens.SetToken(payload.Token); err != nil {
		return err
	}

	// Login responses carry no user object; the next guard pass fills it.
	if payload.User != nil {
		s.user = payload.User
	}

	s.nav.Push(RouteHome)

	return nil
}

// Logout posts to /api/logout with the stored token. Success clears the
// cached user, errors, and token, then navigates to login; failure is
// returned to the caller.
func (s *SessionController) Logout(ctx context.Context) error {
	token, err := s.tokens.Token()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return ErrLogoutFailed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.errs = map[string][]string{}

	if err := s.tokens.Clear(); err != nil {
		return err
	}

	s.nav.Push(RouteLogin)

	return nil
}

// Guard runs before every route transition: it refreshes the cached user,
// then returns the route name to redirect to, or "" to proceed. The lock is
// held across refresh and decision so overlapping invocations serialize.
func (s *SessionController) Guard(ctx context.Context, to Route) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetchCurrentUserLocked(ctx)

	if s.user != nil && to.Meta.GuestOnly {
		return RouteHome
	}

	if s.user == nil && to.Meta.RequiresAuth {
		return RouteLogin
	}

	return ""
}
