// Package session owns the authentication lifecycle: token persistence,
// sign-in and sign-up, session validation at startup, and the transparent
// refresh that absorbs 401s from the gateway.
//
// The manager is the single writer of both the session state and the
// persisted credential pair. It implements the gateway's UnauthorizedHandler
// and the request.TokenProvider the gateway reads tokens from.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dopoapp/dopo-go/pkg/api"
	"github.com/dopoapp/dopo-go/pkg/config"
	"github.com/dopoapp/dopo-go/pkg/keystore"
	"github.com/dopoapp/dopo-go/pkg/request"
)

// User identifies the signed-in account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// State is a snapshot of the session.
//
// Invariants: IsAuthenticated implies both an access token and a User are
// present; SessionExpired implies !IsAuthenticated.
type State struct {
	IsAuthenticated bool
	IsLoading       bool
	SessionExpired  bool
	User            *User
	LastError       string
}

// Fallback user-facing messages when the identity service gives no specific
// error.
const (
	signInFailedMessage  = "Sign in failed"
	signUpFailedMessage  = "Sign up failed"
	invalidResponseMsg   = "Invalid response"
	networkFailedMessage = "Network error. Check your connection and try again."

	// SignUpPendingMessage is surfaced when sign-up succeeded but the account
	// needs email confirmation before it can sign in. Not an error.
	SignUpPendingMessage = "Account created! Check your email to confirm, then sign in."
)

// Manager drives the authentication state machine.
type Manager struct {
	identity *identityClient
	store    keystore.Store
	legacy   *keystore.FileStore
	log      *slog.Logger

	mu            sync.Mutex
	state         State
	inflight      chan struct{} // non-nil while a refresh is in flight
	lastRefreshOK bool
}

// Verify interface compliance.
var (
	_ request.TokenProvider   = (*Manager)(nil)
	_ api.UnauthorizedHandler = (*Manager)(nil)
)

// Option configures a Manager.
type Option func(*Manager)

// WithHTTPClient replaces the identity HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(m *Manager) { m.identity.http = hc }
}

// WithLegacyStore enables the one-time migration out of the legacy plaintext
// store during Initialize.
func WithLegacyStore(legacy *keystore.FileStore) Option {
	return func(m *Manager) { m.legacy = legacy }
}

// WithLogger replaces the diagnostic logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager creates a session manager persisting credentials in store. Call
// Initialize before use; the state reports loading until then.
func NewManager(cfg config.Config, store keystore.Store, opts ...Option) *Manager {
	m := &Manager{
		identity: &identityClient{
			http: &http.Client{Timeout: cfg.HTTPTimeout},
			builder: request.Builder{
				APIKey:     cfg.APIKey,
				Platform:   cfg.Platform,
				AppVersion: cfg.AppVersion,
			},
			authURL: cfg.AuthURL(),
		},
		store: store,
		log:   slog.Default(),
		state: State{IsLoading: true},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a snapshot of the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state
	if m.state.User != nil {
		u := *m.state.User
		snapshot.User = &u
	}
	return snapshot
}

// AccessToken implements request.TokenProvider against the credential store.
func (m *Manager) AccessToken() (string, bool) {
	return m.store.Retrieve(keystore.AccessTokenKey)
}

// Initialize runs the legacy-store migration, then validates any persisted
// access token against the who-am-I endpoint. It fails closed: any outcome
// other than a confirmed valid session leaves the manager unauthenticated.
func (m *Manager) Initialize(ctx context.Context) {
	if m.legacy != nil {
		if err := keystore.MigrateOnce(m.legacy, m.store, keystore.AccessTokenKey, keystore.RefreshTokenKey); err != nil {
			m.log.Warn("credential migration failed", "error", err)
		}
	}

	token, ok := m.store.Retrieve(keystore.AccessTokenKey)
	if !ok {
		m.setUnauthenticated()
		return
	}

	// An access token whose exp claim has already passed cannot validate;
	// skip the doomed who-am-I call and refresh directly.
	if tokenExpired(token, time.Now()) {
		if !m.refreshShared(ctx) {
			m.Logout()
		}
		m.endLoading()
		return
	}

	user, status, err := m.identity.whoAmI(ctx, token)
	switch {
	case err != nil:
		m.log.Warn("session validation failed", "error", err)
		m.Logout()
	case status == http.StatusUnauthorized:
		if !m.refreshShared(ctx) {
			m.Logout()
		}
	case status == http.StatusOK:
		m.setAuthenticated(user)
	default:
		m.Logout()
	}
	m.endLoading()
}

// SignIn exchanges credentials for a session. On failure the returned error
// carries the most specific message the identity service provided and the
// authentication state is unchanged.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	m.clearError()

	resp, status, err := m.identity.signIn(ctx, email, password)
	if err != nil {
		return m.fail(networkFailedMessage)
	}
	if status != http.StatusOK {
		return m.fail(resp.message(signInFailedMessage))
	}
	if resp.AccessToken == "" || resp.User == nil {
		return m.fail(invalidResponseMsg)
	}

	if err := m.persistTokens(resp.AccessToken, resp.RefreshToken); err != nil {
		m.log.Warn("persisting tokens failed", "error", err)
	}

	m.mu.Lock()
	m.state.SessionExpired = false
	m.mu.Unlock()
	m.setAuthenticated(resp.User)
	m.endLoading()
	return nil
}

// SignUp registers a new account. When the backend requires email
// confirmation the response carries no token: pending is true, the state
// stays unauthenticated, and err is nil.
func (m *Manager) SignUp(ctx context.Context, email, password string) (pending bool, err error) {
	m.clearError()

	resp, status, err := m.identity.signUp(ctx, email, password)
	if err != nil {
		return false, m.fail(networkFailedMessage)
	}
	if status >= http.StatusBadRequest {
		return false, m.fail(resp.message(signUpFailedMessage))
	}

	if resp.AccessToken != "" && resp.User != nil {
		if err := m.persistTokens(resp.AccessToken, resp.RefreshToken); err != nil {
			m.log.Warn("persisting tokens failed", "error", err)
		}
		m.setAuthenticated(resp.User)
		m.endLoading()
		return false, nil
	}

	return true, nil
}

// Logout deletes both persisted tokens and resets the in-memory session. The
// SessionExpired flag survives so the UI can explain why the user was signed
// out; SignIn clears it.
func (m *Manager) Logout() {
	if err := m.store.Delete(keystore.AccessTokenKey); err != nil {
		m.log.Warn("deleting access token failed", "error", err)
	}
	if err := m.store.Delete(keystore.RefreshTokenKey); err != nil {
		m.log.Warn("deleting refresh token failed", "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.User = nil
	m.state.IsAuthenticated = false
	m.state.IsLoading = false
}

// HandleUnauthorized is the gateway's 401 hook. It attempts one (coalesced)
// refresh; on success authentication persists transparently — the triggering
// request is not retried here, that is the caller's decision. On failure the
// session is expired and logged out.
func (m *Manager) HandleUnauthorized(ctx context.Context) {
	if m.refreshShared(ctx) {
		return
	}

	m.mu.Lock()
	m.state.SessionExpired = true
	m.mu.Unlock()
	m.Logout()
}

// refreshShared coalesces concurrent refresh attempts: the first caller
// performs the refresh, every concurrent caller blocks on it and observes
// the same outcome. Without this, two in-flight 401s would race and the
// second grant would invalidate the pair the first one just obtained.
func (m *Manager) refreshShared(ctx context.Context) bool {
	m.mu.Lock()
	if m.inflight != nil {
		done := m.inflight
		m.mu.Unlock()
		<-done
		m.mu.Lock()
		ok := m.lastRefreshOK
		m.mu.Unlock()
		return ok
	}
	done := make(chan struct{})
	m.inflight = done
	m.mu.Unlock()

	user, ok := m.refresh(ctx)

	m.mu.Lock()
	m.lastRefreshOK = ok
	if ok {
		m.state.User = user
		m.state.IsAuthenticated = true
		m.state.SessionExpired = false
	}
	m.inflight = nil
	m.mu.Unlock()
	close(done)
	return ok
}

// refresh exchanges the persisted refresh token for a new pair. It never
// returns an error: the caller decides the next state from the boolean.
func (m *Manager) refresh(ctx context.Context) (*User, bool) {
	refreshToken, ok := m.store.Retrieve(keystore.RefreshTokenKey)
	if !ok {
		return nil, false
	}

	resp, status, err := m.identity.refreshGrant(ctx, refreshToken)
	if err != nil {
		m.log.Warn("token refresh failed", "error", err)
		return nil, false
	}
	if status != http.StatusOK || resp.AccessToken == "" || resp.User == nil {
		return nil, false
	}

	if err := m.persistTokens(resp.AccessToken, resp.RefreshToken); err != nil {
		m.log.Warn("persisting refreshed tokens failed", "error", err)
	}
	return resp.User, true
}

// persistTokens writes the pair to the credential store. An empty refresh
// token leaves the stored one in place (the identity service does not always
// rotate it).
func (m *Manager) persistTokens(access, refresh string) error {
	if err := m.store.Save(keystore.AccessTokenKey, access); err != nil {
		return err
	}
	if refresh != "" {
		if err := m.store.Save(keystore.RefreshTokenKey, refresh); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) setAuthenticated(user *User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.User = user
	m.state.IsAuthenticated = true
}

func (m *Manager) setUnauthenticated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.User = nil
	m.state.IsAuthenticated = false
	m.state.IsLoading = false
}

func (m *Manager) endLoading() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.IsLoading = false
}

func (m *Manager) clearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.LastError = ""
}

// fail records and returns a user-facing failure message without touching
// the authentication state.
func (m *Manager) fail(message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.LastError = message
	return errors.New(message)
}
