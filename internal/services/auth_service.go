package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"gitpilot/internal/apiclient"
	"gitpilot/internal/events"
	"gitpilot/internal/models"
	"gitpilot/internal/session"
)

// AuthState is the lifecycle state of the session controller.
type AuthState string

const (
	StateUninitialized   AuthState = "uninitialized"
	StateChecking        AuthState = "checking"
	StateAuthenticated   AuthState = "authenticated"
	StateUnauthenticated AuthState = "unauthenticated"
	StateHandshake       AuthState = "handshake"
)

// authTransitions defines every valid state change. Anything outside the
// table is a programming error and is rejected.
var authTransitions = map[AuthState][]AuthState{
	StateUninitialized:   {StateChecking},
	StateChecking:        {StateAuthenticated, StateUnauthenticated},
	StateUnauthenticated: {StateHandshake, StateChecking},
	StateHandshake:       {StateAuthenticated, StateUnauthenticated},
	StateAuthenticated:   {StateUnauthenticated},
}

// AuthSnapshot is what the frontend renders: the current state, the
// signed-in user when authenticated, and the last handshake error.
type AuthSnapshot struct {
	State AuthState           `json:"state"`
	User  *models.UserProfile `json:"user,omitempty"`
	Error string              `json:"error,omitempty"`
}

// AuthService establishes and maintains a single valid (token, user)
// pair and gates the rest of the application behind it.
type AuthService struct {
	ctx   context.Context
	api   *apiclient.Client
	store session.Store

	mu         sync.Mutex
	state      AuthState
	sess       *models.Session
	oauthState string
	lastError  string

	onLogout []func()

	// openURL opens the system browser; swapped out in tests.
	openURL func(ctx context.Context, url string)
}

func NewAuthService(api *apiclient.Client, store session.Store) *AuthService {
	s := &AuthService{
		api:   api,
		store: store,
		state: StateUninitialized,
		openURL: func(ctx context.Context, url string) {
			runtime.BrowserOpenURL(ctx, url)
		},
	}
	api.TokenSource = s.Token
	return s
}

func (s *AuthService) Startup(ctx context.Context) {
	s.ctx = ctx
}

// OnLogout registers a hook run whenever the session ends. Dependents
// use it to discard repository selection and the chat transcript.
func (s *AuthService) OnLogout(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLogout = append(s.onLogout, f)
}

// Token returns the current access token, or "" with no session.
func (s *AuthService) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return ""
	}
	return s.sess.AccessToken
}

// Snapshot returns the current state for rendering.
func (s *AuthService) Snapshot() AuthSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := AuthSnapshot{State: s.state, Error: s.lastError}
	if s.sess != nil {
		user := s.sess.User
		snap.User = &user
	}
	return snap
}

// transition moves to next if the table allows it.
func (s *AuthService) transition(next AuthState) error {
	for _, allowed := range authTransitions[s.state] {
		if allowed == next {
			s.state = next
			return nil
		}
	}
	return fmt.Errorf("invalid auth transition: %q -> %q", s.state, next)
}

func (s *AuthService) emitState() {
	if s.ctx == nil {
		return
	}
	events.Emit(s.ctx, events.AuthStateChanged, events.NewInfo(string(s.state)))
}

// Bootstrap validates any previously stored token on launch. Every
// failure path - missing session, network error, explicit rejection -
// degrades to the unauthenticated state with cleared storage; it never
// fails open and never returns an error to the caller.
func (s *AuthService) Bootstrap(ctx context.Context) AuthSnapshot {
	s.mu.Lock()
	if err := s.transition(StateChecking); err != nil {
		snap := AuthSnapshot{State: s.state, Error: s.lastError}
		s.mu.Unlock()
		return snap
	}
	s.mu.Unlock()

	stored, err := s.store.Load()
	if err != nil || stored == nil {
		return s.settleUnauthenticated("")
	}

	user, ok, err := s.api.ValidateToken(ctx, stored.AccessToken)
	if err != nil || !ok {
		// Stale or unverifiable token: clear it so the next launch
		// goes straight to the login surface.
		if clearErr := s.store.Clear(); clearErr != nil && s.ctx != nil {
			runtime.LogWarning(s.ctx, "auth: failed to clear stored session: "+clearErr.Error())
		}
		return s.settleUnauthenticated("")
	}

	stored.User = *user
	s.mu.Lock()
	s.sess = stored
	s.lastError = ""
	_ = s.transition(StateAuthenticated)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.emitState()
	return snap
}

func (s *AuthService) snapshotLocked() AuthSnapshot {
	snap := AuthSnapshot{State: s.state, Error: s.lastError}
	if s.sess != nil {
		user := s.sess.User
		snap.User = &user
	}
	return snap
}

func (s *AuthService) settleUnauthenticated(reason string) AuthSnapshot {
	s.mu.Lock()
	s.sess = nil
	s.lastError = reason
	_ = s.transition(StateUnauthenticated)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.emitState()
	return snap
}

// Mode reports which handshake strategy the server has configured.
func (s *AuthService) Mode(ctx context.Context) (*models.AuthMode, error) {
	return s.api.AuthStatus(ctx)
}

// BeginOAuth starts the redirect flow: fetch the authorization URL and
// state nonce, remember the nonce, and open the system browser.
func (s *AuthService) BeginOAuth(ctx context.Context) error {
	authURL, state, err := s.api.AuthorizationURL(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.state == StateUnauthenticated {
		if err := s.transition(StateHandshake); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.oauthState = state
	s.mu.Unlock()

	s.openURL(ctx, authURL)
	return nil
}

// CompleteOAuth finishes the redirect flow with the code/state pair from
// the callback. The state nonce is enforced strictly: a mismatch rejects
// the exchange outright.
func (s *AuthService) CompleteOAuth(ctx context.Context, code, state string) (AuthSnapshot, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return s.Snapshot(), errors.New("authorization code is required")
	}

	s.mu.Lock()
	expected := s.oauthState
	s.oauthState = ""
	s.mu.Unlock()

	if expected == "" || state != expected {
		snap := s.settleUnauthenticated("authorization state mismatch")
		return snap, errors.New("authorization state mismatch")
	}

	sess, err := s.api.ExchangeCode(ctx, code, state)
	if err != nil {
		snap := s.settleUnauthenticated(err.Error())
		return snap, err
	}
	return s.AdoptSession(sess)
}

// SubmitToken adopts a manually pasted personal access token after
// server-side validation.
func (s *AuthService) SubmitToken(ctx context.Context, token string) (AuthSnapshot, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.Snapshot(), errors.New("token is required")
	}

	s.mu.Lock()
	if s.state == StateUnauthenticated {
		if err := s.transition(StateHandshake); err != nil {
			s.mu.Unlock()
			return s.Snapshot(), err
		}
	}
	s.mu.Unlock()

	user, ok, err := s.api.ValidateToken(ctx, token)
	if err != nil {
		snap := s.settleUnauthenticated(err.Error())
		return snap, err
	}
	if !ok {
		snap := s.settleUnauthenticated("token was rejected")
		return snap, errors.New("token was rejected")
	}
	return s.AdoptSession(&models.Session{AccessToken: token, User: *user})
}

// BeginHandshake marks an authorization attempt as in flight. States
// other than unauthenticated are left alone so a retried handshake does
// not trip the transition table.
func (s *AuthService) BeginHandshake() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateUnauthenticated {
		return s.transition(StateHandshake)
	}
	return nil
}

// AbandonHandshake returns to unauthenticated when an authorization
// attempt ends without a session. No-op outside the handshake state.
func (s *AuthService) AbandonHandshake(reason string) {
	s.mu.Lock()
	inHandshake := s.state == StateHandshake
	s.mu.Unlock()
	if inHandshake {
		s.settleUnauthenticated(reason)
	}
}

// AdoptSession persists a freshly obtained session and transitions to
// authenticated. Used by every handshake strategy, including the device
// flow poller. The transition is validated before anything is stored so
// a rejected adoption leaves no live token behind.
func (s *AuthService) AdoptSession(sess *models.Session) (AuthSnapshot, error) {
	if sess == nil || sess.AccessToken == "" {
		return s.Snapshot(), errors.New("session with access token is required")
	}
	sess.CreatedAt = time.Now()

	s.mu.Lock()
	if s.state != StateAuthenticated {
		if err := s.transition(StateAuthenticated); err != nil {
			snap := s.snapshotLocked()
			s.mu.Unlock()
			return snap, err
		}
	}
	if err := s.store.Save(sess); err != nil {
		s.mu.Unlock()
		snap := s.settleUnauthenticated(err.Error())
		return snap, fmt.Errorf("persist session: %w", err)
	}
	s.sess = sess
	s.lastError = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.emitState()
	return snap, nil
}

// Logout clears stored credentials and returns to unauthenticated,
// discarding dependent in-memory state through the registered hooks.
func (s *AuthService) Logout() AuthSnapshot {
	if err := s.store.Clear(); err != nil && s.ctx != nil {
		runtime.LogWarning(s.ctx, "auth: failed to clear stored session: "+err.Error())
	}

	s.mu.Lock()
	hooks := make([]func(), len(s.onLogout))
	copy(hooks, s.onLogout)
	s.mu.Unlock()
	for _, hook := range hooks {
		hook()
	}

	return s.settleUnauthenticated("")
}
