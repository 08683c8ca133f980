package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/studysync/internal/client/client"
	"github.com/dmitrijs2005/studysync/internal/client/identity"
	"github.com/dmitrijs2005/studysync/internal/client/models"
	"github.com/dmitrijs2005/studysync/internal/common"
	"github.com/dmitrijs2005/studysync/internal/logging"
)

// SessionState is the authentication lifecycle state of an AuthService.
type SessionState int

const (
	// StateUninitialized means the provider has not reported an identity yet.
	StateUninitialized SessionState = iota
	StateSignedOut
	// StateProfileLoading: signed in, backend profile being fetched.
	StateProfileLoading
	// StateProfileReady: signed in with a profile.
	StateProfileReady
	// StateProfileFailed: signed in, but the last profile fetch failed for a
	// reason other than a rejected token. RefreshProfile retries it.
	StateProfileFailed
)

func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSignedOut:
		return "signed-out"
	case StateProfileLoading:
		return "signed-in(profile-loading)"
	case StateProfileReady:
		return "signed-in(profile-ready)"
	case StateProfileFailed:
		return "signed-in(profile-failed)"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Session is a point-in-time view of an AuthService.
type Session struct {
	State     SessionState
	Principal *models.Principal
	Profile   *models.Profile
}

// TokenSource hands out bearer tokens. An empty token means nobody is
// signed in.
type TokenSource interface {
	Token(ctx context.Context) string
}

const defaultProfileTimeout = 15 * time.Second

// AuthService is the session owner. It holds exactly one provider
// subscription from construction until Close.
type AuthService struct {
	provider identity.Provider
	api      client.Client
	log      logging.Logger

	profileTimeout time.Duration

	mu         sync.Mutex
	state      SessionState
	principal  *models.Principal
	profile    *models.Profile
	profileErr error
	gen        uint64

	listeners  map[int]func(Session)
	nextListen int

	closeOnce   sync.Once
	unsubscribe func()
}

var _ TokenSource = (*AuthService)(nil)

// NewAuthService subscribes to provider identity changes. The service stays
// uninitialized until the provider reports the first identity, normally from
// identity.Provider.Restore.
func NewAuthService(provider identity.Provider, api client.Client, log logging.Logger) *AuthService {
	if log == nil {
		log = logging.Nop()
	}
	s := &AuthService{
		provider:       provider,
		api:            api,
		log:            log.With("component", "auth"),
		profileTimeout: defaultProfileTimeout,
		listeners:      make(map[int]func(Session)),
	}
	s.unsubscribe = provider.Subscribe(s.onIdentityChanged)
	return s
}

// Close releases the provider subscription. It is safe to call twice.
func (s *AuthService) Close() {
	s.closeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
	})
}

// onIdentityChanged is the provider callback. A new principal clears the
// cached profile and fetches it again.
func (s *AuthService) onIdentityChanged(p *models.Principal) {
	s.mu.Lock()
	if p == nil {
		if s.principal == nil && s.state == StateSignedOut {
			s.mu.Unlock()
			return
		}
		s.gen++
		s.principal, s.profile, s.profileErr = nil, nil, nil
		s.state = StateSignedOut
		s.mu.Unlock()
		s.log.Info(context.Background(), "signed out")
		s.emit()
		return
	}

	s.gen++
	cp := *p
	s.principal = &cp
	s.profile, s.profileErr = nil, nil
	s.state = StateProfileLoading
	gen := s.gen
	s.mu.Unlock()
	s.emit()

	ctx, cancel := context.WithTimeout(context.Background(), s.profileTimeout)
	defer cancel()
	s.log.Info(ctx, "identity changed, loading profile", "principal", cp.ID)
	_ = s.fetchProfile(ctx, gen)
}

// fetchProfile loads the profile for generation gen. Results for an older
// generation are dropped. A 401 ends the session.
func (s *AuthService) fetchProfile(ctx context.Context, gen uint64) error {
	tok := s.Token(ctx)
	if tok == "" {
		s.mu.Lock()
		stale := s.gen != gen || s.principal == nil
		if !stale {
			s.profileErr = common.ErrUnauthenticated
			s.state = StateProfileFailed
		}
		s.mu.Unlock()
		if !stale {
			s.emit()
		}
		return common.ErrUnauthenticated
	}

	prof, err := s.api.Me(client.WithBearerToken(ctx, tok))

	s.mu.Lock()
	if s.gen != gen || s.principal == nil {
		s.mu.Unlock()
		return err
	}
	if err != nil {
		if errors.Is(err, common.ErrUnauthenticated) {
			s.gen++
			s.principal, s.profile, s.profileErr = nil, nil, nil
			s.state = StateSignedOut
			s.mu.Unlock()

			s.log.Warn(ctx, "profile fetch rejected the token, signing out", "error", err)
			s.provider.SignOut()
			s.emit()
			return err
		}
		s.profileErr = err
		s.state = StateProfileFailed
		s.mu.Unlock()

		s.log.Error(ctx, "profile fetch failed", "error", err)
		s.emit()
		return err
	}

	s.profile = prof
	s.profileErr = nil
	s.state = StateProfileReady
	s.mu.Unlock()
	s.emit()
	return nil
}

// Login signs in with email and password. On success the profile has been
// fetched (or has failed) by the time it returns. If the backend rejects the
// new session, ErrUnauthenticated is returned.
func (s *AuthService) Login(ctx context.Context, email, password string) error {
	if _, err := s.provider.SignIn(ctx, email, password); err != nil {
		return err
	}
	if s.Principal() == nil {
		return common.ErrUnauthenticated
	}
	return nil
}

// LoginWithProvider runs the provider's interactive sign-in. A cancelled
// flow is not an error and leaves the session unchanged.
func (s *AuthService) LoginWithProvider(ctx context.Context) error {
	_, err := s.provider.SignInInteractive(ctx)
	if errors.Is(err, identity.ErrFlowCancelled) {
		s.log.Debug(ctx, "interactive sign-in cancelled")
		return nil
	}
	return err
}

// Register creates the provider account, sets its display name and reloads
// the profile the backend provisions on first contact.
func (s *AuthService) Register(ctx context.Context, email, password, displayName string) error {
	if _, err := s.provider.SignUp(ctx, email, password); err != nil {
		return err
	}

	if displayName != "" {
		if err := s.provider.UpdateDisplayName(ctx, displayName); err != nil {
			return fmt.Errorf("set display name: %w", err)
		}
		s.mu.Lock()
		if s.principal != nil {
			s.principal.DisplayName = displayName
		}
		s.mu.Unlock()
	}

	return s.RefreshProfile(ctx)
}

// Logout clears principal and profile at once and signs the provider out.
func (s *AuthService) Logout() {
	s.mu.Lock()
	s.gen++
	s.principal, s.profile, s.profileErr = nil, nil, nil
	s.state = StateSignedOut
	s.mu.Unlock()

	s.provider.SignOut()
	s.emit()
}

// Token returns a bearer token for the current principal, or "" when nobody
// is signed in or the provider cannot issue one. Without a principal no
// network call is made.
func (s *AuthService) Token(ctx context.Context) string {
	s.mu.Lock()
	signedIn := s.principal != nil
	s.mu.Unlock()
	if !signedIn {
		return ""
	}

	tok, err := s.provider.IDToken(ctx)
	if err != nil {
		s.log.Warn(ctx, "token unavailable", "error", err)
		return ""
	}
	return tok
}

// CompleteProfile sends the profile-completion form and replaces the cached
// profile with the backend's answer. Errors are ErrUnauthenticated,
// ErrValidation or ErrServer (possibly wrapping ErrNetwork).
func (s *AuthService) CompleteProfile(ctx context.Context, data models.ProfileUpdate) (*models.Profile, error) {
	if data.Role != "" && !data.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrValidation, data.Role)
	}

	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	tok := s.Token(ctx)
	if tok == "" {
		return nil, common.ErrUnauthenticated
	}

	prof, err := s.api.CompleteProfile(client.WithBearerToken(ctx, tok), data)
	if err != nil {
		if errors.Is(err, common.ErrUnauthenticated) || errors.Is(err, common.ErrValidation) || errors.Is(err, common.ErrServer) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: complete profile: %w", common.ErrServer, err)
	}

	s.mu.Lock()
	if s.gen == gen && s.principal != nil {
		s.profile = prof
		s.profileErr = nil
		s.state = StateProfileReady
	}
	s.mu.Unlock()
	s.emit()

	out := *prof
	return &out, nil
}

// RefreshProfile fetches the profile again. Without a principal it does
// nothing.
func (s *AuthService) RefreshProfile(ctx context.Context) error {
	s.mu.Lock()
	if s.principal == nil {
		s.mu.Unlock()
		return nil
	}
	if s.profile == nil {
		s.state = StateProfileLoading
	}
	gen := s.gen
	s.mu.Unlock()

	return s.fetchProfile(ctx, gen)
}

// ResetPassword asks the provider to send a password-reset email.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	return s.provider.SendPasswordReset(ctx, email)
}

// State returns the current lifecycle state.
func (s *AuthService) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Principal returns a copy of the signed-in principal, or nil.
func (s *AuthService) Principal() *models.Principal {
	return s.Snapshot().Principal
}

// Profile returns a copy of the cached profile, or nil.
func (s *AuthService) Profile() *models.Profile {
	return s.Snapshot().Profile
}

// ProfileError returns the error of the last failed profile fetch.
func (s *AuthService) ProfileError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileErr
}

// NeedsProfileCompletion reports whether a loaded profile still lacks the
// completion form.
func (s *AuthService) NeedsProfileCompletion() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateProfileReady && s.profile != nil && !s.profile.ProfileComplete
}

// Snapshot returns a copy of the session state.
func (s *AuthService) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *AuthService) snapshotLocked() Session {
	out := Session{State: s.state}
	if s.principal != nil {
		p := *s.principal
		out.Principal = &p
	}
	if s.profile != nil {
		p := *s.profile
		out.Profile = &p
	}
	return out
}

// Subscribe registers fn for session changes and returns its cancel func.
// fn is called outside the service lock.
func (s *AuthService) Subscribe(fn func(Session)) func() {
	s.mu.Lock()
	id := s.nextListen
	s.nextListen++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *AuthService) emit() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	fns := make([]func(Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
