package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/studysync/internal/client/models"
	"github.com/dmitrijs2005/studysync/internal/common"
	"github.com/dmitrijs2005/studysync/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Default endpoints of the hosted provider.
const (
	DefaultIdentityBaseURL = "https://identitytoolkit.googleapis.com/v1"
	DefaultTokenBaseURL    = "https://securetoken.googleapis.com/v1"
)

// tokens are refreshed when they expire within this window.
const refreshSkew = time.Minute

type session struct {
	principal    models.Principal
	idToken      string
	refreshToken string
	expiresAt    time.Time
}

// ToolkitConfig configures a Toolkit provider.
type ToolkitConfig struct {
	APIKey          string
	IdentityBaseURL string
	TokenBaseURL    string
	HTTPClient      *http.Client
	Store           SessionStore
	Flow            InteractiveFlow
	Logger          logging.Logger
}

// Toolkit is a Provider speaking the Identity Toolkit REST protocol.
// It is safe for concurrent use.
type Toolkit struct {
	apiKey       string
	identityBase string
	tokenBase    string
	http         *http.Client
	store        SessionStore
	flow         InteractiveFlow
	log          logging.Logger
	now          func() time.Time

	mu      sync.Mutex
	sess    *session
	gen     uint64
	subs    map[int]Listener
	nextSub int
}

var _ Provider = (*Toolkit)(nil)

// NewToolkit builds a provider from cfg, filling in default endpoints.
func NewToolkit(cfg ToolkitConfig) *Toolkit {
	t := &Toolkit{
		apiKey:       cfg.APIKey,
		identityBase: strings.TrimRight(cfg.IdentityBaseURL, "/"),
		tokenBase:    strings.TrimRight(cfg.TokenBaseURL, "/"),
		http:         cfg.HTTPClient,
		store:        cfg.Store,
		flow:         cfg.Flow,
		log:          cfg.Logger,
		now:          time.Now,
		subs:         make(map[int]Listener),
	}
	if t.identityBase == "" {
		t.identityBase = DefaultIdentityBaseURL
	}
	if t.tokenBase == "" {
		t.tokenBase = DefaultTokenBaseURL
	}
	if t.http == nil {
		t.http = &http.Client{Timeout: 30 * time.Second}
	}
	if t.log == nil {
		t.log = logging.Nop()
	}
	return t
}

// authResponse covers the accounts:* sign-in style responses.
type authResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
}

// refreshResponse is the Secure Token exchange response.
type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

func (t *Toolkit) accountsURL(method string) string {
	return t.identityBase + "/accounts:" + method + "?key=" + url.QueryEscape(t.apiKey)
}

func (t *Toolkit) post(ctx context.Context, target string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return fmt.Errorf("build provider request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := t.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: identity provider: %v", common.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: identity provider: %v", common.ErrNetwork, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseProviderError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode provider response: %v", common.ErrServer, err)
	}
	return nil
}

func (t *Toolkit) postJSON(ctx context.Context, method string, in, out any) error {
	buf, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return t.post(ctx, t.accountsURL(method), bytes.NewReader(buf), "application/json", out)
}

// SignIn authenticates with email and password.
func (t *Toolkit) SignIn(ctx context.Context, email, password string) (*models.Principal, error) {
	var resp authResponse
	err := t.postJSON(ctx, "signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return t.establish(ctx, resp)
}

// SignUp creates a password account and signs it in.
func (t *Toolkit) SignUp(ctx context.Context, email, password string) (*models.Principal, error) {
	var resp authResponse
	err := t.postJSON(ctx, "signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return t.establish(ctx, resp)
}

// SignInInteractive runs the configured InteractiveFlow and exchanges its
// credential with signInWithIdp.
func (t *Toolkit) SignInInteractive(ctx context.Context) (*models.Principal, error) {
	if t.flow == nil {
		return nil, fmt.Errorf("%w: no interactive sign-in flow configured", common.ErrValidation)
	}
	postBody, requestURI, err := t.flow.Credential(ctx)
	if err != nil {
		return nil, err
	}

	var resp authResponse
	err = t.postJSON(ctx, "signInWithIdp", map[string]any{
		"postBody":          postBody,
		"requestUri":        requestURI,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return t.establish(ctx, resp)
}

// UpdateDisplayName changes the display name of the signed-in account.
// Subscribers are not notified; identity changes only on sign-in and out.
func (t *Toolkit) UpdateDisplayName(ctx context.Context, name string) error {
	tok, err := t.IDToken(ctx)
	if err != nil {
		return err
	}

	var resp authResponse
	err = t.postJSON(ctx, "update", map[string]any{
		"idToken":           tok,
		"displayName":       name,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.sess != nil {
		t.sess.principal.DisplayName = name
		if resp.IDToken != "" {
			t.sess.idToken = resp.IDToken
			t.sess.expiresAt = t.expiry(resp.ExpiresIn, resp.IDToken)
		}
		if resp.RefreshToken != "" {
			t.sess.refreshToken = resp.RefreshToken
		}
	}
	t.mu.Unlock()
	return nil
}

// SendPasswordReset asks the provider to email a password-reset link.
func (t *Toolkit) SendPasswordReset(ctx context.Context, email string) error {
	return t.postJSON(ctx, "sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
}

// SignOut drops the local session and the persisted refresh token. No
// network call is made.
func (t *Toolkit) SignOut() {
	t.mu.Lock()
	had := t.sess != nil
	t.sess = nil
	t.gen++
	t.mu.Unlock()

	if t.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := t.store.Clear(ctx); err != nil {
			t.log.Warn(ctx, "clear persisted session", "error", err)
		}
		cancel()
	}
	if had {
		t.notify(nil)
	}
}

// Current returns a copy of the signed-in principal, or nil.
func (t *Toolkit) Current() *models.Principal {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sess == nil {
		return nil
	}
	p := t.sess.principal
	return &p
}

// IDToken returns the current ID token, exchanging the refresh token first
// when the ID token is missing or about to expire. A refresh rejected by the
// provider ends the session.
func (t *Toolkit) IDToken(ctx context.Context) (string, error) {
	t.mu.Lock()
	if t.sess == nil {
		t.mu.Unlock()
		return "", ErrNoSession
	}
	if t.sess.idToken != "" && t.now().Add(refreshSkew).Before(t.sess.expiresAt) {
		tok := t.sess.idToken
		t.mu.Unlock()
		return tok, nil
	}
	refresh, gen := t.sess.refreshToken, t.gen
	t.mu.Unlock()

	resp, err := t.exchange(ctx, refresh)
	if err != nil {
		if errors.Is(err, common.ErrUnauthenticated) || errors.Is(err, common.ErrAccountDisabled) {
			t.log.Info(ctx, "refresh token rejected, signing out", "error", err)
			t.SignOut()
		}
		return "", err
	}

	t.mu.Lock()
	if t.sess == nil || t.gen != gen {
		t.mu.Unlock()
		return "", ErrNoSession
	}
	t.sess.idToken = resp.IDToken
	t.sess.refreshToken = resp.RefreshToken
	t.sess.expiresAt = t.expiry(resp.ExpiresIn, resp.IDToken)
	t.mu.Unlock()

	t.persist(ctx, resp.RefreshToken)
	return resp.IDToken, nil
}

// Subscribe registers fn for identity changes.
func (t *Toolkit) Subscribe(fn Listener) func() {
	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = fn
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}
}

// Restore signs the persisted session back in. Subscribers are notified
// exactly once: with the restored principal, or with nil when there is no
// usable session. Network failures keep the persisted token for the next run.
func (t *Toolkit) Restore(ctx context.Context) error {
	if t.store == nil {
		t.notify(nil)
		return nil
	}

	refresh, err := t.store.Load(ctx)
	if err != nil || refresh == "" {
		t.notify(nil)
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		return nil
	}

	resp, err := t.exchange(ctx, refresh)
	if err != nil {
		if errors.Is(err, common.ErrUnauthenticated) || errors.Is(err, common.ErrAccountDisabled) {
			if cerr := t.store.Clear(ctx); cerr != nil {
				t.log.Warn(ctx, "clear rejected session", "error", cerr)
			}
		}
		t.notify(nil)
		return fmt.Errorf("restore session: %w", err)
	}

	claims := parseClaims(resp.IDToken)
	p := models.Principal{ID: firstNonEmpty(resp.UserID, claims.UserID), Email: claims.Email, DisplayName: claims.Name}

	t.mu.Lock()
	t.gen++
	t.sess = &session{
		principal:    p,
		idToken:      resp.IDToken,
		refreshToken: resp.RefreshToken,
		expiresAt:    t.expiry(resp.ExpiresIn, resp.IDToken),
	}
	t.mu.Unlock()

	t.persist(ctx, resp.RefreshToken)
	t.notify(&p)
	return nil
}

func (t *Toolkit) exchange(ctx context.Context, refresh string) (*refreshResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refresh)

	var resp refreshResponse
	target := t.tokenBase + "/token?key=" + url.QueryEscape(t.apiKey)
	if err := t.post(ctx, target, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &resp); err != nil {
		return nil, err
	}
	if resp.IDToken == "" {
		return nil, fmt.Errorf("%w: token exchange returned no id token", common.ErrServer)
	}
	return &resp, nil
}

// establish installs a fresh session from a sign-in response and notifies
// subscribers.
func (t *Toolkit) establish(ctx context.Context, resp authResponse) (*models.Principal, error) {
	if resp.IDToken == "" {
		return nil, fmt.Errorf("%w: sign-in returned no id token", common.ErrServer)
	}
	claims := parseClaims(resp.IDToken)
	p := models.Principal{
		ID:          firstNonEmpty(resp.LocalID, claims.UserID),
		Email:       firstNonEmpty(resp.Email, claims.Email),
		DisplayName: firstNonEmpty(resp.DisplayName, claims.Name),
	}

	t.mu.Lock()
	t.gen++
	t.sess = &session{
		principal:    p,
		idToken:      resp.IDToken,
		refreshToken: resp.RefreshToken,
		expiresAt:    t.expiry(resp.ExpiresIn, resp.IDToken),
	}
	t.mu.Unlock()

	t.persist(ctx, resp.RefreshToken)
	t.notify(&p)

	out := p
	return &out, nil
}

func (t *Toolkit) persist(ctx context.Context, refresh string) {
	if t.store == nil || refresh == "" {
		return
	}
	if err := t.store.Save(ctx, refresh); err != nil {
		t.log.Warn(ctx, "persist session", "error", err)
	}
}

// notify calls every listener with its own copy of p, outside the lock.
func (t *Toolkit) notify(p *models.Principal) {
	t.mu.Lock()
	ls := make([]Listener, 0, len(t.subs))
	for _, fn := range t.subs {
		ls = append(ls, fn)
	}
	t.mu.Unlock()

	for _, fn := range ls {
		if p == nil {
			fn(nil)
			continue
		}
		cp := *p
		fn(&cp)
	}
}

// expiry prefers the expiresIn seconds field and falls back to the exp claim.
func (t *Toolkit) expiry(expiresIn, idToken string) time.Time {
	if secs, err := strconv.Atoi(expiresIn); err == nil && secs > 0 {
		return t.now().Add(time.Duration(secs) * time.Second)
	}
	if c := parseClaims(idToken); !c.Expires.IsZero() {
		return c.Expires
	}
	return t.now()
}

type tokenClaims struct {
	UserID  string
	Email   string
	Name    string
	Expires time.Time
}

// parseClaims reads identity claims from an ID token without verifying its
// signature. The backend verifies tokens; the client only needs the fields.
func parseClaims(idToken string) tokenClaims {
	var out tokenClaims
	if idToken == "" {
		return out
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return out
	}

	out.UserID, _ = claims["user_id"].(string)
	if out.UserID == "" {
		out.UserID, _ = claims.GetSubject()
	}
	out.Email, _ = claims["email"].(string)
	out.Name, _ = claims["name"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.Expires = exp.Time
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
