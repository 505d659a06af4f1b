// Package client provides the NutriTrack API client session manager. It
// attaches bearer credentials to outgoing requests, refreshes the access
// token before it expires, coalesces concurrent refresh attempts into a
// single network call and retries a request exactly once after a 401.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized is returned when the session is gone for good: the refresh
// token itself was rejected and all cached credentials have been cleared.
// Callers should redirect to re-authentication.
var ErrUnauthorized = errors.New("client: session unauthorized")

// Session is the cached credential pair.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// CredentialStore is the durable storage the session manager keeps its
// session in. Load returns (nil, nil) when no session is cached.
type CredentialStore interface {
	Load() (*Session, error)
	Save(*Session) error
	Clear() error
}

// CookieMirror mirrors the access token into a request-visible cookie used
// for server-side route gating. Implementations are optional.
type CookieMirror interface {
	Set(accessToken string)
	Clear()
}

// MemoryStore is an in-memory CredentialStore, useful in tests and CLI
// sessions that do not outlive the process.
type MemoryStore struct {
	mu   sync.Mutex
	sess *Session
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess == nil {
		return nil, nil
	}
	copied := *s.sess
	return &copied, nil
}

func (s *MemoryStore) Save(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *sess
	s.sess = &copied
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	return nil
}

// refreshCall is one in-flight refresh attempt. Every concurrent caller that
// finds the slot occupied awaits done and observes the same outcome.
type refreshCall struct {
	done chan struct{}
	sess *Session
	err  error
}

// SessionManager owns the process-wide session state for one API base URL.
// Construct isolated instances in tests; there are no package-level globals.
type SessionManager struct {
	baseURL string
	http    *http.Client
	store   CredentialStore
	mirror  CookieMirror
	skew    time.Duration

	mu       sync.Mutex
	inflight *refreshCall
}

type Option func(*SessionManager)

func WithHTTPClient(c *http.Client) Option {
	return func(m *SessionManager) { m.http = c }
}

func WithCookieMirror(mirror CookieMirror) Option {
	return func(m *SessionManager) { m.mirror = mirror }
}

// WithRefreshSkew overrides the proactive-refresh horizon: a token expiring
// within the skew is treated as already expired.
func WithRefreshSkew(skew time.Duration) Option {
	return func(m *SessionManager) { m.skew = skew }
}

func New(baseURL string, store CredentialStore, opts ...Option) *SessionManager {
	m := &SessionManager{
		baseURL: baseURL,
		http:    http.DefaultClient,
		store:   store,
		skew:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Do sends a request with the cached access token attached. Before sending
// it proactively refreshes an access token that is about to expire; after a
// 401 it refreshes reactively and retries the request exactly once. A second
// 401 is returned to the caller as-is.
func (m *SessionManager) Do(req *http.Request) (*http.Response, error) {
	sess, err := m.store.Load()
	if err != nil || sess == nil || sess.AccessToken == "" {
		// No cached session: send unauthenticated.
		return m.http.Do(req)
	}

	access := sess.AccessToken
	if m.expiringSoon(access) {
		if refreshed, rerr := m.refresh(); rerr == nil {
			access = refreshed.AccessToken
		}
		// On failure, proceed with the stale token; the request will 401
		// and take the reactive path below.
	}

	req.Header.Set("Authorization", "Bearer "+access)
	resp, err := m.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || sess.RefreshToken == "" {
		return resp, nil
	}

	refreshed, rerr := m.refresh()
	if rerr != nil {
		// The refresh is terminal or the network failed; surface the 401.
		return resp, nil
	}

	retry, ok := m.cloneForRetry(req)
	if !ok {
		return resp, nil
	}
	resp.Body.Close()

	retry.Header.Set("Authorization", "Bearer "+refreshed.AccessToken)
	return m.http.Do(retry)
}

// cloneForRetry rebuilds the request for the single retry. Requests with a
// body can only be retried when GetBody allows replaying it.
func (m *SessionManager) cloneForRetry(req *http.Request) (*http.Request, bool) {
	retry := req.Clone(req.Context())
	if req.Body == nil {
		return retry, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	retry.Body = body
	return retry, true
}

// expiringSoon reads the access token's expiry claim without verifying the
// signature; the client cannot verify, only read. Unparseable tokens are
// treated as expired so they get refreshed rather than sent forever.
func (m *SessionManager) expiringSoon(accessToken string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Until(claims.ExpiresAt.Time) <= m.skew
}

// refresh coalesces concurrent refresh attempts: the first caller to find
// the slot empty performs the network call, everyone else awaits the same
// shared result. The slot is cleared when the call settles, so the next
// expiry triggers a fresh attempt. The attempt is never cancelled; it runs
// to completion and all waiters observe its outcome.
func (m *SessionManager) refresh() (*Session, error) {
	m.mu.Lock()
	if call := m.inflight; call != nil {
		m.mu.Unlock()
		<-call.done
		return call.sess, call.err
	}
	call := &refreshCall{done: make(chan struct{})}
	m.inflight = call
	m.mu.Unlock()

	call.sess, call.err = m.doRefresh()

	m.mu.Lock()
	m.inflight = nil
	m.mu.Unlock()
	close(call.done)

	return call.sess, call.err
}

// doRefresh performs the actual token exchange. A 401/403 from the refresh
// endpoint is terminal: cached state and the mirrored cookie are cleared
// here, inside the single coalesced call, so the clearing happens exactly
// once no matter how many requests discovered the failure together.
func (m *SessionManager) doRefresh() (*Session, error) {
	sess, err := m.store.Load()
	if err != nil || sess == nil || sess.RefreshToken == "" {
		return nil, ErrUnauthorized
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": sess.RefreshToken})
	if err != nil {
		return nil, err
	}

	resp, err := m.http.Post(m.baseURL+"/auth/refresh", "application/json", bytes.NewReader(payload))
	if err != nil {
		// Network failure: keep the session, a later expiry retries.
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		refreshed := &Session{}
		if err := json.NewDecoder(resp.Body).Decode(refreshed); err != nil {
			return nil, err
		}
		if err := m.store.Save(refreshed); err != nil {
			return nil, err
		}
		if m.mirror != nil {
			m.mirror.Set(refreshed.AccessToken)
		}
		return refreshed, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		m.store.Clear()
		if m.mirror != nil {
			m.mirror.Clear()
		}
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("client: refresh failed with status %d", resp.StatusCode)
	}
}

// Login authenticates against the API and caches the returned session.
func (m *SessionManager) Login(email, password string) (*Session, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	resp, err := m.http.Post(m.baseURL+"/auth/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("client: login failed with status %d", resp.StatusCode)
	}

	var body struct {
		Tokens Session `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if err := m.store.Save(&body.Tokens); err != nil {
		return nil, err
	}
	if m.mirror != nil {
		m.mirror.Set(body.Tokens.AccessToken)
	}
	return &body.Tokens, nil
}

// Logout revokes the cached refresh token and clears all session state. It
// is safe to call with no cached session.
func (m *SessionManager) Logout() error {
	sess, err := m.store.Load()
	if err == nil && sess != nil && sess.RefreshToken != "" {
		payload, merr := json.Marshal(map[string]string{"refreshToken": sess.RefreshToken})
		if merr == nil {
			if resp, perr := m.http.Post(m.baseURL+"/auth/logout", "application/json", bytes.NewReader(payload)); perr == nil {
				resp.Body.Close()
			}
		}
	}

	if m.mirror != nil {
		m.mirror.Clear()
	}
	return m.store.Clear()
}
