// Package superset provides an authenticated client and idempotent resource
// reconciliation against a Superset-compatible dashboard backend.
package superset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

// API paths used by the session itself. Resource paths live on Kind.
const (
	loginPagePath = "/login/"
	loginPath     = "/api/v1/security/login"
	csrfPath      = "/api/v1/security/csrf_token/"
)

const defaultTimeout = 30 * time.Second

// Config holds the connection settings for a backend session.
type Config struct {
	BaseURL  string
	Username string
	Password string

	// Timeout applies per round trip. Zero means the default.
	Timeout time.Duration

	// Logger receives diagnostic output. Nil discards.
	Logger *slog.Logger
}

// Session is an authenticated connection to the dashboard backend. It carries
// the cookie session, the bearer token, and the CSRF token required by
// state-mutating calls. A session is created by Dial, used for the duration
// of one run, and discarded; it is not safe for concurrent use.
type Session struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger

	token string
	csrf  string
}

// Dial authenticates against the backend and returns a ready session.
func Dial(ctx context.Context, cfg Config) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	s := &Session{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Jar: jar, Timeout: timeout},
		logger:  logger,
	}

	if err := s.login(ctx, cfg.Username, cfg.Password); err != nil {
		return nil, err
	}
	return s, nil
}

// login establishes the cookie session and obtains a bearer token.
func (s *Session) login(ctx context.Context, username, password string) error {
	// Hitting the login page first seeds the session cookies the backend
	// expects on the token exchange.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+loginPagePath, nil)
	if err != nil {
		return fmt.Errorf("failed to build login page request: %w", err)
	}
	if resp, err := s.client.Do(req); err == nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	body, err := json.Marshal(map[string]any{
		"username": username,
		"password": password,
		"provider": "db",
		"refresh":  true,
	})
	if err != nil {
		return fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("authentication failed: %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	if out.AccessToken == "" {
		return fmt.Errorf("authentication succeeded but no access token was returned")
	}

	s.token = out.AccessToken
	s.logger.Debug("authenticated with dashboard backend", "url", s.baseURL)
	return nil
}

// refreshCSRF fetches a fresh CSRF token. The backend invalidates CSRF tokens
// aggressively, so this runs before every mutating call.
func (s *Session) refreshCSRF(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+csrfPath, nil)
	if err != nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("csrf refresh failed", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return
	}

	var out struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err == nil && out.Result != "" {
		s.csrf = out.Result
	}
}

// GetJSON issues an authenticated GET and decodes the response body into out.
// A non-2xx status or an undecodable body is an error.
func (s *Session) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := s.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s returned malformed body: %w", path, err)
	}
	return nil
}

// PostJSON issues an authenticated, CSRF-guarded POST with a JSON body.
// It returns the response status code and raw body; transport errors are
// returned as errors, rejections are left to the caller to interpret.
func (s *Session) PostJSON(ctx context.Context, path string, body any) (int, []byte, error) {
	s.refreshCSRF(ctx)

	enc, err := json.Marshal(body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode body for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(enc))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	if s.csrf != "" {
		req.Header.Set("X-CSRFToken", s.csrf)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("POST %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}
	return resp.StatusCode, raw, nil
}
