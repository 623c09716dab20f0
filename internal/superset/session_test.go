package superset

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fluxwms/dashforge/internal/testutil"
	"github.com/stretchr/testify/require"
)

// fakeBackend is a minimal stand-in for the dashboard backend: login, CSRF,
// and whatever extra routes a test registers.
type fakeBackend struct {
	mux  *http.ServeMux
	srv  *httptest.Server
	csrf string

	loginCalls int
	csrfCalls  int
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{mux: http.NewServeMux(), csrf: "csrf-token-1"}

	b.mux.HandleFunc("GET /login/", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
	})
	b.mux.HandleFunc("POST /api/v1/security/login", func(w http.ResponseWriter, r *http.Request) {
		b.loginCalls++
		var creds struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid login"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "jwt-token"})
	})
	b.mux.HandleFunc("GET /api/v1/security/csrf_token/", func(w http.ResponseWriter, r *http.Request) {
		b.csrfCalls++
		if r.Header.Get("Authorization") != "Bearer jwt-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"result": b.csrf})
	})

	b.srv = httptest.NewServer(b.mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) dial(t *testing.T) *Session {
	t.Helper()
	s, err := Dial(context.Background(), Config{
		BaseURL:  b.srv.URL,
		Username: "admin",
		Password: "secret",
		Logger:   testutil.NewTestLogger(t),
	})
	require.NoError(t, err)
	return s
}

func TestDialAuthenticates(t *testing.T) {
	backend := newFakeBackend(t)
	s := backend.dial(t)

	require.Equal(t, 1, backend.loginCalls)
	require.Equal(t, "jwt-token", s.token)
}

func TestDialBadCredentials(t *testing.T) {
	backend := newFakeBackend(t)

	_, err := Dial(context.Background(), Config{
		BaseURL:  backend.srv.URL,
		Username: "admin",
		Password: "wrong",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "authentication failed")
}

func TestPostJSONCarriesCSRF(t *testing.T) {
	backend := newFakeBackend(t)

	var gotCSRF, gotAuth string
	backend.mux.HandleFunc("POST /api/v1/chart/", func(w http.ResponseWriter, r *http.Request) {
		gotCSRF = r.Header.Get("X-CSRFToken")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 1})
	})

	s := backend.dial(t)
	status, _, err := s.PostJSON(context.Background(), "/api/v1/chart/", Payload{"slice_name": "x"})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "csrf-token-1", gotCSRF)
	require.Equal(t, "Bearer jwt-token", gotAuth)
	require.Equal(t, 1, backend.csrfCalls, "csrf refreshed before the mutation")
}

func TestPostJSONRefreshesCSRFEachCall(t *testing.T) {
	backend := newFakeBackend(t)

	var tokens []string
	backend.mux.HandleFunc("POST /api/v1/dataset/", func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, r.Header.Get("X-CSRFToken"))
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 2})
	})

	s := backend.dial(t)

	_, _, err := s.PostJSON(context.Background(), "/api/v1/dataset/", Payload{})
	require.NoError(t, err)

	backend.csrf = "csrf-token-2"
	_, _, err = s.PostJSON(context.Background(), "/api/v1/dataset/", Payload{})
	require.NoError(t, err)

	require.Equal(t, []string{"csrf-token-1", "csrf-token-2"}, tokens)
}

func TestGetJSONNonOKIsError(t *testing.T) {
	backend := newFakeBackend(t)
	backend.mux.HandleFunc("GET /api/v1/dashboard/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	s := backend.dial(t)
	var out map[string]any
	err := s.GetJSON(context.Background(), "/api/v1/dashboard/", nil, &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "500")
}

func TestGetJSONMalformedBodyIsError(t *testing.T) {
	backend := newFakeBackend(t)
	backend.mux.HandleFunc("GET /api/v1/database/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	s := backend.dial(t)
	var out map[string]any
	err := s.GetJSON(context.Background(), "/api/v1/database/", nil, &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "malformed")
}
