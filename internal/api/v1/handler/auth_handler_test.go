package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"complipilot/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthSvc struct {
	result *service.LoginResult
	err    error
}

func (f *fakeAuthSvc) Login(_ context.Context, _, _ string) (*service.LoginResult, error) {
	return f.result, f.err
}

func (f *fakeAuthSvc) Config() service.AuthConfig {
	return service.AuthConfig{URL: "https://proj.supabase.co", AnonKey: "anon-key"}
}

func newAuthMux(svc service.AuthService) *http.ServeMux {
	h := NewAuthHandler(svc, validator.New(validator.WithRequiredStructEnabled()), false, zerolog.Nop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func loginBody(t *testing.T, email, password string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)
	return body
}

func TestLoginSuccess(t *testing.T) {
	svc := &fakeAuthSvc{result: &service.LoginResult{
		Token: "jwt-token",
		User:  service.AuthUser{ID: "user-1", Email: "user@example.com"},
	}}
	mux := newAuthMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(loginBody(t, "user@example.com", "hunter2"))))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "jwt-token", resp["token"])
	user := resp["user"].(map[string]any)
	assert.Equal(t, "user-1", user["id"])
	assert.Equal(t, "user@example.com", user["email"])
}

func TestLoginInvalidCredentials(t *testing.T) {
	mux := newAuthMux(&fakeAuthSvc{err: service.ErrInvalidCredentials})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(loginBody(t, "user@example.com", "wrong"))))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid email or password")
}

func TestLoginAuthServiceDown(t *testing.T) {
	mux := newAuthMux(&fakeAuthSvc{err: service.ErrAuthUnavailable})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(loginBody(t, "user@example.com", "hunter2"))))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authentication service unavailable")
}

func TestLoginValidation(t *testing.T) {
	mux := newAuthMux(&fakeAuthSvc{})

	// Not an email.
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(loginBody(t, "not-an-email", "hunter2"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing password.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`{"email":"user@example.com"}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthConfigEndpoint(t *testing.T) {
	mux := newAuthMux(&fakeAuthSvc{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "https://proj.supabase.co", resp["url"])
	assert.Equal(t, "anon-key", resp["anonKey"])
}
