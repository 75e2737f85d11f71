package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrInvalidCredentials is returned when the auth service rejects the login.
var ErrInvalidCredentials = errors.New("invalid_credentials")

// ErrAuthUnavailable is returned when the auth service cannot be reached, so
// handlers can answer 503 instead of a misleading 401.
var ErrAuthUnavailable = errors.New("auth_service_unavailable")

// AuthUser is the subset of the auth-service user record returned to clients.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginResult is a successful password-grant exchange.
type LoginResult struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

// AuthConfig is the public connection info clients need to talk to the auth
// service directly.
type AuthConfig struct {
	URL     string `json:"url"`
	AnonKey string `json:"anonKey"`
}

// AuthService proxies authentication to the managed identity provider
// (Supabase GoTrue).
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Config() AuthConfig
}

type authService struct {
	client  *http.Client
	baseURL string
	anonKey string
	logger  zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(baseURL, anonKey string, logger zerolog.Logger) AuthService {
	return &authService{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		anonKey: anonKey,
		logger:  logger.With().Str("service", "AuthService").Logger(),
	}
}

func (s *authService) Config() AuthConfig {
	return AuthConfig{URL: s.baseURL, AnonKey: s.anonKey}
}

// Login exchanges email/password for an access token via the password grant.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal login payload: %w", err)
	}

	url := s.baseURL + "/auth/v1/token?grant_type=password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error().Err(err).Msg("Auth service unreachable")
		return nil, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidCredentials
	case resp.StatusCode >= 500:
		s.logger.Error().Int("status", resp.StatusCode).Msg("Auth service returned server error")
		return nil, fmt.Errorf("%w: HTTP %d", ErrAuthUnavailable, resp.StatusCode)
	default:
		return nil, fmt.Errorf("unexpected auth response: HTTP %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return nil, ErrInvalidCredentials
	}

	return &LoginResult{
		Token: tokenResp.AccessToken,
		User:  AuthUser{ID: tokenResp.User.ID, Email: tokenResp.User.Email},
	}, nil
}
