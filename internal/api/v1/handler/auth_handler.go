package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"complipilot/internal/api/v1/dto"
	"complipilot/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// AuthHandler proxies login to the managed auth service and exposes its
// public connection info.
type AuthHandler struct {
	authService service.AuthService
	validate    *validator.Validate
	debug       bool
	logger      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, validate *validator.Validate, debug bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validate,
		debug:       debug,
		logger:      logger.With().Str("handler", "AuthHandler").Logger(),
	}
}

// RegisterRoutes mounts the auth routes.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /auth/config", h.config)
	mux.HandleFunc("POST /auth/login", h.login)
}

// config godoc
// @Summary Public auth-service connection info
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AuthConfigDTO
// @Router /auth/config [get]
func (h *AuthHandler) config(w http.ResponseWriter, r *http.Request) {
	cfg := h.authService.Config()
	writeJSON(w, http.StatusOK, dto.AuthConfigDTO{URL: cfg.URL, AnonKey: cfg.AnonKey})
}

// login godoc
// @Summary Exchange email/password for a token
// @Description Proxies the password grant to the auth service. 503 means the auth service itself was unreachable.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequestDTO true "Login request"
// @Success 200 {object} dto.LoginResponseDTO
// @Failure 400 {object} handler.errorBody
// @Failure 401 {object} handler.errorBody
// @Failure 503 {object} handler.errorBody
// @Router /auth/login [post]
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload", err.Error(), h.debug)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err.Error(), h.debug)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Invalid email or password", "", h.debug)
		case errors.Is(err, service.ErrAuthUnavailable):
			// Distinguished from 401 so clients can show a retry message.
			writeError(w, http.StatusServiceUnavailable, "Authentication service unavailable", err.Error(), h.debug)
		default:
			writeError(w, http.StatusInternalServerError, "Login failed", err.Error(), h.debug)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponseDTO{
		Token: result.Token,
		User:  dto.AuthUserDTO{ID: result.User.ID, Email: result.User.Email},
	})
}
