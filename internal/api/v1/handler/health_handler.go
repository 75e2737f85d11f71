package handler

import (
	"database/sql"
	"net/http"

	"github.com/rs/zerolog"
)

// HealthHandler serves the public database health check.
type HealthHandler struct {
	db     *sql.DB
	debug  bool
	logger zerolog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sql.DB, debug bool, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		debug:  debug,
		logger: logger.With().Str("handler", "HealthHandler").Logger(),
	}
}

// RegisterRoutes mounts the health route.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /db/ping", h.ping)
}

// ping godoc
// @Summary Database health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} handler.errorBody
// @Router /db/ping [get]
func (h *HealthHandler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("Database ping failed")
		writeError(w, http.StatusInternalServerError, "Database unreachable", err.Error(), h.debug)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
