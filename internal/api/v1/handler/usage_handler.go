package handler

import (
	"net/http"

	"complipilot/internal/api/v1/dto"
	"complipilot/internal/service"
	"complipilot/internal/util"

	"github.com/rs/zerolog"
)

// UsageHandler serves IP-scoped usage inspection and the check-ip diagnostic.
type UsageHandler struct {
	usageService service.UsageService
	debug        bool
	logger       zerolog.Logger
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(usageService service.UsageService, debug bool, logger zerolog.Logger) *UsageHandler {
	return &UsageHandler{
		usageService: usageService,
		debug:        debug,
		logger:       logger.With().Str("handler", "UsageHandler").Logger(),
	}
}

// RegisterRoutes mounts the usage routes.
func (h *UsageHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /usage", h.usage)
	mux.HandleFunc("POST /usage", h.usage)
	mux.HandleFunc("GET /check-ip", h.checkIP)
}

// usage godoc
// @Summary Inspect or increment the caller's usage counter
// @Description action=check is read-only; action=increment consumes quota for the caller's IP and tool.
// @Tags usage
// @Produce json
// @Param action query string true "check or increment"
// @Param tool query string true "Tool name"
// @Success 200 {object} dto.UsageStatusDTO
// @Failure 400 {object} handler.errorBody
// @Failure 429 {object} dto.LimitReachedDTO
// @Router /usage [get]
func (h *UsageHandler) usage(w http.ResponseWriter, r *http.Request) {
	tool := r.URL.Query().Get("tool")
	if tool == "" {
		writeError(w, http.StatusBadRequest, "Missing required query parameter: tool", "", h.debug)
		return
	}
	ip := util.ClientIP(r)

	switch action := r.URL.Query().Get("action"); action {
	case "", "check":
		status, err := h.usageService.Check(r.Context(), ip, tool)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to check usage", err.Error(), h.debug)
			return
		}
		writeJSON(w, http.StatusOK, dto.UsageStatusDTO{
			Allowed: status.Allowed,
			Count:   status.Count,
			Limit:   status.Limit,
			Tool:    tool,
		})
	case "increment":
		status, err := h.usageService.Consume(r.Context(), ip, tool)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to increment usage", err.Error(), h.debug)
			return
		}
		if !status.Allowed {
			writeJSON(w, http.StatusTooManyRequests, dto.LimitReachedDTO{
				LimitReached: true,
				Count:        status.Count,
				Limit:        status.Limit,
				Tool:         tool,
			})
			return
		}
		writeJSON(w, http.StatusOK, dto.UsageStatusDTO{
			Allowed: true,
			Count:   status.Count,
			Limit:   status.Limit,
			Tool:    tool,
		})
	default:
		writeError(w, http.StatusBadRequest, "Unknown action: "+action, "", h.debug)
	}
}

// checkIP godoc
// @Summary Diagnostic echo of IP header inspection
// @Tags usage
// @Produce json
// @Success 200 {object} map[string]string
// @Router /check-ip [get]
func (h *UsageHandler) checkIP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, util.IPHeaderInspection(r))
}
