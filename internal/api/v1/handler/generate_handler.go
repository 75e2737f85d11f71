package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"complipilot/internal/api/v1/dto"
	"complipilot/internal/pubsub"
	"complipilot/internal/report"
	"complipilot/internal/service"
	"complipilot/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// GenerateHandler serves the public, usage-capped report generation endpoint.
type GenerateHandler struct {
	generateService service.GenerateService
	usageService    service.UsageService
	publisher       pubsub.Publisher
	usageTopic      string
	validate        *validator.Validate
	debug           bool
	logger          zerolog.Logger
}

// NewGenerateHandler creates a new GenerateHandler. publisher may be nil
// when telemetry is not configured.
func NewGenerateHandler(
	generateService service.GenerateService,
	usageService service.UsageService,
	publisher pubsub.Publisher,
	usageTopic string,
	validate *validator.Validate,
	debug bool,
	logger zerolog.Logger,
) *GenerateHandler {
	return &GenerateHandler{
		generateService: generateService,
		usageService:    usageService,
		publisher:       publisher,
		usageTopic:      usageTopic,
		validate:        validate,
		debug:           debug,
		logger:          logger.With().Str("handler", "GenerateHandler").Logger(),
	}
}

// RegisterRoutes mounts the generation route.
func (h *GenerateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /generate", h.generate)
}

// generate godoc
// @Summary Generate a compliance report
// @Description Generates a report from the submitted form, capped per client IP and tool.
// @Tags generate
// @Accept json
// @Produce json
// @Param request body dto.GenerateRequestDTO true "Generation request"
// @Success 200 {object} dto.GenerateResponseDTO
// @Failure 400 {object} handler.errorBody
// @Failure 429 {object} dto.LimitReachedDTO
// @Failure 500 {object} handler.errorBody
// @Router /generate [post]
func (h *GenerateHandler) generate(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload", err.Error(), h.debug)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err.Error(), h.debug)
		return
	}

	ip := util.ClientIP(r)
	status, err := h.usageService.Consume(r.Context(), ip, req.Tool)
	if err != nil {
		h.logger.Error().Err(err).Str("tool", req.Tool).Msg("Usage increment failed")
		writeError(w, http.StatusInternalServerError, "Failed to check usage limit", err.Error(), h.debug)
		return
	}
	if !status.Allowed {
		writeJSON(w, http.StatusTooManyRequests, dto.LimitReachedDTO{
			LimitReached: true,
			Count:        status.Count,
			Limit:        status.Limit,
			Tool:         req.Tool,
		})
		return
	}

	form := report.FormData{
		Name:         req.FormData.Name,
		EntityName:   req.FormData.EntityName,
		EntityType:   req.FormData.EntityType,
		Jurisdiction: req.FormData.Jurisdiction,
		FilingType:   req.FormData.FilingType,
		Deadline:     req.FormData.Deadline,
		Requirements: req.FormData.Requirements,
		Risk:         req.FormData.Risk,
	}
	generated, err := h.generateService.Generate(r.Context(), form, req.Tool)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Report generation failed", err.Error(), h.debug)
		return
	}

	h.publishEvent(ip, req.Tool, status.Count, generated.Source)

	writeJSON(w, http.StatusOK, dto.GenerateResponseDTO{
		ReportHTML:     generated.HTML,
		ReportMarkdown: generated.Markdown,
		Source:         generated.Source,
		ProfileSlug:    generated.ProfileSlug,
	})
}

// publishEvent emits a usage telemetry event; failures are logged only.
func (h *GenerateHandler) publishEvent(ip, tool string, count int, source string) {
	if h.publisher == nil || h.usageTopic == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_, err := pubsub.PublishUsageEvent(ctx, h.publisher, h.usageTopic, pubsub.UsageEvent{
		Tool:      tool,
		IPAddress: ip,
		Count:     count,
		Event:     "report_generated",
		Source:    source,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Warn().Err(err).Str("tool", tool).Msg("Failed to publish usage event")
	}
}
