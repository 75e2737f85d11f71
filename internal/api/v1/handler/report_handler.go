package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"complipilot/internal/api/v1/dto"
	"complipilot/internal/middleware"
	"complipilot/internal/model"
	"complipilot/internal/pdf"
	"complipilot/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ReportHandler serves the authenticated report CRUD and export endpoints.
type ReportHandler struct {
	reportService service.ReportService
	exportService service.ExportService
	validate      *validator.Validate
	debug         bool
	logger        zerolog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(
	reportService service.ReportService,
	exportService service.ExportService,
	validate *validator.Validate,
	debug bool,
	logger zerolog.Logger,
) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		exportService: exportService,
		validate:      validate,
		debug:         debug,
		logger:        logger.With().Str("handler", "ReportHandler").Logger(),
	}
}

// RegisterRoutes mounts report routes behind the auth middleware.
func (h *ReportHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /reports/save", authMw(http.HandlerFunc(h.saveReport)))
	mux.Handle("GET /reports/list", authMw(http.HandlerFunc(h.listReports)))
	mux.Handle("POST /reports/export", authMw(http.HandlerFunc(h.exportReports)))
	mux.Handle("GET /reports/{id}", authMw(http.HandlerFunc(h.getReport)))
	mux.Handle("DELETE /reports/{id}", authMw(http.HandlerFunc(h.deleteReport)))
	mux.Handle("POST /reports/{id}/export", authMw(http.HandlerFunc(h.exportReport)))
}

func toResponseDTO(rep *model.ComplianceReport) dto.ReportResponseDTO {
	return dto.ReportResponseDTO{
		ID:           rep.ID,
		UserID:       rep.UserID,
		ToolkitCode:  rep.ToolkitCode,
		Name:         rep.Name,
		EntityName:   rep.EntityName,
		EntityType:   rep.EntityType,
		Jurisdiction: rep.Jurisdiction,
		FilingType:   rep.FilingType,
		Deadline:     rep.Deadline,
		HTMLContent:  rep.HTMLContent,
		Checksum:     rep.Checksum,
		CreatedAt:    rep.CreatedAt,
	}
}

// saveReport godoc
// @Summary Save a generated report
// @Description Persists a report for the authenticated user. Ownership fields in the payload are ignored.
// @Tags reports
// @Accept json
// @Produce json
// @Param report body dto.ReportSaveDTO true "Report save request"
// @Success 201 {object} dto.ReportResponseDTO
// @Failure 400 {object} handler.errorBody
// @Failure 401 {object} handler.errorBody
// @Router /reports/save [post]
func (h *ReportHandler) saveReport(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "User ID not found in context", "", h.debug)
		return
	}
	var req dto.ReportSaveDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload", err.Error(), h.debug)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err.Error(), h.debug)
		return
	}

	rep := &model.ComplianceReport{
		ToolkitCode:  req.ToolkitCode,
		Name:         req.Name,
		EntityName:   req.EntityName,
		EntityType:   req.EntityType,
		Jurisdiction: req.Jurisdiction,
		FilingType:   req.FilingType,
		Deadline:     req.Deadline,
		HTMLContent:  req.HTMLContent,
	}
	saved, err := h.reportService.SaveReport(r.Context(), userID, rep)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save report", err.Error(), h.debug)
		return
	}
	writeJSON(w, http.StatusCreated, toResponseDTO(saved))
}

// listReports godoc
// @Summary List the caller's reports
// @Description Returns the authenticated user's reports for a toolkit, newest first.
// @Tags reports
// @Produce json
// @Param toolkit query string true "Toolkit code"
// @Success 200 {array} dto.ReportResponseDTO
// @Failure 400 {object} handler.errorBody
// @Failure 401 {object} handler.errorBody
// @Router /reports/list [get]
func (h *ReportHandler) listReports(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "User ID not found in context", "", h.debug)
		return
	}
	toolkit := r.URL.Query().Get("toolkit")
	if toolkit == "" {
		writeError(w, http.StatusBadRequest, "Missing required query parameter: toolkit", "", h.debug)
		return
	}

	reports, err := h.reportService.ListReports(r.Context(), userID, toolkit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reports", err.Error(), h.debug)
		return
	}
	out := make([]dto.ReportResponseDTO, 0, len(reports))
	for i := range reports {
		out = append(out, toResponseDTO(&reports[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// getReport godoc
// @Summary Get a report
// @Description Returns a report by id. Absent and not-owned are both 404 so existence is never leaked.
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} dto.ReportResponseDTO
// @Failure 401 {object} handler.errorBody
// @Failure 404 {object} handler.errorBody
// @Router /reports/{id} [get]
func (h *ReportHandler) getReport(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "User ID not found in context", "", h.debug)
		return
	}
	rep, err := h.reportService.GetReport(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve report", err.Error(), h.debug)
		return
	}
	if rep == nil {
		writeError(w, http.StatusNotFound, "Report not found", "", h.debug)
		return
	}
	writeJSON(w, http.StatusOK, toResponseDTO(rep))
}

// deleteReport godoc
// @Summary Delete a report
// @Description Deletes a report owned by the caller. Absent and not-owned are both 404.
// @Tags reports
// @Param id path string true "Report ID"
// @Success 204 {string} string ""
// @Failure 401 {object} handler.errorBody
// @Failure 404 {object} handler.errorBody
// @Router /reports/{id} [delete]
func (h *ReportHandler) deleteReport(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "User ID not found in context", "", h.debug)
		return
	}
	deleted, err := h.reportService.DeleteReport(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete report", err.Error(), h.debug)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Report not found", "", h.debug)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// exportReport godoc
// @Summary Export a report as PDF
// @Description Streams the report as a PDF attachment. When an archive bucket is configured a presigned copy URL is set in X-Archive-Url.
// @Tags reports
// @Produce application/pdf
// @Param id path string true "Report ID"
// @Success 200 {file} binary
// @Failure 401 {object} handler.errorBody
// @Failure 404 {object} handler.errorBody
// @Router /reports/{id}/export [post]
func (h *ReportHandler) exportReport(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "User ID not found in context", "", h.debug)
		return
	}
	rep, err := h.reportService.GetReport(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve report", err.Error(), h.debug)
		return
	}
	if rep == nil {
		writeError(w, http.StatusNotFound, "Report not found", "", h.debug)
		return
	}

	data, archiveURL, err := h.exportService.ExportReport(r.Context(), rep)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export report", err.Error(), h.debug)
		return
	}
	if archiveURL != "" {
		w.Header().Set("X-Archive-Url", archiveURL)
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.Name+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// exportReports godoc
// @Summary Export multiple reports as one PDF
// @Description Exports the caller's reports for a toolkit. Mode "all" concatenates everything; "latest" keeps the newest.
// @Tags reports
// @Produce application/pdf
// @Param toolkit query string true "Toolkit code"
// @Param mode query string false "Export mode (all|latest)"
// @Success 200 {file} binary
// @Failure 400 {object} handler.errorBody
// @Failure 401 {object} handler.errorBody
// @Failure 404 {object} handler.errorBody
// @Failure 500 {object} handler.errorBody
// @Router /reports/export [post]
func (h *ReportHandler) exportReports(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "User ID not found in context", "", h.debug)
		return
	}
	toolkit := r.URL.Query().Get("toolkit")
	if toolkit == "" {
		writeError(w, http.StatusBadRequest, "Missing required query parameter: toolkit", "", h.debug)
		return
	}
	mode := r.URL.Query().Get("mode")

	reports, err := h.reportService.ListReports(r.Context(), userID, toolkit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reports", err.Error(), h.debug)
		return
	}
	if len(reports) == 0 {
		writeError(w, http.StatusNotFound, "No reports to export", "", h.debug)
		return
	}

	data, err := h.exportService.ExportReports(r.Context(), reports, mode)
	if err != nil {
		// A bad mode is the caller's mistake; anything else is a render failure.
		if errors.Is(err, pdf.ErrUnknownMode) {
			writeError(w, http.StatusBadRequest, "Unknown export mode: "+mode, err.Error(), h.debug)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to export reports", err.Error(), h.debug)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", toolkit+"-reports.pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
