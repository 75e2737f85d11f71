package dto

import "time"

// ReportSaveDTO is used for incoming report save requests. Any client-supplied
// id or owner is ignored by the handler.
type ReportSaveDTO struct {
	ToolkitCode  string `json:"toolkit_code" validate:"required"`
	Name         string `json:"name" validate:"required"`
	EntityName   string `json:"entity_name"`
	EntityType   string `json:"entity_type"`
	Jurisdiction string `json:"jurisdiction"`
	FilingType   string `json:"filing_type"`
	Deadline     string `json:"deadline"`
	HTMLContent  string `json:"html_content" validate:"required"`
}

// ReportResponseDTO is returned in API responses for reports.
type ReportResponseDTO struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	ToolkitCode  string    `json:"toolkit_code"`
	Name         string    `json:"name"`
	EntityName   string    `json:"entity_name"`
	EntityType   string    `json:"entity_type"`
	Jurisdiction string    `json:"jurisdiction"`
	FilingType   string    `json:"filing_type"`
	Deadline     string    `json:"deadline"`
	HTMLContent  string    `json:"html_content"`
	Checksum     string    `json:"checksum"`
	CreatedAt    time.Time `json:"created_at"`
}
