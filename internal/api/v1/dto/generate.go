package dto

// FormDataDTO mirrors the client-side diagnostic form.
type FormDataDTO struct {
	Name         string `json:"name"`
	EntityName   string `json:"entityName" validate:"required"`
	EntityType   string `json:"entityType"`
	Jurisdiction string `json:"jurisdiction"`
	FilingType   string `json:"filingType" validate:"required"`
	Deadline     string `json:"deadline"`
	Requirements string `json:"requirements"`
	Risk         string `json:"risk"`
}

// GenerateRequestDTO is the body of POST /api/generate.
type GenerateRequestDTO struct {
	FormData FormDataDTO `json:"formData" validate:"required"`
	Tool     string      `json:"tool" validate:"required"`
}

// GenerateResponseDTO carries the generated report in both representations.
type GenerateResponseDTO struct {
	ReportHTML     string `json:"reportHtml"`
	ReportMarkdown string `json:"reportMarkdown"`
	Source         string `json:"source"`
	ProfileSlug    string `json:"profileSlug,omitempty"`
}

// LimitReachedDTO is the 429 payload when the usage cap blocks a request.
type LimitReachedDTO struct {
	LimitReached bool   `json:"limitReached"`
	Count        int    `json:"count"`
	Limit        int    `json:"limit"`
	Tool         string `json:"tool"`
}
