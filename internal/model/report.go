package model

import "time"

// ComplianceReport is a generated report persisted for an authenticated user.
// Ownership fields are always assigned server-side from the verified token.
type ComplianceReport struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	ToolkitCode  string    `db:"toolkit_code" json:"toolkit_code"`
	Name         string    `db:"name" json:"name"`
	EntityName   string    `db:"entity_name" json:"entity_name"`
	EntityType   string    `db:"entity_type" json:"entity_type"`
	Jurisdiction string    `db:"jurisdiction" json:"jurisdiction"`
	FilingType   string    `db:"filing_type" json:"filing_type"`
	Deadline     string    `db:"deadline" json:"deadline"`
	HTMLContent  string    `db:"html_content" json:"html_content"`
	Checksum     string    `db:"checksum" json:"checksum"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
