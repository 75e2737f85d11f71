package repository

import (
	"context"
	"database/sql"
	"errors"

	"complipilot/internal/model"
)

// ReportRepository persists compliance reports. Every query is scoped by the
// owning user id; tenant isolation lives entirely in these WHERE clauses.
type ReportRepository interface {
	CreateReport(ctx context.Context, rep *model.ComplianceReport) error
	// ListReports returns the user's reports for a toolkit, newest first.
	ListReports(ctx context.Context, userID, toolkitCode string) ([]model.ComplianceReport, error)
	// GetReport returns nil when the report is absent or owned by another user.
	GetReport(ctx context.Context, id, userID string) (*model.ComplianceReport, error)
	// DeleteReport reports false when the report is absent or owned by another user.
	DeleteReport(ctx context.Context, id, userID string) (bool, error)
}

type reportRepo struct {
	db *sql.DB
}

// NewReportRepo creates a new ReportRepository.
func NewReportRepo(db *sql.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) CreateReport(ctx context.Context, rep *model.ComplianceReport) error {
	const q = `
		INSERT INTO compliance_reports
			(user_id, toolkit_code, name, entity_name, entity_type, jurisdiction, filing_type, deadline, html_content, checksum)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, q,
		rep.UserID, rep.ToolkitCode, rep.Name, rep.EntityName, rep.EntityType,
		rep.Jurisdiction, rep.FilingType, rep.Deadline, rep.HTMLContent, rep.Checksum,
	).Scan(&rep.ID, &rep.CreatedAt)
}

func (r *reportRepo) ListReports(ctx context.Context, userID, toolkitCode string) ([]model.ComplianceReport, error) {
	const q = `
		SELECT id, user_id, toolkit_code, name, entity_name, entity_type, jurisdiction, filing_type, deadline, html_content, checksum, created_at
		FROM compliance_reports
		WHERE user_id = $1 AND toolkit_code = $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, q, userID, toolkitCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []model.ComplianceReport
	for rows.Next() {
		var rep model.ComplianceReport
		if err := rows.Scan(
			&rep.ID, &rep.UserID, &rep.ToolkitCode, &rep.Name, &rep.EntityName,
			&rep.EntityType, &rep.Jurisdiction, &rep.FilingType, &rep.Deadline,
			&rep.HTMLContent, &rep.Checksum, &rep.CreatedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	// If no reports found, return an empty slice, not nil
	if len(reports) == 0 {
		return []model.ComplianceReport{}, nil
	}
	return reports, nil
}

func (r *reportRepo) GetReport(ctx context.Context, id, userID string) (*model.ComplianceReport, error) {
	const q = `
		SELECT id, user_id, toolkit_code, name, entity_name, entity_type, jurisdiction, filing_type, deadline, html_content, checksum, created_at
		FROM compliance_reports
		WHERE id = $1 AND user_id = $2
	`
	var rep model.ComplianceReport
	err := r.db.QueryRowContext(ctx, q, id, userID).Scan(
		&rep.ID, &rep.UserID, &rep.ToolkitCode, &rep.Name, &rep.EntityName,
		&rep.EntityType, &rep.Jurisdiction, &rep.FilingType, &rep.Deadline,
		&rep.HTMLContent, &rep.Checksum, &rep.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rep, nil
}

func (r *reportRepo) DeleteReport(ctx context.Context, id, userID string) (bool, error) {
	const q = `DELETE FROM compliance_reports WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
