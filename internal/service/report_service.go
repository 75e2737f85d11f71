package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"complipilot/internal/model"
	"complipilot/internal/report"
	"complipilot/internal/repository"

	"github.com/rs/zerolog"
)

// ReportService owns the persisted-report lifecycle. Ownership fields from
// the client are always discarded; html content is sanitized and checksummed
// before it touches the database.
type ReportService interface {
	SaveReport(ctx context.Context, userID string, rep *model.ComplianceReport) (*model.ComplianceReport, error)
	ListReports(ctx context.Context, userID, toolkitCode string) ([]model.ComplianceReport, error)
	GetReport(ctx context.Context, id, userID string) (*model.ComplianceReport, error)
	DeleteReport(ctx context.Context, id, userID string) (bool, error)
}

type reportService struct {
	repo   repository.ReportRepository
	logger zerolog.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(repo repository.ReportRepository, logger zerolog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		logger: logger.With().Str("service", "ReportService").Logger(),
	}
}

func (s *reportService) SaveReport(ctx context.Context, userID string, rep *model.ComplianceReport) (*model.ComplianceReport, error) {
	// Whatever id/user_id the client sent is meaningless; the database
	// assigns the id and the verified token supplies the owner.
	rep.ID = ""
	rep.UserID = userID
	rep.HTMLContent = report.SanitizeHTML(rep.HTMLContent)
	rep.Checksum = Checksum(rep.HTMLContent)

	if err := s.repo.CreateReport(ctx, rep); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("toolkit", rep.ToolkitCode).Msg("Failed to save report")
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	return rep, nil
}

func (s *reportService) ListReports(ctx context.Context, userID, toolkitCode string) ([]model.ComplianceReport, error) {
	reports, err := s.repo.ListReports(ctx, userID, toolkitCode)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("toolkit", toolkitCode).Msg("Failed to list reports")
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func (s *reportService) GetReport(ctx context.Context, id, userID string) (*model.ComplianceReport, error) {
	rep, err := s.repo.GetReport(ctx, id, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("report_id", id).Msg("Failed to fetch report")
		return nil, fmt.Errorf("failed to fetch report: %w", err)
	}
	return rep, nil
}

func (s *reportService) DeleteReport(ctx context.Context, id, userID string) (bool, error) {
	deleted, err := s.repo.DeleteReport(ctx, id, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("report_id", id).Msg("Failed to delete report")
		return false, fmt.Errorf("failed to delete report: %w", err)
	}
	return deleted, nil
}

// Checksum returns the hex SHA-256 of the sanitized report content.
func Checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
