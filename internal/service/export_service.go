package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"complipilot/internal/model"
	"complipilot/internal/pdf"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// ExportService renders stored reports to PDF and, when an archive bucket is
// configured, uploads a copy and returns a presigned download URL.
type ExportService interface {
	// ExportReport renders a single report. archiveURL is empty when no
	// bucket is configured or the upload failed; failure never blocks the
	// export itself.
	ExportReport(ctx context.Context, rep *model.ComplianceReport) (data []byte, archiveURL string, err error)
	// ExportReports renders several reports under the given mode ("all" or
	// "latest").
	ExportReports(ctx context.Context, reports []model.ComplianceReport, mode string) ([]byte, error)
}

type exportService struct {
	exporter      *pdf.Exporter
	s3Client      *s3.Client
	presignClient *s3.PresignClient
	bucketName    string
	logger        zerolog.Logger
}

// NewExportService creates a new ExportService. s3Client may be nil, which
// disables archiving.
func NewExportService(exporter *pdf.Exporter, s3Client *s3.Client, bucketName string, logger zerolog.Logger) ExportService {
	svc := &exportService{
		exporter:   exporter,
		s3Client:   s3Client,
		bucketName: bucketName,
		logger:     logger.With().Str("service", "ExportService").Logger(),
	}
	if s3Client != nil {
		svc.presignClient = s3.NewPresignClient(s3Client)
	}
	return svc
}

func toResult(rep *model.ComplianceReport) pdf.Result {
	title := rep.Name
	if title == "" {
		title = "Compliance Report"
	}
	return pdf.Result{
		Title:     title,
		Toolkit:   rep.ToolkitCode,
		Markdown:  htmlToText(rep.HTMLContent),
		CreatedAt: rep.CreatedAt,
	}
}

func (s *exportService) ExportReport(ctx context.Context, rep *model.ComplianceReport) ([]byte, string, error) {
	data, err := s.exporter.Export(toResult(rep))
	if err != nil {
		return nil, "", fmt.Errorf("failed to export report %s: %w", rep.ID, err)
	}

	archiveURL := ""
	if s.s3Client != nil {
		url, err := s.archive(ctx, rep.UserID, rep.ID, data)
		if err != nil {
			s.logger.Warn().Err(err).Str("report_id", rep.ID).Msg("Failed to archive exported PDF")
		} else {
			archiveURL = url
		}
	}
	return data, archiveURL, nil
}

func (s *exportService) ExportReports(ctx context.Context, reports []model.ComplianceReport, mode string) ([]byte, error) {
	results := make([]pdf.Result, 0, len(reports))
	for i := range reports {
		results = append(results, toResult(&reports[i]))
	}
	data, err := s.exporter.ExportAll(results, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to export reports: %w", err)
	}
	return data, nil
}

// archive uploads the PDF and returns a short-lived presigned GET URL.
func (s *exportService) archive(ctx context.Context, userID, reportID string, data []byte) (string, error) {
	key := fmt.Sprintf("exports/%s/%s.pdf", userID, reportID)
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload export %s: %w", key, err)
	}

	presigned, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("failed to presign export %s: %w", key, err)
	}
	return presigned.URL, nil
}
