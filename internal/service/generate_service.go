package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"complipilot/internal/report"

	"github.com/rs/zerolog"
)

// GeneratedReport is the outcome of a generation request, in both Markdown
// and sanitized HTML.
type GeneratedReport struct {
	Markdown string
	HTML     string
	// Source is "profile" for deterministic template output, "llm" otherwise.
	Source string
	// ProfileSlug is set when a static profile produced the report.
	ProfileSlug string
}

// GenerateService turns a submitted form into a report: a matching static
// filing profile wins, otherwise the LLM is asked, bounded by a deadline.
type GenerateService interface {
	Generate(ctx context.Context, form report.FormData, tool string) (*GeneratedReport, error)
}

type generateService struct {
	llm        LLMClient
	llmTimeout time.Duration
	logger     zerolog.Logger
}

// NewGenerateService creates a new GenerateService.
func NewGenerateService(llm LLMClient, llmTimeout time.Duration, logger zerolog.Logger) GenerateService {
	return &generateService{
		llm:        llm,
		llmTimeout: llmTimeout,
		logger:     logger.With().Str("service", "GenerateService").Logger(),
	}
}

func (s *generateService) Generate(ctx context.Context, form report.FormData, tool string) (*GeneratedReport, error) {
	compiled, err := report.Generate(form)
	if err == nil {
		html, rerr := report.RenderHTML(compiled.Output)
		if rerr != nil {
			return nil, rerr
		}
		return &GeneratedReport{
			Markdown:    compiled.Output,
			HTML:        html,
			Source:      "profile",
			ProfileSlug: compiled.Profile.Slug,
		}, nil
	}
	if !errors.Is(err, report.ErrNoProfile) {
		return nil, err
	}

	s.logger.Debug().Str("tool", tool).Str("filing_type", form.FilingType).Msg("No filing profile matched, falling back to LLM generation")

	// A slow upstream call must not hang the handler; first of completion or
	// the deadline wins, and on expiry the error is surfaced without retry.
	llmCtx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	markdown, err := s.llm.GenerateReport(llmCtx, buildPrompt(form))
	if err != nil {
		s.logger.Error().Err(err).Str("tool", tool).Msg("LLM generation failed")
		return nil, fmt.Errorf("report generation failed: %w", err)
	}

	html, err := report.RenderHTML(markdown)
	if err != nil {
		return nil, err
	}
	return &GeneratedReport{Markdown: markdown, HTML: html, Source: "llm"}, nil
}

func buildPrompt(form report.FormData) string {
	deadline := form.Deadline
	if deadline == "" {
		deadline = "not provided"
	}
	return fmt.Sprintf(
		"Prepare a compliance report for the following filing.\n"+
			"Entity: %s (%s)\nJurisdiction: %s\nFiling type: %s\nDeadline: %s\n"+
			"Stated requirements: %s\nKnown risk: %s\n",
		form.EntityName, form.EntityType, form.Jurisdiction, form.FilingType,
		deadline, form.Requirements, form.Risk)
}
