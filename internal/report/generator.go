// Package report compiles form input and a resolved filing profile into a
// deterministic Markdown compliance report, and renders it to sanitized HTML.
package report

import (
	"fmt"
	"strings"
	"time"

	"complipilot/internal/profile"
)

// FormData is the user-submitted diagnostic form.
type FormData struct {
	Name         string `json:"name"`
	EntityName   string `json:"entityName"`
	EntityType   string `json:"entityType"`
	Jurisdiction string `json:"jurisdiction"`
	FilingType   string `json:"filingType"`
	Deadline     string `json:"deadline"`
	Requirements string `json:"requirements"`
	Risk         string `json:"risk"`
}

// Section is one rendered report section.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Report is the compiled output: the full Markdown document plus its sections.
type Report struct {
	Profile  *profile.FilingProfile `json:"-"`
	Output   string                 `json:"output"`
	Sections []Section              `json:"sections"`
}

// ErrNoProfile is returned when no static profile matches the form input;
// callers fall back to LLM generation.
var ErrNoProfile = fmt.Errorf("no filing profile matches the submitted form")

// deadlineFormats are the accepted deadline input layouts, tried in order.
var deadlineFormats = []string{"2006-01-02", "01/02/2006", "January 2, 2006"}

const disclaimer = "This report is generated for informational purposes only and does not " +
	"constitute legal, tax, or accounting advice. Filing requirements change; verify all " +
	"deadlines and fees with the relevant state authority or a licensed professional before acting."

// Generate compiles the six-section report. It is fully deterministic: the
// same form input always produces byte-identical output.
func Generate(form FormData) (*Report, error) {
	p := profile.Resolve(form.FilingType, form.Jurisdiction, form.EntityType)
	if p == nil {
		return nil, ErrNoProfile
	}

	sections := []Section{
		executiveSummary(form, p),
		requirementsChecklist(form, p),
		timeline(form, p),
		riskMatrix(form, p),
		recommendations(form, p),
		references(p),
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Compliance Report: %s\n\n", entityOrFallback(form))
	for i, s := range sections {
		fmt.Fprintf(&b, "## %s\n\n%s", s.Title, s.Body)
		if i < len(sections)-1 {
			b.WriteString("\n\n")
		}
	}

	return &Report{Profile: p, Output: b.String(), Sections: sections}, nil
}

func entityOrFallback(form FormData) string {
	if e := strings.TrimSpace(form.EntityName); e != "" {
		return e
	}
	return "Your Entity"
}

func executiveSummary(form FormData, p *profile.FilingProfile) Section {
	entity := entityOrFallback(form)
	jurisdiction := strings.TrimSpace(form.Jurisdiction)
	if jurisdiction == "" {
		jurisdiction = "the applicable jurisdiction"
	}
	deadline := strings.TrimSpace(form.Deadline)
	if deadline == "" {
		deadline = "a date to be confirmed"
	}
	entityType := strings.TrimSpace(form.EntityType)
	if entityType == "" {
		entityType = "business entity"
	}

	body := fmt.Sprintf(
		"%s, a %s operating in %s, is subject to the %s filing. "+
			"The statutory deadline for this filing cycle is %s. "+
			"This report consolidates the applicable requirements, a working "+
			"timeline, and the risks of non-compliance into a single action plan.",
		entity, entityType, jurisdiction, p.Name, deadline)
	body += "\n\n" + fmt.Sprintf(
		"The checklist and timeline below are derived from the %s template and "+
			"should be reviewed against your current corporate records. Items "+
			"already addressed in your submission are marked complete; every other "+
			"item needs an owner and a target date before the deadline.",
		p.Name)

	return Section{Title: "Executive Summary", Body: body}
}

// checklistPrefixLen is how much of an item label is compared against the
// user's free-text requirements when marking items as already addressed.
const checklistPrefixLen = 12

func requirementsChecklist(form FormData, p *profile.FilingProfile) Section {
	userText := strings.ToLower(form.Requirements)
	var b strings.Builder
	for i, item := range p.Checklist {
		prefix := strings.ToLower(significantPrefix(item, checklistPrefixLen))
		mark := " "
		if prefix != "" && userText != "" && strings.Contains(userText, prefix) {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s", mark, item)
		if i < len(p.Checklist)-1 {
			b.WriteByte('\n')
		}
	}
	return Section{Title: "Requirements Checklist", Body: b.String()}
}

// significantPrefix returns the first n letters/digits/spaces of s, trimmed.
func significantPrefix(s string, n int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if b.Len() >= n {
			break
		}
		if r == ' ' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func parseDeadline(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range deadlineFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func timeline(form FormData, p *profile.FilingProfile) Section {
	var b strings.Builder
	b.WriteString("| Date | Milestone | Owner | Notes |\n|---|---|---|---|\n")

	due, ok := parseDeadline(form.Deadline)
	if !ok {
		b.WriteString("| TBD | Confirm the filing deadline to generate a dated timeline | All | Re-run with a deadline in YYYY-MM-DD format |")
		return Section{Title: "Timeline", Body: b.String()}
	}

	for i, m := range p.Timeline {
		date := due.AddDate(0, 0, m.OffsetDays).Format("2006-01-02")
		notes := m.Notes
		if notes == "" {
			notes = "—"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |", date, m.Milestone, m.Owner, notes)
		if i < len(p.Timeline)-1 {
			b.WriteByte('\n')
		}
	}
	return Section{Title: "Timeline", Body: b.String()}
}

func riskMatrix(form FormData, p *profile.FilingProfile) Section {
	rows := make([]string, 0, len(p.Risks)+1)
	if userRisk := strings.TrimSpace(form.Risk); userRisk != "" {
		rows = append(rows, userRisk)
	}
	rows = append(rows, p.Risks...)
	if len(rows) == 0 {
		rows = append(rows, "No specific risks identified; maintain standard filing discipline")
	}

	var b strings.Builder
	b.WriteString("| # | Risk | Mitigation |\n|---|---|---|\n")
	for i, r := range rows {
		fmt.Fprintf(&b, "| %d | %s | Assign an owner and track to closure before the deadline |", i+1, r)
		if i < len(rows)-1 {
			b.WriteByte('\n')
		}
	}
	return Section{Title: "Risk Matrix", Body: b.String()}
}

func recommendations(form FormData, p *profile.FilingProfile) Section {
	referenceAction := "Compile the state registry's current forms and fee schedule before drafting."
	if len(p.Links) > 0 {
		referenceAction = "Work from the official references below; they are the authoritative source for forms and fees."
	}
	items := []string{
		"Assign a single owner for the filing and record the statutory deadline in a shared calendar.",
		"Complete every unchecked item in the requirements checklist before the drafting milestone.",
		"Hold a short review with an officer or manager at least one week before submission.",
		referenceAction,
		"Retain the stamped confirmation with your corporate records and diarize next year's cycle.",
	}
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s", i+1, item)
		if i < len(items)-1 {
			b.WriteByte('\n')
		}
	}
	return Section{Title: "Recommendations", Body: b.String()}
}

func references(p *profile.FilingProfile) Section {
	var b strings.Builder
	for _, l := range p.Links {
		fmt.Fprintf(&b, "- [%s](%s)\n", l.Label, l.URL)
	}
	if len(p.Links) > 0 {
		b.WriteByte('\n')
	}
	b.WriteString("*" + disclaimer + "*")
	return Section{Title: "References", Body: b.String()}
}
