package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func caForm() FormData {
	return FormData{
		EntityName:   "Acme Holdings LLC",
		EntityType:   "LLC",
		Jurisdiction: "California",
		FilingType:   "Annual Report",
		Deadline:     "2026-10-15",
	}
}

func TestGenerateSectionStructure(t *testing.T) {
	r, err := Generate(caForm())
	require.NoError(t, err)
	require.Len(t, r.Sections, 6)

	titles := make([]string, 0, 6)
	for _, s := range r.Sections {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{
		"Executive Summary",
		"Requirements Checklist",
		"Timeline",
		"Risk Matrix",
		"Recommendations",
		"References",
	}, titles)

	assert.Equal(t, "annual_report_ca", r.Profile.Slug)
	assert.Contains(t, r.Output, "# Compliance Report: Acme Holdings LLC")
	for _, s := range r.Sections {
		assert.Contains(t, r.Output, "## "+s.Title)
	}
}

func TestGenerateNoProfile(t *testing.T) {
	form := caForm()
	form.FilingType = "BOIR"
	_, err := Generate(form)
	assert.ErrorIs(t, err, ErrNoProfile)
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, err := Generate(caForm())
	require.NoError(t, err)
	b, err := Generate(caForm())
	require.NoError(t, err)
	assert.Equal(t, a.Output, b.Output)
}

func TestChecklistMarksUserAddressedItems(t *testing.T) {
	form := caForm()
	// Prefix of "Verify registered agent name and California street address..."
	form.Requirements = "We already verify registered agent details every quarter."
	r, err := Generate(form)
	require.NoError(t, err)

	checklist := r.Sections[1].Body
	assert.Contains(t, checklist, "- [x] Verify registered agent")
	assert.Contains(t, checklist, "- [ ] Prepare Statement of Information")
}

func TestChecklistUncheckedWithoutUserText(t *testing.T) {
	r, err := Generate(caForm())
	require.NoError(t, err)
	assert.NotContains(t, r.Sections[1].Body, "- [x]")
}

func TestTimelineOffsets(t *testing.T) {
	r, err := Generate(caForm())
	require.NoError(t, err)

	timeline := r.Sections[2].Body
	// CA profile: drafting at -21 days from 2026-10-15, due date at offset 0.
	assert.Contains(t, timeline, "| 2026-09-24 | Draft the Statement of Information")
	assert.Contains(t, timeline, "| 2026-10-15 | Statutory due date")
	assert.NotContains(t, timeline, "TBD")
}

func TestTimelinePlaceholderWithoutDeadline(t *testing.T) {
	form := caForm()
	form.Deadline = ""
	r, err := Generate(form)
	require.NoError(t, err)

	timeline := r.Sections[2].Body
	assert.Contains(t, timeline, "| TBD |")
	// Header plus separator plus exactly one placeholder row.
	assert.Len(t, strings.Split(timeline, "\n"), 3)
}

func TestTimelineUnparseableDeadline(t *testing.T) {
	form := caForm()
	form.Deadline = "sometime next year"
	r, err := Generate(form)
	require.NoError(t, err)
	assert.Contains(t, r.Sections[2].Body, "| TBD |")
}

func TestRiskMatrixUserRiskFirst(t *testing.T) {
	form := caForm()
	form.Risk = "Registered agent resigned last month"
	r, err := Generate(form)
	require.NoError(t, err)

	risks := r.Sections[3].Body
	assert.Contains(t, risks, "| 1 | Registered agent resigned last month |")
	assert.Contains(t, risks, "$250 penalty")
}

func TestRiskMatrixNeverEmpty(t *testing.T) {
	r, err := Generate(caForm())
	require.NoError(t, err)
	// Profile risks alone still yield rows.
	assert.Contains(t, r.Sections[3].Body, "| 1 |")
}

func TestRecommendationsBranchOnLinks(t *testing.T) {
	r, err := Generate(caForm())
	require.NoError(t, err)

	recs := r.Sections[4].Body
	assert.Len(t, strings.Split(recs, "\n"), 5)
	// CA profile carries reference links, so the reference-driven variant wins.
	assert.Contains(t, recs, "official references below")
}

func TestReferencesIncludeDisclaimer(t *testing.T) {
	r, err := Generate(caForm())
	require.NoError(t, err)

	refs := r.Sections[5].Body
	assert.Contains(t, refs, "bizfileonline.sos.ca.gov")
	assert.Contains(t, refs, "does not constitute legal, tax, or accounting advice")
}
