// Package profile holds the static, code-defined filing profiles and the
// keyword resolver that maps free-text form input onto them.
package profile

// Link is a reference to an external filing resource.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Milestone is a timeline entry anchored relative to the filing deadline.
type Milestone struct {
	Milestone  string `json:"milestone"`
	Owner      string `json:"owner"`
	OffsetDays int    `json:"offset_days"`
	Notes      string `json:"notes"`
}

// Scope describes the filing categories a profile covers. Matching is done
// by the resolver, not by exhaustive comparison against these lists; the
// lists document intent and feed the references section.
type Scope struct {
	FilingTypes []string `json:"filing_types"`
	States      []string `json:"states"`
	EntityTypes []string `json:"entity_types"`
}

// FilingProfile is a hand-authored compliance template. Profiles are
// immutable and never persisted.
type FilingProfile struct {
	Slug      string      `json:"slug"`
	Name      string      `json:"name"`
	Scope     Scope       `json:"scope"`
	Checklist []string    `json:"checklist"`
	Timeline  []Milestone `json:"timeline"`
	Risks     []string    `json:"risks"`
	Links     []Link      `json:"links"`
}

var annualReportCA = &FilingProfile{
	Slug: "annual_report_ca",
	Name: "California Statement of Information (Annual Report)",
	Scope: Scope{
		FilingTypes: []string{"annual report", "statement of information"},
		States:      []string{"california", "ca"},
		EntityTypes: []string{"llc", "corporation", "nonprofit"},
	},
	Checklist: []string{
		"Confirm entity number and exact legal name with the California Secretary of State",
		"Verify registered agent name and California street address are current",
		"Update principal office and mailing addresses",
		"List current managers/members (LLC) or officers and directors (corporation)",
		"Prepare Statement of Information (Form SI-550 or LLC-12)",
		"Pay the Secretary of State filing fee",
		"Confirm Franchise Tax Board minimum tax obligation is current",
		"File online via bizfile Online and retain the stamped copy",
	},
	Timeline: []Milestone{
		{Milestone: "Gather entity records and confirm agent details", Owner: "Operations", OffsetDays: -30, Notes: "Pull the last filed statement for comparison"},
		{Milestone: "Draft the Statement of Information", Owner: "Legal/Compliance", OffsetDays: -21, Notes: "Form SI-550 for corporations, LLC-12 for LLCs"},
		{Milestone: "Internal review and signature", Owner: "Officer/Manager", OffsetDays: -10, Notes: ""},
		{Milestone: "Submit filing and pay fee", Owner: "Legal/Compliance", OffsetDays: -5, Notes: "bizfile Online processes same day in most cases"},
		{Milestone: "Statutory due date", Owner: "All", OffsetDays: 0, Notes: "Late filings accrue a penalty from the Franchise Tax Board"},
	},
	Risks: []string{
		"A $250 penalty applies when the statement is not filed by the due date",
		"Prolonged delinquency can lead to suspension or forfeiture by the Secretary of State",
		"A suspended entity cannot enforce contracts or maintain lawsuits in California",
		"Out-of-date agent information can cause missed service of process",
	},
	Links: []Link{
		{Label: "California Secretary of State — bizfile Online", URL: "https://bizfileonline.sos.ca.gov/"},
		{Label: "Statement of Information filing requirements", URL: "https://www.sos.ca.gov/business-programs/business-entities/statements"},
		{Label: "Franchise Tax Board penalty reference", URL: "https://www.ftb.ca.gov/pay/penalties-and-interest/"},
	},
}

var annualReportGeneric = &FilingProfile{
	Slug: "annual_report_generic",
	Name: "Annual Report (General)",
	Scope: Scope{
		FilingTypes: []string{"annual report"},
		States:      []string{},
		EntityTypes: []string{"llc", "corporation", "nonprofit", "partnership"},
	},
	Checklist: []string{
		"Confirm the exact legal name and state registration number",
		"Verify registered agent and registered office are current",
		"Update principal office address and governing persons",
		"Review state-specific report form and required disclosures",
		"Determine the filing fee and accepted payment methods",
		"File with the state business registry before the due date",
		"Retain the filed confirmation with corporate records",
	},
	Timeline: []Milestone{
		{Milestone: "Collect entity records and prior-year report", Owner: "Operations", OffsetDays: -28, Notes: ""},
		{Milestone: "Draft the annual report", Owner: "Legal/Compliance", OffsetDays: -18, Notes: "Use the state registry's current form"},
		{Milestone: "Review and approve", Owner: "Officer/Manager", OffsetDays: -8, Notes: ""},
		{Milestone: "Submit filing and pay fee", Owner: "Legal/Compliance", OffsetDays: -3, Notes: "Online filing recommended for confirmation"},
		{Milestone: "Statutory due date", Owner: "All", OffsetDays: 0, Notes: "Late fees and administrative dissolution vary by state"},
	},
	Risks: []string{
		"Missing the due date typically triggers a late fee",
		"Continued delinquency can result in administrative dissolution or revocation",
		"Loss of good standing can block financing, licensing, and contract execution",
	},
	Links: []Link{
		{Label: "NASS state business registry directory", URL: "https://www.nass.org/business-services/corporate-registration"},
	},
}

// profiles in resolution order; first match wins.
var profiles = []*FilingProfile{annualReportCA, annualReportGeneric}

// All returns every registered profile, in resolution order.
func All() []*FilingProfile {
	out := make([]*FilingProfile, len(profiles))
	copy(out, profiles)
	return out
}

// BySlug returns the profile with the given slug, or nil.
func BySlug(slug string) *FilingProfile {
	for _, p := range profiles {
		if p.Slug == slug {
			return p
		}
	}
	return nil
}
