package model

import "time"

// UsageRecord tracks generated reports per client address and tool. Rows are
// created on first use and only ever incremented, never deleted.
type UsageRecord struct {
	IPAddress   string    `db:"ip_address" json:"ip_address"`
	Tool        string    `db:"tool" json:"tool"`
	ReportCount int       `db:"report_count" json:"report_count"`
	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
}

// UsageStatus is the limiter's answer for a (client, tool) pair.
type UsageStatus struct {
	Allowed bool `json:"allowed"`
	Count   int  `json:"count"`
	Limit   int  `json:"limit"`
}
