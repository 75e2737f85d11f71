package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"complipilot/internal/model"
)

// ErrReportLimitExceeded is returned when a client has reached the report cap
// for a tool.
var ErrReportLimitExceeded = errors.New("report_limit_exceeded")

// UsageRepository tracks per-(ip, tool) report counts for the usage cap.
type UsageRepository interface {
	// Get returns the usage record for the pair, or nil when absent.
	Get(ctx context.Context, ip, tool string) (*model.UsageRecord, error)
	// Increment bumps the counter in a single conditional upsert. When the
	// stored count has reached cap the statement affects no row and
	// ErrReportLimitExceeded is returned along with the current count.
	Increment(ctx context.Context, ip, tool string, cap int) (int, error)
	// Record bumps the counter unconditionally (monitor-only mode).
	Record(ctx context.Context, ip, tool string) (int, error)
}

type usageRepo struct {
	db *sql.DB
}

// NewUsageRepo creates a new UsageRepository.
func NewUsageRepo(db *sql.DB) UsageRepository {
	return &usageRepo{db: db}
}

func (r *usageRepo) Get(ctx context.Context, ip, tool string) (*model.UsageRecord, error) {
	const q = `
		SELECT ip_address, tool, report_count, last_updated
		FROM usage_records
		WHERE ip_address = $1 AND tool = $2
	`
	var rec model.UsageRecord
	err := r.db.QueryRowContext(ctx, q, ip, tool).
		Scan(&rec.IPAddress, &rec.Tool, &rec.ReportCount, &rec.LastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read usage for %s/%s: %w", ip, tool, err)
	}
	return &rec, nil
}

// Increment executes the insert and the conditional bump in one round trip.
// The WHERE on the conflict arm means an at-cap row returns zero rows, which
// is distinguished from absence by the insert arm always returning a row.
func (r *usageRepo) Increment(ctx context.Context, ip, tool string, cap int) (int, error) {
	const q = `
		INSERT INTO usage_records (ip_address, tool, report_count, last_updated)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (ip_address, tool) DO UPDATE
		SET report_count = usage_records.report_count + 1, last_updated = NOW()
		WHERE usage_records.report_count < $3
		RETURNING report_count
	`
	var count int
	err := r.db.QueryRowContext(ctx, q, ip, tool, cap).Scan(&count)
	if err == nil {
		return count, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to increment usage for %s/%s: %w", ip, tool, err)
	}

	// Zero rows: the row exists and is at cap. Read it so the caller can
	// report the stored count.
	rec, readErr := r.Get(ctx, ip, tool)
	if readErr != nil {
		return 0, readErr
	}
	if rec == nil {
		// The conflict arm fired yet the row is gone; rows are never
		// deleted, so treat it as a transient failure.
		return 0, fmt.Errorf("usage row for %s/%s vanished during increment", ip, tool)
	}
	return rec.ReportCount, ErrReportLimitExceeded
}

func (r *usageRepo) Record(ctx context.Context, ip, tool string) (int, error) {
	const q = `
		INSERT INTO usage_records (ip_address, tool, report_count, last_updated)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (ip_address, tool) DO UPDATE
		SET report_count = usage_records.report_count + 1, last_updated = NOW()
		RETURNING report_count
	`
	var count int
	if err := r.db.QueryRowContext(ctx, q, ip, tool).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to record usage for %s/%s: %w", ip, tool, err)
	}
	return count, nil
}
