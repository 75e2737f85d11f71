package service

import (
	"context"
	"testing"

	"complipilot/internal/model"
	"complipilot/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUsageRepo mimics the conditional-upsert semantics of the real table.
type fakeUsageRepo struct {
	counts  map[string]int
	failGet bool
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{counts: map[string]int{}}
}

func (f *fakeUsageRepo) key(ip, tool string) string { return ip + "|" + tool }

func (f *fakeUsageRepo) Get(_ context.Context, ip, tool string) (*model.UsageRecord, error) {
	if f.failGet {
		return nil, assert.AnError
	}
	count, ok := f.counts[f.key(ip, tool)]
	if !ok {
		return nil, nil
	}
	return &model.UsageRecord{IPAddress: ip, Tool: tool, ReportCount: count}, nil
}

func (f *fakeUsageRepo) Increment(_ context.Context, ip, tool string, cap int) (int, error) {
	k := f.key(ip, tool)
	if f.counts[k] >= cap {
		return f.counts[k], repository.ErrReportLimitExceeded
	}
	f.counts[k]++
	return f.counts[k], nil
}

func (f *fakeUsageRepo) Record(_ context.Context, ip, tool string) (int, error) {
	k := f.key(ip, tool)
	f.counts[k]++
	return f.counts[k], nil
}

func TestConsumeUpToCap(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewUsageService(repo, 3, true, zerolog.Nop())
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		status, err := svc.Consume(ctx, "203.0.113.9", "CompliPilot")
		require.NoError(t, err)
		assert.True(t, status.Allowed)
		assert.Equal(t, i, status.Count)
	}

	// The (cap+1)-th increment is rejected and the stored count unchanged.
	status, err := svc.Consume(ctx, "203.0.113.9", "CompliPilot")
	require.NoError(t, err)
	assert.False(t, status.Allowed)
	assert.Equal(t, 3, status.Count)
	assert.Equal(t, 3, repo.counts["203.0.113.9|CompliPilot"])
}

func TestConsumeMonitorOnlyNeverBlocks(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewUsageService(repo, 2, false, zerolog.Nop())
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		status, err := svc.Consume(ctx, "203.0.113.9", "CompliPilot")
		require.NoError(t, err)
		assert.True(t, status.Allowed)
		assert.Equal(t, i, status.Count)
	}
}

func TestConsumeFailsOpenWithoutIP(t *testing.T) {
	repo := newFakeUsageRepo()
	svc := NewUsageService(repo, 3, true, zerolog.Nop())

	status, err := svc.Consume(context.Background(), "", "CompliPilot")
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Empty(t, repo.counts, "no counter must be touched without an IP")
}

func TestCheckIsReadOnly(t *testing.T) {
	repo := newFakeUsageRepo()
	repo.counts["203.0.113.9|CompliPilot"] = 2
	svc := NewUsageService(repo, 3, true, zerolog.Nop())

	status, err := svc.Check(context.Background(), "203.0.113.9", "CompliPilot")
	require.NoError(t, err)
	assert.True(t, status.Allowed)
	assert.Equal(t, 2, status.Count)
	assert.Equal(t, 2, repo.counts["203.0.113.9|CompliPilot"])
}

func TestCheckAtCap(t *testing.T) {
	repo := newFakeUsageRepo()
	repo.counts["203.0.113.9|CompliPilot"] = 3
	svc := NewUsageService(repo, 3, true, zerolog.Nop())

	status, err := svc.Check(context.Background(), "203.0.113.9", "CompliPilot")
	require.NoError(t, err)
	assert.False(t, status.Allowed)
}

func TestCheckMonitorOnlyAtCap(t *testing.T) {
	repo := newFakeUsageRepo()
	repo.counts["203.0.113.9|CompliPilot"] = 99
	svc := NewUsageService(repo, 3, false, zerolog.Nop())

	status, err := svc.Check(context.Background(), "203.0.113.9", "CompliPilot")
	require.NoError(t, err)
	assert.True(t, status.Allowed)
}

func TestCheckFailsOpenOnRepoError(t *testing.T) {
	repo := newFakeUsageRepo()
	repo.failGet = true
	svc := NewUsageService(repo, 3, true, zerolog.Nop())

	status, err := svc.Check(context.Background(), "203.0.113.9", "CompliPilot")
	require.NoError(t, err)
	assert.True(t, status.Allowed)
}
