package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/greenshield-crm/greenshield-crm/internal/jobcards"
	"github.com/greenshield-crm/greenshield-crm/internal/renewals"
)

type stubCounts struct {
	counts Counts
	calls  int
}

func (s *stubCounts) Counts(ctx context.Context) (Counts, error) {
	s.calls++
	return s.counts, nil
}

type stubStats struct{ stats jobcards.Statistics }

func (s *stubStats) Statistics(ctx context.Context) (jobcards.Statistics, error) {
	return s.stats, nil
}

type stubSummary struct{ summary renewals.UpcomingSummary }

func (s *stubSummary) UpcomingSummary(ctx context.Context, includePaused bool) (renewals.UpcomingSummary, error) {
	return s.summary, nil
}

func TestOverviewComposesSections(t *testing.T) {
	counts := &stubCounts{counts: Counts{ActiveClients: 12, TotalInquiries: 30, OpenInquiries: 4}}
	stats := &stubStats{stats: jobcards.Statistics{TotalJobs: 20, CompletedJobs: 15, TotalRevenue: "59,000.00"}}
	summary := &stubSummary{summary: renewals.UpcomingSummary{DueThisWeek: 3, Overdue: 1}}

	svc := NewService(counts, stats, summary, nil, time.Minute)
	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	require.Equal(t, 12, overview.Counts.ActiveClients)
	require.Equal(t, 20, overview.JobCards.TotalJobs)
	require.Equal(t, 3, overview.Renewals.DueThisWeek)
}

func TestOverviewUsesCacheWithinTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	counts := &stubCounts{counts: Counts{ActiveClients: 1}}
	svc := NewService(counts, &stubStats{}, &stubSummary{}, client, time.Minute)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := svc.Overview(ctx)
		require.NoError(t, err)
	}
	require.Equal(t, 1, counts.calls)

	// Expiry forces a recompute.
	mr.FastForward(2 * time.Minute)
	_, err := svc.Overview(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, counts.calls)
}
