package renewals

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/greenshield-crm/greenshield-crm/internal/jobcards"
	"github.com/greenshield-crm/greenshield-crm/internal/shared"
)

type memoryRenewalRepo struct {
	mu     sync.Mutex
	byID   map[int64]*Renewal
	paused map[int64]bool
	nextID int64
}

func newMemoryRenewalRepo() *memoryRenewalRepo {
	return &memoryRenewalRepo{
		byID:   make(map[int64]*Renewal),
		paused: make(map[int64]bool),
	}
}

func (r *memoryRenewalRepo) Get(ctx context.Context, id int64) (*Renewal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rn, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: renewal %d", shared.ErrNotFound, id)
	}
	c := *rn
	return &c, nil
}

func (r *memoryRenewalRepo) ListForJob(ctx context.Context, jobID int64) ([]Renewal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Renewal
	for _, rn := range r.byID {
		if rn.JobCardID == jobID {
			out = append(out, *rn)
		}
	}
	sortByDue(out)
	return out, nil
}

func (r *memoryRenewalRepo) ReplaceForJob(ctx context.Context, jobID int64, clearDue bool, inputs []RenewalInput) ([]Renewal, error) {
	r.mu.Lock()
	if clearDue {
		for id, rn := range r.byID {
			if rn.JobCardID == jobID && rn.Status == StatusDue {
				delete(r.byID, id)
			}
		}
	}
	now := time.Now()
	for _, in := range inputs {
		r.nextID++
		r.byID[r.nextID] = &Renewal{
			ID:        r.nextID,
			JobCardID: in.JobCardID,
			DueAt:     in.DueAt,
			Status:    StatusDue,
			Kind:      in.Kind,
			Urgency:   in.Urgency,
			Remarks:   in.Remarks,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	r.mu.Unlock()
	return r.ListForJob(ctx, jobID)
}

func (r *memoryRenewalRepo) List(ctx context.Context, req ListRenewalsRequest) ([]Renewal, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Renewal
	for _, rn := range r.byID {
		if req.JobCardID != nil && rn.JobCardID != *req.JobCardID {
			continue
		}
		if req.Status != nil && rn.Status != *req.Status {
			continue
		}
		out = append(out, *rn)
	}
	sortByDue(out)
	return out, len(out), nil
}

func (r *memoryRenewalRepo) ListDue(ctx context.Context, includePaused bool) ([]Renewal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Renewal
	for _, rn := range r.byID {
		if rn.Status != StatusDue {
			continue
		}
		if !includePaused && r.paused[rn.JobCardID] {
			continue
		}
		out = append(out, *rn)
	}
	sortByDue(out)
	return out, nil
}

func (r *memoryRenewalRepo) ListDueForJob(ctx context.Context, jobID int64) ([]Renewal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Renewal
	for _, rn := range r.byID {
		if rn.JobCardID == jobID && rn.Status == StatusDue {
			out = append(out, *rn)
		}
	}
	sortByDue(out)
	return out, nil
}

func (r *memoryRenewalRepo) UpdateUrgency(ctx context.Context, id int64, tier UrgencyTier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rn, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: renewal %d", shared.ErrNotFound, id)
	}
	rn.Urgency = tier
	rn.UpdatedAt = time.Now()
	return nil
}

func (r *memoryRenewalRepo) MarkCompleted(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rn, ok := r.byID[id]
	if !ok || rn.Status != StatusDue {
		return fmt.Errorf("%w: due renewal %d", shared.ErrNotFound, id)
	}
	rn.Status = StatusCompleted
	rn.UpdatedAt = time.Now()
	return nil
}

func sortByDue(rs []Renewal) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].DueAt.Before(rs[j].DueAt) })
}

func newTestService(t *testing.T, repo *memoryRenewalRepo, now time.Time) *Service {
	t.Helper()
	svc := NewService(repo, nil, time.UTC)
	svc.clock = func() time.Time { return now }
	return svc
}

func customerJob(id int64, nextService time.Time) jobcards.JobCard {
	return jobcards.JobCard{
		ID:              id,
		Code:            jobcards.FormatCode(id),
		ClientName:      "Asha Traders",
		Kind:            jobcards.KindCustomer,
		ScheduleDate:    nextService.AddDate(0, -3, 0),
		NextServiceDate: &nextService,
	}
}

func societyJob(id int64, schedule time.Time, months int) jobcards.JobCard {
	return jobcards.JobCard{
		ID:                   id,
		Code:                 jobcards.FormatCode(id),
		ClientName:           "Sunrise Heights Society",
		Kind:                 jobcards.KindSociety,
		ScheduleDate:         schedule,
		ContractLengthMonths: &months,
	}
}

func TestGenerateForCustomerJob(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	repo := newMemoryRenewalRepo()
	svc := newTestService(t, repo, now)

	next := time.Date(2025, 3, 1, 14, 45, 0, 0, time.UTC)
	out, err := svc.GenerateForJob(context.Background(), customerJob(1, next), false)
	require.NoError(t, err)
	require.Len(t, out, 1)

	require.Equal(t, KindContractRenewal, out[0].Kind)
	require.Equal(t, StatusDue, out[0].Status)
	require.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), out[0].DueAt)
	require.Equal(t, UrgencyNormal, out[0].Urgency)
	require.NotNil(t, out[0].Remarks)
	require.Contains(t, *out[0].Remarks, "Asha Traders")
}

func TestGenerateForCustomerJobWithoutNextService(t *testing.T) {
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	repo := newMemoryRenewalRepo()
	svc := newTestService(t, repo, now)

	job := customerJob(1, now)
	job.NextServiceDate = nil
	out, err := svc.GenerateForJob(context.Background(), job, false)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestGenerateForSocietySchedule(t *testing.T) {
	now := time.Date(2024, 12, 20, 9, 0, 0, 0, time.UTC)
	repo := newMemoryRenewalRepo()
	svc := newTestService(t, repo, now)

	schedule := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out, err := svc.GenerateForJob(context.Background(), societyJob(7, schedule, 3), false)
	require.NoError(t, err)
	require.Len(t, out, 4)

	var reminders, contracts []Renewal
	for _, rn := range out {
		switch rn.Kind {
		case KindMonthlyReminder:
			reminders = append(reminders, rn)
		case KindContractRenewal:
			contracts = append(contracts, rn)
		}
	}

	require.Len(t, reminders, 3)
	require.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), reminders[0].DueAt)
	require.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), reminders[1].DueAt)
	require.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), reminders[2].DueAt)

	require.Len(t, contracts, 1)
	require.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), contracts[0].DueAt)
}

func TestGenerateForSocietyMissingContractLength(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := newMemoryRenewalRepo()
	svc := newTestService(t, repo, now)

	job := societyJob(3, now, 6)
	job.ContractLengthMonths = nil
	_, err := svc.GenerateForJob(context.Background(), job, false)
	require.ErrorIs(t, err, shared.ErrMissingContractLength)
}

func TestGenerateIsIdempotent(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := newMemoryRenewalRepo()
	svc := newTestService(t, repo, now)

	job := societyJob(4, now, 6)
	first, err := svc.GenerateForJob(context.Background(), job, false)
	require.NoError(t, err)
	require.Len(t, first, 7)

	second, err := svc.GenerateForJob(context.Background(), job, false)
	require.NoError(t, err)
	require.Len(t, second, 7)
	require.Equal(t, first[0].ID, second[0].ID)
}

func TestGenerateForceReplacesDueOnly(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := newMemoryRenewalRepo()
	svc := newTestService(t, repo, now)

	job := societyJob(5, now, 3)
	first, err := svc.GenerateForJob(context.Background(), job, false)
	require.NoError(t, err)
	require.Len(t, first, 4)

	// Complete one entry, then reschedule: the completed row survives.
	require.NoError(t, repo.MarkCompleted(context.Background(), first[0].ID))

	months := 6
	job.ContractLengthMonths = &months
	out, err := svc.GenerateForJob(context.Background(), job, true)
	require.NoError(t, err)
	require.Len(t, out, 8)

	completed := 0
	for _, rn := range out {
		if rn.Status == StatusCompleted {
			completed++
		}
	}
	require.Equal(t, 1, completed)
}

func TestRecomputeAllDue(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := newMemoryRenewalRepo()
	svc := newTestService(t, repo, start)

	next := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err := svc.GenerateForJob(context.Background(), customerJob(1, next), false)
	require.NoError(t, err)

	// Nothing changed at the same instant.
	changed, err := svc.RecomputeAllDue(context.Background())
	require.NoError(t, err)
	require.Zero(t, changed)

	// A week later the entry crosses into the medium window.
	svc.clock = func() time.Time { return start.AddDate(0, 0, 7) }
	changed, err = svc.RecomputeAllDue(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, changed)

	// A second sweep at the same instant is a no-op.
	changed, err = svc.RecomputeAllDue(context.Background())
	require.NoError(t, err)
	require.Zero(t, changed)

	due, err := repo.ListDue(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, UrgencyMedium, due[0].Urgency)
}

func TestRecomputeOne(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := newMemoryRenewalRepo()
	svc := newTestService(t, repo, start)

	next := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	out, err := svc.GenerateForJob(context.Background(), customerJob(1, next), false)
	require.NoError(t, err)
	require.Equal(t, UrgencyNormal, out[0].Urgency)

	svc.clock = func() time.Time { return next }
	refreshed, err := svc.RecomputeOne(context.Background(), out[0].ID)
	require.NoError(t, err)
	require.Equal(t, UrgencyHigh, refreshed.Urgency)

	// Completed renewals are left alone.
	require.NoError(t, repo.MarkCompleted(context.Background(), out[0].ID))
	svc.clock = func() time.Time { return next.AddDate(0, 1, 0) }
	done, err := svc.RecomputeOne(context.Background(), out[0].ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, done.Status)
	require.Equal(t, UrgencyHigh, done.Urgency)
}

func TestMarkCompletedRefreshesSiblings(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := newMemoryRenewalRepo()
	svc := newTestService(t, repo, start)

	out, err := svc.GenerateForJob(context.Background(), societyJob(9, start, 3), false)
	require.NoError(t, err)
	require.Len(t, out, 4)

	// By end of January the first reminder is overdue and the February one
	// is approaching; completing the first must refresh the rest.
	svc.clock = func() time.Time { return time.Date(2025, 2, 26, 0, 0, 0, 0, time.UTC) }
	done, err := svc.MarkCompleted(context.Background(), out[0].ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, done.Status)

	due, err := repo.ListDueForJob(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, due, 3)
	require.Equal(t, UrgencyMedium, due[0].Urgency)
}

func TestUpcomingSummaryWindows(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	repo := newMemoryRenewalRepo()
	svc := newTestService(t, repo, now)

	seed := func(jobID int64, due time.Time) {
		_, err := repo.ReplaceForJob(context.Background(), jobID, false, []RenewalInput{{
			JobCardID: jobID,
			DueAt:     due,
			Kind:      KindContractRenewal,
			Urgency:   Classify(due, now),
		}})
		require.NoError(t, err)
	}

	seed(1, now.AddDate(0, 0, -2))        // overdue, high
	seed(2, now.Add(48*time.Hour))        // this week, medium
	seed(3, now.AddDate(0, 0, 20))        // this month, normal
	seed(4, now.AddDate(0, 2, 0))         // outside every window
	seed(5, now.Add(6*24*time.Hour))      // this week, normal

	summary, err := svc.UpcomingSummary(context.Background(), true)
	require.NoError(t, err)

	require.Equal(t, 1, summary.Overdue)
	require.Equal(t, 2, summary.DueThisWeek)
	require.Equal(t, 3, summary.DueThisMonth)
	require.Equal(t, 1, summary.HighUrgency)
	require.Equal(t, 1, summary.MedUrgency)
	require.Equal(t, 3, summary.NormUrgency)
}

func TestUpcomingSummaryExcludesPausedJobs(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	repo := newMemoryRenewalRepo()
	svc := newTestService(t, repo, now)

	for jobID := int64(1); jobID <= 2; jobID++ {
		_, err := repo.ReplaceForJob(context.Background(), jobID, false, []RenewalInput{{
			JobCardID: jobID,
			DueAt:     now.AddDate(0, 0, 3),
			Kind:      KindContractRenewal,
			Urgency:   UrgencyMedium,
		}})
		require.NoError(t, err)
	}
	repo.paused[2] = true

	summary, err := svc.UpcomingSummary(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, summary.DueThisWeek)

	// Pausing filters reads only; the rows are still there.
	withPaused, err := svc.UpcomingSummary(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, 2, withPaused.DueThisWeek)

	all, err := repo.ListDue(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
