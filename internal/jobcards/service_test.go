package jobcards

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/greenshield-crm/greenshield-crm/internal/shared"
)

type memoryJobRepo struct {
	mu     sync.Mutex
	byID   map[int64]*JobCard
	nextID int64
}

func newMemoryJobRepo() *memoryJobRepo {
	return &memoryJobRepo{byID: make(map[int64]*JobCard)}
}

func (r *memoryJobRepo) Create(ctx context.Context, job JobCard) (*JobCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	job.ID = r.nextID
	job.Code = FormatCode(job.ID)
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now
	stored := job
	r.byID[job.ID] = &stored
	return &job, nil
}

func (r *memoryJobRepo) Get(ctx context.Context, id int64) (*JobCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: job card %d", shared.ErrNotFound, id)
	}
	c := *job
	return &c, nil
}

func (r *memoryJobRepo) List(ctx context.Context, req ListJobCardsRequest) ([]JobCard, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []JobCard
	for _, job := range r.byID {
		if req.Status != "" && job.Status != req.Status {
			continue
		}
		if req.Kind != "" && job.Kind != req.Kind {
			continue
		}
		out = append(out, *job)
	}
	return out, len(out), nil
}

func (r *memoryJobRepo) Save(ctx context.Context, job *JobCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[job.ID]; !ok {
		return fmt.Errorf("%w: job card %d", shared.ErrNotFound, job.ID)
	}
	stored := *job
	stored.UpdatedAt = time.Now()
	r.byID[job.ID] = &stored
	return nil
}

func (r *memoryJobRepo) SetPaused(ctx context.Context, id int64, paused bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: job card %d", shared.ErrNotFound, id)
	}
	job.IsPaused = paused
	return nil
}

func (r *memoryJobRepo) Aggregate(ctx context.Context) (AggregateRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var agg AggregateRow
	for _, job := range r.byID {
		agg.Total++
		if job.Status == StatusDone {
			agg.Completed++
		}
		agg.Revenue += job.GrandTotal
	}
	return agg, nil
}

type countingInvalidator struct{ bumps int }

func (c *countingInvalidator) Bump(ctx context.Context) error {
	c.bumps++
	return nil
}

func validCreateRequest() CreateJobCardRequest {
	return CreateJobCardRequest{
		ClientID:     1,
		Kind:         KindCustomer,
		ServiceType:  "General Pest Control",
		ScheduleDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	repo := newMemoryJobRepo()
	svc := NewService(repo, nil)

	job, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	require.Equal(t, "JC-0001", job.Code)
	require.Equal(t, StatusEnquiry, job.Status)
	require.Equal(t, PaymentUnpaid, job.PaymentStatus)
	require.Equal(t, 18, job.TaxPercent)
}

func TestCreateComputesGrandTotal(t *testing.T) {
	repo := newMemoryJobRepo()
	svc := NewService(repo, nil)

	req := validCreateRequest()
	req.PriceSubtotal = 1000
	job, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.InDelta(t, 1180.0, job.GrandTotal, 0.001)

	zero := 0
	req.TaxPercent = &zero
	job, err = svc.Create(context.Background(), req)
	require.NoError(t, err)
	require.InDelta(t, 1000.0, job.GrandTotal, 0.001)
}

func TestCreateRejectsSocietyWithoutContractLength(t *testing.T) {
	svc := NewService(newMemoryJobRepo(), nil)

	req := validCreateRequest()
	req.Kind = KindSociety
	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, shared.ErrRequiredField)
}

func TestUpdateReportsScheduleChanges(t *testing.T) {
	repo := newMemoryJobRepo()
	svc := NewService(repo, nil)

	job, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	// A price change alone does not touch the schedule.
	price := 500.0
	_, changed, err := svc.Update(context.Background(), job.ID, UpdateJobCardRequest{PriceSubtotal: &price})
	require.NoError(t, err)
	require.False(t, changed)

	// Setting a next service date does.
	next := job.ScheduleDate.AddDate(0, 3, 0)
	updated, changed, err := svc.Update(context.Background(), job.ID, UpdateJobCardRequest{NextServiceDate: &next})
	require.NoError(t, err)
	require.True(t, changed)
	require.NotNil(t, updated.NextServiceDate)

	// So does clearing it again.
	_, changed, err = svc.Update(context.Background(), job.ID, UpdateJobCardRequest{ClearNextServiceDate: true})
	require.NoError(t, err)
	require.True(t, changed)

	// Switching kind is a schedule change even with no dates involved.
	months := 6
	kind := KindSociety
	_, changed, err = svc.Update(context.Background(), job.ID, UpdateJobCardRequest{Kind: &kind, ContractLengthMonths: &months})
	require.NoError(t, err)
	require.True(t, changed)
}

func TestUpdateRecomputesGrandTotal(t *testing.T) {
	repo := newMemoryJobRepo()
	svc := NewService(repo, nil)

	req := validCreateRequest()
	req.PriceSubtotal = 1000
	job, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	price := 2000.0
	updated, _, err := svc.Update(context.Background(), job.ID, UpdateJobCardRequest{PriceSubtotal: &price})
	require.NoError(t, err)
	require.InDelta(t, 2360.0, updated.GrandTotal, 0.001)
}

func TestSetPausedBumpsSummaryCache(t *testing.T) {
	repo := newMemoryJobRepo()
	invalidator := &countingInvalidator{}
	svc := NewService(repo, invalidator)

	job, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, svc.SetPaused(context.Background(), job.ID, true))
	require.Equal(t, 1, invalidator.bumps)

	stored, err := svc.Get(context.Background(), job.ID)
	require.NoError(t, err)
	require.True(t, stored.IsPaused)

	require.NoError(t, svc.SetPaused(context.Background(), job.ID, false))
	require.Equal(t, 2, invalidator.bumps)

	err = svc.SetPaused(context.Background(), 999, true)
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Equal(t, 2, invalidator.bumps)
}

func TestStatistics(t *testing.T) {
	repo := newMemoryJobRepo()
	svc := NewService(repo, nil)

	// Empty portfolio reports zeros, not a division error.
	stats, err := svc.Statistics(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.TotalJobs)
	require.Zero(t, stats.CompletionRate)
	require.Equal(t, "0.00", stats.TotalRevenue)

	for i := 0; i < 3; i++ {
		req := validCreateRequest()
		req.PriceSubtotal = 1000
		job, err := svc.Create(context.Background(), req)
		require.NoError(t, err)
		if i == 0 {
			done := StatusDone
			_, _, err = svc.Update(context.Background(), job.ID, UpdateJobCardRequest{Status: &done})
			require.NoError(t, err)
		}
	}

	stats, err = svc.Statistics(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalJobs)
	require.Equal(t, 1, stats.CompletedJobs)
	require.Equal(t, 2, stats.PendingJobs)
	require.InDelta(t, 33.33, stats.CompletionRate, 0.001)
	require.Equal(t, "3,540.00", stats.TotalRevenue)
}

func TestUpdatePaymentStatus(t *testing.T) {
	repo := newMemoryJobRepo()
	svc := NewService(repo, nil)

	job, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	require.Equal(t, PaymentUnpaid, job.PaymentStatus)

	paid, err := svc.UpdatePaymentStatus(context.Background(), job.ID, PaymentPaid)
	require.NoError(t, err)
	require.Equal(t, PaymentPaid, paid.PaymentStatus)
}
