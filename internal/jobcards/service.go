package jobcards

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// defaultTaxPercent applies when a job card is created without one.
const defaultTaxPercent = 18

// AggregateRow carries raw portfolio aggregates from the store.
type AggregateRow struct {
	Total     int
	Completed int
	Revenue   float64
}

// RepositoryPort defines data access methods for job cards.
type RepositoryPort interface {
	// Create inserts the job card and stamps its code from the assigned
	// id in the same transaction.
	Create(ctx context.Context, job JobCard) (*JobCard, error)
	Get(ctx context.Context, id int64) (*JobCard, error)
	List(ctx context.Context, req ListJobCardsRequest) ([]JobCard, int, error)
	Save(ctx context.Context, job *JobCard) error
	SetPaused(ctx context.Context, id int64, paused bool) error
	Aggregate(ctx context.Context) (AggregateRow, error)
}

// SummaryInvalidator is notified whenever a mutation can change the
// upcoming-renewal summary, so cached aggregates get dropped.
type SummaryInvalidator interface {
	Bump(ctx context.Context) error
}

// Service handles job card business logic.
type Service struct {
	repo        RepositoryPort
	invalidator SummaryInvalidator
	printer     *message.Printer
}

// NewService builds Service instance. invalidator may be nil.
func NewService(repo RepositoryPort, invalidator SummaryInvalidator) *Service {
	return &Service{
		repo:        repo,
		invalidator: invalidator,
		printer:     message.NewPrinter(language.English),
	}
}

// Create validates and persists a new job card.
func (s *Service) Create(ctx context.Context, req CreateJobCardRequest) (*JobCard, error) {
	tax := defaultTaxPercent
	if req.TaxPercent != nil {
		tax = *req.TaxPercent
	}

	job := JobCard{
		ClientID:             req.ClientID,
		Kind:                 req.Kind,
		Status:               StatusEnquiry,
		ServiceType:          strings.TrimSpace(req.ServiceType),
		ScheduleDate:         req.ScheduleDate,
		NextServiceDate:      req.NextServiceDate,
		ContractLengthMonths: req.ContractLengthMonths,
		TechnicianName:       strings.TrimSpace(req.TechnicianName),
		PriceSubtotal:        req.PriceSubtotal,
		TaxPercent:           tax,
		PaymentStatus:        PaymentUnpaid,
		Notes:                req.Notes,
	}
	job.ComputeGrandTotal()

	if err := job.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("create job card: %w", err)
	}
	// Re-read so the denormalized client name is populated for callers
	// that schedule renewals off the returned card.
	return s.repo.Get(ctx, created.ID)
}

// Update applies partial updates and reports whether a schedule-relevant
// field (kind, contract length, next service date) changed, which tells the
// orchestration layer to regenerate the renewal schedule.
func (s *Service) Update(ctx context.Context, id int64, req UpdateJobCardRequest) (*JobCard, bool, error) {
	job, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("get job card: %w", err)
	}

	before := *job

	if req.Kind != nil {
		job.Kind = *req.Kind
	}
	if req.Status != nil {
		job.Status = *req.Status
	}
	if req.ServiceType != nil {
		job.ServiceType = strings.TrimSpace(*req.ServiceType)
	}
	if req.ScheduleDate != nil {
		job.ScheduleDate = *req.ScheduleDate
	}
	if req.ClearNextServiceDate {
		job.NextServiceDate = nil
	} else if req.NextServiceDate != nil {
		job.NextServiceDate = req.NextServiceDate
	}
	if req.ContractLengthMonths != nil {
		job.ContractLengthMonths = req.ContractLengthMonths
	}
	if req.TechnicianName != nil {
		job.TechnicianName = strings.TrimSpace(*req.TechnicianName)
	}
	if req.PriceSubtotal != nil {
		job.PriceSubtotal = *req.PriceSubtotal
	}
	if req.TaxPercent != nil {
		job.TaxPercent = *req.TaxPercent
	}
	if req.PaymentStatus != nil {
		job.PaymentStatus = *req.PaymentStatus
	}
	if req.Notes != nil {
		job.Notes = req.Notes
	}
	job.ComputeGrandTotal()

	if err := job.Validate(); err != nil {
		return nil, false, err
	}

	if err := s.repo.Save(ctx, job); err != nil {
		return nil, false, fmt.Errorf("save job card: %w", err)
	}

	return job, scheduleFieldsChanged(&before, job), nil
}

func scheduleFieldsChanged(before, after *JobCard) bool {
	if before.Kind != after.Kind {
		return true
	}
	if !intPtrEqual(before.ContractLengthMonths, after.ContractLengthMonths) {
		return true
	}
	switch {
	case before.NextServiceDate == nil && after.NextServiceDate == nil:
	case before.NextServiceDate == nil || after.NextServiceDate == nil:
		return true
	case !before.NextServiceDate.Equal(*after.NextServiceDate):
		return true
	}
	return !before.ScheduleDate.Equal(after.ScheduleDate)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Get returns a job card by id.
func (s *Service) Get(ctx context.Context, id int64) (*JobCard, error) {
	return s.repo.Get(ctx, id)
}

// List returns job cards matching the filter.
func (s *Service) List(ctx context.Context, req ListJobCardsRequest) ([]JobCard, int, error) {
	return s.repo.List(ctx, req)
}

// SetPaused toggles the pause flag. Renewal rows are never touched: active
// renewal views filter on this flag at read time.
func (s *Service) SetPaused(ctx context.Context, id int64, paused bool) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return fmt.Errorf("get job card: %w", err)
	}
	if err := s.repo.SetPaused(ctx, id, paused); err != nil {
		return fmt.Errorf("set job card paused: %w", err)
	}
	if s.invalidator != nil {
		_ = s.invalidator.Bump(ctx)
	}
	return nil
}

// UpdatePaymentStatus records a payment state change.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id int64, status PaymentStatus) (*JobCard, error) {
	_, _, err := s.Update(ctx, id, UpdateJobCardRequest{PaymentStatus: &status})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Statistics aggregates the portfolio: totals, revenue and completion rate.
func (s *Service) Statistics(ctx context.Context) (Statistics, error) {
	agg, err := s.repo.Aggregate(ctx)
	if err != nil {
		return Statistics{}, fmt.Errorf("aggregate job cards: %w", err)
	}

	rate := 0.0
	if agg.Total > 0 {
		rate = math.Round(float64(agg.Completed)/float64(agg.Total)*10000) / 100
	}
	return Statistics{
		TotalJobs:      agg.Total,
		CompletedJobs:  agg.Completed,
		PendingJobs:    agg.Total - agg.Completed,
		TotalRevenue:   s.printer.Sprintf("%.2f", agg.Revenue),
		CompletionRate: rate,
	}, nil
}
