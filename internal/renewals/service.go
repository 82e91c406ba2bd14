package renewals

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/greenshield-crm/greenshield-crm/internal/jobcards"
	"github.com/greenshield-crm/greenshield-crm/internal/shared"
)

// RepositoryPort defines data access methods for renewals.
type RepositoryPort interface {
	Get(ctx context.Context, id int64) (*Renewal, error)
	ListForJob(ctx context.Context, jobID int64) ([]Renewal, error)
	// ReplaceForJob atomically writes a job's renewal batch: when clearDue
	// is set, existing Due rows are removed first; either the whole batch
	// commits or nothing does.
	ReplaceForJob(ctx context.Context, jobID int64, clearDue bool, inputs []RenewalInput) ([]Renewal, error)
	List(ctx context.Context, req ListRenewalsRequest) ([]Renewal, int, error)
	ListDue(ctx context.Context, includePaused bool) ([]Renewal, error)
	ListDueForJob(ctx context.Context, jobID int64) ([]Renewal, error)
	UpdateUrgency(ctx context.Context, id int64, tier UrgencyTier) error
	MarkCompleted(ctx context.Context, id int64) error
}

// Service owns renewal generation, urgency recomputation and summaries.
type Service struct {
	repo  RepositoryPort
	cache *Cache
	loc   *time.Location
	clock func() time.Time
	group singleflight.Group
}

// NewService builds Service instance. cache may be nil.
func NewService(repo RepositoryPort, cache *Cache, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:  repo,
		cache: cache,
		loc:   loc,
		clock: time.Now,
	}
}

// midnight anchors a date to 00:00 in the business timezone.
func (s *Service) midnight(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

// GenerateForJob materializes the renewal schedule for a job card.
//
// Without force the call is idempotent: when any renewals already exist for
// the job they are returned untouched. With force the job's Due renewals
// are replaced by a freshly computed set (Completed rows are kept). The
// whole batch commits atomically and every entry carries an urgency tier
// computed against the current time before it is persisted.
func (s *Service) GenerateForJob(ctx context.Context, job jobcards.JobCard, force bool) ([]Renewal, error) {
	existing, err := s.repo.ListForJob(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("list renewals for job: %w", err)
	}
	if len(existing) > 0 && !force {
		return existing, nil
	}

	inputs, err := s.buildSchedule(job)
	if err != nil {
		return nil, err
	}

	out, err := s.repo.ReplaceForJob(ctx, job.ID, force, inputs)
	if err != nil {
		return nil, fmt.Errorf("persist renewals: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
	return out, nil
}

func (s *Service) buildSchedule(job jobcards.JobCard) ([]RenewalInput, error) {
	now := s.clock()

	switch job.Kind {
	case jobcards.KindCustomer:
		if job.NextServiceDate == nil {
			return nil, nil
		}
		due := s.midnight(*job.NextServiceDate)
		remarks := fmt.Sprintf("Service renewal for %s", job.ClientName)
		return []RenewalInput{{
			JobCardID: job.ID,
			DueAt:     due,
			Kind:      KindContractRenewal,
			Urgency:   Classify(due, now),
			Remarks:   &remarks,
		}}, nil

	case jobcards.KindSociety:
		if job.ContractLengthMonths == nil {
			return nil, fmt.Errorf("%w: job %s", shared.ErrMissingContractLength, job.Code)
		}
		months := *job.ContractLengthMonths
		base := s.midnight(job.ScheduleDate)

		inputs := make([]RenewalInput, 0, months+1)

		contractEnd := base.AddDate(0, months, 0).AddDate(0, 0, -1)
		contractRemarks := fmt.Sprintf("Contract renewal for %s (%d month contract)", job.ClientName, months)
		inputs = append(inputs, RenewalInput{
			JobCardID: job.ID,
			DueAt:     contractEnd,
			Kind:      KindContractRenewal,
			Urgency:   Classify(contractEnd, now),
			Remarks:   &contractRemarks,
		})

		for k := 1; k <= months; k++ {
			due := base.AddDate(0, k, 0).AddDate(0, 0, -1)
			remarks := fmt.Sprintf("Monthly service reminder %d of %d for %s", k, months, job.ClientName)
			inputs = append(inputs, RenewalInput{
				JobCardID: job.ID,
				DueAt:     due,
				Kind:      KindMonthlyReminder,
				Urgency:   Classify(due, now),
				Remarks:   &remarks,
			})
		}
		return inputs, nil

	default:
		return nil, fmt.Errorf("%w: job kind %q", shared.ErrInvalidInput, job.Kind)
	}
}

// ScheduleForJob satisfies the job card orchestration hook.
func (s *Service) ScheduleForJob(ctx context.Context, job jobcards.JobCard, force bool) error {
	_, err := s.GenerateForJob(ctx, job, force)
	return err
}

// RecomputeOne refreshes a single renewal's urgency, writing only the tier
// column and only when it actually changed.
func (s *Service) RecomputeOne(ctx context.Context, id int64) (*Renewal, error) {
	renewal, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if renewal.Status != StatusDue {
		return renewal, nil
	}
	tier := Classify(renewal.DueAt, s.clock())
	if tier == renewal.Urgency {
		return renewal, nil
	}
	if err := s.repo.UpdateUrgency(ctx, id, tier); err != nil {
		return nil, fmt.Errorf("update urgency: %w", err)
	}
	renewal.Urgency = tier
	return renewal, nil
}

// RecomputeAllDue refreshes every Due renewal and returns the number of
// rows actually changed. Running it twice back to back changes nothing on
// the second run.
func (s *Service) RecomputeAllDue(ctx context.Context) (int, error) {
	due, err := s.repo.ListDue(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("list due renewals: %w", err)
	}
	return s.recompute(ctx, due)
}

// RecomputeForJob refreshes the Due renewals of one job so sibling entries
// stay consistent with now after any of them is saved.
func (s *Service) RecomputeForJob(ctx context.Context, jobID int64) (int, error) {
	due, err := s.repo.ListDueForJob(ctx, jobID)
	if err != nil {
		return 0, fmt.Errorf("list due renewals for job: %w", err)
	}
	return s.recompute(ctx, due)
}

func (s *Service) recompute(ctx context.Context, due []Renewal) (int, error) {
	now := s.clock()
	changed := 0
	for i := range due {
		tier := Classify(due[i].DueAt, now)
		if tier == due[i].Urgency {
			continue
		}
		if err := s.repo.UpdateUrgency(ctx, due[i].ID, tier); err != nil {
			return changed, fmt.Errorf("update urgency: %w", err)
		}
		changed++
	}
	if changed > 0 && s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
	return changed, nil
}

// MarkCompleted closes a renewal and refreshes its siblings' urgency.
func (s *Service) MarkCompleted(ctx context.Context, id int64) (*Renewal, error) {
	renewal, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkCompleted(ctx, id); err != nil {
		return nil, fmt.Errorf("mark renewal completed: %w", err)
	}
	if _, err := s.RecomputeForJob(ctx, renewal.JobCardID); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
	return s.repo.Get(ctx, id)
}

// Get returns a renewal by id.
func (s *Service) Get(ctx context.Context, id int64) (*Renewal, error) {
	return s.repo.Get(ctx, id)
}

// List returns renewals matching the filter.
func (s *Service) List(ctx context.Context, req ListRenewalsRequest) ([]Renewal, int, error) {
	return s.repo.List(ctx, req)
}

// ListDue exposes the open renewal set, optionally including paused jobs.
func (s *Service) ListDue(ctx context.Context, includePaused bool) ([]Renewal, error) {
	return s.repo.ListDue(ctx, includePaused)
}

// UpcomingSummary aggregates Due renewals windowed at now, now+7d and
// now+30d. Renewals whose job is paused are excluded unless includePaused.
// Results are cached under a versioned key; concurrent cold reads collapse
// into one load.
func (s *Service) UpcomingSummary(ctx context.Context, includePaused bool) (UpcomingSummary, error) {
	key, err := s.cache.BuildKey(ctx, "renewals", "summary", fmt.Sprintf("paused=%t", includePaused))
	if err != nil {
		return UpcomingSummary{}, fmt.Errorf("build summary cache key: %w", err)
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		var summary UpcomingSummary
		err := s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (interface{}, error) {
			return s.computeSummary(ctx, includePaused)
		})
		return summary, err
	})
	if err != nil {
		return UpcomingSummary{}, err
	}
	return result.(UpcomingSummary), nil
}

func (s *Service) computeSummary(ctx context.Context, includePaused bool) (UpcomingSummary, error) {
	due, err := s.repo.ListDue(ctx, includePaused)
	if err != nil {
		return UpcomingSummary{}, fmt.Errorf("list due renewals: %w", err)
	}

	now := s.clock()
	week := now.Add(7 * 24 * time.Hour)
	month := now.Add(30 * 24 * time.Hour)

	var summary UpcomingSummary
	for i := range due {
		d := due[i].DueAt
		switch {
		case d.Before(now):
			summary.Overdue++
		case !d.After(week):
			summary.DueThisWeek++
			summary.DueThisMonth++
		case !d.After(month):
			summary.DueThisMonth++
		}

		// Tier counts use the pure classification so a stale stored
		// column can never skew the summary.
		switch Classify(d, now) {
		case UrgencyHigh:
			summary.HighUrgency++
		case UrgencyMedium:
			summary.MedUrgency++
		default:
			summary.NormUrgency++
		}
	}
	return summary, nil
}
