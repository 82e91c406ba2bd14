package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/greenshield-crm/greenshield-crm/internal/notify"
	"github.com/greenshield-crm/greenshield-crm/internal/renewals"
)

const defaultLeadDays = 7

// RenewalEngine is the slice of the renewals service the scan needs.
type RenewalEngine interface {
	RecomputeAllDue(ctx context.Context) (int, error)
	ListDue(ctx context.Context, includePaused bool) ([]renewals.Renewal, error)
}

// ReminderScanJob refreshes urgency tiers across the open renewal set and
// dispatches reminders for entries due within the lead window. Paused jobs
// are skipped at dispatch but their tiers still get refreshed.
type ReminderScanJob struct {
	Engine RenewalEngine
	Sender notify.Sender
	Logger *slog.Logger
	clock  func() time.Time
}

// NewReminderScanJob initialises the reminder scan handler.
func NewReminderScanJob(engine RenewalEngine, sender notify.Sender, logger *slog.Logger) *ReminderScanJob {
	return &ReminderScanJob{
		Engine: engine,
		Sender: sender,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the reminder scan.
func (j *ReminderScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Engine == nil {
		return errors.New("reminder scan: handler not configured")
	}
	var payload ReminderScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.LeadDays <= 0 {
		payload.LeadDays = defaultLeadDays
	}

	start := j.now()
	logger := j.logger().With(slog.Int("lead_days", payload.LeadDays))
	logger.Info("starting reminder scan")

	changed, err := j.Engine.RecomputeAllDue(ctx)
	if err != nil {
		logger.Error("urgency recompute failed", slog.Any("error", err))
		return err
	}

	due, err := j.Engine.ListDue(ctx, false)
	if err != nil {
		logger.Error("listing due renewals failed", slog.Any("error", err))
		return err
	}

	cutoff := start.AddDate(0, 0, payload.LeadDays)
	dispatched := 0
	for i := range due {
		if due[i].DueAt.After(cutoff) {
			continue
		}
		if err := j.send(ctx, due[i]); err != nil {
			logger.Warn("reminder dispatch failed",
				slog.Int64("renewal_id", due[i].ID), slog.Any("error", err))
			continue
		}
		dispatched++
	}

	logger.Info("completed reminder scan",
		slog.Int("urgency_changed", changed),
		slog.Int("due", len(due)),
		slog.Int("dispatched", dispatched),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *ReminderScanJob) send(ctx context.Context, rn renewals.Renewal) error {
	if j.Sender == nil {
		return nil
	}
	reminder := notify.Reminder{
		JobCode:   rn.JobCode,
		RenewalID: rn.ID,
		Kind:      string(rn.Kind),
		Urgency:   string(rn.Urgency),
		DueAt:     rn.DueAt,
	}
	if rn.Remarks != nil {
		reminder.Remarks = *rn.Remarks
	}
	return j.Sender.Send(ctx, reminder)
}

func (j *ReminderScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskRenewalReminderScan))
	}
	return slog.Default().With(slog.String("job", TaskRenewalReminderScan))
}

func (j *ReminderScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
