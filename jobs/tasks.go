package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRenewalReminderScan refreshes urgency tiers and dispatches
	// reminders for renewals coming due.
	TaskRenewalReminderScan = "renewals:reminder_scan"
)

// ReminderScanPayload tunes a reminder scan run.
type ReminderScanPayload struct {
	// LeadDays widens the dispatch window beyond overdue entries.
	LeadDays int `json:"lead_days"`
}

// NewReminderScanTask constructs an Asynq task.
func NewReminderScanTask(payload ReminderScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRenewalReminderScan, data), nil
}
