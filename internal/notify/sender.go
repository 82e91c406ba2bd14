// Package notify delivers renewal reminders to the office channel.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Reminder is one due-soon renewal flattened for delivery.
type Reminder struct {
	JobCode   string    `json:"job_code"`
	RenewalID int64     `json:"renewal_id"`
	Kind      string    `json:"kind"`
	Urgency   string    `json:"urgency"`
	DueAt     time.Time `json:"due_at"`
	Remarks   string    `json:"remarks,omitempty"`
}

// Sender delivers reminders. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, reminder Reminder) error
}

// LogSender writes reminders to the structured log. It stands in until an
// SMS or email gateway is wired up.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender builds LogSender instance.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, reminder Reminder) error {
	s.logger.Info("renewal reminder",
		slog.String("job_code", reminder.JobCode),
		slog.Int64("renewal_id", reminder.RenewalID),
		slog.String("kind", reminder.Kind),
		slog.String("urgency", reminder.Urgency),
		slog.Time("due_at", reminder.DueAt),
	)
	return nil
}
