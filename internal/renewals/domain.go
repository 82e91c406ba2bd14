package renewals

import "time"

// RenewalStatus enumerates renewal statuses.
type RenewalStatus string

const (
	StatusDue       RenewalStatus = "Due"
	StatusCompleted RenewalStatus = "Completed"
)

// RenewalKind distinguishes contract-end renewals from monthly reminders.
type RenewalKind string

const (
	KindContractRenewal RenewalKind = "ContractRenewal"
	KindMonthlyReminder RenewalKind = "MonthlyReminder"
)

// Renewal model. Urgency is a pure function of (DueAt, now) and is kept
// consistent with that function whenever a row is persisted or read for
// urgency-dependent filtering.
type Renewal struct {
	ID        int64         `json:"id"`
	JobCardID int64         `json:"jobcard_id"`
	JobCode   string        `json:"job_code,omitempty"`
	DueAt     time.Time     `json:"due_at"`
	Status    RenewalStatus `json:"status"`
	Kind      RenewalKind   `json:"kind"`
	Urgency   UrgencyTier   `json:"urgency"`
	Remarks   *string       `json:"remarks,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// RenewalInput carries the fields for creating one renewal entry.
type RenewalInput struct {
	JobCardID int64
	DueAt     time.Time
	Kind      RenewalKind
	Urgency   UrgencyTier
	Remarks   *string
}

// UpcomingSummary aggregates the open renewal set windowed at now.
type UpcomingSummary struct {
	DueThisWeek  int `json:"due_this_week"`
	DueThisMonth int `json:"due_this_month"`
	Overdue      int `json:"overdue"`
	HighUrgency  int `json:"high_urgency"`
	MedUrgency   int `json:"medium_urgency"`
	NormUrgency  int `json:"normal_urgency"`
}
