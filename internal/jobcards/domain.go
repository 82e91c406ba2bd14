package jobcards

import (
	"fmt"
	"time"

	"github.com/greenshield-crm/greenshield-crm/internal/shared"
)

// JobKind distinguishes one-off customer jobs from recurring society contracts.
type JobKind string

const (
	KindCustomer JobKind = "Customer"
	KindSociety  JobKind = "Society"
)

// JobStatus enumerates job card statuses.
type JobStatus string

const (
	StatusEnquiry  JobStatus = "Enquiry"
	StatusWIP      JobStatus = "WIP"
	StatusDone     JobStatus = "Done"
	StatusHold     JobStatus = "Hold"
	StatusCancel   JobStatus = "Cancel"
	StatusInactive JobStatus = "Inactive"
)

// PaymentStatus enumerates payment states.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "Unpaid"
	PaymentPaid   PaymentStatus = "Paid"
)

// contractLengths are the supported society contract durations in months.
var contractLengths = map[int]struct{}{3: {}, 6: {}, 12: {}}

// JobCard model. Code is stamped once from the assigned id and immutable
// afterwards. ClientName is denormalized from the owning client on reads.
type JobCard struct {
	ID                   int64         `json:"id"`
	Code                 string        `json:"code"`
	ClientID             int64         `json:"client_id"`
	ClientName           string        `json:"client_name,omitempty"`
	Kind                 JobKind       `json:"kind"`
	Status               JobStatus     `json:"status"`
	ServiceType          string        `json:"service_type"`
	ScheduleDate         time.Time     `json:"schedule_date"`
	NextServiceDate      *time.Time    `json:"next_service_date,omitempty"`
	ContractLengthMonths *int          `json:"contract_length_months,omitempty"`
	TechnicianName       string        `json:"technician_name"`
	PriceSubtotal        float64       `json:"price_subtotal"`
	TaxPercent           int           `json:"tax_percent"`
	GrandTotal           float64       `json:"grand_total"`
	PaymentStatus        PaymentStatus `json:"payment_status"`
	IsPaused             bool          `json:"is_paused"`
	Notes                *string       `json:"notes,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// FormatCode renders the human-readable code for an assigned id.
func FormatCode(id int64) string {
	return fmt.Sprintf("JC-%04d", id)
}

// ComputeGrandTotal recalculates the total from subtotal and tax percent.
func (j *JobCard) ComputeGrandTotal() {
	j.GrandTotal = j.PriceSubtotal + j.PriceSubtotal*float64(j.TaxPercent)/100
}

// Validate enforces the job card invariants before persistence.
func (j *JobCard) Validate() error {
	switch j.Kind {
	case KindCustomer, KindSociety:
	default:
		return fmt.Errorf("%w: job kind %q", shared.ErrInvalidInput, j.Kind)
	}
	if j.Kind == KindSociety {
		if j.ContractLengthMonths == nil {
			return fmt.Errorf("%w: contract length for society job", shared.ErrRequiredField)
		}
		if _, ok := contractLengths[*j.ContractLengthMonths]; !ok {
			return fmt.Errorf("%w: contract length must be 3, 6 or 12 months", shared.ErrInvalidInput)
		}
	}
	if j.PriceSubtotal < 0 {
		return fmt.Errorf("%w: price subtotal must be zero or positive", shared.ErrInvalidInput)
	}
	if j.TaxPercent < 0 || j.TaxPercent > 100 {
		return fmt.Errorf("%w: tax percent must be between 0 and 100", shared.ErrInvalidInput)
	}
	if j.ScheduleDate.IsZero() {
		return fmt.Errorf("%w: schedule date", shared.ErrRequiredField)
	}
	if j.NextServiceDate != nil && !j.NextServiceDate.After(j.ScheduleDate) {
		return fmt.Errorf("%w: next service date must be after the schedule date", shared.ErrInvalidInput)
	}
	return nil
}
