package jobcards

import "time"

// CreateJobCardRequest is the payload for creating a job card.
type CreateJobCardRequest struct {
	ClientID             int64      `json:"client_id" validate:"required,gt=0"`
	Kind                 JobKind    `json:"kind" validate:"required,oneof=Customer Society"`
	ServiceType          string     `json:"service_type" validate:"required,max=100"`
	ScheduleDate         time.Time  `json:"schedule_date" validate:"required"`
	NextServiceDate      *time.Time `json:"next_service_date,omitempty"`
	ContractLengthMonths *int       `json:"contract_length_months,omitempty" validate:"omitempty,oneof=3 6 12"`
	TechnicianName       string     `json:"technician_name" validate:"max=100"`
	PriceSubtotal        float64    `json:"price_subtotal" validate:"gte=0"`
	TaxPercent           *int       `json:"tax_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	Notes                *string    `json:"notes,omitempty"`
}

// UpdateJobCardRequest carries partial job card updates.
type UpdateJobCardRequest struct {
	Kind                 *JobKind       `json:"kind,omitempty" validate:"omitempty,oneof=Customer Society"`
	Status               *JobStatus     `json:"status,omitempty" validate:"omitempty,oneof=Enquiry WIP Done Hold Cancel Inactive"`
	ServiceType          *string        `json:"service_type,omitempty" validate:"omitempty,max=100"`
	ScheduleDate         *time.Time     `json:"schedule_date,omitempty"`
	NextServiceDate      *time.Time     `json:"next_service_date,omitempty"`
	ClearNextServiceDate bool           `json:"clear_next_service_date,omitempty"`
	ContractLengthMonths *int           `json:"contract_length_months,omitempty" validate:"omitempty,oneof=3 6 12"`
	TechnicianName       *string        `json:"technician_name,omitempty" validate:"omitempty,max=100"`
	PriceSubtotal        *float64       `json:"price_subtotal,omitempty" validate:"omitempty,gte=0"`
	TaxPercent           *int           `json:"tax_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	PaymentStatus        *PaymentStatus `json:"payment_status,omitempty" validate:"omitempty,oneof=Unpaid Paid"`
	Notes                *string        `json:"notes,omitempty"`
}

// ListJobCardsRequest filters the job card listing.
type ListJobCardsRequest struct {
	ClientID      int64
	Status        JobStatus
	PaymentStatus PaymentStatus
	Kind          JobKind
	Limit         int
	Offset        int
}

// Statistics summarises the job card portfolio.
type Statistics struct {
	TotalJobs      int     `json:"total_jobs"`
	CompletedJobs  int     `json:"completed_jobs"`
	PendingJobs    int     `json:"pending_jobs"`
	TotalRevenue   string  `json:"total_revenue"`
	CompletionRate float64 `json:"completion_rate"`
}
