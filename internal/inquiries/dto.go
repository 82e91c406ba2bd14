package inquiries

import "time"

// CreateInquiryRequest is the public intake payload.
type CreateInquiryRequest struct {
	FullName    string  `json:"full_name" validate:"required,max=150"`
	Mobile      string  `json:"mobile" validate:"required,max=20"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	City        *string `json:"city,omitempty" validate:"omitempty,max=100"`
	ServiceType string  `json:"service_type" validate:"required,max=100"`
	Message     *string `json:"message,omitempty" validate:"omitempty,max=1000"`
}

// CreateInquiryResponse acknowledges intake with the public reference only.
type CreateInquiryResponse struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// ConvertInquiryRequest carries the operational fields needed to open a
// job card from an accepted inquiry.
type ConvertInquiryRequest struct {
	Kind                 string     `json:"kind" validate:"required,oneof=Customer Society"`
	ScheduleDate         time.Time  `json:"schedule_date" validate:"required"`
	NextServiceDate      *time.Time `json:"next_service_date,omitempty"`
	ContractLengthMonths *int       `json:"contract_length_months,omitempty" validate:"omitempty,oneof=3 6 12"`
	TechnicianName       string     `json:"technician_name" validate:"max=100"`
	PriceSubtotal        float64    `json:"price_subtotal" validate:"gte=0"`
	TaxPercent           *int       `json:"tax_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// ListInquiriesRequest filters the inquiry listing.
type ListInquiriesRequest struct {
	Status InquiryStatus
	Search string
	Limit  int
	Offset int
}
