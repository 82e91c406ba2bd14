package inquiries

import "time"

// InquiryStatus enumerates the lifecycle of a public inquiry.
type InquiryStatus string

const (
	StatusNew       InquiryStatus = "New"
	StatusContacted InquiryStatus = "Contacted"
	StatusConverted InquiryStatus = "Converted"
	StatusClosed    InquiryStatus = "Closed"
)

// Inquiry is a lead captured from the public intake form. Reference is an
// opaque token handed back to the submitter; internal ids are never exposed
// on the public surface.
type Inquiry struct {
	ID          int64         `json:"id"`
	Reference   string        `json:"reference"`
	FullName    string        `json:"full_name"`
	Mobile      string        `json:"mobile"`
	Email       *string       `json:"email,omitempty"`
	City        *string       `json:"city,omitempty"`
	ServiceType string        `json:"service_type"`
	Message     *string       `json:"message,omitempty"`
	Status      InquiryStatus `json:"status"`
	JobCardID   *int64        `json:"jobcard_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
