package clients

import "time"

// Client represents a customer of the pest control service.
type Client struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Mobile    string    `json:"mobile"`
	Email     *string   `json:"email,omitempty"`
	City      string    `json:"city"`
	Address   *string   `json:"address,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientInput carries the fields accepted on the creating path.
// Mobile must already be normalized.
type ClientInput struct {
	FullName string
	Mobile   string
	Email    *string
	City     string
	Address  *string
	Notes    *string
}
