package clients

// CreateClientRequest is the payload for registering a client. Creation is
// idempotent per mobile number: repeated submissions resolve to one row.
type CreateClientRequest struct {
	FullName string  `json:"full_name" validate:"required,max=100"`
	Mobile   string  `json:"mobile" validate:"required"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	City     *string `json:"city,omitempty" validate:"omitempty,max=50"`
}

// UpdateClientRequest carries partial client updates.
type UpdateClientRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,max=100"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	City     *string `json:"city,omitempty" validate:"omitempty,max=50"`
	Address  *string `json:"address,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// ListClientsRequest filters the client listing.
type ListClientsRequest struct {
	City     string
	IsActive *bool
	Search   string
	Limit    int
	Offset   int
}

// ClientResponse wraps a client with the creation outcome.
type ClientResponse struct {
	Client  Client `json:"client"`
	Created bool   `json:"created"`
}
