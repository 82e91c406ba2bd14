package renewals

// ListRenewalsRequest filters the renewal listing.
type ListRenewalsRequest struct {
	JobCardID *int64
	Status    *RenewalStatus
	Kind      *RenewalKind
	Urgency   *UrgencyTier
	Limit     int
	Offset    int
}

// ListRenewalsResponse wraps a page of renewals.
type ListRenewalsResponse struct {
	Renewals []Renewal `json:"renewals"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

// RecomputeResponse reports how many urgency tiers a sweep changed.
type RecomputeResponse struct {
	Changed int `json:"changed"`
}
