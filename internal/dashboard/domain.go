package dashboard

import (
	"github.com/greenshield-crm/greenshield-crm/internal/jobcards"
	"github.com/greenshield-crm/greenshield-crm/internal/renewals"
)

// Counts carries raw row counts from the store.
type Counts struct {
	ActiveClients  int `json:"active_clients"`
	TotalInquiries int `json:"total_inquiries"`
	OpenInquiries  int `json:"open_inquiries"`
	PausedJobCards int `json:"paused_job_cards"`
}

// Overview is the single payload behind the back-office landing page.
type Overview struct {
	Counts   Counts                   `json:"counts"`
	JobCards jobcards.Statistics      `json:"job_cards"`
	Renewals renewals.UpcomingSummary `json:"renewals"`
}
