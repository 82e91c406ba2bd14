package dashboard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenshield-crm/greenshield-crm/internal/shared"
)

// Repository reads cross-module row counts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Counts gathers the overview counters in one round trip.
func (r *Repository) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM clients WHERE is_active),
			(SELECT COUNT(*) FROM inquiries),
			(SELECT COUNT(*) FROM inquiries WHERE status IN ('New', 'Contacted')),
			(SELECT COUNT(*) FROM job_cards WHERE is_paused)`,
	).Scan(&c.ActiveClients, &c.TotalInquiries, &c.OpenInquiries, &c.PausedJobCards)
	if err != nil {
		return Counts{}, fmt.Errorf("%w: dashboard counts: %v", shared.ErrInternal, err)
	}
	return c, nil
}
