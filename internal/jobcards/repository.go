package jobcards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenshield-crm/greenshield-crm/internal/platform/db"
	"github.com/greenshield-crm/greenshield-crm/internal/shared"
)

// Repository provides PostgreSQL backed persistence for job cards.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const jobColumns = `j.id, j.code, j.client_id, c.full_name, j.kind, j.status, j.service_type,
	j.schedule_date, j.next_service_date, j.contract_length_months, j.technician_name,
	j.price_subtotal, j.tax_percent, j.grand_total, j.payment_status, j.is_paused,
	j.notes, j.created_at, j.updated_at`

func scanJob(row pgx.Row) (*JobCard, error) {
	var j JobCard
	err := row.Scan(
		&j.ID, &j.Code, &j.ClientID, &j.ClientName, &j.Kind, &j.Status, &j.ServiceType,
		&j.ScheduleDate, &j.NextServiceDate, &j.ContractLengthMonths, &j.TechnicianName,
		&j.PriceSubtotal, &j.TaxPercent, &j.GrandTotal, &j.PaymentStatus, &j.IsPaused,
		&j.Notes, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// Create inserts a job card and stamps its code from the assigned id. Both
// steps run in one transaction so a crash cannot leave a row without a code.
func (r *Repository) Create(ctx context.Context, job JobCard) (*JobCard, error) {
	now := time.Now()
	job.CreatedAt = now
	job.UpdatedAt = now

	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO job_cards (
				code, client_id, kind, status, service_type, schedule_date,
				next_service_date, contract_length_months, technician_name,
				price_subtotal, tax_percent, grand_total, payment_status,
				is_paused, notes, created_at, updated_at
			) VALUES ('', $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, FALSE, $13, $14, $14)
			RETURNING id`,
			job.ClientID, job.Kind, job.Status, job.ServiceType, job.ScheduleDate,
			job.NextServiceDate, job.ContractLengthMonths, job.TechnicianName,
			job.PriceSubtotal, job.TaxPercent, job.GrandTotal, job.PaymentStatus,
			job.Notes, now,
		).Scan(&job.ID)
		if err != nil {
			return err
		}

		job.Code = FormatCode(job.ID)
		_, err = tx.Exec(ctx, `UPDATE job_cards SET code = $1 WHERE id = $2`, job.Code, job.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create job card: %v", shared.ErrInternal, err)
	}
	return &job, nil
}

// Get retrieves a job card with the owning client's name.
func (r *Repository) Get(ctx context.Context, id int64) (*JobCard, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM job_cards j JOIN clients c ON c.id = j.client_id WHERE j.id = $1`, id)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: job card %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get job card: %v", shared.ErrInternal, err)
	}
	return job, nil
}

// List returns job cards matching the filter plus the total count.
func (r *Repository) List(ctx context.Context, req ListJobCardsRequest) ([]JobCard, int, error) {
	query := `SELECT ` + jobColumns + ` FROM job_cards j JOIN clients c ON c.id = j.client_id WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM job_cards j WHERE 1=1`
	args := []any{}
	argNum := 1

	appendClause := func(clause string, value any) {
		query += fmt.Sprintf(clause, argNum)
		countQuery += fmt.Sprintf(clause, argNum)
		args = append(args, value)
		argNum++
	}

	if req.ClientID > 0 {
		appendClause(" AND j.client_id = $%d", req.ClientID)
	}
	if req.Status != "" {
		appendClause(" AND j.status = $%d", req.Status)
	}
	if req.PaymentStatus != "" {
		appendClause(" AND j.payment_status = $%d", req.PaymentStatus)
	}
	if req.Kind != "" {
		appendClause(" AND j.kind = $%d", req.Kind)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: count job cards: %v", shared.ErrInternal, err)
	}

	query += " ORDER BY j.created_at DESC"
	if req.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, req.Limit)
		argNum++
	}
	if req.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, req.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: list job cards: %v", shared.ErrInternal, err)
	}
	defer rows.Close()

	var out []JobCard
	for rows.Next() {
		var j JobCard
		err := rows.Scan(
			&j.ID, &j.Code, &j.ClientID, &j.ClientName, &j.Kind, &j.Status, &j.ServiceType,
			&j.ScheduleDate, &j.NextServiceDate, &j.ContractLengthMonths, &j.TechnicianName,
			&j.PriceSubtotal, &j.TaxPercent, &j.GrandTotal, &j.PaymentStatus, &j.IsPaused,
			&j.Notes, &j.CreatedAt, &j.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scan job card: %v", shared.ErrInternal, err)
		}
		out = append(out, j)
	}
	return out, total, rows.Err()
}

// Save writes all mutable columns. The code column is never updated.
func (r *Repository) Save(ctx context.Context, job *JobCard) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE job_cards SET
			kind = $1, status = $2, service_type = $3, schedule_date = $4,
			next_service_date = $5, contract_length_months = $6, technician_name = $7,
			price_subtotal = $8, tax_percent = $9, grand_total = $10,
			payment_status = $11, notes = $12, updated_at = NOW()
		WHERE id = $13`,
		job.Kind, job.Status, job.ServiceType, job.ScheduleDate,
		job.NextServiceDate, job.ContractLengthMonths, job.TechnicianName,
		job.PriceSubtotal, job.TaxPercent, job.GrandTotal,
		job.PaymentStatus, job.Notes, job.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: save job card: %v", shared.ErrInternal, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: job card %d", shared.ErrNotFound, job.ID)
	}
	return nil
}

// SetPaused flips the pause flag only.
func (r *Repository) SetPaused(ctx context.Context, id int64, paused bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE job_cards SET is_paused = $1, updated_at = NOW() WHERE id = $2`, paused, id)
	if err != nil {
		return fmt.Errorf("%w: set paused: %v", shared.ErrInternal, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: job card %d", shared.ErrNotFound, id)
	}
	return nil
}

// Aggregate computes portfolio totals in one round trip.
func (r *Repository) Aggregate(ctx context.Context) (AggregateRow, error) {
	var agg AggregateRow
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'Done'),
			COALESCE(SUM(grand_total), 0)
		 FROM job_cards`,
	).Scan(&agg.Total, &agg.Completed, &agg.Revenue)
	if err != nil {
		return AggregateRow{}, fmt.Errorf("%w: aggregate job cards: %v", shared.ErrInternal, err)
	}
	return agg, nil
}
