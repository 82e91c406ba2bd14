package renewals

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

// Repository provides PostgreSQL backed persistence for renewals.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const renewalColumns = `r.id, r.jobcard_id, j.code, r.due_at, r.status, r.kind, r.urgency, r.remarks, r.created_at, r.updated_at`

const renewalFrom = ` FROM renewals r JOIN job_cards j ON j.id = r.jobcard_id`

func scanRenewal(row pgx.Row) (*Renewal, error) {
	var rn Renewal
	err := row.Scan(&rn.ID, &rn.JobCardID, &rn.JobCode, &rn.DueAt, &rn.Status, &rn.Kind, &rn.Urgency, &rn.Remarks, &rn.CreatedAt, &rn.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rn, nil
}

// Get retrieves a renewal by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Renewal, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+renewalColumns+renewalFrom+` WHERE r.id = $1`, id)
	renewal, err := scanRenewal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: renewal %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get renewal: %v", shared.ErrInternal, err)
	}
	return renewal, nil
}

// ListForJob returns every renewal attached to a job card, oldest due first.
func (r *Repository) ListForJob(ctx context.Context, jobID int64) ([]Renewal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+renewalColumns+renewalFrom+` WHERE r.jobcard_id = $1 ORDER BY r.due_at`, jobID)
	if err != nil {
		return nil, fmt.Errorf("%w: list renewals for job: %v", shared.ErrInternal, err)
	}
	return collectRenewals(rows)
}

// ReplaceForJob writes a job's renewal batch in one transaction. When
// clearDue is set the job's open renewals are removed first; completed
// rows are never touched.
func (r *Repository) ReplaceForJob(ctx context.Context, jobID int64, clearDue bool, inputs []RenewalInput) ([]Renewal, error) {
	var ids []int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if clearDue {
			if _, err := tx.Exec(ctx,
				`DELETE FROM renewals WHERE jobcard_id = $1 AND status = $2`, jobID, StatusDue); err != nil {
				return err
			}
		}
		now := time.Now()
		for _, in := range inputs {
			var id int64
			err := tx.QueryRow(ctx,
				`INSERT INTO renewals (jobcard_id, due_at, status, kind, urgency, remarks, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
				 RETURNING id`,
				in.JobCardID, in.DueAt, StatusDue, in.Kind, in.Urgency, in.Remarks, now,
			).Scan(&id)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: replace renewals for job: %v", shared.ErrInternal, err)
	}
	return r.ListForJob(ctx, jobID)
}

// List returns renewals matching the filter plus the total count.
func (r *Repository) List(ctx context.Context, req ListRenewalsRequest) ([]Renewal, int, error) {
	query := `SELECT ` + renewalColumns + renewalFrom + ` WHERE 1=1`
	countQuery := `SELECT COUNT(*)` + renewalFrom + ` WHERE 1=1`
	args := []any{}
	argNum := 1

	appendClause := func(clause string, value any) {
		query += fmt.Sprintf(clause, argNum)
		countQuery += fmt.Sprintf(clause, argNum)
		args = append(args, value)
		argNum++
	}

	if req.JobCardID != nil {
		appendClause(" AND r.jobcard_id = $%d", *req.JobCardID)
	}
	if req.Status != nil {
		appendClause(" AND r.status = $%d", *req.Status)
	}
	if req.Kind != nil {
		appendClause(" AND r.kind = $%d", *req.Kind)
	}
	if req.Urgency != nil {
		appendClause(" AND r.urgency = $%d", *req.Urgency)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: count renewals: %v", shared.ErrInternal, err)
	}

	query += " ORDER BY r.due_at"
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
		return nil, 0, fmt.Errorf("%w: list renewals: %v", shared.ErrInternal, err)
	}
	out, err := collectRenewals(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListDue returns every open renewal, oldest due first. Renewals attached
// to paused job cards are filtered out unless includePaused is set; the
// rows themselves are never mutated by pausing.
func (r *Repository) ListDue(ctx context.Context, includePaused bool) ([]Renewal, error) {
	query := `SELECT ` + renewalColumns + renewalFrom + ` WHERE r.status = $1`
	if !includePaused {
		query += ` AND j.is_paused = FALSE`
	}
	query += ` ORDER BY r.due_at`

	rows, err := r.pool.Query(ctx, query, StatusDue)
	if err != nil {
		return nil, fmt.Errorf("%w: list due renewals: %v", shared.ErrInternal, err)
	}
	return collectRenewals(rows)
}

// ListDueForJob returns one job's open renewals.
func (r *Repository) ListDueForJob(ctx context.Context, jobID int64) ([]Renewal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+renewalColumns+renewalFrom+` WHERE r.jobcard_id = $1 AND r.status = $2 ORDER BY r.due_at`,
		jobID, StatusDue)
	if err != nil {
		return nil, fmt.Errorf("%w: list due renewals for job: %v", shared.ErrInternal, err)
	}
	return collectRenewals(rows)
}

// UpdateUrgency writes only the urgency column.
func (r *Repository) UpdateUrgency(ctx context.Context, id int64, tier UrgencyTier) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE renewals SET urgency = $1, updated_at = NOW() WHERE id = $2`, tier, id)
	if err != nil {
		return fmt.Errorf("%w: update renewal urgency: %v", shared.ErrInternal, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: renewal %d", shared.ErrNotFound, id)
	}
	return nil
}

// MarkCompleted transitions a Due renewal to Completed.
func (r *Repository) MarkCompleted(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE renewals SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		StatusCompleted, id, StatusDue)
	if err != nil {
		return fmt.Errorf("%w: complete renewal: %v", shared.ErrInternal, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: due renewal %d", shared.ErrNotFound, id)
	}
	return nil
}

func collectRenewals(rows pgx.Rows) ([]Renewal, error) {
	defer rows.Close()
	var out []Renewal
	for rows.Next() {
		var rn Renewal
		if err := rows.Scan(&rn.ID, &rn.JobCardID, &rn.JobCode, &rn.DueAt, &rn.Status, &rn.Kind, &rn.Urgency, &rn.Remarks, &rn.CreatedAt, &rn.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan renewal: %v", shared.ErrInternal, err)
		}
		out = append(out, rn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read renewals: %v", shared.ErrInternal, err)
	}
	return out, nil
}
