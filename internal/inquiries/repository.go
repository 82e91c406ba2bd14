package inquiries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenshield-crm/greenshield-crm/internal/shared"
)

// Repository provides PostgreSQL backed persistence for inquiries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const inquiryColumns = `id, reference, full_name, mobile, email, city, service_type, message, status, jobcard_id, created_at, updated_at`

func scanInquiry(row pgx.Row) (*Inquiry, error) {
	var in Inquiry
	err := row.Scan(&in.ID, &in.Reference, &in.FullName, &in.Mobile, &in.Email, &in.City,
		&in.ServiceType, &in.Message, &in.Status, &in.JobCardID, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &in, nil
}

// Create inserts an inquiry.
func (r *Repository) Create(ctx context.Context, inquiry Inquiry) (*Inquiry, error) {
	now := time.Now()
	inquiry.CreatedAt = now
	inquiry.UpdatedAt = now

	err := r.pool.QueryRow(ctx,
		`INSERT INTO inquiries (reference, full_name, mobile, email, city, service_type, message, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		 RETURNING id`,
		inquiry.Reference, inquiry.FullName, inquiry.Mobile, inquiry.Email, inquiry.City,
		inquiry.ServiceType, inquiry.Message, inquiry.Status, now,
	).Scan(&inquiry.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: create inquiry: %v", shared.ErrInternal, err)
	}
	return &inquiry, nil
}

// Get retrieves an inquiry by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Inquiry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = $1`, id)
	inquiry, err := scanInquiry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: inquiry %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get inquiry: %v", shared.ErrInternal, err)
	}
	return inquiry, nil
}

// GetByReference retrieves an inquiry by its public reference token.
func (r *Repository) GetByReference(ctx context.Context, reference string) (*Inquiry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE reference = $1`, reference)
	inquiry, err := scanInquiry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: inquiry %s", shared.ErrNotFound, reference)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get inquiry by reference: %v", shared.ErrInternal, err)
	}
	return inquiry, nil
}

// List returns inquiries matching the filter plus the total count.
func (r *Repository) List(ctx context.Context, req ListInquiriesRequest) ([]Inquiry, int, error) {
	query := `SELECT ` + inquiryColumns + ` FROM inquiries WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM inquiries WHERE 1=1`
	args := []any{}
	argNum := 1

	if req.Status != "" {
		clause := fmt.Sprintf(" AND status = $%d", argNum)
		query += clause
		countQuery += clause
		args = append(args, req.Status)
		argNum++
	}
	if req.Search != "" {
		clause := fmt.Sprintf(" AND (full_name ILIKE $%d OR mobile LIKE $%d)", argNum, argNum+1)
		query += clause
		countQuery += clause
		pattern := "%" + req.Search + "%"
		args = append(args, pattern, pattern)
		argNum += 2
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: count inquiries: %v", shared.ErrInternal, err)
	}

	query += " ORDER BY created_at DESC"
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
		return nil, 0, fmt.Errorf("%w: list inquiries: %v", shared.ErrInternal, err)
	}
	defer rows.Close()

	var out []Inquiry
	for rows.Next() {
		var in Inquiry
		if err := rows.Scan(&in.ID, &in.Reference, &in.FullName, &in.Mobile, &in.Email, &in.City,
			&in.ServiceType, &in.Message, &in.Status, &in.JobCardID, &in.CreatedAt, &in.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("%w: scan inquiry: %v", shared.ErrInternal, err)
		}
		out = append(out, in)
	}
	return out, total, rows.Err()
}

// UpdateStatus writes a lifecycle transition.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status InquiryStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE inquiries SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("%w: update inquiry status: %v", shared.ErrInternal, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: inquiry %d", shared.ErrNotFound, id)
	}
	return nil
}

// MarkConverted stamps the inquiry as converted with its job card.
func (r *Repository) MarkConverted(ctx context.Context, id, jobCardID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE inquiries SET status = $1, jobcard_id = $2, updated_at = NOW() WHERE id = $3 AND status <> $1`,
		StatusConverted, jobCardID, id)
	if err != nil {
		return fmt.Errorf("%w: mark inquiry converted: %v", shared.ErrInternal, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: unconverted inquiry %d", shared.ErrNotFound, id)
	}
	return nil
}
