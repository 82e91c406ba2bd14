package clients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenshield-crm/greenshield-crm/internal/platform/db"
	"github.com/greenshield-crm/greenshield-crm/internal/shared"
)

const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence for clients.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const clientColumns = `id, full_name, mobile, email, city, address, notes, is_active, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.FullName, &c.Mobile, &c.Email, &c.City, &c.Address, &c.Notes, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindOrCreate locks the row for the normalized mobile number and returns
// it, inserting when absent. A concurrent insert committing between the
// lock attempt and our insert raises a unique violation; the transaction is
// retried once and the now-existing row is returned. Callers racing on
// distinct numbers never block each other.
func (r *Repository) FindOrCreate(ctx context.Context, input ClientInput) (*Client, bool, error) {
	const attempts = 2
	for attempt := 0; attempt < attempts; attempt++ {
		var client *Client
		var created bool

		err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
			row := tx.QueryRow(ctx,
				`SELECT `+clientColumns+` FROM clients WHERE mobile = $1 FOR UPDATE`,
				input.Mobile,
			)
			existing, err := scanClient(row)
			if err == nil {
				client = existing
				return nil
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}

			now := time.Now()
			inserted := &Client{
				FullName:  input.FullName,
				Mobile:    input.Mobile,
				Email:     input.Email,
				City:      input.City,
				Address:   input.Address,
				Notes:     input.Notes,
				IsActive:  true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			err = tx.QueryRow(ctx,
				`INSERT INTO clients (full_name, mobile, email, city, address, notes, is_active, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7, $7)
				 RETURNING id`,
				input.FullName, input.Mobile, input.Email, input.City, input.Address, input.Notes, now,
			).Scan(&inserted.ID)
			if err != nil {
				return err
			}
			client = inserted
			created = true
			return nil
		})
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				// Lost the insert race; the winner has committed, so the
				// next iteration finds the row under lock.
				continue
			}
			return nil, false, fmt.Errorf("%w: find or create client: %v", shared.ErrInternal, err)
		}
		return client, created, nil
	}
	return nil, false, fmt.Errorf("%w: client dedup did not converge", shared.ErrInternal)
}

// Get retrieves a client by id.
func (r *Repository) Get(ctx context.Context, id int64) (*Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	client, err := scanClient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: client %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get client: %v", shared.ErrInternal, err)
	}
	return client, nil
}

// GetByMobile retrieves a client by its normalized mobile number.
func (r *Repository) GetByMobile(ctx context.Context, mobile string) (*Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE mobile = $1`, mobile)
	client, err := scanClient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: client with mobile %s", shared.ErrNotFound, mobile)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get client by mobile: %v", shared.ErrInternal, err)
	}
	return client, nil
}

// List returns clients matching the filter plus the total count.
func (r *Repository) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM clients WHERE 1=1`
	args := []any{}
	argNum := 1

	appendClause := func(clause string, value any) {
		query += fmt.Sprintf(clause, argNum)
		countQuery += fmt.Sprintf(clause, argNum)
		args = append(args, value)
		argNum++
	}

	if req.City != "" {
		appendClause(" AND city = $%d", req.City)
	}
	if req.IsActive != nil {
		appendClause(" AND is_active = $%d", *req.IsActive)
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
		return nil, 0, fmt.Errorf("%w: count clients: %v", shared.ErrInternal, err)
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
		return nil, 0, fmt.Errorf("%w: list clients: %v", shared.ErrInternal, err)
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.FullName, &c.Mobile, &c.Email, &c.City, &c.Address, &c.Notes, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("%w: scan client: %v", shared.ErrInternal, err)
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Update applies the given column updates to a client.
func (r *Repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	query := `UPDATE clients SET updated_at = NOW()`
	args := []any{}
	argNum := 1
	for _, col := range []string{"full_name", "email", "city", "address", "notes"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argNum)
			args = append(args, v)
			argNum++
		}
	}
	query += fmt.Sprintf(" WHERE id = $%d", argNum)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: update client: %v", shared.ErrInternal, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: client %d", shared.ErrNotFound, id)
	}
	return nil
}

// Deactivate soft-deletes a client.
func (r *Repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE clients SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deactivate client: %v", shared.ErrInternal, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: client %d", shared.ErrNotFound, id)
	}
	return nil
}
