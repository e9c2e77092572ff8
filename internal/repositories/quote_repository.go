package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/parkrose/maintenance-service/internal/models"
)

// QuoteRepository is read-plus-single-reject. Quote creation and approval
// go through WorkOrderRepository because they mutate the aggregate.
type QuoteRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.WorkOrderQuote, error)
	ListByWorkOrderID(ctx context.Context, workOrderID uuid.UUID) ([]*models.WorkOrderQuote, error)

	// RejectPending flips a single PENDING quote to REJECTED. Returns the
	// command tag so callers can detect "already decided".
	RejectPending(ctx context.Context, id uuid.UUID) (pgconn.CommandTag, error)
}

type quoteRepo struct {
	db DB
}

func NewQuoteRepository(db DB) QuoteRepository {
	return &quoteRepo{db: db}
}

func baseSelectQuote() string {
	return `
        SELECT id, work_order_id, vendor_id, amount, details, status,
               created_at, updated_at
        FROM work_order_quotes
    `
}

func scanQuote(row pgx.Row) (*models.WorkOrderQuote, error) {
	var q models.WorkOrderQuote
	err := row.Scan(
		&q.ID,
		&q.WorkOrderID,
		&q.VendorID,
		&q.Amount,
		&q.Details,
		&q.Status,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *quoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.WorkOrderQuote, error) {
	row := r.db.QueryRow(ctx, baseSelectQuote()+" WHERE id=$1", id)
	return scanQuote(row)
}

func (r *quoteRepo) ListByWorkOrderID(ctx context.Context, workOrderID uuid.UUID) ([]*models.WorkOrderQuote, error) {
	rows, err := r.db.Query(ctx, baseSelectQuote()+" WHERE work_order_id=$1 ORDER BY created_at", workOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.WorkOrderQuote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *quoteRepo) RejectPending(ctx context.Context, id uuid.UUID) (pgconn.CommandTag, error) {
	return r.db.Exec(ctx, `
        UPDATE work_order_quotes
        SET status='REJECTED', updated_at=NOW()
        WHERE id=$1 AND status='PENDING'
    `, id)
}
