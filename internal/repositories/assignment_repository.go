package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/parkrose/maintenance-service/internal/models"
)

type AssignmentRepository interface {
	GetActiveByWorkOrderID(ctx context.Context, workOrderID uuid.UUID) (*models.WorkOrderAssignment, error)
	ListByWorkOrderID(ctx context.Context, workOrderID uuid.UUID) ([]*models.WorkOrderAssignment, error)

	// CountActiveByVendor feeds the emergency router's load-balance
	// tie-break.
	CountActiveByVendor(ctx context.Context, vendorID uuid.UUID) (int, error)
}

type assignmentRepo struct {
	db DB
}

func NewAssignmentRepository(db DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func baseSelectAssignment() string {
	return `
        SELECT id, work_order_id, vendor_id, source, active,
               created_at, released_at
        FROM work_order_assignments
    `
}

func scanAssignment(row pgx.Row) (*models.WorkOrderAssignment, error) {
	var a models.WorkOrderAssignment
	err := row.Scan(
		&a.ID,
		&a.WorkOrderID,
		&a.VendorID,
		&a.Source,
		&a.Active,
		&a.CreatedAt,
		&a.ReleasedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) GetActiveByWorkOrderID(ctx context.Context, workOrderID uuid.UUID) (*models.WorkOrderAssignment, error) {
	row := r.db.QueryRow(ctx, baseSelectAssignment()+" WHERE work_order_id=$1 AND active=TRUE", workOrderID)
	return scanAssignment(row)
}

func (r *assignmentRepo) ListByWorkOrderID(ctx context.Context, workOrderID uuid.UUID) ([]*models.WorkOrderAssignment, error) {
	rows, err := r.db.Query(ctx, baseSelectAssignment()+" WHERE work_order_id=$1 ORDER BY created_at", workOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.WorkOrderAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *assignmentRepo) CountActiveByVendor(ctx context.Context, vendorID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM work_order_assignments
        WHERE vendor_id=$1 AND active=TRUE
    `, vendorID).Scan(&n)
	return n, err
}
