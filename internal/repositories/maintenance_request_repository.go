package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/parkrose/maintenance-service/internal/models"
)

type MaintenanceRequestRepository interface {
	Create(ctx context.Context, mr *models.MaintenanceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error)
	ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.MaintenanceRequest, error)

	// BindWorkOrder sets work_order_id exactly once. A request that
	// already spawned a work order is never consumed again; the tag
	// reports zero rows in that case.
	BindWorkOrder(ctx context.Context, requestID, workOrderID uuid.UUID) (bool, error)

	// SetStatus mirrors the work order's terminal state onto the request.
	SetStatus(ctx context.Context, requestID uuid.UUID, status models.RequestStatus) error
}

type maintenanceRequestRepo struct {
	db DB
}

func NewMaintenanceRequestRepository(db DB) MaintenanceRequestRepository {
	return &maintenanceRequestRepo{db: db}
}

func baseSelectRequest() string {
	return `
        SELECT id, title, description, priority, category, property_id,
               unit_id, requester_id, status, work_order_id,
               row_version, created_at, updated_at
        FROM maintenance_requests
    `
}

func scanRequest(row pgx.Row) (*models.MaintenanceRequest, error) {
	var mr models.MaintenanceRequest
	err := row.Scan(
		&mr.ID,
		&mr.Title,
		&mr.Description,
		&mr.Priority,
		&mr.Category,
		&mr.PropertyID,
		&mr.UnitID,
		&mr.RequesterID,
		&mr.Status,
		&mr.WorkOrderID,
		&mr.RowVersion,
		&mr.CreatedAt,
		&mr.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &mr, nil
}

func (r *maintenanceRequestRepo) Create(ctx context.Context, mr *models.MaintenanceRequest) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO maintenance_requests (
            id, title, description, priority, category, property_id,
            unit_id, requester_id, status, created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW(),1)
    `,
		mr.ID,
		mr.Title,
		mr.Description,
		mr.Priority,
		mr.Category,
		mr.PropertyID,
		mr.UnitID,
		mr.RequesterID,
		mr.Status,
	)
	return err
}

func (r *maintenanceRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	row := r.db.QueryRow(ctx, baseSelectRequest()+" WHERE id=$1", id)
	return scanRequest(row)
}

func (r *maintenanceRequestRepo) ListByPropertyID(ctx context.Context, propertyID uuid.UUID) ([]*models.MaintenanceRequest, error) {
	rows, err := r.db.Query(ctx, baseSelectRequest()+" WHERE property_id=$1 ORDER BY created_at DESC", propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.MaintenanceRequest
	for rows.Next() {
		mr, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, mr)
	}
	return out, rows.Err()
}

func (r *maintenanceRequestRepo) BindWorkOrder(ctx context.Context, requestID, workOrderID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE maintenance_requests
        SET work_order_id=$1, status='DISPATCHED',
            row_version=row_version+1, updated_at=NOW()
        WHERE id=$2 AND work_order_id IS NULL
    `, workOrderID, requestID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *maintenanceRequestRepo) SetStatus(ctx context.Context, requestID uuid.UUID, status models.RequestStatus) error {
	_, err := r.db.Exec(ctx, `
        UPDATE maintenance_requests
        SET status=$1, row_version=row_version+1, updated_at=NOW()
        WHERE id=$2
    `, status, requestID)
	return err
}
