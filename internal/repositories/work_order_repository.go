package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/parkrose/maintenance-service/internal/models"
)

/*
WorkOrderRepository owns the work-order aggregate: the work_orders row plus
its quotes and assignments. Every multi-entity mutation runs in a single
transaction under SELECT ... FOR UPDATE with a row_version check, so two
racing writers always produce exactly one winner. The loser sees a
"row_version_conflict" error.
*/
type WorkOrderRepository interface {
	Create(ctx context.Context, wo *models.WorkOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.WorkOrder, error)
	ListByPropertyID(ctx context.Context, propertyID uuid.UUID, statuses []models.WorkOrderStatus) ([]*models.WorkOrder, error)

	// SubmitQuoteAtomic inserts a PENDING quote and flips OPEN→QUOTED on
	// the first quote. Legal only while the work order is OPEN or QUOTED.
	SubmitQuoteAtomic(ctx context.Context, q *models.WorkOrderQuote, expectedVersion int64) (*models.WorkOrder, error)

	// ApproveQuoteAtomic commits the joint update: target quote ACCEPTED,
	// sibling PENDING quotes REJECTED, active assignment created, work
	// order QUOTED→ASSIGNED. Fails on a stale version or wrong status.
	ApproveQuoteAtomic(ctx context.Context, workOrderID, quoteID uuid.UUID, expectedVersion int64) (*models.WorkOrder, *models.WorkOrderAssignment, error)

	// AssignEmergencyAtomic binds a vendor directly, bypassing quoting
	// (OPEN→ASSIGNED).
	AssignEmergencyAtomic(ctx context.Context, workOrderID, vendorID uuid.UUID, expectedVersion int64) (*models.WorkOrder, *models.WorkOrderAssignment, error)

	// ReleaseAssignmentAtomic handles a vendor decline: ASSIGNED or
	// IN_PROGRESS → OPEN, active assignment released. Rejected sibling
	// quotes are left untouched.
	ReleaseAssignmentAtomic(ctx context.Context, workOrderID uuid.UUID, expectedVersion int64) (*models.WorkOrder, error)

	// UpdateStatusAtomic performs a single-edge transition restricted to
	// the models.CanTransition table. Edges into OPEN release any active
	// assignment in the same transaction.
	UpdateStatusAtomic(ctx context.Context, workOrderID uuid.UUID, newStatus models.WorkOrderStatus, expectedVersion int64) (*models.WorkOrder, error)
}

type workOrderRepo struct {
	db DB
}

func NewWorkOrderRepository(db DB) WorkOrderRepository {
	return &workOrderRepo{db: db}
}

func baseSelectWorkOrder() string {
	return `
        SELECT
            id, request_id, property_id, title, description, status,
            row_version, created_at, updated_at
        FROM work_orders
    `
}

func scanWorkOrder(row pgx.Row) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	err := row.Scan(
		&wo.ID,
		&wo.RequestID,
		&wo.PropertyID,
		&wo.Title,
		&wo.Description,
		&wo.Status,
		&wo.RowVersion,
		&wo.CreatedAt,
		&wo.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &wo, nil
}

// Create inserts the row and writes the persisted version and timestamps
// back into wo, so callers can feed wo.RowVersion straight into the
// atomic operations.
func (r *workOrderRepo) Create(ctx context.Context, wo *models.WorkOrder) error {
	return r.db.QueryRow(ctx, `
        INSERT INTO work_orders (
            id, request_id, property_id, title, description, status,
            created_at, updated_at, row_version
        ) VALUES (
            $1,$2,$3,$4,$5,$6,NOW(),NOW(),1
        )
        RETURNING row_version, created_at, updated_at
    `,
		wo.ID,
		wo.RequestID,
		wo.PropertyID,
		wo.Title,
		wo.Description,
		wo.Status,
	).Scan(&wo.RowVersion, &wo.CreatedAt, &wo.UpdatedAt)
}

func (r *workOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.WorkOrder, error) {
	row := r.db.QueryRow(ctx, baseSelectWorkOrder()+" WHERE id=$1", id)
	return scanWorkOrder(row)
}

func (r *workOrderRepo) ListByPropertyID(
	ctx context.Context,
	propertyID uuid.UUID,
	statuses []models.WorkOrderStatus,
) ([]*models.WorkOrder, error) {

	var (
		qb   strings.Builder
		args []any
		idx  = 1
	)

	qb.WriteString(baseSelectWorkOrder())
	qb.WriteString(" WHERE property_id = $")
	qb.WriteString(strconv.Itoa(idx))
	args = append(args, propertyID)
	idx++

	if len(statuses) > 0 {
		var stStrings []string
		for _, st := range statuses {
			stStrings = append(stStrings, string(st))
		}
		qb.WriteString(" AND status = ANY($")
		qb.WriteString(strconv.Itoa(idx))
		qb.WriteString(")")
		args = append(args, stStrings)
		idx++
	}

	qb.WriteString(" ORDER BY created_at DESC")

	rows, err := r.db.Query(ctx, qb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, wo)
	}
	return out, rows.Err()
}

// lockWorkOrder fetches the row FOR UPDATE and verifies the caller's version.
func lockWorkOrder(ctx context.Context, tx pgx.Tx, id uuid.UUID, expectedVersion int64) (*models.WorkOrder, error) {
	row := tx.QueryRow(ctx, baseSelectWorkOrder()+" WHERE id=$1 FOR UPDATE", id)
	wo, err := scanWorkOrder(row)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, pgx.ErrNoRows
	}
	if wo.RowVersion != expectedVersion {
		return wo, fmt.Errorf("row_version_conflict")
	}
	return wo, nil
}

func (r *workOrderRepo) SubmitQuoteAtomic(
	ctx context.Context,
	q *models.WorkOrderQuote,
	expectedVersion int64,
) (*models.WorkOrder, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	wo, err := lockWorkOrder(ctx, tx, q.WorkOrderID, expectedVersion)
	if err != nil {
		return wo, err
	}
	if wo.Status != models.WorkOrderStatusOpen && wo.Status != models.WorkOrderStatusQuoted {
		err = fmt.Errorf("invalid_state: cannot quote a %s work order", wo.Status)
		return wo, err
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO work_order_quotes (
            id, work_order_id, vendor_id, amount, details, status,
            created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,'PENDING',NOW(),NOW())
    `, q.ID, q.WorkOrderID, q.VendorID, q.Amount, q.Details)
	if err != nil {
		return nil, err
	}

	newStatus := wo.Status
	if wo.Status == models.WorkOrderStatusOpen {
		newStatus = models.WorkOrderStatusQuoted
	}
	_, err = tx.Exec(ctx, `
        UPDATE work_orders
        SET status=$1, row_version=row_version+1, updated_at=NOW()
        WHERE id=$2
    `, newStatus, q.WorkOrderID)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectWorkOrder()+" WHERE id=$1", q.WorkOrderID)
	return scanWorkOrder(newRow)
}

func (r *workOrderRepo) ApproveQuoteAtomic(
	ctx context.Context,
	workOrderID, quoteID uuid.UUID,
	expectedVersion int64,
) (*models.WorkOrder, *models.WorkOrderAssignment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	wo, err := lockWorkOrder(ctx, tx, workOrderID, expectedVersion)
	if err != nil {
		return wo, nil, err
	}
	if wo.Status != models.WorkOrderStatusQuoted {
		err = fmt.Errorf("invalid_state: cannot approve a quote on a %s work order", wo.Status)
		return wo, nil, err
	}

	var vendorID uuid.UUID
	var quoteStatus models.QuoteStatus
	err = tx.QueryRow(ctx, `
        SELECT vendor_id, status FROM work_order_quotes
        WHERE id=$1 AND work_order_id=$2
    `, quoteID, workOrderID).Scan(&vendorID, &quoteStatus)
	if err != nil {
		return nil, nil, err
	}
	if quoteStatus != models.QuoteStatusPending {
		err = fmt.Errorf("invalid_state: quote is %s, not PENDING", quoteStatus)
		return wo, nil, err
	}

	_, err = tx.Exec(ctx, `
        UPDATE work_order_quotes SET status='ACCEPTED', updated_at=NOW()
        WHERE id=$1
    `, quoteID)
	if err != nil {
		return nil, nil, err
	}

	// Losing siblings are rejected in the same commit; a later decline
	// never resurrects them.
	_, err = tx.Exec(ctx, `
        UPDATE work_order_quotes SET status='REJECTED', updated_at=NOW()
        WHERE work_order_id=$1 AND id<>$2 AND status='PENDING'
    `, workOrderID, quoteID)
	if err != nil {
		return nil, nil, err
	}

	asg := &models.WorkOrderAssignment{
		ID:          uuid.New(),
		WorkOrderID: workOrderID,
		VendorID:    vendorID,
		Source:      models.AssignmentSourceQuote,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = tx.Exec(ctx, `
        INSERT INTO work_order_assignments (
            id, work_order_id, vendor_id, source, active, created_at
        ) VALUES ($1,$2,$3,$4,TRUE,NOW())
    `, asg.ID, asg.WorkOrderID, asg.VendorID, asg.Source)
	if err != nil {
		return nil, nil, err
	}

	_, err = tx.Exec(ctx, `
        UPDATE work_orders
        SET status='ASSIGNED', row_version=row_version+1, updated_at=NOW()
        WHERE id=$1
    `, workOrderID)
	if err != nil {
		return nil, nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectWorkOrder()+" WHERE id=$1", workOrderID)
	updated, err := scanWorkOrder(newRow)
	return updated, asg, err
}

func (r *workOrderRepo) AssignEmergencyAtomic(
	ctx context.Context,
	workOrderID, vendorID uuid.UUID,
	expectedVersion int64,
) (*models.WorkOrder, *models.WorkOrderAssignment, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	wo, err := lockWorkOrder(ctx, tx, workOrderID, expectedVersion)
	if err != nil {
		return wo, nil, err
	}
	if wo.Status != models.WorkOrderStatusOpen {
		err = fmt.Errorf("invalid_state: cannot emergency-assign a %s work order", wo.Status)
		return wo, nil, err
	}

	asg := &models.WorkOrderAssignment{
		ID:          uuid.New(),
		WorkOrderID: workOrderID,
		VendorID:    vendorID,
		Source:      models.AssignmentSourceEmergency,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = tx.Exec(ctx, `
        INSERT INTO work_order_assignments (
            id, work_order_id, vendor_id, source, active, created_at
        ) VALUES ($1,$2,$3,$4,TRUE,NOW())
    `, asg.ID, asg.WorkOrderID, asg.VendorID, asg.Source)
	if err != nil {
		return nil, nil, err
	}

	_, err = tx.Exec(ctx, `
        UPDATE work_orders
        SET status='ASSIGNED', row_version=row_version+1, updated_at=NOW()
        WHERE id=$1
    `, workOrderID)
	if err != nil {
		return nil, nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectWorkOrder()+" WHERE id=$1", workOrderID)
	updated, err := scanWorkOrder(newRow)
	return updated, asg, err
}

func (r *workOrderRepo) ReleaseAssignmentAtomic(
	ctx context.Context,
	workOrderID uuid.UUID,
	expectedVersion int64,
) (*models.WorkOrder, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	wo, err := lockWorkOrder(ctx, tx, workOrderID, expectedVersion)
	if err != nil {
		return wo, err
	}
	if wo.Status != models.WorkOrderStatusAssigned && wo.Status != models.WorkOrderStatusInProgress {
		err = fmt.Errorf("invalid_state: cannot decline a %s work order", wo.Status)
		return wo, err
	}

	_, err = tx.Exec(ctx, `
        UPDATE work_order_assignments
        SET active=FALSE, released_at=NOW()
        WHERE work_order_id=$1 AND active=TRUE
    `, workOrderID)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
        UPDATE work_orders
        SET status='OPEN', row_version=row_version+1, updated_at=NOW()
        WHERE id=$1
    `, workOrderID)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectWorkOrder()+" WHERE id=$1", workOrderID)
	return scanWorkOrder(newRow)
}

func (r *workOrderRepo) UpdateStatusAtomic(
	ctx context.Context,
	workOrderID uuid.UUID,
	newStatus models.WorkOrderStatus,
	expectedVersion int64,
) (*models.WorkOrder, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	wo, err := lockWorkOrder(ctx, tx, workOrderID, expectedVersion)
	if err != nil {
		return wo, err
	}
	if !models.CanTransition(wo.Status, newStatus) {
		err = fmt.Errorf("invalid_transition: %s -> %s", wo.Status, newStatus)
		return wo, err
	}

	// An OPEN work order never carries an active assignment, so the
	// reopening edges release it in the same transaction.
	if newStatus == models.WorkOrderStatusOpen {
		_, err = tx.Exec(ctx, `
        UPDATE work_order_assignments
        SET active=FALSE, released_at=NOW()
        WHERE work_order_id=$1 AND active=TRUE
    `, workOrderID)
		if err != nil {
			return nil, err
		}
	}

	_, err = tx.Exec(ctx, `
        UPDATE work_orders
        SET status=$1, row_version=row_version+1, updated_at=NOW()
        WHERE id=$2
    `, newStatus, workOrderID)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectWorkOrder()+" WHERE id=$1", workOrderID)
	return scanWorkOrder(newRow)
}
