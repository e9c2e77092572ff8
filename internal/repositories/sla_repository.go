package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/parkrose/maintenance-service/internal/models"
)

type SLARepository interface {
	Create(ctx context.Context, s *models.WorkOrderSLA) error
	GetByWorkOrderID(ctx context.Context, workOrderID uuid.UUID) (*models.WorkOrderSLA, error)

	// ListUnresponded returns SLA records with no first response yet,
	// for the escalation sweep.
	ListUnresponded(ctx context.Context) ([]*models.WorkOrderSLA, error)

	// RecordFirstResponse sets first_response_at once; later calls are
	// no-ops. Returns whether this call was the one that set it.
	RecordFirstResponse(ctx context.Context, workOrderID uuid.UUID, at time.Time) (bool, error)

	// MarkRuleFired advances the dedup cursor. The guard on the previous
	// value keeps two concurrent sweeps from double-firing a rule.
	MarkRuleFired(ctx context.Context, workOrderID uuid.UUID, ruleOrder, prevRuleOrder int) (bool, error)

	// DeleteRespondedBefore is housekeeping for long-settled records.
	DeleteRespondedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type slaRepo struct {
	db DB
}

func NewSLARepository(db DB) SLARepository {
	return &slaRepo{db: db}
}

func baseSelectSLA() string {
	return `
        SELECT work_order_id, property_id, triggered_at, first_response_at,
               last_fired_rule_order, row_version, created_at, updated_at
        FROM work_order_slas
    `
}

func scanSLA(row pgx.Row) (*models.WorkOrderSLA, error) {
	var s models.WorkOrderSLA
	err := row.Scan(
		&s.WorkOrderID,
		&s.PropertyID,
		&s.TriggeredAt,
		&s.FirstResponseAt,
		&s.LastFiredRuleOrder,
		&s.RowVersion,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *slaRepo) Create(ctx context.Context, s *models.WorkOrderSLA) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO work_order_slas (
            work_order_id, property_id, triggered_at,
            last_fired_rule_order, created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,NOW(),NOW(),1)
    `, s.WorkOrderID, s.PropertyID, s.TriggeredAt, models.NoRuleFired)
	return err
}

func (r *slaRepo) GetByWorkOrderID(ctx context.Context, workOrderID uuid.UUID) (*models.WorkOrderSLA, error) {
	row := r.db.QueryRow(ctx, baseSelectSLA()+" WHERE work_order_id=$1", workOrderID)
	return scanSLA(row)
}

func (r *slaRepo) ListUnresponded(ctx context.Context) ([]*models.WorkOrderSLA, error) {
	rows, err := r.db.Query(ctx, baseSelectSLA()+" WHERE first_response_at IS NULL ORDER BY triggered_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.WorkOrderSLA
	for rows.Next() {
		s, err := scanSLA(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *slaRepo) RecordFirstResponse(ctx context.Context, workOrderID uuid.UUID, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE work_order_slas
        SET first_response_at=$1, row_version=row_version+1, updated_at=NOW()
        WHERE work_order_id=$2 AND first_response_at IS NULL
    `, at, workOrderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *slaRepo) MarkRuleFired(ctx context.Context, workOrderID uuid.UUID, ruleOrder, prevRuleOrder int) (bool, error) {
	tag, err := r.db.Exec(ctx, `
        UPDATE work_order_slas
        SET last_fired_rule_order=$1, row_version=row_version+1, updated_at=NOW()
        WHERE work_order_id=$2 AND last_fired_rule_order=$3 AND first_response_at IS NULL
    `, ruleOrder, workOrderID, prevRuleOrder)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *slaRepo) DeleteRespondedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
        DELETE FROM work_order_slas
        WHERE first_response_at IS NOT NULL AND first_response_at < $1
    `, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
