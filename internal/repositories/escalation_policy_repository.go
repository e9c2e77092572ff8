package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/parkrose/maintenance-service/internal/models"
)

type EscalationPolicyRepository interface {
	Create(ctx context.Context, p *models.EscalationPolicy) error

	// GetByPropertyID loads the policy with its rules ordered ascending
	// by rule_order. Returns (nil, nil) when no policy is configured.
	GetByPropertyID(ctx context.Context, propertyID uuid.UUID) (*models.EscalationPolicy, error)
}

type escalationPolicyRepo struct {
	db DB
}

func NewEscalationPolicyRepository(db DB) EscalationPolicyRepository {
	return &escalationPolicyRepo{db: db}
}

func (r *escalationPolicyRepo) Create(ctx context.Context, p *models.EscalationPolicy) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `
        INSERT INTO escalation_policies (id, property_id, name, created_at)
        VALUES ($1,$2,$3,NOW())
    `, p.ID, p.PropertyID, p.Name)
	if err != nil {
		return err
	}

	for _, rule := range p.Rules {
		_, err = tx.Exec(ctx, `
            INSERT INTO escalation_policy_rules (
                id, policy_id, rule_order, threshold_minutes, action, notify_user_id
            ) VALUES ($1,$2,$3,$4,$5,$6)
        `, rule.ID, p.ID, rule.RuleOrder, rule.ThresholdMin, rule.Action, rule.NotifyUserID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *escalationPolicyRepo) GetByPropertyID(ctx context.Context, propertyID uuid.UUID) (*models.EscalationPolicy, error) {
	var p models.EscalationPolicy
	err := r.db.QueryRow(ctx, `
        SELECT id, property_id, name, created_at
        FROM escalation_policies
        WHERE property_id=$1
    `, propertyID).Scan(&p.ID, &p.PropertyID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
        SELECT id, policy_id, rule_order, threshold_minutes, action, notify_user_id
        FROM escalation_policy_rules
        WHERE policy_id=$1
        ORDER BY rule_order
    `, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rule models.EscalationPolicyRule
		if err := rows.Scan(
			&rule.ID,
			&rule.PolicyID,
			&rule.RuleOrder,
			&rule.ThresholdMin,
			&rule.Action,
			&rule.NotifyUserID,
		); err != nil {
			return nil, err
		}
		p.Rules = append(p.Rules, rule)
	}
	return &p, rows.Err()
}
