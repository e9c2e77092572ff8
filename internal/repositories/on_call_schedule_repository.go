package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/parkrose/maintenance-service/internal/models"
)

type OnCallScheduleRepository interface {
	Create(ctx context.Context, s *models.OnCallSchedule) error

	// GetByPropertyID loads the schedule with rotations ordered by
	// starts_at. Returns (nil, nil) when no schedule is configured.
	GetByPropertyID(ctx context.Context, propertyID uuid.UUID) (*models.OnCallSchedule, error)
}

type onCallScheduleRepo struct {
	db DB
}

func NewOnCallScheduleRepository(db DB) OnCallScheduleRepository {
	return &onCallScheduleRepo{db: db}
}

func (r *onCallScheduleRepo) Create(ctx context.Context, s *models.OnCallSchedule) error {
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
        INSERT INTO on_call_schedules (id, property_id, name, created_at)
        VALUES ($1,$2,$3,NOW())
    `, s.ID, s.PropertyID, s.Name)
	if err != nil {
		return err
	}

	for _, rot := range s.Rotations {
		_, err = tx.Exec(ctx, `
            INSERT INTO on_call_rotations (
                id, schedule_id, user_id, starts_at, ends_at
            ) VALUES ($1,$2,$3,$4,$5)
        `, rot.ID, s.ID, rot.UserID, rot.StartsAt, rot.EndsAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *onCallScheduleRepo) GetByPropertyID(ctx context.Context, propertyID uuid.UUID) (*models.OnCallSchedule, error) {
	var s models.OnCallSchedule
	err := r.db.QueryRow(ctx, `
        SELECT id, property_id, name, created_at
        FROM on_call_schedules
        WHERE property_id=$1
    `, propertyID).Scan(&s.ID, &s.PropertyID, &s.Name, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
        SELECT id, schedule_id, user_id, starts_at, ends_at
        FROM on_call_rotations
        WHERE schedule_id=$1
        ORDER BY starts_at
    `, s.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rot models.OnCallRotation
		if err := rows.Scan(&rot.ID, &rot.ScheduleID, &rot.UserID, &rot.StartsAt, &rot.EndsAt); err != nil {
			return nil, err
		}
		s.Rotations = append(s.Rotations, rot)
	}
	return &s, rows.Err()
}
