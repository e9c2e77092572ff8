package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/parkrose/maintenance-service/internal/models"
)

type StaffRepository interface {
	Create(ctx context.Context, s *models.Staff) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Staff, error)

	// GetDefaultContact returns the administrative fallback used when
	// on-call resolution finds no coverage.
	GetDefaultContact(ctx context.Context) (*models.Staff, error)
}

type staffRepo struct {
	db DB
}

func NewStaffRepository(db DB) StaffRepository {
	return &staffRepo{db: db}
}

func baseSelectStaff() string {
	return `
        SELECT id, name, phone, email, is_default_contact, created_at
        FROM staff
    `
}

func scanStaff(row pgx.Row) (*models.Staff, error) {
	var s models.Staff
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Phone,
		&s.Email,
		&s.IsDefaultContact,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *staffRepo) Create(ctx context.Context, s *models.Staff) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO staff (
            id, name, phone, email, is_default_contact, created_at
        ) VALUES ($1,$2,$3,$4,$5,NOW())
    `, s.ID, s.Name, s.Phone, s.Email, s.IsDefaultContact)
	return err
}

func (r *staffRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	row := r.db.QueryRow(ctx, baseSelectStaff()+" WHERE id=$1", id)
	return scanStaff(row)
}

func (r *staffRepo) GetDefaultContact(ctx context.Context) (*models.Staff, error) {
	row := r.db.QueryRow(ctx, baseSelectStaff()+" WHERE is_default_contact=TRUE ORDER BY created_at LIMIT 1")
	return scanStaff(row)
}
