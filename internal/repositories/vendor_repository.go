package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/parkrose/maintenance-service/internal/models"
)

type VendorRepository interface {
	Create(ctx context.Context, v *models.Vendor) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)

	// ListBySpecialtyAndArea returns AVAILABLE vendors matching the
	// specialty whose service_areas contain the given area.
	ListBySpecialtyAndArea(ctx context.Context, specialty, area string) ([]*models.Vendor, error)

	UpdateIfVersion(ctx context.Context, v *models.Vendor, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Vendor) error) error
}

type vendorRepo struct {
	*BaseVersionedRepo[*models.Vendor]
	db DB
}

func NewVendorRepository(db DB) VendorRepository {
	r := &vendorRepo{db: db}
	r.BaseVersionedRepo = NewBaseRepo(db, baseSelectVendor()+" WHERE id=$1", scanVendor)
	return r
}

func baseSelectVendor() string {
	return `
        SELECT id, name, specialty, availability, service_areas,
               certifications, phone, email, row_version, created_at
        FROM vendors
    `
}

func scanVendor(row pgx.Row) (*models.Vendor, error) {
	var v models.Vendor
	var areas, certs []string
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.Specialty,
		&v.Availability,
		&areas,
		&certs,
		&v.Phone,
		&v.Email,
		&v.RowVersion,
		&v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	v.ServiceAreas = areas
	v.Certifications = certs
	return &v, nil
}

func (r *vendorRepo) Create(ctx context.Context, v *models.Vendor) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO vendors (
            id, name, specialty, availability, service_areas,
            certifications, phone, email, created_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),1)
    `,
		v.ID,
		v.Name,
		v.Specialty,
		v.Availability,
		v.ServiceAreas,
		v.Certifications,
		v.Phone,
		v.Email,
	)
	return err
}

func (r *vendorRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	return r.BaseVersionedRepo.GetByID(ctx, id.String())
}

func (r *vendorRepo) ListBySpecialtyAndArea(ctx context.Context, specialty, area string) ([]*models.Vendor, error) {
	rows, err := r.db.Query(ctx, baseSelectVendor()+`
        WHERE specialty=$1
          AND availability='AVAILABLE'
          AND $2 = ANY(service_areas)
        ORDER BY created_at
    `, specialty, area)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *vendorRepo) UpdateIfVersion(ctx context.Context, v *models.Vendor, expected int64) (pgconn.CommandTag, error) {
	newVersion := expected + 1
	tag, err := r.db.Exec(ctx, `
        UPDATE vendors
        SET name=$1, specialty=$2, availability=$3, service_areas=$4,
            certifications=$5, phone=$6, email=$7, row_version=$8
        WHERE id=$9 AND row_version=$10
    `,
		v.Name,
		v.Specialty,
		v.Availability,
		v.ServiceAreas,
		v.Certifications,
		v.Phone,
		v.Email,
		newVersion,
		v.ID,
		expected,
	)
	if err == nil && tag.RowsAffected() == 1 {
		v.SetRowVersion(newVersion)
	}
	return tag, err
}

func (r *vendorRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Vendor) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}
