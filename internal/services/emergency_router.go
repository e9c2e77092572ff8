package services

import (
	"context"

	"github.com/parkrose/maintenance-service/internal/models"
	"github.com/parkrose/maintenance-service/internal/repositories"
	"github.com/parkrose/maintenance-service/internal/utils"
)

/*
EmergencyRouter picks a vendor for an emergency work order without
waiting for quotes. Candidates must match the specialty, serve the
property's area and be AVAILABLE; among those the vendor with the
fewest active assignments wins, oldest registration breaking ties.
*/
type EmergencyRouter struct {
	vendorRepo repositories.VendorRepository
	asgRepo    repositories.AssignmentRepository
}

func NewEmergencyRouter(
	vendorRepo repositories.VendorRepository,
	asgRepo repositories.AssignmentRepository,
) *EmergencyRouter {
	return &EmergencyRouter{vendorRepo: vendorRepo, asgRepo: asgRepo}
}

func (r *EmergencyRouter) Route(ctx context.Context, specialty, area string) (*models.Vendor, error) {
	candidates, err := r.vendorRepo.ListBySpecialtyAndArea(ctx, specialty, area)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, utils.ErrNoSuitableVendor
	}

	// Candidates arrive ordered by created_at, so a strict less-than on
	// the load count keeps the earliest-registered vendor on ties.
	var (
		best     *models.Vendor
		bestLoad int
	)
	for _, v := range candidates {
		load, err := r.asgRepo.CountActiveByVendor(ctx, v.ID)
		if err != nil {
			return nil, err
		}
		if best == nil || load < bestLoad {
			best = v
			bestLoad = load
		}
	}
	return best, nil
}
