package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/parkrose/maintenance-service/internal/models"
	"github.com/parkrose/maintenance-service/internal/repositories"
	"github.com/parkrose/maintenance-service/internal/utils"
)

/*
ResolveRotation picks the rotation covering the given instant. Shift
bounds are start-inclusive, end-exclusive, so back-to-back rotations
hand over cleanly. When rotations overlap (an override shift laid on
top of a base shift) the one with the latest start wins.
*/
func ResolveRotation(sched *models.OnCallSchedule, at time.Time) (*models.OnCallRotation, error) {
	if sched == nil {
		return nil, utils.ErrNoOnCallCoverage
	}

	var best *models.OnCallRotation
	for i := range sched.Rotations {
		rot := &sched.Rotations[i]
		if !rot.Covers(at) {
			continue
		}
		if best == nil || rot.StartsAt.After(best.StartsAt) {
			best = rot
		}
	}
	if best == nil {
		return nil, utils.ErrNoOnCallCoverage
	}
	return best, nil
}

// OnCallService resolves the current on-call staff member for a property.
type OnCallService struct {
	schedRepo repositories.OnCallScheduleRepository
	staffRepo repositories.StaffRepository
}

func NewOnCallService(
	schedRepo repositories.OnCallScheduleRepository,
	staffRepo repositories.StaffRepository,
) *OnCallService {
	return &OnCallService{schedRepo: schedRepo, staffRepo: staffRepo}
}

func (s *OnCallService) Resolve(ctx context.Context, propertyID uuid.UUID, at time.Time) (*models.Staff, error) {
	sched, err := s.schedRepo.GetByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	rot, err := ResolveRotation(sched, at)
	if err != nil {
		return nil, err
	}

	st, err := s.staffRepo.GetByID(ctx, rot.UserID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		utils.Logger.Warnf("On-call rotation %s references unknown staff %s", rot.ID, rot.UserID)
		return nil, utils.ErrNoOnCallCoverage
	}
	return st, nil
}
