package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/parkrose/maintenance-service/internal/models"
	"github.com/parkrose/maintenance-service/internal/repositories"
	"github.com/parkrose/maintenance-service/internal/utils"
)

// SLAService tracks time-to-first-response per work order. Tracking
// starts when the work order is created; the first quote or the first
// transition out of OPEN settles it.
type SLAService struct {
	slaRepo repositories.SLARepository
}

func NewSLAService(slaRepo repositories.SLARepository) *SLAService {
	return &SLAService{slaRepo: slaRepo}
}

func (s *SLAService) StartTracking(ctx context.Context, wo *models.WorkOrder) error {
	rec := &models.WorkOrderSLA{
		WorkOrderID:        wo.ID,
		PropertyID:         wo.PropertyID,
		TriggeredAt:        time.Now().UTC(),
		LastFiredRuleOrder: models.NoRuleFired,
	}
	return s.slaRepo.Create(ctx, rec)
}

// RecordFirstResponse settles the SLA clock. Idempotent: only the first
// call lands, later ones are no-ops.
func (s *SLAService) RecordFirstResponse(ctx context.Context, workOrderID uuid.UUID) {
	settled, err := s.slaRepo.RecordFirstResponse(ctx, workOrderID, time.Now().UTC())
	if err != nil {
		utils.Logger.WithError(err).Errorf("Failed to record first response for work order %s", workOrderID)
		return
	}
	if settled {
		utils.Logger.Debugf("First response recorded for work order %s", workOrderID)
	}
}

func (s *SLAService) GetByWorkOrderID(ctx context.Context, workOrderID uuid.UUID) (*models.WorkOrderSLA, error) {
	return s.slaRepo.GetByWorkOrderID(ctx, workOrderID)
}
