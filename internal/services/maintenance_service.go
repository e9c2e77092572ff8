package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parkrose/maintenance-service/internal/config"
	"github.com/parkrose/maintenance-service/internal/dtos"
	"github.com/parkrose/maintenance-service/internal/models"
	"github.com/parkrose/maintenance-service/internal/repositories"
	"github.com/parkrose/maintenance-service/internal/utils"
)

/*
MaintenanceService is the orchestrator sitting above the work-order
core: it turns tenant requests into work orders, starts SLA tracking
and, for emergencies, routes a vendor immediately instead of waiting
for quotes.
*/
type MaintenanceService struct {
	cfg        *config.Config
	reqRepo    repositories.MaintenanceRequestRepository
	woRepo     repositories.WorkOrderRepository
	propRepo   repositories.PropertyRepository
	vendorRepo repositories.VendorRepository
	staffRepo  repositories.StaffRepository
	slaService *SLAService
	router     *EmergencyRouter
	onCall     *OnCallService
	notifier   Notifier
}

func NewMaintenanceService(
	cfg *config.Config,
	reqRepo repositories.MaintenanceRequestRepository,
	woRepo repositories.WorkOrderRepository,
	propRepo repositories.PropertyRepository,
	vendorRepo repositories.VendorRepository,
	staffRepo repositories.StaffRepository,
	slaService *SLAService,
	router *EmergencyRouter,
	onCall *OnCallService,
	notifier Notifier,
) *MaintenanceService {
	return &MaintenanceService{
		cfg:        cfg,
		reqRepo:    reqRepo,
		woRepo:     woRepo,
		propRepo:   propRepo,
		vendorRepo: vendorRepo,
		staffRepo:  staffRepo,
		slaService: slaService,
		router:     router,
		onCall:     onCall,
		notifier:   notifier,
	}
}

// CreateRequest records a tenant request. EMERGENCY priority dispatches
// a work order in the same call; everything else waits for the manager.
func (s *MaintenanceService) CreateRequest(
	ctx context.Context,
	requesterID uuid.UUID,
	req dtos.CreateMaintenanceRequestRequest,
) (*dtos.MaintenanceRequestDTO, error) {
	prop, err := s.propRepo.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, fmt.Errorf("property %s: %w", req.PropertyID, utils.ErrNotFound)
	}

	mr := &models.MaintenanceRequest{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.RequestPriority(req.Priority),
		Category:    req.Category,
		PropertyID:  req.PropertyID,
		UnitID:      req.UnitID,
		RequesterID: requesterID,
		Status:      models.RequestStatusOpen,
	}
	if err := s.reqRepo.Create(ctx, mr); err != nil {
		return nil, err
	}
	utils.Logger.Infof("Maintenance request %s created (priority %s)", mr.ID, mr.Priority)

	if mr.Priority == models.PriorityEmergency {
		if _, err := s.DispatchRequest(ctx, mr.ID); err != nil {
			// The request itself stands; dispatch can be retried.
			utils.Logger.WithError(err).Errorf("Emergency auto-dispatch failed for request %s", mr.ID)
		}
	}

	fresh, err := s.reqRepo.GetByID(ctx, mr.ID)
	if err != nil {
		return nil, err
	}
	return buildRequestDTO(fresh), nil
}

/*
DispatchRequest derives a work order from a request. The work_order_id
column is consumed exactly once: a request that already spawned a work
order can never spawn another, even under concurrent dispatch calls.
*/
func (s *MaintenanceService) DispatchRequest(ctx context.Context, requestID uuid.UUID) (*dtos.MaintenanceRequestDTO, error) {
	mr, err := s.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if mr == nil {
		return nil, fmt.Errorf("request %s: %w", requestID, utils.ErrNotFound)
	}
	if mr.WorkOrderID != nil {
		return nil, fmt.Errorf("request %s already dispatched: %w", requestID, utils.ErrInvalidState)
	}

	wo := &models.WorkOrder{
		ID:          uuid.New(),
		RequestID:   mr.ID,
		PropertyID:  mr.PropertyID,
		Title:       mr.Title,
		Description: mr.Description,
		Status:      models.WorkOrderStatusOpen,
	}
	if err := s.woRepo.Create(ctx, wo); err != nil {
		return nil, err
	}

	bound, err := s.reqRepo.BindWorkOrder(ctx, mr.ID, wo.ID)
	if err != nil {
		return nil, err
	}
	if !bound {
		// Lost the race to a concurrent dispatch; the freshly created
		// work order is orphaned and cancelled.
		if _, cErr := s.woRepo.UpdateStatusAtomic(ctx, wo.ID, models.WorkOrderStatusCancelled, wo.RowVersion); cErr != nil {
			utils.Logger.WithError(cErr).Errorf("Failed to cancel orphaned work order %s", wo.ID)
		}
		return nil, fmt.Errorf("request %s already dispatched: %w", requestID, utils.ErrInvalidState)
	}

	if err := s.slaService.StartTracking(ctx, wo); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to start SLA tracking for work order %s", wo.ID)
	}
	utils.Logger.Infof("Work order %s dispatched from request %s", wo.ID, mr.ID)

	if mr.Priority == models.PriorityEmergency {
		s.routeEmergency(ctx, mr, wo)
	}

	fresh, err := s.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return buildRequestDTO(fresh), nil
}

/*
routeEmergency binds a vendor directly (OPEN→ASSIGNED, bypassing the
quote round). With no suitable vendor the work order stays OPEN for
normal quoting and the on-call staff member is alerted instead, falling
back to the default administrative contact.
*/
func (s *MaintenanceService) routeEmergency(ctx context.Context, mr *models.MaintenanceRequest, wo *models.WorkOrder) {
	prop, err := s.propRepo.GetByID(ctx, mr.PropertyID)
	if err != nil || prop == nil {
		utils.Logger.WithError(err).Errorf("Emergency routing aborted, property %s unavailable", mr.PropertyID)
		return
	}

	vendor, err := s.router.Route(ctx, mr.Category, prop.ServiceArea)
	if err != nil {
		if errors.Is(err, utils.ErrNoSuitableVendor) {
			utils.Logger.Warnf("No suitable vendor for emergency work order %s (%s / %s)",
				wo.ID, mr.Category, prop.ServiceArea)
			s.alertOnCall(ctx, prop, wo)
			return
		}
		utils.Logger.WithError(err).Errorf("Emergency routing failed for work order %s", wo.ID)
		return
	}

	_, asg, err := s.woRepo.AssignEmergencyAtomic(ctx, wo.ID, vendor.ID, wo.RowVersion)
	if err != nil {
		utils.Logger.WithError(err).Errorf("Emergency assignment failed for work order %s", wo.ID)
		return
	}
	s.slaService.RecordFirstResponse(ctx, wo.ID)

	if s.cfg.LDFlag_VendorBusyOnAssign {
		hookErr := s.vendorRepo.UpdateWithRetry(ctx, vendor.ID, func(v *models.Vendor) error {
			v.Availability = models.VendorBusy
			return nil
		})
		if hookErr != nil {
			utils.Logger.WithError(hookErr).Warnf("Failed to mark vendor %s busy", vendor.ID)
		}
	}

	subject := fmt.Sprintf("EMERGENCY dispatch: %s", wo.Title)
	body := fmt.Sprintf("You have been emergency-assigned work order %s at %s. Respond immediately.",
		wo.ID, prop.Name)
	if nErr := s.notifier.NotifyVendor(ctx, vendor, subject, body); nErr != nil {
		utils.Logger.WithError(nErr).Warnf("Emergency notification failed for vendor %s", vendor.ID)
	}
	utils.Logger.Infof("Emergency work order %s assigned to vendor %s (assignment %s)", wo.ID, vendor.ID, asg.ID)
}

func (s *MaintenanceService) alertOnCall(ctx context.Context, prop *models.Property, wo *models.WorkOrder) {
	subject := fmt.Sprintf("EMERGENCY unrouted: %s", wo.Title)
	body := fmt.Sprintf("No vendor could be auto-assigned for emergency work order %s at %s. Manual action required.",
		wo.ID, prop.Name)

	st, err := s.onCall.Resolve(ctx, prop.ID, time.Now().UTC())
	if err != nil {
		if !errors.Is(err, utils.ErrNoOnCallCoverage) {
			utils.Logger.WithError(err).Errorf("On-call resolution failed for property %s", prop.ID)
			return
		}
		st, err = s.staffRepo.GetDefaultContact(ctx)
		if err != nil || st == nil {
			utils.Logger.WithError(err).Errorf("No on-call coverage and no default contact for property %s", prop.ID)
			return
		}
	}
	if nErr := s.notifier.NotifyStaff(ctx, st, subject, body); nErr != nil {
		utils.Logger.WithError(nErr).Warnf("On-call alert failed for property %s", prop.ID)
	}
}

func (s *MaintenanceService) GetRequest(ctx context.Context, requestID uuid.UUID) (*dtos.MaintenanceRequestDTO, error) {
	mr, err := s.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if mr == nil {
		return nil, utils.ErrNotFound
	}
	return buildRequestDTO(mr), nil
}

func (s *MaintenanceService) ListRequestsByProperty(ctx context.Context, propertyID uuid.UUID) ([]*dtos.MaintenanceRequestDTO, error) {
	mrs, err := s.reqRepo.ListByPropertyID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	out := make([]*dtos.MaintenanceRequestDTO, 0, len(mrs))
	for _, mr := range mrs {
		out = append(out, buildRequestDTO(mr))
	}
	return out, nil
}

func buildRequestDTO(mr *models.MaintenanceRequest) *dtos.MaintenanceRequestDTO {
	if mr == nil {
		return nil
	}
	return &dtos.MaintenanceRequestDTO{
		RequestID:   mr.ID,
		Title:       mr.Title,
		Priority:    string(mr.Priority),
		Category:    mr.Category,
		PropertyID:  mr.PropertyID,
		Status:      string(mr.Status),
		WorkOrderID: mr.WorkOrderID,
		CreatedAt:   mr.CreatedAt,
	}
}
