package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/parkrose/maintenance-service/internal/config"
	"github.com/parkrose/maintenance-service/internal/dtos"
	"github.com/parkrose/maintenance-service/internal/models"
	"github.com/parkrose/maintenance-service/internal/repositories"
	"github.com/parkrose/maintenance-service/internal/utils"
)

/*
WorkOrderService drives the work-order lifecycle: quote submission and
approval, emergency assignment, vendor accept/decline, completion and
cancellation. All multi-entity mutations delegate to the repository's
atomic operations; this layer adds caller checks, SLA settlement, the
vendor-availability policy hook and outbound notifications, all of
which run outside the database critical section.
*/
type WorkOrderService struct {
	cfg        *config.Config
	woRepo     repositories.WorkOrderRepository
	quoteRepo  repositories.QuoteRepository
	asgRepo    repositories.AssignmentRepository
	vendorRepo repositories.VendorRepository
	reqRepo    repositories.MaintenanceRequestRepository
	staffRepo  repositories.StaffRepository
	slaService *SLAService
	notifier   Notifier
}

func NewWorkOrderService(
	cfg *config.Config,
	woRepo repositories.WorkOrderRepository,
	quoteRepo repositories.QuoteRepository,
	asgRepo repositories.AssignmentRepository,
	vendorRepo repositories.VendorRepository,
	reqRepo repositories.MaintenanceRequestRepository,
	staffRepo repositories.StaffRepository,
	slaService *SLAService,
	notifier Notifier,
) *WorkOrderService {
	return &WorkOrderService{
		cfg:        cfg,
		woRepo:     woRepo,
		quoteRepo:  quoteRepo,
		asgRepo:    asgRepo,
		vendorRepo: vendorRepo,
		reqRepo:    reqRepo,
		staffRepo:  staffRepo,
		slaService: slaService,
		notifier:   notifier,
	}
}

/*
mapMutationErr translates the repository's error strings into the
sentinel taxonomy. On a version conflict the latest aggregate is
re-fetched so the caller can hand the client fresh state with the 409.
*/
func (s *WorkOrderService) mapMutationErr(ctx context.Context, workOrderID uuid.UUID, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return utils.ErrNotFound
	case strings.Contains(err.Error(), "row_version_conflict"):
		latest, gErr := s.woRepo.GetByID(ctx, workOrderID)
		if gErr != nil {
			utils.Logger.WithError(gErr).Errorf("Failed to re-fetch work order %s after conflict", workOrderID)
		}
		return utils.NewRowVersionConflictError(latest)
	case strings.Contains(err.Error(), "invalid_state"):
		return fmt.Errorf("%s: %w", err.Error(), utils.ErrInvalidState)
	case strings.Contains(err.Error(), "invalid_transition"):
		return fmt.Errorf("%s: %w", err.Error(), utils.ErrInvalidTransition)
	default:
		return err
	}
}

// SubmitQuote records a vendor's PENDING quote. The first quote is the
// work order's first response and flips OPEN to QUOTED.
func (s *WorkOrderService) SubmitQuote(
	ctx context.Context,
	vendorID uuid.UUID,
	req dtos.SubmitQuoteRequest,
) (*dtos.WorkOrderDTO, error) {
	vendor, err := s.vendorRepo.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, fmt.Errorf("vendor %s: %w", vendorID, utils.ErrNotFound)
	}

	wo, err := s.woRepo.GetByID(ctx, req.WorkOrderID)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, utils.ErrNotFound
	}

	quote := &models.WorkOrderQuote{
		ID:          uuid.New(),
		WorkOrderID: req.WorkOrderID,
		VendorID:    vendorID,
		Amount:      req.Amount,
		Details:     req.Details,
		Status:      models.QuoteStatusPending,
	}
	updated, err := s.woRepo.SubmitQuoteAtomic(ctx, quote, wo.RowVersion)
	if err != nil {
		return nil, s.mapMutationErr(ctx, req.WorkOrderID, err)
	}

	s.slaService.RecordFirstResponse(ctx, req.WorkOrderID)
	return s.buildWorkOrderDTO(ctx, updated)
}

/*
ApproveQuote commits the joint update: winning quote ACCEPTED, sibling
PENDING quotes REJECTED, active assignment created, work order
ASSIGNED. Two managers approving concurrently produce exactly one
winner; the loser gets a RowVersionConflictError carrying the latest
aggregate.
*/
func (s *WorkOrderService) ApproveQuote(ctx context.Context, quoteID uuid.UUID) (*dtos.WorkOrderDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, fmt.Errorf("quote %s: %w", quoteID, utils.ErrNotFound)
	}

	wo, err := s.woRepo.GetByID(ctx, quote.WorkOrderID)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, utils.ErrNotFound
	}

	updated, asg, err := s.woRepo.ApproveQuoteAtomic(ctx, quote.WorkOrderID, quoteID, wo.RowVersion)
	if err != nil {
		return nil, s.mapMutationErr(ctx, quote.WorkOrderID, err)
	}

	s.applyVendorBusyHook(ctx, asg.VendorID, models.VendorBusy)
	s.notifyVendorAssigned(ctx, asg.VendorID, updated)

	return s.buildWorkOrderDTO(ctx, updated)
}

// RejectQuote flips a single PENDING quote to REJECTED. The work order
// itself stays QUOTED; a fresh quote can still arrive.
func (s *WorkOrderService) RejectQuote(ctx context.Context, quoteID uuid.UUID) (*dtos.WorkOrderDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, fmt.Errorf("quote %s: %w", quoteID, utils.ErrNotFound)
	}

	tag, err := s.quoteRepo.RejectPending(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("quote %s is already %s: %w", quoteID, quote.Status, utils.ErrInvalidState)
	}

	wo, err := s.woRepo.GetByID(ctx, quote.WorkOrderID)
	if err != nil {
		return nil, err
	}
	return s.buildWorkOrderDTO(ctx, wo)
}

// AcceptAssignment is the vendor starting the job: ASSIGNED→IN_PROGRESS.
func (s *WorkOrderService) AcceptAssignment(
	ctx context.Context,
	vendorID, workOrderID uuid.UUID,
) (*dtos.WorkOrderDTO, error) {
	wo, err := s.requireActiveAssignee(ctx, vendorID, workOrderID)
	if err != nil {
		return nil, err
	}

	updated, err := s.woRepo.UpdateStatusAtomic(ctx, workOrderID, models.WorkOrderStatusInProgress, wo.RowVersion)
	if err != nil {
		return nil, s.mapMutationErr(ctx, workOrderID, err)
	}
	return s.buildWorkOrderDTO(ctx, updated)
}

/*
DeclineAssignment releases the vendor and reopens the work order for a
fresh quoting round. Quotes rejected during the earlier approval stay
rejected.
*/
func (s *WorkOrderService) DeclineAssignment(
	ctx context.Context,
	vendorID, workOrderID uuid.UUID,
) (*dtos.WorkOrderDTO, error) {
	wo, err := s.requireActiveAssignee(ctx, vendorID, workOrderID)
	if err != nil {
		return nil, err
	}

	updated, err := s.woRepo.ReleaseAssignmentAtomic(ctx, workOrderID, wo.RowVersion)
	if err != nil {
		return nil, s.mapMutationErr(ctx, workOrderID, err)
	}

	s.applyVendorBusyHook(ctx, vendorID, models.VendorAvailable)
	s.notifyDefaultContact(ctx,
		fmt.Sprintf("Vendor declined: %s", updated.Title),
		fmt.Sprintf("Work order %s was declined by its vendor and is open for quoting again.", updated.ID),
	)

	return s.buildWorkOrderDTO(ctx, updated)
}

// Complete closes out the job (IN_PROGRESS→COMPLETED) and mirrors the
// terminal state onto the originating request.
func (s *WorkOrderService) Complete(
	ctx context.Context,
	vendorID, workOrderID uuid.UUID,
) (*dtos.WorkOrderDTO, error) {
	wo, err := s.requireActiveAssignee(ctx, vendorID, workOrderID)
	if err != nil {
		return nil, err
	}

	updated, err := s.woRepo.UpdateStatusAtomic(ctx, workOrderID, models.WorkOrderStatusCompleted, wo.RowVersion)
	if err != nil {
		return nil, s.mapMutationErr(ctx, workOrderID, err)
	}

	if err := s.reqRepo.SetStatus(ctx, updated.RequestID, models.RequestStatusCompleted); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to mirror completion onto request %s", updated.RequestID)
	}
	s.applyVendorBusyHook(ctx, vendorID, models.VendorAvailable)

	return s.buildWorkOrderDTO(ctx, updated)
}

// Cancel is the administrative pre-emption of an unassigned work order
// (OPEN|QUOTED→CANCELLED).
func (s *WorkOrderService) Cancel(ctx context.Context, workOrderID uuid.UUID) (*dtos.WorkOrderDTO, error) {
	wo, err := s.woRepo.GetByID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, utils.ErrNotFound
	}

	updated, err := s.woRepo.UpdateStatusAtomic(ctx, workOrderID, models.WorkOrderStatusCancelled, wo.RowVersion)
	if err != nil {
		return nil, s.mapMutationErr(ctx, workOrderID, err)
	}

	if err := s.reqRepo.SetStatus(ctx, updated.RequestID, models.RequestStatusCancelled); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to mirror cancellation onto request %s", updated.RequestID)
	}
	s.slaService.RecordFirstResponse(ctx, workOrderID)

	return s.buildWorkOrderDTO(ctx, updated)
}

/*
UpdateStatus performs a single legal-edge transition on behalf of the
manager surface. Leaving OPEN counts as the first response. The edge
carries the same side effects as the dedicated operations: reopening
releases the active assignment (inside UpdateStatusAtomic) and frees
the vendor, terminal edges mirror onto the originating request.
*/
func (s *WorkOrderService) UpdateStatus(
	ctx context.Context,
	workOrderID uuid.UUID,
	newStatus models.WorkOrderStatus,
) (*dtos.WorkOrderDTO, error) {
	wo, err := s.woRepo.GetByID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, utils.ErrNotFound
	}
	wasOpen := wo.Status == models.WorkOrderStatusOpen

	// Assignee before the write; needed for the availability release
	// once the assignment is gone.
	var assigneeID uuid.UUID
	if asg, aErr := s.asgRepo.GetActiveByWorkOrderID(ctx, workOrderID); aErr == nil && asg != nil {
		assigneeID = asg.VendorID
	}

	updated, err := s.woRepo.UpdateStatusAtomic(ctx, workOrderID, newStatus, wo.RowVersion)
	if err != nil {
		return nil, s.mapMutationErr(ctx, workOrderID, err)
	}

	if wasOpen && updated.Status != models.WorkOrderStatusOpen {
		s.slaService.RecordFirstResponse(ctx, workOrderID)
	}

	switch updated.Status {
	case models.WorkOrderStatusOpen:
		if assigneeID != uuid.Nil {
			s.applyVendorBusyHook(ctx, assigneeID, models.VendorAvailable)
		}
	case models.WorkOrderStatusCompleted:
		if err := s.reqRepo.SetStatus(ctx, updated.RequestID, models.RequestStatusCompleted); err != nil {
			utils.Logger.WithError(err).Errorf("Failed to mirror completion onto request %s", updated.RequestID)
		}
		if assigneeID != uuid.Nil {
			s.applyVendorBusyHook(ctx, assigneeID, models.VendorAvailable)
		}
	case models.WorkOrderStatusCancelled:
		if err := s.reqRepo.SetStatus(ctx, updated.RequestID, models.RequestStatusCancelled); err != nil {
			utils.Logger.WithError(err).Errorf("Failed to mirror cancellation onto request %s", updated.RequestID)
		}
	}

	return s.buildWorkOrderDTO(ctx, updated)
}

func (s *WorkOrderService) GetWorkOrder(ctx context.Context, workOrderID uuid.UUID) (*dtos.WorkOrderDTO, error) {
	wo, err := s.woRepo.GetByID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, utils.ErrNotFound
	}
	return s.buildWorkOrderDTO(ctx, wo)
}

func (s *WorkOrderService) ListByProperty(
	ctx context.Context,
	propertyID uuid.UUID,
	statuses []models.WorkOrderStatus,
) ([]*dtos.WorkOrderDTO, error) {
	wos, err := s.woRepo.ListByPropertyID(ctx, propertyID, statuses)
	if err != nil {
		return nil, err
	}

	out := make([]*dtos.WorkOrderDTO, 0, len(wos))
	for _, wo := range wos {
		dto, err := s.buildWorkOrderDTO(ctx, wo)
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	return out, nil
}

// requireActiveAssignee verifies the caller is the vendor holding the
// active assignment and returns the work order.
func (s *WorkOrderService) requireActiveAssignee(
	ctx context.Context,
	vendorID, workOrderID uuid.UUID,
) (*models.WorkOrder, error) {
	wo, err := s.woRepo.GetByID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, utils.ErrNotFound
	}

	asg, err := s.asgRepo.GetActiveByWorkOrderID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if asg == nil {
		return nil, fmt.Errorf("work order %s has no active assignment: %w", workOrderID, utils.ErrInvalidState)
	}
	if asg.VendorID != vendorID {
		return nil, fmt.Errorf("vendor %s is not the active assignee of %s: %w",
			vendorID, workOrderID, utils.ErrInvalidState)
	}
	return wo, nil
}

// applyVendorBusyHook flips vendor availability when the policy flag is
// on. Best-effort: a failed flip is logged, never fails the lifecycle.
func (s *WorkOrderService) applyVendorBusyHook(
	ctx context.Context,
	vendorID uuid.UUID,
	availability models.VendorAvailability,
) {
	if !s.cfg.LDFlag_VendorBusyOnAssign {
		return
	}
	err := s.vendorRepo.UpdateWithRetry(ctx, vendorID, func(v *models.Vendor) error {
		v.Availability = availability
		return nil
	})
	if err != nil {
		utils.Logger.WithError(err).Warnf("Failed to set vendor %s availability to %s", vendorID, availability)
	}
}

func (s *WorkOrderService) notifyVendorAssigned(ctx context.Context, vendorID uuid.UUID, wo *models.WorkOrder) {
	vendor, err := s.vendorRepo.GetByID(ctx, vendorID)
	if err != nil || vendor == nil {
		utils.Logger.WithError(err).Warnf("Cannot notify vendor %s, lookup failed", vendorID)
		return
	}
	subject := fmt.Sprintf("Assignment confirmed: %s", wo.Title)
	body := fmt.Sprintf("You have been assigned work order %s. Please accept or decline.", wo.ID)
	if err := s.notifier.NotifyVendor(ctx, vendor, subject, body); err != nil {
		utils.Logger.WithError(err).Warnf("Assignment notification failed for vendor %s", vendorID)
	}
}

func (s *WorkOrderService) notifyDefaultContact(ctx context.Context, subject, body string) {
	st, err := s.staffRepo.GetDefaultContact(ctx)
	if err != nil || st == nil {
		utils.Logger.WithError(err).Warn("No default contact to notify")
		return
	}
	if err := s.notifier.NotifyStaff(ctx, st, subject, body); err != nil {
		utils.Logger.WithError(err).Warn("Default contact notification failed")
	}
}

func (s *WorkOrderService) buildWorkOrderDTO(ctx context.Context, wo *models.WorkOrder) (*dtos.WorkOrderDTO, error) {
	if wo == nil {
		return nil, utils.ErrNotFound
	}

	quotes, err := s.quoteRepo.ListByWorkOrderID(ctx, wo.ID)
	if err != nil {
		return nil, err
	}
	asg, err := s.asgRepo.GetActiveByWorkOrderID(ctx, wo.ID)
	if err != nil {
		return nil, err
	}

	dto := &dtos.WorkOrderDTO{
		WorkOrderID: wo.ID,
		RequestID:   wo.RequestID,
		PropertyID:  wo.PropertyID,
		Title:       wo.Title,
		Description: wo.Description,
		Status:      string(wo.Status),
		RowVersion:  wo.RowVersion,
		CreatedAt:   wo.CreatedAt,
		UpdatedAt:   wo.UpdatedAt,
	}
	for _, q := range quotes {
		dto.Quotes = append(dto.Quotes, dtos.QuoteDTO{
			QuoteID:     q.ID,
			WorkOrderID: q.WorkOrderID,
			VendorID:    q.VendorID,
			Amount:      q.Amount,
			Details:     q.Details,
			Status:      string(q.Status),
			CreatedAt:   q.CreatedAt,
		})
	}
	if asg != nil {
		dto.Assignment = &dtos.AssignmentDTO{
			AssignmentID: asg.ID,
			VendorID:     asg.VendorID,
			Source:       string(asg.Source),
			Active:       asg.Active,
			CreatedAt:    asg.CreatedAt,
			ReleasedAt:   asg.ReleasedAt,
		}
	}
	return dto, nil
}
