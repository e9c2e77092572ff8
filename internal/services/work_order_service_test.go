package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/parkrose/maintenance-service/internal/config"
	"github.com/parkrose/maintenance-service/internal/dtos"
	"github.com/parkrose/maintenance-service/internal/models"
	"github.com/parkrose/maintenance-service/internal/utils"
)

type workOrderHarness struct {
	store      *memStore
	woRepo     *fakeWorkOrderRepo
	quoteRepo  *fakeQuoteRepo
	asgRepo    *fakeAssignmentRepo
	vendorRepo *fakeVendorRepo
	reqRepo    *fakeRequestRepo
	staffRepo  *fakeStaffRepo
	slaRepo    *fakeSLARepo
	notifier   *fakeNotifier
	svc        *WorkOrderService
}

func newWorkOrderHarness(cfg *config.Config) *workOrderHarness {
	store := newMemStore()
	h := &workOrderHarness{
		store:      store,
		woRepo:     &fakeWorkOrderRepo{s: store},
		quoteRepo:  &fakeQuoteRepo{s: store},
		asgRepo:    &fakeAssignmentRepo{s: store},
		vendorRepo: &fakeVendorRepo{s: store},
		reqRepo:    &fakeRequestRepo{s: store},
		staffRepo:  &fakeStaffRepo{s: store},
		slaRepo:    &fakeSLARepo{s: store},
		notifier:   &fakeNotifier{},
	}
	h.svc = NewWorkOrderService(
		cfg, h.woRepo, h.quoteRepo, h.asgRepo, h.vendorRepo,
		h.reqRepo, h.staffRepo, NewSLAService(h.slaRepo), h.notifier,
	)
	return h
}

// seedQuotable creates an OPEN work order (with SLA tracking) and two
// vendors ready to quote on it.
func (h *workOrderHarness) seedQuotable(t *testing.T) (*models.WorkOrder, *models.Vendor, *models.Vendor) {
	t.Helper()
	ctx := context.Background()

	req := &models.MaintenanceRequest{
		ID:         uuid.New(),
		Title:      "Leaking radiator",
		PropertyID: uuid.New(),
		Status:     models.RequestStatusDispatched,
	}
	require.NoError(t, h.reqRepo.Create(ctx, req))

	wo := &models.WorkOrder{
		ID:         uuid.New(),
		RequestID:  req.ID,
		PropertyID: req.PropertyID,
		Title:      req.Title,
		Status:     models.WorkOrderStatusOpen,
	}
	require.NoError(t, h.woRepo.Create(ctx, wo))
	require.NoError(t, h.slaRepo.Create(ctx, &models.WorkOrderSLA{
		WorkOrderID: wo.ID,
		PropertyID:  wo.PropertyID,
	}))

	v1 := &models.Vendor{ID: uuid.New(), Name: "Rose City Plumbing", Availability: models.VendorAvailable}
	v2 := &models.Vendor{ID: uuid.New(), Name: "Cascade Pipeworks", Availability: models.VendorAvailable}
	require.NoError(t, h.vendorRepo.Create(ctx, v1))
	require.NoError(t, h.vendorRepo.Create(ctx, v2))
	return wo, v1, v2
}

func (h *workOrderHarness) submitQuote(t *testing.T, vendorID, workOrderID uuid.UUID, amount float64) *dtos.WorkOrderDTO {
	t.Helper()
	dto, err := h.svc.SubmitQuote(context.Background(), vendorID, dtos.SubmitQuoteRequest{
		WorkOrderID: workOrderID,
		Amount:      amount,
	})
	require.NoError(t, err)
	return dto
}

func TestWorkOrderCreateReturnsPersistedVersion(t *testing.T) {
	h := newWorkOrderHarness(&config.Config{})
	wo := &models.WorkOrder{ID: uuid.New(), Status: models.WorkOrderStatusOpen}
	require.NoError(t, h.woRepo.Create(context.Background(), wo))

	// Callers feed wo.RowVersion straight into the atomic operations,
	// so Create must hand back the persisted row state.
	require.Equal(t, int64(1), wo.RowVersion)
	require.False(t, wo.CreatedAt.IsZero())
}

func TestSubmitQuoteFlipsOpenToQuotedAndSettlesSLA(t *testing.T) {
	ctx := context.Background()
	h := newWorkOrderHarness(&config.Config{})
	wo, v1, v2 := h.seedQuotable(t)

	dto := h.submitQuote(t, v1.ID, wo.ID, 250)
	require.Equal(t, string(models.WorkOrderStatusQuoted), dto.Status)
	require.Len(t, dto.Quotes, 1)

	sla, err := h.slaRepo.GetByWorkOrderID(ctx, wo.ID)
	require.NoError(t, err)
	require.True(t, sla.Responded(), "first quote is the first response")

	// Second quote keeps QUOTED.
	dto = h.submitQuote(t, v2.ID, wo.ID, 300)
	require.Equal(t, string(models.WorkOrderStatusQuoted), dto.Status)
	require.Len(t, dto.Quotes, 2)
}

func TestSubmitQuoteRejectedOnAssignedWorkOrder(t *testing.T) {
	h := newWorkOrderHarness(&config.Config{})
	wo, v1, v2 := h.seedQuotable(t)

	dto := h.submitQuote(t, v1.ID, wo.ID, 250)
	_, err := h.svc.ApproveQuote(context.Background(), dto.Quotes[0].QuoteID)
	require.NoError(t, err)

	_, err = h.svc.SubmitQuote(context.Background(), v2.ID, dtos.SubmitQuoteRequest{
		WorkOrderID: wo.ID,
		Amount:      300,
	})
	require.ErrorIs(t, err, utils.ErrInvalidState)
}

func TestApproveQuoteSelectsWinnerAndRejectsSiblings(t *testing.T) {
	ctx := context.Background()
	h := newWorkOrderHarness(&config.Config{})
	wo, v1, v2 := h.seedQuotable(t)

	h.submitQuote(t, v1.ID, wo.ID, 250)
	dto := h.submitQuote(t, v2.ID, wo.ID, 300)
	require.Len(t, dto.Quotes, 2)
	winner := dto.Quotes[0]

	result, err := h.svc.ApproveQuote(ctx, winner.QuoteID)
	require.NoError(t, err)
	require.Equal(t, string(models.WorkOrderStatusAssigned), result.Status)
	require.NotNil(t, result.Assignment)
	require.Equal(t, winner.VendorID, result.Assignment.VendorID)
	require.Equal(t, string(models.AssignmentSourceQuote), result.Assignment.Source)

	accepted, rejected := 0, 0
	for _, q := range result.Quotes {
		switch q.Status {
		case string(models.QuoteStatusAccepted):
			accepted++
		case string(models.QuoteStatusRejected):
			rejected++
		}
	}
	require.Equal(t, 1, accepted)
	require.Equal(t, 1, rejected)

	require.Equal(t, 1, h.notifier.sentTo("vendor", winner.VendorID))
}

func TestConcurrentApproveExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	h := newWorkOrderHarness(&config.Config{})
	wo, v1, v2 := h.seedQuotable(t)

	h.submitQuote(t, v1.ID, wo.ID, 250)
	dto := h.submitQuote(t, v2.ID, wo.ID, 300)
	require.Len(t, dto.Quotes, 2)

	// Two managers race to approve different quotes.
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, q := range dto.Quotes {
		wg.Add(1)
		go func(i int, quoteID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = h.svc.ApproveQuote(ctx, quoteID)
		}(i, q.QuoteID)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		// The loser sees either a version conflict or an invalid-state
		// rejection, depending on when it read the aggregate.
		if !errors.Is(err, utils.ErrRowVersionConflict) {
			require.ErrorIs(t, err, utils.ErrInvalidState)
		}
	}
	require.Equal(t, 1, winners, "exactly one approval must win")

	final, err := h.svc.GetWorkOrder(ctx, wo.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.WorkOrderStatusAssigned), final.Status)
	require.NotNil(t, final.Assignment)

	accepted := 0
	for _, q := range final.Quotes {
		if q.Status == string(models.QuoteStatusAccepted) {
			accepted++
		}
	}
	require.Equal(t, 1, accepted, "at most one accepted quote per work order")

	asgs, err := h.asgRepo.ListByWorkOrderID(ctx, wo.ID)
	require.NoError(t, err)
	require.Len(t, asgs, 1)
}

func TestRejectQuoteLeavesWorkOrderQuoted(t *testing.T) {
	ctx := context.Background()
	h := newWorkOrderHarness(&config.Config{})
	wo, v1, _ := h.seedQuotable(t)

	dto := h.submitQuote(t, v1.ID, wo.ID, 250)
	quoteID := dto.Quotes[0].QuoteID

	result, err := h.svc.RejectQuote(ctx, quoteID)
	require.NoError(t, err)
	require.Equal(t, string(models.WorkOrderStatusQuoted), result.Status)
	require.Equal(t, string(models.QuoteStatusRejected), result.Quotes[0].Status)

	// Rejecting an already-decided quote is an invalid state.
	_, err = h.svc.RejectQuote(ctx, quoteID)
	require.ErrorIs(t, err, utils.ErrInvalidState)
}

func TestDeclineReopensWithoutResurrectingQuotes(t *testing.T) {
	ctx := context.Background()
	h := newWorkOrderHarness(&config.Config{})
	wo, v1, v2 := h.seedQuotable(t)

	h.submitQuote(t, v1.ID, wo.ID, 250)
	dto := h.submitQuote(t, v2.ID, wo.ID, 300)
	winner := dto.Quotes[0]

	_, err := h.svc.ApproveQuote(ctx, winner.QuoteID)
	require.NoError(t, err)

	result, err := h.svc.DeclineAssignment(ctx, winner.VendorID, wo.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.WorkOrderStatusOpen), result.Status)
	require.Nil(t, result.Assignment, "active assignment must be released")

	// The losing quote stays REJECTED after the reopen.
	for _, q := range result.Quotes {
		require.NotEqual(t, string(models.QuoteStatusPending), q.Status)
	}

	// A fresh quoting round can start.
	fresh := h.submitQuote(t, v2.ID, wo.ID, 280)
	require.Equal(t, string(models.WorkOrderStatusQuoted), fresh.Status)
}

func TestAcceptAndCompleteByActiveAssigneeOnly(t *testing.T) {
	ctx := context.Background()
	h := newWorkOrderHarness(&config.Config{})
	wo, v1, v2 := h.seedQuotable(t)

	dto := h.submitQuote(t, v1.ID, wo.ID, 250)
	_, err := h.svc.ApproveQuote(ctx, dto.Quotes[0].QuoteID)
	require.NoError(t, err)

	// The wrong vendor cannot act on the assignment.
	_, err = h.svc.AcceptAssignment(ctx, v2.ID, wo.ID)
	require.ErrorIs(t, err, utils.ErrInvalidState)

	result, err := h.svc.AcceptAssignment(ctx, v1.ID, wo.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.WorkOrderStatusInProgress), result.Status)

	result, err = h.svc.Complete(ctx, v1.ID, wo.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.WorkOrderStatusCompleted), result.Status)

	req, err := h.reqRepo.GetByID(ctx, wo.RequestID)
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusCompleted, req.Status)
}

func TestCancelOnlyBeforeAssignment(t *testing.T) {
	ctx := context.Background()
	h := newWorkOrderHarness(&config.Config{})
	wo, v1, _ := h.seedQuotable(t)

	dto := h.submitQuote(t, v1.ID, wo.ID, 250)
	_, err := h.svc.ApproveQuote(ctx, dto.Quotes[0].QuoteID)
	require.NoError(t, err)

	_, err = h.svc.Cancel(ctx, wo.ID)
	require.ErrorIs(t, err, utils.ErrInvalidTransition)
}

func TestCancelMirrorsRequestStatus(t *testing.T) {
	ctx := context.Background()
	h := newWorkOrderHarness(&config.Config{})
	wo, _, _ := h.seedQuotable(t)

	result, err := h.svc.Cancel(ctx, wo.ID)
	require.NoError(t, err)
	require.Equal(t, string(models.WorkOrderStatusCancelled), result.Status)

	req, err := h.reqRepo.GetByID(ctx, wo.RequestID)
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusCancelled, req.Status)
}

func TestVendorBusyOnAssignPolicyHook(t *testing.T) {
	ctx := context.Background()
	h := newWorkOrderHarness(&config.Config{LDFlag_VendorBusyOnAssign: true})
	wo, v1, _ := h.seedQuotable(t)

	dto := h.submitQuote(t, v1.ID, wo.ID, 250)
	_, err := h.svc.ApproveQuote(ctx, dto.Quotes[0].QuoteID)
	require.NoError(t, err)

	vendor, err := h.vendorRepo.GetByID(ctx, v1.ID)
	require.NoError(t, err)
	require.Equal(t, models.VendorBusy, vendor.Availability)

	_, err = h.svc.DeclineAssignment(ctx, v1.ID, wo.ID)
	require.NoError(t, err)

	vendor, err = h.vendorRepo.GetByID(ctx, v1.ID)
	require.NoError(t, err)
	require.Equal(t, models.VendorAvailable, vendor.Availability)
}

func TestUpdateStatusReopenReleasesAssignment(t *testing.T) {
	ctx := context.Background()
	h := newWorkOrderHarness(&config.Config{LDFlag_VendorBusyOnAssign: true})
	wo, v1, v2 := h.seedQuotable(t)

	dto := h.submitQuote(t, v1.ID, wo.ID, 250)
	_, err := h.svc.ApproveQuote(ctx, dto.Quotes[0].QuoteID)
	require.NoError(t, err)

	// Administrative reopen of an ASSIGNED work order.
	result, err := h.svc.UpdateStatus(ctx, wo.ID, models.WorkOrderStatusOpen)
	require.NoError(t, err)
	require.Equal(t, string(models.WorkOrderStatusOpen), result.Status)
	require.Nil(t, result.Assignment)

	asg, err := h.asgRepo.GetActiveByWorkOrderID(ctx, wo.ID)
	require.NoError(t, err)
	require.Nil(t, asg, "an OPEN work order carries no active assignment")

	vendor, err := h.vendorRepo.GetByID(ctx, v1.ID)
	require.NoError(t, err)
	require.Equal(t, models.VendorAvailable, vendor.Availability)

	// A fresh quoting round after the reopen yields a single active
	// assignment again.
	fresh := h.submitQuote(t, v2.ID, wo.ID, 280)
	var pendingID uuid.UUID
	for _, q := range fresh.Quotes {
		if q.Status == string(models.QuoteStatusPending) {
			pendingID = q.QuoteID
		}
	}
	_, err = h.svc.ApproveQuote(ctx, pendingID)
	require.NoError(t, err)

	asgs, err := h.asgRepo.ListByWorkOrderID(ctx, wo.ID)
	require.NoError(t, err)
	active := 0
	for _, a := range asgs {
		if a.Active {
			active++
		}
	}
	require.Equal(t, 1, active)
}

func TestUpdateStatusCompleteMirrorsSideEffects(t *testing.T) {
	ctx := context.Background()
	h := newWorkOrderHarness(&config.Config{LDFlag_VendorBusyOnAssign: true})
	wo, v1, _ := h.seedQuotable(t)

	dto := h.submitQuote(t, v1.ID, wo.ID, 250)
	_, err := h.svc.ApproveQuote(ctx, dto.Quotes[0].QuoteID)
	require.NoError(t, err)
	_, err = h.svc.AcceptAssignment(ctx, v1.ID, wo.ID)
	require.NoError(t, err)

	// The manager-surface edge produces the same side effects as the
	// vendor-facing Complete.
	result, err := h.svc.UpdateStatus(ctx, wo.ID, models.WorkOrderStatusCompleted)
	require.NoError(t, err)
	require.Equal(t, string(models.WorkOrderStatusCompleted), result.Status)

	req, err := h.reqRepo.GetByID(ctx, wo.RequestID)
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusCompleted, req.Status)

	vendor, err := h.vendorRepo.GetByID(ctx, v1.ID)
	require.NoError(t, err)
	require.Equal(t, models.VendorAvailable, vendor.Availability)
}

func TestUpdateStatusCancelMirrorsRequest(t *testing.T) {
	ctx := context.Background()
	h := newWorkOrderHarness(&config.Config{})
	wo, _, _ := h.seedQuotable(t)

	result, err := h.svc.UpdateStatus(ctx, wo.ID, models.WorkOrderStatusCancelled)
	require.NoError(t, err)
	require.Equal(t, string(models.WorkOrderStatusCancelled), result.Status)

	req, err := h.reqRepo.GetByID(ctx, wo.RequestID)
	require.NoError(t, err)
	require.Equal(t, models.RequestStatusCancelled, req.Status)
}

func TestUpdateStatusRejectsIllegalEdge(t *testing.T) {
	ctx := context.Background()
	h := newWorkOrderHarness(&config.Config{})
	wo, _, _ := h.seedQuotable(t)

	_, err := h.svc.UpdateStatus(ctx, wo.ID, models.WorkOrderStatusCompleted)
	require.ErrorIs(t, err, utils.ErrInvalidTransition)

	_, err = h.svc.UpdateStatus(ctx, uuid.New(), models.WorkOrderStatusCancelled)
	require.ErrorIs(t, err, utils.ErrNotFound)
}
