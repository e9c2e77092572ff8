package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/parkrose/maintenance-service/internal/dtos"
	"github.com/parkrose/maintenance-service/internal/models"
	"github.com/parkrose/maintenance-service/internal/services"
	"github.com/parkrose/maintenance-service/internal/utils"
)

type WorkOrdersController struct {
	workOrderService *services.WorkOrderService
}

func NewWorkOrdersController(ws *services.WorkOrderService) *WorkOrdersController {
	return &WorkOrdersController{workOrderService: ws}
}

// decodeAction parses the shared "work_order_id" payload.
func decodeAction(w http.ResponseWriter, r *http.Request) (dtos.WorkOrderActionRequest, bool) {
	var body dtos.WorkOrderActionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for work-order action", nil, err)
		return body, false
	}
	if err := validate.Struct(body); err != nil {
		respondValidationError(w, err)
		return body, false
	}
	return body, true
}

// ----------------------------------------------------------------
// GET /api/v1/work-orders/{id}
// ----------------------------------------------------------------
func (c *WorkOrdersController) GetWorkOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"id must be a UUID", nil, err)
		return
	}

	resp, svcErr := c.workOrderService.GetWorkOrder(ctx, id)
	if svcErr != nil {
		respondServiceError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/work-orders?property_id=&status=
// ----------------------------------------------------------------
func (c *WorkOrdersController) ListWorkOrdersHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	propertyID, err := uuid.Parse(r.URL.Query().Get("property_id"))
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"property_id query param must be a UUID", nil, err)
		return
	}

	var statuses []models.WorkOrderStatus
	for _, s := range r.URL.Query()["status"] {
		statuses = append(statuses, models.WorkOrderStatus(s))
	}

	resp, svcErr := c.workOrderService.ListByProperty(ctx, propertyID, statuses)
	if svcErr != nil {
		respondServiceError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// POST /api/v1/work-orders/accept   (vendor: ASSIGNED -> IN_PROGRESS)
// ----------------------------------------------------------------
func (c *WorkOrdersController) AcceptHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vendorID, err := callerID(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil, err)
		return
	}
	body, ok := decodeAction(w, r)
	if !ok {
		return
	}

	resp, svcErr := c.workOrderService.AcceptAssignment(ctx, vendorID, body.WorkOrderID)
	if svcErr != nil {
		respondServiceError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// POST /api/v1/work-orders/decline  (vendor: releases assignment)
// ----------------------------------------------------------------
func (c *WorkOrdersController) DeclineHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vendorID, err := callerID(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil, err)
		return
	}
	body, ok := decodeAction(w, r)
	if !ok {
		return
	}

	resp, svcErr := c.workOrderService.DeclineAssignment(ctx, vendorID, body.WorkOrderID)
	if svcErr != nil {
		respondServiceError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// POST /api/v1/work-orders/complete (vendor: IN_PROGRESS -> COMPLETED)
// ----------------------------------------------------------------
func (c *WorkOrdersController) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vendorID, err := callerID(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil, err)
		return
	}
	body, ok := decodeAction(w, r)
	if !ok {
		return
	}

	resp, svcErr := c.workOrderService.Complete(ctx, vendorID, body.WorkOrderID)
	if svcErr != nil {
		respondServiceError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// POST /api/v1/work-orders/cancel   (manager: OPEN|QUOTED -> CANCELLED)
// ----------------------------------------------------------------
func (c *WorkOrdersController) CancelHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := callerID(r); err != nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil, err)
		return
	}
	body, ok := decodeAction(w, r)
	if !ok {
		return
	}

	resp, svcErr := c.workOrderService.Cancel(ctx, body.WorkOrderID)
	if svcErr != nil {
		respondServiceError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// PATCH /api/v1/work-orders/status  (manager: single legal edge)
// ----------------------------------------------------------------
func (c *WorkOrdersController) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := callerID(r); err != nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil, err)
		return
	}

	var body dtos.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for status update", nil, err)
		return
	}
	if err := validate.Struct(body); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, svcErr := c.workOrderService.UpdateStatus(ctx, body.WorkOrderID, models.WorkOrderStatus(body.Status))
	if svcErr != nil {
		respondServiceError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
