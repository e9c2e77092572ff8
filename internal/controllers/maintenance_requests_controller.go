package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/parkrose/maintenance-service/internal/dtos"
	"github.com/parkrose/maintenance-service/internal/services"
	"github.com/parkrose/maintenance-service/internal/utils"
)

type MaintenanceRequestsController struct {
	maintenanceService *services.MaintenanceService
}

func NewMaintenanceRequestsController(ms *services.MaintenanceService) *MaintenanceRequestsController {
	return &MaintenanceRequestsController{maintenanceService: ms}
}

// ----------------------------------------------------------------
// POST /api/v1/maintenance-requests
// ----------------------------------------------------------------
func (c *MaintenanceRequestsController) CreateRequestHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requesterID, err := callerID(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil, err)
		return
	}

	var body dtos.CreateMaintenanceRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for maintenance request", nil, err)
		return
	}
	if err := validate.Struct(body); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, svcErr := c.maintenanceService.CreateRequest(ctx, requesterID, body)
	if svcErr != nil {
		respondServiceError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// ----------------------------------------------------------------
// POST /api/v1/maintenance-requests/dispatch
// ----------------------------------------------------------------
func (c *MaintenanceRequestsController) DispatchRequestHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := callerID(r); err != nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil, err)
		return
	}

	var body dtos.DispatchRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for dispatch payload", nil, err)
		return
	}
	if err := validate.Struct(body); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, svcErr := c.maintenanceService.DispatchRequest(ctx, body.RequestID)
	if svcErr != nil {
		respondServiceError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// GET /api/v1/maintenance-requests/{id}
// GET /api/v1/maintenance-requests?property_id=
// ----------------------------------------------------------------
func (c *MaintenanceRequestsController) GetRequestHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"id must be a UUID", nil, err)
		return
	}

	resp, svcErr := c.maintenanceService.GetRequest(ctx, id)
	if svcErr != nil {
		respondServiceError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (c *MaintenanceRequestsController) ListRequestsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	propertyID, err := uuid.Parse(r.URL.Query().Get("property_id"))
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"property_id query param must be a UUID", nil, err)
		return
	}

	resp, svcErr := c.maintenanceService.ListRequestsByProperty(ctx, propertyID)
	if svcErr != nil {
		respondServiceError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
