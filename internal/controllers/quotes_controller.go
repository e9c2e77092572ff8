package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/parkrose/maintenance-service/internal/dtos"
	"github.com/parkrose/maintenance-service/internal/services"
	"github.com/parkrose/maintenance-service/internal/utils"
)

type QuotesController struct {
	workOrderService *services.WorkOrderService
}

func NewQuotesController(ws *services.WorkOrderService) *QuotesController {
	return &QuotesController{workOrderService: ws}
}

// ----------------------------------------------------------------
// POST /api/v1/work-orders/quotes   (vendor submits a quote)
// ----------------------------------------------------------------
func (c *QuotesController) SubmitQuoteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	vendorID, err := callerID(r)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil, err)
		return
	}

	var body dtos.SubmitQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for quote payload", nil, err)
		return
	}
	if err := validate.Struct(body); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, svcErr := c.workOrderService.SubmitQuote(ctx, vendorID, body)
	if svcErr != nil {
		respondServiceError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// ----------------------------------------------------------------
// POST /api/v1/work-orders/quotes/approve   (manager picks the winner)
// ----------------------------------------------------------------
func (c *QuotesController) ApproveQuoteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := callerID(r); err != nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil, err)
		return
	}

	var body dtos.QuoteActionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for quote action", nil, err)
		return
	}
	if err := validate.Struct(body); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, svcErr := c.workOrderService.ApproveQuote(ctx, body.QuoteID)
	if svcErr != nil {
		respondServiceError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ----------------------------------------------------------------
// POST /api/v1/work-orders/quotes/reject
// ----------------------------------------------------------------
func (c *QuotesController) RejectQuoteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := callerID(r); err != nil {
		utils.RespondErrorWithCode(w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, err.Error(), nil, err)
		return
	}

	var body dtos.QuoteActionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"Invalid JSON for quote action", nil, err)
		return
	}
	if err := validate.Struct(body); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, svcErr := c.workOrderService.RejectQuote(ctx, body.QuoteID)
	if svcErr != nil {
		respondServiceError(w, svcErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
