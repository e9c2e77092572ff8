package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/parkrose/maintenance-service/internal/dtos"
	"github.com/parkrose/maintenance-service/internal/services"
	"github.com/parkrose/maintenance-service/internal/utils"
)

type OnCallController struct {
	onCallService *services.OnCallService
}

func NewOnCallController(os *services.OnCallService) *OnCallController {
	return &OnCallController{onCallService: os}
}

// ----------------------------------------------------------------
// GET /api/v1/on-call/current?property_id=&at=
// `at` is optional RFC3339; defaults to now.
// ----------------------------------------------------------------
func (c *OnCallController) CurrentOnCallHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	propertyID, err := uuid.Parse(r.URL.Query().Get("property_id"))
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
			"property_id query param must be a UUID", nil, err)
		return
	}

	at := time.Now().UTC()
	if raw := r.URL.Query().Get("at"); raw != "" {
		parsed, pErr := time.Parse(time.RFC3339, raw)
		if pErr != nil {
			utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeInvalidPayload,
				"at must be RFC3339", nil, pErr)
			return
		}
		at = parsed.UTC()
	}

	st, svcErr := c.onCallService.Resolve(ctx, propertyID, at)
	if svcErr != nil {
		respondServiceError(w, svcErr)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.OnCallResponse{
		PropertyID: propertyID,
		UserID:     st.ID,
		StaffName:  st.Name,
		At:         at,
	})
}
