package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/parkrose/maintenance-service/internal/middleware"
	"github.com/parkrose/maintenance-service/internal/utils"
)

var validate = validator.New()

// callerID pulls the authenticated user out of the request context. The
// middleware stores the JWT subject as a string UUID.
func callerID(r *http.Request) (uuid.UUID, error) {
	v := r.Context().Value(middleware.ContextKeyUserID)
	if v == nil {
		return uuid.Nil, errors.New("no userID in context")
	}
	s, ok := v.(string)
	if !ok {
		return uuid.Nil, errors.New("userID in context is not a string")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("userID is not a UUID: %w", err)
	}
	return id, nil
}

func respondValidationError(w http.ResponseWriter, err error) {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		var details []string
		for _, fe := range vErrs {
			details = append(details, fmt.Sprintf("field '%s' failed on '%s'", fe.Field(), fe.Tag()))
		}
		utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation,
			"Validation failed", details, err)
		return
	}
	utils.RespondErrorWithCode(w, http.StatusBadRequest, utils.ErrCodeValidation,
		err.Error(), nil, err)
}

/*
respondServiceError maps the service error taxonomy onto the HTTP
surface. A version conflict answers 409 with the latest aggregate in
Details so the client can retry against fresh state.
*/
func respondServiceError(w http.ResponseWriter, err error) {
	var conflict *utils.RowVersionConflictError
	switch {
	case errors.As(err, &conflict):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeRowVersionConflict,
			"The work order was modified concurrently, retry with the latest state", conflict.Current, err)
	case errors.Is(err, utils.ErrNotFound):
		utils.RespondErrorWithCode(w, http.StatusNotFound, utils.ErrCodeNotFound,
			"Resource not found", nil, err)
	case errors.Is(err, utils.ErrInvalidTransition):
		utils.RespondErrorWithCode(w, http.StatusUnprocessableEntity, utils.ErrCodeInvalidTransition,
			err.Error(), nil, err)
	case errors.Is(err, utils.ErrInvalidState):
		utils.RespondErrorWithCode(w, http.StatusUnprocessableEntity, utils.ErrCodeInvalidState,
			err.Error(), nil, err)
	case errors.Is(err, utils.ErrNoOnCallCoverage):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeNoOnCallCoverage,
			"No on-call coverage at the requested time", nil, err)
	case errors.Is(err, utils.ErrNoSuitableVendor):
		utils.RespondErrorWithCode(w, http.StatusConflict, utils.ErrCodeNoSuitableVendor,
			"No suitable vendor available", nil, err)
	default:
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal,
			"Internal error", nil, err)
	}
}
