package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-till/middlewares"
	"github.com/yeremiapane/restaurant-till/services"
	"github.com/yeremiapane/restaurant-till/utils"
)

// respondServiceError maps the till error taxonomy onto HTTP. Stale-state
// errors ask the terminal to refresh, storage errors ask it to retry.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrMissingTenant):
		utils.RespondFailure(c, http.StatusUnauthorized, "missing_tenant", "", err)
	case errors.Is(err, services.ErrAccessDenied):
		utils.RespondFailure(c, http.StatusForbidden, "access_denied", "", err)
	case errors.Is(err, services.ErrNotFound):
		utils.RespondFailure(c, http.StatusNotFound, "not_found", utils.ActionRefresh, err)
	case errors.Is(err, services.ErrAlreadyClosed):
		utils.RespondFailure(c, http.StatusConflict, "already_closed", utils.ActionRefresh, err)
	case errors.Is(err, services.ErrInvalidTransition):
		utils.RespondFailure(c, http.StatusConflict, "invalid_transition", utils.ActionRefresh, err)
	case errors.Is(err, services.ErrOrderLocked):
		utils.RespondFailure(c, http.StatusLocked, "order_locked", utils.ActionRefresh, err)
	case errors.Is(err, services.ErrStorageTimeout):
		utils.RespondFailure(c, http.StatusServiceUnavailable, "storage_timeout", utils.ActionRetry, err)
	case errors.Is(err, services.ErrStorageConflict):
		utils.RespondFailure(c, http.StatusServiceUnavailable, "storage_conflict", utils.ActionRetry, err)
	case errors.Is(err, services.ErrRefundExceeded):
		utils.RespondFailure(c, http.StatusUnprocessableEntity, "refund_exceeded", "", err)
	case errors.Is(err, services.ErrAmountOverflow):
		utils.RespondFailure(c, http.StatusUnprocessableEntity, "amount_overflow", "", err)
	case errors.Is(err, services.ErrInvalidInput):
		utils.RespondFailure(c, http.StatusBadRequest, "invalid_input", "", err)
	default:
		utils.ErrorLogger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"tenant_id":  middlewares.TenantID(c),
			"path":       c.FullPath(),
		}).WithError(err).Error("unhandled service error")
		utils.RespondFailure(c, http.StatusInternalServerError, "internal", utils.ActionRetry, errors.New("internal server error"))
	}
}

// respondBindError reports binding failures field by field.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, utils.JSONResponse{
			Status:  false,
			Message: "invalid request body",
			Data:    fields,
			Code:    "invalid_input",
		})
		return
	}
	utils.RespondFailure(c, http.StatusBadRequest, "invalid_input", "", err)
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondFailure(c, http.StatusBadRequest, "invalid_input", "", errors.New("invalid "+name))
		return 0, false
	}
	return uint(id), true
}
