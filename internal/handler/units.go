package handler

import (
	"net/http"
	"strconv"

	"github.com/AriBaderkhan/seraj-store/internal/apierror"
	"github.com/AriBaderkhan/seraj-store/internal/dto"
	"github.com/AriBaderkhan/seraj-store/internal/service"

	"github.com/gin-gonic/gin"
)

type UnitsHandler struct{ svc service.UnitService }

func NewUnitsHandler(svc service.UnitService) *UnitsHandler { return &UnitsHandler{svc: svc} }

// UpdateDevice godoc
// @Summary      Correct a device
// @Description  Partial update of one serialized unit. The only accepted status change is in_stock → returned.
// @Tags         devices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                   true "Device UUID"
// @Param        body body     dto.UpdateDeviceRequest  true "Fields to change"
// @Success      200  {object} dto.DeviceResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/devices/{id} [patch]
func (h *UnitsHandler) UpdateDevice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateDeviceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateDevice(c.Request.Context(), actor(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteDevice godoc
// @Summary      Delete a device
// @Description  Removes one unit. Stock is recounted only when reconcile=true.
// @Tags         devices
// @Produce      json
// @Security     BearerAuth
// @Param        id        path  string true  "Device UUID"
// @Param        reconcile query bool   false "Recount the item's stock"
// @Success      200  {object} dto.DeleteUnitResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/devices/{id} [delete]
func (h *UnitsHandler) DeleteDevice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	reconcile := false
	if raw := c.Query("reconcile"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(c, apierror.Validation("", "invalid reconcile flag", map[string]string{"reconcile": "boolean"}))
			return
		}
		reconcile = v
	}
	resp, err := h.svc.DeleteDevice(c.Request.Context(), id, reconcile)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateBatchLine godoc
// @Summary      Correct a pooled batch line
// @Tags         batch-lines
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                      true "Batch line UUID"
// @Param        body body     dto.UpdateBatchLineRequest  true "Fields to change"
// @Success      200  {object} dto.BatchLineResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/batch-lines/{id} [patch]
func (h *UnitsHandler) UpdateBatchLine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateBatchLineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateBatchLine(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteBatchLine godoc
// @Summary      Delete a pooled batch line
// @Description  Removes the line and takes its quantity off the item's stock, never below zero.
// @Tags         batch-lines
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "Batch line UUID"
// @Success      200  {object} dto.DeleteUnitResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/batch-lines/{id} [delete]
func (h *UnitsHandler) DeleteBatchLine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.DeleteBatchLine(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
