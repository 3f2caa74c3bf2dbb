package handler

import (
	"net/http"

	"github.com/AriBaderkhan/seraj-store/internal/apierror"
	"github.com/AriBaderkhan/seraj-store/internal/dto"
	"github.com/AriBaderkhan/seraj-store/internal/service"

	"github.com/gin-gonic/gin"
)

type ItemsHandler struct {
	svc   service.ItemService
	units service.UnitService
}

func NewItemsHandler(svc service.ItemService, units service.UnitService) *ItemsHandler {
	return &ItemsHandler{svc: svc, units: units}
}

// Create godoc
// @Summary      Create an item with its first purchase
// @Description  Creates the item, a purchase batch and either one device (serialized) or one batch line (pooled) in a single transaction.
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateItemRequest true "Item and intake"
// @Success      201  {object} dto.PurchaseResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/items [post]
func (h *ItemsHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateItem(c.Request.Context(), actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary      Get an item
// @Description  Returns the item with its devices (serialized) or batch lines (pooled).
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "Item UUID"
// @Success      200  {object} dto.ItemDetailResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/items/{id} [get]
func (h *ItemsHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetItem(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Update an item
// @Description  Partial update. Price and quantity fields correct the most recent device or batch line.
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                 true "Item UUID"
// @Param        body body     dto.UpdateItemRequest  true "Fields to change"
// @Success      200  {object} dto.ItemResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/items/{id} [patch]
func (h *ItemsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateItem(c.Request.Context(), actor(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete an item
// @Description  Removes the item, its units or batch lines and any cart lines referencing it.
// @Tags         items
// @Security     BearerAuth
// @Param        id   path     string true "Item UUID"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/items/{id} [delete]
func (h *ItemsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteItem(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddPurchase godoc
// @Summary      Receive stock for an item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string              true "Item UUID"
// @Param        body body     dto.PurchaseRequest true "Device or batch intake"
// @Success      201  {object} dto.PurchaseResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/items/{id}/purchases [post]
func (h *ItemsHandler) AddPurchase(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PurchaseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddPurchase(c.Request.Context(), actor(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Reconcile godoc
// @Summary      Rebuild an item's stock
// @Description  Serialized: count of in_stock devices. Pooled: received minus sold, floored at zero.
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "Item UUID"
// @Success      200  {object} dto.ReconcileResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/items/{id}/reconcile [post]
func (h *ItemsHandler) Reconcile(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.units.ReconcileItem(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListByCategory godoc
// @Summary      List items of a category
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id       path  string true  "Category UUID"
// @Param        search   query string false "Name contains"
// @Param        brand_id query string false "Brand UUID"
// @Param        color    query string false "Color"
// @Param        storage  query string false "Storage"
// @Param        sim_type query string false "SIM type"
// @Param        page     query int    false "Page (default 1)"
// @Param        limit    query int    false "Page size (default 50)"
// @Success      200  {object} dto.ItemListResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/categories/{id}/items [get]
func (h *ItemsHandler) ListByCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var filter dto.ItemFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		writeError(c, apierror.Validation("", err.Error(), nil))
		return
	}
	resp, err := h.svc.ListByCategory(c.Request.Context(), id, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
