package handler

import (
	"net/http"

	"github.com/AriBaderkhan/seraj-store/internal/apierror"
	"github.com/AriBaderkhan/seraj-store/internal/dto"
	"github.com/AriBaderkhan/seraj-store/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct{ svc service.SaleService }

func NewSalesHandler(svc service.SaleService) *SalesHandler { return &SalesHandler{svc: svc} }

// Create godoc
// @Summary      Finalize the cart into a sale
// @Description  ACID checkout: serialized devices flip to sold, pooled stock is decremented, sale lines are written and the cart is cleared. The receipt is handed to the renderer asynchronously.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateSaleRequest true "Sale header"
// @Success      201  {object} dto.CreateSaleResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/sales [post]
func (h *SalesHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateSale(c.Request.Context(), actor(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "Customer name contains"
// @Param        page   query int    false "Page (default 1)"
// @Param        limit  query int    false "Page size (default 50)"
// @Success      200    {object} dto.SaleListResponse
// @Router       /v1/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		writeError(c, apierror.Validation("", err.Error(), nil))
		return
	}
	resp, err := h.svc.ListSales(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Lookup godoc
// @Summary      Checkout search
// @Description  A long all-digit query is matched against in-stock IMEIs; anything else searches item names and serial numbers.
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        q   query string true "IMEI, name or serial"
// @Success      200 {array}  dto.LookupResult
// @Failure      400 {object} apierror.APIError
// @Router       /v1/sales/lookup [get]
func (h *SalesHandler) Lookup(c *gin.Context) {
	resp, err := h.svc.Lookup(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a sale with its lines
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string true "Sale UUID"
// @Success      200  {object} dto.SaleResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetSale(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Correct a sale header
// @Description  Changes customer, totals or payment method. Lines and inventory are never touched.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     string                true "Sale UUID"
// @Param        body body     dto.UpdateSaleRequest true "Fields to change"
// @Success      200  {object} dto.SaleResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/sales/{id} [patch]
func (h *SalesHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateSale(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete a sale
// @Description  Removes the sale and its lines. Stock is not restored.
// @Tags         sales
// @Security     BearerAuth
// @Param        id   path     string true "Sale UUID"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/sales/{id} [delete]
func (h *SalesHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteSale(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
