package handler

import (
	"net/http"

	"github.com/AriBaderkhan/seraj-store/internal/dto"
	"github.com/AriBaderkhan/seraj-store/internal/service"

	"github.com/gin-gonic/gin"
)

type CartHandler struct{ svc service.CartService }

func NewCartHandler(svc service.CartService) *CartHandler { return &CartHandler{svc: svc} }

// AddLine godoc
// @Summary      Stage a cart line
// @Description  Serialized items are added by IMEI with qty 1; pooled items by quantity. Stock is not checked here.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AddCartLineRequest true "Line"
// @Success      201  {object} dto.CartLineResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/cart [post]
func (h *CartHandler) AddLine(c *gin.Context) {
	var req dto.AddCartLineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddLine(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List the cart grouped by item
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.CartResponse
// @Router       /v1/cart [get]
func (h *CartHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveItem godoc
// @Summary      Remove every cart line of an item
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        item_id path string true "Item UUID"
// @Success      200  {object} dto.CartRemoveResponse
// @Router       /v1/cart/items/{item_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	id, ok := parseID(c, "item_id")
	if !ok {
		return
	}
	resp, err := h.svc.RemoveItem(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Clear godoc
// @Summary      Empty the cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.CartRemoveResponse
// @Router       /v1/cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	resp, err := h.svc.Clear(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
