package handler

import (
	"errors"
	"net/http"

	"airportpos/internal/apierror"
	"airportpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductsHandler serves the till's catalog lookup. Read-only: stock only
// changes through checkout.
type ProductsHandler struct {
	svc service.ProductService
}

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// List godoc
// @Summary      Products of a shop with live stock
// @Description  Cashiers get their own shop; vendors and admins pass ?shopId=.
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        shopId query string false "Shop UUID"
// @Success      200  {array}  dto.ProductResponse
// @Failure      403  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var shopID *uuid.UUID
	if raw := c.Query("shopId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid shop id"))
			return
		}
		shopID = &id
	}
	products, err := h.svc.List(c.Request.Context(), principal(c), shopID)
	if err != nil {
		writeProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Get godoc
// @Summary      Price and stock of one product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Product UUID"
// @Success      200  {object} dto.ProductResponse
// @Failure      403  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /products/{id} [get]
func (h *ProductsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid product id"))
		return
	}
	product, err := h.svc.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		writeProductError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func writeProductError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShopAccessDenied):
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	case errors.Is(err, service.ErrProductNotFound), errors.Is(err, service.ErrShopNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to fetch products"))
	}
}
