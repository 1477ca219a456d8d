package handler

import (
	"errors"
	"net/http"

	"airportpos/internal/apierror"
	"airportpos/internal/dto"
	"airportpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BillingHandler struct {
	checkout service.CheckoutService
	bills    service.BillService
}

func NewBillingHandler(checkout service.CheckoutService, bills service.BillService) *BillingHandler {
	return &BillingHandler{checkout: checkout, bills: bills}
}

// Checkout godoc
// @Summary      Create a bill
// @Description  Decrements stock for every line atomically, stores the bill, then sends low-stock alerts, publishes a live event and renders the invoice PDF.
// @Tags         billing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CheckoutRequest true "Cart"
// @Success      200  {object} dto.CheckoutResponse
// @Failure      400  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Failure      500  {object} apierror.APIError
// @Router       /billing [post]
func (h *BillingHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	p := principal(c)

	in := service.CheckoutInput{
		Items:         make([]service.CartLine, len(req.Items)),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		PaymentMethod: req.PaymentMethod,
		CashierID:     p.ID,
	}
	if p.ShopID != nil {
		in.ShopID = *p.ShopID
	}
	for i, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid product id"))
			return
		}
		in.Items[i] = service.CartLine{ProductID: pid, Quantity: item.Quantity}
	}

	res, err := h.checkout.Checkout(c.Request.Context(), in)
	if err != nil {
		var ise *service.InsufficientStockError
		switch {
		case errors.As(err, &ise):
			c.JSON(http.StatusBadRequest, apierror.New(ise.Error()))
		case errors.Is(err, service.ErrEmptyCart),
			errors.Is(err, service.ErrInvalidQuantity),
			errors.Is(err, service.ErrInvalidPaymentMethod),
			errors.Is(err, service.ErrForeignProduct):
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, apierror.New("Billing failed. No stock was deducted."))
		}
		return
	}

	msg := "Billing successful. Invoice generated."
	if !res.InvoiceReady {
		msg = "Billing successful. Invoice is being generated."
	}
	c.JSON(http.StatusOK, dto.CheckoutResponse{
		Msg:          msg,
		BillID:       res.BillID.String(),
		PDFPath:      res.PDFPath,
		InvoiceReady: res.InvoiceReady,
	})
}

// CashierBills godoc
// @Summary      Bills created by the calling cashier
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  dto.BillResponse
// @Router       /billing/cashier [get]
func (h *BillingHandler) CashierBills(c *gin.Context) {
	bills, err := h.bills.ListForCashier(c.Request.Context(), principal(c).ID)
	if err != nil {
		writeBillError(c, err)
		return
	}
	c.JSON(http.StatusOK, bills)
}

// ScopeBills godoc
// @Summary      Bills of the caller's shops
// @Description  Vendors see all their shops, cashiers their own shop. Filters are optional.
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Param        startDate    query string false "YYYY-MM-DD or RFC 3339"
// @Param        endDate      query string false "YYYY-MM-DD (whole day) or RFC 3339"
// @Param        customerName query string false "case-insensitive substring"
// @Param        minAmount    query number false "minimum total"
// @Param        maxAmount    query number false "maximum total"
// @Success      200  {array}  dto.BillResponse
// @Failure      400  {object} apierror.APIError
// @Router       /billing/vendor [get]
func (h *BillingHandler) ScopeBills(c *gin.Context) {
	var f dto.BillFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid filters"))
		return
	}
	bills, err := h.bills.ListForScope(c.Request.Context(), principal(c), f)
	if err != nil {
		writeBillError(c, err)
		return
	}
	c.JSON(http.StatusOK, bills)
}

// ShopBills godoc
// @Summary      Bills of one shop owned by the calling vendor
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Param        shopId path string true "Shop UUID"
// @Success      200  {array}  dto.BillResponse
// @Failure      403  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /billing/shop/{shopId} [get]
func (h *BillingHandler) ShopBills(c *gin.Context) {
	shopID, err := uuid.Parse(c.Param("shopId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid shop id"))
		return
	}
	bills, err := h.bills.ListForShop(c.Request.Context(), principal(c).ID, shopID)
	if err != nil {
		writeBillError(c, err)
		return
	}
	c.JSON(http.StatusOK, bills)
}

// RegenerateInvoice godoc
// @Summary      Queue an invoice to be rendered again
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Bill UUID"
// @Success      202  {object} dto.InvoiceJobResponse
// @Failure      403  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /billing/{id}/invoice [post]
func (h *BillingHandler) RegenerateInvoice(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid bill id"))
		return
	}
	resp, err := h.bills.RequestInvoice(c.Request.Context(), principal(c), billID)
	if err != nil {
		writeBillError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

func writeBillError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidFilter):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, service.ErrShopAccessDenied):
		c.JSON(http.StatusForbidden, apierror.New(service.ErrShopAccessDenied.Error()))
	case errors.Is(err, service.ErrShopNotFound), errors.Is(err, service.ErrBillNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to fetch bills"))
	}
}
