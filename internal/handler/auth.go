package handler

import (
	"context"
	"errors"
	"net/http"

	"airportpos/internal/apierror"
	"airportpos/internal/dto"
	"airportpos/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ svc service.AuthService }

func NewAuthHandler(svc service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

// VendorLogin godoc
// @Summary Vendor login (approved vendors only)
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Failure 403 {object} apierror.APIError
// @Router /auth/login [post]
func (h *AuthHandler) VendorLogin(c *gin.Context) { h.login(c, h.svc.LoginVendor) }

// CashierLogin godoc
// @Summary Cashier login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /auth/cashier/login [post]
func (h *AuthHandler) CashierLogin(c *gin.Context) { h.login(c, h.svc.LoginCashier) }

// AdminLogin godoc
// @Summary Admin login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} apierror.APIError
// @Router /admin/login [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) { h.login(c, h.svc.LoginAdmin) }

type loginFunc func(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)

func (h *AuthHandler) login(c *gin.Context, fn loginFunc) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := fn(c.Request.Context(), req)
	switch {
	case errors.Is(err, service.ErrVendorNotApproved):
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	case err != nil:
		c.JSON(http.StatusUnauthorized, apierror.New(service.ErrInvalidCredentials.Error()))
	default:
		c.JSON(http.StatusOK, resp)
	}
}
