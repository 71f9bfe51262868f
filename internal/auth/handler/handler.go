// Package handler handles HTTP requests for authentication and accounts.
package handler

import (
	"net/http"

	"github.com/vagadeeshwar/household-services-sub000/internal/auth/service"
	"github.com/vagadeeshwar/household-services-sub000/internal/auth/transport"
	"github.com/vagadeeshwar/household-services-sub000/platform/httpkit"
	"github.com/vagadeeshwar/household-services-sub000/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid user ID"
)

// Handler handles HTTP requests for auth.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new auth handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterCustomer signs up a customer account.
// POST /api/v1/auth/register/customer
func (h *Handler) RegisterCustomer(c *gin.Context) {
	var req transport.RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	user, err := h.svc.RegisterCustomer(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, user)
}

// RegisterProfessional signs up a professional account.
// POST /api/v1/auth/register/professional
func (h *Handler) RegisterProfessional(c *gin.Context) {
	var req transport.RegisterProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	user, err := h.svc.RegisterProfessional(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, user)
}

// Login exchanges credentials for an access token.
// POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

// ListCustomers returns all customer accounts.
// GET /api/v1/admin/customers
func (h *Handler) ListCustomers(c *gin.Context) {
	customers, err := h.svc.ListCustomers(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"customers": customers})
}

// BlockCustomer deactivates a customer account.
// PATCH /api/v1/admin/customers/:id/block
func (h *Handler) BlockCustomer(c *gin.Context) {
	h.setCustomerActive(c, false)
}

// UnblockCustomer reactivates a customer account.
// PATCH /api/v1/admin/customers/:id/unblock
func (h *Handler) UnblockCustomer(c *gin.Context) {
	h.setCustomerActive(c, true)
}

func (h *Handler) setCustomerActive(c *gin.Context, active bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if active {
		err = h.svc.UnblockCustomer(c.Request.Context(), identity.UserID(), id)
	} else {
		err = h.svc.BlockCustomer(c.Request.Context(), identity.UserID(), id)
	}
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"active": active})
}
