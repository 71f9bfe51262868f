// Package handler handles HTTP requests for professional profiles.
package handler

import (
	"context"
	"net/http"

	"github.com/vagadeeshwar/household-services-sub000/internal/professionals/service"
	"github.com/vagadeeshwar/household-services-sub000/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidID = "invalid professional ID"

// Handler handles HTTP requests for professionals.
type Handler struct {
	svc *service.Service
}

// New creates a new professionals handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// ListByService lists verified professionals offering a service.
// GET /api/v1/professionals?serviceId=...
func (h *Handler) ListByService(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Query("serviceId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "serviceId query parameter is required", nil)
		return
	}

	pros, err := h.svc.ListByService(c.Request.Context(), serviceID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"professionals": pros})
}

// GetByID retrieves one professional with the rating pair.
// GET /api/v1/professionals/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	pro, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, pro)
}

// ListAll returns every professional including unverified ones.
// GET /api/v1/admin/professionals
func (h *Handler) ListAll(c *gin.Context) {
	pros, err := h.svc.ListAll(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"professionals": pros})
}

// Verify approves a professional.
// PATCH /api/v1/admin/professionals/:id/verify
func (h *Handler) Verify(c *gin.Context) {
	h.adminAction(c, h.svc.Verify, "verified")
}

// Block deactivates a professional.
// PATCH /api/v1/admin/professionals/:id/block
func (h *Handler) Block(c *gin.Context) {
	h.adminAction(c, h.svc.Block, "blocked")
}

// Unblock reactivates a professional.
// PATCH /api/v1/admin/professionals/:id/unblock
func (h *Handler) Unblock(c *gin.Context) {
	h.adminAction(c, h.svc.Unblock, "unblocked")
}

func (h *Handler) adminAction(c *gin.Context, action func(ctx context.Context, adminID, id uuid.UUID) error, status string) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if httpkit.HandleError(c, action(c.Request.Context(), identity.UserID(), id)) {
		return
	}
	httpkit.OK(c, gin.H{"status": status})
}
