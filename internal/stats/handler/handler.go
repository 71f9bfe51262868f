// Package handler serves the dashboard statistics endpoints.
package handler

import (
	"net/http"
	"strconv"

	"github.com/vagadeeshwar/household-services-sub000/internal/stats/service"
	"github.com/vagadeeshwar/household-services-sub000/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler serves the dashboard stats routes.
type Handler struct {
	svc *service.Service
}

// New creates a new stats handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Overview returns the role-specific dashboard summary.
// GET /api/v1/dashboard/stats
func (h *Handler) Overview(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	overview, err := h.svc.Overview(c.Request.Context(), identity)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, overview)
}

// Detailed returns one paginated detail listing for the caller's role.
// GET /api/v1/dashboard/detailed-stats?type=pending_requests&limit=20&offset=0
func (h *Handler) Detailed(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	kind := service.Kind(c.Query("type"))
	if kind == "" {
		httpkit.Error(c, http.StatusBadRequest, "stat type is required", gin.H{
			"available": service.KindsFor(identity.Role()),
		})
		return
	}

	limit, offset := 0, 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpkit.Error(c, http.StatusBadRequest, "invalid limit", nil)
			return
		}
		limit = n
	}
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpkit.Error(c, http.StatusBadRequest, "invalid offset", nil)
			return
		}
		offset = n
	}

	detailed, err := h.svc.Detailed(c.Request.Context(), identity, kind, limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, detailed)
}
