// Package handler handles HTTP requests for the service request lifecycle.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/vagadeeshwar/household-services-sub000/internal/requests/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/requests/service"
	"github.com/vagadeeshwar/household-services-sub000/internal/requests/transport"
	"github.com/vagadeeshwar/household-services-sub000/platform/httpkit"
	"github.com/vagadeeshwar/household-services-sub000/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid request ID"
)

// Handler handles HTTP requests for the lifecycle and review moderation.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new requests handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}

// Create opens a new service request.
// POST /api/v1/requests
func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var payload transport.CreateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	req, err := h.svc.Create(c.Request.Context(), identity.UserID(), service.CreateInput{
		ServiceID:       payload.ServiceID,
		PreferredTime:   payload.PreferredTime,
		DurationMinutes: payload.DurationMinutes,
		Description:     payload.Description,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, req)
}

// Get retrieves a request visible to the caller.
// GET /api/v1/requests/:id
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := h.svc.Get(c.Request.Context(), identity, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, req)
}

// Update edits an unassigned request.
// PUT /api/v1/requests/:id
func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var payload transport.UpdateRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	req, err := h.svc.Update(c.Request.Context(), identity.UserID(), id, service.UpdateInput{
		PreferredTime:   payload.PreferredTime,
		DurationMinutes: payload.DurationMinutes,
		Description:     payload.Description,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, req)
}

// ListMine lists the customer's own requests with optional filters.
// GET /api/v1/requests
func (h *Handler) ListMine(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	filter, ok := parseListFilter(c)
	if !ok {
		return
	}
	requests, err := h.svc.ListForCustomer(c.Request.Context(), identity.UserID(), filter)
	if httpkit.HandleError(c, err) {
		return
	}
	if requests == nil {
		requests = []repository.Request{}
	}

	resp := gin.H{"requests": requests}
	if c.Query("summary") == "true" {
		summary, err := h.svc.SummaryForCustomer(c.Request.Context(), identity.UserID())
		if httpkit.HandleError(c, err) {
			return
		}
		resp["summary"] = summary
	}
	httpkit.OK(c, resp)
}

// Cancel withdraws an unstarted request. Owning customer or admin.
// POST /api/v1/requests/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := h.svc.Cancel(c.Request.Context(), identity, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, req)
}

// Close closes a completed request with a review.
// POST /api/v1/requests/:id/close
func (h *Handler) Close(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var payload transport.CloseRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	req, err := h.svc.Close(c.Request.Context(), identity.UserID(), id, service.CloseInput{
		Rating:  payload.Rating,
		Comment: payload.Comment,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, req)
}

// Accept assigns the calling professional to a request.
// POST /api/v1/requests/:id/accept
func (h *Handler) Accept(c *gin.Context) {
	h.lifecycleAction(c, h.svc.Accept)
}

// Start marks work as started by the assigned professional.
// POST /api/v1/requests/:id/start
func (h *Handler) Start(c *gin.Context) {
	h.lifecycleAction(c, h.svc.Start)
}

// Complete marks work as done with the professional's closing remarks.
// POST /api/v1/requests/:id/complete
func (h *Handler) Complete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var payload transport.CompleteRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	req, err := h.svc.Complete(c.Request.Context(), identity.UserID(), id, payload.Remarks)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, req)
}

// lifecycleAction runs a lifecycle operation keyed by (actor, request id)
// and returns the updated request.
func (h *Handler) lifecycleAction(c *gin.Context, action func(ctx context.Context, actorID, requestID uuid.UUID) (repository.Request, error)) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := action(c.Request.Context(), identity.UserID(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, req)
}

// ListAssigned lists requests for the professional dashboard.
// GET /api/v1/professional/requests?view=available|ongoing|completed|all
func (h *Handler) ListAssigned(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	requests, err := h.svc.ListForProfessional(c.Request.Context(), identity.UserID(), c.Query("view"))
	if httpkit.HandleError(c, err) {
		return
	}
	if requests == nil {
		requests = []repository.Request{}
	}
	httpkit.OK(c, gin.H{"requests": requests})
}

// ListForCustomerAdmin lists a customer's requests for the admin dashboard.
// GET /api/v1/admin/customers/:id/requests
func (h *Handler) ListForCustomerAdmin(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	filter, ok := parseListFilter(c)
	if !ok {
		return
	}

	requests, err := h.svc.ListForCustomer(c.Request.Context(), id, filter)
	if httpkit.HandleError(c, err) {
		return
	}
	if requests == nil {
		requests = []repository.Request{}
	}
	httpkit.OK(c, gin.H{"requests": requests})
}

// ListForProfessionalAdmin lists a professional's requests for the admin
// dashboard.
// GET /api/v1/admin/professionals/:id/requests?view=ongoing|completed|all
func (h *Handler) ListForProfessionalAdmin(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	requests, err := h.svc.ListForProfessional(c.Request.Context(), id, c.Query("view"))
	if httpkit.HandleError(c, err) {
		return
	}
	if requests == nil {
		requests = []repository.Request{}
	}
	httpkit.OK(c, gin.H{"requests": requests})
}

// Schedule renders a professional's calendar over a date range.
// GET /api/v1/professionals/:id/schedule?from=2026-09-01&to=2026-09-07&slotMinutes=60
func (h *Handler) Schedule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid from date", nil)
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid to date", nil)
		return
	}

	var slot time.Duration
	if raw := c.Query("slotMinutes"); raw != "" {
		minutes, err := time.ParseDuration(raw + "m")
		if err != nil || minutes <= 0 {
			httpkit.Error(c, http.StatusBadRequest, "invalid slotMinutes", nil)
			return
		}
		slot = minutes
	}

	days, err := h.svc.Schedule(c.Request.Context(), id, from, to, slot)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"days": days})
}

// GetReview retrieves a review for moderation.
// GET /api/v1/admin/reviews/:id
func (h *Handler) GetReview(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	review, err := h.svc.GetReview(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, review)
}

// ReportReview flags a review.
// POST /api/v1/admin/reviews/:id/report
func (h *Handler) ReportReview(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var payload transport.ReportReviewPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if httpkit.HandleError(c, h.svc.ReportReview(c.Request.Context(), identity.UserID(), id, payload.Reason)) {
		return
	}
	httpkit.OK(c, gin.H{"status": "reported"})
}

// DismissReport clears a review's reported flag.
// POST /api/v1/admin/reviews/:id/dismiss
func (h *Handler) DismissReport(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.DismissReport(c.Request.Context(), identity.UserID(), id)) {
		return
	}
	httpkit.OK(c, gin.H{"status": "dismissed"})
}

// RemoveReview deletes a review and rolls back its rating.
// DELETE /api/v1/admin/reviews/:id
func (h *Handler) RemoveReview(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.RemoveReview(c.Request.Context(), identity.UserID(), id)) {
		return
	}
	httpkit.OK(c, gin.H{"status": "removed"})
}

func parseListFilter(c *gin.Context) (repository.ListFilter, bool) {
	var filter repository.ListFilter
	if raw := c.Query("status"); raw != "" {
		filter.Status = repository.Status(raw)
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid from timestamp", nil)
			return filter, false
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid to timestamp", nil)
			return filter, false
		}
		filter.To = &to
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httpkit.Error(c, http.StatusBadRequest, "invalid limit", nil)
			return filter, false
		}
		filter.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			httpkit.Error(c, http.StatusBadRequest, "invalid offset", nil)
			return filter, false
		}
		filter.Offset = offset
	}
	return filter, true
}
