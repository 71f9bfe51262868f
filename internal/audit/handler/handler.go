// Package handler exposes the activity log to administrators.
package handler

import (
	"strconv"
	"time"

	"github.com/vagadeeshwar/household-services-sub000/internal/audit/repository"
	"github.com/vagadeeshwar/household-services-sub000/platform/apperr"
	"github.com/vagadeeshwar/household-services-sub000/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler serves activity log queries.
type Handler struct {
	repo *repository.Repository
}

// New creates a new activity log handler.
func New(repo *repository.Repository) *Handler {
	return &Handler{repo: repo}
}

// List returns activity entries, newest first. Supports actorId, action,
// from, to (RFC 3339), limit and offset query parameters.
func (h *Handler) List(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	entries, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	if entries == nil {
		entries = []repository.Entry{}
	}

	httpkit.OK(c, gin.H{"entries": entries})
}

func parseFilter(c *gin.Context) (repository.Filter, error) {
	var filter repository.Filter

	if raw := c.Query("actorId"); raw != "" {
		actorID, err := uuid.Parse(raw)
		if err != nil {
			return filter, apperr.BadRequest("invalid actorId format")
		}
		filter.ActorID = &actorID
	}
	if raw := c.Query("action"); raw != "" {
		action := repository.Action(raw)
		if !action.Valid() {
			return filter, apperr.BadRequest("unknown action")
		}
		filter.Action = action
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, apperr.BadRequest("invalid from timestamp")
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, apperr.BadRequest("invalid to timestamp")
		}
		filter.To = &to
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return filter, apperr.BadRequest("invalid limit")
		}
		filter.Limit = limit
	}
	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filter, apperr.BadRequest("invalid offset")
		}
		filter.Offset = offset
	}

	return filter, nil
}
