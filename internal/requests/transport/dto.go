// Package transport defines the requests API payload shapes.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequestPayload is the customer payload for opening a request.
// DurationMinutes of zero takes the service's default duration.
type CreateRequestPayload struct {
	ServiceID       uuid.UUID `json:"serviceId" validate:"required"`
	PreferredTime   time.Time `json:"preferredTime" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"gte=0,lte=540"`
	Description     string    `json:"description" validate:"max=500"`
}

// UpdateRequestPayload edits an unassigned request.
type UpdateRequestPayload struct {
	PreferredTime   time.Time `json:"preferredTime" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"gte=0,lte=540"`
	Description     string    `json:"description" validate:"max=500"`
}

// CompleteRequestPayload finishes the work with the professional's
// mandatory closing remarks.
type CompleteRequestPayload struct {
	Remarks string `json:"remarks" validate:"required,max=500"`
}

// CloseRequestPayload closes a completed request with its mandatory review.
type CloseRequestPayload struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=500"`
}

// ReportReviewPayload flags a review for moderation.
type ReportReviewPayload struct {
	Reason string `json:"reason" validate:"required,max=300"`
}
