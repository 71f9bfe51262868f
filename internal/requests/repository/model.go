// Package repository persists service requests, their reviews and the
// lifecycle transitions between statuses.
package repository

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a service request.
type Status string

const (
	StatusCreated    Status = "created"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusClosed     Status = "closed"
	StatusCancelled  Status = "cancelled"
)

// transitions is the authoritative edge set of the lifecycle graph.
// Cancellation is terminal and only reachable before work starts.
var transitions = map[Status][]Status{
	StatusCreated:    {StatusAssigned, StatusCancelled},
	StatusAssigned:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {StatusClosed},
}

// CanTransition reports whether from → to is a legal lifecycle edge.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions leave the status.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Active reports whether the request holds time on a professional's
// calendar.
func (s Status) Active() bool {
	return s == StatusAssigned || s == StatusInProgress
}

// Request is one service request row. DurationMinutes is denormalized from
// the service at creation so later catalog edits don't move booked windows.
type Request struct {
	ID              uuid.UUID  `json:"id"`
	ServiceID       uuid.UUID  `json:"serviceId"`
	CustomerID      uuid.UUID  `json:"customerId"`
	ProfessionalID  *uuid.UUID `json:"professionalId,omitempty"`
	Status          Status     `json:"status"`
	RequestedAt     time.Time  `json:"requestedAt"`
	PreferredTime   time.Time  `json:"preferredTime"`
	DurationMinutes int        `json:"durationMinutes"`
	AssignedAt      *time.Time `json:"assignedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	Description     string     `json:"description"`
	Remarks         string     `json:"remarks"`
}

// Duration returns the booked window length.
func (r Request) Duration() time.Duration {
	return time.Duration(r.DurationMinutes) * time.Minute
}

// WindowEnd returns the exclusive end of the booked window.
func (r Request) WindowEnd() time.Time {
	return r.PreferredTime.Add(r.Duration())
}

// Review is the customer's verdict on a closed request. At most one review
// per request; removal by an admin deletes the row and rolls the rating
// pair back.
type Review struct {
	ID           uuid.UUID `json:"id"`
	RequestID    uuid.UUID `json:"requestId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	IsReported   bool      `json:"isReported"`
	ReportReason string    `json:"reportReason,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ListFilter narrows customer request listings.
type ListFilter struct {
	Status Status
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// Professional views over requests.
const (
	ViewAvailable = "available"
	ViewOngoing   = "ongoing"
	ViewCompleted = "completed"
	ViewAll       = "all"
)
