// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"github.com/vagadeeshwar/household-services-sub000/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Auth Domain Events
// =============================================================================

// UserRegistered is published when a customer or professional signs up.
type UserRegistered struct {
	BaseEvent
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

func (e UserRegistered) EventName() string { return "auth.user.registered" }

// =============================================================================
// Request Domain Events
// =============================================================================

// RequestCreated is published when a customer opens a new service request.
type RequestCreated struct {
	BaseEvent
	RequestID  uuid.UUID `json:"requestId"`
	CustomerID uuid.UUID `json:"customerId"`
	ServiceID  uuid.UUID `json:"serviceId"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
}

func (e RequestCreated) EventName() string { return "requests.created" }

// RequestAssigned is published when a professional accepts a request.
type RequestAssigned struct {
	BaseEvent
	RequestID      uuid.UUID `json:"requestId"`
	CustomerID     uuid.UUID `json:"customerId"`
	ProfessionalID uuid.UUID `json:"professionalId"`
	StartTime      time.Time `json:"startTime"`
	EndTime        time.Time `json:"endTime"`
}

func (e RequestAssigned) EventName() string { return "requests.assigned" }

// RequestStarted is published when the assigned professional starts the work.
type RequestStarted struct {
	BaseEvent
	RequestID      uuid.UUID `json:"requestId"`
	CustomerID     uuid.UUID `json:"customerId"`
	ProfessionalID uuid.UUID `json:"professionalId"`
}

func (e RequestStarted) EventName() string { return "requests.started" }

// RequestCompleted is published when the professional marks the work done.
type RequestCompleted struct {
	BaseEvent
	RequestID      uuid.UUID `json:"requestId"`
	CustomerID     uuid.UUID `json:"customerId"`
	ProfessionalID uuid.UUID `json:"professionalId"`
}

func (e RequestCompleted) EventName() string { return "requests.completed" }

// RequestCancelled is published when a customer cancels a request.
type RequestCancelled struct {
	BaseEvent
	RequestID      uuid.UUID  `json:"requestId"`
	CustomerID     uuid.UUID  `json:"customerId"`
	ProfessionalID *uuid.UUID `json:"professionalId,omitempty"`
	WasAssigned    bool       `json:"wasAssigned"`
}

func (e RequestCancelled) EventName() string { return "requests.cancelled" }

// RequestClosed is published when the customer closes a completed request.
type RequestClosed struct {
	BaseEvent
	RequestID      uuid.UUID `json:"requestId"`
	CustomerID     uuid.UUID `json:"customerId"`
	ProfessionalID uuid.UUID `json:"professionalId"`
}

func (e RequestClosed) EventName() string { return "requests.closed" }

// =============================================================================
// Review Domain Events
// =============================================================================

// ReviewSubmitted is published when a customer submits a review while closing
// a request. Handlers update cached professional schedules and notify the
// professional.
type ReviewSubmitted struct {
	BaseEvent
	ReviewID       uuid.UUID `json:"reviewId"`
	RequestID      uuid.UUID `json:"requestId"`
	ProfessionalID uuid.UUID `json:"professionalId"`
	Rating         int       `json:"rating"`
}

func (e ReviewSubmitted) EventName() string { return "reviews.submitted" }

// ReviewRemoved is published when an admin removes a reported review.
type ReviewRemoved struct {
	BaseEvent
	ReviewID       uuid.UUID `json:"reviewId"`
	ProfessionalID uuid.UUID `json:"professionalId"`
	Rating         int       `json:"rating"`
}

func (e ReviewRemoved) EventName() string { return "reviews.removed" }

// =============================================================================
// Professional Domain Events
// =============================================================================

// ProfessionalVerified is published when an admin approves a professional.
type ProfessionalVerified struct {
	BaseEvent
	ProfessionalID uuid.UUID `json:"professionalId"`
	Email          string    `json:"email"`
}

func (e ProfessionalVerified) EventName() string { return "professionals.verified" }

// ProfessionalBlocked is published when an admin blocks a professional.
type ProfessionalBlocked struct {
	BaseEvent
	ProfessionalID uuid.UUID `json:"professionalId"`
	Reason         string    `json:"reason,omitempty"`
}

func (e ProfessionalBlocked) EventName() string { return "professionals.blocked" }

// =============================================================================
// Export Domain Events
// =============================================================================

// ExportReady is published when a background CSV export finishes.
type ExportReady struct {
	BaseEvent
	ProfessionalID uuid.UUID `json:"professionalId"`
	FilePath       string    `json:"filePath"`
	RowCount       int       `json:"rowCount"`
}

func (e ExportReady) EventName() string { return "exports.ready" }
