// Package repository owns the append-only activity log. Every state-changing
// operation in the system records who did what to which entity; entries are
// never updated or deleted.
package repository

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies the kind of activity recorded. The set is closed; new
// actions are added here, never free-form strings.
type Action string

const (
	ActionUserRegister        Action = "user_register"
	ActionUserLogin           Action = "user_login"
	ActionRequestCreate       Action = "request_create"
	ActionRequestUpdate       Action = "request_update"
	ActionRequestAssign       Action = "request_assign"
	ActionRequestStart        Action = "request_start"
	ActionRequestComplete     Action = "request_complete"
	ActionRequestClose        Action = "request_close"
	ActionRequestCancel       Action = "request_cancel"
	ActionReviewSubmit        Action = "review_submit"
	ActionReviewReport        Action = "review_report"
	ActionReviewDismiss       Action = "review_dismiss"
	ActionReviewRemove        Action = "review_remove"
	ActionProfessionalVerify  Action = "professional_verify"
	ActionProfessionalBlock   Action = "professional_block"
	ActionProfessionalUnblock Action = "professional_unblock"
	ActionCustomerBlock       Action = "customer_block"
	ActionCustomerUnblock     Action = "customer_unblock"
	ActionServiceCreate       Action = "service_create"
	ActionServiceUpdate       Action = "service_update"
	ActionServiceDelete       Action = "service_delete"
	ActionServiceRestore      Action = "service_restore"
	ActionExportGenerate      Action = "export_generate"
)

var knownActions = map[Action]struct{}{
	ActionUserRegister: {}, ActionUserLogin: {},
	ActionRequestCreate: {}, ActionRequestUpdate: {}, ActionRequestAssign: {},
	ActionRequestStart: {}, ActionRequestComplete: {}, ActionRequestClose: {},
	ActionRequestCancel: {},
	ActionReviewSubmit: {}, ActionReviewReport: {}, ActionReviewDismiss: {},
	ActionReviewRemove: {},
	ActionProfessionalVerify: {}, ActionProfessionalBlock: {}, ActionProfessionalUnblock: {},
	ActionCustomerBlock: {}, ActionCustomerUnblock: {},
	ActionServiceCreate: {}, ActionServiceUpdate: {}, ActionServiceDelete: {},
	ActionServiceRestore: {},
	ActionExportGenerate: {},
}

// Valid reports whether the action belongs to the closed set.
func (a Action) Valid() bool {
	_, ok := knownActions[a]
	return ok
}

// Entry is one immutable activity log record. ActorID is nil for actions
// taken by the system itself (scheduler, exports).
type Entry struct {
	ID          uuid.UUID  `json:"id"`
	ActorID     *uuid.UUID `json:"actorId,omitempty"`
	Action      Action     `json:"action"`
	TargetID    uuid.UUID  `json:"targetId"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Filter narrows activity log listings. Zero values mean "no constraint".
type Filter struct {
	ActorID *uuid.UUID
	Action  Action
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}
