package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	auditrepo "github.com/vagadeeshwar/household-services-sub000/internal/audit/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/availability"
	catalogrepo "github.com/vagadeeshwar/household-services-sub000/internal/catalog/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/events"
	"github.com/vagadeeshwar/household-services-sub000/internal/requests/repository"
	"github.com/vagadeeshwar/household-services-sub000/platform/apperr"
	"github.com/vagadeeshwar/household-services-sub000/platform/config"
	"github.com/vagadeeshwar/household-services-sub000/platform/httpkit"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence surface the service depends on. The pgx
// repository implements it; tests use an in-memory fake.
type Store interface {
	CreateRequest(ctx context.Context, req *repository.Request, entry auditrepo.Entry) error
	GetRequest(ctx context.Context, id uuid.UUID) (repository.Request, error)
	UpdateIfCreated(ctx context.Context, req repository.Request, entry auditrepo.Entry) error
	AssignIfCreated(ctx context.Context, requestID, professionalID uuid.UUID, entry auditrepo.Entry) (repository.Request, error)
	Transition(ctx context.Context, requestID uuid.UUID, from, to repository.Status, entry auditrepo.Entry) (repository.Request, error)
	CompleteWork(ctx context.Context, requestID uuid.UUID, remarks string, entry auditrepo.Entry) (repository.Request, error)
	CancelIfOpen(ctx context.Context, requestID uuid.UUID, entry auditrepo.Entry) (repository.Request, repository.Status, error)
	CloseWithReview(ctx context.Context, requestID uuid.UUID, review repository.Review, closeEntry, reviewEntry auditrepo.Entry) (repository.Request, error)
	GetReview(ctx context.Context, reviewID uuid.UUID) (repository.Review, repository.Request, error)
	SetReviewReported(ctx context.Context, reviewID uuid.UUID, reported bool, reason string, entry auditrepo.Entry) error
	RemoveReview(ctx context.Context, reviewID uuid.UUID, entry auditrepo.Entry) (repository.Review, uuid.UUID, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, filter repository.ListFilter) ([]repository.Request, error)
	ListByProfessional(ctx context.Context, professionalID uuid.UUID, view string) ([]repository.Request, error)
	CountByCustomerStatus(ctx context.Context, customerID uuid.UUID) (map[repository.Status]int, error)
}

// CatalogReader resolves the service being requested.
type CatalogReader interface {
	GetActiveByID(ctx context.Context, id uuid.UUID) (catalogrepo.Service, error)
}

// ScheduleCache caches rendered schedules per professional. Nil disables
// caching.
type ScheduleCache interface {
	Get(ctx context.Context, professionalID uuid.UUID, from, to time.Time, slot time.Duration) ([]availability.DaySchedule, bool)
	Set(ctx context.Context, professionalID uuid.UUID, from, to time.Time, slot time.Duration, days []availability.DaySchedule)
}

// Service implements the request lifecycle: create, edit, accept, start,
// complete, close-with-review, cancel, plus the review moderation flows.
type Service struct {
	store   Store
	catalog CatalogReader
	engine  *availability.Engine
	policy  config.BookingPolicy
	cache   ScheduleCache
	bus     events.Bus
	log     *logger.Logger
}

// New creates the requests service. cache may be nil.
func New(store Store, catalog CatalogReader, engine *availability.Engine, policy config.BookingPolicy, cache ScheduleCache, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		catalog: catalog,
		engine:  engine,
		policy:  policy,
		cache:   cache,
		bus:     bus,
		log:     log,
	}
}

// CreateInput carries the customer's booking parameters. DurationMinutes of
// zero takes the service's default duration.
type CreateInput struct {
	ServiceID       uuid.UUID
	PreferredTime   time.Time
	DurationMinutes int
	Description     string
}

// Create opens a new service request in the created status.
func (s *Service) Create(ctx context.Context, customerID uuid.UUID, input CreateInput) (repository.Request, error) {
	svc, err := s.catalog.GetActiveByID(ctx, input.ServiceID)
	if err != nil {
		return repository.Request{}, err
	}

	duration := input.DurationMinutes
	if duration == 0 {
		duration = svc.DurationMinutes
	}
	start := input.PreferredTime.UTC()
	if err := s.validateWindow(start, duration); err != nil {
		return repository.Request{}, err
	}

	req := repository.Request{
		ID:              uuid.New(),
		ServiceID:       input.ServiceID,
		CustomerID:      customerID,
		Status:          repository.StatusCreated,
		RequestedAt:     time.Now().UTC(),
		PreferredTime:   start,
		DurationMinutes: duration,
		Description:     input.Description,
	}

	entry := auditrepo.Entry{
		ActorID:     &customerID,
		Action:      auditrepo.ActionRequestCreate,
		TargetID:    req.ID,
		Description: fmt.Sprintf("requested %s for %s", svc.Name, start.Format(time.RFC3339)),
	}
	if err := s.store.CreateRequest(ctx, &req, entry); err != nil {
		return repository.Request{}, err
	}

	s.bus.Publish(ctx, events.RequestCreated{
		BaseEvent:  events.NewBaseEvent(),
		RequestID:  req.ID,
		CustomerID: customerID,
		ServiceID:  req.ServiceID,
		StartTime:  req.PreferredTime,
		EndTime:    req.WindowEnd(),
	})
	return req, nil
}

// UpdateInput carries the editable fields of an unassigned request.
type UpdateInput struct {
	PreferredTime   time.Time
	DurationMinutes int
	Description     string
}

// Update edits a request the customer owns while it is still unassigned.
func (s *Service) Update(ctx context.Context, customerID, requestID uuid.UUID, input UpdateInput) (repository.Request, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return repository.Request{}, err
	}
	if req.CustomerID != customerID {
		return repository.Request{}, apperr.Forbidden("request belongs to another customer")
	}

	start := input.PreferredTime.UTC()
	duration := input.DurationMinutes
	if duration == 0 {
		duration = req.DurationMinutes
	}
	if err := s.validateWindow(start, duration); err != nil {
		return repository.Request{}, err
	}

	req.PreferredTime = start
	req.DurationMinutes = duration
	req.Description = input.Description

	entry := auditrepo.Entry{
		ActorID:     &customerID,
		Action:      auditrepo.ActionRequestUpdate,
		TargetID:    requestID,
		Description: fmt.Sprintf("rescheduled to %s", start.Format(time.RFC3339)),
	}
	if err := s.store.UpdateIfCreated(ctx, req, entry); err != nil {
		return repository.Request{}, err
	}
	return req, nil
}

// Accept assigns the calling professional to a created request. The
// availability pre-check gives a friendly conflict early; the store repeats
// it under lock so concurrent accepts resolve to exactly one winner.
func (s *Service) Accept(ctx context.Context, professionalID, requestID uuid.UUID) (repository.Request, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return repository.Request{}, err
	}
	if req.Status != repository.StatusCreated {
		return repository.Request{}, apperr.InvalidTransition("request is no longer available")
	}
	if err := s.engine.Check(ctx, professionalID, req.PreferredTime, req.Duration()); err != nil {
		return repository.Request{}, err
	}

	entry := auditrepo.Entry{
		ActorID:     &professionalID,
		Action:      auditrepo.ActionRequestAssign,
		TargetID:    requestID,
		Description: "accepted service request",
	}
	assigned, err := s.store.AssignIfCreated(ctx, requestID, professionalID, entry)
	if err != nil {
		return repository.Request{}, err
	}

	s.log.Lifecycle(requestID.String(), string(repository.StatusCreated), string(repository.StatusAssigned), professionalID.String())
	s.bus.Publish(ctx, events.RequestAssigned{
		BaseEvent:      events.NewBaseEvent(),
		RequestID:      requestID,
		CustomerID:     assigned.CustomerID,
		ProfessionalID: professionalID,
		StartTime:      assigned.PreferredTime,
		EndTime:        assigned.WindowEnd(),
	})
	return assigned, nil
}

// Start marks the assigned professional's arrival on site.
func (s *Service) Start(ctx context.Context, professionalID, requestID uuid.UUID) (repository.Request, error) {
	if err := s.requireAssignee(ctx, professionalID, requestID); err != nil {
		return repository.Request{}, err
	}

	entry := auditrepo.Entry{
		ActorID:     &professionalID,
		Action:      auditrepo.ActionRequestStart,
		TargetID:    requestID,
		Description: "started work",
	}
	req, err := s.store.Transition(ctx, requestID, repository.StatusAssigned, repository.StatusInProgress, entry)
	if err != nil {
		return repository.Request{}, err
	}

	s.log.Lifecycle(requestID.String(), string(repository.StatusAssigned), string(repository.StatusInProgress), professionalID.String())
	s.bus.Publish(ctx, events.RequestStarted{
		BaseEvent:      events.NewBaseEvent(),
		RequestID:      requestID,
		CustomerID:     req.CustomerID,
		ProfessionalID: professionalID,
	})
	return req, nil
}

// Complete marks the work done, storing the professional's closing remarks
// and releasing the calendar window. Remarks are mandatory.
func (s *Service) Complete(ctx context.Context, professionalID, requestID uuid.UUID, remarks string) (repository.Request, error) {
	if strings.TrimSpace(remarks) == "" {
		return repository.Request{}, apperr.Validation("remarks are required to complete a request")
	}
	if err := s.requireAssignee(ctx, professionalID, requestID); err != nil {
		return repository.Request{}, err
	}

	entry := auditrepo.Entry{
		ActorID:     &professionalID,
		Action:      auditrepo.ActionRequestComplete,
		TargetID:    requestID,
		Description: "completed work",
	}
	req, err := s.store.CompleteWork(ctx, requestID, remarks, entry)
	if err != nil {
		return repository.Request{}, err
	}

	s.log.Lifecycle(requestID.String(), string(repository.StatusInProgress), string(repository.StatusCompleted), professionalID.String())
	s.bus.Publish(ctx, events.RequestCompleted{
		BaseEvent:      events.NewBaseEvent(),
		RequestID:      requestID,
		CustomerID:     req.CustomerID,
		ProfessionalID: professionalID,
	})
	return req, nil
}

// Cancel withdraws a request that has not started. Allowed from created and
// assigned only, by the owning customer or an admin; the request keeps its
// row with a cancelled status.
func (s *Service) Cancel(ctx context.Context, actor httpkit.Identity, requestID uuid.UUID) (repository.Request, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return repository.Request{}, err
	}
	if req.CustomerID != actor.UserID() && !actor.HasRole(httpkit.RoleAdmin) {
		return repository.Request{}, apperr.Forbidden("request belongs to another customer")
	}

	actorID := actor.UserID()
	entry := auditrepo.Entry{
		ActorID:     &actorID,
		Action:      auditrepo.ActionRequestCancel,
		TargetID:    requestID,
		Description: "cancelled service request",
	}
	cancelled, previous, err := s.store.CancelIfOpen(ctx, requestID, entry)
	if err != nil {
		return repository.Request{}, err
	}

	s.log.Lifecycle(requestID.String(), string(previous), string(repository.StatusCancelled), actorID.String())
	s.bus.Publish(ctx, events.RequestCancelled{
		BaseEvent:      events.NewBaseEvent(),
		RequestID:      requestID,
		CustomerID:     req.CustomerID,
		ProfessionalID: cancelled.ProfessionalID,
		WasAssigned:    previous == repository.StatusAssigned,
	})
	return cancelled, nil
}

// CloseInput carries the mandatory review attached when closing.
type CloseInput struct {
	Rating  int
	Comment string
}

// Close closes a completed request with the customer's review. The review
// and the professional's rating aggregate commit atomically with the status
// change.
func (s *Service) Close(ctx context.Context, customerID, requestID uuid.UUID, input CloseInput) (repository.Request, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return repository.Request{}, err
	}
	if req.CustomerID != customerID {
		return repository.Request{}, apperr.Forbidden("request belongs to another customer")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return repository.Request{}, apperr.Validation("rating must be between 1 and 5")
	}

	review := repository.Review{
		ID:        uuid.New(),
		RequestID: requestID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: time.Now().UTC(),
	}
	closeEntry := auditrepo.Entry{
		ActorID:     &customerID,
		Action:      auditrepo.ActionRequestClose,
		TargetID:    requestID,
		Description: "closed service request",
	}
	reviewEntry := auditrepo.Entry{
		ActorID:     &customerID,
		Action:      auditrepo.ActionReviewSubmit,
		TargetID:    review.ID,
		Description: fmt.Sprintf("rated %d/5", input.Rating),
	}
	closed, err := s.store.CloseWithReview(ctx, requestID, review, closeEntry, reviewEntry)
	if err != nil {
		return repository.Request{}, err
	}

	s.log.Lifecycle(requestID.String(), string(repository.StatusCompleted), string(repository.StatusClosed), customerID.String())
	s.bus.Publish(ctx, events.RequestClosed{
		BaseEvent:      events.NewBaseEvent(),
		RequestID:      requestID,
		CustomerID:     customerID,
		ProfessionalID: *closed.ProfessionalID,
	})
	s.bus.Publish(ctx, events.ReviewSubmitted{
		BaseEvent:      events.NewBaseEvent(),
		ReviewID:       review.ID,
		RequestID:      requestID,
		ProfessionalID: *closed.ProfessionalID,
		Rating:         input.Rating,
	})
	return closed, nil
}

// Get returns a request visible to the caller: the owning customer, the
// assigned professional, or an admin.
func (s *Service) Get(ctx context.Context, identity httpkit.Identity, requestID uuid.UUID) (repository.Request, error) {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return repository.Request{}, err
	}
	switch {
	case identity.HasRole(httpkit.RoleAdmin):
	case req.CustomerID == identity.UserID():
	case req.ProfessionalID != nil && *req.ProfessionalID == identity.UserID():
	case identity.HasRole(httpkit.RoleProfessional) && req.Status == repository.StatusCreated:
	default:
		return repository.Request{}, apperr.Forbidden("not allowed to view this request")
	}
	return req, nil
}

// ListForCustomer returns the customer's own requests.
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID, filter repository.ListFilter) ([]repository.Request, error) {
	return s.store.ListByCustomer(ctx, customerID, filter)
}

// ListForProfessional returns a dashboard view for the professional.
func (s *Service) ListForProfessional(ctx context.Context, professionalID uuid.UUID, view string) ([]repository.Request, error) {
	return s.store.ListByProfessional(ctx, professionalID, view)
}

// SummaryForCustomer returns the customer's request counts per status.
func (s *Service) SummaryForCustomer(ctx context.Context, customerID uuid.UUID) (map[repository.Status]int, error) {
	return s.store.CountByCustomerStatus(ctx, customerID)
}

// Schedule renders the professional's calendar, consulting the cache first.
func (s *Service) Schedule(ctx context.Context, professionalID uuid.UUID, from, to time.Time, slot time.Duration) ([]availability.DaySchedule, error) {
	if slot <= 0 {
		slot = s.policy.SlotDuration()
	}
	if s.cache != nil {
		if days, ok := s.cache.Get(ctx, professionalID, from, to, slot); ok {
			return days, nil
		}
	}

	days, err := s.engine.Schedule(ctx, professionalID, from, to, slot)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, professionalID, from, to, slot, days)
	}
	return days, nil
}

// ReportReview flags a review for moderation.
func (s *Service) ReportReview(ctx context.Context, adminID, reviewID uuid.UUID, reason string) error {
	entry := auditrepo.Entry{
		ActorID:     &adminID,
		Action:      auditrepo.ActionReviewReport,
		TargetID:    reviewID,
		Description: reason,
	}
	return s.store.SetReviewReported(ctx, reviewID, true, reason, entry)
}

// DismissReport clears a review's reported flag, keeping the review.
func (s *Service) DismissReport(ctx context.Context, adminID, reviewID uuid.UUID) error {
	entry := auditrepo.Entry{
		ActorID:     &adminID,
		Action:      auditrepo.ActionReviewDismiss,
		TargetID:    reviewID,
		Description: "dismissed review report",
	}
	return s.store.SetReviewReported(ctx, reviewID, false, "", entry)
}

// RemoveReview deletes a review and rolls its rating out of the
// professional's aggregate.
func (s *Service) RemoveReview(ctx context.Context, adminID, reviewID uuid.UUID) error {
	entry := auditrepo.Entry{
		ActorID:     &adminID,
		Action:      auditrepo.ActionReviewRemove,
		TargetID:    reviewID,
		Description: "removed review",
	}
	removed, professionalID, err := s.store.RemoveReview(ctx, reviewID, entry)
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, events.ReviewRemoved{
		BaseEvent:      events.NewBaseEvent(),
		ReviewID:       removed.ID,
		ProfessionalID: professionalID,
		Rating:         removed.Rating,
	})
	return nil
}

// GetReview returns a review by id.
func (s *Service) GetReview(ctx context.Context, reviewID uuid.UUID) (repository.Review, error) {
	rev, _, err := s.store.GetReview(ctx, reviewID)
	return rev, err
}

func (s *Service) requireAssignee(ctx context.Context, professionalID, requestID uuid.UUID) error {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.ProfessionalID == nil || *req.ProfessionalID != professionalID {
		return apperr.Forbidden("request is assigned to another professional")
	}
	return nil
}

// validateWindow enforces the booking rules: the window must start in the
// future, within the booking horizon, and fit entirely inside business
// hours of a single calendar day.
func (s *Service) validateWindow(start time.Time, durationMinutes int) error {
	if durationMinutes <= 0 {
		return apperr.Validation("duration must be positive")
	}
	now := time.Now().UTC()
	if !start.After(now) {
		return apperr.Validation("preferred time must be in the future")
	}
	if start.After(now.Add(s.policy.Horizon())) {
		return apperr.Validation(fmt.Sprintf("preferred time must be within %d days", s.policy.HorizonDays))
	}

	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	open := day.Add(s.policy.Open())
	close := day.Add(s.policy.Close())
	end := start.Add(time.Duration(durationMinutes) * time.Minute)
	if start.Before(open) || end.After(close) {
		return apperr.Validation("booking window must fall within business hours")
	}
	return nil
}
