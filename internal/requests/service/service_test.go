package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	auditrepo "github.com/vagadeeshwar/household-services-sub000/internal/audit/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/availability"
	catalogrepo "github.com/vagadeeshwar/household-services-sub000/internal/catalog/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/events"
	"github.com/vagadeeshwar/household-services-sub000/internal/rating"
	"github.com/vagadeeshwar/household-services-sub000/internal/requests/repository"
	"github.com/vagadeeshwar/household-services-sub000/platform/apperr"
	"github.com/vagadeeshwar/household-services-sub000/platform/config"
	"github.com/vagadeeshwar/household-services-sub000/platform/httpkit"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"

	"github.com/google/uuid"
)

// memStore is an in-memory Store and availability.BookingSource with the
// same locking discipline as the pgx repository: each mutation re-checks
// its guard under the mutex.
type memStore struct {
	mu            sync.Mutex
	requests      map[uuid.UUID]repository.Request
	reviews       map[uuid.UUID]repository.Review
	aggregates    map[uuid.UUID]rating.Aggregate
	professionals map[uuid.UUID]memProfessional
	entries       []auditrepo.Entry
}

// memProfessional mirrors the verified/active/service-match guards the pgx
// repository checks under the professional row lock. Tests that don't
// register a profile get an implicitly eligible professional.
type memProfessional struct {
	serviceID uuid.UUID
	verified  bool
	active    bool
}

func newMemStore() *memStore {
	return &memStore{
		requests:      make(map[uuid.UUID]repository.Request),
		reviews:       make(map[uuid.UUID]repository.Review),
		aggregates:    make(map[uuid.UUID]rating.Aggregate),
		professionals: make(map[uuid.UUID]memProfessional),
	}
}

func (m *memStore) CreateRequest(ctx context.Context, req *repository.Request, entry auditrepo.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = *req
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memStore) GetRequest(ctx context.Context, id uuid.UUID) (repository.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return repository.Request{}, apperr.NotFound("service request not found")
	}
	return req, nil
}

func (m *memStore) UpdateIfCreated(ctx context.Context, req repository.Request, entry auditrepo.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.requests[req.ID]
	if !ok {
		return apperr.NotFound("service request not found")
	}
	if current.Status != repository.StatusCreated {
		return apperr.InvalidTransition("request can only be edited while awaiting assignment")
	}
	current.PreferredTime = req.PreferredTime
	current.DurationMinutes = req.DurationMinutes
	current.Description = req.Description
	m.requests[req.ID] = current
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memStore) AssignIfCreated(ctx context.Context, requestID, professionalID uuid.UUID, entry auditrepo.Entry) (repository.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return repository.Request{}, apperr.NotFound("service request not found")
	}
	if req.Status != repository.StatusCreated {
		return repository.Request{}, apperr.InvalidTransition("request is no longer available")
	}
	if pro, ok := m.professionals[professionalID]; ok {
		if !pro.verified || !pro.active {
			return repository.Request{}, apperr.Forbidden("professional is not verified")
		}
		if pro.serviceID != req.ServiceID {
			return repository.Request{}, apperr.Forbidden("professional does not offer this service")
		}
	}
	for _, other := range m.requests {
		if other.ProfessionalID == nil || *other.ProfessionalID != professionalID || !other.Status.Active() {
			continue
		}
		if availability.Overlaps(req.PreferredTime, req.WindowEnd(), other.PreferredTime, other.WindowEnd()) {
			return repository.Request{}, apperr.Conflict("professional is already booked for this window").
				WithDetails(map[string]string{"conflictingRequestId": other.ID.String()})
		}
	}
	now := time.Now().UTC()
	req.Status = repository.StatusAssigned
	req.ProfessionalID = &professionalID
	req.AssignedAt = &now
	m.requests[requestID] = req
	m.entries = append(m.entries, entry)
	return req, nil
}

func (m *memStore) Transition(ctx context.Context, requestID uuid.UUID, from, to repository.Status, entry auditrepo.Entry) (repository.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return repository.Request{}, apperr.NotFound("service request not found")
	}
	if req.Status != from {
		return repository.Request{}, apperr.InvalidTransition(
			fmt.Sprintf("request is %s, expected %s", req.Status, from))
	}
	req.Status = to
	m.requests[requestID] = req
	m.entries = append(m.entries, entry)
	return req, nil
}

func (m *memStore) CompleteWork(ctx context.Context, requestID uuid.UUID, remarks string, entry auditrepo.Entry) (repository.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return repository.Request{}, apperr.NotFound("service request not found")
	}
	if req.Status != repository.StatusInProgress {
		return repository.Request{}, apperr.InvalidTransition(
			fmt.Sprintf("request is %s, expected %s", req.Status, repository.StatusInProgress))
	}
	now := time.Now().UTC()
	req.Status = repository.StatusCompleted
	req.CompletedAt = &now
	req.Remarks = remarks
	m.requests[requestID] = req
	m.entries = append(m.entries, entry)
	return req, nil
}

func (m *memStore) CancelIfOpen(ctx context.Context, requestID uuid.UUID, entry auditrepo.Entry) (repository.Request, repository.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return repository.Request{}, "", apperr.NotFound("service request not found")
	}
	if !repository.CanTransition(req.Status, repository.StatusCancelled) {
		return repository.Request{}, "", apperr.InvalidTransition(
			fmt.Sprintf("request in status %s cannot be cancelled", req.Status))
	}
	previous := req.Status
	req.Status = repository.StatusCancelled
	m.requests[requestID] = req
	m.entries = append(m.entries, entry)
	return req, previous, nil
}

func (m *memStore) CloseWithReview(ctx context.Context, requestID uuid.UUID, review repository.Review, closeEntry, reviewEntry auditrepo.Entry) (repository.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[requestID]
	if !ok {
		return repository.Request{}, apperr.NotFound("service request not found")
	}
	if req.Status != repository.StatusCompleted {
		return repository.Request{}, apperr.InvalidTransition("only completed requests can be closed")
	}
	for _, existing := range m.reviews {
		if existing.RequestID == requestID {
			return repository.Request{}, apperr.Conflict("review already submitted for this request")
		}
	}
	agg, err := m.aggregates[*req.ProfessionalID].Add(review.Rating)
	if err != nil {
		return repository.Request{}, err
	}
	m.aggregates[*req.ProfessionalID] = agg
	req.Status = repository.StatusClosed
	m.requests[requestID] = req
	m.reviews[review.ID] = review
	m.entries = append(m.entries, closeEntry, reviewEntry)
	return req, nil
}

func (m *memStore) GetReview(ctx context.Context, reviewID uuid.UUID) (repository.Review, repository.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rev, ok := m.reviews[reviewID]
	if !ok {
		return repository.Review{}, repository.Request{}, apperr.NotFound("review not found")
	}
	return rev, m.requests[rev.RequestID], nil
}

func (m *memStore) SetReviewReported(ctx context.Context, reviewID uuid.UUID, reported bool, reason string, entry auditrepo.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rev, ok := m.reviews[reviewID]
	if !ok {
		return apperr.NotFound("review not found")
	}
	rev.IsReported = reported
	rev.ReportReason = reason
	m.reviews[reviewID] = rev
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memStore) RemoveReview(ctx context.Context, reviewID uuid.UUID, entry auditrepo.Entry) (repository.Review, uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rev, ok := m.reviews[reviewID]
	if !ok {
		return repository.Review{}, uuid.Nil, apperr.NotFound("review not found")
	}
	req := m.requests[rev.RequestID]
	agg, err := m.aggregates[*req.ProfessionalID].Remove(rev.Rating)
	if err != nil {
		return repository.Review{}, uuid.Nil, err
	}
	m.aggregates[*req.ProfessionalID] = agg
	delete(m.reviews, reviewID)
	m.entries = append(m.entries, entry)
	return rev, *req.ProfessionalID, nil
}

func (m *memStore) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter repository.ListFilter) ([]repository.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.Request
	for _, req := range m.requests {
		if req.CustomerID == customerID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *memStore) CountByCustomerStatus(ctx context.Context, customerID uuid.UUID) (map[repository.Status]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[repository.Status]int)
	for _, req := range m.requests {
		if req.CustomerID == customerID {
			counts[req.Status]++
		}
	}
	return counts, nil
}

func (m *memStore) ListByProfessional(ctx context.Context, professionalID uuid.UUID, view string) ([]repository.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.Request
	for _, req := range m.requests {
		if req.ProfessionalID != nil && *req.ProfessionalID == professionalID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *memStore) ActiveBookings(ctx context.Context, professionalID uuid.UUID) ([]availability.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var bookings []availability.Booking
	for _, req := range m.requests {
		if req.ProfessionalID != nil && *req.ProfessionalID == professionalID && req.Status.Active() {
			bookings = append(bookings, availability.Booking{
				RequestID:      req.ID,
				ProfessionalID: professionalID,
				StartTime:      req.PreferredTime,
				EndTime:        req.WindowEnd(),
				Status:         string(req.Status),
			})
		}
	}
	return bookings, nil
}

func (m *memStore) BookingsInRange(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]availability.Booking, error) {
	active, err := m.ActiveBookings(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	var bookings []availability.Booking
	for _, b := range active {
		if availability.Overlaps(b.StartTime, b.EndTime, from, to) {
			bookings = append(bookings, b)
		}
	}
	return bookings, nil
}

type fakeCatalog struct {
	services map[uuid.UUID]catalogrepo.Service
}

func (f *fakeCatalog) GetActiveByID(ctx context.Context, id uuid.UUID) (catalogrepo.Service, error) {
	svc, ok := f.services[id]
	if !ok || !svc.Active {
		return catalogrepo.Service{}, apperr.NotFound("service not found")
	}
	return svc, nil
}

type noopBus struct{}

func (noopBus) Publish(ctx context.Context, event events.Event)          {}
func (noopBus) PublishSync(ctx context.Context, event events.Event) error { return nil }
func (noopBus) Subscribe(eventName string, handler events.Handler)       {}

type testIdentity struct {
	id   uuid.UUID
	role string
}

func (t testIdentity) UserID() uuid.UUID        { return t.id }
func (t testIdentity) Role() string             { return t.role }
func (t testIdentity) HasRole(role string) bool { return t.role == role }
func (t testIdentity) IsAuthenticated() bool    { return true }

func asCustomer(id uuid.UUID) testIdentity { return testIdentity{id: id, role: httpkit.RoleCustomer} }
func asAdmin(id uuid.UUID) testIdentity    { return testIdentity{id: id, role: httpkit.RoleAdmin} }

func newTestService(store *memStore, serviceID uuid.UUID) *Service {
	catalog := &fakeCatalog{services: map[uuid.UUID]catalogrepo.Service{
		serviceID: {ID: serviceID, Name: "deep cleaning", DurationMinutes: 60, Active: true},
	}}
	policy := config.DefaultBookingPolicy()
	engine := availability.NewEngine(store, policy)
	return New(store, catalog, engine, policy, nil, noopBus{}, logger.New("development"))
}

// tomorrowAt returns tomorrow at hh:mm UTC, always inside the booking
// horizon and the business-hours window for 09:00-18:00 times.
func tomorrowAt(hour, min int) time.Time {
	d := time.Now().UTC().AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, min, 0, 0, time.UTC)
}

func TestAcceptRaceExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	serviceID := uuid.New()
	store := newMemStore()
	svc := newTestService(store, serviceID)

	req, err := svc.Create(ctx, uuid.New(), CreateInput{
		ServiceID:     serviceID,
		PreferredTime: tomorrowAt(10, 0),
		Description:   "kitchen",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	const workers = 16
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Accept(ctx, uuid.New(), req.ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case apperr.Is(err, apperr.KindInvalidTransition), apperr.Is(err, apperr.KindConflict):
		default:
			t.Fatalf("unexpected loser error: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	final, err := store.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if final.Status != repository.StatusAssigned || final.ProfessionalID == nil || final.AssignedAt == nil {
		t.Fatalf("final request not properly assigned: %+v", final)
	}
}

// Professionals racing to grab overlapping requests must never end up with
// two bookings that overlap, no matter who wins what.
func TestAcceptRaceNoPairwiseOverlap(t *testing.T) {
	ctx := context.Background()
	serviceID := uuid.New()
	store := newMemStore()
	svc := newTestService(store, serviceID)
	customerID := uuid.New()

	// Windows at 10:00, 10:30, 11:00, 11:30, 12:00, each 60 minutes;
	// neighbours overlap, every other pair is back-to-back or disjoint.
	var requestIDs []uuid.UUID
	for i := 0; i < 5; i++ {
		req, err := svc.Create(ctx, customerID, CreateInput{
			ServiceID:     serviceID,
			PreferredTime: tomorrowAt(10, 0).Add(time.Duration(i) * 30 * time.Minute),
		})
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		requestIDs = append(requestIDs, req.ID)
	}

	professionals := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	var wg sync.WaitGroup
	for _, proID := range professionals {
		for _, reqID := range requestIDs {
			wg.Add(1)
			go func(proID, reqID uuid.UUID) {
				defer wg.Done()
				_, err := svc.Accept(ctx, proID, reqID)
				if err != nil && !apperr.Is(err, apperr.KindInvalidTransition) && !apperr.Is(err, apperr.KindConflict) {
					t.Errorf("unexpected Accept error: %v", err)
				}
			}(proID, reqID)
		}
	}
	wg.Wait()

	for _, proID := range professionals {
		bookings, err := store.ActiveBookings(ctx, proID)
		if err != nil {
			t.Fatalf("ActiveBookings: %v", err)
		}
		for i := 0; i < len(bookings); i++ {
			for j := i + 1; j < len(bookings); j++ {
				if availability.Overlaps(bookings[i].StartTime, bookings[i].EndTime, bookings[j].StartTime, bookings[j].EndTime) {
					t.Fatalf("professional %s holds overlapping bookings %s and %s",
						proID, bookings[i].RequestID, bookings[j].RequestID)
				}
			}
		}
	}

	// Every request was either assigned to exactly one professional or left
	// unassigned in created.
	for _, reqID := range requestIDs {
		req, err := store.GetRequest(ctx, reqID)
		if err != nil {
			t.Fatalf("GetRequest: %v", err)
		}
		switch req.Status {
		case repository.StatusAssigned:
			if req.ProfessionalID == nil {
				t.Fatalf("assigned request %s has no professional", reqID)
			}
		case repository.StatusCreated:
			if req.ProfessionalID != nil {
				t.Fatalf("created request %s has a professional", reqID)
			}
		default:
			t.Fatalf("request %s in unexpected status %s", reqID, req.Status)
		}
	}
}

func TestSummaryForCustomer(t *testing.T) {
	ctx := context.Background()
	serviceID := uuid.New()
	store := newMemStore()
	svc := newTestService(store, serviceID)
	customerID := uuid.New()
	professionalID := uuid.New()

	for i, status := range []repository.Status{
		repository.StatusCreated, repository.StatusCreated,
		repository.StatusAssigned, repository.StatusClosed,
	} {
		req := repository.Request{
			ID:              uuid.New(),
			ServiceID:       serviceID,
			CustomerID:      customerID,
			Status:          status,
			RequestedAt:     time.Now().UTC(),
			PreferredTime:   tomorrowAt(9, 0).Add(time.Duration(i) * time.Hour),
			DurationMinutes: 60,
		}
		if status != repository.StatusCreated {
			req.ProfessionalID = &professionalID
		}
		store.requests[req.ID] = req
	}
	// Someone else's request must not leak into the summary.
	otherID := uuid.New()
	store.requests[otherID] = repository.Request{
		ID: otherID, ServiceID: serviceID, CustomerID: uuid.New(),
		Status: repository.StatusCreated, PreferredTime: tomorrowAt(15, 0), DurationMinutes: 60,
	}

	summary, err := svc.SummaryForCustomer(ctx, customerID)
	if err != nil {
		t.Fatalf("SummaryForCustomer: %v", err)
	}
	want := map[repository.Status]int{
		repository.StatusCreated:  2,
		repository.StatusAssigned: 1,
		repository.StatusClosed:   1,
	}
	for status, n := range want {
		if summary[status] != n {
			t.Errorf("summary[%s] = %d, want %d", status, summary[status], n)
		}
	}
	if len(summary) != len(want) {
		t.Errorf("summary has %d statuses, want %d", len(summary), len(want))
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	ctx := context.Background()
	serviceID := uuid.New()
	store := newMemStore()
	svc := newTestService(store, serviceID)

	customerID := uuid.New()
	professionalID := uuid.New()

	req, err := svc.Create(ctx, customerID, CreateInput{
		ServiceID:     serviceID,
		PreferredTime: tomorrowAt(11, 0),
		Description:   "bathroom",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if req.Status != repository.StatusCreated {
		t.Fatalf("status after create = %s", req.Status)
	}
	if req.DurationMinutes != 60 {
		t.Fatalf("duration not defaulted from service: %d", req.DurationMinutes)
	}

	if _, err := svc.Accept(ctx, professionalID, req.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if _, err := svc.Start(ctx, professionalID, req.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Closing before completion is illegal.
	if _, err := svc.Close(ctx, customerID, req.ID, CloseInput{Rating: 5}); !apperr.Is(err, apperr.KindInvalidTransition) {
		t.Fatalf("Close before complete: got %v, want invalid transition", err)
	}

	done, err := svc.Complete(ctx, professionalID, req.ID, "done")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.CompletedAt == nil {
		t.Fatal("CompletedAt not set")
	}
	if done.Remarks != "done" {
		t.Fatalf("remarks = %q, want %q", done.Remarks, "done")
	}

	closed, err := svc.Close(ctx, customerID, req.ID, CloseInput{Rating: 4, Comment: "solid work"})
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed.Status != repository.StatusClosed {
		t.Fatalf("status after close = %s", closed.Status)
	}

	agg := store.aggregates[professionalID]
	if agg.Count != 1 || agg.Average != 4 {
		t.Fatalf("aggregate = %+v, want (4, 1)", agg)
	}

	// A second close attempt must not double-count the review.
	if _, err := svc.Close(ctx, customerID, req.ID, CloseInput{Rating: 5}); !apperr.Is(err, apperr.KindInvalidTransition) {
		t.Fatalf("second close: got %v", err)
	}
	if store.aggregates[professionalID].Count != 1 {
		t.Fatal("review double-counted")
	}
}

func TestAcceptOverlapConflict(t *testing.T) {
	ctx := context.Background()
	serviceID := uuid.New()
	store := newMemStore()
	svc := newTestService(store, serviceID)

	professionalID := uuid.New()
	first, err := svc.Create(ctx, uuid.New(), CreateInput{
		ServiceID:     serviceID,
		PreferredTime: tomorrowAt(10, 0),
	})
	if err != nil {
		t.Fatalf("Create first: %v", err)
	}
	if _, err := svc.Accept(ctx, professionalID, first.ID); err != nil {
		t.Fatalf("Accept first: %v", err)
	}

	// 10:30-11:30 overlaps the accepted 10:00-11:00 booking.
	second, err := svc.Create(ctx, uuid.New(), CreateInput{
		ServiceID:     serviceID,
		PreferredTime: tomorrowAt(10, 30),
	})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	_, err = svc.Accept(ctx, professionalID, second.ID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("overlapping accept: got %v, want conflict", err)
	}
	details, ok := err.(*apperr.Error).Details.(map[string]string)
	if !ok || details["conflictingRequestId"] != first.ID.String() {
		t.Fatalf("conflict details = %v, want id of first booking", err.(*apperr.Error).Details)
	}

	// Back-to-back 11:00-12:00 is fine.
	third, err := svc.Create(ctx, uuid.New(), CreateInput{
		ServiceID:     serviceID,
		PreferredTime: tomorrowAt(11, 0),
	})
	if err != nil {
		t.Fatalf("Create third: %v", err)
	}
	if _, err := svc.Accept(ctx, professionalID, third.ID); err != nil {
		t.Fatalf("back-to-back accept: %v", err)
	}
}

func TestCancelLegality(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	professionalID := uuid.New()

	cases := []struct {
		status  repository.Status
		allowed bool
	}{
		{repository.StatusCreated, true},
		{repository.StatusAssigned, true},
		{repository.StatusInProgress, false},
		{repository.StatusCompleted, false},
		{repository.StatusClosed, false},
		{repository.StatusCancelled, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			serviceID := uuid.New()
			store := newMemStore()
			svc := newTestService(store, serviceID)

			req := repository.Request{
				ID:              uuid.New(),
				ServiceID:       serviceID,
				CustomerID:      customerID,
				Status:          tc.status,
				RequestedAt:     time.Now().UTC(),
				PreferredTime:   tomorrowAt(14, 0),
				DurationMinutes: 60,
			}
			if tc.status != repository.StatusCreated {
				req.ProfessionalID = &professionalID
			}
			store.requests[req.ID] = req

			_, err := svc.Cancel(ctx, asCustomer(customerID), req.ID)
			if tc.allowed && err != nil {
				t.Fatalf("Cancel from %s: %v", tc.status, err)
			}
			if !tc.allowed && !apperr.Is(err, apperr.KindInvalidTransition) {
				t.Fatalf("Cancel from %s: got %v, want invalid transition", tc.status, err)
			}
		})
	}
}

func TestCancelByStrangerForbidden(t *testing.T) {
	ctx := context.Background()
	serviceID := uuid.New()
	store := newMemStore()
	svc := newTestService(store, serviceID)

	req, err := svc.Create(ctx, uuid.New(), CreateInput{
		ServiceID:     serviceID,
		PreferredTime: tomorrowAt(12, 0),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Cancel(ctx, asCustomer(uuid.New()), req.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("stranger cancel: got %v, want forbidden", err)
	}
}

func TestCancelByAdmin(t *testing.T) {
	ctx := context.Background()
	serviceID := uuid.New()
	store := newMemStore()
	svc := newTestService(store, serviceID)

	req, err := svc.Create(ctx, uuid.New(), CreateInput{
		ServiceID:     serviceID,
		PreferredTime: tomorrowAt(12, 0),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, asAdmin(uuid.New()), req.ID)
	if err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
	if cancelled.Status != repository.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}
}

func TestCompleteStoresRemarks(t *testing.T) {
	ctx := context.Background()
	serviceID := uuid.New()
	store := newMemStore()
	svc := newTestService(store, serviceID)
	professionalID := uuid.New()

	req, err := svc.Create(ctx, uuid.New(), CreateInput{
		ServiceID:     serviceID,
		PreferredTime: tomorrowAt(13, 0),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Accept(ctx, professionalID, req.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if _, err := svc.Start(ctx, professionalID, req.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Remarks are mandatory; blank ones never reach the store.
	if _, err := svc.Complete(ctx, professionalID, req.ID, "  "); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("blank remarks: got %v, want validation error", err)
	}

	if _, err := svc.Complete(ctx, professionalID, req.ID, "done"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	final, err := store.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if final.Remarks != "done" {
		t.Fatalf("persisted remarks = %q, want %q", final.Remarks, "done")
	}
	if final.Status != repository.StatusCompleted || final.CompletedAt == nil {
		t.Fatalf("request not completed: %+v", final)
	}
}

func TestAcceptProfessionalEligibility(t *testing.T) {
	ctx := context.Background()
	serviceID := uuid.New()

	cases := []struct {
		name string
		pro  memProfessional
		kind apperr.Kind
	}{
		{"service mismatch", memProfessional{serviceID: uuid.New(), verified: true, active: true}, apperr.KindForbidden},
		{"unverified", memProfessional{serviceID: serviceID, verified: false, active: true}, apperr.KindForbidden},
		{"blocked", memProfessional{serviceID: serviceID, verified: true, active: false}, apperr.KindForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			svc := newTestService(store, serviceID)
			professionalID := uuid.New()
			store.professionals[professionalID] = tc.pro

			req, err := svc.Create(ctx, uuid.New(), CreateInput{
				ServiceID:     serviceID,
				PreferredTime: tomorrowAt(10, 0),
			})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if _, err := svc.Accept(ctx, professionalID, req.ID); !apperr.Is(err, tc.kind) {
				t.Fatalf("Accept: got %v, want kind %d", err, tc.kind)
			}
		})
	}
}

func TestCreateWindowValidation(t *testing.T) {
	ctx := context.Background()
	serviceID := uuid.New()
	store := newMemStore()
	svc := newTestService(store, serviceID)
	customerID := uuid.New()

	cases := []struct {
		name     string
		start    time.Time
		duration int
	}{
		{"past", time.Now().UTC().Add(-time.Hour), 60},
		{"beyond horizon", time.Now().UTC().AddDate(0, 0, 9), 60},
		{"before opening", tomorrowAt(8, 0), 60},
		{"crosses closing", tomorrowAt(17, 30), 60},
		{"zero duration after default override", tomorrowAt(10, 0), -30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, customerID, CreateInput{
				ServiceID:       serviceID,
				PreferredTime:   tc.start,
				DurationMinutes: tc.duration,
			})
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("got %v, want validation error", err)
			}
		})
	}
}

func TestReviewModeration(t *testing.T) {
	ctx := context.Background()
	serviceID := uuid.New()
	store := newMemStore()
	svc := newTestService(store, serviceID)

	customerID := uuid.New()
	professionalID := uuid.New()
	adminID := uuid.New()

	req, err := svc.Create(ctx, customerID, CreateInput{ServiceID: serviceID, PreferredTime: tomorrowAt(9, 0)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Accept(ctx, professionalID, req.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if _, err := svc.Start(ctx, professionalID, req.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := svc.Complete(ctx, professionalID, req.ID, "replaced the valve"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := svc.Close(ctx, customerID, req.ID, CloseInput{Rating: 2, Comment: "late"}); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var reviewID uuid.UUID
	for id := range store.reviews {
		reviewID = id
	}

	if err := svc.ReportReview(ctx, adminID, reviewID, "abusive language"); err != nil {
		t.Fatalf("ReportReview: %v", err)
	}
	rev, err := svc.GetReview(ctx, reviewID)
	if err != nil {
		t.Fatalf("GetReview: %v", err)
	}
	if !rev.IsReported || rev.ReportReason != "abusive language" {
		t.Fatalf("review not reported: %+v", rev)
	}

	if err := svc.DismissReport(ctx, adminID, reviewID); err != nil {
		t.Fatalf("DismissReport: %v", err)
	}
	rev, _ = svc.GetReview(ctx, reviewID)
	if rev.IsReported {
		t.Fatal("report not dismissed")
	}

	if err := svc.RemoveReview(ctx, adminID, reviewID); err != nil {
		t.Fatalf("RemoveReview: %v", err)
	}
	if agg := store.aggregates[professionalID]; agg.Count != 0 || agg.Average != 0 {
		t.Fatalf("aggregate after removal = %+v, want zero", agg)
	}
	if _, err := svc.GetReview(ctx, reviewID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("removed review still readable: %v", err)
	}
}
