package notification

import (
	"context"
	"testing"
	"time"

	authrepo "github.com/vagadeeshwar/household-services-sub000/internal/auth/repository"
	catalogrepo "github.com/vagadeeshwar/household-services-sub000/internal/catalog/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/email"
	"github.com/vagadeeshwar/household-services-sub000/internal/events"
	requestsrepo "github.com/vagadeeshwar/household-services-sub000/internal/requests/repository"
	"github.com/vagadeeshwar/household-services-sub000/platform/apperr"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"

	"github.com/google/uuid"
)

type sentMail struct {
	kind string
	to   string
	arg  string
}

type recordingSender struct {
	email.Sender
	sent []sentMail
}

func newRecordingSender() *recordingSender {
	return &recordingSender{Sender: email.NewNoopSender(logger.New("development"))}
}

func (r *recordingSender) SendWelcomeEmail(ctx context.Context, toEmail, name, role string) error {
	r.sent = append(r.sent, sentMail{kind: "welcome", to: toEmail, arg: role})
	return nil
}

func (r *recordingSender) SendRequestAssignedEmail(ctx context.Context, toEmail, customerName, serviceName, scheduledAt string) error {
	r.sent = append(r.sent, sentMail{kind: "assigned", to: toEmail, arg: serviceName})
	return nil
}

func (r *recordingSender) SendRequestCancelledEmail(ctx context.Context, toEmail, professionalName, scheduledAt string) error {
	r.sent = append(r.sent, sentMail{kind: "cancelled", to: toEmail})
	return nil
}

type fakeDirectory struct {
	users map[uuid.UUID]authrepo.User
}

func (f *fakeDirectory) GetByID(ctx context.Context, id uuid.UUID) (authrepo.User, error) {
	user, ok := f.users[id]
	if !ok {
		return authrepo.User{}, apperr.NotFound("user not found")
	}
	return user, nil
}

type fakeRequests struct {
	requests map[uuid.UUID]requestsrepo.Request
}

func (f *fakeRequests) GetRequest(ctx context.Context, id uuid.UUID) (requestsrepo.Request, error) {
	req, ok := f.requests[id]
	if !ok {
		return requestsrepo.Request{}, apperr.NotFound("service request not found")
	}
	return req, nil
}

type fakeServices struct {
	services map[uuid.UUID]catalogrepo.Service
}

func (f *fakeServices) GetByID(ctx context.Context, id uuid.UUID) (catalogrepo.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return catalogrepo.Service{}, apperr.NotFound("service not found")
	}
	return svc, nil
}

func TestAssignmentEmailResolvesServiceName(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	requestID := uuid.New()
	serviceID := uuid.New()

	sender := newRecordingSender()
	n := New(
		&fakeDirectory{users: map[uuid.UUID]authrepo.User{
			customerID: {ID: customerID, Email: "asha@example.com", FullName: "Asha"},
		}},
		&fakeRequests{requests: map[uuid.UUID]requestsrepo.Request{
			requestID: {ID: requestID, ServiceID: serviceID, CustomerID: customerID},
		}},
		&fakeServices{services: map[uuid.UUID]catalogrepo.Service{
			serviceID: {ID: serviceID, Name: "plumbing"},
		}},
		sender,
		logger.New("development"),
	)

	err := n.onRequestAssigned(ctx, events.RequestAssigned{
		RequestID:  requestID,
		CustomerID: customerID,
		StartTime:  time.Now(),
	})
	if err != nil {
		t.Fatalf("onRequestAssigned: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].kind != "assigned" {
		t.Fatalf("sent = %+v", sender.sent)
	}
	if sender.sent[0].to != "asha@example.com" || sender.sent[0].arg != "plumbing" {
		t.Fatalf("wrong recipient or service: %+v", sender.sent[0])
	}
}

func TestCancellationEmailOnlyWhenAssigned(t *testing.T) {
	ctx := context.Background()
	professionalID := uuid.New()

	sender := newRecordingSender()
	n := New(
		&fakeDirectory{users: map[uuid.UUID]authrepo.User{
			professionalID: {ID: professionalID, Email: "ravi@example.com", FullName: "Ravi"},
		}},
		&fakeRequests{requests: map[uuid.UUID]requestsrepo.Request{}},
		&fakeServices{},
		sender,
		logger.New("development"),
	)

	// Unassigned cancellation has nobody to notify.
	if err := n.onRequestCancelled(ctx, events.RequestCancelled{
		RequestID:   uuid.New(),
		CustomerID:  uuid.New(),
		WasAssigned: false,
	}); err != nil {
		t.Fatalf("onRequestCancelled unassigned: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("unexpected email for unassigned cancellation: %+v", sender.sent)
	}

	if err := n.onRequestCancelled(ctx, events.RequestCancelled{
		RequestID:      uuid.New(),
		CustomerID:     uuid.New(),
		ProfessionalID: &professionalID,
		WasAssigned:    true,
	}); err != nil {
		t.Fatalf("onRequestCancelled assigned: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].to != "ravi@example.com" {
		t.Fatalf("sent = %+v", sender.sent)
	}
}

func TestWelcomeEmailUsesDirectory(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	sender := newRecordingSender()
	n := New(
		&fakeDirectory{users: map[uuid.UUID]authrepo.User{
			userID: {ID: userID, Email: "meera@example.com", FullName: "Meera"},
		}},
		&fakeRequests{},
		&fakeServices{},
		sender,
		logger.New("development"),
	)

	if err := n.onUserRegistered(ctx, events.UserRegistered{
		UserID: userID,
		Email:  "meera@example.com",
		Role:   "customer",
	}); err != nil {
		t.Fatalf("onUserRegistered: %v", err)
	}
	if len(sender.sent) != 1 || sender.sent[0].arg != "customer" {
		t.Fatalf("sent = %+v", sender.sent)
	}
}
