// Package notification turns domain events into transactional email. It is
// the only module that talks to the email sender; everything it needs it
// learns from the event payload plus read-only lookups.
package notification

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	authrepo "github.com/vagadeeshwar/household-services-sub000/internal/auth/repository"
	catalogrepo "github.com/vagadeeshwar/household-services-sub000/internal/catalog/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/email"
	"github.com/vagadeeshwar/household-services-sub000/internal/events"
	requestsrepo "github.com/vagadeeshwar/household-services-sub000/internal/requests/repository"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"

	"github.com/google/uuid"
)

// UserDirectory resolves user contact details.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (authrepo.User, error)
}

// RequestReader resolves requests referenced by events.
type RequestReader interface {
	GetRequest(ctx context.Context, id uuid.UUID) (requestsrepo.Request, error)
}

// ServiceReader resolves service names.
type ServiceReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (catalogrepo.Service, error)
}

// Notifier dispatches emails in response to domain events.
type Notifier struct {
	users    UserDirectory
	requests RequestReader
	catalog  ServiceReader
	sender   email.Sender
	log      *logger.Logger
}

// New creates a notifier.
func New(users UserDirectory, requests RequestReader, catalog ServiceReader, sender email.Sender, log *logger.Logger) *Notifier {
	return &Notifier{users: users, requests: requests, catalog: catalog, sender: sender, log: log}
}

// Subscribe registers the notifier's event handlers on the bus.
func (n *Notifier) Subscribe(bus events.Bus) {
	bus.Subscribe(events.UserRegistered{}.EventName(), events.HandlerFunc(n.onUserRegistered))
	bus.Subscribe(events.ProfessionalVerified{}.EventName(), events.HandlerFunc(n.onProfessionalVerified))
	bus.Subscribe(events.RequestAssigned{}.EventName(), events.HandlerFunc(n.onRequestAssigned))
	bus.Subscribe(events.RequestCompleted{}.EventName(), events.HandlerFunc(n.onRequestCompleted))
	bus.Subscribe(events.RequestCancelled{}.EventName(), events.HandlerFunc(n.onRequestCancelled))
	bus.Subscribe(events.ExportReady{}.EventName(), events.HandlerFunc(n.onExportReady))
}

func (n *Notifier) onUserRegistered(ctx context.Context, event events.Event) error {
	e, ok := event.(events.UserRegistered)
	if !ok {
		return nil
	}
	user, err := n.users.GetByID(ctx, e.UserID)
	if err != nil {
		return fmt.Errorf("welcome email lookup: %w", err)
	}
	return n.sender.SendWelcomeEmail(ctx, user.Email, user.FullName, e.Role)
}

func (n *Notifier) onProfessionalVerified(ctx context.Context, event events.Event) error {
	e, ok := event.(events.ProfessionalVerified)
	if !ok {
		return nil
	}
	user, err := n.users.GetByID(ctx, e.ProfessionalID)
	if err != nil {
		return fmt.Errorf("verification email lookup: %w", err)
	}
	return n.sender.SendVerificationApprovedEmail(ctx, user.Email, user.FullName)
}

func (n *Notifier) onRequestAssigned(ctx context.Context, event events.Event) error {
	e, ok := event.(events.RequestAssigned)
	if !ok {
		return nil
	}
	customer, err := n.users.GetByID(ctx, e.CustomerID)
	if err != nil {
		return fmt.Errorf("assignment email lookup: %w", err)
	}
	return n.sender.SendRequestAssignedEmail(ctx, customer.Email, customer.FullName,
		n.serviceName(ctx, e.RequestID), e.StartTime.Format(time.RFC1123))
}

func (n *Notifier) onRequestCompleted(ctx context.Context, event events.Event) error {
	e, ok := event.(events.RequestCompleted)
	if !ok {
		return nil
	}
	customer, err := n.users.GetByID(ctx, e.CustomerID)
	if err != nil {
		return fmt.Errorf("completion email lookup: %w", err)
	}
	return n.sender.SendRequestCompletedEmail(ctx, customer.Email, customer.FullName,
		n.serviceName(ctx, e.RequestID))
}

func (n *Notifier) onRequestCancelled(ctx context.Context, event events.Event) error {
	e, ok := event.(events.RequestCancelled)
	if !ok || !e.WasAssigned || e.ProfessionalID == nil {
		return nil
	}
	professional, err := n.users.GetByID(ctx, *e.ProfessionalID)
	if err != nil {
		return fmt.Errorf("cancellation email lookup: %w", err)
	}

	scheduledAt := ""
	if req, err := n.requests.GetRequest(ctx, e.RequestID); err == nil {
		scheduledAt = req.PreferredTime.Format(time.RFC1123)
	}
	return n.sender.SendRequestCancelledEmail(ctx, professional.Email, professional.FullName, scheduledAt)
}

func (n *Notifier) onExportReady(ctx context.Context, event events.Event) error {
	e, ok := event.(events.ExportReady)
	if !ok {
		return nil
	}
	professional, err := n.users.GetByID(ctx, e.ProfessionalID)
	if err != nil {
		return fmt.Errorf("export email lookup: %w", err)
	}

	content, err := os.ReadFile(e.FilePath)
	if err != nil {
		return fmt.Errorf("export email attachment: %w", err)
	}
	return n.sender.SendExportReadyEmail(ctx, professional.Email, professional.FullName, email.Attachment{
		FileName: filepath.Base(e.FilePath),
		Content:  content,
	})
}

// serviceName resolves the service name for a request, falling back to an
// empty string; a missing name never blocks the email.
func (n *Notifier) serviceName(ctx context.Context, requestID uuid.UUID) string {
	req, err := n.requests.GetRequest(ctx, requestID)
	if err != nil {
		n.log.Warn("notification request lookup failed", "requestId", requestID, "error", err)
		return ""
	}
	svc, err := n.catalog.GetByID(ctx, req.ServiceID)
	if err != nil {
		return ""
	}
	return svc.Name
}
