// Package service holds professional administration business logic.
package service

import (
	"context"

	auditrepo "github.com/vagadeeshwar/household-services-sub000/internal/audit/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/events"
	"github.com/vagadeeshwar/household-services-sub000/internal/professionals/repository"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"

	"github.com/google/uuid"
)

// Service provides verification and blocking of professionals plus the
// public listing.
type Service struct {
	repo  *repository.Repository
	audit *auditrepo.Repository
	bus   events.Bus
	log   *logger.Logger
}

// New creates a new professionals service.
func New(repo *repository.Repository, audit *auditrepo.Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, audit: audit, bus: bus, log: log}
}

// GetByID retrieves one professional with the rating pair.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (repository.Professional, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByService lists verified professionals for a service, best rated
// first.
func (s *Service) ListByService(ctx context.Context, serviceID uuid.UUID) ([]repository.Professional, error) {
	return s.repo.ListByService(ctx, serviceID)
}

// ListAll returns every professional for the admin dashboard.
func (s *Service) ListAll(ctx context.Context) ([]repository.Professional, error) {
	return s.repo.ListAll(ctx)
}

// Verify approves a professional so they can accept requests.
func (s *Service) Verify(ctx context.Context, adminID, id uuid.UUID) error {
	pro, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetVerified(ctx, id, true); err != nil {
		return err
	}

	s.recordActivity(ctx, adminID, auditrepo.ActionProfessionalVerify, id, "professional verified")
	s.bus.Publish(ctx, events.ProfessionalVerified{
		BaseEvent:      events.NewBaseEvent(),
		ProfessionalID: id,
		Email:          pro.Email,
	})
	s.log.Info("professional verified", "id", id)
	return nil
}

// Block deactivates a professional's account. Their already-assigned
// requests are untouched.
func (s *Service) Block(ctx context.Context, adminID, id uuid.UUID) error {
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}

	s.recordActivity(ctx, adminID, auditrepo.ActionProfessionalBlock, id, "professional blocked")
	s.bus.Publish(ctx, events.ProfessionalBlocked{
		BaseEvent:      events.NewBaseEvent(),
		ProfessionalID: id,
	})
	return nil
}

// Unblock reactivates a professional's account.
func (s *Service) Unblock(ctx context.Context, adminID, id uuid.UUID) error {
	if err := s.repo.SetActive(ctx, id, true); err != nil {
		return err
	}
	s.recordActivity(ctx, adminID, auditrepo.ActionProfessionalUnblock, id, "professional unblocked")
	return nil
}

func (s *Service) recordActivity(ctx context.Context, actorID uuid.UUID, action auditrepo.Action, targetID uuid.UUID, description string) {
	entry := auditrepo.Entry{ActorID: &actorID, Action: action, TargetID: targetID, Description: description}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.log.Error("failed to record professional activity", "action", action, "error", err)
	}
}
