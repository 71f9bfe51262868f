// Package service holds catalog business logic.
package service

import (
	"context"
	"strings"
	"time"

	auditrepo "github.com/vagadeeshwar/household-services-sub000/internal/audit/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/catalog/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/catalog/transport"
	"github.com/vagadeeshwar/household-services-sub000/platform/apperr"
	"github.com/vagadeeshwar/household-services-sub000/platform/logger"

	"github.com/google/uuid"
)

// Service provides business logic for the service catalog.
type Service struct {
	repo  *repository.Repository
	audit *auditrepo.Repository
	log   *logger.Logger
}

// New creates a new catalog service.
func New(repo *repository.Repository, audit *auditrepo.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, audit: audit, log: log}
}

// ListActive returns the bookable catalog.
func (s *Service) ListActive(ctx context.Context) ([]repository.Service, error) {
	return s.repo.ListActive(ctx)
}

// ListAll returns the full catalog including soft-deleted services (admin).
func (s *Service) ListAll(ctx context.Context) ([]repository.Service, error) {
	return s.repo.ListAll(ctx)
}

// GetByID retrieves one service.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (repository.Service, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds a new active service to the catalog.
func (s *Service) Create(ctx context.Context, adminID uuid.UUID, req transport.CreateServiceRequest) (repository.Service, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return repository.Service{}, apperr.Validation("service name is required")
	}

	now := time.Now().UTC()
	svc := repository.Service{
		ID:              uuid.New(),
		Name:            name,
		Description:     strings.TrimSpace(req.Description),
		PriceCents:      req.PriceCents,
		DurationMinutes: req.DurationMinutes,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, &svc); err != nil {
		return repository.Service{}, err
	}

	s.recordActivity(ctx, adminID, auditrepo.ActionServiceCreate, svc.ID, "service "+svc.Name+" created")
	s.log.Info("service created", "id", svc.ID, "name", svc.Name)
	return svc, nil
}

// Update edits a service's describable fields.
func (s *Service) Update(ctx context.Context, adminID, id uuid.UUID, req transport.UpdateServiceRequest) (repository.Service, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Service{}, err
	}

	svc.Name = strings.TrimSpace(req.Name)
	svc.Description = strings.TrimSpace(req.Description)
	svc.PriceCents = req.PriceCents
	svc.DurationMinutes = req.DurationMinutes
	svc.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, &svc); err != nil {
		return repository.Service{}, err
	}

	s.recordActivity(ctx, adminID, auditrepo.ActionServiceUpdate, svc.ID, "service "+svc.Name+" updated")
	return svc, nil
}

// Delete soft-deletes a service. Requests already referencing it keep their
// denormalized duration and remain valid.
func (s *Service) Delete(ctx context.Context, adminID, id uuid.UUID) error {
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.recordActivity(ctx, adminID, auditrepo.ActionServiceDelete, id, "service deactivated")
	return nil
}

// Restore re-activates a soft-deleted service.
func (s *Service) Restore(ctx context.Context, adminID, id uuid.UUID) error {
	if err := s.repo.SetActive(ctx, id, true); err != nil {
		return err
	}
	s.recordActivity(ctx, adminID, auditrepo.ActionServiceRestore, id, "service restored")
	return nil
}

func (s *Service) recordActivity(ctx context.Context, actorID uuid.UUID, action auditrepo.Action, targetID uuid.UUID, description string) {
	entry := auditrepo.Entry{ActorID: &actorID, Action: action, TargetID: targetID, Description: description}
	if err := s.audit.Append(ctx, entry); err != nil {
		s.log.Error("failed to record catalog activity", "action", action, "error", err)
	}
}
