// Package repository persists the service catalog.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vagadeeshwar/household-services-sub000/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const serviceNotFoundMessage = "service not found"

// Service is a bookable household service offered through the platform.
type Service struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	PriceCents      int64     `json:"priceCents"`
	DurationMinutes int       `json:"durationMinutes"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Repository provides database operations for the service catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const serviceColumns = `id, name, description, price_cents, duration_minutes, active, created_at, updated_at`

func scanService(row pgx.Row) (Service, error) {
	var s Service
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.PriceCents, &s.DurationMinutes,
		&s.Active, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// Create inserts a new service.
func (r *Repository) Create(ctx context.Context, s *Service) error {
	query := `
		INSERT INTO services (id, name, description, price_cents, duration_minutes, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		s.ID, s.Name, s.Description, s.PriceCents, s.DurationMinutes, s.Active, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

// GetByID retrieves a service by ID, active or not.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`
	s, err := scanService(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Service{}, apperr.NotFound(serviceNotFoundMessage)
		}
		return Service{}, fmt.Errorf("failed to get service: %w", err)
	}
	return s, nil
}

// GetActiveByID retrieves a service that is currently bookable.
func (r *Repository) GetActiveByID(ctx context.Context, id uuid.UUID) (Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1 AND active`
	s, err := scanService(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Service{}, apperr.NotFound(serviceNotFoundMessage)
		}
		return Service{}, fmt.Errorf("failed to get active service: %w", err)
	}
	return s, nil
}

// Update changes a service's describable fields.
func (r *Repository) Update(ctx context.Context, s *Service) error {
	query := `
		UPDATE services SET name = $2, description = $3, price_cents = $4,
			duration_minutes = $5, updated_at = $6
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		s.ID, s.Name, s.Description, s.PriceCents, s.DurationMinutes, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(serviceNotFoundMessage)
	}
	return nil
}

// SetActive soft-deletes (false) or restores (true) a service. Existing
// requests referencing the service are untouched.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE services SET active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to set service active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(serviceNotFoundMessage)
	}
	return nil
}

// ListActive returns all bookable services ordered by name.
func (r *Repository) ListActive(ctx context.Context) ([]Service, error) {
	return r.list(ctx, `SELECT `+serviceColumns+` FROM services WHERE active ORDER BY name`)
}

// ListAll returns the full catalog, including soft-deleted entries.
func (r *Repository) ListAll(ctx context.Context) ([]Service, error) {
	return r.list(ctx, `SELECT `+serviceColumns+` FROM services ORDER BY name`)
}

func (r *Repository) list(ctx context.Context, query string) ([]Service, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, s)
	}
	return services, rows.Err()
}
