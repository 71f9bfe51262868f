// Package repository persists professional profiles and their rating pair.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vagadeeshwar/household-services-sub000/internal/rating"
	"github.com/vagadeeshwar/household-services-sub000/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const professionalNotFoundMessage = "professional not found"

// Professional is the joined user + profile view. The stored average keeps
// full precision; AverageRating is rounded to one decimal here, at the
// presentation boundary. ReviewCount counts surviving reviews only.
type Professional struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	ServiceID       uuid.UUID `json:"serviceId"`
	ServiceName     string    `json:"serviceName"`
	ExperienceYears int       `json:"experienceYears"`
	Verified        bool      `json:"verified"`
	Active          bool      `json:"active"`
	AverageRating   float64   `json:"averageRating"`
	ReviewCount     int       `json:"reviewCount"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Repository provides database operations for professionals.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new professionals repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectProfessional = `
	SELECT p.id, u.full_name, u.email, u.phone, p.service_id, s.name,
		p.experience_years, p.verified, u.active, p.average_rating, p.review_count, p.created_at
	FROM professionals p
	JOIN users u ON u.id = p.id
	JOIN services s ON s.id = p.service_id`

func scanProfessional(row pgx.Row) (Professional, error) {
	var p Professional
	err := row.Scan(&p.ID, &p.FullName, &p.Email, &p.Phone, &p.ServiceID, &p.ServiceName,
		&p.ExperienceYears, &p.Verified, &p.Active, &p.AverageRating, &p.ReviewCount, &p.CreatedAt)
	p.AverageRating = rating.Aggregate{Average: p.AverageRating, Count: p.ReviewCount}.Rounded()
	return p, err
}

// GetByID retrieves one professional.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Professional, error) {
	p, err := scanProfessional(r.pool.QueryRow(ctx, selectProfessional+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Professional{}, apperr.NotFound(professionalNotFoundMessage)
		}
		return Professional{}, fmt.Errorf("failed to get professional: %w", err)
	}
	return p, nil
}

// ListByService returns verified, unblocked professionals offering a
// service, best rated first.
func (r *Repository) ListByService(ctx context.Context, serviceID uuid.UUID) ([]Professional, error) {
	query := selectProfessional + `
		WHERE p.service_id = $1 AND p.verified AND u.active
		ORDER BY p.average_rating DESC, p.review_count DESC`
	return r.list(ctx, query, serviceID)
}

// ListAll returns every professional, including unverified and blocked ones
// (admin view).
func (r *Repository) ListAll(ctx context.Context) ([]Professional, error) {
	return r.list(ctx, selectProfessional+` ORDER BY p.created_at DESC`)
}

func (r *Repository) list(ctx context.Context, query string, args ...interface{}) ([]Professional, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	defer rows.Close()

	var pros []Professional
	for rows.Next() {
		p, err := scanProfessional(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan professional: %w", err)
		}
		pros = append(pros, p)
	}
	return pros, rows.Err()
}

// SetVerified approves or revokes a professional.
func (r *Repository) SetVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE professionals SET verified = $2 WHERE id = $1`, id, verified)
	if err != nil {
		return fmt.Errorf("failed to set professional verified flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(professionalNotFoundMessage)
	}
	return nil
}

// SetActive blocks (false) or unblocks (true) the professional's account.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET active = $2 WHERE id = $1 AND role = 'professional'`, id, active)
	if err != nil {
		return fmt.Errorf("failed to set professional active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(professionalNotFoundMessage)
	}
	return nil
}
