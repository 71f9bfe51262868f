// Package repository runs the read-only dashboard queries. Everything here
// is a projection over tables owned by other contexts; nothing is written.
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

// RequestCounts tallies requests by lifecycle stage. Active covers assigned
// and in_progress; Completed covers completed and closed.
type RequestCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// AdminOverview is the platform-wide dashboard card set.
type AdminOverview struct {
	TotalProfessionals    int           `json:"totalProfessionals"`
	VerifiedProfessionals int           `json:"verifiedProfessionals"`
	PendingVerifications  int           `json:"pendingVerifications"`
	TotalCustomers        int           `json:"totalCustomers"`
	ActiveCustomers       int           `json:"activeCustomers"`
	ReportedReviews       int           `json:"reportedReviews"`
	Requests              RequestCounts `json:"serviceRequests"`
}

// ProfessionalOverview is one professional's dashboard card set.
type ProfessionalOverview struct {
	Verified        bool          `json:"verified"`
	Active          bool          `json:"active"`
	AverageRating   float64       `json:"averageRating"`
	Requests        RequestCounts `json:"serviceRequests"`
	ReviewsTotal    int           `json:"reviewsTotal"`
	ReviewsReported int           `json:"reviewsReported"`
}

// CustomerOverview is one customer's dashboard card set.
type CustomerOverview struct {
	Requests     RequestCounts `json:"serviceRequests"`
	ReviewsGiven int           `json:"reviewsGiven"`
	ServicesUsed int           `json:"servicesUsed"`
}

// ProfessionalRow is the listing shape for professional detail stats.
type ProfessionalRow struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"fullName"`
	ServiceName string    `json:"serviceName"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserRow is the listing shape for recent-user detail stats.
type UserRow struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// ReviewRow is the listing shape for review detail stats.
type ReviewRow struct {
	ID         uuid.UUID `json:"id"`
	RequestID  uuid.UUID `json:"requestId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	IsReported bool      `json:"isReported"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RequestRow is the listing shape for request detail stats.
type RequestRow struct {
	ID            uuid.UUID `json:"id"`
	ServiceID     uuid.UUID `json:"serviceId"`
	CustomerID    uuid.UUID `json:"customerId"`
	Status        string    `json:"status"`
	PreferredTime time.Time `json:"preferredTime"`
	RequestedAt   time.Time `json:"requestedAt"`
}

// ServiceRow is the listing shape for the active catalog stat.
type ServiceRow struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PriceCents int       `json:"priceCents"`
}

// ReviewFilter scopes review listings. At most one of ProfessionalID and
// CustomerID is set; nil means platform-wide.
type ReviewFilter struct {
	ProfessionalID *uuid.UUID
	CustomerID     *uuid.UUID
	ReportedOnly   bool
}

// RequestFilter scopes request listings. ServiceOfProfessional selects
// unassigned requests matching that professional's service type.
type RequestFilter struct {
	CustomerID            *uuid.UUID
	ProfessionalID        *uuid.UUID
	ServiceOfProfessional *uuid.UUID
	Statuses              []string
}

// Repository provides the dashboard read queries.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new stats repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// AdminOverview computes the platform-wide counters in one round trip.
func (r *Repository) AdminOverview(ctx context.Context) (AdminOverview, error) {
	var o AdminOverview
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM professionals),
			(SELECT COUNT(*) FROM professionals WHERE verified),
			(SELECT COUNT(*) FROM professionals WHERE NOT verified),
			(SELECT COUNT(*) FROM customers),
			(SELECT COUNT(*) FROM customers c JOIN users u ON u.id = c.id WHERE u.active),
			(SELECT COUNT(*) FROM reviews WHERE is_reported),
			(SELECT COUNT(*) FROM service_requests),
			(SELECT COUNT(*) FROM service_requests WHERE status = 'created'),
			(SELECT COUNT(*) FROM service_requests WHERE status IN ('assigned', 'in_progress')),
			(SELECT COUNT(*) FROM service_requests WHERE status IN ('completed', 'closed'))`).
		Scan(&o.TotalProfessionals, &o.VerifiedProfessionals, &o.PendingVerifications,
			&o.TotalCustomers, &o.ActiveCustomers, &o.ReportedReviews,
			&o.Requests.Total, &o.Requests.Pending, &o.Requests.Active, &o.Requests.Completed)
	if err != nil {
		return AdminOverview{}, fmt.Errorf("failed to compute admin overview: %w", err)
	}
	return o, nil
}

// ProfessionalOverview computes one professional's counters.
func (r *Repository) ProfessionalOverview(ctx context.Context, professionalID uuid.UUID) (ProfessionalOverview, error) {
	var o ProfessionalOverview
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT p.verified, u.active, p.average_rating, p.review_count,
			(SELECT COUNT(*) FROM service_requests WHERE professional_id = p.id),
			(SELECT COUNT(*) FROM service_requests WHERE professional_id = p.id AND status IN ('assigned', 'in_progress')),
			(SELECT COUNT(*) FROM service_requests WHERE professional_id = p.id AND status IN ('completed', 'closed')),
			(SELECT COUNT(*) FROM reviews v JOIN service_requests sr ON sr.id = v.request_id
				WHERE sr.professional_id = p.id),
			(SELECT COUNT(*) FROM reviews v JOIN service_requests sr ON sr.id = v.request_id
				WHERE sr.professional_id = p.id AND v.is_reported)
		FROM professionals p JOIN users u ON u.id = p.id
		WHERE p.id = $1`, professionalID).
		Scan(&o.Verified, &o.Active, &o.AverageRating, &count,
			&o.Requests.Total, &o.Requests.Active, &o.Requests.Completed,
			&o.ReviewsTotal, &o.ReviewsReported)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProfessionalOverview{}, apperr.NotFound("professional profile not found")
		}
		return ProfessionalOverview{}, fmt.Errorf("failed to compute professional overview: %w", err)
	}
	o.AverageRating = rating.Aggregate{Average: o.AverageRating, Count: count}.Rounded()
	return o, nil
}

// CustomerOverview computes one customer's counters.
func (r *Repository) CustomerOverview(ctx context.Context, customerID uuid.UUID) (CustomerOverview, error) {
	var o CustomerOverview
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM service_requests WHERE customer_id = $1),
			(SELECT COUNT(*) FROM service_requests WHERE customer_id = $1 AND status = 'created'),
			(SELECT COUNT(*) FROM service_requests WHERE customer_id = $1 AND status IN ('assigned', 'in_progress')),
			(SELECT COUNT(*) FROM service_requests WHERE customer_id = $1 AND status IN ('completed', 'closed')),
			(SELECT COUNT(*) FROM reviews v JOIN service_requests sr ON sr.id = v.request_id
				WHERE sr.customer_id = $1),
			(SELECT COUNT(DISTINCT service_id) FROM service_requests WHERE customer_id = $1)`,
		customerID).
		Scan(&o.Requests.Total, &o.Requests.Pending, &o.Requests.Active, &o.Requests.Completed,
			&o.ReviewsGiven, &o.ServicesUsed)
	if err != nil {
		return CustomerOverview{}, fmt.Errorf("failed to compute customer overview: %w", err)
	}
	return o, nil
}

// PendingVerifications lists unverified professionals, newest first.
func (r *Repository) PendingVerifications(ctx context.Context, limit, offset int) ([]ProfessionalRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, u.full_name, s.name, p.verified, p.created_at
		FROM professionals p
		JOIN users u ON u.id = p.id
		JOIN services s ON s.id = p.service_id
		WHERE NOT p.verified
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending verifications: %w", err)
	}
	defer rows.Close()

	var out []ProfessionalRow
	for rows.Next() {
		var p ProfessionalRow
		if err := rows.Scan(&p.ID, &p.FullName, &p.ServiceName, &p.Verified, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan professional row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecentUsers lists users of one role, newest first.
func (r *Repository) RecentUsers(ctx context.Context, role string, limit, offset int) ([]UserRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, full_name, email, role, active, created_at
		FROM users
		WHERE role = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, role, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent users: %w", err)
	}
	defer rows.Close()

	var out []UserRow
	for rows.Next() {
		var u UserRow
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Reviews lists reviews under the given scope, newest first.
func (r *Repository) Reviews(ctx context.Context, filter ReviewFilter, limit, offset int) ([]ReviewRow, error) {
	query := `
		SELECT v.id, v.request_id, v.rating, v.comment, v.is_reported, v.created_at
		FROM reviews v
		JOIN service_requests sr ON sr.id = v.request_id
		WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if filter.ProfessionalID != nil {
		query += fmt.Sprintf(" AND sr.professional_id = $%d", idx)
		args = append(args, *filter.ProfessionalID)
		idx++
	}
	if filter.CustomerID != nil {
		query += fmt.Sprintf(" AND sr.customer_id = $%d", idx)
		args = append(args, *filter.CustomerID)
		idx++
	}
	if filter.ReportedOnly {
		query += " AND v.is_reported"
	}
	query += fmt.Sprintf(" ORDER BY v.created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var out []ReviewRow
	for rows.Next() {
		var v ReviewRow
		if err := rows.Scan(&v.ID, &v.RequestID, &v.Rating, &v.Comment, &v.IsReported, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Requests lists requests under the given scope, newest first.
func (r *Repository) Requests(ctx context.Context, filter RequestFilter, limit, offset int) ([]RequestRow, error) {
	query := `
		SELECT id, service_id, customer_id, status, preferred_time, requested_at
		FROM service_requests
		WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if filter.CustomerID != nil {
		query += fmt.Sprintf(" AND customer_id = $%d", idx)
		args = append(args, *filter.CustomerID)
		idx++
	}
	if filter.ProfessionalID != nil {
		query += fmt.Sprintf(" AND professional_id = $%d", idx)
		args = append(args, *filter.ProfessionalID)
		idx++
	}
	if filter.ServiceOfProfessional != nil {
		query += fmt.Sprintf(" AND service_id = (SELECT service_id FROM professionals WHERE id = $%d)", idx)
		args = append(args, *filter.ServiceOfProfessional)
		idx++
	}
	if len(filter.Statuses) > 0 {
		query += fmt.Sprintf(" AND status = ANY($%d)", idx)
		args = append(args, filter.Statuses)
		idx++
	}
	query += fmt.Sprintf(" ORDER BY requested_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var out []RequestRow
	for rows.Next() {
		var q RequestRow
		if err := rows.Scan(&q.ID, &q.ServiceID, &q.CustomerID, &q.Status, &q.PreferredTime, &q.RequestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan request row: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// ActiveServices lists the active catalog alphabetically.
func (r *Repository) ActiveServices(ctx context.Context, limit, offset int) ([]ServiceRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, price_cents
		FROM services
		WHERE active
		ORDER BY name
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list active services: %w", err)
	}
	defer rows.Close()

	var out []ServiceRow
	for rows.Next() {
		var s ServiceRow
		if err := rows.Scan(&s.ID, &s.Name, &s.PriceCents); err != nil {
			return nil, fmt.Errorf("failed to scan service row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
