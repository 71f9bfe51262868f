package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	auditrepo "github.com/vagadeeshwar/household-services-sub000/internal/audit/repository"
	"github.com/vagadeeshwar/household-services-sub000/internal/availability"
	"github.com/vagadeeshwar/household-services-sub000/internal/rating"
	"github.com/vagadeeshwar/household-services-sub000/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	requestNotFoundMessage = "service request not found"
	reviewNotFoundMessage  = "review not found"
)

// Repository provides database operations for service requests. Every
// lifecycle mutation runs in a single transaction that takes the request
// row lock, re-checks the guard, applies the change and appends the
// activity entry; a failed guard rolls everything back.
type Repository struct {
	pool  *pgxpool.Pool
	audit *auditrepo.Repository
}

// New creates a new requests repository.
func New(pool *pgxpool.Pool, audit *auditrepo.Repository) *Repository {
	return &Repository{pool: pool, audit: audit}
}

const requestColumns = `id, service_id, customer_id, professional_id, status, requested_at,
	preferred_time, duration_minutes, assigned_at, completed_at, description, remarks`

func scanRequest(row pgx.Row) (Request, error) {
	var r Request
	err := row.Scan(&r.ID, &r.ServiceID, &r.CustomerID, &r.ProfessionalID, &r.Status,
		&r.RequestedAt, &r.PreferredTime, &r.DurationMinutes, &r.AssignedAt, &r.CompletedAt,
		&r.Description, &r.Remarks)
	return r, err
}

// inTx runs fn inside a transaction, committing on nil error.
func (r *Repository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) lockRequest(ctx context.Context, tx pgx.Tx, id uuid.UUID) (Request, error) {
	req, err := scanRequest(tx.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM service_requests WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, apperr.NotFound(requestNotFoundMessage)
		}
		return Request{}, fmt.Errorf("failed to lock request: %w", err)
	}
	return req, nil
}

// CreateRequest inserts a request and its audit entry atomically.
func (r *Repository) CreateRequest(ctx context.Context, req *Request, entry auditrepo.Entry) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO service_requests (`+requestColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			req.ID, req.ServiceID, req.CustomerID, req.ProfessionalID, req.Status,
			req.RequestedAt, req.PreferredTime, req.DurationMinutes, req.AssignedAt,
			req.CompletedAt, req.Description, req.Remarks)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		return r.audit.AppendTx(ctx, tx, entry)
	})
}

// GetRequest retrieves a request by id.
func (r *Repository) GetRequest(ctx context.Context, id uuid.UUID) (Request, error) {
	req, err := scanRequest(r.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM service_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Request{}, apperr.NotFound(requestNotFoundMessage)
		}
		return Request{}, fmt.Errorf("failed to get request: %w", err)
	}
	return req, nil
}

// UpdateIfCreated edits the editable fields while the request is still
// unassigned.
func (r *Repository) UpdateIfCreated(ctx context.Context, req Request, entry auditrepo.Entry) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		current, err := r.lockRequest(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		if current.Status != StatusCreated {
			return apperr.InvalidTransition("request can only be edited while awaiting assignment")
		}

		_, err = tx.Exec(ctx, `
			UPDATE service_requests
			SET preferred_time = $2, duration_minutes = $3, description = $4
			WHERE id = $1`,
			req.ID, req.PreferredTime, req.DurationMinutes, req.Description)
		if err != nil {
			return fmt.Errorf("failed to update request: %w", err)
		}
		return r.audit.AppendTx(ctx, tx, entry)
	})
}

// AssignIfCreated atomically assigns a professional to a created request.
// Inside the transaction it locks the professional row, verifies the
// professional may take the work, and re-runs the overlap check so two
// concurrent accepts can never double-book a window. Exactly one caller
// wins; losers see InvalidTransition (already assigned) or Conflict
// (overlapping booking).
func (r *Repository) AssignIfCreated(ctx context.Context, requestID, professionalID uuid.UUID, entry auditrepo.Entry) (Request, error) {
	var assigned Request
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		req, err := r.lockRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if req.Status != StatusCreated {
			return apperr.InvalidTransition("request is no longer available")
		}

		var serviceID uuid.UUID
		var verified, active bool
		err = tx.QueryRow(ctx, `
			SELECT p.service_id, p.verified, u.active
			FROM professionals p JOIN users u ON u.id = p.id
			WHERE p.id = $1
			FOR UPDATE OF p`, professionalID).Scan(&serviceID, &verified, &active)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("professional not found")
			}
			return fmt.Errorf("failed to lock professional: %w", err)
		}
		if !verified || !active {
			return apperr.Forbidden("professional is not verified")
		}
		if serviceID != req.ServiceID {
			return apperr.Forbidden("professional does not offer this service")
		}

		// Overlap re-check under the professional lock.
		var conflictID uuid.UUID
		err = tx.QueryRow(ctx, `
			SELECT id FROM service_requests
			WHERE professional_id = $1
			  AND status IN ('assigned', 'in_progress')
			  AND preferred_time < $3
			  AND preferred_time + (duration_minutes || ' minutes')::interval > $2
			LIMIT 1`,
			professionalID, req.PreferredTime, req.WindowEnd()).Scan(&conflictID)
		if err == nil {
			return apperr.Conflict("professional is already booked for this window").
				WithDetails(map[string]string{"conflictingRequestId": conflictID.String()})
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to check overlap: %w", err)
		}

		now := time.Now().UTC()
		_, err = tx.Exec(ctx, `
			UPDATE service_requests
			SET status = $2, professional_id = $3, assigned_at = $4
			WHERE id = $1 AND status = 'created'`,
			requestID, StatusAssigned, professionalID, now)
		if err != nil {
			return fmt.Errorf("failed to assign request: %w", err)
		}

		req.Status = StatusAssigned
		req.ProfessionalID = &professionalID
		req.AssignedAt = &now
		assigned = req
		return r.audit.AppendTx(ctx, tx, entry)
	})
	return assigned, err
}

// Transition moves a request along one lifecycle edge. The from status is
// re-checked under the row lock.
func (r *Repository) Transition(ctx context.Context, requestID uuid.UUID, from, to Status, entry auditrepo.Entry) (Request, error) {
	var updated Request
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		req, err := r.lockRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if req.Status != from {
			return apperr.InvalidTransition(
				fmt.Sprintf("request is %s, expected %s", req.Status, from))
		}

		_, err = tx.Exec(ctx, `
			UPDATE service_requests SET status = $2 WHERE id = $1`, requestID, to)
		if err != nil {
			return fmt.Errorf("failed to transition request: %w", err)
		}

		req.Status = to
		updated = req
		return r.audit.AppendTx(ctx, tx, entry)
	})
	return updated, err
}

// CompleteWork finishes an in_progress request, recording the completion
// time and the professional's closing remarks in one write.
func (r *Repository) CompleteWork(ctx context.Context, requestID uuid.UUID, remarks string, entry auditrepo.Entry) (Request, error) {
	var updated Request
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		req, err := r.lockRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if req.Status != StatusInProgress {
			return apperr.InvalidTransition(
				fmt.Sprintf("request is %s, expected %s", req.Status, StatusInProgress))
		}

		now := time.Now().UTC()
		_, err = tx.Exec(ctx, `
			UPDATE service_requests
			SET status = $2, completed_at = $3, remarks = $4
			WHERE id = $1`,
			requestID, StatusCompleted, now, remarks)
		if err != nil {
			return fmt.Errorf("failed to complete request: %w", err)
		}

		req.Status = StatusCompleted
		req.CompletedAt = &now
		req.Remarks = remarks
		updated = req
		return r.audit.AppendTx(ctx, tx, entry)
	})
	return updated, err
}

// CancelIfOpen cancels a request that has not started yet. Returns the
// status the request held before cancellation.
func (r *Repository) CancelIfOpen(ctx context.Context, requestID uuid.UUID, entry auditrepo.Entry) (Request, Status, error) {
	var cancelled Request
	var previous Status
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		req, err := r.lockRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if !CanTransition(req.Status, StatusCancelled) {
			return apperr.InvalidTransition(
				fmt.Sprintf("request in status %s cannot be cancelled", req.Status))
		}

		_, err = tx.Exec(ctx,
			`UPDATE service_requests SET status = $2 WHERE id = $1`, requestID, StatusCancelled)
		if err != nil {
			return fmt.Errorf("failed to cancel request: %w", err)
		}

		previous = req.Status
		req.Status = StatusCancelled
		cancelled = req
		return r.audit.AppendTx(ctx, tx, entry)
	})
	return cancelled, previous, err
}

// CloseWithReview closes a completed request and attaches the customer's
// review, folding the rating into the professional's aggregate. The unique
// constraint on reviews.request_id makes a second submission a conflict.
func (r *Repository) CloseWithReview(ctx context.Context, requestID uuid.UUID, review Review, closeEntry, reviewEntry auditrepo.Entry) (Request, error) {
	var closed Request
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		req, err := r.lockRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if req.Status != StatusCompleted {
			return apperr.InvalidTransition("only completed requests can be closed")
		}
		if req.ProfessionalID == nil {
			return apperr.Internal("completed request has no professional")
		}

		_, err = tx.Exec(ctx,
			`UPDATE service_requests SET status = $2 WHERE id = $1`, requestID, StatusClosed)
		if err != nil {
			return fmt.Errorf("failed to close request: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO reviews (id, request_id, rating, comment, is_reported, report_reason, created_at)
			VALUES ($1, $2, $3, $4, false, '', $5)`,
			review.ID, review.RequestID, review.Rating, review.Comment, review.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return apperr.Conflict("review already submitted for this request")
			}
			return fmt.Errorf("failed to insert review: %w", err)
		}

		if err := r.applyRating(ctx, tx, *req.ProfessionalID, review.Rating, true); err != nil {
			return err
		}

		req.Status = StatusClosed
		closed = req
		if err := r.audit.AppendTx(ctx, tx, closeEntry); err != nil {
			return err
		}
		return r.audit.AppendTx(ctx, tx, reviewEntry)
	})
	return closed, err
}

// GetReview retrieves a review by id, joined with the owning request.
func (r *Repository) GetReview(ctx context.Context, reviewID uuid.UUID) (Review, Request, error) {
	var rev Review
	var req Request
	err := r.pool.QueryRow(ctx, `
		SELECT v.id, v.request_id, v.rating, v.comment, v.is_reported, v.report_reason, v.created_at,
			`+prefixedRequestColumns("r")+`
		FROM reviews v JOIN service_requests r ON r.id = v.request_id
		WHERE v.id = $1`, reviewID).Scan(
		&rev.ID, &rev.RequestID, &rev.Rating, &rev.Comment, &rev.IsReported, &rev.ReportReason, &rev.CreatedAt,
		&req.ID, &req.ServiceID, &req.CustomerID, &req.ProfessionalID, &req.Status,
		&req.RequestedAt, &req.PreferredTime, &req.DurationMinutes, &req.AssignedAt, &req.CompletedAt,
		&req.Description, &req.Remarks)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Review{}, Request{}, apperr.NotFound(reviewNotFoundMessage)
		}
		return Review{}, Request{}, fmt.Errorf("failed to get review: %w", err)
	}
	return rev, req, nil
}

// SetReviewReported flags or clears the reported state of a review.
func (r *Repository) SetReviewReported(ctx context.Context, reviewID uuid.UUID, reported bool, reason string, entry auditrepo.Entry) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE reviews SET is_reported = $2, report_reason = $3 WHERE id = $1`,
			reviewID, reported, reason)
		if err != nil {
			return fmt.Errorf("failed to update review report state: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound(reviewNotFoundMessage)
		}
		return r.audit.AppendTx(ctx, tx, entry)
	})
}

// RemoveReview deletes a review and rolls its rating out of the
// professional's aggregate. Returns the removed review.
func (r *Repository) RemoveReview(ctx context.Context, reviewID uuid.UUID, entry auditrepo.Entry) (Review, uuid.UUID, error) {
	var removed Review
	var professionalID uuid.UUID
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			SELECT v.id, v.request_id, v.rating, v.comment, v.is_reported, v.report_reason, v.created_at, r.professional_id
			FROM reviews v JOIN service_requests r ON r.id = v.request_id
			WHERE v.id = $1
			FOR UPDATE OF v`, reviewID).Scan(
			&removed.ID, &removed.RequestID, &removed.Rating, &removed.Comment,
			&removed.IsReported, &removed.ReportReason, &removed.CreatedAt, &professionalID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound(reviewNotFoundMessage)
			}
			return fmt.Errorf("failed to lock review: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, reviewID); err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}

		if err := r.applyRating(ctx, tx, professionalID, removed.Rating, false); err != nil {
			return err
		}
		return r.audit.AppendTx(ctx, tx, entry)
	})
	return removed, professionalID, err
}

// applyRating updates the professional's (average, count) pair under the
// professional row lock. add=false removes a previously counted rating.
func (r *Repository) applyRating(ctx context.Context, tx pgx.Tx, professionalID uuid.UUID, score int, add bool) error {
	var agg rating.Aggregate
	err := tx.QueryRow(ctx,
		`SELECT average_rating, review_count FROM professionals WHERE id = $1 FOR UPDATE`,
		professionalID).Scan(&agg.Average, &agg.Count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("professional not found")
		}
		return fmt.Errorf("failed to lock professional aggregate: %w", err)
	}

	if add {
		agg, err = agg.Add(score)
	} else {
		agg, err = agg.Remove(score)
	}
	if err != nil {
		return err
	}

	// The unrounded average is what gets stored; feeding a rounded value
	// back into the incremental update would compound the rounding error.
	// Rounding to one decimal happens where the value is presented.
	_, err = tx.Exec(ctx,
		`UPDATE professionals SET average_rating = $2, review_count = $3 WHERE id = $1`,
		professionalID, agg.Average, agg.Count)
	if err != nil {
		return fmt.Errorf("failed to update professional aggregate: %w", err)
	}
	return nil
}

// ListByCustomer returns a customer's requests, newest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, filter ListFilter) ([]Request, error) {
	query := `SELECT ` + requestColumns + ` FROM service_requests WHERE customer_id = $1`
	args := []interface{}{customerID}
	idx := 2

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, filter.Status)
		idx++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND preferred_time >= $%d", idx)
		args = append(args, *filter.From)
		idx++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND preferred_time < $%d", idx)
		args = append(args, *filter.To)
		idx++
	}

	query += " ORDER BY requested_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" LIMIT $%d", idx)
	args = append(args, limit)
	idx++
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", idx)
		args = append(args, filter.Offset)
	}

	return r.listRequests(ctx, query, args...)
}

// CountByCustomerStatus tallies the customer's requests per status for the
// dashboard summary.
func (r *Repository) CountByCustomerStatus(ctx context.Context, customerID uuid.UUID) (map[Status]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM service_requests
		WHERE customer_id = $1
		GROUP BY status`, customerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to count service requests", err)
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var status Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to scan request count", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to count service requests", err)
	}
	return counts, nil
}

// ListByProfessional returns requests for a professional's dashboard view.
// The available view shows unassigned requests matching the professional's
// service; the others filter the professional's own assignments.
func (r *Repository) ListByProfessional(ctx context.Context, professionalID uuid.UUID, view string) ([]Request, error) {
	switch view {
	case ViewAvailable:
		return r.listRequests(ctx, `
			SELECT `+requestColumns+` FROM service_requests
			WHERE status = 'created'
			  AND service_id = (SELECT service_id FROM professionals WHERE id = $1)
			ORDER BY preferred_time`, professionalID)
	case ViewOngoing:
		return r.listRequests(ctx, `
			SELECT `+requestColumns+` FROM service_requests
			WHERE professional_id = $1 AND status IN ('assigned', 'in_progress')
			ORDER BY preferred_time`, professionalID)
	case ViewCompleted:
		return r.listRequests(ctx, `
			SELECT `+requestColumns+` FROM service_requests
			WHERE professional_id = $1 AND status IN ('completed', 'closed')
			ORDER BY completed_at DESC`, professionalID)
	case ViewAll, "":
		return r.listRequests(ctx, `
			SELECT `+requestColumns+` FROM service_requests
			WHERE professional_id = $1
			ORDER BY requested_at DESC`, professionalID)
	default:
		return nil, apperr.BadRequest("unknown view")
	}
}

// ListCompletedByProfessional returns finished work for CSV exports,
// oldest first.
func (r *Repository) ListCompletedByProfessional(ctx context.Context, professionalID uuid.UUID) ([]Request, error) {
	return r.listRequests(ctx, `
		SELECT `+requestColumns+` FROM service_requests
		WHERE professional_id = $1 AND status IN ('completed', 'closed')
		ORDER BY completed_at`, professionalID)
}

func (r *Repository) listRequests(ctx context.Context, query string, args ...interface{}) ([]Request, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// ActiveBookings implements availability.BookingSource.
func (r *Repository) ActiveBookings(ctx context.Context, professionalID uuid.UUID) ([]availability.Booking, error) {
	return r.listBookings(ctx, `
		SELECT id, professional_id, preferred_time,
			preferred_time + (duration_minutes || ' minutes')::interval, status
		FROM service_requests
		WHERE professional_id = $1 AND status IN ('assigned', 'in_progress')`,
		professionalID)
}

// BookingsInRange implements availability.BookingSource. Closed requests
// render the same as completed ones.
func (r *Repository) BookingsInRange(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]availability.Booking, error) {
	return r.listBookings(ctx, `
		SELECT id, professional_id, preferred_time,
			preferred_time + (duration_minutes || ' minutes')::interval, status
		FROM service_requests
		WHERE professional_id = $1
		  AND status IN ('assigned', 'in_progress', 'completed', 'closed')
		  AND preferred_time < $3
		  AND preferred_time + (duration_minutes || ' minutes')::interval > $2`,
		professionalID, from, to)
}

func (r *Repository) listBookings(ctx context.Context, query string, args ...interface{}) ([]availability.Booking, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []availability.Booking
	for rows.Next() {
		var b availability.Booking
		if err := rows.Scan(&b.RequestID, &b.ProfessionalID, &b.StartTime, &b.EndTime, &b.Status); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		if b.Status == string(StatusClosed) {
			b.Status = string(StatusCompleted)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func prefixedRequestColumns(alias string) string {
	return alias + `.id, ` + alias + `.service_id, ` + alias + `.customer_id, ` + alias + `.professional_id, ` +
		alias + `.status, ` + alias + `.requested_at, ` + alias + `.preferred_time, ` + alias + `.duration_minutes, ` +
		alias + `.assigned_at, ` + alias + `.completed_at, ` + alias + `.description, ` + alias + `.remarks`
}

func isUniqueViolation(err error) bool {
	// 23505 is the Postgres unique_violation code.
	var pgErr interface{ SQLState() string }
	return errors.As(err, &pgErr) && pgErr.SQLState() == "23505"
}
