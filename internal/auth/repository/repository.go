// Package repository persists user accounts and their role profiles.
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

const userNotFoundMessage = "user not found"

// Possible user roles.
const (
	RoleAdmin        = "admin"
	RoleProfessional = "professional"
	RoleCustomer     = "customer"
)

// User is one account row. Exactly one role per user; the customer or
// professional profile row shares the user's id.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Phone        string    `json:"phone"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CustomerProfile is the customer-specific profile data.
type CustomerProfile struct {
	Address string
	Pincode string
}

// ProfessionalProfile is the professional-specific profile data. New
// professionals start unverified; the professionals module flips the flag.
type ProfessionalProfile struct {
	ServiceID       uuid.UUID
	ExperienceYears int
}

// Repository provides database operations for user accounts.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new auth repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, password_hash, full_name, phone, role, active, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Role, &u.Active, &u.CreatedAt)
	return u, err
}

// CreateCustomer inserts the user row and its customer profile atomically.
func (r *Repository) CreateCustomer(ctx context.Context, user User, profile CustomerProfile) error {
	return r.createWithProfile(ctx, user, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO customers (id, address, pincode) VALUES ($1, $2, $3)`,
			user.ID, profile.Address, profile.Pincode)
		return err
	})
}

// CreateProfessional inserts the user row and its professional profile
// atomically. The profile starts unverified with an empty rating pair.
func (r *Repository) CreateProfessional(ctx context.Context, user User, profile ProfessionalProfile) error {
	return r.createWithProfile(ctx, user, func(ctx context.Context, tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO professionals (id, service_id, experience_years, verified, average_rating, review_count, created_at)
			VALUES ($1, $2, $3, false, 0, 0, $4)`,
			user.ID, profile.ServiceID, profile.ExperienceYears, user.CreatedAt)
		return err
	})
}

func (r *Repository) createWithProfile(ctx context.Context, user User, insertProfile func(context.Context, pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, full_name, phone, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Email, user.PasswordHash, user.FullName, user.Phone, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("email already registered")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if err := insertProfile(ctx, tx); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound(userNotFoundMessage)
		}
		return User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, apperr.NotFound(userNotFoundMessage)
		}
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// SetActive blocks (false) or unblocks (true) a user of the given role.
// The role guard keeps the customer endpoints from touching admins.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, role string, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET active = $3 WHERE id = $1 AND role = $2`, id, role, active)
	if err != nil {
		return fmt.Errorf("failed to set user active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(userNotFoundMessage)
	}
	return nil
}

// ListCustomers returns all customer accounts (admin view).
func (r *Repository) ListCustomers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at DESC`, RoleCustomer)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func isUniqueViolation(err error) bool {
	// 23505 is the Postgres unique_violation code.
	var pgErr interface{ SQLState() string }
	return errors.As(err, &pgErr) && pgErr.SQLState() == "23505"
}
