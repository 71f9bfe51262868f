package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides database operations for the activity log. The table is
// append-only: this type exposes no update or delete operations.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new activity log repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const insertQuery = `
	INSERT INTO activity_log (id, actor_id, action, target_id, description, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

// Append records one activity entry.
func (r *Repository) Append(ctx context.Context, entry Entry) error {
	entry = withDefaults(entry)
	_, err := r.pool.Exec(ctx, insertQuery,
		entry.ID, entry.ActorID, entry.Action, entry.TargetID, entry.Description, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append activity entry: %w", err)
	}
	return nil
}

// AppendTx records one activity entry inside an existing transaction, so a
// lifecycle mutation and its audit record commit or roll back together.
func (r *Repository) AppendTx(ctx context.Context, tx pgx.Tx, entry Entry) error {
	entry = withDefaults(entry)
	_, err := tx.Exec(ctx, insertQuery,
		entry.ID, entry.ActorID, entry.Action, entry.TargetID, entry.Description, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append activity entry: %w", err)
	}
	return nil
}

// List returns activity entries matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Entry, error) {
	query := `SELECT id, actor_id, action, target_id, description, created_at
		FROM activity_log WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if filter.ActorID != nil {
		query += fmt.Sprintf(" AND actor_id = $%d", idx)
		args = append(args, *filter.ActorID)
		idx++
	}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", idx)
		args = append(args, filter.Action)
		idx++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", idx)
		args = append(args, *filter.From)
		idx++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at < $%d", idx)
		args = append(args, *filter.To)
		idx++
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query += fmt.Sprintf(" LIMIT $%d", idx)
	args = append(args, limit)
	idx++
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", idx)
		args = append(args, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.TargetID, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func withDefaults(entry Entry) Entry {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return entry
}
