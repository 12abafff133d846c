// Package credits — repository.go performs all operations on the
// credit_entries table and the balance column it derives into.
// The append path runs entry insert and balance increment in ONE database
// transaction: a reader never sees one without the other, and the increment
// happens in SQL so concurrent awards cannot lose updates.
package credits

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verdantedu/greenledger/internal/common"
)

// Repository persists ledger entries and maintains users.total_credits.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Append writes one ledger entry and bumps the owner's balance by the same
// amount, atomically. If the user row is missing the whole transaction
// rolls back and common.ErrUserNotFound is returned.
func (r *Repository) Append(ctx context.Context, e *CreditEntry) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning award transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO credit_entries
			(id, user_id, project_id, activity_kind, amount, description, is_verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.UserID, e.ProjectID, e.ActivityKind, e.Amount, e.Description, e.IsVerified, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting ledger entry: %w", err)
	}

	// Atomic in-SQL increment; never read-modify-write in application code.
	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET total_credits = total_credits + $2, updated_at = NOW()
		WHERE id = $1
	`, e.UserID, e.Amount)
	if err != nil {
		return fmt.Errorf("incrementing balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("incrementing balance for %s: %w", e.UserID, common.ErrUserNotFound)
	}

	return tx.Commit(ctx)
}

// Verify marks an entry verified by the given verifier. The WHERE clause
// enforces the one-time transition; a second call fails with
// common.ErrAlreadyVerified.
func (r *Repository) Verify(ctx context.Context, entryID, verifierID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE credit_entries
		SET verified_by = $2, is_verified = TRUE
		WHERE id = $1 AND is_verified = FALSE
	`, entryID, verifierID)
	if err != nil {
		return fmt.Errorf("verifying entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM credit_entries WHERE id = $1)`, entryID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("checking entry existence: %w", err)
		}
		if !exists {
			return common.ErrEntryNotFound
		}
		return common.ErrAlreadyVerified
	}
	return nil
}

// CountByUser returns the all-time number of ledger entries for a user,
// regardless of verification status.
func (r *Repository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM credit_entries WHERE user_id = $1`, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// SumByUserSince sums entry amounts with created_at >= since.
func (r *Repository) SumByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var sum int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM credit_entries WHERE user_id = $1 AND created_at >= $2`,
		userID, since,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("summing entries: %w", err)
	}
	return sum, nil
}

// TimestampsByUserSince returns the creation times of a user's entries in
// the window, newest first. The streak detector reduces these to distinct
// calendar days.
func (r *Repository) TimestampsByUserSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]time.Time, error) {
	rows, err := r.db.Query(ctx,
		`SELECT created_at FROM credit_entries WHERE user_id = $1 AND created_at >= $2 ORDER BY created_at DESC`,
		userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("querying entry timestamps: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning timestamp: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading timestamps: %w", err)
	}
	return out, nil
}

// ListByUser returns the most recent entries for a user.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*CreditEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, project_id, activity_kind, amount, description,
		       verified_by, is_verified, created_at
		FROM credit_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var out []*CreditEntry
	for rows.Next() {
		var e CreditEntry
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.ProjectID, &e.ActivityKind, &e.Amount,
			&e.Description, &e.VerifiedBy, &e.IsVerified, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}
	return out, nil
}

// ActiveStudentIDsSince returns the ids of students with at least one
// entry in the window. The background sweeps only target students;
// instructors and admins can hold ledger entries but never receive
// participation or streak bonuses.
func (r *Repository) ActiveStudentIDsSince(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT e.user_id
		FROM credit_entries e
		JOIN users u ON u.id = e.user_id
		WHERE u.role = 'student' AND e.created_at >= $1
	`, since)
	if err != nil {
		return nil, fmt.Errorf("querying active students: %w", err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning user id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading active students: %w", err)
	}
	return out, nil
}
