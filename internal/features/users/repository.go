// Package users — repository.go performs all operations on the users table.
// Each method runs one SQL statement and returns the result or an error.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/verdantedu/greenledger/internal/common"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, email, first_name, last_name, class_type, role,
       total_credits, is_active, created_at, updated_at`

// Create inserts a new user. The id is generated here if unset.
func (r *Repository) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	query := `
		INSERT INTO users (id, email, first_name, last_name, class_type, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		u.ID, u.Email, u.FirstName, u.LastName, u.ClassType, u.Role, u.IsActive,
	)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetByID returns a user or common.ErrUserNotFound.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var u User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.ClassType, &u.Role,
		&u.TotalCredits, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", id, common.ErrUserNotFound)
		}
		return nil, fmt.Errorf("reading user %s: %w", id, err)
	}
	return &u, nil
}

func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking user existence: %w", err)
	}
	return exists, nil
}

// TopStudents returns students ordered by total credits descending,
// optionally filtered by class track. Ties resolve by creation order then
// id, so the ordering is stable and deterministic.
func (r *Repository) TopStudents(ctx context.Context, classType ClassType, limit int) ([]*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE role = 'student' AND ($1 = '' OR class_type = $1)
		ORDER BY total_credits DESC, created_at ASC, id ASC
		LIMIT $2`
	rows, err := r.db.Query(ctx, query, string(classType), limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.ClassType, &u.Role,
			&u.TotalCredits, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		out = append(out, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading leaderboard rows: %w", err)
	}
	return out, nil
}

// CountStudentsWithMoreCredits counts students whose balance is strictly
// greater than total. Rank is this count plus one, so tied users share a
// rank.
func (r *Repository) CountStudentsWithMoreCredits(ctx context.Context, total int) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE role = 'student' AND total_credits > $1`
	var n int
	if err := r.db.QueryRow(ctx, query, total).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting higher-ranked students: %w", err)
	}
	return n, nil
}
