// Package users manages program participants: students, instructors and
// admins. models.go describes the users table structures.
package users

import (
	"time"

	"github.com/google/uuid"
)

// ClassType is the class track a student belongs to.
type ClassType string

const (
	ClassEngineering ClassType = "engineering"
	ClassLandUse     ClassType = "land_use"
	ClassBoth        ClassType = "both"
)

// Role distinguishes students from instructors and admins.
// Only students appear on leaderboards and in rank computation.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// User represents one account in the database.
// TotalCredits is the running balance derived from the credit ledger; it is
// mutated only by the ledger writer, inside the same transaction that
// appends the corresponding entry.
type User struct {
	ID           uuid.UUID `db:"id"`
	Email        string    `db:"email"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	ClassType    ClassType `db:"class_type"`
	Role         Role      `db:"role"`
	TotalCredits int       `db:"total_credits"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// DisplayName returns "First Last" for presentation.
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}
