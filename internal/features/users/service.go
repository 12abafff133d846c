// Package users — service.go contains the account business logic.
// Registration and authentication live in an external system; this service
// only covers what the credit engine needs: lookup, existence checks and
// seeding accounts.
package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Service manages program participants.
type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new account with a zero balance.
// Class type and role default to engineering / student when unset.
func (s *Service) Register(ctx context.Context, u *User) error {
	if u.ClassType == "" {
		u.ClassType = ClassEngineering
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	u.IsActive = true

	if err := s.repo.Create(ctx, u); err != nil {
		return fmt.Errorf("registering user: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id": u.ID,
		"name":    u.DisplayName(),
		"role":    u.Role,
	}).Info("User registered")
	return nil
}

// GetByID returns the user or common.ErrUserNotFound.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Exists reports whether the user id resolves to an account.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, id)
}
