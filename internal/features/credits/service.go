// Package credits — service.go is the ledger writer. It orchestrates rule
// evaluation, the atomic append+increment, and entry verification.
package credits

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/verdantedu/greenledger/internal/common"
	"github.com/verdantedu/greenledger/internal/observability"
)

// Store is the ledger + balance storage the writer needs. The pgx
// Repository implements it; tests inject an in-memory double.
type Store interface {
	// Append must apply the entry insert and the balance increment as one
	// atomic unit, with the increment free of lost updates under
	// concurrent awards.
	Append(ctx context.Context, e *CreditEntry) error
	Verify(ctx context.Context, entryID, verifierID uuid.UUID) error
}

// UserDirectory resolves user ids. Unknown users fail an award instead of
// silently creating orphan ledger rows.
type UserDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service is the ledger writer. Stateless; all storage is injected.
type Service struct {
	store Store
	users UserDirectory
	now   func() time.Time
}

func NewService(store Store, users UserDirectory) *Service {
	return &Service{store: store, users: users, now: time.Now}
}

// WithClock overrides the time source. Tests use it to pin entry
// timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Award evaluates the rules for one activity and, when the computed amount
// is positive, appends a ledger entry and increments the user's balance in
// the same transaction. A non-positive amount is a no-op: no entry, no
// balance change, Success=false with a message.
func (s *Service) Award(ctx context.Context, userID uuid.UUID, kind ActivityKind, details ActivityDetails) (*AwardResult, error) {
	amount, description, autoVerify, err := Evaluate(kind, details)
	if err != nil {
		observability.AwardFailures.Inc()
		return nil, err
	}

	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		observability.AwardFailures.Inc()
		return nil, fmt.Errorf("resolving user: %w", err)
	}
	if !exists {
		observability.AwardFailures.Inc()
		return nil, fmt.Errorf("award for %s: %w", userID, common.ErrUserNotFound)
	}

	if amount <= 0 {
		observability.AwardNoops.Inc()
		log.WithFields(log.Fields{
			"user_id":       userID,
			"activity_kind": kind,
		}).Debug("No credits awarded")
		return &AwardResult{Success: false, Message: "no credits awarded"}, nil
	}

	entry := &CreditEntry{
		ID:           uuid.New(),
		UserID:       userID,
		ProjectID:    details.ProjectID,
		ActivityKind: kind,
		Amount:       amount,
		Description:  description,
		IsVerified:   autoVerify || details.AutoVerify,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.store.Append(ctx, entry); err != nil {
		observability.AwardFailures.Inc()
		return nil, fmt.Errorf("appending ledger entry: %w", err)
	}

	observability.CreditsAwarded.WithLabelValues(string(kind)).Add(float64(amount))
	log.WithFields(log.Fields{
		"user_id":       userID,
		"activity_kind": kind,
		"amount":        amount,
	}).Info("Credits awarded")

	return &AwardResult{
		Success:        true,
		CreditsAwarded: amount,
		Entry:          entry,
		Message:        "Awarded " + common.FormatCredits(amount),
	}, nil
}

// VerifyEntry records an authority confirmation on an entry. The
// transition happens at most once; repeat calls surface
// common.ErrAlreadyVerified.
func (s *Service) VerifyEntry(ctx context.Context, entryID, verifierID uuid.UUID) error {
	if err := s.store.Verify(ctx, entryID, verifierID); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"entry_id":    entryID,
		"verifier_id": verifierID,
	}).Info("Entry verified")
	return nil
}
