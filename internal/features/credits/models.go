// Package credits implements the credit ledger: the rules that turn an
// activity into a credit amount and the writer that appends ledger entries
// while keeping user balances consistent.
// models.go describes the ledger structures.
package credits

import (
	"time"

	"github.com/google/uuid"
)

// ActivityKind identifies how credits were earned. The enumeration is
// closed for known kinds; unrecognized strings fall through to the open
// fallback rule.
type ActivityKind string

const (
	ActivityEnergySaved         ActivityKind = "energy_saved"
	ActivityCarbonReduced       ActivityKind = "carbon_reduced"
	ActivitySpeciesDocumented   ActivityKind = "species_documented"
	ActivityPeerReview          ActivityKind = "peer_review"
	ActivityCodeContribution    ActivityKind = "code_contribution"
	ActivityWeeklyParticipation ActivityKind = "weekly_participation"
	// ActivityStreakBonus is internal: only the streak detector awards it.
	ActivityStreakBonus ActivityKind = "streak_bonus"
)

// Code contribution complexity levels. Anything else counts as simple.
const (
	ComplexitySimple  = "simple"
	ComplexityMedium  = "medium"
	ComplexityComplex = "complex"
)

// ActivityDetails carries the optional inputs a rule may consume.
// Value is a pointer so "absent" is distinguishable from 0 — energy and
// carbon awards without a value are rejected rather than coerced.
type ActivityDetails struct {
	Value       *float64   `json:"value,omitempty"`
	SpeciesName string     `json:"speciesName,omitempty"`
	Complexity  string     `json:"complexity,omitempty"`
	Description string     `json:"description,omitempty"`
	Amount      int        `json:"amount,omitempty"`
	ProjectID   *uuid.UUID `json:"projectId,omitempty"`
	AutoVerify  bool       `json:"autoVerify,omitempty"`
}

// CreditEntry is one row of the append-only ledger.
// Entries are never mutated after creation except the verification pair
// (VerifiedBy / IsVerified), which transitions unset→set exactly once.
// Entries are never deleted; they are the audit trail behind every balance.
type CreditEntry struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	UserID       uuid.UUID    `db:"user_id" json:"userId"`
	ProjectID    *uuid.UUID   `db:"project_id" json:"projectId,omitempty"`
	ActivityKind ActivityKind `db:"activity_kind" json:"activityKind"`
	Amount       int          `db:"amount" json:"amount"`
	Description  string       `db:"description" json:"description"`
	VerifiedBy   *uuid.UUID   `db:"verified_by" json:"verifiedBy,omitempty"`
	IsVerified   bool         `db:"is_verified" json:"isVerified"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
}

// AwardResult is the outcome of one ledger writer call.
// Success=false with a Message is the no-credit case, not an error.
type AwardResult struct {
	Success        bool         `json:"success"`
	CreditsAwarded int          `json:"creditsAwarded,omitempty"`
	Entry          *CreditEntry `json:"entry,omitempty"`
	Message        string       `json:"message,omitempty"`
}
