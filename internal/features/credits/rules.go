// Package credits — rules.go is the credit rule engine: a pure mapping
// from (activity kind, details) to (amount, description, auto-verify).
// No side effects; deterministic for given inputs.
package credits

import (
	"fmt"
	"math"
	"strconv"

	"github.com/verdantedu/greenledger/internal/common"
)

// Evaluate applies the credit rules for one activity.
//
// Rate table:
//
//	energy_saved          1 credit per 100 kWh (floored)
//	carbon_reduced        1 credit per 10 kg CO2 (floored)
//	species_documented    2 credits
//	peer_review           2 credits
//	code_contribution     20 complex / 10 medium / 5 otherwise
//	weekly_participation  1 credit
//	streak_bonus          5 credits, auto-verified
//	anything else         details.Amount if set, else 1
//
// A computed amount of zero or less is not an error here; the ledger
// writer turns it into a no-op. Missing numeric input for the metered
// kinds is rejected with common.ErrMissingValue.
func Evaluate(kind ActivityKind, details ActivityDetails) (amount int, description string, autoVerify bool, err error) {
	switch kind {
	case ActivityEnergySaved:
		if details.Value == nil {
			return 0, "", false, fmt.Errorf("energy_saved: %w", common.ErrMissingValue)
		}
		amount = int(math.Floor(*details.Value / 100))
		description = fmt.Sprintf("Saved %s kWh of energy", formatValue(*details.Value))

	case ActivityCarbonReduced:
		if details.Value == nil {
			return 0, "", false, fmt.Errorf("carbon_reduced: %w", common.ErrMissingValue)
		}
		amount = int(math.Floor(*details.Value / 10))
		description = fmt.Sprintf("Reduced %s kg CO2", formatValue(*details.Value))

	case ActivitySpeciesDocumented:
		amount = 2
		description = fmt.Sprintf("Documented species: %s", details.SpeciesName)

	case ActivityPeerReview:
		amount = 2
		description = "Completed peer review"

	case ActivityCodeContribution:
		switch details.Complexity {
		case ComplexityComplex:
			amount = 20
		case ComplexityMedium:
			amount = 10
		default:
			amount = 5
		}
		description = fmt.Sprintf("Code contribution: %s", details.Description)

	case ActivityWeeklyParticipation:
		amount = 1
		description = "Weekly participation bonus"

	case ActivityStreakBonus:
		amount = 5
		description = "7-day activity streak bonus!"
		autoVerify = true

	default:
		// Open fallback for unrecognized kinds. Explicit negative amounts
		// are rejected; computed zeros elsewhere are the writer's no-op.
		if details.Amount < 0 {
			return 0, "", false, fmt.Errorf("%s: %w", kind, common.ErrInvalidAmount)
		}
		amount = 1
		if details.Amount != 0 {
			amount = details.Amount
		}
		description = string(kind)
		if details.Description != "" {
			description = details.Description
		}
	}

	return amount, description, autoVerify, nil
}

// formatValue renders a metered value the way it was entered: shortest
// decimal form, never scientific notation.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
