// Package common — errors.go defines the sentinel errors shared by every
// feature package. Services and handlers match on these with errors.Is to
// tell validation failures, missing records and storage faults apart.
package common

import "errors"

// Credit rule / ledger writer errors
var (
	// ErrMissingValue — energy_saved / carbon_reduced awarded without a numeric value
	ErrMissingValue = errors.New("activity details missing required value")
	// ErrInvalidAmount — explicit amount that is zero or negative
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrUserNotFound — user id does not resolve to a known user
	ErrUserNotFound = errors.New("user not found")
)

// Entry verification errors
var (
	// ErrEntryNotFound — credit entry id does not exist
	ErrEntryNotFound = errors.New("credit entry not found")
	// ErrAlreadyVerified — verification is a one-time transition
	ErrAlreadyVerified = errors.New("credit entry already verified")
)
