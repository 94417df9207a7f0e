package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrValidation           = errors.New("validation failed")
	ErrDuplicate            = errors.New("already exists")
	ErrConflict             = errors.New("concurrent modification")
	ErrChurchSuspended      = errors.New("church suspended")
	ErrSubscriptionInactive = errors.New("subscription inactive")

	ErrBatchFinalized        = errors.New("batch is finalized")
	ErrBatchNotOpen          = errors.New("batch is not open")
	ErrInvalidTransition     = errors.New("invalid batch status transition")
	ErrAttestationIncomplete = errors.New("batch requires primary and secondary attestation")
	ErrAttestorsNotDistinct  = errors.New("primary and secondary attestors must be different people")
	ErrEmptyBatch            = errors.New("batch has no donations")
)

// Invalid builds an ErrValidation error naming the offending field.
func Invalid(field, message string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, message)
}
