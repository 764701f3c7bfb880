package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Catalog errors
	ErrServiceNotFound  = errors.New("service not found")
	ErrProviderNotFound = errors.New("provider not found")

	// Booking errors
	ErrBookingNotFound      = errors.New("booking not found")
	ErrSlotUnavailable      = errors.New("slot unavailable")
	ErrInvalidTimeWindow    = errors.New("invalid time window")
	ErrInvalidContact       = errors.New("invalid contact data")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrProviderNotQualified = errors.New("provider not qualified for service")
	ErrBookingNotDeletable  = errors.New("only cancelled bookings can be deleted")

	// Infrastructure errors
	ErrStorageUnavailable   = errors.New("storage unavailable")
	ErrConsistencyViolation = errors.New("ledger consistency violation")

	// Auth errors
	ErrUnauthenticated = errors.New("unauthenticated")
)
