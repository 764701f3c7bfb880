package shared

import (
	"context"

	"slotbook/internal/domain/booking"
	"slotbook/internal/domain/schedule"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: full read-write transaction for booking commands, with retry on
	// serialization failures. Any error from fn rolls everything back.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: snapshot reads outside a transaction, for validation that
	// does not need to hold locks.
	CommandReads() CommandReads
}

type Tx interface {
	Ledger() LedgerRepository
	Reservations() ReservationRepository
	Outbox() OutboxRepository
	Reads() CommandReads
}

// LedgerRepository is the only component allowed to transition a window
// between open, held and occupied.
type LedgerRepository interface {
	// Claim atomically reserves [window) for the provider: it serializes per
	// (provider, date), re-checks that no held/occupied entry overlaps, and
	// inserts a held entry. Insert success implies non-overlap. A lost race
	// surfaces as a conflict-kind repository error.
	Claim(ctx context.Context, providerID uuid.UUID, window schedule.TimeWindow) (uuid.UUID, error)
	// Release transitions held/occupied back to open and clears the
	// reservation back-reference. Releasing an open entry is a no-op.
	Release(ctx context.Context, entryID uuid.UUID) error
	// Bind transitions held -> occupied, stamping the back-reference. Fails
	// with schedule.ErrEntryNotHeld unless the entry is currently held.
	Bind(ctx context.Context, entryID, reservationID uuid.UUID) error
	FindEntry(ctx context.Context, entryID uuid.UUID) (*schedule.LedgerEntry, error)
	// CountActiveReservations returns how many pending/confirmed reservations
	// reference the entry. Exactly one is required for an occupied entry.
	CountActiveReservations(ctx context.Context, entryID uuid.UUID) (int, error)
}

type ReservationRepository interface {
	Create(ctx context.Context, res *booking.Reservation) error
	Update(ctx context.Context, res *booking.Reservation) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindByIDForUpdate loads the aggregate with a row lock so concurrent
	// cancel/reschedule on the same reservation serialize.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*booking.Reservation, error)
}

type OutboxRepository interface {
	// Enqueue inserts a notification intent in the same transaction as the
	// booking mutation (transactional outbox). Delivery happens elsewhere.
	Enqueue(ctx context.Context, job OutboxJob) error
}

type CommandReads interface {
	ServiceByID(ctx context.Context, id uuid.UUID) (*ServiceSnapshot, error)
	ProviderByID(ctx context.Context, id uuid.UUID) (*ProviderSnapshot, error)
	// QualifiedProviderIDs returns the explicit qualification rows for the
	// service; empty means every provider qualifies (documented fallback).
	QualifiedProviderIDs(ctx context.Context, serviceID uuid.UUID) ([]uuid.UUID, error)
}
