package booking

import (
	"errors"
	"time"

	"slotbook/internal/domain/schedule"

	"github.com/google/uuid"
)

var (
	ErrIllegalTransition  = errors.New("illegal status transition")
	ErrNotCancellable     = errors.New("reservation cannot be cancelled")
	ErrNotDeletable       = errors.New("only cancelled reservations may be deleted")
	ErrRescheduleInactive = errors.New("cannot reschedule an inactive reservation")
	ErrWindowMismatch     = errors.New("window length does not match service duration")
)

// Reservation is the booking aggregate. It is created only through the
// booking commands, never constructed by handler code, and its ledger entry
// reference is maintained together with its status.
type Reservation struct {
	id            uuid.UUID
	serviceID     uuid.UUID
	providerID    uuid.UUID
	clientID      uuid.UUID
	ledgerEntryID uuid.UUID
	window        schedule.TimeWindow
	status        Status
	contact       Contact
	createdAt     time.Time
	updatedAt     time.Time
}

// NewReservation builds a pending reservation for a freshly claimed ledger
// entry. The window must match the service duration exactly; window sizing is
// driven by the service, never by the caller.
func NewReservation(
	serviceID, providerID, clientID, ledgerEntryID uuid.UUID,
	window schedule.TimeWindow,
	serviceDuration time.Duration,
	contact Contact,
	now time.Time,
) (*Reservation, error) {
	if window.Duration() != serviceDuration {
		return nil, ErrWindowMismatch
	}
	return &Reservation{
		id:            uuid.New(),
		serviceID:     serviceID,
		providerID:    providerID,
		clientID:      clientID,
		ledgerEntryID: ledgerEntryID,
		window:        window,
		status:        StatusPending,
		contact:       contact,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func ReconstructReservation(
	id, serviceID, providerID, clientID, ledgerEntryID uuid.UUID,
	window schedule.TimeWindow,
	status Status,
	contact Contact,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:            id,
		serviceID:     serviceID,
		providerID:    providerID,
		clientID:      clientID,
		ledgerEntryID: ledgerEntryID,
		window:        window,
		status:        status,
		contact:       contact,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// Confirm transitions pending -> confirmed.
func (r *Reservation) Confirm(now time.Time) error {
	if !r.status.CanTransitionTo(StatusConfirmed) {
		return ErrIllegalTransition
	}
	r.status = StatusConfirmed
	r.updatedAt = now
	return nil
}

// Cancel transitions an active reservation to cancelled. Cancelling an
// already-cancelled reservation is the caller's no-op case, not handled here.
func (r *Reservation) Cancel(now time.Time) error {
	if !r.status.CanTransitionTo(StatusCancelled) {
		return ErrNotCancellable
	}
	r.status = StatusCancelled
	r.updatedAt = now
	return nil
}

// Reschedule moves an active reservation onto a newly claimed ledger entry,
// possibly with a different provider. Status resets to pending: the moved
// booking needs fresh confirmation.
func (r *Reservation) Reschedule(newEntryID, newProviderID uuid.UUID, newWindow schedule.TimeWindow, now time.Time) error {
	if !r.status.IsActive() {
		return ErrRescheduleInactive
	}
	if newWindow.Duration() != r.window.Duration() {
		return ErrWindowMismatch
	}
	r.ledgerEntryID = newEntryID
	r.providerID = newProviderID
	r.window = newWindow
	r.status = StatusPending
	r.updatedAt = now
	return nil
}

func (r *Reservation) IsActive() bool    { return r.status.IsActive() }
func (r *Reservation) IsCancelled() bool { return r.status == StatusCancelled }

func (r *Reservation) IsOwnedBy(clientID uuid.UUID) bool {
	return r.clientID == clientID
}

func (r *Reservation) ID() uuid.UUID               { return r.id }
func (r *Reservation) ServiceID() uuid.UUID        { return r.serviceID }
func (r *Reservation) ProviderID() uuid.UUID       { return r.providerID }
func (r *Reservation) ClientID() uuid.UUID         { return r.clientID }
func (r *Reservation) LedgerEntryID() uuid.UUID    { return r.ledgerEntryID }
func (r *Reservation) Window() schedule.TimeWindow { return r.window }
func (r *Reservation) Status() Status              { return r.status }
func (r *Reservation) Contact() Contact            { return r.contact }
func (r *Reservation) CreatedAt() time.Time        { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time        { return r.updatedAt }
