package commands

import (
	"context"
	"time"

	"slotbook/internal/domain/identity"
	"slotbook/internal/usecase/shared"

	"github.com/google/uuid"
)

// Requestor is the authenticated session acting on a booking. The core
// receives it as an explicit parameter; it never reads ambient session state.
type Requestor struct {
	ClientID uuid.UUID
	Email    string
	Role     identity.Role
}

// CanActOn reports whether the requestor may mutate a booking owned by
// ownerID (self, or an operator/admin override).
func (r Requestor) CanActOn(ownerID uuid.UUID) bool {
	return r.ClientID == ownerID || r.Role.CanOverrideOwnership()
}

type ContactParams struct {
	Name  string
	Phone string
	Email string
	Note  string
}

type CreateBookingParams struct {
	ServiceID  uuid.UUID
	ProviderID uuid.UUID
	Start      time.Time
	End        time.Time
	Contact    ContactParams
}

type RescheduleParams struct {
	// ProviderID of the newly selected candidate window; uuid.Nil keeps the
	// current provider.
	ProviderID uuid.UUID
	Start      time.Time
	End        time.Time
}

// ProfileStore is the external profile collaborator: contact snapshots are
// pre-filled from it and it is refreshed after a successful booking. Not
// required for ledger correctness, so all writes are post-commit best-effort.
type ProfileStore interface {
	Upsert(ctx context.Context, profile shared.ClientProfile) error
}

// AvailabilityInvalidator drops cached candidate lists for a service/date
// after a mutation commits. A nil invalidator means caching is disabled;
// either way staleness is already bounded by the cache TTL, so invalidation
// is best-effort and never fails a command.
type AvailabilityInvalidator interface {
	Invalidate(ctx context.Context, serviceID uuid.UUID, date time.Time)
}
