package schedule

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEntryNotHeld   = errors.New("ledger entry is not held")
	ErrEntryNotFound  = errors.New("ledger entry not found")
	ErrWindowConflict = errors.New("window conflicts with a held or occupied entry")
)

// EntryState is the lifecycle state of a persisted ledger entry.
//
// open     — the window is free to claim
// held     — claimed by an in-progress booking transaction
// occupied — bound to an active reservation
//
// held normally only exists inside a transaction (claim and bind commit
// together); a held row visible outside one is a crash leftover and is swept
// at startup.
type EntryState string

const (
	EntryOpen     EntryState = "open"
	EntryHeld     EntryState = "held"
	EntryOccupied EntryState = "occupied"
)

func (s EntryState) IsValid() bool {
	switch s {
	case EntryOpen, EntryHeld, EntryOccupied:
		return true
	default:
		return false
	}
}

// Blocks reports whether an entry in this state excludes other claims on
// overlapping windows.
func (s EntryState) Blocks() bool {
	return s == EntryHeld || s == EntryOccupied
}

// LedgerEntry is the persisted record of a window's booking state. The
// reservation back-reference is set exactly while the entry is occupied.
type LedgerEntry struct {
	ID            uuid.UUID
	ProviderID    uuid.UUID
	StartTime     time.Time
	EndTime       time.Time
	State         EntryState
	ReservationID *uuid.UUID
	UpdatedAt     time.Time
}

func (e LedgerEntry) Window() TimeWindow {
	w, _ := NewTimeWindow(e.StartTime, e.EndTime)
	return w
}

// CheckPairing validates the entry's state against whether an active
// reservation currently references it.
func (e LedgerEntry) CheckPairing(hasActiveReservation bool) error {
	switch e.State {
	case EntryOccupied:
		if e.ReservationID == nil || !hasActiveReservation {
			return ErrOrphanedEntry
		}
	default:
		if hasActiveReservation {
			return ErrStalePairing
		}
	}
	return nil
}

var (
	ErrOrphanedEntry = errors.New("occupied ledger entry without an active reservation")
	ErrStalePairing  = errors.New("active reservation references a non-occupied ledger entry")
)
