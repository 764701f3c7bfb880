package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"slotbook/internal/domain/booking"
	"slotbook/internal/domain/catalog"
	"slotbook/internal/domain/schedule"
	"slotbook/internal/infra"
	"slotbook/internal/pkg/clock"
	"slotbook/internal/pkg/errs"
	"slotbook/internal/usecase/queries"
	"slotbook/internal/usecase/shared"

	"github.com/google/uuid"
)

type BookingCommands interface {
	CreateBooking(ctx context.Context, req Requestor, params CreateBookingParams) (*queries.BookingView, error)
	CancelBooking(ctx context.Context, req Requestor, bookingID uuid.UUID) (*queries.BookingView, error)
	RescheduleBooking(ctx context.Context, req Requestor, bookingID uuid.UUID, params RescheduleParams) (*queries.BookingView, error)
	ConfirmBooking(ctx context.Context, req Requestor, bookingID uuid.UUID) (*queries.BookingView, error)
	DeleteBooking(ctx context.Context, req Requestor, bookingID uuid.UUID) error
}

type bookingCommandsImpl struct {
	uow      shared.UnitOfWork
	views    queries.BookingReadStore
	profiles ProfileStore
	cache    AvailabilityInvalidator
	clock    clock.Clock
}

func NewBookingCommands(
	uow shared.UnitOfWork,
	views queries.BookingReadStore,
	profiles ProfileStore,
	cache AvailabilityInvalidator,
	clk clock.Clock,
) BookingCommands {
	return &bookingCommandsImpl{
		uow:      uow,
		views:    views,
		profiles: profiles,
		cache:    cache,
		clock:    clk,
	}
}

// CreateBooking claims the window, creates the reservation and binds the two
// in one transaction; notification intents ride in the same commit
// (transactional outbox) so they can neither be lost nor roll a booking back.
func (c *bookingCommandsImpl) CreateBooking(ctx context.Context, req Requestor, params CreateBookingParams) (*queries.BookingView, error) {
	window, err := schedule.NewTimeWindow(params.Start, params.End)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidTimeWindow)
	}

	contact, err := booking.NewContact(params.Contact.Name, params.Contact.Phone, params.Contact.Email, params.Contact.Note)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidContact)
	}

	reads := c.uow.CommandReads()
	svc, err := c.serviceFor(ctx, reads, params.ServiceID, window)
	if err != nil {
		return nil, err
	}
	if err := c.checkProvider(ctx, reads, params.ServiceID, params.ProviderID); err != nil {
		return nil, err
	}

	now := c.clock.Now()
	var bookingID uuid.UUID
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		entryID, err := tx.Ledger().Claim(ctx, params.ProviderID, window)
		if err != nil {
			return classifyClaimErr(err)
		}

		res, err := booking.NewReservation(
			svc.ID, params.ProviderID, req.ClientID, entryID,
			window, svc.Duration(), contact, now,
		)
		if err != nil {
			return errs.Mark(err, errs.ErrInvalidTimeWindow)
		}

		if err := tx.Reservations().Create(ctx, res); err != nil {
			return errs.Mark(err, errs.ErrStorageUnavailable)
		}
		if err := tx.Ledger().Bind(ctx, entryID, res.ID()); err != nil {
			return errs.Mark(err, errs.ErrStorageUnavailable)
		}
		if err := verifyPairing(ctx, tx, entryID); err != nil {
			return err
		}

		if err := enqueueIntents(ctx, tx, res, shared.KindBookingCreated, now); err != nil {
			return errs.Mark(err, errs.ErrStorageUnavailable)
		}

		bookingID = res.ID()
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit side effects are best-effort: the booking is already
	// successful and must not be reported as failed.
	c.refreshProfile(ctx, req.ClientID, contact)
	c.invalidateCandidates(ctx, svc.ID, window.Date())

	return c.readBack(ctx, bookingID)
}

// CancelBooking releases the ledger entry together with the status flip.
// Cancelling an already-cancelled booking is a no-op that returns the current
// state.
func (c *bookingCommandsImpl) CancelBooking(ctx context.Context, req Requestor, bookingID uuid.UUID) (*queries.BookingView, error) {
	now := c.clock.Now()
	var released *booking.Reservation
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := c.loadOwned(ctx, tx, req, bookingID)
		if err != nil {
			return err
		}
		if res.IsCancelled() {
			return nil
		}

		if err := res.Cancel(now); err != nil {
			return errs.Mark(err, errs.ErrInvalidTransition)
		}
		if err := tx.Reservations().Update(ctx, res); err != nil {
			return errs.Mark(err, errs.ErrStorageUnavailable)
		}
		if err := tx.Ledger().Release(ctx, res.LedgerEntryID()); err != nil {
			return errs.Mark(err, errs.ErrStorageUnavailable)
		}
		released = res
		return enqueueOrStorageErr(ctx, tx, res, shared.KindBookingCancelled, now)
	})
	if err != nil {
		return nil, err
	}
	if released != nil {
		c.invalidateCandidates(ctx, released.ServiceID(), released.Window().Date())
	}
	return c.readBack(ctx, bookingID)
}

// RescheduleBooking claims the new window BEFORE releasing the old entry: a
// failed claim rolls the transaction back with the original reservation fully
// intact, so a client can never lose the old slot without gaining the new one.
func (c *bookingCommandsImpl) RescheduleBooking(ctx context.Context, req Requestor, bookingID uuid.UUID, params RescheduleParams) (*queries.BookingView, error) {
	newWindow, err := schedule.NewTimeWindow(params.Start, params.End)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrInvalidTimeWindow)
	}

	now := c.clock.Now()
	var movedSvc uuid.UUID
	var oldDate time.Time
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := c.loadOwned(ctx, tx, req, bookingID)
		if err != nil {
			return err
		}
		if !res.IsActive() {
			return errs.ErrInvalidTransition
		}
		movedSvc, oldDate = res.ServiceID(), res.Window().Date()

		providerID := params.ProviderID
		if providerID == uuid.Nil {
			providerID = res.ProviderID()
		}
		if providerID != res.ProviderID() {
			if err := c.checkProvider(ctx, tx.Reads(), res.ServiceID(), providerID); err != nil {
				return err
			}
		}

		newEntryID, err := tx.Ledger().Claim(ctx, providerID, newWindow)
		if err != nil {
			return classifyClaimErr(err)
		}

		oldEntryID := res.LedgerEntryID()
		if err := tx.Ledger().Release(ctx, oldEntryID); err != nil {
			return errs.Mark(err, errs.ErrStorageUnavailable)
		}
		if err := res.Reschedule(newEntryID, providerID, newWindow, now); err != nil {
			return errs.Mark(err, errs.ErrInvalidTransition)
		}
		if err := tx.Ledger().Bind(ctx, newEntryID, res.ID()); err != nil {
			return errs.Mark(err, errs.ErrStorageUnavailable)
		}
		if err := tx.Reservations().Update(ctx, res); err != nil {
			return errs.Mark(err, errs.ErrStorageUnavailable)
		}
		if err := verifyPairing(ctx, tx, newEntryID); err != nil {
			return err
		}
		return enqueueOrStorageErr(ctx, tx, res, shared.KindBookingRescheduled, now)
	})
	if err != nil {
		return nil, err
	}
	c.invalidateCandidates(ctx, movedSvc, oldDate, newWindow.Date())
	return c.readBack(ctx, bookingID)
}

func (c *bookingCommandsImpl) ConfirmBooking(ctx context.Context, req Requestor, bookingID uuid.UUID) (*queries.BookingView, error) {
	now := c.clock.Now()
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := c.loadOwned(ctx, tx, req, bookingID)
		if err != nil {
			return err
		}
		if err := res.Confirm(now); err != nil {
			return errs.Mark(err, errs.ErrInvalidTransition)
		}
		if err := tx.Reservations().Update(ctx, res); err != nil {
			return errs.Mark(err, errs.ErrStorageUnavailable)
		}
		return enqueueOrStorageErr(ctx, tx, res, shared.KindBookingConfirmed, now)
	})
	if err != nil {
		return nil, err
	}
	return c.readBack(ctx, bookingID)
}

// DeleteBooking hard-deletes a booking. Only legal in the cancelled state —
// the ledger entry was already released at cancel time, so no ledger work.
func (c *bookingCommandsImpl) DeleteBooking(ctx context.Context, req Requestor, bookingID uuid.UUID) error {
	return c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		res, err := c.loadOwned(ctx, tx, req, bookingID)
		if err != nil {
			return err
		}
		if !res.IsCancelled() {
			return errs.ErrBookingNotDeletable
		}
		if err := tx.Reservations().Delete(ctx, res.ID()); err != nil {
			return errs.Mark(err, errs.ErrStorageUnavailable)
		}
		return nil
	})
}

func (c *bookingCommandsImpl) serviceFor(ctx context.Context, reads shared.CommandReads, serviceID uuid.UUID, window schedule.TimeWindow) (*shared.ServiceSnapshot, error) {
	svc, err := reads.ServiceByID(ctx, serviceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrServiceNotFound)
		}
		return nil, errs.Mark(err, errs.ErrStorageUnavailable)
	}
	if window.Duration() != svc.Duration() {
		return nil, errs.ErrInvalidTimeWindow
	}
	return svc, nil
}

func (c *bookingCommandsImpl) checkProvider(ctx context.Context, reads shared.CommandReads, serviceID, providerID uuid.UUID) error {
	if _, err := reads.ProviderByID(ctx, providerID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return errs.Mark(err, errs.ErrProviderNotFound)
		}
		return errs.Mark(err, errs.ErrStorageUnavailable)
	}
	qualified, err := reads.QualifiedProviderIDs(ctx, serviceID)
	if err != nil {
		return errs.Mark(err, errs.ErrStorageUnavailable)
	}
	if !catalog.IsQualified(providerID, qualified) {
		return errs.ErrProviderNotQualified
	}
	return nil
}

func (c *bookingCommandsImpl) loadOwned(ctx context.Context, tx shared.Tx, req Requestor, bookingID uuid.UUID) (*booking.Reservation, error) {
	res, err := tx.Reservations().FindByIDForUpdate(ctx, bookingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrBookingNotFound)
		}
		return nil, errs.Mark(err, errs.ErrStorageUnavailable)
	}
	// Foreign bookings read as not-found so ids cannot be probed.
	if !req.CanActOn(res.ClientID()) {
		return nil, errs.ErrBookingNotFound
	}
	return res, nil
}

func (c *bookingCommandsImpl) readBack(ctx context.Context, bookingID uuid.UUID) (*queries.BookingView, error) {
	view, err := c.views.FindViewByID(ctx, bookingID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStorageUnavailable)
	}
	return view, nil
}

func (c *bookingCommandsImpl) refreshProfile(ctx context.Context, clientID uuid.UUID, contact booking.Contact) {
	if c.profiles == nil {
		return
	}
	profile := shared.ClientProfile{
		ClientID:  clientID,
		FullName:  contact.Name(),
		Phone:     contact.Phone(),
		Email:     contact.Email(),
		UpdatedAt: c.clock.Now(),
	}
	if err := c.profiles.Upsert(ctx, profile); err != nil {
		slog.Warn("profile refresh after booking failed", "client_id", clientID, "error", err.Error())
	}
}

func (c *bookingCommandsImpl) invalidateCandidates(ctx context.Context, serviceID uuid.UUID, dates ...time.Time) {
	if c.cache == nil {
		return
	}
	for _, date := range dates {
		c.cache.Invalidate(ctx, serviceID, date)
	}
}

// classifyClaimErr maps ledger claim failures onto the caller-facing
// taxonomy: a lost race is recoverable by re-querying candidates, a lock
// timeout or broken connection is retryable with identical arguments.
func classifyClaimErr(err error) error {
	switch {
	case infra.IsKind(err, infra.KindConflict):
		return errs.Mark(err, errs.ErrSlotUnavailable)
	case infra.IsKind(err, infra.KindTimeout):
		return errs.Mark(err, errs.ErrStorageUnavailable)
	default:
		return errs.Mark(err, errs.ErrStorageUnavailable)
	}
}

// verifyPairing asserts, before commit, that the occupied entry is
// referenced by exactly one active reservation. A violation aborts the
// transaction and is escalated; it is never patched.
func verifyPairing(ctx context.Context, tx shared.Tx, entryID uuid.UUID) error {
	count, err := tx.Ledger().CountActiveReservations(ctx, entryID)
	if err != nil {
		return errs.Mark(err, errs.ErrStorageUnavailable)
	}
	if count != 1 {
		slog.Error("ledger entry pairing violated, aborting booking",
			"entry_id", entryID, "active_reservations", count)
		return errs.Mark(errs.Newf("entry %s referenced by %d active reservations", entryID, count), errs.ErrConsistencyViolation)
	}
	return nil
}

func enqueueIntents(ctx context.Context, tx shared.Tx, res *booking.Reservation, kind string, now time.Time) error {
	payload, err := intentPayload(res, kind)
	if err != nil {
		return err
	}
	for _, audience := range []shared.Audience{shared.AudienceClient, shared.AudienceOwner} {
		job := shared.OutboxJob{
			ReservationID: res.ID(),
			Audience:      audience,
			Kind:          kind,
			Payload:       payload,
			RunAt:         now,
		}
		if err := tx.Outbox().Enqueue(ctx, job); err != nil {
			return err
		}
	}
	return nil
}

func enqueueOrStorageErr(ctx context.Context, tx shared.Tx, res *booking.Reservation, kind string, now time.Time) error {
	if err := enqueueIntents(ctx, tx, res, kind, now); err != nil {
		return errs.Mark(err, errs.ErrStorageUnavailable)
	}
	return nil
}

func intentPayload(res *booking.Reservation, kind string) ([]byte, error) {
	return json.Marshal(map[string]any{
		"booking_id":  res.ID(),
		"service_id":  res.ServiceID(),
		"provider_id": res.ProviderID(),
		"client_id":   res.ClientID(),
		"start":       res.Window().Start().Format(time.RFC3339),
		"end":         res.Window().End().Format(time.RFC3339),
		"status":      res.Status().String(),
		"type":        kind,
	})
}
