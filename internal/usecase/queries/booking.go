package queries

import (
	"context"

	"slotbook/internal/domain/identity"
	"slotbook/internal/infra"
	"slotbook/internal/pkg/errs"

	"github.com/google/uuid"
)

type BookingReadStore interface {
	FindViewByID(ctx context.Context, id uuid.UUID) (*BookingView, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*BookingListItem, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, id, requestorID uuid.UUID, role identity.Role) (*BookingView, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*BookingListItem, error)
}

type bookingQueriesImpl struct {
	store BookingReadStore
}

func NewBookingQueries(store BookingReadStore) BookingQueries {
	return &bookingQueriesImpl{store: store}
}

func (q *bookingQueriesImpl) GetByID(ctx context.Context, id, requestorID uuid.UUID, role identity.Role) (*BookingView, error) {
	view, err := q.store.FindViewByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrBookingNotFound)
		}
		return nil, errs.Mark(err, errs.ErrStorageUnavailable)
	}

	// Other clients' bookings read as not-found rather than forbidden, so ids
	// cannot be probed.
	if view.ClientID != requestorID && !role.CanOverrideOwnership() {
		return nil, errs.ErrBookingNotFound
	}
	return view, nil
}

func (q *bookingQueriesImpl) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*BookingListItem, error) {
	items, err := q.store.ListByClient(ctx, clientID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStorageUnavailable)
	}
	return items, nil
}
