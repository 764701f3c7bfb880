package queries

import (
	"context"

	"slotbook/internal/infra"
	"slotbook/internal/pkg/errs"

	"github.com/google/uuid"
)

type ProfileReadStore interface {
	FindByClientID(ctx context.Context, clientID uuid.UUID) (*ProfileView, error)
}

type ProfileQueries interface {
	// GetProfile returns the stored contact data used to pre-fill booking
	// forms. A client with no profile yet gets an empty view, not an error.
	GetProfile(ctx context.Context, clientID uuid.UUID) (*ProfileView, error)
}

type profileQueriesImpl struct {
	store ProfileReadStore
}

func NewProfileQueries(store ProfileReadStore) ProfileQueries {
	return &profileQueriesImpl{store: store}
}

func (q *profileQueriesImpl) GetProfile(ctx context.Context, clientID uuid.UUID) (*ProfileView, error) {
	view, err := q.store.FindByClientID(ctx, clientID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return &ProfileView{ClientID: clientID}, nil
		}
		return nil, errs.Mark(err, errs.ErrStorageUnavailable)
	}
	return view, nil
}
