package readstore

import (
	"context"
	"errors"

	"slotbook/internal/infra"
	"slotbook/internal/infra/db"
	"slotbook/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProfileReadStore struct {
	dbtx db.DBTX
}

func NewProfileReadStore(dbtx db.DBTX) *ProfileReadStore {
	return &ProfileReadStore{dbtx: dbtx}
}

func (s *ProfileReadStore) FindByClientID(ctx context.Context, clientID uuid.UUID) (*queries.ProfileView, error) {
	var view queries.ProfileView
	err := s.dbtx.QueryRow(ctx, `
		SELECT client_id, full_name, phone, email
		FROM client_profiles
		WHERE client_id = $1
	`, clientID).Scan(&view.ClientID, &view.FullName, &view.Phone, &view.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("profile not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find profile", err)
	}
	return &view, nil
}
