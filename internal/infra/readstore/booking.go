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

type BookingReadStore struct {
	dbtx db.DBTX
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{dbtx: dbtx}
}

func (s *BookingReadStore) FindViewByID(ctx context.Context, id uuid.UUID) (*queries.BookingView, error) {
	var view queries.BookingView
	err := s.dbtx.QueryRow(ctx, `
		SELECT r.id, r.service_id, s.name, r.provider_id, p.name, r.client_id,
			r.start_time, r.end_time, r.status,
			r.contact_name, r.contact_phone, r.contact_email, r.contact_note,
			r.created_at, r.updated_at
		FROM reservations r
		JOIN services s ON s.id = r.service_id
		JOIN providers p ON p.id = r.provider_id
		WHERE r.id = $1
	`, id).Scan(
		&view.ID, &view.ServiceID, &view.ServiceName,
		&view.ProviderID, &view.ProviderName, &view.ClientID,
		&view.Start, &view.End, &view.Status,
		&view.ContactName, &view.ContactPhone, &view.ContactEmail, &view.ContactNote,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("booking not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find booking view", err)
	}
	return &view, nil
}

func (s *BookingReadStore) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*queries.BookingListItem, error) {
	rows, err := s.dbtx.Query(ctx, `
		SELECT r.id, s.name, p.name, r.start_time, r.end_time, r.status, r.created_at
		FROM reservations r
		JOIN services s ON s.id = r.service_id
		JOIN providers p ON p.id = r.provider_id
		WHERE r.client_id = $1
		ORDER BY r.start_time DESC
	`, clientID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list bookings", err)
	}
	defer rows.Close()

	items := []*queries.BookingListItem{}
	for rows.Next() {
		var item queries.BookingListItem
		if err := rows.Scan(
			&item.ID, &item.ServiceName, &item.ProviderName,
			&item.Start, &item.End, &item.Status, &item.CreatedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking list item", err)
		}
		items = append(items, &item)
	}
	if rows.Err() != nil {
		return nil, infra.WrapRepoErr("failed to iterate bookings", rows.Err())
	}
	return items, nil
}
