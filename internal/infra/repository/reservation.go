package repository

import (
	"context"
	"errors"
	"time"

	"slotbook/internal/domain/booking"
	"slotbook/internal/domain/schedule"
	"slotbook/internal/infra"
	"slotbook/internal/infra/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReservationRepository struct {
	dbtx db.DBTX
}

func NewReservationRepository(dbtx db.DBTX) *ReservationRepository {
	return &ReservationRepository{dbtx: dbtx}
}

func (r *ReservationRepository) Create(ctx context.Context, res *booking.Reservation) error {
	contact := res.Contact()
	_, err := r.dbtx.Exec(ctx, `
		INSERT INTO reservations
			(id, service_id, provider_id, client_id, ledger_entry_id,
			 start_time, end_time, status,
			 contact_name, contact_phone, contact_email, contact_note,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		res.ID(), res.ServiceID(), res.ProviderID(), res.ClientID(), res.LedgerEntryID(),
		res.Window().Start(), res.Window().End(), res.Status().String(),
		contact.Name(), contact.Phone(), contact.Email(), contact.Note(),
		res.CreatedAt(), res.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create reservation", err)
	}
	return nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *booking.Reservation) error {
	contact := res.Contact()
	tag, err := r.dbtx.Exec(ctx, `
		UPDATE reservations
		SET provider_id = $2,
			ledger_entry_id = $3,
			start_time = $4,
			end_time = $5,
			status = $6,
			contact_name = $7,
			contact_phone = $8,
			contact_email = $9,
			contact_note = $10,
			updated_at = $11
		WHERE id = $1
	`,
		res.ID(), res.ProviderID(), res.LedgerEntryID(),
		res.Window().Start(), res.Window().End(), res.Status().String(),
		contact.Name(), contact.Phone(), contact.Email(), contact.Note(),
		res.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.dbtx.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *ReservationRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*booking.Reservation, error) {
	row := r.dbtx.QueryRow(ctx, `
		SELECT id, service_id, provider_id, client_id, ledger_entry_id,
			start_time, end_time, status,
			contact_name, contact_phone, contact_email, contact_note,
			created_at, updated_at
		FROM reservations
		WHERE id = $1
		FOR UPDATE
	`, id)
	return scanReservation(row)
}

func scanReservation(row pgx.Row) (*booking.Reservation, error) {
	var (
		id, serviceID, providerID, clientID, ledgerEntryID uuid.UUID
		start, end, createdAt, updatedAt                   time.Time
		status                                             string
		name, phone, email, note                           string
	)
	err := row.Scan(
		&id, &serviceID, &providerID, &clientID, &ledgerEntryID,
		&start, &end, &status,
		&name, &phone, &email, &note,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan reservation", err)
	}

	window, err := schedule.NewTimeWindow(start, end)
	if err != nil {
		return nil, infra.WrapRepoErr("stored reservation window invalid", err)
	}
	st, err := booking.NewStatus(status)
	if err != nil {
		return nil, infra.WrapRepoErr("stored reservation status invalid", err)
	}

	return booking.ReconstructReservation(
		id, serviceID, providerID, clientID, ledgerEntryID,
		window, st,
		booking.ReconstructContact(name, phone, email, note),
		createdAt, updatedAt,
	), nil
}
