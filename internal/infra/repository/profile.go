package repository

import (
	"context"

	"slotbook/internal/infra"
	"slotbook/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileRepository persists the contact details most recently used by a
// client. Runs against the pool: profile refresh is a post-commit side
// effect, never part of the booking transaction.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Upsert(ctx context.Context, profile shared.ClientProfile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO client_profiles (client_id, full_name, phone, email, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (client_id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			updated_at = EXCLUDED.updated_at
	`, profile.ClientID, profile.FullName, profile.Phone, profile.Email, profile.UpdatedAt)
	if err != nil {
		return infra.WrapRepoErr("failed to upsert client profile", err)
	}
	return nil
}
