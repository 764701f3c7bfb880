package readstore

import (
	"context"
	"errors"

	"slotbook/internal/domain/catalog"
	"slotbook/internal/infra"
	"slotbook/internal/infra/db"
	"slotbook/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CatalogReadStore backs the write-side validation reads.
type CatalogReadStore struct {
	dbtx db.DBTX
}

func NewCatalogReadStore(dbtx db.DBTX) *CatalogReadStore {
	return &CatalogReadStore{dbtx: dbtx}
}

func (s *CatalogReadStore) ServiceByID(ctx context.Context, id uuid.UUID) (*shared.ServiceSnapshot, error) {
	return serviceSnapshotByID(ctx, s.dbtx, id)
}

func (s *CatalogReadStore) ProviderByID(ctx context.Context, id uuid.UUID) (*shared.ProviderSnapshot, error) {
	var (
		providerID uuid.UUID
		name       string
	)
	err := s.dbtx.QueryRow(ctx, `
		SELECT id, name FROM providers WHERE id = $1
	`, id).Scan(&providerID, &name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("provider not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find provider", err)
	}
	provider, err := catalog.NewProvider(providerID, name)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid provider row", err)
	}
	return &shared.ProviderSnapshot{ID: provider.ID(), Name: provider.Name()}, nil
}

// serviceSnapshotByID rehydrates the catalog aggregate so a stored row that
// violates its invariants surfaces as an error instead of flowing into a
// booking.
func serviceSnapshotByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*shared.ServiceSnapshot, error) {
	var (
		serviceID   uuid.UUID
		name        string
		durationMin int
		priceCents  int64
		category    string
	)
	err := dbtx.QueryRow(ctx, `
		SELECT id, name, duration_min, price_cents, category
		FROM services
		WHERE id = $1
	`, id).Scan(&serviceID, &name, &durationMin, &priceCents, &category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("service not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find service", err)
	}
	svc, err := catalog.NewService(serviceID, name, durationMin, priceCents, category)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid service row", err)
	}
	return &shared.ServiceSnapshot{
		ID:          svc.ID(),
		Name:        svc.Name(),
		DurationMin: svc.DurationMin(),
		PriceCents:  svc.PriceCents(),
		Category:    svc.Category(),
	}, nil
}

func (s *CatalogReadStore) QualifiedProviderIDs(ctx context.Context, serviceID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.dbtx.Query(ctx, `
		SELECT provider_id FROM provider_services WHERE service_id = $1
	`, serviceID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list qualified providers", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan provider id", err)
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, infra.WrapRepoErr("failed to iterate qualified providers", rows.Err())
	}
	return ids, nil
}
