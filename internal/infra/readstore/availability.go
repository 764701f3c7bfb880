package readstore

import (
	"context"
	"time"

	"slotbook/internal/domain/catalog"
	"slotbook/internal/domain/schedule"
	"slotbook/internal/infra"
	"slotbook/internal/infra/db"
	"slotbook/internal/usecase/shared"

	"github.com/google/uuid"
)

// AvailabilityReadStore serves the candidate calculator from committed rows
// only. It takes no locks.
type AvailabilityReadStore struct {
	dbtx db.DBTX
}

func NewAvailabilityReadStore(dbtx db.DBTX) *AvailabilityReadStore {
	return &AvailabilityReadStore{dbtx: dbtx}
}

func (s *AvailabilityReadStore) ServiceByID(ctx context.Context, id uuid.UUID) (*shared.ServiceSnapshot, error) {
	return serviceSnapshotByID(ctx, s.dbtx, id)
}

// ProvidersForService returns providers qualified for the service. The
// qualification policy itself lives in the catalog package: with no
// qualification rows at all for the service, every provider qualifies.
func (s *AvailabilityReadStore) ProvidersForService(ctx context.Context, serviceID uuid.UUID) ([]shared.ProviderSnapshot, error) {
	rows, err := s.dbtx.Query(ctx, `SELECT id, name FROM providers ORDER BY name`)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list providers", err)
	}
	defer rows.Close()

	var all []*catalog.Provider
	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, infra.WrapRepoErr("failed to scan provider", err)
		}
		p, err := catalog.NewProvider(id, name)
		if err != nil {
			return nil, infra.WrapRepoErr("invalid provider row", err)
		}
		all = append(all, p)
	}
	if rows.Err() != nil {
		return nil, infra.WrapRepoErr("failed to iterate providers", rows.Err())
	}

	qualifiedIDs, err := NewCatalogReadStore(s.dbtx).QualifiedProviderIDs(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	qualified := catalog.QualifiedProviders(all, qualifiedIDs)
	providers := make([]shared.ProviderSnapshot, len(qualified))
	for i, p := range qualified {
		providers[i] = shared.ProviderSnapshot{ID: p.ID(), Name: p.Name()}
	}
	return providers, nil
}

func (s *AvailabilityReadStore) WorkingHoursOn(ctx context.Context, providerIDs []uuid.UUID, date time.Time) ([]schedule.WorkingHours, error) {
	rows, err := s.dbtx.Query(ctx, `
		SELECT provider_id, work_date, start_time, end_time, is_available
		FROM working_hours
		WHERE provider_id = ANY($1) AND work_date = $2::date
		ORDER BY provider_id, start_time
	`, providerIDs, date)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list working hours", err)
	}
	defer rows.Close()

	var hours []schedule.WorkingHours
	for rows.Next() {
		var wh schedule.WorkingHours
		if err := rows.Scan(&wh.ProviderID, &wh.Date, &wh.StartTime, &wh.EndTime, &wh.IsAvailable); err != nil {
			return nil, infra.WrapRepoErr("failed to scan working hours", err)
		}
		hours = append(hours, wh)
	}
	if rows.Err() != nil {
		return nil, infra.WrapRepoErr("failed to iterate working hours", rows.Err())
	}
	return hours, nil
}

func (s *AvailabilityReadStore) BusyWindowsOn(ctx context.Context, providerIDs []uuid.UUID, date time.Time) (map[uuid.UUID][]schedule.TimeWindow, error) {
	dayStart := date.Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := s.dbtx.Query(ctx, `
		SELECT provider_id, start_time, end_time
		FROM slot_ledger
		WHERE provider_id = ANY($1)
			AND state IN ('held', 'occupied')
			AND start_time < $3
			AND end_time > $2
		ORDER BY provider_id, start_time
	`, providerIDs, dayStart, dayEnd)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list busy windows", err)
	}
	defer rows.Close()

	busy := make(map[uuid.UUID][]schedule.TimeWindow)
	for rows.Next() {
		var providerID uuid.UUID
		var start, end time.Time
		if err := rows.Scan(&providerID, &start, &end); err != nil {
			return nil, infra.WrapRepoErr("failed to scan busy window", err)
		}
		window, err := schedule.NewTimeWindow(start, end)
		if err != nil {
			return nil, infra.WrapRepoErr("stored ledger window invalid", err)
		}
		busy[providerID] = append(busy[providerID], window)
	}
	if rows.Err() != nil {
		return nil, infra.WrapRepoErr("failed to iterate busy windows", rows.Err())
	}
	return busy, nil
}
