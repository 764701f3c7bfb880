package queries

import (
	"context"
	"time"

	"slotbook/internal/domain/schedule"
	"slotbook/internal/infra"
	"slotbook/internal/pkg/errs"
	"slotbook/internal/usecase/shared"

	"github.com/google/uuid"
)

// AvailabilityReadStore supplies the calculator's inputs from committed
// state. It never blocks a claim; candidate computation runs fully in
// parallel with booking transactions.
type AvailabilityReadStore interface {
	ServiceByID(ctx context.Context, id uuid.UUID) (*shared.ServiceSnapshot, error)
	ProvidersForService(ctx context.Context, serviceID uuid.UUID) ([]shared.ProviderSnapshot, error)
	WorkingHoursOn(ctx context.Context, providerIDs []uuid.UUID, date time.Time) ([]schedule.WorkingHours, error)
	// BusyWindowsOn returns each provider's held/occupied ledger intervals for
	// the date.
	BusyWindowsOn(ctx context.Context, providerIDs []uuid.UUID, date time.Time) (map[uuid.UUID][]schedule.TimeWindow, error)
}

// CandidateCache is an optional read-through cache for candidate lists. A
// stale hit can only produce a briefly outdated offer, never an incorrect
// claim: the ledger re-validates every claim at commit time.
type CandidateCache interface {
	Get(ctx context.Context, serviceID uuid.UUID, date time.Time) ([]CandidateView, bool)
	Set(ctx context.Context, serviceID uuid.UUID, date time.Time, candidates []CandidateView)
}

type AvailabilityQueries interface {
	// Candidates returns the offerable windows for the service on the date.
	// fresh bypasses the cache; callers reacting to a claim conflict use it so
	// the client is never re-shown the option that just lost.
	Candidates(ctx context.Context, serviceID uuid.UUID, date time.Time, fresh bool) ([]CandidateView, error)
}

type availabilityQueriesImpl struct {
	store AvailabilityReadStore
	cache CandidateCache
	step  time.Duration
}

func NewAvailabilityQueries(store AvailabilityReadStore, cache CandidateCache, granularityMin int) AvailabilityQueries {
	step := time.Duration(granularityMin) * time.Minute
	if step <= 0 {
		step = 30 * time.Minute
	}
	return &availabilityQueriesImpl{
		store: store,
		cache: cache,
		step:  step,
	}
}

func (q *availabilityQueriesImpl) Candidates(ctx context.Context, serviceID uuid.UUID, date time.Time, fresh bool) ([]CandidateView, error) {
	if !fresh && q.cache != nil {
		if cached, ok := q.cache.Get(ctx, serviceID, date); ok {
			return cached, nil
		}
	}

	svc, err := q.store.ServiceByID(ctx, serviceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.Mark(err, errs.ErrServiceNotFound)
		}
		return nil, errs.Mark(err, errs.ErrStorageUnavailable)
	}

	providers, err := q.store.ProvidersForService(ctx, serviceID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStorageUnavailable)
	}
	// Zero qualified providers is an empty result, not an error.
	if len(providers) == 0 {
		return []CandidateView{}, nil
	}

	ids := make([]uuid.UUID, len(providers))
	names := make(map[uuid.UUID]string, len(providers))
	for i, p := range providers {
		ids[i] = p.ID
		names[p.ID] = p.Name
	}

	working, err := q.store.WorkingHoursOn(ctx, ids, date)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStorageUnavailable)
	}
	busy, err := q.store.BusyWindowsOn(ctx, ids, date)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStorageUnavailable)
	}

	byProvider := make(map[uuid.UUID][]schedule.WorkingHours)
	for _, wh := range working {
		byProvider[wh.ProviderID] = append(byProvider[wh.ProviderID], wh)
	}

	days := make([]schedule.ProviderDay, 0, len(ids))
	for _, id := range ids {
		days = append(days, schedule.ProviderDay{
			ProviderID: id,
			Working:    byProvider[id],
			Busy:       busy[id],
		})
	}

	candidates := schedule.BuildCandidates(days, svc.Duration(), q.step)

	views := make([]CandidateView, len(candidates))
	for i, c := range candidates {
		views[i] = CandidateView{
			ProviderID:   c.ProviderID,
			ProviderName: names[c.ProviderID],
			Start:        c.Start,
			End:          c.End,
		}
	}

	if q.cache != nil {
		q.cache.Set(ctx, serviceID, date, views)
	}
	return views, nil
}
