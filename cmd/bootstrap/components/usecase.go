package components

import (
	"slotbook/internal/pkg/clock"
	"slotbook/internal/pkg/config"
	"slotbook/internal/usecase"
	"slotbook/internal/usecase/commands"
	"slotbook/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		NewClock,
		usecase.NewTokenValidator,
		NewAvailabilityQueries,
		queries.NewBookingQueries,
		queries.NewProfileQueries,
		commands.NewBookingCommands,
	),
)

func NewClock() clock.Clock {
	return clock.NewRealClock()
}

func NewAvailabilityQueries(store queries.AvailabilityReadStore, cache queries.CandidateCache, cfg config.Config) queries.AvailabilityQueries {
	return queries.NewAvailabilityQueries(store, cache, cfg.Booking.SlotGranularityMin)
}
