package components

import (
	"slotbook/internal/infra/cache"
	"slotbook/internal/infra/db"
	"slotbook/internal/infra/readstore"
	"slotbook/internal/infra/repository"
	"slotbook/internal/infra/uow"
	"slotbook/internal/pkg/config"
	"slotbook/internal/usecase/commands"
	"slotbook/internal/usecase/queries"
	"slotbook/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		// UnitOfWork
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		// Readstores
		fx.Annotate(
			readstore.NewAvailabilityReadStore,
			fx.As(new(queries.AvailabilityReadStore)),
		),
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingReadStore)),
		),
		fx.Annotate(
			readstore.NewProfileReadStore,
			fx.As(new(queries.ProfileReadStore)),
		),
		// Post-commit profile refresh
		fx.Annotate(
			repository.NewProfileRepository,
			fx.As(new(commands.ProfileStore)),
		),
		// Candidate cache and its write-side invalidation hook
		NewCandidateCache,
		NewAvailabilityInvalidator,
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewCandidateCache(client *redis.Client, cfg config.Config) queries.CandidateCache {
	if client == nil {
		return nil
	}
	return cache.NewAvailabilityCache(client, cfg.Booking.AvailabilityCacheTTL)
}

func NewAvailabilityInvalidator(client *redis.Client, cfg config.Config) commands.AvailabilityInvalidator {
	if client == nil {
		return nil
	}
	return cache.NewAvailabilityCache(client, cfg.Booking.AvailabilityCacheTTL)
}
