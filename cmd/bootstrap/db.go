package bootstrap

import (
	"context"
	"log/slog"

	"slotbook/internal/infra/db"
	"slotbook/internal/infra/repository"
	"slotbook/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var DBModule = fx.Module("db",
	fx.Provide(
		NewDB,
	),
	fx.Invoke(prepareDatabase),
)

func NewDB(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	pool, err := db.NewPool(context.Background(), cfg.DB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			pool.Close()
			return nil
		},
	})

	return pool, nil
}

// prepareDatabase applies the schema and releases held ledger entries left
// behind by a crash before the server starts accepting claims.
func prepareDatabase(lc fx.Lifecycle, pool *pgxpool.Pool, cfg config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := db.ApplySchema(ctx, pool); err != nil {
				return err
			}
			swept, err := repository.SweepStaleHolds(ctx, pool, cfg.Booking.StaleHoldMaxAge)
			if err != nil {
				return err
			}
			if swept > 0 {
				slog.Warn("released stale ledger holds at startup", "count", swept)
			}
			return nil
		},
	})
}
