package bootstrap

import (
	"context"

	"slotbook/internal/infra/outbox"
	"slotbook/internal/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var OutboxModule = fx.Module("outbox",
	fx.Provide(
		NewSender,
		NewDispatcher,
	),
	fx.Invoke(runDispatcher),
)

func NewSender(cfg config.Config) outbox.Sender {
	return outbox.NewLogSender(cfg.Outbox.OwnerEmail)
}

func NewDispatcher(pool *pgxpool.Pool, sender outbox.Sender, cfg config.Config) *outbox.Dispatcher {
	return outbox.NewDispatcher(pool, sender, cfg.Outbox)
}

func runDispatcher(lc fx.Lifecycle, dispatcher *outbox.Dispatcher) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				defer close(done)
				dispatcher.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
