package rollupwarmer

import (
	"context"

	"github.com/smallbiznis/hsekpi/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("rollupwarmer",
	fx.Provide(New),
	fx.Invoke(Start),
)

func Start(lc fx.Lifecycle, cfg config.Config, w *Warmer) {
	if !cfg.Rollup.WarmerEnabled {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go w.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
			return nil
		},
	})
}
