package kpisource

import (
	"github.com/smallbiznis/hsekpi/internal/kpisource/collector"
	"go.uber.org/fx"
)

var Module = fx.Module("kpisource.collector",
	fx.Provide(collector.New),
)
