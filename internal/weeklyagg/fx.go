package weeklyagg

import (
	"github.com/smallbiznis/hsekpi/internal/weeklyagg/service"
	"go.uber.org/fx"
)

var Module = fx.Module("weeklyagg.service",
	fx.Provide(service.New),
)
