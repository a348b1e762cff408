package monthlyrollup

import (
	"github.com/smallbiznis/hsekpi/internal/monthlyrollup/service"
	"go.uber.org/fx"
)

var Module = fx.Module("monthlyrollup.service",
	fx.Provide(service.New),
)
