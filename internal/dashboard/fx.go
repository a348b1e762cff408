package dashboard

import (
	"github.com/smallbiznis/hsekpi/internal/dashboard/repository"
	"github.com/smallbiznis/hsekpi/internal/dashboard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dashboard.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
