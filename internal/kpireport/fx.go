package kpireport

import (
	"github.com/smallbiznis/hsekpi/internal/kpireport/repository"
	"github.com/smallbiznis/hsekpi/internal/kpireport/service"
	"go.uber.org/fx"
)

var Module = fx.Module("kpireport.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
