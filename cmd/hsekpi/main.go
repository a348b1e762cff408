package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/hsekpi/internal/authorization"
	"github.com/smallbiznis/hsekpi/internal/cache"
	"github.com/smallbiznis/hsekpi/internal/clock"
	"github.com/smallbiznis/hsekpi/internal/config"
	"github.com/smallbiznis/hsekpi/internal/dashboard"
	"github.com/smallbiznis/hsekpi/internal/kpireport"
	"github.com/smallbiznis/hsekpi/internal/kpisource"
	"github.com/smallbiznis/hsekpi/internal/migration"
	"github.com/smallbiznis/hsekpi/internal/monthlyrollup"
	"github.com/smallbiznis/hsekpi/internal/observability"
	"github.com/smallbiznis/hsekpi/internal/ratelimit"
	"github.com/smallbiznis/hsekpi/internal/rollupwarmer"
	"github.com/smallbiznis/hsekpi/internal/scope"
	"github.com/smallbiznis/hsekpi/internal/server"
	"github.com/smallbiznis/hsekpi/internal/submission"
	"github.com/smallbiznis/hsekpi/internal/weeklyagg"
	"github.com/smallbiznis/hsekpi/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		cache.Module,
		ratelimit.Module,

		// Functional Domains
		scope.Module,
		authorization.Module,
		kpisource.Module,
		weeklyagg.Module,
		submission.Module,
		kpireport.Module,
		dashboard.Module,
		monthlyrollup.Module,
		rollupwarmer.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
