package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/hsekpi/internal/authorization"
	"github.com/smallbiznis/hsekpi/internal/config"
	dashboarddomain "github.com/smallbiznis/hsekpi/internal/dashboard/domain"
	kpireportdomain "github.com/smallbiznis/hsekpi/internal/kpireport/domain"
	rollupdomain "github.com/smallbiznis/hsekpi/internal/monthlyrollup/domain"
	"github.com/smallbiznis/hsekpi/internal/observability"
	obsmiddleware "github.com/smallbiznis/hsekpi/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/hsekpi/internal/observability/metrics"
	obstracing "github.com/smallbiznis/hsekpi/internal/observability/tracing"
	"github.com/smallbiznis/hsekpi/internal/ratelimit"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	weeklyaggdomain "github.com/smallbiznis/hsekpi/internal/weeklyagg/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	log           *zap.Logger
	scopeSvc      scopedomain.Service
	authzSvc      authorization.Service
	weeklyAggSvc  weeklyaggdomain.Service
	dashboardSvc  dashboarddomain.Service
	reportSvc     kpireportdomain.Service
	rollupSvc     rollupdomain.Service
	rollupLimiter *ratelimit.RollupLimiter
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Log           *zap.Logger
	ScopeSvc      scopedomain.Service
	AuthzSvc      authorization.Service
	WeeklyAggSvc  weeklyaggdomain.Service
	DashboardSvc  dashboarddomain.Service
	ReportSvc     kpireportdomain.Service
	RollupSvc     rollupdomain.Service
	RollupLimiter *ratelimit.RollupLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("http.server"),
		scopeSvc:      p.ScopeSvc,
		authzSvc:      p.AuthzSvc,
		weeklyAggSvc:  p.WeeklyAggSvc,
		dashboardSvc:  p.DashboardSvc,
		reportSvc:     p.ReportSvc,
		rollupSvc:     p.RollupSvc,
		rollupLimiter: p.RollupLimiter,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.PrincipalRequired())

	// -------- Weekly data --------
	api.GET("/projects/:id/weekly-aggregates", s.GetWeeklyAggregates)
	api.GET("/projects/:id/report-averages", s.GetReportAverages)

	// -------- Weekly reports --------
	api.POST("/reports", s.UpsertReport)
	api.GET("/reports/monthly", s.RollupRateLimit(), s.GetMonthlySummary)
	api.GET("/reports/:id", s.GetReport)
	api.POST("/reports/:id/submit", s.SubmitReport)
	api.POST("/reports/:id/approve", s.ApproveReport)
	api.POST("/reports/:id/reject", s.RejectReport)

	// -------- Dashboard --------
	api.GET("/dashboard", s.GetDashboardSummary)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
