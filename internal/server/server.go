package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	adminopsdomain "github.com/tbilisoft/declara/internal/adminops/domain"
	"github.com/tbilisoft/declara/internal/config"
	declarationdomain "github.com/tbilisoft/declara/internal/declaration/domain"
	insightdomain "github.com/tbilisoft/declara/internal/insight/domain"
	ledgerdomain "github.com/tbilisoft/declara/internal/ledger/domain"
	obslogger "github.com/tbilisoft/declara/internal/observability/logger"
	obsmetrics "github.com/tbilisoft/declara/internal/observability/metrics"
	taxstatsdomain "github.com/tbilisoft/declara/internal/taxstats/domain"
	userdomain "github.com/tbilisoft/declara/internal/user/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(log, httpMetrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
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
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	users       userdomain.Repository
	ledgerSvc   ledgerdomain.Service
	declSvc     declarationdomain.Service
	statsSvc    taxstatsdomain.Service
	insightSvc  insightdomain.Service
	adminopsSvc adminopsdomain.Service
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	DB          *gorm.DB
	GenID       *snowflake.Node
	Users       userdomain.Repository
	LedgerSvc   ledgerdomain.Service
	DeclSvc     declarationdomain.Service
	StatsSvc    taxstatsdomain.Service
	InsightSvc  insightdomain.Service
	AdminopsSvc adminopsdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		db:          p.DB,
		genID:       p.GenID,
		users:       p.Users,
		ledgerSvc:   p.LedgerSvc,
		declSvc:     p.DeclSvc,
		statsSvc:    p.StatsSvc,
		insightSvc:  p.InsightSvc,
		adminopsSvc: p.AdminopsSvc,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.UserRequired())

	income := api.Group("/income")
	{
		income.POST("", s.RecordIncome)
		income.GET("", s.ListIncome)
	}

	tax := api.Group("/tax")
	{
		tax.GET("/overview", s.TaxOverview)
		tax.GET("/monthly", s.MonthlyBreakdown)
		tax.GET("/projections", s.TaxProjections)
		tax.GET("/insights", s.TaxInsights)
		tax.GET("/comparison", s.TaxComparison)
		tax.GET("/charts/:type", s.TaxChartData)
		tax.GET("/declarations/:year/:month", s.DeclarationDetails)
		tax.POST("/declarations/:year/:month/submit", s.SubmitDeclaration)
		tax.POST("/auto-generate/:year", s.AutoGenerateYear)

		filing := tax.Group("/filing-service")
		{
			filing.POST("/request", s.RequestFilingService)
			filing.POST("/pay", s.PayFilingService)
			filing.GET("/status/:year/:month", s.FilingServiceStatus)
		}
	}
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.UserRequired(), s.AdminRequired())

	declarations := admin.Group("/declarations")
	{
		declarations.GET("/queue", s.AdminQueue)
		declarations.GET("/stats", s.AdminStats)
		declarations.GET("", s.AdminListDeclarations)
		declarations.POST("/:id/start", s.AdminStartFiling)
		declarations.POST("/:id/complete", s.AdminCompleteFiling)
		declarations.POST("/:id/reject", s.AdminRejectDeclaration)
	}

	users := admin.Group("/users")
	{
		users.GET("", s.AdminListUsers)
		users.GET("/:id/declarations", s.AdminUserDeclarations)
	}
}
