package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/smk-cms-api/api/swagger"
	"github.com/noah-isme/smk-cms-api/internal/handler"
	"github.com/noah-isme/smk-cms-api/internal/middleware"
	"github.com/noah-isme/smk-cms-api/internal/models"
	"github.com/noah-isme/smk-cms-api/internal/repository"
	"github.com/noah-isme/smk-cms-api/internal/service"
	"github.com/noah-isme/smk-cms-api/pkg/config"
	"github.com/noah-isme/smk-cms-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/smk-cms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/smk-cms-api/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client) (*gin.Engine, error) {
	metrics := service.NewMetricsService()
	validate := service.NewValidator()

	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)

	menuRepo := repository.NewMenuRepository(db)
	sectionRepo := repository.NewPageSectionRepository(db)
	programRepo := repository.NewProgramRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	orderingSvc := service.NewOrderingService(repository.NewOrderingRepository(db), auditRepo, logr,
		service.WithOrderingCache(cacheSvc),
		service.WithOrderingMetrics(metrics))
	menuSvc := service.NewMenuService(menuRepo, auditRepo, cacheSvc, validate, logr)
	sectionSvc := service.NewPageSectionService(sectionRepo, auditRepo, cacheSvc, validate, logr)
	programSvc := service.NewProgramService(programRepo, auditRepo, cacheSvc, validate, logr)
	submissionSvc := service.NewSubmissionService(submissionRepo, programRepo, auditRepo, validate, logr,
		service.WithRegistrationPrefix(cfg.Admissions.RegistrationPrefix),
		service.WithSubmissionCache(cacheSvc),
		service.WithSubmissionMetrics(metrics))
	exportSvc := service.NewExportService(submissionRepo, programRepo, logr, cfg.Admissions.ExportMaxRows, nil, nil)
	settingsSvc := service.NewSettingsService(repository.NewSettingsRepository(db), auditRepo, cacheSvc, logr, nil)
	dashboardSvc := service.NewDashboardService(repository.NewDashboardRepository(db), cacheSvc, logr,
		service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL})
	authSvc := service.NewAuthService(service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	}, logr)

	intakeLimit, err := middleware.RateLimit(middleware.NewRateLimitStore(redisClient, logr), cfg.Admissions.IntakeRate, logr)
	if err != nil {
		return nil, err
	}

	orderingHandler := handler.NewOrderingHandler(orderingSvc)
	menuHandler := handler.NewMenuHandler(menuSvc)
	sectionHandler := handler.NewPageSectionHandler(sectionSvc)
	programHandler := handler.NewProgramHandler(programSvc)
	submissionHandler := handler.NewSubmissionHandler(submissionSvc, exportSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
		"postgres": db,
		"redis":    cacheRepo,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metrics))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	public := api.Group("/public")
	public.GET("/menus", menuHandler.PublicTree)
	public.GET("/pages/:page/sections", sectionHandler.PublicList)
	public.GET("/programs", programHandler.PublicList)
	public.GET("/settings/:key", settingsHandler.PublicGet)
	public.POST("/ppdb", intakeLimit, submissionHandler.Submit)

	admin := api.Group("/admin",
		middleware.JWT(authSvc),
		middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin),
		middleware.WithResponseMeta())

	admin.GET("/menus", menuHandler.Tree)
	admin.POST("/menus", menuHandler.Create)
	admin.PUT("/menus/:id", menuHandler.Update)
	admin.DELETE("/menus/:id", orderingHandler.Remove(models.CollectionMenus))
	admin.POST("/menus/:id/move", orderingHandler.Move(models.CollectionMenus))

	admin.GET("/pages/:page/sections", sectionHandler.List)
	admin.POST("/pages/:page/sections", sectionHandler.Create)
	admin.PUT("/sections/:id", sectionHandler.Update)
	admin.DELETE("/sections/:id", orderingHandler.Remove(models.CollectionPageSections))
	admin.POST("/sections/:id/move", orderingHandler.Move(models.CollectionPageSections))
	admin.POST("/sections/:id/visibility", sectionHandler.SetVisibility)

	admin.GET("/programs", programHandler.List)
	admin.POST("/programs", programHandler.Create)
	admin.GET("/programs/:id", programHandler.Get)
	admin.PUT("/programs/:id", programHandler.Update)
	admin.DELETE("/programs/:id", orderingHandler.Remove(models.CollectionPrograms))
	admin.POST("/programs/:id/move", orderingHandler.Move(models.CollectionPrograms))

	admin.GET("/ppdb", submissionHandler.List)
	admin.GET("/ppdb/export", submissionHandler.Export)
	admin.GET("/ppdb/:id", submissionHandler.Get)
	admin.POST("/ppdb/:id/decision", submissionHandler.Decide)

	admin.GET("/settings", settingsHandler.List)
	admin.GET("/settings/:key", settingsHandler.Get)
	admin.PUT("/settings/:key", settingsHandler.Replace)
	admin.PATCH("/settings/:key", settingsHandler.Patch)

	admin.GET("/dashboard", dashboardHandler.Summary)

	return r, nil
}
