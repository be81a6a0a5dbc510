package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/chupolovski/planner-api/internal/handler"
	"github.com/chupolovski/planner-api/internal/middleware"
	"github.com/chupolovski/planner-api/internal/repository"
	"github.com/chupolovski/planner-api/internal/service"
	"github.com/chupolovski/planner-api/pkg/cache"
	"github.com/chupolovski/planner-api/pkg/config"
	"github.com/chupolovski/planner-api/pkg/database"
	"github.com/chupolovski/planner-api/pkg/logger"
	corsmiddleware "github.com/chupolovski/planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/chupolovski/planner-api/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, search cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Search.CacheTTL, logr, cfg.Search.CacheEnabled)

	courseRepo := repository.NewCourseRepository(db)
	presetRepo := repository.NewPresetRepository(db)

	catalogSvc := service.NewCatalogService(courseRepo, cacheSvc, cfg.Catalog.ImportDir, logr)
	refreshCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := catalogSvc.Refresh(refreshCtx); err != nil {
		cancel()
		logr.Sugar().Fatalw("failed to load catalog", "error", err)
	}
	cancel()

	plannerSvc := service.NewPlannerService(catalogSvc, service.PlannerConfig{
		SessionTTL:  cfg.Planner.SessionTTL,
		MaxSessions: cfg.Planner.MaxSessions,
	}, metricsSvc, validate, logr)
	metricsSvc.SetSessionGauge(plannerSvc.ActiveSessions)

	searchSvc := service.NewSearchService(catalogSvc, cacheSvc, metricsSvc, service.SearchConfig{
		CacheTTL:     cfg.Search.CacheTTL,
		DefaultLimit: cfg.Search.DefaultLimit,
	}, validate, logr)
	presetSvc := service.NewPresetService(presetRepo, catalogSvc, plannerSvc, validate, logr)
	exportSvc := service.NewExportService(plannerSvc, logr)

	plannerHandler := handler.NewPlannerHandler(plannerSvc)
	searchHandler := handler.NewSearchHandler(searchSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	presetHandler := handler.NewPresetHandler(presetSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/snapshot", metricsHandler.Snapshot)

	api := r.Group(cfg.APIPrefix)
	{
		sessions := api.Group("/sessions")
		sessions.POST("", plannerHandler.CreateSession)
		sessions.GET("/:id", plannerHandler.Snapshot)
		sessions.GET("/:id/stats", plannerHandler.Stats)
		sessions.POST("/:id/courses", plannerHandler.PlaceCourse)
		sessions.DELETE("/:id/courses/:key", plannerHandler.RemoveCourse)
		sessions.POST("/:id/priorities", plannerHandler.SetPriorities)
		sessions.GET("/:id/export", exportHandler.Download)

		search := api.Group("/search")
		search.POST("/groups", searchHandler.Groups)
		search.POST("/priority", searchHandler.Priority)

		courses := api.Group("/courses")
		courses.GET("", catalogHandler.List)
		courses.GET("/:key", catalogHandler.Get)

		api.POST("/catalog/import", catalogHandler.Import)

		presets := api.Group("/presets")
		presets.GET("", presetHandler.List)
		presets.POST("", presetHandler.Save)
		presets.DELETE("/:id", presetHandler.Delete)
		presets.POST("/:id/apply", presetHandler.Apply)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
