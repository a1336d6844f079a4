package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	openai "github.com/sashabaranov/go-openai"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ChungangLions/backend/api/swagger"
	"github.com/ChungangLions/backend/internal/handler"
	"github.com/ChungangLions/backend/internal/middleware"
	"github.com/ChungangLions/backend/internal/models"
	"github.com/ChungangLions/backend/internal/repository"
	"github.com/ChungangLions/backend/internal/service"
	"github.com/ChungangLions/backend/pkg/cache"
	"github.com/ChungangLions/backend/pkg/config"
	"github.com/ChungangLions/backend/pkg/database"
	"github.com/ChungangLions/backend/pkg/logger"
	corsmiddleware "github.com/ChungangLions/backend/pkg/middleware/cors"
	reqidmiddleware "github.com/ChungangLions/backend/pkg/middleware/requestid"
)

// @title ChungangLions Partnership API
// @version 1.0.0
// @description Proposal brokering between student councils and business owners
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, snapshot cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Cache.SnapshotTTL, logr, true)
		}
	}

	userRepo := repository.NewUserRepository(db)
	proposalRepo := repository.NewProposalRepository(db)
	relationshipRepo := repository.NewRelationshipRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	validate := validator.New()

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})

	proposalService := service.NewProposalService(proposalRepo, userRepo, profileRepo, logr,
		service.WithProposalMetrics(metricsService),
		service.WithSnapshotCache(cacheService))
	relationshipService := service.NewRelationshipService(relationshipRepo, userRepo, metricsService, logr)
	profileService := service.NewProfileService(profileRepo, relationshipRepo, logr)
	exportService := service.NewExportService(proposalService, logr, nil, nil)

	var draftService *service.DraftService
	if cfg.Drafts.Enabled && cfg.Drafts.APIKey != "" {
		llm := openai.NewClient(cfg.Drafts.APIKey)
		draftService = service.NewDraftService(llm, profileRepo, cacheService, service.DraftConfig{
			Model:   cfg.Drafts.Model,
			Timeout: cfg.Drafts.Timeout,
		}, logr)
	}

	authHandler := handler.NewAuthHandler(authService)
	proposalHandler := handler.NewProposalHandler(proposalService, draftService, exportService)
	relationshipHandler := handler.NewRelationshipHandler(relationshipService)
	profileHandler := handler.NewProfileHandler(profileService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
	}

	proposals := api.Group("/proposals", middleware.JWT(authService))
	{
		proposals.GET("", proposalHandler.List)
		proposals.POST("", middleware.RequireRoles(models.RoleOwner, models.RoleStudentGroup), proposalHandler.Create)
		proposals.POST("/draft", middleware.RequireRoles(models.RoleStudentGroup), proposalHandler.Draft)
		proposals.GET("/export", proposalHandler.ExportCSV)
		proposals.GET("/:id", proposalHandler.Get)
		proposals.PUT("/:id", proposalHandler.Update)
		proposals.DELETE("/:id", proposalHandler.Delete)
		proposals.PATCH("/:id/status", proposalHandler.ChangeStatus)
		proposals.GET("/:id/history", proposalHandler.History)
		proposals.GET("/:id/export", proposalHandler.ExportPDF)
	}

	relationships := api.Group("/relationships", middleware.JWT(authService))
	{
		relationships.POST("/toggle", relationshipHandler.Toggle)
		relationships.GET("/given", relationshipHandler.ListGiven)
		relationships.GET("/received", relationshipHandler.ListReceived)
	}

	profiles := api.Group("/profiles", middleware.JWT(authService))
	{
		profiles.GET("/owners/:id", profileHandler.GetOwner)
		profiles.GET("/student-groups/:id", profileHandler.GetStudentGroup)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
