package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edustream/edustream-api/api/swagger"
	"github.com/edustream/edustream-api/internal/gateway"
	"github.com/edustream/edustream-api/internal/handler"
	"github.com/edustream/edustream-api/internal/middleware"
	"github.com/edustream/edustream-api/internal/models"
	"github.com/edustream/edustream-api/internal/repository"
	"github.com/edustream/edustream-api/internal/service"
	"github.com/edustream/edustream-api/pkg/config"
	"github.com/edustream/edustream-api/pkg/database"
	"github.com/edustream/edustream-api/pkg/logger"
	corsmiddleware "github.com/edustream/edustream-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edustream/edustream-api/pkg/middleware/requestid"

	rediscache "github.com/edustream/edustream-api/pkg/cache"
)

// @title EduStream API
// @version 1.0.0
// @description Subscription e-learning backend: catalog, payments and gated study materials
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Catalog.CacheEnabled {
		redisClient, err := rediscache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Catalog.CacheTTL, logr, true)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	boardSvc := service.NewBoardService(boardRepo, cacheSvc, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, cacheSvc, validate, logr)
	subscriptionSvc := service.NewSubscriptionService(subscriptionRepo, logr)
	materialSvc := service.NewMaterialService(materialRepo, subjectRepo, subscriptionSvc, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, subscriptionRepo, subjectRepo, gateway.NewRazorpayGateway(cfg.Razorpay), metricsSvc, validate, logr, cfg.Razorpay)
	statsSvc := service.NewStatsService(statsRepo, subscriptionRepo, logr)

	bootCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := authSvc.EnsureAdmin(bootCtx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logr.Sugar().Fatalw("admin bootstrap failed", "error", err)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	boardHandler := handler.NewBoardHandler(boardSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	materialHandler := handler.NewMaterialHandler(materialSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/admin/login", authHandler.AdminLogin)
	api.GET("/boards", boardHandler.List)
	api.GET("/subjects", subjectHandler.ListPublic)
	api.GET("/subjects/:id", subjectHandler.Get)

	// The gateway calls this unauthenticated; the HMAC signature is the
	// authentication.
	api.POST("/payments/webhook", paymentHandler.Webhook)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/auth/me", authHandler.Me)
		authed.PUT("/auth/me", authHandler.UpdateProfile)
		authed.PUT("/auth/password", authHandler.ChangePassword)

		authed.GET("/subjects/:id/materials", materialHandler.ListForSubject)

		authed.POST("/payments/order", paymentHandler.CreateOrder)
		authed.POST("/payments/verify", paymentHandler.Verify)
		authed.GET("/payments", paymentHandler.ListMine)

		authed.GET("/subscriptions", subscriptionHandler.ListMine)
		authed.GET("/subscriptions/check/:id", subscriptionHandler.CheckEntitlement)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/stats", statsHandler.Overview)

		admin.POST("/boards", boardHandler.Create)
		admin.PUT("/boards/:id", boardHandler.Update)
		admin.DELETE("/boards/:id", boardHandler.Delete)

		admin.GET("/subjects", subjectHandler.ListAll)
		admin.POST("/subjects", subjectHandler.Create)
		admin.POST("/subjects/seed", subjectHandler.Seed)
		admin.PUT("/subjects/:id", subjectHandler.Update)
		admin.PUT("/subjects/:id/visibility", subjectHandler.SetVisibility)
		admin.DELETE("/subjects/:id", subjectHandler.Delete)

		admin.GET("/materials", materialHandler.ListAll)
		admin.POST("/materials", materialHandler.Create)
		admin.POST("/materials/seed", materialHandler.Seed)
		admin.PUT("/materials/:id", materialHandler.Update)
		admin.DELETE("/materials/:id", materialHandler.Delete)

		admin.GET("/subscriptions", subscriptionHandler.ListAll)
		admin.GET("/subscriptions/export", statsHandler.ExportSubscriptions)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
