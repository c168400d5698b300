package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/sfa-api/api/swagger"
	"github.com/noah-isme/sfa-api/internal/handler"
	"github.com/noah-isme/sfa-api/internal/middleware"
	"github.com/noah-isme/sfa-api/internal/repository"
	"github.com/noah-isme/sfa-api/internal/service"
	"github.com/noah-isme/sfa-api/pkg/cache"
	"github.com/noah-isme/sfa-api/pkg/config"
	"github.com/noah-isme/sfa-api/pkg/database"
	"github.com/noah-isme/sfa-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sfa-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sfa-api/pkg/middleware/requestid"
)

// @title Session Feedback API
// @version 1.0.0
// @description Anonymous student feedback collection for teacher sessions
// @BasePath /
// @schemes http
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	cacheSvc := service.NewCacheService(nil, metricsSvc, cfg.Feedback.CacheTTL, logr, false)
	if cfg.Feedback.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, feedback cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Feedback.CacheTTL, logr, true)
		}
	}

	validate := validator.New()

	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	authSvc := service.NewAuthService(teacherRepo, studentRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
	})
	sessionSvc := service.NewSessionService(sessionRepo, validate, logr)
	feedbackSvc := service.NewFeedbackService(sessionRepo, enrollmentRepo, feedbackRepo, cacheSvc, metricsSvc, cfg.Feedback.ExportLimit, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc, feedbackSvc)
	studentHandler := handler.NewStudentHandler(feedbackSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	handler.Routes(r, authSvc, authHandler, sessionHandler, studentHandler, metricsSvc)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
