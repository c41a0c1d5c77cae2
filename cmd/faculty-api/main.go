package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/faculty-erp-api/api/swagger"
	"github.com/noah-isme/faculty-erp-api/internal/handler"
	"github.com/noah-isme/faculty-erp-api/internal/middleware"
	"github.com/noah-isme/faculty-erp-api/internal/repository"
	"github.com/noah-isme/faculty-erp-api/internal/service"
	"github.com/noah-isme/faculty-erp-api/pkg/cache"
	"github.com/noah-isme/faculty-erp-api/pkg/config"
	"github.com/noah-isme/faculty-erp-api/pkg/database"
	"github.com/noah-isme/faculty-erp-api/pkg/jobs"
	"github.com/noah-isme/faculty-erp-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/faculty-erp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/faculty-erp-api/pkg/middleware/requestid"
)

// @title Faculty ERP API
// @version 1.0.0
// @description Faculty-facing schedule aggregation and video progress tracking
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Calendar.CacheTTL, logr, cfg.Calendar.CacheEnabled && redisClient != nil)

	timetableRepo := repository.NewTimetableRepository(db)
	sessionRepo := repository.NewClassSessionRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	progressRepo := repository.NewVideoProgressRepository(db)

	authSvc := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret})
	scheduleSvc := service.NewScheduleService(timetableRepo, sessionRepo, cacheSvc, metricsSvc, logr, service.ScheduleConfig{
		CacheTTL:         cfg.Calendar.CacheTTL,
		DefaultRangeDays: cfg.Calendar.DefaultRangeDays,
		MaxPageSize:      cfg.Calendar.MaxPageSize,
	})

	progressSvc := service.NewVideoProgressService(videoRepo, progressRepo, cacheSvc, metricsSvc, nil, validate, logr, service.ProgressServiceConfig{
		CompletionThreshold: cfg.Progress.CompletionThreshold,
		CacheTTL:            cfg.Progress.CacheTTL,
	})

	completionQueue := jobs.NewQueue("video-completions", progressSvc.HandleCompletionJob, jobs.QueueConfig{
		Workers: cfg.Progress.QueueWorkers,
		Logger:  logr,
	})
	progressSvc.SetQueue(completionQueue)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	completionQueue.Start(ctx)
	defer completionQueue.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	progressHandler := handler.NewVideoProgressHandler(progressSvc)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
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
	api.Use(middleware.JWT(authSvc))
	{
		api.GET("/timetables", scheduleHandler.ListTimetable)
		api.GET("/class-sessions", scheduleHandler.ListClassSessions)
		api.GET("/class-sessions/ics", scheduleHandler.ExportICS)
		api.GET("/faculty/calendar", scheduleHandler.Calendar)
		api.GET("/faculty/calendar/export.pdf", scheduleHandler.ExportPDF)

		api.GET("/videos", progressHandler.ListVideos)
		api.GET("/videos/:id", progressHandler.GetVideo)
		api.POST("/emp-video-progress/track", progressHandler.Track)
		api.GET("/emp-video-progress", progressHandler.ListProgress)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
