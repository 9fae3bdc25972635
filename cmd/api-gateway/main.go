package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/grindhub/grindhub-api/api/swagger"
	"github.com/grindhub/grindhub-api/internal/handler"
	"github.com/grindhub/grindhub-api/internal/middleware"
	"github.com/grindhub/grindhub-api/internal/relay"
	"github.com/grindhub/grindhub-api/internal/repository"
	"github.com/grindhub/grindhub-api/internal/service"
	"github.com/grindhub/grindhub-api/pkg/cache"
	"github.com/grindhub/grindhub-api/pkg/config"
	"github.com/grindhub/grindhub-api/pkg/database"
	"github.com/grindhub/grindhub-api/pkg/logger"
	corsmiddleware "github.com/grindhub/grindhub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/grindhub/grindhub-api/pkg/middleware/requestid"
	"github.com/grindhub/grindhub-api/pkg/storage"
)

// @title GrindHub API
// @version 1.0.0
// @description Student productivity backend: merged timetable, study groups and live chat
// @BasePath /api/auth
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Timetable.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, timetable cache disabled", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close()
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Timetable.CacheTTL, logr, true)
		}
	}

	userRepo := repository.NewUserRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	classRepo := repository.NewClassRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	timerRepo := repository.NewTimerRepository(db)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      "grindhub",
	})
	userSvc := service.NewUserService(userRepo, logr)
	moduleSvc := service.NewModuleService(moduleRepo, nil, logr)
	timetableSvc := service.NewTimetableService(classRepo, assignmentRepo, cacheSvc, logr, cfg.Timetable.CacheTTL)
	scheduleSvc := service.NewScheduleService(classRepo, assignmentRepo, timetableSvc, nil, logr)
	groupSvc := service.NewGroupService(groupRepo, nil, logr)
	chatSvc := service.NewChatService(messageRepo, groupRepo, logr, cfg.Chat.HistoryLimit, cfg.Chat.MaxMessageLength)
	timerSvc := service.NewTimerService(timerRepo, nil, logr)

	hub := relay.NewHub(logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Fatal("failed to init export storage", zap.Error(err))
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(timetableSvc, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			Workers:   cfg.Exports.WorkerConcurrency,
			Retries:   cfg.Exports.WorkerRetries,
		}, logr)
		exportSvc.Start(ctx)
		defer exportSvc.Stop()

		go func() {
			ticker := time.NewTicker(time.Hour)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					exportSvc.Cleanup()
				}
			}
		}()
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

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	moduleHandler := handler.NewModuleHandler(moduleSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	groupHandler := handler.NewGroupHandler(groupSvc)
	chatHandler := handler.NewChatHandler(chatSvc, authSvc, hub, metricsSvc, logr, cfg.Chat.WriteTimeout)
	timerHandler := handler.NewTimerHandler(timerSvc)

	api := r.Group(cfg.APIPrefix)
	api.POST("/signup", authHandler.Signup)
	api.POST("/login", authHandler.Login)
	api.GET("/ws", chatHandler.Socket)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	protected.GET("/me", authHandler.Me)
	protected.GET("/user", userHandler.Get)
	protected.PATCH("/user/notifications", userHandler.UpdateNotification)

	protected.GET("/modules", moduleHandler.List)
	protected.POST("/modules", moduleHandler.Create)
	protected.GET("/modules/names", moduleHandler.Names)

	protected.GET("/classes", scheduleHandler.ListClasses)
	protected.POST("/classes", scheduleHandler.CreateClass)
	protected.GET("/assignments", scheduleHandler.ListAssignments)
	protected.POST("/assignments", scheduleHandler.CreateAssignment)
	protected.PATCH("/assignments/:id/percentage", scheduleHandler.UpdatePercentage)

	protected.GET("/timetable", timetableHandler.Window)
	protected.GET("/timetable/items", timetableHandler.Items)

	protected.GET("/groups", groupHandler.List)
	protected.POST("/groups", groupHandler.Create)
	protected.POST("/groups/join", groupHandler.Join)
	protected.GET("/groups/:id/description", groupHandler.Description)
	protected.GET("/groups/:id/classtimes", groupHandler.MemberClassTimes)

	protected.GET("/groups/:id/messages", chatHandler.History)
	protected.POST("/groups/:id/messages", chatHandler.Send)
	protected.GET("/messages/latest", chatHandler.Latest)

	protected.POST("/timer/sessions", timerHandler.Record)
	protected.GET("/timer/summary", timerHandler.Summary)

	if exportSvc != nil {
		exportHandler := handler.NewExportHandler(exportSvc)
		protected.POST("/exports", exportHandler.Create)
		protected.GET("/exports/:id", exportHandler.Status)
		api.GET("/exports/download/:token", exportHandler.Download)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
