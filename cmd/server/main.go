package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"renotimeline/internal/api/handler"
	"renotimeline/internal/config"
	"renotimeline/internal/core/postgres/repository"
	"renotimeline/internal/domain"
	infraredis "renotimeline/internal/infrastructure/redis"
	"renotimeline/internal/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	loc, err := cfg.Location()
	if err != nil {
		logrus.WithError(err).Fatal("invalid scheduler timezone")
	}

	// 2. Set up database connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	// Scheduler-owned tables only; tasks and projects belong to the
	// project-management surface.
	if err := db.AutoMigrate(&domain.WorkflowDefinition{}, &domain.WorkflowExecution{}, &domain.Notification{}); err != nil {
		logrus.WithError(err).Fatal("failed to migrate schema")
	}

	// 3. Set up redis
	redisClient := infraredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.PoolSize)
	eventBus := infraredis.NewRedisEventBus(redisClient)
	scanLock := infraredis.NewRedisScanLock(redisClient, cfg.LockTTL())

	// 4. Initialize repositories
	workflowRepo := repository.NewWorkflowRepository(db)
	executionRepo := repository.NewExecutionRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// 5. Initialize the scheduler core
	clock := scheduler.NewClock(loc)
	executor := scheduler.NewExecutor(executionRepo, workflowRepo, notificationRepo, eventBus, clock)
	scanner := scheduler.NewScanner(workflowRepo, taskRepo, projectRepo, notificationRepo,
		eventBus, executor, scanLock, clock, cfg.ScheduleWindow())
	listener := scheduler.NewListener(eventBus, workflowRepo, taskRepo, executor)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := listener.Start(ctx); err != nil {
			logrus.WithError(err).Error("task event listener stopped")
		}
	}()

	// 6. Set up routes
	schedulerHandler := handler.NewSchedulerHandler(scanner)

	router := gin.Default()

	api := router.Group("/api/v1")
	{
		api.POST("/scheduler/run", schedulerHandler.RunScan)
	}
	router.GET("/healthz", schedulerHandler.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7. Start server
	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		logrus.WithField("addr", cfg.HTTP.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("server shutdown")
	}
}
