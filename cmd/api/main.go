package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/teamerp-api/internal/config"
	"github.com/noah-isme/teamerp-api/internal/database"
	"github.com/noah-isme/teamerp-api/internal/handler"
	"github.com/noah-isme/teamerp-api/internal/middleware"
	"github.com/noah-isme/teamerp-api/internal/models"
	"github.com/noah-isme/teamerp-api/internal/repository"
	"github.com/noah-isme/teamerp-api/internal/router"
	"github.com/noah-isme/teamerp-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.ActivityLog{}, &models.Notification{}, &models.User{}, &models.Project{}, &models.Task{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	activityRepo := repository.NewActivityLogRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	resourceRepo := repository.NewResourceRepository(db)

	activityService := service.NewActivityService(activityRepo, cfg.ActivityPageSizeMax, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, natsConn, service.NotificationServiceConfig{
		DefaultLimit:   cfg.NotificationDefaultLimit,
		MaxLimit:       cfg.NotificationMaxLimit,
		UnreadCacheTTL: cfg.UnreadCountCacheTTL,
		ChannelBase:    "teamerp",
	}, validate, logger)
	reportService := service.NewReportService(activityService, resourceRepo, redisClient, cfg.ReportCacheTTL, logger)
	taskService := service.NewTaskService(resourceRepo, activityService, notificationService, logger)

	activityHandler := handler.NewActivityHandler(activityService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger, cfg.SSEKeepAlive)
	reportHandler := handler.NewReportHandler(reportService, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ActivityHandler:     activityHandler,
		NotificationHandler: notificationHandler,
		ReportHandler:       reportHandler,
		TaskHandler:         taskHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	serviceCtx, stopServices := context.WithCancel(context.Background())
	defer stopServices()
	notificationService.Start(serviceCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
