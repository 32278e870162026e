package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carebook/config"
	"carebook/cron"
	"carebook/database"
	availabilityRepo "carebook/database/repository/availability"
	catalogRepo "carebook/database/repository/catalog"
	familyRepo "carebook/database/repository/family"
	recurringRepo "carebook/database/repository/recurring"
	requestsRepo "carebook/database/repository/requests"
	userRepo "carebook/database/repository/user"
	"carebook/handlers"
	"carebook/middleware"
	"carebook/routes"
	"carebook/services/notification"
	"carebook/services/session"
	"carebook/services/tracking"
	"carebook/services/wizard"
	"carebook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	database.InitDB()
	utils.InitDraftCache()
	utils.FirebaseInit()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	redisClient := utils.GetDraftCacheClient()
	utils.StartHealthMonitor(ctx, 30*time.Second, redisClient, database.MongoClient)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(handlers.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	// repositories.
	db := database.DB()
	users := userRepo.NewMongoUserRepo(db)
	children := familyRepo.NewMongoFamilyRepo(db)
	catalog := catalogRepo.NewMongoCatalogRepo(db)
	blocks := availabilityRepo.NewMongoAvailabilityRepo(db)
	recurring := recurringRepo.NewMongoRecurringRepo(db)
	requests := requestsRepo.NewMongoRequestRepo(db)
	loc := config.Location()

	// services.
	var sender notification.Sender
	if utils.FCMClient != nil {
		sender = utils.FCMClient
	}
	notificationService, err := notification.NewDefaultNotificationService(users, sender, logger)
	if err != nil {
		logger.Fatal("main: failed to build notification service", zap.Error(err))
	}

	queue := cron.NewClient()
	defer queue.Close()
	alerts := notification.NewAlertQueue(queue, redisClient, notification.DefaultDedupeWindow, logger)
	hub := tracking.NewHub(requests, alerts, config.AppConfig.GeofenceRadiusMeters, logger)

	wizardService := &wizard.DefaultWizardService{
		Store:        session.NewRedisDraftStore(redisClient, config.AppConfig.DraftTTL),
		Requests:     requests,
		Recurring:    recurring,
		Availability: blocks,
		Profiles:     children,
		Rates:        catalog,
		Users:        users,
		Logger:       logger,
		Location:     loc,
	}

	materializer := &cron.Materializer{
		Recurring: recurring,
		Requests:  requests,
		Logger:    logger,
		Location:  loc,
	}
	worker := cron.InitWorker(ctx, notificationService, materializer)

	handlerBundle := &handlers.HandlerBundle{
		Wizard:       handlers.NewWizardHandler(wizardService),
		Catalog:      handlers.NewCatalogHandler(catalog),
		Family:       handlers.NewFamilyHandler(children),
		Availability: handlers.NewAvailabilityHandler(blocks),
		Recurring:    handlers.NewRecurringHandler(recurring),
		Requests:     handlers.NewRequestHandler(requests, users, hub),
		Tracking:     handlers.NewTrackingHandler(hub),
		User:         handlers.NewUserHandler(users),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	worker.Shutdown()
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
