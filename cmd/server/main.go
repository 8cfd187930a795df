package main

import (
	"coachvision/analysis-app/internal/api"
	"coachvision/analysis-app/internal/config"
	"coachvision/analysis-app/internal/jobs"
	"coachvision/analysis-app/internal/logger"
	"coachvision/analysis-app/internal/repository/mongo"
	"coachvision/analysis-app/internal/service"
	"coachvision/analysis-app/internal/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	logger.Init()
	defer logger.Sync()

	logger.Info("starting analysis app server")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal("could not load config", err)
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("could not connect to MongoDB", err)
	}
	defer func() {
		logger.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("database connection established", "database", cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureRelationshipIndexes(ctx, appDB.Collection("relationships"))
		mongo.EnsureRequestIndexes(ctx, appDB.Collection("requests"))
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("sessions"))
		mongo.EnsureVideoIndexes(ctx, appDB.Collection("session_videos"))
		mongo.EnsureCommentIndexes(ctx, appDB.Collection("session_comments"))
		mongo.EnsureAnnotationIndexes(ctx, appDB.Collection("session_annotations"))
		mongo.EnsureNoteIndexes(ctx, appDB.Collection("session_notes"))
		mongo.EnsureProgressIndexes(ctx, appDB.Collection("session_progress"))
		mongo.EnsureNotificationIndexes(ctx, appDB.Collection("notifications"))
		logger.Info("index creation process completed")
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		logger.Fatal("failed to initialize S3 storage", err)
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	relationshipRepo := mongo.NewMongoRelationshipRepository(appDB)
	requestRepo := mongo.NewMongoRequestRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	videoRepo := mongo.NewMongoVideoRepository(appDB)
	commentRepo := mongo.NewMongoCommentRepository(appDB)
	annotationRepo := mongo.NewMongoAnnotationRepository(appDB)
	noteRepo := mongo.NewMongoNoteRepository(appDB)
	progressRepo := mongo.NewMongoProgressRepository(appDB)
	notificationRepo := mongo.NewMongoNotificationRepository(appDB)

	// --- Initialize Services ---
	notificationService := service.NewNotificationService(notificationRepo, cfg.Notifications.RetryBuffer)
	relationshipService := service.NewRelationshipService(relationshipRepo, userRepo)
	requestService := service.NewRequestService(requestRepo, relationshipRepo, sessionRepo, userRepo, notificationService)
	mediaService := service.NewMediaService(videoRepo, sessionRepo, fileStorage, notificationService, cfg.Media)
	sessionService := service.NewSessionService(sessionRepo, relationshipRepo, progressRepo, userRepo, mediaService, notificationService)
	collabService := service.NewCollabService(commentRepo, annotationRepo, noteRepo, videoRepo, sessionRepo, notificationService)

	// --- Background Jobs ---
	retryCron := jobs.StartNotificationRetry(notificationService, cfg.Notifications.RetryInterval)
	defer retryCron.Stop()

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	api.SetupRoutes(
		router,
		cfg.JWT.Secret,
		relationshipService,
		requestService,
		sessionService,
		mediaService,
		collabService,
		notificationService,
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("server starting", "address", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("ListenAndServe error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Fatal("server forced to shutdown", err)
	}

	logger.Info("server exiting")
}
