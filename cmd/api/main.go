package main

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	firebasesdk "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"quickroom/internal/adapter/api"
	"quickroom/internal/adapter/api/handler"
	"quickroom/internal/adapter/api/middleware"
	"quickroom/internal/adapter/api/router"
	"quickroom/internal/adapter/repository"
	"quickroom/internal/infrastructure/firebase"
	"quickroom/internal/infrastructure/realtime"
	"quickroom/internal/infrastructure/storage"
	"quickroom/internal/usecase"
	"quickroom/pkg/config"
	"quickroom/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebasesdk.NewApp(ctx, &firebasesdk.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase app: %v", err)
	}

	authSDK, err := app.Auth(ctx)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase auth: %v", err)
	}
	authClient := firebase.NewAuthClient(authSDK)

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		logger.Fatal("Failed to connect to Firestore: %v", err)
	}
	defer firestoreClient.Close()

	storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, cfg.CredentialsFile)
	if err != nil {
		logger.Fatal("Failed to connect to Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	// Repositories
	conversationRepo := repository.NewFirestoreConversationRepository(firestoreClient)
	appointmentRepo := repository.NewFirestoreAppointmentRepository(firestoreClient)
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient)
	securityEventRepo := repository.NewFirestoreSecurityEventRepository(firestoreClient)
	listingRepo := repository.NewFirestoreListingRepository(firestoreClient)
	userRepo := repository.NewFirestoreUserRepository(firestoreClient)

	// Realtime layer
	wsManager := realtime.NewManager()
	wsManager.Start(ctx)

	presenceTracker := usecase.NewPresenceTracker(wsManager, time.Duration(cfg.TypingExpirySec)*time.Second)
	wsManager.SetTypingHandler(presenceTracker.SetTyping)

	// Use cases
	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, wsManager)
	conversationUseCase := usecase.NewConversationUseCase(conversationRepo, listingRepo, userRepo, notificationUseCase, wsManager)
	appointmentUseCase := usecase.NewAppointmentUseCase(appointmentRepo, listingRepo, securityEventRepo, notificationUseCase, wsManager)

	// HTTP surface
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	authMiddleware := middleware.NewAuthMiddleware(authClient)

	router.Setup(e, router.Handlers{
		Conversation: handler.NewConversationHandler(conversationUseCase),
		Appointment:  handler.NewAppointmentHandler(appointmentUseCase),
		Notification: handler.NewNotificationHandler(notificationUseCase),
		WebSocket:    handler.NewWebSocketHandler(wsManager, authClient),
		File:         handler.NewFileHandler(storageClient),
		Health:       handler.NewHealthHandler(authClient, cfg.Environment),
	}, authMiddleware)

	logger.Info("Starting server on port %s (%s)", cfg.ServerPort, cfg.Environment)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		logger.Fatal("Server stopped: %v", err)
	}
}
