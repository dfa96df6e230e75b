package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"enrolla/config"
	"enrolla/database"
	appointmentRepo "enrolla/database/repository/appointment"
	chatRepoPkg "enrolla/database/repository/chat"
	leadRepoPkg "enrolla/database/repository/lead"
	messageRepoPkg "enrolla/database/repository/message"
	orgRepoPkg "enrolla/database/repository/organization"
	queueRepoPkg "enrolla/database/repository/queue"
	sessionRepoPkg "enrolla/database/repository/session"
	slotRepoPkg "enrolla/database/repository/slot"
	templateRepoPkg "enrolla/database/repository/template"
	"enrolla/handlers"
	"enrolla/middleware"
	"enrolla/routes"
	"enrolla/services/booking"
	"enrolla/services/chat"
	ai "enrolla/services/intelligence"
	"enrolla/services/lead"
	"enrolla/services/state"
	"enrolla/services/storage"
	"enrolla/services/templates"
	"enrolla/services/whatsapp"
	"enrolla/utils"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	db, err := database.Connect()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to connect to database: %v", err)
	}
	utils.InitStateCache()

	mediaStorage, err := storage.NewCloudinaryStorage(
		config.AppConfig.CloudinaryCloudName,
		config.AppConfig.CloudinaryAPIKey,
		config.AppConfig.CloudinaryAPISecret,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize media storage: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	orgRepo := orgRepoPkg.NewMongoOrganizationRepo(db)
	chatRepo := chatRepoPkg.NewMongoChatRepo(db)
	sessionRepo := sessionRepoPkg.NewMongoSessionRepo(db)
	messageRepo := messageRepoPkg.NewMongoMessageRepo(db)
	leadRepo := leadRepoPkg.NewMongoLeadRepo(db)
	slotRepo := slotRepoPkg.NewMongoSlotRepo(db)
	apptRepo := appointmentRepo.NewMongoAppointmentRepo(db)
	queueRepo := queueRepoPkg.NewMongoQueueRepo(db)
	templateRepo := templateRepoPkg.NewMongoTemplateRepo(db)

	// services.
	stateStore := state.NewRedisStore(utils.GetStateCacheClient(), chatRepo, 30*time.Minute)
	gateway := whatsapp.NewClient(config.AppConfig.WhatsAppAccessToken)

	leadService := &lead.DefaultLeadService{
		Repo:  leadRepo,
		State: stateStore,
	}
	bookingService := &booking.DefaultBookingService{
		Slots:        slotRepo,
		Appointments: apptRepo,
		Leads:        leadRepo,
		State:        stateStore,
	}

	completerConfig := openai.DefaultConfig(config.AppConfig.XAIAPIKey)
	completerConfig.BaseURL = config.AppConfig.XAIBaseURL
	aiService := &ai.DefaultAIService{
		Completer: openai.NewClientWithConfig(completerConfig),
		Model:     config.AppConfig.XAIModel,
		Leads:     leadService,
		Booking:   bookingService,
		State:     stateStore,
		Gateway:   gateway,
	}

	chatService := &chat.DefaultChatService{
		Orgs:           orgRepo,
		Chats:          chatRepo,
		Sessions:       sessionRepo,
		Messages:       messageRepo,
		Queue:          queueRepo,
		Gateway:        gateway,
		Storage:        mediaStorage,
		AI:             aiService,
		DebounceWindow: time.Duration(config.AppConfig.DebounceMs) * time.Millisecond,
	}
	templateService := &templates.DefaultSyncService{
		Orgs:      orgRepo,
		Templates: templateRepo,
	}

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Webhook:  handlers.NewWebhookHandler(chatService, templateService, config.AppConfig.WhatsAppVerifyToken),
		Process:  handlers.NewProcessHandler(chatService),
		Outbound: handlers.NewOutboundHandler(orgRepo, chatRepo, messageRepo, gateway),
	}

	// Register routes with the assembled handler bundle.
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
