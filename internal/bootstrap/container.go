package bootstrap

import (
	"context"
	"log"

	"perry-be/internal/config"
	"perry-be/internal/controller"
	"perry-be/internal/pkg/logger"
	"perry-be/internal/pkg/mailer"
	"perry-be/internal/repository/memory"
	"perry-be/internal/repository/unitofwork"
	"perry-be/internal/service"
	"perry-be/pkg/llm/factory"

	pktNats "perry-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 3. Services
	llmProvider, err := factory.NewLLMProvider(
		context.Background(),
		cfg.Ai.Provider,
		cfg.Ai.Model,
		cfg.Ai.GeminiAPIKey,
		cfg.Ai.BaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.Provider, cfg.Ai.Model)

	// In-memory conversation pipeline state
	conversationRepo := memory.NewConversationRepository()

	publisherService := service.NewPublisherService(pubSub, cfg.Topics.SessionTitle)

	// Background worker logs go to the file only, keeping the console
	// stream for request logs.
	workerLogger := logger.NewIsolatedLogger(cfg.App.LogFilePath)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Topics.SessionTitle,
		uowFactory,
		workerLogger,
	)

	sessionService := service.NewSessionService(uowFactory, conversationRepo, natsPub, sysLogger)
	authService := service.NewAuthService(uowFactory, emailService, sessionService, natsPub, sysLogger)
	messageStore := service.NewMessageStoreService(uowFactory)

	chatService := service.NewChatService(
		uowFactory,
		messageStore,
		sessionService,
		llmProvider,
		conversationRepo,
		publisherService,
		natsPub,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		AuthController: controller.NewAuthController(authService),
		ChatController: controller.NewChatController(chatService, sessionService, messageStore),

		ConsumerService: consumerService,
	}
}
