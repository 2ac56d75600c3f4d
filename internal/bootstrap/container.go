package bootstrap

import (
	"log"
	"time"

	"midgpt-be/internal/config"
	"midgpt-be/internal/controller"
	"midgpt-be/internal/pkg/logger"
	"midgpt-be/internal/repository/memory"
	"midgpt-be/internal/repository/unitofwork"
	"midgpt-be/internal/service"
	"midgpt-be/pkg/llm"
	"midgpt-be/pkg/storage"

	pktNats "midgpt-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	UserController       controller.IUserController
	AuthController       controller.IAuthController
	ChatController       controller.IChatController
	GenerationController controller.IGenerationController

	// Background services, run by main
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS is optional infrastructure. A dead broker degrades event
	// forwarding, never the chat flow.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 3. Model and artifact providers
	geminiProvider, err := llm.NewGeminiProvider(
		cfg.Keys.GoogleGemini,
		cfg.Ai.TextModel,
		cfg.Ai.ImageModel,
		time.Duration(cfg.Ai.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Gemini provider: %v", err)
	}

	artifactStore := storage.NewSupabaseStore(
		cfg.Storage.SupabaseURL,
		cfg.Storage.Bucket,
		cfg.Storage.ServiceKey,
		30*time.Second,
	)

	// 4. In-memory interaction state
	stateRepo := memory.NewConversationStateRepository()

	// 5. Services
	publisherService := service.NewPublisherService(cfg.App.EventTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.EventTopic, natsPub, sysLogger)

	onboardingService := service.NewOnboardingService(uowFactory, publisherService)
	oauthService := service.NewOAuthService(onboardingService)
	chatService := service.NewChatService(uowFactory, stateRepo, publisherService)
	generationService := service.NewGenerationService(
		uowFactory,
		stateRepo,
		geminiProvider,
		geminiProvider,
		artifactStore,
		publisherService,
	)
	conversationService := service.NewConversationService(uowFactory, stateRepo, generationService, publisherService)

	// 6. Controllers
	return &Container{
		UserController:       controller.NewUserController(onboardingService),
		AuthController:       controller.NewAuthController(oauthService),
		ChatController:       controller.NewChatController(chatService, conversationService),
		GenerationController: controller.NewGenerationController(generationService),

		ConsumerService: consumerService,
	}
}
