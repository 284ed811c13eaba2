package bootstrap

import (
	"context"
	"log"

	"rag-assistant-be/internal/config"
	"rag-assistant-be/internal/controller"
	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/internal/repository/implementation"
	"rag-assistant-be/internal/repository/memory"
	"rag-assistant-be/internal/repository/unitofwork"
	"rag-assistant-be/internal/service"
	"rag-assistant-be/internal/websocket"
	"rag-assistant-be/pkg/embedding"
	"rag-assistant-be/pkg/llm/factory"
	pktNats "rag-assistant-be/pkg/nats"
	"rag-assistant-be/pkg/rag/response"
	"rag-assistant-be/pkg/rag/search"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background services, run from main
	ConsumerService service.IConsumerService

	// WebSockets
	WebSocketHub *websocket.Hub
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

	// 3. AI providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	wsLogger := logger.NewIsolatedLogger("logs/chat_stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Conversation pipeline
	sessionRepo := memory.NewSessionRepository()
	engine := search.NewEngine(embeddingProvider, implementation.NewDocumentIndexRepository(db), search.Config{
		PersonalTopK: cfg.Retrieval.PersonalTopK,
		SystemTopK:   cfg.Retrieval.SystemTopK,
		Timeout:      cfg.Retrieval.Timeout,
	})
	generator := response.NewGenerator(llmProvider, wsHub)

	publisherService := service.NewPublisherService(cfg.Keys.TurnEventTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.TurnEventTopic,
		wsHub,
		wsLogger,
	)

	conversationService := service.NewConversationService(
		uowFactory,
		sessionRepo,
		engine,
		generator,
		publisherService,
		natsPub,
		sysLogger,
	)

	chatController := controller.NewChatController(conversationService, wsHub, sysLogger)

	return &Container{
		ChatController:  chatController,
		ConsumerService: consumerService,
		WebSocketHub:    wsHub,
	}
}
