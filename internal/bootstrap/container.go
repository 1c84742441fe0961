package bootstrap

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"nexora-campus-be/internal/config"
	"nexora-campus-be/internal/constant"
	"nexora-campus-be/internal/controller"
	"nexora-campus-be/internal/pkg/logger"
	"nexora-campus-be/internal/pkg/serverutils"
	"nexora-campus-be/internal/repository/unitofwork"
	"nexora-campus-be/internal/service"
	"nexora-campus-be/internal/websocket"
	"nexora-campus-be/pkg/ai/assembler"
	"nexora-campus-be/pkg/ai/composer"
	"nexora-campus-be/pkg/ai/pipeline"
	"nexora-campus-be/pkg/ai/prompt"
	"nexora-campus-be/pkg/ai/router"
	"nexora-campus-be/pkg/campus"
	"nexora-campus-be/pkg/embedding"
	"nexora-campus-be/pkg/events"
	"nexora-campus-be/pkg/knowledge"
	"nexora-campus-be/pkg/llm/factory"
	"nexora-campus-be/pkg/moderation"
	pktNats "nexora-campus-be/pkg/nats"
	"nexora-campus-be/pkg/voice"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController         controller.IChatController
	ConversationController controller.IConversationController
	ModerationController   controller.IModerationController
	KnowledgeController    controller.IKnowledgeController
	VoiceController        controller.IVoiceController
	SystemController       controller.ISystemController

	// Auth guards every non-public route.
	Auth fiber.Handler

	// Background services, started by main.
	KnowledgeService service.IKnowledgeService
	WebSocketHub     *websocket.Hub
	NatsSubscriber   *pktNats.Subscriber

	Logger  logger.ILogger
	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	voiceLogger := logger.NewIsolatedLogger(cfg.App.VoiceLogFilePath)

	location, err := time.LoadLocation(cfg.Assistant.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Assistant.Timezone, err)
	}
	messages, err := prompt.Load(cfg.Assistant.PromptsPath)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	c := &Container{Logger: sysLogger}

	// 2. Event bus: in-process for reload jobs, NATS for domain events
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			publisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			c.NatsSubscriber = natsSub
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	// 3. Campus tools behind a two-tier cache
	var cache campus.Cache = campus.NewMemoryCache(cfg.Campus.CacheTTL)
	if rdb := newRedis(cfg.App.RedisURL); rdb != nil {
		cache = campus.NewTieredCache(cache, campus.NewRedisCache(rdb))
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}
	campusClient := campus.NewClient(cfg.Campus.BaseURL, cfg.Campus.Timeout, cache, cfg.Campus.CacheTTL)
	registry, err := campus.NewRegistry(campus.Tools(campusClient)...)
	if err != nil {
		return nil, fmt.Errorf("build tool registry: %w", err)
	}

	// 4. Moderation
	gate := moderation.NewGate(newClassifier(cfg), moderation.Config{
		Thresholds: thresholds(cfg.Moderation),
		Policy:     moderation.ParseFailPolicy(cfg.Moderation.FailPolicy),
		CacheSize:  cfg.Moderation.CacheSize,
	})
	moderationService := service.NewModerationService(gate, sysLogger)

	// 5. Knowledge base
	builder, err := knowledgeBuilder(cfg, uowFactory)
	if err != nil {
		return nil, err
	}
	kb := knowledge.NewBase(builder)
	c.closers = append(c.closers, func() { _ = kb.Close() })
	c.KnowledgeService = service.NewKnowledgeService(kb, pubSub, service.KnowledgeOptions{
		Backend:   cfg.Knowledge.Backend,
		Directory: cfg.Knowledge.Directory,
		Topic:     cfg.Knowledge.ReloadTopic,
		Watch:     cfg.Knowledge.Watch,
	}, sysLogger)

	// 6. Routing and composition
	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  llmBaseURL(cfg),
		APIKey:   llmKey(cfg),
		Timeout:  cfg.Ai.LLMTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	opts := router.Options{
		RequirePhrasing: cfg.Assistant.RequireLLM,
		ToolTimeout:     cfg.Campus.ToolTimeout,
	}
	if llmProvider != nil {
		opts.Phraser = pipeline.NewPhrasePipeline(llmProvider, messages.SystemInstructions, nil)
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	} else {
		log.Printf("[INFO] No LLM provider configured, replies are deterministic")
	}
	orchestrator := router.NewOrchestrator(registry, messages, opts)
	asm := assembler.New(kb, assembler.Config{
		Location:  location,
		TopK:      cfg.Knowledge.TopK,
		Threshold: cfg.Knowledge.Threshold,
		Timeout:   cfg.Knowledge.Timeout,
	})

	// 7. Services
	conversationService := service.NewConversationService(uowFactory, sysLogger)
	chatService := service.NewChatService(
		conversationService,
		moderationService,
		asm,
		orchestrator,
		composer.New(messages.AgentName),
		publisher,
		service.ChatOptions{HistoryLimit: cfg.Assistant.HistoryLimit},
		sysLogger,
	)
	transcriber, synthesizer := newVoiceBackends(cfg)
	voiceService := service.NewVoiceService(transcriber, synthesizer, chatService, service.VoiceOptions{
		TTSProvider: cfg.Voice.TTSProvider,
	}, voiceLogger)

	c.WebSocketHub = websocket.NewHub(voiceLogger)

	// 8. Controllers
	c.Auth = serverutils.APIKeyMiddleware(cfg.App.APIKey)
	c.ChatController = controller.NewChatController(chatService)
	c.ConversationController = controller.NewConversationController(conversationService)
	c.ModerationController = controller.NewModerationController(moderationService)
	c.KnowledgeController = controller.NewKnowledgeController(c.KnowledgeService)
	c.VoiceController = controller.NewVoiceController(voiceService, c.WebSocketHub, cfg.App.APIKey, voiceLogger)
	c.SystemController = controller.NewSystemController(cfg.App.Name, cfg.App.Version)

	return c, nil
}

// Start runs the background workers until ctx is cancelled.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.KnowledgeService.Start(ctx); err != nil {
		return err
	}
	if c.NatsSubscriber != nil {
		err := c.NatsSubscriber.Subscribe(ctx, events.TypeKnowledgeReload, "nexora-knowledge-reload", c.KnowledgeService.HandleReloadEvent)
		if err != nil {
			c.Logger.Warn(constant.ModuleEvents, "Knowledge reload subscription failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func newRedis(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis, using in-process cache only: %v", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func newClassifier(cfg *config.Config) moderation.Classifier {
	local := moderation.NewKeywordClassifier(nil)
	if strings.EqualFold(cfg.Moderation.Provider, "openai") && cfg.Keys.OpenAI != "" {
		log.Printf("[INFO] Using moderation classifier: OPENAI")
		return moderation.NewOpenAIClassifier(cfg.Keys.OpenAI, cfg.Moderation.Timeout, local)
	}
	log.Printf("[INFO] Using moderation classifier: KEYWORD")
	return local
}

// thresholds applies MODERATION_THRESHOLD to every category, then the
// per-category overrides.
func thresholds(cfg config.ModerationConfig) map[moderation.Category]float64 {
	out := moderation.DefaultThresholds()
	if cfg.Threshold > 0 {
		for c := range out {
			out[c] = cfg.Threshold
		}
	}
	for name, v := range cfg.Thresholds {
		if _, ok := out[moderation.Category(name)]; ok {
			out[moderation.Category(name)] = v
		} else {
			log.Printf("[WARN] Unknown moderation category in thresholds: %s", name)
		}
	}
	return out
}

func knowledgeBuilder(cfg *config.Config, uowFactory unitofwork.RepositoryFactory) (knowledge.Builder, error) {
	chunkOpts := knowledge.ChunkOptions{Size: cfg.Knowledge.ChunkSize, Overlap: cfg.Knowledge.ChunkOverlap}

	switch strings.ToLower(cfg.Knowledge.Backend) {
	case "", "bleve":
		return func(ctx context.Context) (knowledge.Index, int, error) {
			chunks, docs, err := knowledge.LoadDirectory(cfg.Knowledge.Directory, chunkOpts)
			if err != nil {
				return nil, 0, err
			}
			idx, err := knowledge.NewBleveIndex(chunks)
			if err != nil {
				return nil, 0, err
			}
			return idx, docs, nil
		}, nil
	case "pgvector":
		provider, err := embedding.NewEmbeddingProvider(cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel, cfg.Ai.OllamaBaseURL, cfg.Keys.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("init embedding provider: %w", err)
		}
		log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)
		return func(ctx context.Context) (knowledge.Index, int, error) {
			chunks, docs, err := knowledge.LoadDirectory(cfg.Knowledge.Directory, chunkOpts)
			if err != nil {
				return nil, 0, err
			}
			store := uowFactory.NewUnitOfWork(ctx).KnowledgeChunkRepository()
			idx, err := knowledge.BuildVectorIndex(ctx, provider, store, chunks)
			if err != nil {
				return nil, 0, err
			}
			return idx, docs, nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown knowledge backend %q", cfg.Knowledge.Backend)
	}
}

func newVoiceBackends(cfg *config.Config) (voice.Transcriber, voice.Synthesizer) {
	var transcriber voice.Transcriber
	if key := firstNonEmpty(cfg.Keys.Groq, cfg.Keys.OpenAI); key != "" {
		transcriber = voice.NewWhisperTranscriber(key, cfg.Voice.STTBaseURL, cfg.Voice.STTModel)
	}

	var synthesizer voice.Synthesizer
	switch strings.ToLower(cfg.Voice.TTSProvider) {
	case "elevenlabs":
		if cfg.Keys.ElevenLabs != "" {
			synthesizer = voice.NewElevenLabsSynthesizer(cfg.Keys.ElevenLabs, cfg.Voice.TTSVoice, 30*time.Second)
		}
	case "openai":
		if cfg.Keys.OpenAI != "" {
			synthesizer = voice.NewOpenAISynthesizer(cfg.Keys.OpenAI, cfg.Voice.TTSModel, cfg.Voice.TTSVoice)
		}
	}
	return transcriber, synthesizer
}

func llmKey(cfg *config.Config) string {
	switch strings.ToLower(cfg.Ai.LLMProvider) {
	case "anthropic":
		return cfg.Keys.Anthropic
	case "groq":
		return cfg.Keys.Groq
	case "huggingface":
		return cfg.Keys.HuggingFace
	default:
		return cfg.Keys.OpenAI
	}
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMBaseURL == "" && strings.EqualFold(cfg.Ai.LLMProvider, "ollama") {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.LLMBaseURL
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
