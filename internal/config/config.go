package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Keys       APIKeys
	Ai         AIConfig
	Campus     CampusConfig
	Knowledge  KnowledgeConfig
	Moderation ModerationConfig
	Voice      VoiceConfig
	Assistant  AssistantConfig
}

type AppConfig struct {
	Name               string
	Version            string
	Port               string
	Environment        string
	LogFilePath        string
	VoiceLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	APIKey             string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	OpenAI      string
	Anthropic   string
	Groq        string
	ElevenLabs  string
	HuggingFace string
}

type AIConfig struct {
	LLMProvider       string // "", "ollama", "openai", "groq", "anthropic", "huggingface"
	LLMModel          string
	LLMBaseURL        string
	LLMTimeout        time.Duration
	EmbeddingProvider string // "ollama" or "openai"
	EmbeddingModel    string
	OllamaBaseURL     string
}

type CampusConfig struct {
	BaseURL     string
	Timeout     time.Duration
	CacheTTL    time.Duration
	ToolTimeout time.Duration
}

type KnowledgeConfig struct {
	Backend      string // "bleve" or "pgvector"
	Directory    string
	TopK         int
	Threshold    float64
	Timeout      time.Duration
	Watch        bool
	ChunkSize    int
	ChunkOverlap int
	ReloadTopic  string
}

type ModerationConfig struct {
	Provider   string // "openai" or "keyword"
	FailPolicy string // "open" or "closed"
	Threshold  float64
	Thresholds map[string]float64 // per-category overrides, "harassment=0.4,spam=0.7"
	Timeout    time.Duration
	CacheSize  int
}

type VoiceConfig struct {
	STTBaseURL  string
	STTModel    string
	TTSProvider string // "elevenlabs", "openai" or ""
	TTSModel    string
	TTSVoice    string
}

type AssistantConfig struct {
	Timezone     string
	PromptsPath  string
	HistoryLimit int
	RequireLLM   bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Name:               getEnv("APP_NAME", "Nexora Campus Copilot"),
			Version:            getEnv("APP_VERSION", "1.0.0"),
			Port:               getEnv("APP_PORT", "8080"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			VoiceLogFilePath:   getEnv("VOICE_LOG_FILE_PATH", "logs/voice.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			APIKey:             getEnv("API_KEY", "poc-key-123"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", "sqlite:file:nexora.db?_pragma=foreign_keys(1)"),
		},
		Keys: APIKeys{
			OpenAI:      getEnv("OPENAI_API_KEY", ""),
			Anthropic:   getEnv("ANTHROPIC_API_KEY", ""),
			Groq:        getEnv("GROQ_API_KEY", ""),
			ElevenLabs:  getEnv("ELEVENLABS_API_KEY", ""),
			HuggingFace: getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", ""),
			LLMModel:          getEnv("LLM_MODEL", ""),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMTimeout:        getEnvAsDuration("LLM_TIMEOUT", 30*time.Second),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Campus: CampusConfig{
			BaseURL:     getEnv("CAMPUS_API_BASE_URL", "http://127.0.0.1:8000/api"),
			Timeout:     getEnvAsDuration("CAMPUS_API_TIMEOUT", 10*time.Second),
			CacheTTL:    getEnvAsDuration("CAMPUS_CACHE_TTL", 2*time.Minute),
			ToolTimeout: getEnvAsDuration("CAMPUS_TOOL_TIMEOUT", 15*time.Second),
		},
		Knowledge: KnowledgeConfig{
			Backend:      getEnv("KNOWLEDGE_BACKEND", "bleve"),
			Directory:    getEnv("KNOWLEDGE_DIR", "knowledge"),
			TopK:         getEnvAsInt("KNOWLEDGE_TOP_K", 5),
			Threshold:    getEnvAsFloat("KNOWLEDGE_THRESHOLD", 0.3),
			Timeout:      getEnvAsDuration("KNOWLEDGE_TIMEOUT", 3*time.Second),
			Watch:        getEnvAsBool("KNOWLEDGE_WATCH", true),
			ChunkSize:    getEnvAsInt("KNOWLEDGE_CHUNK_SIZE", 800),
			ChunkOverlap: getEnvAsInt("KNOWLEDGE_CHUNK_OVERLAP", 100),
			ReloadTopic:  getEnv("KNOWLEDGE_RELOAD_TOPIC", "KNOWLEDGE_RELOAD"),
		},
		Moderation: ModerationConfig{
			Provider:   getEnv("MODERATION_PROVIDER", "openai"),
			FailPolicy: getEnv("MODERATION_FAIL_POLICY", "open"),
			Threshold:  getEnvAsFloat("MODERATION_THRESHOLD", 0.5),
			Thresholds: getEnvAsFloatMap("MODERATION_THRESHOLDS"),
			Timeout:    getEnvAsDuration("MODERATION_TIMEOUT", 10*time.Second),
			CacheSize:  getEnvAsInt("MODERATION_CACHE_SIZE", 1024),
		},
		Voice: VoiceConfig{
			STTBaseURL:  getEnv("STT_BASE_URL", ""),
			STTModel:    getEnv("STT_MODEL", "whisper-large-v3-turbo"),
			TTSProvider: getEnv("TTS_PROVIDER", "elevenlabs"),
			TTSModel:    getEnv("TTS_MODEL", ""),
			TTSVoice:    getEnv("TTS_VOICE", ""),
		},
		Assistant: AssistantConfig{
			Timezone:     getEnv("ASSISTANT_TIMEZONE", "Asia/Colombo"),
			PromptsPath:  getEnv("ASSISTANT_PROMPTS_PATH", ""),
			HistoryLimit: getEnvAsInt("ASSISTANT_HISTORY_LIMIT", 20),
			RequireLLM:   getEnvAsBool("ASSISTANT_REQUIRE_LLM", false),
		},
	}
}

// IsProduction reports whether GO_ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("3s") or plain seconds ("3").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return fallback
}

func getEnvAsFloatMap(key string) map[string]float64 {
	out := make(map[string]float64)
	for _, pair := range strings.Split(getEnv(key, ""), ",") {
		name, raw, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		if value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			out[strings.TrimSpace(name)] = value
		}
	}
	return out
}
