package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Otel     OtelConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleAPIKey  string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OllamaBaseURL string
}

type AIConfig struct {
	Model         string // "provider:model", e.g. "google_genai:gemini-2.5-flash"
	MaxAttempts   int
	BackOffMin    time.Duration
	BackOffMax    time.Duration
	StagePacing   time.Duration
	PromptsFile   string
	CorrectionTTL time.Duration
}

type OtelConfig struct {
	Enabled  bool
	Endpoint string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleAPIKey:  getEnv("GOOGLE_API_KEY", ""),
			OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		},
		Ai: AIConfig{
			Model:         getEnv("FIT_AI_MODEL", "google_genai:gemini-2.5-flash"),
			MaxAttempts:   getEnvAsInt("LLM_MAX_ATTEMPTS", 3),
			BackOffMin:    getEnvAsSeconds("LLM_BACKOFF_MIN_SECONDS", 4*time.Second),
			BackOffMax:    getEnvAsSeconds("LLM_BACKOFF_MAX_SECONDS", 30*time.Second),
			StagePacing:   getEnvAsSeconds("STAGE_PACING_SECONDS", 2*time.Second),
			PromptsFile:   getEnv("PROMPTS_FILE", ""),
			CorrectionTTL: getEnvAsSeconds("CORRECTION_LOCK_TTL_SECONDS", 5*time.Minute),
		},
		Otel: OtelConfig{
			Enabled:  getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
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

// getEnvAsSeconds accepts fractional seconds ("0.5").
func getEnvAsSeconds(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil && value >= 0 {
		return time.Duration(value * float64(time.Second))
	}
	return fallback
}
