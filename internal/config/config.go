package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Inference endpoint (OpenAI-compatible chat completions)
	HFAPIToken         string
	InferenceBaseURL   string
	InferenceModel     string
	InferenceMaxTokens int

	// Speech recognition (Gemini File API)
	GeminiAPIKey string

	// Text-to-speech
	TTSBaseURL  string
	TTSLanguage string

	// Market data
	MarketBaseURL string

	// Storage
	StoragePath string
	ClipPath    string

	// Transcript archive
	ArchiveDBPath string

	// Frontend
	FrontendURL string

	// Rate limiting
	ChatRequestsPerMin int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port: getEnvOrDefault("PORT", "8080"),
		Env:  getEnvOrDefault("ENV", "development"),

		// An absent token is not validated here; it surfaces as an
		// authentication failure on the first inference call.
		HFAPIToken:         getEnvOrDefault("HF_API_TOKEN", ""),
		InferenceBaseURL:   getEnvOrDefault("INFERENCE_BASE_URL", "https://router.huggingface.co/v1"),
		InferenceModel:     getEnvOrDefault("INFERENCE_MODEL", "mistralai/Mixtral-8x7B-Instruct-v0.1"),
		InferenceMaxTokens: getEnvAsIntOrDefault("INFERENCE_MAX_TOKENS", 120),

		GeminiAPIKey: getEnvOrDefault("GEMINI_API_KEY", ""),

		TTSBaseURL:  getEnvOrDefault("TTS_BASE_URL", "https://translate.google.com"),
		TTSLanguage: getEnvOrDefault("TTS_LANGUAGE", "en"),

		MarketBaseURL: getEnvOrDefault("MARKET_BASE_URL", "https://query1.finance.yahoo.com"),

		StoragePath: getEnvOrDefault("STORAGE_PATH", "./store_files"),
		ClipPath:    getEnvOrDefault("CLIP_PATH", "./clips"),

		ArchiveDBPath: getEnvOrDefault("ARCHIVE_DB_PATH", "transcripts.db"),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),

		ChatRequestsPerMin: getEnvAsIntOrDefault("CHAT_REQUESTS_PER_MINUTE", 30),
	}

	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
