package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Port          int
	UploadDir     string
	CounterPath   string
	AnalyzeEngine string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	CORSOrigins   []string
	MaxUploadMB   int64
}

func Load() (*Config, error) {
	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	uploadDir := getEnv("UPLOAD_DIR", "./uploads")
	maxUploadMB, _ := strconv.ParseInt(getEnv("MAX_UPLOAD_MB", "100"), 10, 64)

	// CORS origins: comma-separated list or "*" (default)
	corsOrigins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		corsOrigins = make([]string, 0, len(origins))
		for _, o := range origins {
			o = strings.TrimSpace(o)
			if o != "" {
				corsOrigins = append(corsOrigins, o)
			}
		}
	}

	cfg := &Config{
		Port:          port,
		UploadDir:     uploadDir,
		CounterPath:   filepath.Join(uploadDir, ".counter"),
		AnalyzeEngine: getEnv("ANALYZE_ENGINE", "gemini"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		CORSOrigins:   corsOrigins,
		MaxUploadMB:   maxUploadMB,
	}

	// API keys are external secrets and only come from the environment. Only
	// the selected engine's key is required.
	switch cfg.AnalyzeEngine {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when ANALYZE_ENGINE=gemini")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when ANALYZE_ENGINE=openai")
		}
	default:
		return nil, fmt.Errorf("unknown ANALYZE_ENGINE: %s (want gemini or openai)", cfg.AnalyzeEngine)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
