package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/speech-coach/backend/internal/analyze"
	"github.com/speech-coach/backend/internal/api"
	"github.com/speech-coach/backend/internal/config"
	"github.com/speech-coach/backend/internal/ffmpeg"
	"github.com/speech-coach/backend/internal/metrics"
	"github.com/speech-coach/backend/internal/storage"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Upload store + sequential allocator
	store, err := storage.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize upload store: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	alloc := storage.NewAllocator(cfg.CounterPath, m)
	tool := ffmpeg.New()

	// Analysis service with the engines we have keys for
	analyzer := analyze.NewService(cfg.AnalyzeEngine, m)
	if cfg.GeminiAPIKey != "" {
		analyzer.Register(analyze.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel))
	}
	if cfg.OpenAIAPIKey != "" {
		analyzer.Register(analyze.NewOpenAIProvider(cfg.OpenAIAPIKey))
	}

	router := api.NewRouter(cfg, store, alloc, tool, analyzer, m, reg)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Starting server on %s", addr)
	log.Printf("Upload dir: %s", cfg.UploadDir)
	log.Printf("Analysis engine: %s", cfg.AnalyzeEngine)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		os.Exit(0)
	}()

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
