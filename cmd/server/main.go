package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"agora/internal/config"
	"agora/internal/conversation"
	"agora/internal/handler"
	"agora/internal/middleware"
	"agora/internal/provider"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, 10)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
	)

	// Build the adapter set from credential presence, once
	ctx := context.Background()
	registry, err := provider.Setup(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to setup providers: %v", err)
	}

	// One conversation per process; reset clears it
	conv := conversation.New(cfg, registry, conversation.NewRoller(nil), logger)

	convHandler := handler.NewConversationHandler(conv, cfg, logger)

	logger.Info("services initialized", "conversation", conv.ID())

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", convHandler.HealthCheck)
	mux.HandleFunc("GET /{$}", convHandler.Status)

	mux.HandleFunc("POST /api/message", convHandler.SendMessage)
	mux.HandleFunc("GET /api/export", convHandler.Export)
	mux.HandleFunc("GET /api/diagnostics", convHandler.Diagnostics)
	mux.HandleFunc("POST /api/reset", convHandler.Reset)

	// Build middleware chain
	var h http.Handler = mux
	h = middleware.Recovery(logger)(h)

	// CORS - outermost so pre-flight requests are handled first
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	})
	h = corsHandler.Handler(h)

	// A round blocks for up to every active participant's timeout plus
	// retries, so the write timeout has to cover the slowest full round.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
