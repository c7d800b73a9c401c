// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/capitalize-ai/assistant-gateway/internal/assistant"
	"github.com/capitalize-ai/assistant-gateway/internal/config"
	"github.com/capitalize-ai/assistant-gateway/internal/events"
	"github.com/capitalize-ai/assistant-gateway/internal/handler"
	"github.com/capitalize-ai/assistant-gateway/internal/middleware"
	"github.com/capitalize-ai/assistant-gateway/pkg/logger"
	"github.com/capitalize-ai/assistant-gateway/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "assistant-gateway", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", "error", err)
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS for event publishing when configured
	var eventPublisher *events.Publisher
	if cfg.NATSURL != "" {
		eventPublisher, err = events.Connect(events.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer eventPublisher.Close()
	}

	// Initialize the remote assistant client
	client, err := assistant.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.AssistantID)
	if err != nil {
		log.Error("failed to create assistant client", "error", err)
		os.Exit(1)
	}

	// Initialize the thread cache and run orchestrator
	threads := assistant.NewThreadCache(client, log)

	var publisher assistant.EventPublisher
	if eventPublisher != nil {
		publisher = eventPublisher
	}

	orchestrator := assistant.NewOrchestrator(client, threads, publisher, log, assistant.Options{
		PaceDelay:    cfg.PaceDelay,
		RetryDelay:   cfg.RetryDelay,
		PollInterval: cfg.PollInterval,
		MaxRetries:   cfg.MaxRetries,
	})

	// Initialize handlers
	var readiness handler.ReadinessChecker
	if eventPublisher != nil {
		readiness = eventPublisher
	}
	healthHandler := handler.NewHealthHandler(cfg.AssistantID, readiness)
	chatHandler := handler.NewChatHandler(orchestrator, log)
	streamHandler := handler.NewStreamHandler(orchestrator, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	// Health endpoints (no auth required)
	r.Get("/api/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Chat API
	r.Group(func(r chi.Router) {
		if cfg.JWTSecret != "" {
			r.Use(middleware.Auth(cfg.JWTSecret))
		}
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/api/chat", chatHandler.Chat)
		r.Post("/api/chat/stream", streamHandler.Stream)
		r.Get("/api/chat/history/{user_id}", chatHandler.History)
		r.Get("/api/chat/message/{user_id}/{message_id}", chatHandler.Message)
		r.Delete("/api/thread/{user_id}", chatHandler.DeleteThread)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
