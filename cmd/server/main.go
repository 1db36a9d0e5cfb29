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
	"github.com/modernmen/concierge/internal/api"
	"github.com/modernmen/concierge/internal/auth"
	"github.com/modernmen/concierge/internal/config"
	"github.com/modernmen/concierge/internal/conversation"
	"github.com/modernmen/concierge/internal/directory"
	"github.com/modernmen/concierge/internal/metrics"
	"github.com/modernmen/concierge/internal/profile"
	"github.com/modernmen/concierge/internal/routing"
	"github.com/modernmen/concierge/internal/storage"
	"github.com/modernmen/concierge/internal/sweeper"
	"github.com/modernmen/concierge/internal/websocket"
	"github.com/modernmen/concierge/pkg/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Msg("starting concierge server")

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create persistence store
	store, err := storage.NewStore(ctx, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}

	// Create WebSocket hub
	hub := websocket.NewHub(log.Logger)
	go hub.Run()

	// Create WebSocket handler
	wsHandler := websocket.NewHandler(hub, cfg, log.Logger)

	// Create agent directory and load the roster
	dir := directory.New()
	agentClient := directory.NewClient(cfg.AgentServiceURL, cfg.HTTPTimeout, log.Logger)
	agentClient.LoadAgents(ctx, dir)

	// Create profile client
	profiles := profile.NewClient(cfg.UserServiceURL, cfg.HTTPTimeout, log.Logger)

	// Create conversation manager
	manager := conversation.NewManager(log.Logger)
	manager.SetStore(store)

	// Create routing engine
	engine := routing.NewEngine(dir, profiles, agentClient, log.Logger)
	engine.SetStore(store)

	// Start the inactive session sweeper
	sweep := sweeper.NewSweeper(manager, cfg.CleanupInterval, cfg.SessionMaxAge, log.Logger)
	go sweep.Start(ctx)

	// Create API handlers
	conversations := api.NewConversationsHandler(manager, engine, hub, log.Logger)
	transfers := api.NewTransfersHandler(engine, dir, hub, log.Logger)
	agents := api.NewAgentsHandler(dir, agentClient, log.Logger)
	records := api.NewRecordsHandler(store, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes (no auth required)
	r.Get("/health", healthHandler)

	// Internal routes (no auth - for internal services)
	r.Route("/internal", func(r chi.Router) {
		r.Get("/metrics", metrics.Get().Handler())
	})

	// Add auth middleware for protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Get("/ws", wsHandler.ServeHTTP)

		r.Route("/api", func(r chi.Router) {
			r.Post("/conversations", conversations.CreateConversation)
			r.Get("/conversations/stats", conversations.GetStats)
			r.Get("/conversations/{sessionID}", conversations.GetConversation)
			r.Delete("/conversations/{sessionID}", conversations.EndConversation)
			r.Post("/conversations/{sessionID}/messages", conversations.PostMessage)
			r.Get("/conversations/{sessionID}/step", conversations.GetCurrentStep)
			r.Post("/conversations/{sessionID}/reset", conversations.ResetFlow)

			r.Get("/routing/analytics", conversations.GetAnalytics)

			r.Post("/transfers", transfers.Initiate)
			r.Get("/transfers/{transferID}", transfers.GetTransfer)
			r.Post("/transfers/{transferID}/accept", transfers.Accept)
			r.Post("/transfers/{transferID}/reject", transfers.Reject)
			r.Post("/transfers/{transferID}/complete", transfers.Complete)

			r.Get("/agents/available", agents.GetAvailable)
			r.Get("/agents/workload", agents.GetWorkload)
			r.With(auth.RequireRole("supervisor")).Put("/agents/{agentID}/status", agents.UpdateStatus)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole("supervisor"))
				r.Get("/records/conversations", records.GetConversations)
				r.Get("/records/transfers", records.GetTransfers)
				r.Get("/agents/{agentID}/transfers", records.GetAgentTransfers)
			})
			r.With(auth.RequireRole("admin")).Delete("/records", records.Truncate)
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop background services
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"concierge"}`)
}
