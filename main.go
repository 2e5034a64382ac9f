// Package main is the entry point. Its only job is dependency
// wire-up: config → logger → database → repository → services → hub →
// HTTP server, with no globals.
package main

import (
	"context"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/acelemming/bubchat/config"
	"github.com/acelemming/bubchat/database"
	"github.com/acelemming/bubchat/handlers"
	"github.com/acelemming/bubchat/pkg/logx"
	"github.com/acelemming/bubchat/pkg/ratelimit"
	"github.com/acelemming/bubchat/repository"
	"github.com/acelemming/bubchat/services"
	"github.com/acelemming/bubchat/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logx.New(logx.Config{})
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := logx.New(logx.Config{Level: cfg.Log.Level, Console: cfg.Log.Console})
	log.Info().Int("port", cfg.Server.Port).Msg("bubchat server starting")

	// Database
	migrations, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open embedded migrations")
	}
	db, err := database.New(cfg.Database.Path, migrations, log.With().Str("component", "database").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	// Repository + services
	banRepo := repository.NewSQLiteBanRepo(db.Conn)

	moderation, err := services.NewModerationService(context.Background(), banRepo,
		log.With().Str("component", "moderation").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load moderation state")
	}

	reset, err := services.NewResetScheduler(cfg.Reset.Timezone, moderation,
		log.With().Str("component", "reset").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build reset scheduler")
	}
	if err := reset.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start reset scheduler")
	}

	// Hub
	limiter := ratelimit.NewMessageRateLimiter(
		cfg.RateLimit.MaxMessages, cfg.RateLimit.Window, cfg.RateLimit.Cooldown)
	history := ws.NewHistoryBuffer(cfg.History.Size)

	hub, err := ws.NewHub(cfg.Admin, history, moderation, limiter,
		log.With().Str("component", "hub").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build hub")
	}
	go hub.Run()

	// HTTP surface
	wsHandler := ws.NewHandler(hub, log.With().Str("component", "ws").Logger())
	healthHandler := handlers.NewHealthHandler()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", healthHandler.Handle)
	mux.HandleFunc("GET /ws", wsHandler.HandleConnection)

	// The room is an embeddable widget; any origin may connect.
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      corsHandler.Handler(mux),
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.Server.Addr()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-done
	log.Info().Msg("shutting down")

	// Close websocket connections first so peers learn the room is
	// gone, then stop the scheduler and the HTTP listener.
	hub.Shutdown()
	reset.Stop()
	limiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped gracefully")
}
