// Command api is the Top Scores server: it tracks live fixtures across the
// covered date window, fans score notifications out to interested devices,
// and runs the match predictor.
//
// Usage:
//
//	topscores-api
//	API_PORT=8080 topscores-api
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/skynolimit/topscores/internal/api"
	"github.com/skynolimit/topscores/internal/api/handler"
	"github.com/skynolimit/topscores/internal/config"
	"github.com/skynolimit/topscores/internal/db"
	"github.com/skynolimit/topscores/internal/feed"
	"github.com/skynolimit/topscores/internal/interest"
	"github.com/skynolimit/topscores/internal/maintenance"
	"github.com/skynolimit/topscores/internal/notify"
	"github.com/skynolimit/topscores/internal/profile"
	"github.com/skynolimit/topscores/internal/sim"
	"github.com/skynolimit/topscores/internal/store"
	"github.com/skynolimit/topscores/internal/teams"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Debug {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Optional database: preferences and envelope dedup survive restarts
	// when configured, otherwise everything runs in memory.
	var pool *db.Pool
	var prefsBackend profile.Store
	memEnvelopes := notify.NewMemoryEnvelopeStore()
	var envelopes notify.EnvelopeStore = memEnvelopes
	var pruner maintenance.EnvelopePruner = memEnvelopes
	if cfg.DatabaseURL != "" {
		logger.Info("Connecting to database...")
		pool, err = db.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.EnsureSchema(ctx); err != nil {
			logger.Error("Failed to ensure database schema", "error", err)
			os.Exit(1)
		}
		prefsBackend = db.NewPreferencesStore(pool)
		pgEnvelopes := db.NewEnvelopeStore(pool)
		envelopes = pgEnvelopes
		pruner = pgEnvelopes
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
	} else {
		logger.Warn("No DATABASE_URL, running with in-memory stores only")
	}

	// Core state
	liveStore := store.New(logger)
	predictedStore := store.NewTrackingAll(logger)
	registry := teams.NewRegistry(config.TeamAliases, cfg.TopTeamsMinClubRating, nil, logger)

	profiles := profile.NewCache(prefsBackend, logger)
	if err := profiles.Load(ctx); err != nil {
		logger.Error("Failed to load user preferences", "error", err)
	}

	// Notification pipeline
	sender := notify.NewAPNSender(cfg, logger)
	dispatcher := notify.NewDispatcher(profiles, envelopes, sender, cfg, logger)
	defer dispatcher.Stop()
	livePipeline := notify.NewPipeline(liveStore, dispatcher, logger)
	predictedPipeline := notify.NewPipeline(predictedStore, dispatcher, logger)

	// Interest index: preference changes recompute the user's matches.
	index := interest.NewIndex(liveStore, profiles, registry, logger)
	profiles.OnChange(func(deviceID string, p *profile.Profile) {
		index.RecomputeForUser(deviceID, p)
	})

	// Team ratings loader
	eloLoader := teams.NewEloLoader(cfg, registry, logger)
	go eloLoader.Run(ctx)

	// Fixtures feed
	feedClient := feed.NewClient(cfg, registry, logger)
	refresher := feed.NewRefresher(feedClient, liveStore, index, livePipeline, cfg, logger)
	refresher.Start(ctx)
	defer refresher.Stop()

	// Match predictor
	engine := sim.NewEngine(liveStore, predictedStore, predictedPipeline, profiles, cfg, logger)
	go engine.RunCleanup(ctx)
	defer engine.Stop()

	// Maintenance tickers (envelope pruning, match-window sweep)
	go maintenance.Start(ctx, liveStore,
		pruner, maintenance.DefaultConfig(cfg.NotificationTTL, cfg.FeedPastDays), logger)

	// Create router
	router := api.NewRouter(handler.Deps{
		Cfg:        cfg,
		Live:       liveStore,
		Engine:     engine,
		Profiles:   profiles,
		Refresher:  refresher,
		Dispatcher: dispatcher,
		Envelopes:  envelopes,
		Registry:   registry,
		Pool:       pool,
		Logger:     logger,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Top Scores API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
