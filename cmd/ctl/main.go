// Command ctl is the Top Scores operations CLI.
//
// Usage:
//
//	topscores-ctl fetch --date 2026-08-31
//	topscores-ctl simulate --match 4193690
//	topscores-ctl notify-test --device 6e1c... --server http://localhost:8000
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/skynolimit/topscores/internal/config"
	"github.com/skynolimit/topscores/internal/feed"
	"github.com/skynolimit/topscores/internal/notify"
	"github.com/skynolimit/topscores/internal/profile"
	"github.com/skynolimit/topscores/internal/sim"
	"github.com/skynolimit/topscores/internal/store"
	"github.com/skynolimit/topscores/internal/teams"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "topscores-ctl",
		Short: "Top Scores operations CLI",
	}

	root.AddCommand(fetchCmd())
	root.AddCommand(simulateCmd())
	root.AddCommand(notifyTestCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// fetch command
// --------------------------------------------------------------------------

func fetchCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch and print the fixtures for one date",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			registry := teams.NewRegistry(config.TeamAliases, cfg.TopTeamsMinClubRating, nil, logger)
			client := feed.NewClient(cfg, registry, logger)

			matches, err := client.FetchDate(ctx, date)
			if err != nil {
				return err
			}
			for _, m := range matches {
				fmt.Printf("%-10s %-40s %s\n", m.TimeLabel, m.ScoreLine(), m.CompetitionLabel())
			}
			logger.Info("Fetch finished", "date", date, "matches", len(matches))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "date to fetch (YYYY-MM-DD, default today)")
	return cmd
}

// --------------------------------------------------------------------------
// simulate command
// --------------------------------------------------------------------------

func simulateCmd() *cobra.Command {
	var (
		matchID  string
		deviceID string
		date     string
		speed    string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a predicted match locally, printing score updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			if matchID == "" {
				return fmt.Errorf("--match is required")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			if date == "" {
				date = time.Now().Format("2006-01-02")
			}
			if deviceID == "" {
				deviceID = uuid.NewString()
			}

			// A self-contained pipeline: live store seeded from one feed
			// date, log-only push delivery.
			registry := teams.NewRegistry(config.TeamAliases, cfg.TopTeamsMinClubRating, nil, logger)
			client := feed.NewClient(cfg, registry, logger)
			liveStore := store.NewTrackingAll(logger)
			predictedStore := store.NewTrackingAll(logger)

			profiles := profile.NewCache(nil, logger)
			_ = profiles.Put(ctx, &profile.Profile{
				DeviceID:       deviceID,
				PredictorSpeed: speed,
				LastUpdated:    time.Now().UTC(),
			})

			dispatcher := notify.NewDispatcher(profiles, notify.NewMemoryEnvelopeStore(),
				notify.NewAPNSender(cfg, logger), cfg, logger)
			defer dispatcher.Stop()
			pipeline := notify.NewPipeline(predictedStore, dispatcher, logger)

			matches, err := client.FetchDate(ctx, date)
			if err != nil {
				return err
			}
			for _, m := range matches {
				liveStore.ApplyUpdate(m.ID, m)
			}

			engine := sim.NewEngine(liveStore, predictedStore, pipeline, profiles, cfg, logger)
			defer engine.Stop()
			if err := engine.Init(ctx, deviceID, matchID); err != nil {
				return err
			}

			// Poll until the simulation plays out or the user interrupts.
			ticker := time.NewTicker(500 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					m := engine.Get(deviceID, matchID)
					if m == nil {
						return fmt.Errorf("simulation vanished")
					}
					fmt.Printf("%-5s %s\n", m.TimeLabel, m.ScoreLine())
					if m.Predictor != nil && m.Predictor.Status == sim.StatusFinished {
						for _, msg := range m.StatusMessages {
							fmt.Println(msg)
						}
						return nil
					}
				}
			}
		},
	}
	cmd.Flags().StringVar(&matchID, "match", "", "match ID to simulate")
	cmd.Flags().StringVar(&deviceID, "device", "", "device ID (default: random UUID)")
	cmd.Flags().StringVar(&date, "date", "", "date the match is on (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&speed, "speed", "supersonic", "simulation speed tier")
	return cmd
}

// --------------------------------------------------------------------------
// notify-test command
// --------------------------------------------------------------------------

func notifyTestCmd() *cobra.Command {
	var (
		deviceID string
		server   string
	)
	cmd := &cobra.Command{
		Use:   "notify-test",
		Short: "Ask a running server to send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			if deviceID == "" {
				return fmt.Errorf("--device is required")
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			url := fmt.Sprintf("%s/api/v1/debug/notifications/test/user/%s", server, deviceID)
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			logger.Info("Test notification requested",
				"deviceId", deviceID, "status", resp.StatusCode)
			return nil
		},
	}
	cmd.Flags().StringVar(&deviceID, "device", "", "device ID to notify")
	cmd.Flags().StringVar(&server, "server", "http://localhost:8000", "server base URL")
	return cmd
}
