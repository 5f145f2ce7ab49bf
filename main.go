package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/bracket-machines/internal/config"
	"github.com/mauv0809/bracket-machines/internal/database"
	server "github.com/mauv0809/bracket-machines/internal/http"
	"github.com/mauv0809/bracket-machines/internal/metrics"
	"github.com/mauv0809/bracket-machines/internal/notifier"
	"github.com/mauv0809/bracket-machines/internal/notifier/slack"
	"github.com/mauv0809/bracket-machines/internal/pubsub"
	"github.com/mauv0809/bracket-machines/internal/store"
	"github.com/mauv0809/bracket-machines/internal/tournament"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		db.Close()
	}()

	counters := metrics.New(db)
	metricsSvc := metrics.NewService().WithStore(counters)
	metricsHandler := metrics.NewMetricsHandler()
	snapshots := store.New(db)

	var notif notifier.Notifier = notifier.Nop{}
	if cfg.Slack.Token != "" {
		notif = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc, cfg.Slack.DryRun)
	} else {
		log.Warn("SLACK_BOT_TOKEN not set, announcements are disabled")
	}

	var ps pubsub.PubSubClient = pubsub.Nop{}
	if cfg.ProjectID != "" {
		client, teardown, err := pubsub.New(context.Background(), cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize pubsub: %s", err)
		}
		defer teardown()
		ps = client
	} else {
		log.Warn("GCP_PROJECT not set, domain events are not published")
	}

	t, err := tournament.New(cfg.Tournament.ID, tournament.Options{
		MachineCount: cfg.Tournament.MachineCount,
		CommitDelay:  cfg.Tournament.CommitDelay,
		AutoAdvance:  cfg.Tournament.AutoAdvance,
	}, snapshots, notif, metricsSvc, ps)
	if err != nil {
		log.Fatalf("Failed to create tournament: %s", err)
	}
	defer t.Close()

	snap, err := snapshots.LoadSnapshot(cfg.Tournament.ID)
	switch {
	case errors.Is(err, store.ErrSnapshotNotFound):
		log.Info("No saved tournament, starting fresh", "tournamentID", cfg.Tournament.ID)
	case err != nil:
		log.Fatalf("Failed to load snapshot: %s", err)
	default:
		repairs, err := t.Restore(snap)
		if err != nil {
			log.Fatalf("Failed to restore tournament: %s", err)
		}
		log.Info("Tournament restored from snapshot", "tournamentID", cfg.Tournament.ID, "round", t.CurrentRound(), "repairs", len(repairs))
	}

	s := server.NewServer(t, snapshots, metricsSvc, metricsHandler, counters, ps)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port, "tournamentID", cfg.Tournament.ID)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	// Pending commits are dropped; their matches restore with the countdown re-armed.
	log.Info("Server process shutting down", "pendingCommits", t.PendingCommits())
}
