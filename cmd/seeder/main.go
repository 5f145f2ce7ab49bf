package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/bracket-machines/internal/bracket"
	"github.com/mauv0809/bracket-machines/internal/config"
	"github.com/mauv0809/bracket-machines/internal/database"
	"github.com/mauv0809/bracket-machines/internal/store"
	"github.com/mauv0809/bracket-machines/internal/tournament"
	"github.com/spf13/cobra"
)

var (
	players int
	teams   bool
)

var rootCmd = &cobra.Command{
	Use:   "seeder",
	Short: "Seed a demo tournament",
	Long: `Builds a demo roster, starts a tournament from it and stores the first
snapshot under the configured tournament id.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if players < 2 || players > len(demoNames) {
			return fmt.Errorf("players must be between 2 and %d, got %d", len(demoNames), players)
		}
		return seed(players, teams)
	},
}

func init() {
	rootCmd.Flags().IntVar(&players, "players", 8, "Number of demo players (2-12)")
	rootCmd.Flags().BoolVar(&teams, "teams", false, "Split the roster into two teams")
}

var demoNames = [][2]string{
	{"Ada", "Lovelace"}, {"Alan", "Turing"}, {"Grace", "Hopper"}, {"Linus", "Torvalds"},
	{"Ken", "Thompson"}, {"Barbara", "Liskov"}, {"Rob", "Pike"}, {"Margaret", "Hamilton"},
	{"Dennis", "Ritchie"}, {"Frances", "Allen"}, {"Edsger", "Dijkstra"}, {"Radia", "Perlman"},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Seeding failed: %s\n", err)
		os.Exit(1)
	}
}

func seed(n int, withTeams bool) error {
	log.Info("Starting tournament seeder...")
	cfg := config.Load()

	db, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	snapshots := store.New(db)

	roster := make([]bracket.Player, n)
	for i := range roster {
		roster[i] = bracket.Player{
			ID:        uuid.NewString(),
			FirstName: demoNames[i][0],
			LastName:  demoNames[i][1],
		}
		if withTeams {
			roster[i].Team = fmt.Sprintf("Team %c", 'A'+i%2)
		}
	}

	startTime := time.Now()
	t, err := tournament.New(cfg.Tournament.ID, tournament.Options{
		MachineCount: cfg.Tournament.MachineCount,
		CommitDelay:  cfg.Tournament.CommitDelay,
	}, snapshots, nil, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	defer t.Close()

	matches, err := t.Start(roster)
	if err != nil {
		return fmt.Errorf("failed to start tournament: %w", err)
	}
	for _, m := range matches {
		p1, _ := t.Player(m.Player1ID)
		p2, _ := t.Player(m.Player2ID)
		log.Info("Round 1 match", "matchID", m.ID, "player1", p1.Name(), "player2", p2.Name())
	}

	if _, err := snapshots.LoadSnapshot(cfg.Tournament.ID); err != nil {
		return fmt.Errorf("failed to read back seeded snapshot: %w", err)
	}
	log.Info("Successfully seeded tournament.", "tournamentID", cfg.Tournament.ID, "players", len(roster), "matches", len(matches), "duration", time.Since(startTime))
	return nil
}
