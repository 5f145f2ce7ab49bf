package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

type player struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
}

var (
	matchRound   int
	matchBracket string
)

func init() {
	matchesCmd.Flags().IntVar(&matchRound, "round", 0, "Only show matches of this round")
	matchesCmd.Flags().StringVar(&matchBracket, "bracket", "", "Only show matches of this bracket (winners, losers, final)")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(snapshotsCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(eligibleCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(confirmCmd)
	rootCmd.AddCommand(quickAssignCmd)
	rootCmd.AddCommand(advanceCmd)
	rootCmd.AddCommand(machinesCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Get lifetime counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/stats")
	},
}

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the whole tournament state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/state")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var startCmd = &cobra.Command{
	Use:   `start "First Last" "First Last" ...`,
	Short: "Start the tournament with the given roster",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		players := make([]player, len(args))
		for i, name := range args {
			first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
			players[i] = player{FirstName: first, LastName: last}
		}
		return performRequest("POST", "/tournament/start", map[string]any{"players": players})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear all players and matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("POST", "/tournament/reset", nil)
	},
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List stored tournaments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/snapshots")
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <tournament-id>",
	Short: "Load a stored tournament into the server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("POST", "/snapshots/"+url.PathEscape(args[0])+"/restore", nil)
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if matchRound > 0 {
			q.Set("round", strconv.Itoa(matchRound))
		}
		if matchBracket != "" {
			q.Set("bracket", matchBracket)
		}
		endpoint := "/matches"
		if len(q) > 0 {
			endpoint += "?" + q.Encode()
		}
		return performGetRequest(endpoint)
	},
}

var eligibleCmd = &cobra.Command{
	Use:   "eligible",
	Short: "List matches waiting for a machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches/eligible")
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score <match-id> <game 1-3> <p1|p2>",
	Short: "Record the winner of one game",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		game, err := strconv.Atoi(args[1])
		if err != nil || game < 1 || game > 3 {
			return fmt.Errorf("game must be 1, 2 or 3, got %q", args[1])
		}
		p1Won, err := parseWinner(args[2])
		if err != nil {
			return err
		}
		endpoint := fmt.Sprintf("/matches/%s/games/%d", url.PathEscape(args[0]), game-1)
		return performRequest("POST", endpoint, map[string]bool{"player1_won": p1Won})
	},
}

var confirmCmd = &cobra.Command{
	Use:   "confirm <match-id>",
	Short: "Confirm a fully scored match and start its grace window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("POST", "/matches/"+url.PathEscape(args[0])+"/confirm", nil)
	},
}

var quickAssignCmd = &cobra.Command{
	Use:   "quick-assign <match-id>",
	Short: "Put a match on the preferred free machine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("POST", "/matches/"+url.PathEscape(args[0])+"/quick-assign", nil)
	},
}

var advanceCmd = &cobra.Command{
	Use:   "advance",
	Short: "Generate the next round",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest("POST", "/rounds/advance", nil)
	},
}
