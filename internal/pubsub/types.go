package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventMatchCommitted     EventType = "match-committed"
	EventRoundAdvanced      EventType = "round-advanced"
	EventTournamentFinished EventType = "tournament-finished"
	EventMachineAssigned    EventType = "machine-assigned"
)

// MatchCommitted is published when a match leaves its grace window.
type MatchCommitted struct {
	TournamentID string    `msgpack:"tournament_id" json:"tournament_id"`
	MatchID      string    `msgpack:"match_id" json:"match_id"`
	Round        int       `msgpack:"round" json:"round"`
	Bracket      string    `msgpack:"bracket" json:"bracket"`
	WinnerID     string    `msgpack:"winner_id" json:"winner_id"`
	LoserID      string    `msgpack:"loser_id" json:"loser_id"`
	LoserOut     bool      `msgpack:"loser_out" json:"loser_out"`
	CommittedAt  time.Time `msgpack:"committed_at" json:"committed_at"`
}

// RoundAdvanced is published when a new round is generated.
type RoundAdvanced struct {
	TournamentID string   `msgpack:"tournament_id" json:"tournament_id"`
	Round        int      `msgpack:"round" json:"round"`
	MatchIDs     []string `msgpack:"match_ids" json:"match_ids"`
}

// TournamentFinished is published when the final commits.
type TournamentFinished struct {
	TournamentID string    `msgpack:"tournament_id" json:"tournament_id"`
	ChampionID   string    `msgpack:"champion_id" json:"champion_id"`
	FinishedAt   time.Time `msgpack:"finished_at" json:"finished_at"`
}

// MachineAssigned is published when a match is placed on or removed from a machine.
// MatchID is empty when the machine was cleared.
type MachineAssigned struct {
	TournamentID string `msgpack:"tournament_id" json:"tournament_id"`
	MachineID    int    `msgpack:"machine_id" json:"machine_id"`
	MatchID      string `msgpack:"match_id" json:"match_id"`
}
