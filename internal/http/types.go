package http

import (
	"net/http"

	"github.com/mauv0809/bracket-machines/internal/bracket"
	"github.com/mauv0809/bracket-machines/internal/machines"
	"github.com/mauv0809/bracket-machines/internal/metrics"
	"github.com/mauv0809/bracket-machines/internal/processor"
	"github.com/mauv0809/bracket-machines/internal/pubsub"
	"github.com/mauv0809/bracket-machines/internal/store"
	"github.com/mauv0809/bracket-machines/internal/tournament"
)

type Server struct {
	Tournament     *tournament.Tournament
	Snapshots      store.SnapshotStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Counters       metrics.MetricsStore
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}

// StateResponse is the overview served by GET /state.
type StateResponse struct {
	TournamentID   string             `json:"tournament_id"`
	CurrentRound   int                `json:"current_round"`
	Started        bool               `json:"started"`
	Finished       bool               `json:"finished"`
	Champion       *bracket.Player    `json:"champion,omitempty"`
	PendingCommits int                `json:"pending_commits"`
	Players        []bracket.Player   `json:"players"`
	Matches        []bracket.Match    `json:"matches"`
	Machines       []machines.Machine `json:"machines"`
}

// MatchResponse is a match together with its completion state.
type MatchResponse struct {
	bracket.Match
	State processor.State `json:"state"`
}

// RoundResponse is returned by POST /rounds/advance.
type RoundResponse struct {
	Round           int             `json:"round"`
	Matches         []bracket.Match `json:"matches,omitempty"`
	EndOfTournament bool            `json:"endOfTournament,omitempty"`
}

type startRequest struct {
	Players []bracket.Player `json:"players"`
}

type gameRequest struct {
	Player1Won *bool `json:"player1_won"`
}

type assignRequest struct {
	MatchID *string `json:"match_id"`
}

type quickAssignResponse struct {
	Assigned bool `json:"assigned"`
	Machine  int  `json:"machine,omitempty"`
}

type countRequest struct {
	Count int `json:"count"`
}

type qualityRequest struct {
	Quality int `json:"quality"`
}

type canConfirmResponse struct {
	CanConfirm bool `json:"can_confirm"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// pushMessage is the envelope Pub/Sub push subscriptions deliver.
type pushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data       string            `json:"data"`
		Attributes map[string]string `json:"attributes"`
		MessageID  string            `json:"messageId"`
	} `json:"message"`
}
