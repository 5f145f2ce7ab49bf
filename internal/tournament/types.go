package tournament

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/mauv0809/bracket-machines/internal/bracket"
	"github.com/mauv0809/bracket-machines/internal/clock"
	"github.com/mauv0809/bracket-machines/internal/machines"
	"github.com/mauv0809/bracket-machines/internal/metrics"
	"github.com/mauv0809/bracket-machines/internal/notifier"
	"github.com/mauv0809/bracket-machines/internal/processor"
	"github.com/mauv0809/bracket-machines/internal/pubsub"
)

// Options configures a Tournament. Zero values fall back to defaults.
type Options struct {
	MachineCount int
	CommitDelay  time.Duration
	// AutoAdvance generates the next round as soon as a commit completes the current one.
	AutoAdvance bool
	Clock       clock.Clock
	Rand        *rand.Rand
}

// DefaultMachineCount is the pool size of a new tournament.
const DefaultMachineCount = 5

// Tournament is the aggregate root. Every command runs under one mutex;
// notifications, events and persistence are dispatched after it is released.
type Tournament struct {
	id   string
	opts Options

	mu           sync.Mutex
	players      []bracket.Player
	matches      []bracket.Match
	currentRound int
	roundStarted bool
	finished     bool
	championID   string
	pool         *machines.Pool
	version      uint64
	// generation invalidates commits scheduled before a Reset or Restore.
	generation uint64

	saveMu       sync.Mutex
	savedVersion uint64

	processor *processor.Processor
	store     Store
	notifier  notifier.Notifier
	metrics   metrics.Metrics
	pubsub    pubsub.PubSubClient
}

// Snapshot is the complete serialisable state of a tournament.
type Snapshot struct {
	ID           string             `json:"id" msgpack:"id"`
	Version      uint64             `json:"version" msgpack:"version"`
	Players      []bracket.Player   `json:"players" msgpack:"players"`
	Matches      []bracket.Match    `json:"matches" msgpack:"matches"`
	CurrentRound int                `json:"current_round" msgpack:"current_round"`
	RoundStarted bool               `json:"round_started" msgpack:"round_started"`
	Finished     bool               `json:"finished" msgpack:"finished"`
	ChampionID   string             `json:"champion_id,omitempty" msgpack:"champion_id"`
	Machines     []machines.Machine `json:"machines" msgpack:"machines"`
	SavedAt      time.Time          `json:"saved_at" msgpack:"saved_at"`
}
