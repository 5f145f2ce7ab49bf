package tournament

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/bracket-machines/internal/bracket"
	"github.com/mauv0809/bracket-machines/internal/clock"
	"github.com/mauv0809/bracket-machines/internal/machines"
	"github.com/mauv0809/bracket-machines/internal/metrics"
	"github.com/mauv0809/bracket-machines/internal/notifier"
	"github.com/mauv0809/bracket-machines/internal/processor"
	"github.com/mauv0809/bracket-machines/internal/pubsub"
)

// New creates an empty tournament. A nil store, notifier, metrics or pubsub
// collaborator is replaced by a no-op.
func New(id string, opts Options, store Store, notif notifier.Notifier, m metrics.Metrics, ps pubsub.PubSubClient) (*Tournament, error) {
	if opts.MachineCount == 0 {
		opts.MachineCount = DefaultMachineCount
	}
	if opts.CommitDelay <= 0 {
		opts.CommitDelay = processor.DefaultDelay
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if store == nil {
		store = nopStore{}
	}
	if notif == nil {
		notif = notifier.Nop{}
	}
	if m == nil {
		m = metrics.Nop{}
	}
	if ps == nil {
		ps = pubsub.Nop{}
	}

	pool, err := machines.NewPool(opts.MachineCount)
	if err != nil {
		return nil, err
	}

	return &Tournament{
		id:        id,
		opts:      opts,
		pool:      pool,
		processor: processor.New(opts.Clock, opts.CommitDelay, m),
		store:     store,
		notifier:  notif,
		metrics:   m,
		pubsub:    ps,
	}, nil
}

// ID returns the tournament id.
func (t *Tournament) ID() string {
	return t.id
}

// outbox collects side effects to run once the aggregate lock is released.
type outbox []func()

func (o *outbox) add(f func()) {
	*o = append(*o, f)
}

func (o outbox) flush() {
	for _, f := range o {
		f()
	}
}

// mutate runs fn under the lock. State changes are versioned and persisted,
// rejected commands are counted, and queued side effects, metrics included,
// run after unlock.
func (t *Tournament) mutate(command string, fn func(out *outbox) error) error {
	var out outbox

	t.mu.Lock()
	err := fn(&out)
	changed := err == nil || errors.Is(err, bracket.ErrEndOfTournament)
	if errors.Is(err, errNoChange) {
		err = nil
		changed = false
	}
	var snap Snapshot
	if changed {
		t.version++
		snap = t.snapshotLocked()
		inUse := t.pool.InUse()
		out.add(func() { t.metrics.SetMachinesInUse(inUse) })
	}
	t.mu.Unlock()

	if err != nil && !errors.Is(err, bracket.ErrEndOfTournament) {
		t.metrics.IncCommandsRejected(command)
		log.Warn("Command rejected", "command", command, "error", err)
	}
	if changed {
		t.persist(snap)
	}
	out.flush()
	return err
}

// persist saves snap unless a newer snapshot has already been saved.
func (t *Tournament) persist(snap Snapshot) {
	t.saveMu.Lock()
	defer t.saveMu.Unlock()
	if snap.Version <= t.savedVersion {
		log.Debug("Skipping stale snapshot", "version", snap.Version, "saved", t.savedVersion)
		return
	}
	if err := t.store.SaveSnapshot(snap); err != nil {
		log.Error("Failed to save snapshot", "error", err, "tournamentID", t.id, "version", snap.Version)
		return
	}
	t.savedVersion = snap.Version
}

// Start builds round one from the roster. Players without an id get one.
func (t *Tournament) Start(roster []bracket.Player) ([]bracket.Match, error) {
	var created []bracket.Match
	err := t.mutate("start", func(out *outbox) error {
		if t.currentRound > 0 {
			return ErrTournamentStarted
		}
		named := make([]bracket.Player, len(roster))
		copy(named, roster)
		for i := range named {
			if named[i].ID == "" {
				named[i].ID = uuid.NewString()
			}
		}

		players, matches, err := bracket.BuildInitialRound(named, t.opts.Rand)
		if err != nil {
			return err
		}
		t.players = players
		t.matches = matches
		t.currentRound = 1
		t.roundStarted = true
		t.finished = false
		t.championID = ""

		log.Info("Tournament started", "tournamentID", t.id, "players", len(players), "matches", len(matches))
		created = cloneMatches(matches)
		t.queueRoundStarted(out, 1, matches)
		return nil
	})
	return created, err
}

// Reset cancels pending commits and clears all players and matches. Machine
// settings are kept but every machine is emptied.
func (t *Tournament) Reset() error {
	return t.mutate("reset", func(out *outbox) error {
		t.processor.Stop()
		t.generation++
		t.players = nil
		t.matches = nil
		t.currentRound = 0
		t.roundStarted = false
		t.finished = false
		t.championID = ""
		t.pool.ClearAssignments()
		log.Info("Tournament reset", "tournamentID", t.id)
		return nil
	})
}

// Close cancels every pending commit.
func (t *Tournament) Close() {
	t.processor.Stop()
}

func (t *Tournament) requireStartedLocked() error {
	if t.currentRound == 0 {
		return ErrTournamentNotStarted
	}
	return nil
}

func (t *Tournament) matchLocked(matchID string) (*bracket.Match, error) {
	for i := range t.matches {
		if t.matches[i].ID == matchID {
			return &t.matches[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", bracket.ErrMatchNotFound, matchID)
}

func (t *Tournament) playerLocked(playerID string) bracket.Player {
	for _, p := range t.players {
		if p.ID == playerID {
			return p
		}
	}
	return bracket.Player{ID: playerID, FirstName: "TBD"}
}

func cloneMatches(matches []bracket.Match) []bracket.Match {
	out := make([]bracket.Match, len(matches))
	for i, m := range matches {
		out[i] = m.Clone()
	}
	return out
}
