package tournament

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/mauv0809/bracket-machines/internal/bracket"
	"github.com/mauv0809/bracket-machines/internal/clock"
	"github.com/mauv0809/bracket-machines/internal/machines"
	"github.com/mauv0809/bracket-machines/internal/metrics"
	"github.com/mauv0809/bracket-machines/internal/notifier"
	"github.com/mauv0809/bracket-machines/internal/processor"
	"github.com/mauv0809/bracket-machines/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delay = 10 * time.Second

// recordingStore keeps every saved snapshot.
type recordingStore struct {
	mu    sync.Mutex
	snaps []Snapshot
	err   error
}

func (s *recordingStore) SaveSnapshot(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.snaps = append(s.snaps, snap)
	return nil
}

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snaps)
}

func (s *recordingStore) last() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snaps[len(s.snaps)-1]
}

type fixture struct {
	t       *testing.T
	tour    *Tournament
	clock   *clock.Fake
	store   *recordingStore
	notif   *notifier.Mock
	metrics *metrics.Mock
	pubsub  *pubsub.MockPubSubClient
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		t:       t,
		clock:   clock.NewFake(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)),
		store:   &recordingStore{},
		notif:   notifier.NewMock(),
		metrics: metrics.NewMock(),
		pubsub:  pubsub.NewMock(),
	}
	opts.Clock = f.clock
	if opts.CommitDelay == 0 {
		opts.CommitDelay = delay
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(7, 11))
	}
	tour, err := New("test", opts, f.store, f.notif, f.metrics, f.pubsub)
	require.NoError(t, err)
	t.Cleanup(tour.Close)
	f.tour = tour
	return f
}

func defaultMachines(n int) []machines.Machine {
	ms := make([]machines.Machine, n)
	for i := range ms {
		ms[i] = machines.Machine{ID: i + 1, Quality: machines.DefaultQuality}
	}
	return ms
}

// roundOneSnapshot pairs the ids in the given order.
func roundOneSnapshot(ids ...string) Snapshot {
	players := make([]bracket.Player, len(ids))
	for i, id := range ids {
		players[i] = bracket.Player{ID: id, FirstName: id, Bracket: bracket.WinnersSide}
	}
	return Snapshot{
		ID:           "test",
		Players:      players,
		Matches:      bracket.BuildNextRound(players, 1, bracket.WinnersSide),
		CurrentRound: 1,
		RoundStarted: true,
		Machines:     defaultMachines(5),
	}
}

func (f *fixture) restore(snap Snapshot) {
	f.t.Helper()
	repairs, err := f.tour.Restore(snap)
	require.NoError(f.t, err)
	require.Empty(f.t, repairs)
}

func (f *fixture) matchBetween(p1, p2 string) bracket.Match {
	f.t.Helper()
	for _, m := range f.tour.Matches() {
		if m.Player1ID == p1 && m.Player2ID == p2 {
			return m
		}
	}
	f.t.Fatalf("no match between %s and %s", p1, p2)
	return bracket.Match{}
}

func (f *fixture) score(matchID string, results ...bool) {
	f.t.Helper()
	for game, p1Won := range results {
		require.NoError(f.t, f.tour.SetGameScore(matchID, game, p1Won))
	}
}

// play scores, confirms and commits a match.
func (f *fixture) play(matchID string, results ...bool) {
	f.t.Helper()
	f.score(matchID, results...)
	require.NoError(f.t, f.tour.ConfirmMatch(matchID))
	f.clock.Advance(delay)
	m, ok := f.tour.Match(matchID)
	require.True(f.t, ok)
	require.True(f.t, m.Completed, "match %s should be committed", matchID)
}

func (f *fixture) player(id string) bracket.Player {
	f.t.Helper()
	p, ok := f.tour.Player(id)
	require.True(f.t, ok)
	return p
}

// assertInvariants checks the player and machine link invariants.
func (f *fixture) assertInvariants() {
	f.t.Helper()
	for _, p := range f.tour.Players() {
		assert.Equal(f.t, p.Losses >= 2, p.Eliminated, "player %s", p.ID)
		if p.Eliminated {
			assert.Equal(f.t, bracket.NoSide, p.Bracket, "player %s", p.ID)
		} else {
			assert.NotEqual(f.t, bracket.NoSide, p.Bracket, "player %s", p.ID)
		}
	}
	matches := f.tour.Matches()
	for _, machine := range f.tour.Machines() {
		linked := 0
		for _, m := range matches {
			if m.MachineNumber != nil && *m.MachineNumber == machine.ID {
				linked++
				require.NotNil(f.t, machine.CurrentMatchID)
				assert.Equal(f.t, m.ID, *machine.CurrentMatchID)
			}
		}
		if machine.CurrentMatchID == nil {
			assert.Zero(f.t, linked, "machine %d", machine.ID)
		} else {
			assert.Equal(f.t, 1, linked, "machine %d", machine.ID)
		}
	}
}

func strPtr(s string) *string { return &s }

// manualClock collects callbacks for the test to run by hand. Its timers
// cannot be stopped, like a real timer that has already started firing.
type manualClock struct {
	mu        sync.Mutex
	callbacks []func()
}

type firedTimer struct{}

func (firedTimer) Stop() bool { return false }

func (c *manualClock) Now() time.Time { return time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC) }

func (c *manualClock) AfterFunc(_ time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks = append(c.callbacks, f)
	return firedTimer{}
}

func (c *manualClock) callback(i int) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.callbacks[i]
}

func TestNew(t *testing.T) {
	_, err := New("x", Options{MachineCount: 11}, nil, nil, metrics.NewMock(), nil)
	assert.ErrorIs(t, err, machines.ErrInvalidMachineCount)

	tour, err := New("x", Options{}, nil, nil, metrics.NewMock(), nil)
	require.NoError(t, err)
	defer tour.Close()
	assert.Len(t, tour.Machines(), DefaultMachineCount)
	assert.Equal(t, 0, tour.CurrentRound())
	assert.False(t, tour.Started())
}

func TestStart(t *testing.T) {
	t.Run("builds round one", func(t *testing.T) {
		for k := 2; k <= 9; k++ {
			f := newFixture(t, Options{})
			roster := make([]bracket.Player, k)
			for i := range roster {
				roster[i] = bracket.Player{FirstName: fmt.Sprintf("P%d", i)}
			}

			matches, err := f.tour.Start(roster)
			require.NoError(t, err)

			assert.Len(t, matches, k/2)
			assert.Equal(t, 1, f.tour.CurrentRound())
			byes := 0
			for _, p := range f.tour.Players() {
				assert.NotEmpty(t, p.ID, "players get an id")
				assert.Equal(t, bracket.WinnersSide, p.Bracket)
				if p.HasBye {
					byes++
				}
			}
			assert.Equal(t, k%2, byes)
			f.assertInvariants()
		}
	})

	t.Run("announces and persists", func(t *testing.T) {
		f := newFixture(t, Options{})
		_, err := f.tour.Start([]bracket.Player{{ID: "a"}, {ID: "b"}, {ID: "c"}})
		require.NoError(t, err)

		require.Len(t, f.notif.SendRoundStartedCalls, 1)
		assert.Equal(t, 1, f.notif.SendRoundStartedCalls[0].Round)
		assert.Len(t, f.notif.SendRoundStartedCalls[0].Byes, 1)
		assert.Equal(t, []pubsub.EventType{pubsub.EventRoundAdvanced}, f.pubsub.Topics())
		require.Equal(t, 1, f.store.count())
		assert.Equal(t, 1, f.store.last().CurrentRound)
		assert.Len(t, f.store.last().Matches, 1)
	})

	t.Run("rejects a second start and short rosters", func(t *testing.T) {
		f := newFixture(t, Options{})
		_, err := f.tour.Start([]bracket.Player{{ID: "a"}})
		assert.ErrorIs(t, err, bracket.ErrInsufficientPlayers)
		assert.False(t, f.tour.Started())

		_, err = f.tour.Start([]bracket.Player{{ID: "a"}, {ID: "b"}})
		require.NoError(t, err)
		_, err = f.tour.Start([]bracket.Player{{ID: "c"}, {ID: "d"}})
		assert.ErrorIs(t, err, ErrTournamentStarted)
		assert.Equal(t, 2, f.metrics.CommandsRejected("start"))
		assert.Len(t, f.tour.Players(), 2)
	})
}

func TestCommandsBeforeStart(t *testing.T) {
	f := newFixture(t, Options{})
	assert.ErrorIs(t, f.tour.SetGameScore("m", 0, true), ErrTournamentNotStarted)
	assert.ErrorIs(t, f.tour.ConfirmMatch("m"), ErrTournamentNotStarted)
	_, err := f.tour.AdvanceRound()
	assert.ErrorIs(t, err, ErrTournamentNotStarted)
	assert.Equal(t, 0, f.store.count(), "rejected commands are not persisted")
}

func TestMatchCompletion(t *testing.T) {
	t.Run("scores lock once confirmed and commit after the grace window", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.restore(roundOneSnapshot("A", "B", "C", "D"))
		m := f.matchBetween("A", "B")

		err := f.tour.ConfirmMatch(m.ID)
		assert.ErrorIs(t, err, processor.ErrMatchNotDecided)

		f.score(m.ID, true, false, false)
		require.NoError(t, f.tour.SetGameScore(m.ID, 2, true), "re-scoring before confirmation is allowed")
		state, err := f.tour.MatchState(m.ID)
		require.NoError(t, err)
		assert.Equal(t, processor.StateAllDecided, state)

		require.NoError(t, f.tour.ConfirmMatch(m.ID))
		state, _ = f.tour.MatchState(m.ID)
		assert.Equal(t, processor.StatePendingCommit, state)
		assert.ErrorIs(t, f.tour.SetGameScore(m.ID, 0, false), processor.ErrMatchLocked)

		f.clock.Advance(delay - time.Second)
		got, _ := f.tour.Match(m.ID)
		assert.False(t, got.Completed)
		assert.Equal(t, 1, f.tour.PendingCommits())

		f.clock.Advance(time.Second)
		got, _ = f.tour.Match(m.ID)
		assert.True(t, got.Completed)
		assert.False(t, got.CountdownStarted)
		assert.True(t, bracket.IsMatchComplete(got))
		assert.Equal(t, 0, f.tour.PendingCommits())

		assert.ErrorIs(t, f.tour.SetGameScore(m.ID, 0, false), bracket.ErrMatchAlreadyCompleted)
		assert.ErrorIs(t, f.tour.ConfirmMatch(m.ID), bracket.ErrMatchAlreadyCompleted)
		got, _ = f.tour.Match(m.ID)
		assert.True(t, bracket.IsMatchComplete(got))
		assert.True(t, *got.Scores[0].Player1Won, "rejected edits leave scores untouched")
	})

	t.Run("confirming twice commits once", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.restore(roundOneSnapshot("A", "B"))
		m := f.matchBetween("A", "B")
		f.score(m.ID, true, true, false)

		require.NoError(t, f.tour.ConfirmMatch(m.ID))
		saves := f.store.count()
		require.NoError(t, f.tour.ConfirmMatch(m.ID))
		assert.Equal(t, saves, f.store.count(), "idempotent confirm does not persist")
		assert.Equal(t, 1, f.tour.PendingCommits())

		f.clock.Advance(time.Minute)

		assert.Equal(t, 1, f.metrics.MatchesCommitted())
		assert.Len(t, f.notif.SendMatchResultCalls, 1)
		b := f.player("B")
		assert.Equal(t, 1, b.Losses, "routing applied once")
	})

	t.Run("unknown match", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.restore(roundOneSnapshot("A", "B"))
		assert.ErrorIs(t, f.tour.SetGameScore("nope", 0, true), bracket.ErrMatchNotFound)
		assert.ErrorIs(t, f.tour.ConfirmMatch("nope"), bracket.ErrMatchNotFound)
		_, err := f.tour.MatchState("nope")
		assert.ErrorIs(t, err, bracket.ErrMatchNotFound)
		assert.Equal(t, 1, f.metrics.CommandsRejected("set_game_score"))
	})

	t.Run("invalid game index", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.restore(roundOneSnapshot("A", "B"))
		m := f.matchBetween("A", "B")
		assert.ErrorIs(t, f.tour.SetGameScore(m.ID, 3, true), processor.ErrInvalidGameIndex)
	})
}

func TestAdvanceRound_Guards(t *testing.T) {
	f := newFixture(t, Options{})
	f.restore(roundOneSnapshot("A", "B", "C", "D"))
	ab := f.matchBetween("A", "B")
	cd := f.matchBetween("C", "D")

	_, err := f.tour.AdvanceRound()
	assert.ErrorIs(t, err, bracket.ErrRoundNotComplete)
	assert.NotErrorIs(t, err, bracket.ErrTimersPending)

	f.play(ab.ID, true, false, true)
	f.score(cd.ID, true, true, false)
	require.NoError(t, f.tour.ConfirmMatch(cd.ID))

	_, err = f.tour.AdvanceRound()
	assert.ErrorIs(t, err, bracket.ErrTimersPending)
	assert.ErrorIs(t, err, bracket.ErrRoundNotComplete)
	assert.Equal(t, 1, f.tour.CurrentRound(), "rejected advance leaves the round unchanged")
	assert.Len(t, f.tour.Matches(), 2)

	f.clock.Advance(delay)
	next, err := f.tour.AdvanceRound()
	require.NoError(t, err)
	assert.Len(t, next, 2)
	assert.Equal(t, 2, f.tour.CurrentRound())
}

func TestFourPlayerTournament(t *testing.T) {
	f := newFixture(t, Options{})
	f.restore(roundOneSnapshot("A", "B", "C", "D"))

	// Round 1: A beats B, C beats D
	f.play(f.matchBetween("A", "B").ID, true, false, true)
	f.play(f.matchBetween("C", "D").ID, true, true, false)
	f.assertInvariants()

	assert.Equal(t, bracket.WinnersSide, f.player("A").Bracket)
	assert.Equal(t, bracket.WinnersSide, f.player("C").Bracket)
	for _, id := range []string{"B", "D"} {
		p := f.player(id)
		assert.Equal(t, bracket.LosersSide, p.Bracket, id)
		assert.Equal(t, 1, p.Losses, id)
	}

	next, err := f.tour.AdvanceRound()
	require.NoError(t, err)
	require.Len(t, next, 2)
	winners := f.tour.MatchesForBracket(bracket.WinnersSide)
	losers := f.tour.MatchesForBracket(bracket.LosersSide)
	require.Len(t, winners, 3)
	require.Len(t, losers, 1)
	assert.Equal(t, 2, losers[0].Round)
	assert.Equal(t, "B", losers[0].Player1ID)
	assert.Equal(t, "D", losers[0].Player2ID)
	assert.Equal(t, "A", winners[2].Player1ID)
	assert.Equal(t, "C", winners[2].Player2ID)
	assert.Len(t, f.tour.MatchesForRound(2), 2)

	// Round 2: B loses the losers match 1-2, A beats C
	f.play(losers[0].ID, true, false, false)
	b := f.player("B")
	assert.Equal(t, 2, b.Losses)
	assert.True(t, b.Eliminated)
	assert.Equal(t, bracket.NoSide, b.Bracket)
	assert.Equal(t, bracket.LosersSide, f.player("D").Bracket)
	f.play(f.matchBetween("A", "C").ID, true, true, false)
	f.assertInvariants()

	// Round 3: C meets D, A sits out
	next, err = f.tour.AdvanceRound()
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, bracket.LosersSide, next[0].Bracket)
	assert.Equal(t, "C", next[0].Player1ID)
	assert.Equal(t, "D", next[0].Player2ID)
	assert.True(t, f.player("A").HasBye)
	f.play(next[0].ID, false, false, true)
	assert.True(t, f.player("C").Eliminated)

	// Round 4: one winners and one losers survivor meet in the final
	next, err = f.tour.AdvanceRound()
	require.NoError(t, err)
	require.Len(t, next, 1)
	final := next[0]
	assert.Equal(t, bracket.FinalSide, final.Bracket)
	assert.Equal(t, 4, final.Round)
	assert.Equal(t, "A", final.Player1ID)
	assert.Equal(t, "D", final.Player2ID)
	assert.False(t, f.tour.Finished())

	f.play(final.ID, true, false, true)
	f.assertInvariants()

	assert.True(t, f.tour.Finished())
	champion, ok := f.tour.Champion()
	require.True(t, ok)
	assert.Equal(t, "A", champion.ID)
	assert.Equal(t, 100.0, champion.WinPercentage)

	_, err = f.tour.AdvanceRound()
	assert.ErrorIs(t, err, bracket.ErrEndOfTournament)
	assert.Equal(t, 4, f.tour.CurrentRound())

	// Collaborators
	assignments, results, rounds, champions := f.notif.Calls()
	assert.Equal(t, 0, assignments)
	assert.Equal(t, 6, results)
	assert.Equal(t, 3, rounds)
	assert.Equal(t, 1, champions)
	topics := f.pubsub.Topics()
	assert.Equal(t, pubsub.EventTournamentFinished, topics[len(topics)-1])
	assert.Equal(t, 6, f.metrics.MatchesCommitted())
	assert.Equal(t, 3, f.metrics.RoundsAdvanced())
	assert.True(t, f.store.last().Finished)
	assert.Equal(t, "A", f.store.last().ChampionID)
}

func TestAutoAdvance(t *testing.T) {
	f := newFixture(t, Options{AutoAdvance: true})
	f.restore(roundOneSnapshot("A", "B", "C", "D"))

	f.play(f.matchBetween("A", "B").ID, true, false, true)
	assert.Equal(t, 1, f.tour.CurrentRound(), "round still open")
	f.play(f.matchBetween("C", "D").ID, true, true, false)

	assert.Equal(t, 2, f.tour.CurrentRound())
	assert.Len(t, f.tour.MatchesForRound(2), 2)
	assert.Len(t, f.notif.SendRoundStartedCalls, 1)
}

func TestMachines(t *testing.T) {
	t.Run("commit releases the machine", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.restore(roundOneSnapshot("A", "B", "C", "D"))
		m := f.matchBetween("A", "B")

		require.NoError(t, f.tour.AssignMatch(2, strPtr(m.ID)))
		on, ok := f.tour.MatchOnMachine(2)
		require.True(t, ok)
		assert.Equal(t, m.ID, on.ID)
		assert.Len(t, f.tour.EligibleForAssignment(), 1)
		require.Len(t, f.notif.SendMatchAssignmentCalls, 1)
		assert.Equal(t, 2, f.notif.SendMatchAssignmentCalls[0].Machine)
		assert.Equal(t, "A", f.notif.SendMatchAssignmentCalls[0].Player1.ID)
		assert.Equal(t, 1, f.metrics.MachinesInUse())

		assert.False(t, f.tour.CanConfirm(2))
		f.score(m.ID, true, true, false)
		assert.True(t, f.tour.CanConfirm(2))
		require.NoError(t, f.tour.ConfirmMachine(2))
		state, err := f.tour.MatchState(m.ID)
		require.NoError(t, err)
		assert.Equal(t, processor.StatePendingCommit, state)
		f.clock.Advance(delay)

		_, ok = f.tour.MatchOnMachine(2)
		assert.False(t, ok)
		got, _ := f.tour.Match(m.ID)
		assert.Nil(t, got.MachineNumber)
		assert.Equal(t, 0, f.metrics.MachinesInUse())
		f.assertInvariants()
	})

	t.Run("assignment errors", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.restore(roundOneSnapshot("A", "B", "C", "D"))
		ab := f.matchBetween("A", "B")
		cd := f.matchBetween("C", "D")

		require.NoError(t, f.tour.AssignMatch(1, strPtr(ab.ID)))
		assert.ErrorIs(t, f.tour.AssignMatch(1, strPtr(cd.ID)), machines.ErrMachineOccupied)
		require.NoError(t, f.tour.AssignMatch(1, strPtr(ab.ID)))
		assert.Len(t, f.notif.SendMatchAssignmentCalls, 1, "re-assigning the same match is silent")

		_, err := f.tour.ToggleOutOfOrder(3)
		require.NoError(t, err)
		assert.ErrorIs(t, f.tour.AssignMatch(3, strPtr(cd.ID)), machines.ErrMachineOutOfOrder)
		assert.ErrorIs(t, f.tour.AssignMatch(9, strPtr(cd.ID)), machines.ErrMachineNotFound)
		assert.ErrorIs(t, f.tour.ConfirmMachine(2), ErrMachineEmpty)
		assert.ErrorIs(t, f.tour.ConfirmMachine(1), processor.ErrMatchNotDecided)

		require.NoError(t, f.tour.AssignMatch(1, nil))
		_, ok := f.tour.MatchOnMachine(1)
		assert.False(t, ok)
		f.assertInvariants()
	})

	t.Run("out of order unassigns without touching scores", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.restore(roundOneSnapshot("A", "B"))
		m := f.matchBetween("A", "B")
		require.NoError(t, f.tour.AssignMatch(1, strPtr(m.ID)))
		f.score(m.ID, true)

		machine, err := f.tour.ToggleOutOfOrder(1)
		require.NoError(t, err)
		assert.True(t, machine.IsOutOfOrder)
		got, _ := f.tour.Match(m.ID)
		assert.Nil(t, got.MachineNumber)
		assert.True(t, got.Scores[0].Decided())
		assert.Contains(t, f.pubsub.Topics(), pubsub.EventMachineAssigned)
		f.assertInvariants()
	})

	t.Run("shrinking the pool unassigns removed machines", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.restore(roundOneSnapshot("A", "B", "C", "D"))
		m := f.matchBetween("A", "B")
		require.NoError(t, f.tour.AssignMatch(4, strPtr(m.ID)))
		f.score(m.ID, true, false)

		require.NoError(t, f.tour.SetMachineCount(2))

		got, _ := f.tour.Match(m.ID)
		assert.Nil(t, got.MachineNumber)
		assert.False(t, got.Completed)
		assert.True(t, got.Scores[0].Decided())
		assert.True(t, got.Scores[1].Decided())
		assert.False(t, got.Scores[2].Decided())
		assert.Len(t, f.tour.Machines(), 2)
		f.assertInvariants()

		assert.ErrorIs(t, f.tour.SetMachineCount(0), machines.ErrInvalidMachineCount)
		assert.ErrorIs(t, f.tour.SetMachineCount(11), machines.ErrInvalidMachineCount)
		assert.Len(t, f.tour.Machines(), 2)
	})

	t.Run("quick assign prefers favourites", func(t *testing.T) {
		f := newFixture(t, Options{MachineCount: 2})
		f.restore(func() Snapshot {
			s := roundOneSnapshot("A", "B", "C", "D", "E", "F")
			s.Machines = defaultMachines(2)
			return s
		}())
		_, err := f.tour.ToggleFavorite(2)
		require.NoError(t, err)

		id, ok, err := f.tour.QuickAssign(f.matchBetween("A", "B").ID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2, id)

		id, ok, err = f.tour.QuickAssign(f.matchBetween("A", "B").ID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 2, id, "already placed matches stay put")

		id, ok, err = f.tour.QuickAssign(f.matchBetween("C", "D").ID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, id)

		_, ok, err = f.tour.QuickAssign(f.matchBetween("E", "F").ID)
		require.NoError(t, err)
		assert.False(t, ok, "no machine available is not an error")
		assert.Len(t, f.tour.EligibleForAssignment(), 1)
		f.assertInvariants()
	})

	t.Run("quality", func(t *testing.T) {
		f := newFixture(t, Options{})
		m, err := f.tour.SetMachineQuality(1, 5)
		require.NoError(t, err)
		assert.Equal(t, 5, m.Quality)
		_, err = f.tour.SetMachineQuality(1, 0)
		assert.ErrorIs(t, err, machines.ErrInvalidQuality)
	})
}

func TestReset(t *testing.T) {
	f := newFixture(t, Options{})
	f.restore(roundOneSnapshot("A", "B"))
	m := f.matchBetween("A", "B")
	require.NoError(t, f.tour.AssignMatch(1, strPtr(m.ID)))
	_, err := f.tour.ToggleFavorite(1)
	require.NoError(t, err)
	f.score(m.ID, true, true, true)
	require.NoError(t, f.tour.ConfirmMatch(m.ID))

	require.NoError(t, f.tour.Reset())
	f.clock.Advance(time.Minute)

	assert.Equal(t, 0, f.metrics.MatchesCommitted(), "pending commit was cancelled")
	assert.Empty(t, f.tour.Matches())
	assert.Empty(t, f.tour.Players())
	assert.False(t, f.tour.Started())
	machine := f.tour.Machines()[0]
	assert.Nil(t, machine.CurrentMatchID)
	assert.True(t, machine.IsFavorite, "machine settings survive a reset")

	_, err = f.tour.Start([]bracket.Player{{ID: "x"}, {ID: "y"}})
	assert.NoError(t, err)
}

func TestRestore(t *testing.T) {
	t.Run("re-arms pending commits", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.restore(roundOneSnapshot("A", "B", "C", "D"))
		m := f.matchBetween("A", "B")
		require.NoError(t, f.tour.AssignMatch(3, strPtr(m.ID)))
		f.score(m.ID, false, false, true)
		require.NoError(t, f.tour.ConfirmMatch(m.ID))
		snap := f.tour.Snapshot()

		g := newFixture(t, Options{})
		repairs, err := g.tour.Restore(snap)
		require.NoError(t, err)
		assert.Empty(t, repairs)
		assert.Equal(t, 1, g.tour.PendingCommits())
		assert.Equal(t, f.tour.Matches(), g.tour.Matches())
		assert.Equal(t, f.tour.Machines(), g.tour.Machines())

		g.clock.Advance(delay)
		got, _ := g.tour.Match(m.ID)
		assert.True(t, got.Completed)
		assert.Equal(t, bracket.LosersSide, g.player("A").Bracket)
		g.assertInvariants()
	})

	t.Run("late timer from before a restore does not swallow the re-armed commit", func(t *testing.T) {
		clk := &manualClock{}
		tour, err := New("test", Options{Clock: clk, CommitDelay: delay}, nil, nil, nil, nil)
		require.NoError(t, err)
		_, err = tour.Restore(roundOneSnapshot("A", "B", "C", "D"))
		require.NoError(t, err)

		m := tour.MatchesForRound(1)[0]
		for game, p1Won := range []bool{true, false, true} {
			require.NoError(t, tour.SetGameScore(m.ID, game, p1Won))
		}
		require.NoError(t, tour.ConfirmMatch(m.ID))
		_, err = tour.Restore(tour.Snapshot())
		require.NoError(t, err)
		require.Len(t, clk.callbacks, 2)

		clk.callback(0)()
		got, _ := tour.Match(m.ID)
		assert.False(t, got.Completed)
		assert.Equal(t, 1, tour.PendingCommits())

		clk.callback(1)()
		got, _ = tour.Match(m.ID)
		assert.True(t, got.Completed)
		assert.False(t, got.CountdownStarted)
		assert.Equal(t, 0, tour.PendingCommits())
	})

	t.Run("repairs broken links and flags", func(t *testing.T) {
		snap := roundOneSnapshot("A", "B", "C", "D")
		snap.Players[1].Losses = 2 // eliminated flag missing
		snap.Players[1].Bracket = bracket.LosersSide
		snap.Players[2].Bracket = bracket.NoSide // active player without a bracket
		two := 2
		snap.Matches[0].MachineNumber = &two    // machine 2 does not point back
		snap.Matches[1].CountdownStarted = true // undecided but counting down
		snap.Finished = true

		f := newFixture(t, Options{})
		repairs, err := f.tour.Restore(snap)
		require.NoError(t, err)
		assert.Len(t, repairs, 5)
		f.assertInvariants()
		assert.Equal(t, 0, f.tour.PendingCommits())
		assert.False(t, f.tour.Finished())
		assert.Equal(t, bracket.WinnersSide, f.player("C").Bracket)
	})

	tests := []struct {
		name   string
		mutate func(s *Snapshot)
	}{
		{"duplicate match id", func(s *Snapshot) { s.Matches[1].ID = s.Matches[0].ID }},
		{"duplicate player id", func(s *Snapshot) { s.Players[1].ID = s.Players[0].ID }},
		{"impossible score", func(s *Snapshot) {
			yes := true
			s.Matches[0].Scores[0] = bracket.Score{Player1Won: &yes, Player2Won: &yes}
		}},
		{"completed but undecided", func(s *Snapshot) { s.Matches[0].Completed = true }},
		{"unknown player", func(s *Snapshot) { s.Matches[0].Player2ID = "ghost" }},
		{"round in the future", func(s *Snapshot) { s.Matches[0].Round = 2 }},
		{"bad machine count", func(s *Snapshot) { s.Machines = defaultMachines(11) }},
		{"no machines", func(s *Snapshot) { s.Machines = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{})
			f.restore(roundOneSnapshot("X", "Y"))
			before := f.tour.Snapshot()

			snap := roundOneSnapshot("A", "B", "C", "D")
			tt.mutate(&snap)
			_, err := f.tour.Restore(snap)

			assert.ErrorIs(t, err, ErrInvalidSnapshot)
			after := f.tour.Snapshot()
			assert.Equal(t, before.Matches, after.Matches, "state is unchanged")
			assert.Equal(t, before.Players, after.Players)
		})
	}
}

func TestPersistence(t *testing.T) {
	t.Run("every change saves a newer version", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.restore(roundOneSnapshot("A", "B"))
		m := f.matchBetween("A", "B")
		f.score(m.ID, true, true, true)

		var last uint64
		for _, s := range f.store.snaps {
			assert.Greater(t, s.Version, last)
			last = s.Version
		}
		assert.Equal(t, 4, f.store.count(), "restore plus three scores")
	})

	t.Run("store failures do not fail commands", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.store.err = errors.New("disk full")
		f.restore(roundOneSnapshot("A", "B"))
		m := f.matchBetween("A", "B")
		assert.NoError(t, f.tour.SetGameScore(m.ID, 0, true))
	})

	t.Run("collaborator failures do not roll back commits", func(t *testing.T) {
		f := newFixture(t, Options{})
		f.notif.SendMatchResultFunc = func(notifier.ResultAnnouncement) error { return errors.New("slack down") }
		f.pubsub.SendMessageFunc = func(pubsub.EventType, any) error { return errors.New("pubsub down") }
		f.restore(roundOneSnapshot("A", "B"))
		f.play(f.matchBetween("A", "B").ID, true, true, true)
		assert.Equal(t, 1, f.player("B").Losses)
	})
}

// lockCheckingMetrics records counter updates made while the aggregate lock is held.
type lockCheckingMetrics struct {
	*metrics.Mock
	tour *Tournament

	mu        sync.Mutex
	underLock []string
}

func (m *lockCheckingMetrics) check(name string) {
	if m.tour.mu.TryLock() {
		m.tour.mu.Unlock()
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.underLock = append(m.underLock, name)
}

func (m *lockCheckingMetrics) IncScoresEntered() {
	m.check("scores_entered")
	m.Mock.IncScoresEntered()
}

func (m *lockCheckingMetrics) IncMatchesConfirmed() {
	m.check("matches_confirmed")
	m.Mock.IncMatchesConfirmed()
}

func (m *lockCheckingMetrics) IncMatchesCommitted() {
	m.check("matches_committed")
	m.Mock.IncMatchesCommitted()
}

func (m *lockCheckingMetrics) IncRoundsAdvanced() {
	m.check("rounds_advanced")
	m.Mock.IncRoundsAdvanced()
}

func (m *lockCheckingMetrics) IncMachineAssignments() {
	m.check("machine_assignments")
	m.Mock.IncMachineAssignments()
}

func (m *lockCheckingMetrics) SetMachinesInUse(n int) {
	m.check("machines_in_use")
	m.Mock.SetMachinesInUse(n)
}

func TestMetricsRecordedOutsideLock(t *testing.T) {
	// Setup
	clk := clock.NewFake(time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC))
	metr := &lockCheckingMetrics{Mock: metrics.NewMock()}
	tour, err := New("test", Options{Clock: clk, CommitDelay: delay}, nil, nil, metr, nil)
	require.NoError(t, err)
	t.Cleanup(tour.Close)
	metr.tour = tour
	_, err = tour.Restore(roundOneSnapshot("A", "B", "C", "D"))
	require.NoError(t, err)

	// Execute
	for i, m := range tour.MatchesForRound(1) {
		require.NoError(t, tour.AssignMatch(i+1, strPtr(m.ID)))
		for game := 0; game < bracket.GamesPerMatch; game++ {
			require.NoError(t, tour.SetGameScore(m.ID, game, game != 1))
		}
		require.NoError(t, tour.ConfirmMatch(m.ID))
	}
	clk.Advance(delay)
	_, err = tour.AdvanceRound()
	require.NoError(t, err)

	// Assert
	assert.Empty(t, metr.underLock)
	assert.Equal(t, 6, metr.ScoresEntered())
	assert.Equal(t, 2, metr.MatchesConfirmed())
	assert.Equal(t, 2, metr.MatchesCommitted())
	assert.Equal(t, 1, metr.RoundsAdvanced())
	assert.Equal(t, 2, metr.MachineAssignments())
	assert.Equal(t, 0, metr.MachinesInUse())
}

func TestConcurrentCommands(t *testing.T) {
	f := newFixture(t, Options{MachineCount: 10})
	ids := make([]string, 16)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%02d", i)
	}
	snap := roundOneSnapshot(ids...)
	snap.Machines = defaultMachines(10)
	f.restore(snap)
	matches := f.tour.Matches()

	var wg sync.WaitGroup
	for i, m := range matches {
		wg.Add(1)
		go func(machine int, id string) {
			defer wg.Done()
			_ = f.tour.AssignMatch(machine, strPtr(id))
			for g := 0; g < bracket.GamesPerMatch; g++ {
				_ = f.tour.SetGameScore(id, g, g != 1)
			}
			_ = f.tour.ConfirmMatch(id)
			_ = f.tour.Machines()
			_ = f.tour.EligibleForAssignment()
		}(i%10+1, m.ID)
	}
	wg.Wait()

	assert.Equal(t, len(matches), f.tour.PendingCommits())
	f.clock.Advance(delay)
	assert.Equal(t, len(matches), f.metrics.MatchesCommitted())
	f.assertInvariants()

	next, err := f.tour.AdvanceRound()
	require.NoError(t, err)
	assert.Len(t, next, 8)
}
