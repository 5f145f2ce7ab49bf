package tournament

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/bracket-machines/internal/bracket"
	"github.com/mauv0809/bracket-machines/internal/machines"
)

// Snapshot returns a deep copy of the current state.
func (t *Tournament) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tournament) snapshotLocked() Snapshot {
	players := make([]bracket.Player, len(t.players))
	copy(players, t.players)
	return Snapshot{
		ID:           t.id,
		Version:      t.version,
		Players:      players,
		Matches:      cloneMatches(t.matches),
		CurrentRound: t.currentRound,
		RoundStarted: t.roundStarted,
		Finished:     t.finished,
		ChampionID:   t.championID,
		Machines:     t.pool.Machines(),
		SavedAt:      t.opts.Clock.Now(),
	}
}

// Restore replaces the state with snap after validating it. Inputs that can be
// repaired are fixed and described in the returned list; anything else is
// rejected with ErrInvalidSnapshot and leaves the state unchanged. Matches
// restored mid grace window get a fresh commit timer.
func (t *Tournament) Restore(snap Snapshot) ([]string, error) {
	players, matches, repairs, err := validateSnapshot(snap)
	if err != nil {
		return nil, err
	}
	pool, err := machines.FromMachines(snap.Machines)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	repairs = append(repairs, pool.Reconcile(matches)...)

	finished, championID := false, ""
	for _, m := range matches {
		if m.Bracket == bracket.FinalSide && m.Completed {
			winnerID, _, _ := m.Result()
			finished, championID = true, winnerID
		}
	}
	if !finished && snap.Finished && soleSurvivor(players) == snap.ChampionID && snap.ChampionID != "" {
		finished, championID = true, snap.ChampionID
	}
	if finished != snap.Finished || championID != snap.ChampionID {
		repairs = append(repairs, fmt.Sprintf("finished/champion corrected to %t/%q", finished, championID))
	}

	err = t.mutate("restore", func(out *outbox) error {
		t.processor.Stop()
		t.generation++
		t.players = players
		t.matches = matches
		t.currentRound = snap.CurrentRound
		t.roundStarted = snap.RoundStarted || snap.CurrentRound > 0
		t.finished = finished
		t.championID = championID
		t.pool = pool
		if snap.Version > t.version {
			t.version = snap.Version
		}
		rearmed := 0
		for _, m := range t.matches {
			if m.CountdownStarted {
				t.scheduleLocked(m.ID)
				rearmed++
			}
		}
		log.Info("Tournament restored", "tournamentID", t.id, "round", t.currentRound, "matches", len(t.matches), "pendingCommits", rearmed, "repairs", len(repairs))
		return nil
	})
	for _, r := range repairs {
		log.Warn("Repaired snapshot input", "tournamentID", t.id, "repair", r)
	}
	return repairs, err
}

// validateSnapshot checks the structural invariants of a snapshot and returns
// repaired copies of its players and matches.
func validateSnapshot(snap Snapshot) ([]bracket.Player, []bracket.Match, []string, error) {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidSnapshot, fmt.Sprintf(format, args...))
	}
	var repairs []string

	if snap.CurrentRound < 0 {
		return nil, nil, nil, invalid("negative current round %d", snap.CurrentRound)
	}
	if snap.CurrentRound == 0 && len(snap.Matches) > 0 {
		return nil, nil, nil, invalid("matches present before round one")
	}

	players := make([]bracket.Player, len(snap.Players))
	known := make(map[string]struct{}, len(snap.Players))
	for i, p := range snap.Players {
		if p.ID == "" {
			return nil, nil, nil, invalid("player %d has no id", i)
		}
		if _, dup := known[p.ID]; dup {
			return nil, nil, nil, invalid("duplicate player %s", p.ID)
		}
		known[p.ID] = struct{}{}
		if !p.Bracket.Valid() || p.Bracket == bracket.FinalSide {
			return nil, nil, nil, invalid("player %s has bracket %q", p.ID, p.Bracket)
		}
		if p.Losses < 0 {
			return nil, nil, nil, invalid("player %s has negative losses", p.ID)
		}
		if p.Losses > bracket.MaxLosses {
			repairs = append(repairs, fmt.Sprintf("player %s losses clamped from %d", p.ID, p.Losses))
			p.Losses = bracket.MaxLosses
		}
		out := p.Losses >= bracket.MaxLosses
		if p.Eliminated != out || (out && p.Bracket != bracket.NoSide) {
			repairs = append(repairs, fmt.Sprintf("player %s elimination state realigned with %d losses", p.ID, p.Losses))
			p.Eliminated = out
			if out {
				p.Bracket = bracket.NoSide
			}
		}
		if !p.Eliminated && p.Bracket == bracket.NoSide && snap.CurrentRound > 0 {
			p.Bracket = bracket.WinnersSide
			if p.Losses > 0 {
				p.Bracket = bracket.LosersSide
			}
			repairs = append(repairs, fmt.Sprintf("player %s placed in %s bracket", p.ID, p.Bracket))
		}
		players[i] = p
	}

	matches := make([]bracket.Match, len(snap.Matches))
	seen := make(map[string]struct{}, len(snap.Matches))
	for i, m := range snap.Matches {
		if m.ID == "" {
			return nil, nil, nil, invalid("match %d has no id", i)
		}
		if _, dup := seen[m.ID]; dup {
			return nil, nil, nil, invalid("duplicate match %s", m.ID)
		}
		seen[m.ID] = struct{}{}
		if m.Round < 1 || m.Round > snap.CurrentRound {
			return nil, nil, nil, invalid("match %s has round %d outside 1..%d", m.ID, m.Round, snap.CurrentRound)
		}
		if m.Bracket != bracket.WinnersSide && m.Bracket != bracket.LosersSide && m.Bracket != bracket.FinalSide {
			return nil, nil, nil, invalid("match %s has bracket %q", m.ID, m.Bracket)
		}
		for _, id := range []string{m.Player1ID, m.Player2ID} {
			if _, ok := known[id]; !ok && id != bracket.TBDPlayerID {
				return nil, nil, nil, invalid("match %s references unknown player %q", m.ID, id)
			}
		}
		for g, s := range m.Scores {
			if !s.Valid() {
				return nil, nil, nil, invalid("match %s game %d has an impossible score", m.ID, g)
			}
		}
		if m.Completed && !m.AllDecided() {
			return nil, nil, nil, invalid("match %s is completed with undecided games", m.ID)
		}
		if m.CountdownStarted && (m.Completed || !m.AllDecided()) {
			repairs = append(repairs, fmt.Sprintf("match %s countdown cleared", m.ID))
			m.CountdownStarted = false
		}
		matches[i] = m.Clone()
	}
	return players, matches, repairs, nil
}

func soleSurvivor(players []bracket.Player) string {
	var id string
	for _, p := range players {
		if p.Eliminated {
			continue
		}
		if id != "" {
			return ""
		}
		id = p.ID
	}
	return id
}
