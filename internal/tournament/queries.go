package tournament

import (
	"github.com/mauv0809/bracket-machines/internal/bracket"
	"github.com/mauv0809/bracket-machines/internal/machines"
	"github.com/mauv0809/bracket-machines/internal/processor"
)

// Players returns every player, eliminated ones included.
func (t *Tournament) Players() []bracket.Player {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]bracket.Player, len(t.players))
	copy(out, t.players)
	return out
}

// Player looks up a player by id.
func (t *Tournament) Player(id string) (bracket.Player, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.players {
		if p.ID == id {
			return p, true
		}
	}
	return bracket.Player{}, false
}

// Matches returns every match of every round.
func (t *Tournament) Matches() []bracket.Match {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneMatches(t.matches)
}

// Match looks up a match by id.
func (t *Tournament) Match(id string) (bracket.Match, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, err := t.matchLocked(id)
	if err != nil {
		return bracket.Match{}, false
	}
	return m.Clone(), true
}

// MatchesForRound returns the matches of one round.
func (t *Tournament) MatchesForRound(round int) []bracket.Match {
	return t.filter(func(m bracket.Match) bool { return m.Round == round })
}

// MatchesForBracket returns the matches of one bracket across all rounds.
func (t *Tournament) MatchesForBracket(side bracket.Side) []bracket.Match {
	return t.filter(func(m bracket.Match) bool { return m.Bracket == side })
}

func (t *Tournament) filter(keep func(bracket.Match) bool) []bracket.Match {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := []bracket.Match{}
	for _, m := range t.matches {
		if keep(m) {
			out = append(out, m.Clone())
		}
	}
	return out
}

// Machines returns the machine pool.
func (t *Tournament) Machines() []machines.Machine {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pool.Machines()
}

// EligibleForAssignment returns open current-round matches not on a machine.
func (t *Tournament) EligibleForAssignment() []bracket.Match {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneMatches(machines.Eligible(t.matches, t.currentRound))
}

// MatchOnMachine returns the match the machine currently hosts.
func (t *Tournament) MatchOnMachine(machineID int) (bracket.Match, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.pool.MatchOn(t.matches, machineID)
	if !ok {
		return bracket.Match{}, false
	}
	return m.Clone(), true
}

// CanConfirm reports whether the machine's match is ready to be confirmed.
func (t *Tournament) CanConfirm(machineID int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pool.CanConfirm(t.matches, machineID)
}

// MatchState returns the completion-protocol state of a match.
func (t *Tournament) MatchState(matchID string) (processor.State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, err := t.matchLocked(matchID)
	if err != nil {
		return "", err
	}
	return processor.StateOf(*m), nil
}

// CurrentRound returns the current round, 0 before the tournament starts.
func (t *Tournament) CurrentRound() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentRound
}

// Started reports whether round one has been generated.
func (t *Tournament) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentRound > 0
}

// Finished reports whether the final has been committed.
func (t *Tournament) Finished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished
}

// Champion returns the winner once the tournament has finished.
func (t *Tournament) Champion() (bracket.Player, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.finished || t.championID == "" {
		return bracket.Player{}, false
	}
	return t.playerLocked(t.championID), true
}

// PendingCommits returns the number of matches in their grace window.
func (t *Tournament) PendingCommits() int {
	return t.processor.PendingCount()
}
