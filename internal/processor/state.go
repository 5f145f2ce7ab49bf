package processor

import (
	"fmt"

	"github.com/mauv0809/bracket-machines/internal/bracket"
)

// StateOf derives the completion-protocol state from the match flags.
func StateOf(m bracket.Match) State {
	switch {
	case m.Completed:
		return StateCompleted
	case m.CountdownStarted:
		return StatePendingCommit
	case m.AllDecided():
		return StateAllDecided
	default:
		return StateOpen
	}
}

// SetGame records the outcome of one game. Re-scoring a decided game before
// confirmation overwrites it.
func SetGame(m *bracket.Match, game int, player1Won bool) error {
	switch StateOf(*m) {
	case StateCompleted:
		return bracket.ErrMatchAlreadyCompleted
	case StatePendingCommit:
		return ErrMatchLocked
	}
	if game < 0 || game >= bracket.GamesPerMatch {
		return fmt.Errorf("%w: %d", ErrInvalidGameIndex, game)
	}
	if m.HasTBD() {
		return ErrMatchNotReady
	}
	m.Scores[game] = bracket.NewScore(player1Won)
	return nil
}

// Confirmable checks whether a match may enter its grace window. A match
// already pending reports pending=true and no error so repeated confirmations
// are harmless.
func Confirmable(m bracket.Match) (pending bool, err error) {
	switch StateOf(m) {
	case StateCompleted:
		return false, bracket.ErrMatchAlreadyCompleted
	case StatePendingCommit:
		return true, nil
	case StateOpen:
		return false, ErrMatchNotDecided
	}
	if m.HasTBD() {
		return false, ErrMatchNotReady
	}
	return false, nil
}
