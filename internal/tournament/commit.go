package tournament

import (
	"github.com/charmbracelet/log"
	"github.com/mauv0809/bracket-machines/internal/bracket"
)

// commit finalizes a match once its grace window has elapsed. It runs on the
// clock's goroutine and reports problems through the log only.
func (t *Tournament) commit(generation uint64, matchID string) {
	_ = t.mutate("commit", func(out *outbox) error {
		if generation != t.generation {
			log.Debug("Dropping commit from a previous tournament state", "matchID", matchID)
			return errNoChange
		}
		m, err := t.matchLocked(matchID)
		if err != nil {
			log.Warn("Commit for unknown match ignored", "matchID", matchID)
			return errNoChange
		}
		if m.Completed || !m.CountdownStarted {
			log.Debug("Match not awaiting commit", "matchID", matchID, "completed", m.Completed)
			return errNoChange
		}
		winnerID, loserID, ok := m.Result()
		if !ok {
			log.Error("Pending match has undecided games. Reopening.", "matchID", matchID)
			m.CountdownStarted = false
			return nil
		}

		m.Completed = true
		m.CountdownStarted = false
		committed := *m

		players, err := bracket.ApplyResult(t.players, t.matches, committed)
		if err != nil {
			log.Error("Failed to route match result", "matchID", matchID, "error", err)
			return nil
		}
		t.players = players
		if machine := t.pool.ReleaseMatch(t.matches, matchID); machine != 0 {
			log.Info("Machine released", "machine", machine, "matchID", matchID)
		}
		out.add(t.metrics.IncMatchesCommitted)
		log.Info("Match committed", "matchID", matchID, "round", committed.Round, "bracket", committed.Bracket, "winner", winnerID, "loser", loserID)
		t.queueResult(out, committed, t.playerLocked(winnerID), t.playerLocked(loserID))

		if committed.Bracket == bracket.FinalSide {
			t.finishLocked(out, winnerID)
			return nil
		}
		if t.opts.AutoAdvance && bracket.IsRoundComplete(t.matches, t.currentRound) {
			if _, err := t.advanceLocked(out); err != nil {
				log.Info("Auto advance stopped", "round", t.currentRound, "reason", err)
			}
		}
		return nil
	})
}
