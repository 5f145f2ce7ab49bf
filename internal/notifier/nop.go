package notifier

import (
	"github.com/charmbracelet/log"
	"github.com/mauv0809/bracket-machines/internal/bracket"
)

var _ Notifier = Nop{}

// Nop logs announcements instead of sending them. Used when no Slack token is configured.
type Nop struct{}

func (Nop) SendMatchAssignment(a MatchAnnouncement) error {
	log.Debug("Match assignment not announced", "matchID", a.Match.ID, "machine", a.Machine)
	return nil
}

func (Nop) SendMatchResult(r ResultAnnouncement) error {
	log.Debug("Match result not announced", "matchID", r.Match.ID, "winner", r.Winner.ID)
	return nil
}

func (Nop) SendRoundStarted(r RoundAnnouncement) error {
	log.Debug("Round not announced", "round", r.Round, "matches", len(r.Matches))
	return nil
}

func (Nop) SendChampion(champion bracket.Player) error {
	log.Debug("Champion not announced", "playerID", champion.ID)
	return nil
}
