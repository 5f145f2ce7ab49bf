package notifier

import "github.com/mauv0809/bracket-machines/internal/bracket"

// Notifier defines a high-level interface for announcing tournament events.
// This decouples the tournament from the specific notification provider (e.g., Slack).
type Notifier interface {
	// A match was placed on a machine
	SendMatchAssignment(a MatchAnnouncement) error
	// A match committed
	SendMatchResult(r ResultAnnouncement) error
	// A new round was generated
	SendRoundStarted(r RoundAnnouncement) error
	// The final committed
	SendChampion(champion bracket.Player) error
}

// MatchAnnouncement describes a match and the players in it.
type MatchAnnouncement struct {
	Match   bracket.Match
	Player1 bracket.Player
	Player2 bracket.Player
	// Machine is 0 when the match is not on a machine.
	Machine int
}

// ResultAnnouncement describes a committed match.
type ResultAnnouncement struct {
	Match  bracket.Match
	Winner bracket.Player
	Loser  bracket.Player
}

// RoundAnnouncement lists the matches of a freshly generated round.
type RoundAnnouncement struct {
	Round   int
	Matches []MatchAnnouncement
	// Byes are players sitting out the round.
	Byes []bracket.Player
}
