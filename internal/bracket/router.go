package bracket

import "fmt"

// MaxLosses is the number of losses that eliminates a player.
const MaxLosses = 2

// ApplyResult routes both participants of a completed match. The winner keeps
// its bracket, the loser drops to the losers bracket on a first loss and is
// eliminated on a second. Win percentages of both players are recomputed over
// every completed match in matches, which must already include completed.
func ApplyResult(players []Player, matches []Match, completed Match) ([]Player, error) {
	winnerID, loserID, ok := completed.Result()
	if !ok {
		return nil, fmt.Errorf("routing match %s: %w", completed.ID, ErrMatchUndecided)
	}

	updated := make([]Player, len(players))
	copy(updated, players)
	for i := range updated {
		p := &updated[i]
		switch p.ID {
		case loserID:
			p.Losses++
			if p.Losses >= MaxLosses {
				p.Eliminated = true
				p.Bracket = NoSide
			} else {
				p.Bracket = LosersSide
			}
			p.WinPercentage = WinPercentage(p.ID, matches)
		case winnerID:
			p.WinPercentage = WinPercentage(p.ID, matches)
		}
	}
	return updated, nil
}

// WinPercentage is the share of the player's completed matches they won, in 0..100.
func WinPercentage(playerID string, matches []Match) float64 {
	var played, won int
	for _, m := range matches {
		if !m.Completed || !m.HasPlayer(playerID) {
			continue
		}
		winnerID, _, ok := m.Result()
		if !ok {
			continue
		}
		played++
		if winnerID == playerID {
			won++
		}
	}
	if played == 0 {
		return 0
	}
	return float64(won) / float64(played) * 100
}
