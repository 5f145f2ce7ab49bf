package bracket

import (
	"fmt"
	"sort"
)

// IsMatchComplete reports whether all games are decided, regardless of whether
// the match has been committed.
func IsMatchComplete(m Match) bool {
	return m.AllDecided()
}

// IsRoundComplete reports whether every match of the round is committed.
func IsRoundComplete(matches []Match, round int) bool {
	for _, m := range matches {
		if m.Round == round && !m.Completed {
			return false
		}
	}
	return true
}

// HasPendingCommits reports whether any match of the round is counting down.
func HasPendingCommits(matches []Match, round int) bool {
	for _, m := range matches {
		if m.Round == round && m.CountdownStarted {
			return true
		}
	}
	return false
}

// FinalCompleted reports whether a final match exists and has been committed.
func FinalCompleted(matches []Match) bool {
	for _, m := range matches {
		if m.Bracket == FinalSide && m.Completed {
			return true
		}
	}
	return false
}

// NextRound plans round current+1. It returns the roster with bye markers
// refreshed and the matches to append. When exactly one winners and one losers
// player remain they meet in a single final match. ErrEndOfTournament is
// returned when no match can be formed.
func NextRound(players []Player, matches []Match, current int) ([]Player, []Match, error) {
	if FinalCompleted(matches) {
		return nil, nil, ErrEndOfTournament
	}
	if HasPendingCommits(matches, current) {
		return nil, nil, fmt.Errorf("%w: %w", ErrTimersPending, ErrRoundNotComplete)
	}
	if !IsRoundComplete(matches, current) {
		return nil, nil, ErrRoundNotComplete
	}

	winners := survivors(players, matches, current, WinnersSide)
	losers := survivors(players, matches, current, LosersSide)
	next := current + 1

	updated := make([]Player, len(players))
	copy(updated, players)
	for i := range updated {
		updated[i].HasBye = false
	}

	if len(winners) == 1 && len(losers) == 1 {
		return updated, []Match{newMatch(winners[0].ID, losers[0].ID, next, FinalSide, 1)}, nil
	}

	var planned []Match
	for _, group := range [][]Player{winners, losers} {
		if len(group)%2 == 1 {
			markBye(updated, group[len(group)-1].ID)
		}
		if len(group) < 2 {
			continue
		}
		planned = append(planned, BuildNextRound(group, next, group[0].Bracket)...)
	}
	if len(planned) == 0 {
		return nil, nil, ErrEndOfTournament
	}
	return updated, planned, nil
}

func markBye(players []Player, id string) {
	for i := range players {
		if players[i].ID == id {
			players[i].HasBye = true
			return
		}
	}
}

// survivors lists the active players of a side. Players who sat out the
// current round come first in roster order, then the rest by the order of the
// match they played: winners bracket matches before losers bracket matches,
// then by match number.
func survivors(players []Player, matches []Match, current int, side Side) []Player {
	var round []Match
	for _, m := range matches {
		if m.Round == current {
			round = append(round, m)
		}
	}
	sort.SliceStable(round, func(i, j int) bool {
		if round[i].Bracket != round[j].Bracket {
			return sideOrder(round[i].Bracket) < sideOrder(round[j].Bracket)
		}
		return round[i].MatchNumber < round[j].MatchNumber
	})

	position := make(map[string]int, len(round)*2)
	for i, m := range round {
		position[m.Player1ID] = i
		position[m.Player2ID] = i
	}
	rank := func(p Player) int {
		if pos, ok := position[p.ID]; ok {
			return pos
		}
		return -1
	}

	var out []Player
	for _, p := range players {
		if !p.Eliminated && p.Bracket == side {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i]) < rank(out[j])
	})
	return out
}

func sideOrder(s Side) int {
	switch s {
	case WinnersSide:
		return 0
	case LosersSide:
		return 1
	default:
		return 2
	}
}
