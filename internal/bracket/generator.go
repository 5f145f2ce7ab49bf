package bracket

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

// BuildInitialRound shuffles the roster and pairs consecutive players into
// round-one winners matches. The returned roster has every player placed in the
// winners bracket; an odd player out is marked HasBye and gets no match.
func BuildInitialRound(players []Player, rng *rand.Rand) ([]Player, []Match, error) {
	if len(players) < 2 {
		return nil, nil, ErrInsufficientPlayers
	}
	seen := make(map[string]struct{}, len(players))
	roster := make([]Player, len(players))
	for i, p := range players {
		if _, ok := seen[p.ID]; ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}
		p.Bracket = WinnersSide
		p.Losses = 0
		p.Eliminated = false
		p.WinPercentage = 0
		p.HasBye = false
		roster[i] = p
	}

	shuffle(roster, rng)

	matches := BuildNextRound(roster, 1, WinnersSide)
	if len(roster)%2 == 1 {
		roster[len(roster)-1].HasBye = true
	}
	return roster, matches, nil
}

// BuildNextRound pairs consecutive players from an already ordered list. A
// trailing unpaired player is left out of the returned matches.
func BuildNextRound(players []Player, round int, side Side) []Match {
	matches := make([]Match, 0, len(players)/2)
	for i := 0; i+1 < len(players); i += 2 {
		matches = append(matches, newMatch(players[i].ID, players[i+1].ID, round, side, len(matches)+1))
	}
	return matches
}

func newMatch(player1ID, player2ID string, round int, side Side, number int) Match {
	return Match{
		ID:          uuid.NewString(),
		Player1ID:   player1ID,
		Player2ID:   player2ID,
		Round:       round,
		Bracket:     side,
		MatchNumber: number,
	}
}

// shuffle is a Fisher-Yates shuffle. A nil rng uses the global source.
func shuffle(players []Player, rng *rand.Rand) {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(players) - 1; i > 0; i-- {
		j := intN(i + 1)
		players[i], players[j] = players[j], players[i]
	}
}
