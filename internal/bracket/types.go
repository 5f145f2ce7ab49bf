package bracket

// Side is the bracket a player or match belongs to.
type Side string

const (
	WinnersSide Side = "winners"
	LosersSide  Side = "losers"
	FinalSide   Side = "final"
	// NoSide marks eliminated players and roster entries before the tournament starts.
	NoSide Side = ""
)

// GamesPerMatch is the number of score slots in a best-of-three match.
const GamesPerMatch = 3

// TBDPlayerID stands in for an opponent that is not yet known.
const TBDPlayerID = "tbd"

// Valid reports whether s is one of the known sides.
func (s Side) Valid() bool {
	switch s {
	case WinnersSide, LosersSide, FinalSide, NoSide:
		return true
	}
	return false
}

// Player represents a tournament participant.
type Player struct {
	ID            string  `json:"id" msgpack:"id"`
	FirstName     string  `json:"first_name" msgpack:"first_name"`
	LastName      string  `json:"last_name,omitempty" msgpack:"last_name"`
	Team          string  `json:"team,omitempty" msgpack:"team"`
	WinPercentage float64 `json:"win_percentage" msgpack:"win_percentage"`
	Losses        int     `json:"losses" msgpack:"losses"`
	Eliminated    bool    `json:"eliminated" msgpack:"eliminated"`
	Bracket       Side    `json:"bracket" msgpack:"bracket"`
	HasBye        bool    `json:"has_bye,omitempty" msgpack:"has_bye"`
}

// Name returns the display name of the player.
func (p Player) Name() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Match is a best-of-three between two players.
type Match struct {
	ID               string               `json:"id" msgpack:"id"`
	Player1ID        string               `json:"player1_id" msgpack:"player1_id"`
	Player2ID        string               `json:"player2_id" msgpack:"player2_id"`
	Scores           [GamesPerMatch]Score `json:"scores" msgpack:"scores"`
	Completed        bool                 `json:"completed" msgpack:"completed"`
	CountdownStarted bool                 `json:"countdown_started" msgpack:"countdown_started"`
	Round            int                  `json:"round" msgpack:"round"`
	Bracket          Side                 `json:"bracket" msgpack:"bracket"`
	MatchNumber      int                  `json:"match_number" msgpack:"match_number"`
	MachineNumber    *int                 `json:"machine_number,omitempty" msgpack:"machine_number"`
}

// HasPlayer reports whether playerID takes part in the match.
func (m Match) HasPlayer(playerID string) bool {
	return m.Player1ID == playerID || m.Player2ID == playerID
}

// HasTBD reports whether either side of the match is still undetermined.
func (m Match) HasTBD() bool {
	return m.Player1ID == TBDPlayerID || m.Player2ID == TBDPlayerID
}

// AllDecided reports whether every score slot has an outcome.
func (m Match) AllDecided() bool {
	for _, s := range m.Scores {
		if !s.Decided() {
			return false
		}
	}
	return true
}

// Wins counts the decided slots won by each side.
func (m Match) Wins() (player1, player2 int) {
	for _, s := range m.Scores {
		switch {
		case s.Player1Won != nil && *s.Player1Won:
			player1++
		case s.Player2Won != nil && *s.Player2Won:
			player2++
		}
	}
	return player1, player2
}

// Result returns the winner and loser of a fully decided match.
// ok is false while any slot is undecided.
func (m Match) Result() (winnerID, loserID string, ok bool) {
	if !m.AllDecided() {
		return "", "", false
	}
	p1, p2 := m.Wins()
	if p1 > p2 {
		return m.Player1ID, m.Player2ID, true
	}
	return m.Player2ID, m.Player1ID, true
}

// Clone returns a copy that shares no pointers with m.
func (m Match) Clone() Match {
	c := m
	for i, s := range m.Scores {
		if s.Decided() {
			c.Scores[i] = NewScore(*s.Player1Won)
		} else {
			c.Scores[i] = Score{}
		}
	}
	if m.MachineNumber != nil {
		n := *m.MachineNumber
		c.MachineNumber = &n
	}
	return c
}
