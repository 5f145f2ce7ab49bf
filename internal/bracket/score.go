package bracket

// Score is the outcome of one game. Both fields are nil while the game is undecided.
type Score struct {
	Player1Won *bool `json:"player1_won" msgpack:"player1_won"`
	Player2Won *bool `json:"player2_won" msgpack:"player2_won"`
}

// NewScore returns a decided score slot.
func NewScore(player1Won bool) Score {
	p1 := player1Won
	p2 := !player1Won
	return Score{Player1Won: &p1, Player2Won: &p2}
}

// Decided reports whether the slot has an outcome.
func (s Score) Decided() bool {
	return s.Player1Won != nil && s.Player2Won != nil
}

// Valid reports whether the slot is either fully undecided or favours exactly one side.
func (s Score) Valid() bool {
	if s.Player1Won == nil && s.Player2Won == nil {
		return true
	}
	if s.Player1Won == nil || s.Player2Won == nil {
		return false
	}
	return *s.Player1Won != *s.Player2Won
}
