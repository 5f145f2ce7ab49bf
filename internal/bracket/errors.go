package bracket

import "errors"

var (
	ErrInsufficientPlayers   = errors.New("at least two players are required")
	ErrDuplicatePlayer       = errors.New("duplicate player id in roster")
	ErrMatchNotFound         = errors.New("match not found")
	ErrMatchAlreadyCompleted = errors.New("match already completed")
	ErrMatchUndecided        = errors.New("match has undecided games")
	ErrRoundNotComplete      = errors.New("round not complete")
	ErrTimersPending         = errors.New("match commits still pending")
	// ErrEndOfTournament is a terminal signal rather than a failure.
	ErrEndOfTournament = errors.New("end of tournament")
)
