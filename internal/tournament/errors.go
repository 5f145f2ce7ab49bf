package tournament

import "errors"

var (
	ErrTournamentStarted    = errors.New("tournament already started")
	ErrTournamentNotStarted = errors.New("tournament not started")
	ErrMachineEmpty         = errors.New("machine has no match")
	ErrInvalidSnapshot      = errors.New("invalid snapshot")

	// errNoChange ends a command successfully without saving or counting a rejection.
	errNoChange = errors.New("no change")
)
