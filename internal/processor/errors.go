package processor

import "errors"

var (
	ErrMatchLocked      = errors.New("match is locked while its result commits")
	ErrInvalidGameIndex = errors.New("game index out of range")
	ErrMatchNotDecided  = errors.New("match has undecided games")
	ErrMatchNotReady    = errors.New("match opponent not yet determined")
)
