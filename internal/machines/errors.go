package machines

import "errors"

var (
	ErrMachineNotFound     = errors.New("machine not found")
	ErrMachineOutOfOrder   = errors.New("machine is out of order")
	ErrMachineOccupied     = errors.New("machine already hosts another match")
	ErrInvalidMachineCount = errors.New("machine count must be between 1 and 10")
	ErrInvalidQuality      = errors.New("machine quality must be between 1 and 5")
)
