package processor

import (
	"sync"
	"time"

	"github.com/mauv0809/bracket-machines/internal/clock"
	"github.com/mauv0809/bracket-machines/internal/metrics"
)

// State is a match's position in the completion protocol.
type State string

const (
	StateOpen          State = "OPEN"
	StateAllDecided    State = "ALL_DECIDED"
	StatePendingCommit State = "PENDING_COMMIT"
	StateCompleted     State = "COMPLETED"
)

// CommitFunc finalizes a match once its grace window has elapsed.
type CommitFunc func(matchID string)

// Processor owns the grace-window timers of confirmed matches, keyed by match id.
type Processor struct {
	clock   clock.Clock
	delay   time.Duration
	metrics metrics.Metrics

	mu      sync.Mutex
	seq     uint64
	pending map[string]pendingCommit
}

type pendingCommit struct {
	timer       clock.Timer
	seq         uint64
	confirmedAt time.Time
}
