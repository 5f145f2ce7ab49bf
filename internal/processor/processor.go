package processor

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/bracket-machines/internal/clock"
	"github.com/mauv0809/bracket-machines/internal/metrics"
)

// DefaultDelay is the grace window between confirming a result and its commit.
const DefaultDelay = 10 * time.Second

// New creates a new Processor.
func New(clk clock.Clock, delay time.Duration, metrics metrics.Metrics) *Processor {
	return &Processor{
		clock:   clk,
		delay:   delay,
		metrics: metrics,
		pending: make(map[string]pendingCommit),
	}
}

// Delay returns the configured grace window.
func (p *Processor) Delay() time.Duration {
	return p.delay
}

// Schedule arms a commit for matchID after the grace window. It returns false
// without scheduling when a commit for the match is already pending.
func (p *Processor) Schedule(matchID string, commit CommitFunc) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.pending[matchID]; ok {
		log.Debug("Commit already pending", "matchID", matchID)
		return false
	}
	p.seq++
	seq := p.seq
	confirmedAt := p.clock.Now()
	timer := p.clock.AfterFunc(p.delay, func() { p.fire(matchID, seq, commit) })
	p.pending[matchID] = pendingCommit{timer: timer, seq: seq, confirmedAt: confirmedAt}
	p.metrics.SetPendingCommits(len(p.pending))
	log.Info("Commit scheduled", "matchID", matchID, "delay", p.delay)
	return true
}

// fire runs the commit of schedule seq. A timer that outlived a Stop finds
// either no entry or a newer one under its match id and does nothing.
func (p *Processor) fire(matchID string, seq uint64, commit CommitFunc) {
	p.mu.Lock()
	pc, ok := p.pending[matchID]
	ok = ok && pc.seq == seq
	if ok {
		delete(p.pending, matchID)
		p.metrics.SetPendingCommits(len(p.pending))
	}
	p.mu.Unlock()
	if !ok {
		log.Debug("Stale commit timer ignored", "matchID", matchID, "seq", seq)
		return
	}

	p.metrics.ObserveCommitDelay(p.clock.Now().Sub(pc.confirmedAt).Seconds())
	defer func() {
		if r := recover(); r != nil {
			log.Error("Commit panicked", "matchID", matchID, "error", fmt.Sprint(r))
		}
	}()
	log.Info("Grace window elapsed. Committing match.", "matchID", matchID)
	commit(matchID)
}

// PendingCount returns the number of scheduled commits.
func (p *Processor) PendingCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Stop cancels every pending commit.
func (p *Processor) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, pc := range p.pending {
		pc.timer.Stop()
		delete(p.pending, id)
	}
	p.metrics.SetPendingCommits(0)
}
