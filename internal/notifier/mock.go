package notifier

import (
	"sync"

	"github.com/mauv0809/bracket-machines/internal/bracket"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies
	SendMatchAssignmentFunc func(a MatchAnnouncement) error
	SendMatchResultFunc     func(r ResultAnnouncement) error
	SendRoundStartedFunc    func(r RoundAnnouncement) error
	SendChampionFunc        func(champion bracket.Player) error

	// Call records
	SendMatchAssignmentCalls []MatchAnnouncement
	SendMatchResultCalls     []ResultAnnouncement
	SendRoundStartedCalls    []RoundAnnouncement
	SendChampionCalls        []bracket.Player
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchAssignmentCalls = nil
	m.SendMatchResultCalls = nil
	m.SendRoundStartedCalls = nil
	m.SendChampionCalls = nil
}

func (m *Mock) SendMatchAssignment(a MatchAnnouncement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchAssignmentCalls = append(m.SendMatchAssignmentCalls, a)
	if m.SendMatchAssignmentFunc != nil {
		return m.SendMatchAssignmentFunc(a)
	}
	return nil
}

func (m *Mock) SendMatchResult(r ResultAnnouncement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMatchResultCalls = append(m.SendMatchResultCalls, r)
	if m.SendMatchResultFunc != nil {
		return m.SendMatchResultFunc(r)
	}
	return nil
}

func (m *Mock) SendRoundStarted(r RoundAnnouncement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRoundStartedCalls = append(m.SendRoundStartedCalls, r)
	if m.SendRoundStartedFunc != nil {
		return m.SendRoundStartedFunc(r)
	}
	return nil
}

func (m *Mock) SendChampion(champion bracket.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendChampionCalls = append(m.SendChampionCalls, champion)
	if m.SendChampionFunc != nil {
		return m.SendChampionFunc(champion)
	}
	return nil
}

// Calls returns the number of recorded calls per method.
func (m *Mock) Calls() (assignments, results, rounds, champions int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SendMatchAssignmentCalls), len(m.SendMatchResultCalls), len(m.SendRoundStartedCalls), len(m.SendChampionCalls)
}
