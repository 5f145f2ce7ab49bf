package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	scoresEntered      int
	matchesConfirmed   int
	matchesCommitted   int
	roundsAdvanced     int
	machineAssignments int
	commandsRejected   map[string]int
	pendingCommits     int
	machinesInUse      int
	commitDelays       []float64
	slackNotifSent     int
	slackNotifFailed   int
	startupTime        float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		commandsRejected: make(map[string]int),
		commitDelays:     make([]float64, 0),
	}
}

func (m *Mock) IncScoresEntered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoresEntered++
}

func (m *Mock) IncMatchesConfirmed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesConfirmed++
}

func (m *Mock) IncMatchesCommitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCommitted++
}

func (m *Mock) IncRoundsAdvanced() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roundsAdvanced++
}

func (m *Mock) IncMachineAssignments() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.machineAssignments++
}

func (m *Mock) IncCommandsRejected(command string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commandsRejected[command]++
}

func (m *Mock) SetPendingCommits(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pendingCommits = n
}

func (m *Mock) SetMachinesInUse(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.machinesInUse = n
}

func (m *Mock) ObserveCommitDelay(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitDelays = append(m.commitDelays, seconds)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// ScoresEntered returns the number of times IncScoresEntered was called.
func (m *Mock) ScoresEntered() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scoresEntered
}

// MatchesConfirmed returns the number of times IncMatchesConfirmed was called.
func (m *Mock) MatchesConfirmed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesConfirmed
}

// MatchesCommitted returns the number of times IncMatchesCommitted was called.
func (m *Mock) MatchesCommitted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCommitted
}

// RoundsAdvanced returns the number of times IncRoundsAdvanced was called.
func (m *Mock) RoundsAdvanced() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roundsAdvanced
}

// MachineAssignments returns the number of times IncMachineAssignments was called.
func (m *Mock) MachineAssignments() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machineAssignments
}

// CommandsRejected returns how often the given command was rejected.
func (m *Mock) CommandsRejected(command string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commandsRejected[command]
}

// PendingCommits returns the last value passed to SetPendingCommits.
func (m *Mock) PendingCommits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pendingCommits
}

// MachinesInUse returns the last value passed to SetMachinesInUse.
func (m *Mock) MachinesInUse() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.machinesInUse
}

// CommitDelays returns every observed commit delay.
func (m *Mock) CommitDelays() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float64, len(m.commitDelays))
	copy(out, m.commitDelays)
	return out
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
