package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the tournament from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncScoresEntered()
	IncMatchesConfirmed()
	IncMatchesCommitted()
	IncRoundsAdvanced()
	IncMachineAssignments()
	IncCommandsRejected(command string)
	SetPendingCommits(n int)
	SetMachinesInUse(n int)
	ObserveCommitDelay(seconds float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}

// MetricsStore keeps lifetime counters that survive restarts.
type MetricsStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
