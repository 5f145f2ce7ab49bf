package metrics

var _ Metrics = Nop{}

// Nop discards every measurement.
type Nop struct{}

func (Nop) IncScoresEntered()          {}
func (Nop) IncMatchesConfirmed()       {}
func (Nop) IncMatchesCommitted()       {}
func (Nop) IncRoundsAdvanced()         {}
func (Nop) IncMachineAssignments()     {}
func (Nop) IncCommandsRejected(string) {}
func (Nop) SetPendingCommits(int)      {}
func (Nop) SetMachinesInUse(int)       {}
func (Nop) ObserveCommitDelay(float64) {}
func (Nop) IncSlackNotifSent()         {}
func (Nop) IncSlackNotifFailed()       {}
func (Nop) SetStartupTime(float64)     {}
