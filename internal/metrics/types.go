package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	ScoresEntered      prometheus.Counter
	MatchesConfirmed   prometheus.Counter
	MatchesCommitted   prometheus.Counter
	RoundsAdvanced     prometheus.Counter
	MachineAssignments prometheus.Counter
	CommandsRejected   *prometheus.CounterVec
	PendingCommits     prometheus.Gauge
	MachinesInUse      prometheus.Gauge
	CommitDelay        prometheus.Histogram
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge

	counters MetricsStore
}

// Counter keys persisted through the MetricsStore.
const (
	KeyMatchesCommitted = "matches_committed"
	KeyRoundsAdvanced   = "rounds_advanced"
	KeySlackNotifSent   = "slack_notifications_sent"
)
