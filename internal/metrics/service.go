package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		ScoresEntered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bracket_scores_entered_total",
			Help: "The total number of game scores entered.",
		}),
		MatchesConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bracket_matches_confirmed_total",
			Help: "The total number of match results confirmed and put into the grace window.",
		}),
		MatchesCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bracket_matches_committed_total",
			Help: "The total number of matches committed after the grace window.",
		}),
		RoundsAdvanced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bracket_rounds_advanced_total",
			Help: "The total number of rounds generated after round one.",
		}),
		MachineAssignments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bracket_machine_assignments_total",
			Help: "The total number of matches assigned to a machine.",
		}),
		CommandsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bracket_commands_rejected_total",
			Help: "The total number of commands rejected, by command.",
		}, []string{"command"}),
		PendingCommits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bracket_pending_commits",
			Help: "The number of matches currently in their grace window.",
		}),
		MachinesInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bracket_machines_in_use",
			Help: "The number of machines currently hosting a match.",
		}),
		CommitDelay: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bracket_commit_delay_seconds",
			Help:    "Time between confirming a result and its commit.",
			Buckets: []float64{1, 2.5, 5, 10, 15, 30, 60},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bracket_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bracket_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bracket_startup_time_seconds",
			Help: "Time taken for the application to start up.",
		}),
	}

	reg.MustRegister(
		s.ScoresEntered,
		s.MatchesConfirmed,
		s.MatchesCommitted,
		s.RoundsAdvanced,
		s.MachineAssignments,
		s.CommandsRejected,
		s.PendingCommits,
		s.MachinesInUse,
		s.CommitDelay,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

// WithStore mirrors lifetime counters into a persistent store.
func (s *Service) WithStore(store MetricsStore) *Service {
	s.counters = store
	return s
}

func (s *Service) persist(key string) {
	if s.counters != nil {
		s.counters.Increment(key)
	}
}

func (s *Service) IncScoresEntered() {
	s.ScoresEntered.Inc()
}

func (s *Service) IncMatchesConfirmed() {
	s.MatchesConfirmed.Inc()
}

func (s *Service) IncMatchesCommitted() {
	s.MatchesCommitted.Inc()
	s.persist(KeyMatchesCommitted)
}

func (s *Service) IncRoundsAdvanced() {
	s.RoundsAdvanced.Inc()
	s.persist(KeyRoundsAdvanced)
}

func (s *Service) IncMachineAssignments() {
	s.MachineAssignments.Inc()
}

func (s *Service) IncCommandsRejected(command string) {
	s.CommandsRejected.WithLabelValues(command).Inc()
}

func (s *Service) SetPendingCommits(n int) {
	s.PendingCommits.Set(float64(n))
}

func (s *Service) SetMachinesInUse(n int) {
	s.MachinesInUse.Set(float64(n))
}

func (s *Service) ObserveCommitDelay(seconds float64) {
	s.CommitDelay.Observe(seconds)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
	s.persist(KeySlackNotifSent)
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
