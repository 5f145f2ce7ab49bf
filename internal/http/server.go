package http

import (
	"net/http"

	"github.com/mauv0809/bracket-machines/internal/metrics"
	"github.com/mauv0809/bracket-machines/internal/pubsub"
	"github.com/mauv0809/bracket-machines/internal/store"
	"github.com/mauv0809/bracket-machines/internal/tournament"
)

func NewServer(t *tournament.Tournament, snapshots store.SnapshotStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, counters metrics.MetricsStore, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Tournament:     t,
		Snapshots:      snapshots,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Counters:       counters,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("GET /stats", Chain(s.StatsHandler(), paramsMiddleware))
	s.Router.Handle("GET /state", Chain(s.StateHandler(), paramsMiddleware))
	s.Router.Handle("GET /players", Chain(s.ListPlayersHandler(), paramsMiddleware))

	s.Router.Handle("POST /tournament/start", Chain(s.StartHandler(), paramsMiddleware))
	s.Router.Handle("POST /tournament/reset", Chain(s.ResetHandler(), paramsMiddleware))
	s.Router.Handle("GET /snapshots", Chain(s.ListSnapshotsHandler(), paramsMiddleware))
	s.Router.Handle("POST /snapshots/{id}/restore", Chain(s.RestoreHandler(), paramsMiddleware))

	s.Router.Handle("GET /matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("GET /matches/eligible", Chain(s.EligibleMatchesHandler(), paramsMiddleware))
	s.Router.Handle("GET /matches/{id}", Chain(s.GetMatchHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches/{id}/games/{game}", Chain(s.SetGameScoreHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches/{id}/confirm", Chain(s.ConfirmMatchHandler(), paramsMiddleware))
	s.Router.Handle("POST /matches/{id}/quick-assign", Chain(s.QuickAssignHandler(), paramsMiddleware))
	s.Router.Handle("POST /rounds/advance", Chain(s.AdvanceRoundHandler(), paramsMiddleware))

	s.Router.Handle("GET /machines", Chain(s.ListMachinesHandler(), paramsMiddleware))
	s.Router.Handle("GET /machines/{id}/match", Chain(s.MachineMatchHandler(), paramsMiddleware))
	s.Router.Handle("GET /machines/{id}/can-confirm", Chain(s.CanConfirmHandler(), paramsMiddleware))
	s.Router.Handle("POST /machines/{id}/assign", Chain(s.AssignMatchHandler(), paramsMiddleware))
	s.Router.Handle("POST /machines/{id}/confirm", Chain(s.ConfirmMachineHandler(), paramsMiddleware))
	s.Router.Handle("POST /machines/{id}/favorite", Chain(s.ToggleFavoriteHandler(), paramsMiddleware))
	s.Router.Handle("POST /machines/{id}/out-of-order", Chain(s.ToggleOutOfOrderHandler(), paramsMiddleware))
	s.Router.Handle("PUT /machines/{id}/quality", Chain(s.SetQualityHandler(), paramsMiddleware))
	s.Router.Handle("PUT /machines/count", Chain(s.SetMachineCountHandler(), paramsMiddleware))

	s.Router.Handle("POST /events/pubsub", Chain(s.PubSubPushHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
