package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/bracket-machines/internal/bracket"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// StatsHandler serves the lifetime counters that survive restarts.
func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Counters == nil {
			writeJSON(w, http.StatusOK, map[string]int{})
			return
		}
		stats, err := s.Counters.GetAll()
		if err != nil {
			log.Error("Failed to get counters", "error", err)
			http.Error(w, "Failed to get stats", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) StateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StateResponse{
			TournamentID:   s.Tournament.ID(),
			CurrentRound:   s.Tournament.CurrentRound(),
			Started:        s.Tournament.Started(),
			Finished:       s.Tournament.Finished(),
			PendingCommits: s.Tournament.PendingCommits(),
			Players:        s.Tournament.Players(),
			Matches:        s.Tournament.Matches(),
			Machines:       s.Tournament.Machines(),
		}
		if champion, ok := s.Tournament.Champion(); ok {
			resp.Champion = &champion
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Tournament.Players())
	}
}

func (s *Server) StartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		matches, err := s.Tournament.Start(req.Players)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, RoundResponse{Round: 1, Matches: matches})
	}
}

func (s *Server) ResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Tournament.Reset(); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ListSnapshotsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		infos, err := s.Snapshots.ListSnapshots()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, infos)
	}
}

// RestoreHandler loads a stored snapshot into the running tournament.
func (s *Server) RestoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := s.Snapshots.LoadSnapshot(r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		repairs, err := s.Tournament.Restore(snap)
		if err != nil {
			writeError(w, err)
			return
		}
		if repairs == nil {
			repairs = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"restored": snap.ID, "repairs": repairs})
	}
}

// ListMatchesHandler serves every match, optionally filtered by ?round= and ?bracket=.
func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches := s.Tournament.Matches()
		if raw := r.URL.Query().Get("round"); raw != "" {
			round, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, fmt.Errorf("%w: round must be a number, got %q", errBadRequest, raw))
				return
			}
			matches = keep(matches, func(m bracket.Match) bool { return m.Round == round })
		}
		if raw := r.URL.Query().Get("bracket"); raw != "" {
			side := bracket.Side(raw)
			if !side.Valid() || side == bracket.NoSide {
				writeError(w, fmt.Errorf("%w: unknown bracket %q", errBadRequest, raw))
				return
			}
			matches = keep(matches, func(m bracket.Match) bool { return m.Bracket == side })
		}
		writeJSON(w, http.StatusOK, matchResponses(matches))
	}
}

func keep(matches []bracket.Match, f func(bracket.Match) bool) []bracket.Match {
	out := []bracket.Match{}
	for _, m := range matches {
		if f(m) {
			out = append(out, m)
		}
	}
	return out
}

func (s *Server) EligibleMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, matchResponses(s.Tournament.EligibleForAssignment()))
	}
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		m, ok := s.Tournament.Match(id)
		if !ok {
			writeError(w, fmt.Errorf("%w: %s", bracket.ErrMatchNotFound, id))
			return
		}
		writeJSON(w, http.StatusOK, matchResponses([]bracket.Match{m})[0])
	}
}

func (s *Server) SetGameScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		game, err := pathInt(r, "game")
		if err != nil {
			writeError(w, err)
			return
		}
		var req gameRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.Player1Won == nil {
			writeError(w, fmt.Errorf("%w: player1_won is required", errBadRequest))
			return
		}
		if err := s.Tournament.SetGameScore(id, game, *req.Player1Won); err != nil {
			writeError(w, err)
			return
		}
		s.writeMatch(w, id)
	}
}

func (s *Server) ConfirmMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := s.Tournament.ConfirmMatch(id); err != nil {
			writeError(w, err)
			return
		}
		s.writeMatch(w, id)
	}
}

func (s *Server) writeMatch(w http.ResponseWriter, id string) {
	m, ok := s.Tournament.Match(id)
	if !ok {
		writeError(w, fmt.Errorf("%w: %s", bracket.ErrMatchNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, matchResponses([]bracket.Match{m})[0])
}

func (s *Server) QuickAssignHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		machine, ok, err := s.Tournament.QuickAssign(r.PathValue("id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, quickAssignResponse{Assigned: ok, Machine: machine})
	}
}

// AdvanceRoundHandler reports the end of the tournament as a successful response.
func (s *Server) AdvanceRoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Tournament.AdvanceRound()
		if errors.Is(err, bracket.ErrEndOfTournament) {
			writeJSON(w, http.StatusOK, RoundResponse{Round: s.Tournament.CurrentRound(), EndOfTournament: true})
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, RoundResponse{Round: s.Tournament.CurrentRound(), Matches: matches})
	}
}

func (s *Server) ListMachinesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Tournament.Machines())
	}
}

func (s *Server) MachineMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathInt(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		m, ok := s.Tournament.MatchOnMachine(id)
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, matchResponses([]bracket.Match{m})[0])
	}
}

func (s *Server) CanConfirmHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathInt(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, canConfirmResponse{CanConfirm: s.Tournament.CanConfirm(id)})
	}
}

// AssignMatchHandler assigns the body's match_id to the machine; a null
// match_id clears it.
func (s *Server) AssignMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathInt(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		var req assignRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.Tournament.AssignMatch(id, req.MatchID); err != nil {
			writeError(w, err)
			return
		}
		s.writeMachine(w, id)
	}
}

func (s *Server) ConfirmMachineHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathInt(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		if err := s.Tournament.ConfirmMachine(id); err != nil {
			writeError(w, err)
			return
		}
		m, _ := s.Tournament.MatchOnMachine(id)
		writeJSON(w, http.StatusOK, matchResponses([]bracket.Match{m})[0])
	}
}

func (s *Server) ToggleFavoriteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathInt(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		machine, err := s.Tournament.ToggleFavorite(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, machine)
	}
}

func (s *Server) ToggleOutOfOrderHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathInt(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		machine, err := s.Tournament.ToggleOutOfOrder(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, machine)
	}
}

func (s *Server) SetQualityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathInt(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		var req qualityRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		machine, err := s.Tournament.SetMachineQuality(id, req.Quality)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, machine)
	}
}

func (s *Server) SetMachineCountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req countRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.Tournament.SetMachineCount(req.Count); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.Tournament.Machines())
	}
}

func (s *Server) writeMachine(w http.ResponseWriter, id int) {
	for _, m := range s.Tournament.Machines() {
		if m.ID == id {
			writeJSON(w, http.StatusOK, m)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
