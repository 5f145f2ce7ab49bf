package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/bracket-machines/internal/bracket"
	"github.com/mauv0809/bracket-machines/internal/machines"
	"github.com/mauv0809/bracket-machines/internal/processor"
	"github.com/mauv0809/bracket-machines/internal/store"
	"github.com/mauv0809/bracket-machines/internal/tournament"
)

var errBadRequest = errors.New("bad request")

var notFoundErrors = []error{
	bracket.ErrMatchNotFound,
	machines.ErrMachineNotFound,
	store.ErrSnapshotNotFound,
}

var badRequestErrors = []error{
	errBadRequest,
	processor.ErrInvalidGameIndex,
	machines.ErrInvalidMachineCount,
	machines.ErrInvalidQuality,
	bracket.ErrInsufficientPlayers,
	bracket.ErrDuplicatePlayer,
	tournament.ErrInvalidSnapshot,
}

var conflictErrors = []error{
	processor.ErrMatchLocked,
	processor.ErrMatchNotDecided,
	processor.ErrMatchNotReady,
	bracket.ErrMatchAlreadyCompleted,
	bracket.ErrRoundNotComplete,
	tournament.ErrTournamentStarted,
	tournament.ErrTournamentNotStarted,
	tournament.ErrMachineEmpty,
	machines.ErrMachineOccupied,
	machines.ErrMachineOutOfOrder,
}

// statusFor maps a domain error to its HTTP status code.
func statusFor(err error) int {
	matches := func(targets []error) bool {
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
	switch {
	case matches(notFoundErrors):
		return http.StatusNotFound
	case matches(badRequestErrors):
		return http.StatusBadRequest
	case matches(conflictErrors):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func pathInt(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", errBadRequest, name, raw)
	}
	return n, nil
}

func matchResponses(matches []bracket.Match) []MatchResponse {
	out := make([]MatchResponse, len(matches))
	for i, m := range matches {
		out[i] = MatchResponse{Match: m, State: processor.StateOf(m)}
	}
	return out
}
