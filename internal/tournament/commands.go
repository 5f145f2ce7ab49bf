package tournament

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/bracket-machines/internal/bracket"
	"github.com/mauv0809/bracket-machines/internal/machines"
	"github.com/mauv0809/bracket-machines/internal/processor"
)

// SetGameScore records the outcome of one game of a match.
func (t *Tournament) SetGameScore(matchID string, game int, player1Won bool) error {
	return t.mutate("set_game_score", func(out *outbox) error {
		if err := t.requireStartedLocked(); err != nil {
			return err
		}
		m, err := t.matchLocked(matchID)
		if err != nil {
			return err
		}
		if err := processor.SetGame(m, game, player1Won); err != nil {
			return fmt.Errorf("match %s: %w", matchID, err)
		}
		out.add(t.metrics.IncScoresEntered)
		log.Info("Score entered", "matchID", matchID, "game", game, "player1Won", player1Won, "state", processor.StateOf(*m))
		return nil
	})
}

// ConfirmMatch starts the grace window of a fully decided match. Confirming a
// match that is already counting down does nothing.
func (t *Tournament) ConfirmMatch(matchID string) error {
	return t.mutate("confirm_match", func(out *outbox) error {
		if err := t.requireStartedLocked(); err != nil {
			return err
		}
		return t.confirmLocked(out, matchID)
	})
}

// ConfirmMachine confirms the match currently hosted by the machine.
func (t *Tournament) ConfirmMachine(machineID int) error {
	return t.mutate("confirm_machine", func(out *outbox) error {
		if _, ok := t.pool.Machine(machineID); !ok {
			return fmt.Errorf("%w: %d", machines.ErrMachineNotFound, machineID)
		}
		match, ok := t.pool.MatchOn(t.matches, machineID)
		if !ok {
			return fmt.Errorf("%w: %d", ErrMachineEmpty, machineID)
		}
		return t.confirmLocked(out, match.ID)
	})
}

func (t *Tournament) confirmLocked(out *outbox, matchID string) error {
	m, err := t.matchLocked(matchID)
	if err != nil {
		return err
	}
	pending, err := processor.Confirmable(*m)
	if err != nil {
		return fmt.Errorf("match %s: %w", matchID, err)
	}
	if pending {
		log.Debug("Match already counting down", "matchID", matchID)
		return errNoChange
	}
	m.CountdownStarted = true
	t.scheduleLocked(matchID)
	out.add(t.metrics.IncMatchesConfirmed)
	log.Info("Match confirmed", "matchID", matchID, "commitIn", t.processor.Delay())
	return nil
}

func (t *Tournament) scheduleLocked(matchID string) {
	gen := t.generation
	t.processor.Schedule(matchID, func(id string) { t.commit(gen, id) })
}

// AdvanceRound generates the next round. It returns bracket.ErrEndOfTournament
// once no further match can be formed.
func (t *Tournament) AdvanceRound() ([]bracket.Match, error) {
	var created []bracket.Match
	err := t.mutate("advance_round", func(out *outbox) error {
		if err := t.requireStartedLocked(); err != nil {
			return err
		}
		next, err := t.advanceLocked(out)
		if err != nil {
			return err
		}
		created = cloneMatches(next)
		return nil
	})
	return created, err
}

func (t *Tournament) advanceLocked(out *outbox) ([]bracket.Match, error) {
	if t.finished {
		return nil, bracket.ErrEndOfTournament
	}
	players, next, err := bracket.NextRound(t.players, t.matches, t.currentRound)
	if errors.Is(err, bracket.ErrEndOfTournament) {
		if id, ok := t.soleSurvivorLocked(); ok {
			t.finishLocked(out, id)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	t.players = players
	t.matches = append(t.matches, next...)
	t.currentRound++
	t.roundStarted = true
	out.add(t.metrics.IncRoundsAdvanced)
	log.Info("Round advanced", "tournamentID", t.id, "round", t.currentRound, "matches", len(next))
	t.queueRoundStarted(out, t.currentRound, next)
	return next, nil
}

func (t *Tournament) soleSurvivorLocked() (string, bool) {
	id := soleSurvivor(t.players)
	return id, id != ""
}

func (t *Tournament) finishLocked(out *outbox, championID string) {
	t.finished = true
	t.championID = championID
	log.Info("Tournament finished", "tournamentID", t.id, "champion", championID)
	t.queueChampion(out, t.playerLocked(championID))
}

// AssignMatch places a match on a machine, or clears the machine when matchID is nil.
func (t *Tournament) AssignMatch(machineID int, matchID *string) error {
	return t.mutate("assign_match", func(out *outbox) error {
		return t.assignLocked(out, machineID, matchID)
	})
}

func (t *Tournament) assignLocked(out *outbox, machineID int, matchID *string) error {
	machine, ok := t.pool.Machine(machineID)
	if !ok {
		return fmt.Errorf("%w: %d", machines.ErrMachineNotFound, machineID)
	}
	if matchID != nil && machine.CurrentMatchID != nil && *machine.CurrentMatchID == *matchID {
		return errNoChange
	}
	if matchID == nil && machine.CurrentMatchID == nil {
		return errNoChange
	}
	if err := t.pool.Assign(t.matches, machineID, matchID); err != nil {
		return err
	}

	if matchID == nil {
		log.Info("Machine cleared", "machine", machineID, "matchID", *machine.CurrentMatchID)
		t.queueMachineCleared(out, machineID)
		return nil
	}
	out.add(t.metrics.IncMachineAssignments)
	log.Info("Match assigned", "machine", machineID, "matchID", *matchID)
	m, _ := t.matchLocked(*matchID)
	t.queueAssignment(out, *m, machineID)
	return nil
}

// QuickAssign puts the match on the preferred available machine. ok is false
// with a nil error when no machine is available.
func (t *Tournament) QuickAssign(matchID string) (machineID int, ok bool, err error) {
	err = t.mutate("quick_assign", func(out *outbox) error {
		m, err := t.matchLocked(matchID)
		if err != nil {
			return err
		}
		if m.Completed {
			return fmt.Errorf("match %s: %w", matchID, bracket.ErrMatchAlreadyCompleted)
		}
		if m.MachineNumber != nil {
			machineID, ok = *m.MachineNumber, true
			return errNoChange
		}
		id, available := t.pool.Preferred()
		if !available {
			log.Info("No machine available for quick assign", "matchID", matchID)
			return errNoChange
		}
		if err := t.assignLocked(out, id, &matchID); err != nil {
			return err
		}
		machineID, ok = id, true
		return nil
	})
	return machineID, ok, err
}

// ToggleFavorite flips the machine's favourite flag.
func (t *Tournament) ToggleFavorite(machineID int) (machines.Machine, error) {
	var machine machines.Machine
	err := t.mutate("toggle_favorite", func(out *outbox) error {
		m, err := t.pool.ToggleFavorite(machineID)
		if err != nil {
			return err
		}
		machine = m
		log.Info("Machine favourite toggled", "machine", machineID, "favorite", m.IsFavorite)
		return nil
	})
	return machine, err
}

// ToggleOutOfOrder flips the machine's out-of-order flag, unassigning its match
// when the machine goes out of order.
func (t *Tournament) ToggleOutOfOrder(machineID int) (machines.Machine, error) {
	var machine machines.Machine
	err := t.mutate("toggle_out_of_order", func(out *outbox) error {
		before, ok := t.pool.Machine(machineID)
		if !ok {
			return fmt.Errorf("%w: %d", machines.ErrMachineNotFound, machineID)
		}
		m, err := t.pool.ToggleOutOfOrder(t.matches, machineID)
		if err != nil {
			return err
		}
		machine = m
		log.Info("Machine out-of-order toggled", "machine", machineID, "outOfOrder", m.IsOutOfOrder)
		if before.CurrentMatchID != nil && m.CurrentMatchID == nil {
			log.Info("Match unassigned from out-of-order machine", "machine", machineID, "matchID", *before.CurrentMatchID)
			t.queueMachineCleared(out, machineID)
		}
		return nil
	})
	return machine, err
}

// SetMachineQuality sets the display-only quality rating of a machine.
func (t *Tournament) SetMachineQuality(machineID, quality int) (machines.Machine, error) {
	var machine machines.Machine
	err := t.mutate("set_machine_quality", func(out *outbox) error {
		m, err := t.pool.SetQuality(machineID, quality)
		if err != nil {
			return err
		}
		machine = m
		return nil
	})
	return machine, err
}

// SetMachineCount resizes the machine pool.
func (t *Tournament) SetMachineCount(n int) error {
	return t.mutate("set_machine_count", func(out *outbox) error {
		before := t.pool.Len()
		if err := t.pool.Resize(n, t.matches); err != nil {
			return err
		}
		log.Info("Machine pool resized", "from", before, "to", n)
		return nil
	})
}
