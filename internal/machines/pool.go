package machines

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/bracket-machines/internal/bracket"
)

// NewPool creates n machines with default settings.
func NewPool(n int) (*Pool, error) {
	if n < MinMachines || n > MaxMachines {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMachineCount, n)
	}
	p := &Pool{}
	p.grow(n)
	return p, nil
}

// FromMachines rebuilds a pool from saved machine state. Ids are renumbered 1..n.
func FromMachines(saved []Machine) (*Pool, error) {
	if len(saved) < MinMachines || len(saved) > MaxMachines {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMachineCount, len(saved))
	}
	p := &Pool{machines: make([]Machine, len(saved))}
	for i, m := range saved {
		m.ID = i + 1
		if m.Quality < MinQuality || m.Quality > MaxQuality {
			m.Quality = DefaultQuality
		}
		if m.CurrentMatchID != nil {
			id := *m.CurrentMatchID
			m.CurrentMatchID = &id
		}
		p.machines[i] = m
	}
	return p, nil
}

func (p *Pool) grow(n int) {
	for id := len(p.machines) + 1; id <= n; id++ {
		p.machines = append(p.machines, Machine{ID: id, Quality: DefaultQuality})
	}
}

// Len returns the number of machines.
func (p *Pool) Len() int {
	return len(p.machines)
}

// Machines returns a copy of every machine.
func (p *Pool) Machines() []Machine {
	out := make([]Machine, len(p.machines))
	for i, m := range p.machines {
		if m.CurrentMatchID != nil {
			id := *m.CurrentMatchID
			m.CurrentMatchID = &id
		}
		out[i] = m
	}
	return out
}

// Machine returns a copy of the machine with the given id.
func (p *Pool) Machine(id int) (Machine, bool) {
	m, err := p.get(id)
	if err != nil {
		return Machine{}, false
	}
	return *m, true
}

// InUse returns the number of machines hosting a match.
func (p *Pool) InUse() int {
	n := 0
	for _, m := range p.machines {
		if m.CurrentMatchID != nil {
			n++
		}
	}
	return n
}

func (p *Pool) get(id int) (*Machine, error) {
	if id < 1 || id > len(p.machines) {
		return nil, fmt.Errorf("%w: %d", ErrMachineNotFound, id)
	}
	return &p.machines[id-1], nil
}

// Resize grows or shrinks the pool to n machines. Shrinking removes the
// highest-numbered machines and unassigns any match they hosted.
func (p *Pool) Resize(n int, matches []bracket.Match) error {
	if n < MinMachines || n > MaxMachines {
		return fmt.Errorf("%w: %d", ErrInvalidMachineCount, n)
	}
	if n >= len(p.machines) {
		p.grow(n)
		return nil
	}
	for i := range matches {
		if mn := matches[i].MachineNumber; mn != nil && *mn > n {
			log.Info("Unassigning match from removed machine", "matchID", matches[i].ID, "machine", *mn)
			matches[i].MachineNumber = nil
		}
	}
	p.machines = p.machines[:n]
	return nil
}

// Assign places matchID on the machine, keeping both sides of the link in step.
// A nil matchID clears the machine. Moving a match that sits on another
// machine frees the old machine.
func (p *Pool) Assign(matches []bracket.Match, machineID int, matchID *string) error {
	m, err := p.get(machineID)
	if err != nil {
		return err
	}
	if matchID == nil {
		p.unlink(matches, m)
		return nil
	}

	if m.IsOutOfOrder {
		return fmt.Errorf("%w: %d", ErrMachineOutOfOrder, machineID)
	}
	if m.CurrentMatchID != nil {
		if *m.CurrentMatchID == *matchID {
			return nil
		}
		return fmt.Errorf("%w: %d", ErrMachineOccupied, machineID)
	}
	idx := indexOf(matches, *matchID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", bracket.ErrMatchNotFound, *matchID)
	}
	if matches[idx].Completed {
		return bracket.ErrMatchAlreadyCompleted
	}

	if prev := matches[idx].MachineNumber; prev != nil {
		if old, err := p.get(*prev); err == nil {
			p.unlink(matches, old)
		}
		matches[idx].MachineNumber = nil
	}

	id := *matchID
	m.CurrentMatchID = &id
	number := m.ID
	matches[idx].MachineNumber = &number
	return nil
}

// unlink clears both sides of the machine's link.
func (p *Pool) unlink(matches []bracket.Match, m *Machine) {
	if m.CurrentMatchID == nil {
		return
	}
	if idx := indexOf(matches, *m.CurrentMatchID); idx >= 0 {
		if mn := matches[idx].MachineNumber; mn != nil && *mn == m.ID {
			matches[idx].MachineNumber = nil
		}
	}
	m.CurrentMatchID = nil
}

// ReleaseMatch frees whichever machine hosts matchID. It returns the freed
// machine id, or 0 when the match was not on a machine.
func (p *Pool) ReleaseMatch(matches []bracket.Match, matchID string) int {
	for i := range p.machines {
		m := &p.machines[i]
		if m.CurrentMatchID != nil && *m.CurrentMatchID == matchID {
			p.unlink(matches, m)
			return m.ID
		}
	}
	return 0
}

// ToggleFavorite flips the favourite flag.
func (p *Pool) ToggleFavorite(machineID int) (Machine, error) {
	m, err := p.get(machineID)
	if err != nil {
		return Machine{}, err
	}
	m.IsFavorite = !m.IsFavorite
	return *m, nil
}

// ToggleOutOfOrder flips the out-of-order flag. Taking an occupied machine
// out of order unassigns its match without touching the scores.
func (p *Pool) ToggleOutOfOrder(matches []bracket.Match, machineID int) (Machine, error) {
	m, err := p.get(machineID)
	if err != nil {
		return Machine{}, err
	}
	m.IsOutOfOrder = !m.IsOutOfOrder
	if m.IsOutOfOrder {
		p.unlink(matches, m)
	}
	return *m, nil
}

// SetQuality sets the display-only quality rating.
func (p *Pool) SetQuality(machineID, quality int) (Machine, error) {
	m, err := p.get(machineID)
	if err != nil {
		return Machine{}, err
	}
	if quality < MinQuality || quality > MaxQuality {
		return Machine{}, fmt.Errorf("%w: %d", ErrInvalidQuality, quality)
	}
	m.Quality = quality
	return *m, nil
}

// Preferred picks the lowest-numbered available favourite, falling back to
// the lowest-numbered available machine.
func (p *Pool) Preferred() (int, bool) {
	fallback := 0
	for _, m := range p.machines {
		if !m.Available() {
			continue
		}
		if m.IsFavorite {
			return m.ID, true
		}
		if fallback == 0 {
			fallback = m.ID
		}
	}
	return fallback, fallback != 0
}

// MatchOn returns the match hosted by the machine.
func (p *Pool) MatchOn(matches []bracket.Match, machineID int) (bracket.Match, bool) {
	m, err := p.get(machineID)
	if err != nil || m.CurrentMatchID == nil {
		return bracket.Match{}, false
	}
	idx := indexOf(matches, *m.CurrentMatchID)
	if idx < 0 {
		return bracket.Match{}, false
	}
	return matches[idx], true
}

// CanConfirm reports whether the machine's match has every game decided and
// is not yet completed.
func (p *Pool) CanConfirm(matches []bracket.Match, machineID int) bool {
	match, ok := p.MatchOn(matches, machineID)
	return ok && !match.Completed && bracket.IsMatchComplete(match)
}

// Eligible lists matches of the round that are open and not on a machine.
func Eligible(matches []bracket.Match, round int) []bracket.Match {
	var out []bracket.Match
	for _, m := range matches {
		if m.Round == round && !m.Completed && m.MachineNumber == nil {
			out = append(out, m)
		}
	}
	return out
}

func indexOf(matches []bracket.Match, id string) int {
	for i := range matches {
		if matches[i].ID == id {
			return i
		}
	}
	return -1
}

// Reconcile drops every machine/match link that is not mirrored on both
// sides, or that points at a completed match or an out-of-order machine.
// It returns a description of each repair.
func (p *Pool) Reconcile(matches []bracket.Match) []string {
	var repairs []string
	for i := range p.machines {
		m := &p.machines[i]
		if m.CurrentMatchID == nil {
			continue
		}
		idx := indexOf(matches, *m.CurrentMatchID)
		switch {
		case idx < 0:
			repairs = append(repairs, fmt.Sprintf("machine %d referenced unknown match %s", m.ID, *m.CurrentMatchID))
		case m.IsOutOfOrder:
			repairs = append(repairs, fmt.Sprintf("machine %d is out of order but hosted match %s", m.ID, *m.CurrentMatchID))
		case matches[idx].Completed:
			repairs = append(repairs, fmt.Sprintf("machine %d hosted completed match %s", m.ID, *m.CurrentMatchID))
		case matches[idx].MachineNumber == nil || *matches[idx].MachineNumber != m.ID:
			repairs = append(repairs, fmt.Sprintf("machine %d link to match %s was one-sided", m.ID, *m.CurrentMatchID))
		default:
			continue
		}
		m.CurrentMatchID = nil
	}
	for i := range matches {
		mn := matches[i].MachineNumber
		if mn == nil {
			continue
		}
		if m, err := p.get(*mn); err == nil && m.CurrentMatchID != nil && *m.CurrentMatchID == matches[i].ID {
			continue
		}
		repairs = append(repairs, fmt.Sprintf("match %s link to machine %d was one-sided", matches[i].ID, *mn))
		matches[i].MachineNumber = nil
	}
	return repairs
}

// ClearAssignments empties every machine while keeping its settings.
func (p *Pool) ClearAssignments() {
	for i := range p.machines {
		p.machines[i].CurrentMatchID = nil
	}
}
