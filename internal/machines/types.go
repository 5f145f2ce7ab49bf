package machines

// Machine is a physical station that hosts at most one match at a time.
type Machine struct {
	ID             int     `json:"id" msgpack:"id"`
	Quality        int     `json:"quality" msgpack:"quality"`
	IsFavorite     bool    `json:"is_favorite" msgpack:"is_favorite"`
	IsOutOfOrder   bool    `json:"is_out_of_order" msgpack:"is_out_of_order"`
	CurrentMatchID *string `json:"current_match_id,omitempty" msgpack:"current_match_id"`
}

// Available reports whether the machine can take a new match.
func (m Machine) Available() bool {
	return !m.IsOutOfOrder && m.CurrentMatchID == nil
}

const (
	MinMachines    = 1
	MaxMachines    = 10
	DefaultQuality = 3
	MinQuality     = 1
	MaxQuality     = 5
)

// Pool is the fixed-size set of machines. It is not safe for concurrent use;
// the tournament serialises access.
type Pool struct {
	machines []Machine
}
