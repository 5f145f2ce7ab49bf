package store

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

// ErrSnapshotNotFound is returned when no snapshot exists for an id.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// store handles snapshot persistence in the tournament_snapshots table.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// SnapshotInfo summarises a stored snapshot without decoding it.
type SnapshotInfo struct {
	ID           string    `json:"id"`
	CurrentRound int       `json:"current_round"`
	Finished     bool      `json:"finished"`
	ChampionID   string    `json:"champion_id,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}
