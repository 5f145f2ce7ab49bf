package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/bracket-machines/internal/tournament"
	"github.com/vmihailenco/msgpack/v5"
)

// New creates a new SnapshotStore.
func New(db *sql.DB) SnapshotStore {
	return &store{
		db: db,
	}
}

// SaveSnapshot upserts the msgpack-encoded snapshot under its tournament id.
func (s *store) SaveSnapshot(snap tournament.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", snap.ID, err)
	}
	updatedAt := snap.SavedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	var champion sql.NullString
	if snap.ChampionID != "" {
		champion = sql.NullString{String: snap.ChampionID, Valid: true}
	}

	_, err = s.db.Exec(`
		INSERT INTO tournament_snapshots (id, current_round, finished, champion_id, snapshot, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_round = excluded.current_round,
			finished = excluded.finished,
			champion_id = excluded.champion_id,
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at;
	`, snap.ID, snap.CurrentRound, snap.Finished, champion, blob, updatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", snap.ID, err)
	}
	log.Debug("Saved snapshot", "tournamentID", snap.ID, "version", snap.Version, "bytes", len(blob))
	return nil
}

// LoadSnapshot returns the latest snapshot of a tournament.
func (s *store) LoadSnapshot(id string) (tournament.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var blob []byte
	err := s.db.QueryRow("SELECT snapshot FROM tournament_snapshots WHERE id = ?", id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return tournament.Snapshot{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	if err != nil {
		return tournament.Snapshot{}, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}

	var snap tournament.Snapshot
	if err := msgpack.Unmarshal(blob, &snap); err != nil {
		return tournament.Snapshot{}, fmt.Errorf("failed to decode snapshot %s: %w", id, err)
	}
	return snap, nil
}

// ListSnapshots returns every stored tournament, most recently updated first.
func (s *store) ListSnapshots() ([]SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, current_round, finished, champion_id, updated_at
		FROM tournament_snapshots
		ORDER BY updated_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	infos := []SnapshotInfo{}
	for rows.Next() {
		var (
			info      SnapshotInfo
			champion  sql.NullString
			updatedAt int64
		)
		if err := rows.Scan(&info.ID, &info.CurrentRound, &info.Finished, &champion, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		info.ChampionID = champion.String
		info.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// DeleteSnapshot removes a tournament's snapshot.
func (s *store) DeleteSnapshot(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM tournament_snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, id)
	}
	log.Info("Deleted snapshot", "tournamentID", id)
	return nil
}
