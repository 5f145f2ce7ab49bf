package store

import "github.com/mauv0809/bracket-machines/internal/tournament"

// SnapshotStore persists tournament snapshots.
type SnapshotStore interface {
	SaveSnapshot(snap tournament.Snapshot) error
	LoadSnapshot(id string) (tournament.Snapshot, error)
	ListSnapshots() ([]SnapshotInfo, error)
	DeleteSnapshot(id string) error
}

var _ SnapshotStore = (*store)(nil)
var _ tournament.Store = (*store)(nil)
