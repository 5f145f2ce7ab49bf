package tournament

// Store persists tournament snapshots.
type Store interface {
	SaveSnapshot(snap Snapshot) error
}

type nopStore struct{}

func (nopStore) SaveSnapshot(Snapshot) error { return nil }
