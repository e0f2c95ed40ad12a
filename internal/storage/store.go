// Package storage persists the master tables. Every backend follows the
// same discipline: read the full state at run start, accept one full
// snapshot at run end, and never leave a partially-written state behind.
package storage

import (
	"context"

	"sbtalks/internal/master"
)

// Store loads and saves the master snapshot.
type Store interface {
	// Load returns the current snapshot; a store that has never been
	// written returns an empty one.
	Load(ctx context.Context) (master.Snapshot, error)

	// Save commits the snapshot atomically. On error the previously
	// persisted state is untouched.
	Save(ctx context.Context, snap master.Snapshot) error

	Close() error
}

// Column layouts shared by the tabular backends.
var (
	peopleHeader     = []string{"person_id", "email", "name", "client_flag", "zip", "assigned_center"}
	attendanceHeader = []string{"attendance_key", "person_id", "webinar_id", "webinar_date", "attended", "source_fingerprint"}
)
