// Package master owns the longitudinal master tables and the append-only
// upsert protocol that makes re-ingestion safe. The merge is a pure
// function over immutable snapshots; persistence lives in internal/storage.
package master

import (
	"sort"

	"sbtalks/internal/core"
)

// Snapshot is the full current contents of people_master and
// attendance_master. It is the only input the KPI engine and the geo
// aggregator ever read.
type Snapshot struct {
	People     map[core.PersonID]core.Person
	Attendance map[string]core.Attendance
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() Snapshot {
	return Snapshot{
		People:     make(map[core.PersonID]core.Person),
		Attendance: make(map[string]core.Attendance),
	}
}

// Clone returns a deep copy; Merge uses it so callers' snapshots are never
// mutated.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		People:     make(map[core.PersonID]core.Person, len(s.People)),
		Attendance: make(map[string]core.Attendance, len(s.Attendance)),
	}
	for k, v := range s.People {
		out.People[k] = v
	}
	for k, v := range s.Attendance {
		out.Attendance[k] = v
	}
	return out
}

// PeopleSorted returns people ordered by id for deterministic persistence
// and reports.
func (s Snapshot) PeopleSorted() []core.Person {
	out := make([]core.Person, 0, len(s.People))
	for _, p := range s.People {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AttendanceSorted returns attendance facts ordered by key.
func (s Snapshot) AttendanceSorted() []core.Attendance {
	out := make([]core.Attendance, 0, len(s.Attendance))
	for _, a := range s.Attendance {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// WebinarDates returns each webinar's date, keyed by webinar id.
func (s Snapshot) WebinarDates() map[string]core.Date {
	out := make(map[string]core.Date)
	for _, a := range s.Attendance {
		if cur, ok := out[a.WebinarID]; !ok || a.WebinarDate.Before(cur.Time) {
			out[a.WebinarID] = a.WebinarDate
		}
	}
	return out
}
