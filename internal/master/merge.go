package master

import "sbtalks/internal/core"

// Upsert is one resolved attendance record: the person it belongs to and
// the per-event fact. It is the single mutation unit of the store.
type Upsert struct {
	Person     core.Person
	Attendance core.Attendance
}

// Delta reports what a merge changed, for the run summary.
type Delta struct {
	PeopleBefore   int
	PeopleAfter    int
	PeopleNew      int
	PeopleEnriched int

	AttendanceBefore  int
	AttendanceAfter   int
	AttendanceAdded   int
	AttendanceSkipped int // duplicate keys, re-ingestion no-ops
}

// Merge applies the upsert protocol to an immutable snapshot and returns a
// new snapshot plus the delta. Rules:
//
//   - a person row is inserted at most once; afterwards only Client may
//     flip false->true and AssignedCenter may be filled when empty
//   - an attendance key already present is a no-op, whatever the new fact
//     says; Attended is immutable after first write
//
// Neither input is mutated.
func Merge(old Snapshot, updates []Upsert) (Snapshot, Delta) {
	next := old.Clone()
	delta := Delta{
		PeopleBefore:     len(old.People),
		AttendanceBefore: len(old.Attendance),
	}

	for _, u := range updates {
		mergePerson(&next, u.Person, &delta)
		mergeAttendance(&next, u.Attendance, &delta)
	}

	delta.PeopleAfter = len(next.People)
	delta.AttendanceAfter = len(next.Attendance)
	return next, delta
}

func mergePerson(s *Snapshot, p core.Person, delta *Delta) {
	cur, exists := s.People[p.ID]
	if !exists {
		s.People[p.ID] = p
		delta.PeopleNew++
		return
	}

	enriched := false
	if p.Client && !cur.Client {
		cur.Client = true
		enriched = true
	}
	if cur.AssignedCenter == "" && p.AssignedCenter != "" && !cur.Client {
		cur.AssignedCenter = p.AssignedCenter
		enriched = true
	}
	if enriched {
		s.People[p.ID] = cur
		delta.PeopleEnriched++
	}
}

func mergeAttendance(s *Snapshot, a core.Attendance, delta *Delta) {
	if _, exists := s.Attendance[a.Key]; exists {
		delta.AttendanceSkipped++
		return
	}
	s.Attendance[a.Key] = a
	delta.AttendanceAdded++
}
