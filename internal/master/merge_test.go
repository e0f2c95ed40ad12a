package master

import (
	"testing"

	"sbtalks/internal/core"
)

func upsertFor(email, webinarID string, date core.Date, attended, client bool) Upsert {
	id := core.EmailPersonID(email)
	return Upsert{
		Person: core.Person{
			ID:     id,
			Email:  email,
			Client: client,
			Zip:    "90210",
		},
		Attendance: core.Attendance{
			Key:         core.AttendanceKey(id, webinarID),
			PersonID:    id,
			WebinarID:   webinarID,
			WebinarDate: date,
			Attended:    attended,
		},
	}
}

func TestMergeInsertsAndDedupes(t *testing.T) {
	old := NewSnapshot()
	u := upsertFor("a@x.com", "W1", core.NewDate(2024, 1, 1), true, false)

	next, delta := Merge(old, []Upsert{u, u})

	if delta.AttendanceAdded != 1 || delta.AttendanceSkipped != 1 {
		t.Fatalf("expected 1 added 1 skipped, got %+v", delta)
	}
	if delta.PeopleNew != 1 {
		t.Fatalf("expected 1 new person, got %+v", delta)
	}
	if len(next.Attendance) != 1 || len(next.People) != 1 {
		t.Fatalf("unexpected snapshot sizes %d/%d", len(next.People), len(next.Attendance))
	}
}

func TestMergeIdempotentReRun(t *testing.T) {
	updates := []Upsert{
		upsertFor("a@x.com", "W1", core.NewDate(2024, 1, 1), true, false),
		upsertFor("b@x.com", "W1", core.NewDate(2024, 1, 1), false, true),
	}

	first, _ := Merge(NewSnapshot(), updates)
	second, delta := Merge(first, updates)

	if delta.AttendanceAdded != 0 || delta.PeopleNew != 0 || delta.PeopleEnriched != 0 {
		t.Fatalf("re-run must be a no-op, got %+v", delta)
	}
	if len(second.Attendance) != len(first.Attendance) {
		t.Fatal("re-run grew attendance_master")
	}
}

func TestMergeAttendedImmutable(t *testing.T) {
	u1 := upsertFor("a@x.com", "W1", core.NewDate(2024, 1, 1), true, false)
	u2 := upsertFor("a@x.com", "W1", core.NewDate(2024, 1, 1), false, false)

	snap, _ := Merge(NewSnapshot(), []Upsert{u1})
	snap, delta := Merge(snap, []Upsert{u2})

	if delta.AttendanceSkipped != 1 {
		t.Fatalf("expected duplicate skipped, got %+v", delta)
	}
	got := snap.Attendance[u1.Attendance.Key]
	if !got.Attended {
		t.Fatal("attended fact was rewritten by a later run")
	}
}

func TestMergeClientFlagMonotonic(t *testing.T) {
	nonClient := upsertFor("a@x.com", "W1", core.NewDate(2024, 1, 1), true, false)
	client := upsertFor("a@x.com", "W2", core.NewDate(2024, 2, 1), true, true)
	nonClientAgain := upsertFor("a@x.com", "W3", core.NewDate(2024, 3, 1), true, false)

	snap, _ := Merge(NewSnapshot(), []Upsert{nonClient})
	snap, delta := Merge(snap, []Upsert{client})
	if delta.PeopleEnriched != 1 {
		t.Fatalf("expected client flip counted as enrichment, got %+v", delta)
	}

	snap, _ = Merge(snap, []Upsert{nonClientAgain})
	p := snap.People[core.EmailPersonID("a@x.com")]
	if !p.Client {
		t.Fatal("client flag was demoted by a later non-matching run")
	}
}

func TestMergeAssignedCenterFilledOnce(t *testing.T) {
	id := core.EmailPersonID("a@x.com")
	base := upsertFor("a@x.com", "W1", core.NewDate(2024, 1, 1), true, false)

	withCenter := base
	withCenter.Person.AssignedCenter = "Long Beach SBDC"
	withCenter.Attendance = core.Attendance{
		Key: core.AttendanceKey(id, "W2"), PersonID: id, WebinarID: "W2",
		WebinarDate: core.NewDate(2024, 2, 1), Attended: true,
	}

	otherCenter := base
	otherCenter.Person.AssignedCenter = "Pasadena City College"
	otherCenter.Attendance = core.Attendance{
		Key: core.AttendanceKey(id, "W3"), PersonID: id, WebinarID: "W3",
		WebinarDate: core.NewDate(2024, 3, 1), Attended: true,
	}

	snap, _ := Merge(NewSnapshot(), []Upsert{base})
	snap, _ = Merge(snap, []Upsert{withCenter})
	snap, _ = Merge(snap, []Upsert{otherCenter})

	if got := snap.People[id].AssignedCenter; got != "Long Beach SBDC" {
		t.Fatalf("assigned center must fill once, got %q", got)
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	old, _ := Merge(NewSnapshot(), []Upsert{
		upsertFor("a@x.com", "W1", core.NewDate(2024, 1, 1), false, false),
	})
	before := len(old.Attendance)

	Merge(old, []Upsert{upsertFor("b@x.com", "W2", core.NewDate(2024, 2, 1), true, false)})

	if len(old.Attendance) != before || len(old.People) != 1 {
		t.Fatal("Merge mutated its input snapshot")
	}
}
