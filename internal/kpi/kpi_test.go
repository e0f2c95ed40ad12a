package kpi

import (
	"testing"

	"sbtalks/internal/core"
	"sbtalks/internal/master"
)

func addEntry(snap master.Snapshot, email, webinarID string, date core.Date, attended, client bool) {
	id := core.EmailPersonID(email)
	if _, ok := snap.People[id]; !ok {
		snap.People[id] = core.Person{ID: id, Email: email, Client: client}
	}
	key := core.AttendanceKey(id, webinarID)
	snap.Attendance[key] = core.Attendance{
		Key: key, PersonID: id, WebinarID: webinarID,
		WebinarDate: date, Attended: attended,
	}
}

func rowFor(t *testing.T, table Table, webinarID string) Row {
	t.Helper()
	for _, r := range table.Webinars {
		if r.WebinarID == webinarID {
			return r
		}
	}
	t.Fatalf("no row for webinar %s", webinarID)
	return Row{}
}

func TestComputeStandingAudience(t *testing.T) {
	w1 := core.NewDate(2024, 1, 1)
	w2 := core.NewDate(2024, 2, 1)

	snap := master.NewSnapshot()
	// a attends W1 and W2; b registers at W1 and never shows; c first
	// appears at W2 and attends.
	addEntry(snap, "a@x.com", "W1", w1, true, true)
	addEntry(snap, "a@x.com", "W2", w2, true, true)
	addEntry(snap, "b@x.com", "W1", w1, false, false)
	addEntry(snap, "c@x.com", "W2", w2, true, false)

	table := Compute(snap)
	if len(table.Webinars) != 2 {
		t.Fatalf("expected 2 webinar rows, got %d", len(table.Webinars))
	}
	if table.Webinars[0].WebinarID != "W1" || table.Webinars[1].WebinarID != "W2" {
		t.Fatalf("rows out of date order: %s, %s", table.Webinars[0].WebinarID, table.Webinars[1].WebinarID)
	}

	r1 := rowFor(t, table, "W1")
	if r1.TotalAudience != 2 || r1.Attendees != 1 || r1.NoShows != 1 {
		t.Fatalf("W1 audience/attendees/noshows = %d/%d/%d", r1.TotalAudience, r1.Attendees, r1.NoShows)
	}
	if r1.FirstTime != 1 || r1.Repeat != 0 {
		t.Fatalf("W1 first/repeat = %d/%d", r1.FirstTime, r1.Repeat)
	}
	if r1.ClientShare != 1.0 {
		t.Fatalf("W1 client share = %v", r1.ClientShare)
	}

	r2 := rowFor(t, table, "W2")
	if r2.TotalAudience < r1.TotalAudience {
		t.Fatal("standing audience shrank between webinars")
	}
	if r2.TotalAudience != 3 || r2.Attendees != 2 {
		t.Fatalf("W2 audience/attendees = %d/%d", r2.TotalAudience, r2.Attendees)
	}
	// a@x.com already attended W1, so at W2 they count as repeat and
	// c@x.com as first-time.
	if r2.FirstTime != 1 || r2.Repeat != 1 {
		t.Fatalf("W2 first/repeat = %d/%d", r2.FirstTime, r2.Repeat)
	}
	if r2.Clients != 1 || r2.NonClients != 1 || r2.ClientShare != 0.5 {
		t.Fatalf("W2 clients/nonclients/share = %d/%d/%v", r2.Clients, r2.NonClients, r2.ClientShare)
	}
}

func TestComputeRowConsistency(t *testing.T) {
	snap := master.NewSnapshot()
	addEntry(snap, "a@x.com", "W1", core.NewDate(2024, 1, 1), true, true)
	addEntry(snap, "b@x.com", "W1", core.NewDate(2024, 1, 1), false, false)
	addEntry(snap, "a@x.com", "W2", core.NewDate(2024, 2, 1), false, true)
	addEntry(snap, "c@x.com", "W2", core.NewDate(2024, 2, 1), true, false)
	addEntry(snap, "c@x.com", "W3", core.NewDate(2024, 3, 1), true, false)

	for _, r := range Compute(snap).Webinars {
		if r.Attendees+r.NoShows != r.TotalAudience {
			t.Errorf("%s: attendees+no_shows=%d, total_audience=%d", r.WebinarID, r.Attendees+r.NoShows, r.TotalAudience)
		}
		if r.FirstTime+r.Repeat != r.Attendees {
			t.Errorf("%s: first_time+repeat=%d, attendees=%d", r.WebinarID, r.FirstTime+r.Repeat, r.Attendees)
		}
		if r.Clients+r.NonClients != r.Attendees {
			t.Errorf("%s: clients+nonclients=%d, attendees=%d", r.WebinarID, r.Clients+r.NonClients, r.Attendees)
		}
	}
}

func TestComputeEmptyWebinarRates(t *testing.T) {
	snap := master.NewSnapshot()
	addEntry(snap, "a@x.com", "W1", core.NewDate(2024, 1, 1), false, false)

	r := rowFor(t, Compute(snap), "W1")
	if r.Attendees != 0 || r.EngagementRate != 0 || r.ClientShare != 0 || r.RepeatRate != 0 {
		t.Fatalf("expected zero rates for attendee-less webinar, got %+v", r)
	}
}

func TestComputeCumulative(t *testing.T) {
	snap := master.NewSnapshot()
	addEntry(snap, "a@x.com", "W1", core.NewDate(2024, 1, 1), true, true)
	addEntry(snap, "a@x.com", "W2", core.NewDate(2024, 2, 1), true, true)
	addEntry(snap, "b@x.com", "W1", core.NewDate(2024, 1, 1), false, false)
	addEntry(snap, "c@x.com", "W2", core.NewDate(2024, 2, 1), true, false)

	cum := Compute(snap).Cumulative
	if cum.WebinarID != CumulativeID {
		t.Fatalf("cumulative id = %s", cum.WebinarID)
	}
	if cum.WebinarDate.String() != "2024-02-01" {
		t.Fatalf("cumulative date = %s", cum.WebinarDate)
	}
	if cum.TotalAudience != 3 || cum.Attendees != 2 || cum.NoShows != 1 {
		t.Fatalf("cumulative audience/attendees/noshows = %d/%d/%d", cum.TotalAudience, cum.Attendees, cum.NoShows)
	}
	// a attended twice, so shows up as a repeat attendee overall.
	if cum.Repeat != 1 || cum.Clients != 1 {
		t.Fatalf("cumulative repeat/clients = %d/%d", cum.Repeat, cum.Clients)
	}
}

func TestComputeIdempotentOverHistory(t *testing.T) {
	snap := master.NewSnapshot()
	addEntry(snap, "a@x.com", "W1", core.NewDate(2024, 1, 1), true, false)
	addEntry(snap, "b@x.com", "W1", core.NewDate(2024, 1, 1), true, false)
	before := rowFor(t, Compute(snap), "W1")

	// Growing history with a later webinar must not disturb the W1 row.
	addEntry(snap, "c@x.com", "W2", core.NewDate(2024, 2, 1), true, false)
	after := rowFor(t, Compute(snap), "W1")

	if before != after {
		t.Fatalf("W1 row drifted: %+v vs %+v", before, after)
	}
}
