// Package kpi computes per-webinar engagement figures from the master
// snapshot under the standing-audience model: a person registers once and
// counts as audience for every webinar from their first entry onward.
package kpi

import (
	"sort"

	"sbtalks/internal/core"
	"sbtalks/internal/master"
)

// CumulativeID labels the all-webinars row appended after the per-webinar
// rows.
const CumulativeID = "all"

// Row is the KPI set for one webinar.
type Row struct {
	WebinarID      string
	WebinarDate    core.Date
	TotalAudience  int
	Attendees      int
	NoShows        int
	EngagementRate float64
	FirstTime      int
	Repeat         int
	FirstTimeShare float64
	RepeatRate     float64
	Clients        int
	NonClients     int
	ClientShare    float64
}

// Table holds the per-webinar rows in date order plus the cumulative row.
type Table struct {
	Webinars   []Row
	Cumulative Row
}

// Rows returns the per-webinar rows followed by the cumulative row.
func (t Table) Rows() []Row {
	out := make([]Row, 0, len(t.Webinars)+1)
	out = append(out, t.Webinars...)
	out = append(out, t.Cumulative)
	return out
}

type webinar struct {
	id   string
	date core.Date
}

// Compute derives the KPI table from the snapshot alone. It never reads
// per-run input, so re-running on a superset of history reproduces every
// historical row unchanged.
func Compute(snap master.Snapshot) Table {
	webinars := sortedWebinars(snap)

	// First-ever entry (registered or attended) per person, and the
	// earliest webinar where the person actually attended.
	firstEntry := make(map[core.PersonID]core.Date)
	firstAttended := make(map[core.PersonID]webinar)
	attendedCount := make(map[core.PersonID]int)
	for _, a := range snap.Attendance {
		if cur, ok := firstEntry[a.PersonID]; !ok || a.WebinarDate.Before(cur.Time) {
			firstEntry[a.PersonID] = a.WebinarDate
		}
		if !a.Attended {
			continue
		}
		attendedCount[a.PersonID]++
		w := webinar{id: a.WebinarID, date: a.WebinarDate}
		if cur, ok := firstAttended[a.PersonID]; !ok || earlier(w, cur) {
			firstAttended[a.PersonID] = w
		}
	}

	rows := make([]Row, 0, len(webinars))
	for _, w := range webinars {
		rows = append(rows, computeRow(snap, w, firstEntry, firstAttended))
	}

	return Table{Webinars: rows, Cumulative: cumulativeRow(snap, webinars, firstAttended, attendedCount)}
}

func computeRow(snap master.Snapshot, w webinar, firstEntry map[core.PersonID]core.Date, firstAttended map[core.PersonID]webinar) Row {
	row := Row{WebinarID: w.id, WebinarDate: w.date}

	for _, entry := range firstEntry {
		if !entry.After(w.date.Time) {
			row.TotalAudience++
		}
	}

	for _, a := range snap.Attendance {
		if a.WebinarID != w.id || !a.Attended {
			continue
		}
		row.Attendees++
		if first := firstAttended[a.PersonID]; first.id == w.id {
			row.FirstTime++
		}
		if snap.People[a.PersonID].Client {
			row.Clients++
		}
	}

	finishRow(&row)
	return row
}

// cumulativeRow summarizes all history: the whole audience against the set
// of people who ever attended, with Repeat counting people attending two
// or more webinars.
func cumulativeRow(snap master.Snapshot, webinars []webinar, firstAttended map[core.PersonID]webinar, attendedCount map[core.PersonID]int) Row {
	row := Row{WebinarID: CumulativeID}
	if n := len(webinars); n > 0 {
		row.WebinarDate = webinars[n-1].date
	}

	row.TotalAudience = len(snap.People)
	row.Attendees = len(firstAttended)
	row.FirstTime = len(firstAttended)
	for id := range firstAttended {
		if attendedCount[id] > 1 {
			row.Repeat++
		}
		if snap.People[id].Client {
			row.Clients++
		}
	}

	row.NoShows = row.TotalAudience - row.Attendees
	row.NonClients = row.Attendees - row.Clients
	if row.TotalAudience > 0 {
		row.EngagementRate = float64(row.Attendees) / float64(row.TotalAudience)
	}
	if row.Attendees > 0 {
		row.FirstTimeShare = float64(row.FirstTime) / float64(row.Attendees)
		row.RepeatRate = float64(row.Repeat) / float64(row.Attendees)
		row.ClientShare = float64(row.Clients) / float64(row.Attendees)
	}
	return row
}

func finishRow(row *Row) {
	row.NoShows = row.TotalAudience - row.Attendees
	row.Repeat = row.Attendees - row.FirstTime
	row.NonClients = row.Attendees - row.Clients
	if row.TotalAudience > 0 {
		row.EngagementRate = float64(row.Attendees) / float64(row.TotalAudience)
	}
	if row.Attendees > 0 {
		row.FirstTimeShare = float64(row.FirstTime) / float64(row.Attendees)
		row.RepeatRate = float64(row.Repeat) / float64(row.Attendees)
		row.ClientShare = float64(row.Clients) / float64(row.Attendees)
	}
}

func sortedWebinars(snap master.Snapshot) []webinar {
	dates := snap.WebinarDates()
	out := make([]webinar, 0, len(dates))
	for id, date := range dates {
		out = append(out, webinar{id: id, date: date})
	}
	sort.Slice(out, func(i, j int) bool { return earlier(out[i], out[j]) })
	return out
}

func earlier(a, b webinar) bool {
	if !a.date.Equal(b.date.Time) {
		return a.date.Before(b.date.Time)
	}
	return a.id < b.id
}
