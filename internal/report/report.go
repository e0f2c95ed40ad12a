// Package report turns a finished run into its human-facing outputs: the
// logged run summary, the KPI and geographic CSVs, the never-attended list
// and the unresolved review queue.
package report

import (
	"sbtalks/internal/core"
	"sbtalks/internal/log"
	"sbtalks/internal/master"
)

// FileSummary describes how one attendance export fared in a run.
type FileSummary struct {
	File         string
	WebinarID    string
	WebinarDate  core.Date
	InputRows    int
	Records      int // deduplicated records handed to the matcher
	Malformed    int
	Cancelled    int
	Unresolved   int
	UniqueEmails int
}

// RunSummary is the complete accounting of one pipeline run.
type RunSummary struct {
	RunID      string
	Files      []FileSummary
	Delta      master.Delta
	Malformed  int
	Unresolved int
}

// Unresolved is one review-queue entry: a record with neither a usable
// email nor a usable ZIP. These are written out, never silently dropped.
type Unresolved struct {
	File        string
	WebinarID   string
	WebinarDate core.Date
	Name        string
	Zip         string
	Reason      string
}

// LogSummary emits the run summary through the structured logger, one line
// per file plus the master-table deltas.
func LogSummary(logger *log.Logger, s RunSummary) {
	logger = logger.WithComponent(log.ComponentReport).With(log.FieldRunID, s.RunID)

	for _, f := range s.Files {
		logger.Info("Processed attendance export",
			log.FieldFile, f.File,
			log.FieldWebinarID, f.WebinarID,
			log.FieldWebinarDate, f.WebinarDate.String(),
			log.FieldRows, f.InputRows,
			"records", f.Records,
			"unique_emails", f.UniqueEmails,
			log.FieldMalformed, f.Malformed,
			log.FieldUnresolved, f.Unresolved,
			"cancelled", f.Cancelled,
		)
	}

	logger.Info("Masters updated",
		"people_before", s.Delta.PeopleBefore,
		"people_new", s.Delta.PeopleNew,
		"people_enriched", s.Delta.PeopleEnriched,
		"people_after", s.Delta.PeopleAfter,
		"attendance_before", s.Delta.AttendanceBefore,
		"attendance_added", s.Delta.AttendanceAdded,
		"attendance_skipped", s.Delta.AttendanceSkipped,
		"attendance_after", s.Delta.AttendanceAfter,
		log.FieldMalformed, s.Malformed,
		log.FieldUnresolved, s.Unresolved,
	)
}

// NeverAttended returns the people with zero attended=true facts, sorted
// by person id.
func NeverAttended(snap master.Snapshot) []core.Person {
	attended := make(map[core.PersonID]bool)
	for _, a := range snap.Attendance {
		if a.Attended {
			attended[a.PersonID] = true
		}
	}

	var out []core.Person
	for _, p := range snap.PeopleSorted() {
		if !attended[p.ID] {
			out = append(out, p)
		}
	}
	return out
}
