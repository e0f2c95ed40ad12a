package normalize

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"sbtalks/internal/core"
	"sbtalks/internal/tabular"
)

// AttendanceColumns names the columns of a webinar attendance export.
type AttendanceColumns struct {
	Email     string
	FirstName string
	LastName  string
	Attended  string
	Zip       string
	Approval  string
}

// DefaultAttendanceColumns matches the Zoom attendee export layout.
func DefaultAttendanceColumns() AttendanceColumns {
	return AttendanceColumns{
		Email:     "Email",
		FirstName: "First Name",
		LastName:  "Last Name",
		Attended:  "Attended",
		Zip:       "Zip/Postal Code",
		Approval:  "Approval Status",
	}
}

// RowIssue describes one dropped row; collected into the run summary,
// never fatal.
type RowIssue struct {
	Line   int // 1-based data row number
	Reason string
}

func (i RowIssue) Error() string {
	return fmt.Sprintf("%v: row %d: %s", core.ErrMalformedRecord, i.Line, i.Reason)
}

// Result is the normalized view of one attendance export.
type Result struct {
	Records   []core.Record
	Malformed []RowIssue
	Cancelled int // registrations dropped by approval status
	InputRows int
}

// Attendance normalizes one export's rows for a single webinar and
// collapses duplicates within the file: one record per person, attended
// flag OR'd across the person's rows, first row's profile fields kept.
func Attendance(rows []tabular.Row, webinarID string, webinarDate core.Date, cols AttendanceColumns) Result {
	res := Result{InputRows: len(rows)}

	type slot struct {
		index int // position in res.Records
	}
	byKey := make(map[string]slot)

	for i, row := range rows {
		line := i + 1

		if cols.Approval != "" {
			if approval := strings.ToLower(strings.TrimSpace(row[cols.Approval])); approval != "" && approval != "approved" {
				res.Cancelled++
				continue
			}
		}

		attended, ok := ParseAttended(row[cols.Attended])
		if !ok {
			res.Malformed = append(res.Malformed, RowIssue{
				Line:   line,
				Reason: fmt.Sprintf("unrecognized attendance flag %q", row[cols.Attended]),
			})
			continue
		}

		rec := core.Record{
			WebinarID:   webinarID,
			WebinarDate: webinarDate,
			Attended:    attended,
			Name:        fullName(row, cols),
		}

		email := CleanEmail(row[cols.Email])
		switch {
		case email == "":
			rec.EmailReason = ReasonEmailMissing
		case !ValidEmail(email):
			rec.EmailReason = ReasonEmailInvalid
		default:
			rec.Email = email
		}

		zip, zipOK := CleanZip(row[cols.Zip])
		rec.Zip = zip
		rec.ZipInvalid = !zipOK

		key := dedupKey(rec)
		if key == "" {
			// No usable person key at all; keep the row, it may still be
			// resolvable (or land in the review queue) downstream.
			res.Records = append(res.Records, rec)
			continue
		}
		if s, seen := byKey[key]; seen {
			// Reconnect rows: any attended=true wins, first profile wins.
			res.Records[s.index].Attended = res.Records[s.index].Attended || rec.Attended
			continue
		}
		byKey[key] = slot{index: len(res.Records)}
		res.Records = append(res.Records, rec)
	}

	return res
}

func fullName(row tabular.Row, cols AttendanceColumns) string {
	first := CleanName(row[cols.FirstName])
	last := CleanName(row[cols.LastName])
	return CleanName(first + " " + last)
}

func dedupKey(rec core.Record) string {
	if rec.Email != "" {
		return "e:" + rec.Email
	}
	if name := strings.ToLower(rec.Name); name != "" {
		return "n:" + name
	}
	return ""
}

var exportName = regexp.MustCompile(`^attendee_(.+)_(20\d{2}_\d{2}_\d{2})$`)

// ParseExportFilename extracts the webinar identity from the export naming
// convention attendee_{webinar_id}_YYYY_MM_DD.csv.
func ParseExportFilename(path string) (webinarID string, date core.Date, err error) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m := exportName.FindStringSubmatch(stem)
	if m == nil {
		return "", core.Date{}, fmt.Errorf("filename %q does not match attendee_{webinar_id}_YYYY_MM_DD", stem)
	}
	date, err = core.ParseDate(m[2])
	if err != nil {
		return "", core.Date{}, fmt.Errorf("filename %q: %w", stem, err)
	}
	return m[1], date, nil
}
