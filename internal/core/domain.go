package core

import (
	"errors"
	"strings"
	"time"
)

// Error taxonomy for the pipeline. Row-level errors (ErrMalformedRecord,
// ErrUnresolvedIdentity) are collected into the run summary and never abort
// a run; store-level and reference-data errors abort before any mutation.
var (
	ErrMalformedRecord      = errors.New("malformed record")
	ErrUnresolvedIdentity   = errors.New("unresolved identity")
	ErrPersistenceFailure   = errors.New("persistence failure")
	ErrReferenceDataMissing = errors.New("reference data missing")
)

type (
	// PersonID is a stable identity derived from the normalized email
	// (or, for email-less records, from ZIP + webinar).
	PersonID string

	Date struct {
		time.Time
	}

	// Person is one row of people_master. A row is created at most once;
	// after that only Client may flip false->true and AssignedCenter may
	// be filled when empty.
	Person struct {
		ID             PersonID
		Email          string
		Name           string
		Client         bool
		Zip            string
		AssignedCenter string
	}

	// Attendance is one row of attendance_master, unique per Key.
	// Attended is immutable after first write.
	Attendance struct {
		Key               string
		PersonID          PersonID
		WebinarID         string
		WebinarDate       Date
		Attended          bool
		SourceFingerprint string
	}

	// Record is a normalized attendance-export row, the Normalizer's
	// output and the Matcher's input.
	Record struct {
		Email       string // normalized; empty when missing or invalid
		EmailReason string // why Email is empty: "email_missing" or "email_invalid_format"
		Name        string
		WebinarID   string
		WebinarDate Date
		Attended    bool
		Zip         string
		ZipInvalid  bool
	}

	// CRMClient is one normalized row of the CRM export snapshot.
	CRMClient struct {
		Email  string
		Zip    string
		Center string
	}

	// Center is one row of the static center reference.
	Center struct {
		Name string
		Abbr string
		Lat  float64
		Lon  float64
	}
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD and the export convention YYYY_MM_DD.
func ParseDate(s string) (Date, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "-")
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// AttendanceKey derives the composite dedup key for one person/webinar pair.
func AttendanceKey(id PersonID, webinarID string) string {
	return string(id) + "||" + webinarID
}

func (p Person) Validate() error {
	if p.ID == "" {
		return errors.New("empty person id")
	}
	if p.Email == "" && p.AssignedCenter == "" && p.Zip == "" {
		return ErrUnresolvedIdentity
	}
	return nil
}

func (a Attendance) Validate() error {
	if a.Key == "" {
		return errors.New("empty attendance key")
	}
	if a.PersonID == "" {
		return errors.New("empty person id")
	}
	if strings.TrimSpace(a.WebinarID) == "" {
		return errors.New("empty webinar id")
	}
	if err := a.WebinarDate.Validate(); err != nil {
		return errors.New("invalid webinar date: " + err.Error())
	}
	if a.Key != AttendanceKey(a.PersonID, a.WebinarID) {
		return errors.New("attendance key does not match person/webinar")
	}
	return nil
}

func (c Center) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("empty center name")
	}
	if c.Lat < -90 || c.Lat > 90 {
		return errors.New("latitude out of range")
	}
	if c.Lon < -180 || c.Lon > 180 {
		return errors.New("longitude out of range")
	}
	return nil
}
