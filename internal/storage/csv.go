package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"sbtalks/internal/core"
	"sbtalks/internal/master"
	"sbtalks/internal/tabular"
)

// CSVStore keeps people_master.csv and attendance_master.csv in a
// directory. Files are read in full at load and rewritten atomically at
// save (write-to-temp + rename), so an interrupted run cannot corrupt
// previously committed history.
type CSVStore struct {
	people     tabular.CSVFile
	attendance tabular.CSVFile
}

// NewCSVStore creates a store rooted at dir. Missing files mean an empty
// store, the state of a first run.
func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{
		people:     tabular.CSVFile{Path: filepath.Join(dir, "people_master.csv")},
		attendance: tabular.CSVFile{Path: filepath.Join(dir, "attendance_master.csv")},
	}
}

func (s *CSVStore) Load(ctx context.Context) (master.Snapshot, error) {
	snap := master.NewSnapshot()

	if s.people.Exists() {
		header, rows, err := s.people.ReadAll(ctx)
		if err != nil {
			return master.Snapshot{}, fmt.Errorf("%w: load people_master: %v", core.ErrPersistenceFailure, err)
		}
		for i, row := range tabular.Records(header, rows) {
			p, err := decodePerson(row)
			if err != nil {
				return master.Snapshot{}, fmt.Errorf("%w: people_master row %d: %v", core.ErrPersistenceFailure, i+1, err)
			}
			snap.People[p.ID] = p
		}
	}

	if s.attendance.Exists() {
		header, rows, err := s.attendance.ReadAll(ctx)
		if err != nil {
			return master.Snapshot{}, fmt.Errorf("%w: load attendance_master: %v", core.ErrPersistenceFailure, err)
		}
		for i, row := range tabular.Records(header, rows) {
			a, err := decodeAttendance(row)
			if err != nil {
				return master.Snapshot{}, fmt.Errorf("%w: attendance_master row %d: %v", core.ErrPersistenceFailure, i+1, err)
			}
			snap.Attendance[a.Key] = a
		}
	}

	return snap, nil
}

func (s *CSVStore) Save(ctx context.Context, snap master.Snapshot) error {
	peopleRows := make([][]string, 0, len(snap.People))
	for _, p := range snap.PeopleSorted() {
		peopleRows = append(peopleRows, []string{
			string(p.ID), p.Email, p.Name, strconv.FormatBool(p.Client), p.Zip, p.AssignedCenter,
		})
	}

	attendanceRows := make([][]string, 0, len(snap.Attendance))
	for _, a := range snap.AttendanceSorted() {
		attendanceRows = append(attendanceRows, []string{
			a.Key, string(a.PersonID), a.WebinarID, a.WebinarDate.String(),
			strconv.FormatBool(a.Attended), a.SourceFingerprint,
		})
	}

	// Attendance first: if the second write fails the pair is re-derivable
	// from a re-run, and neither file is ever half-written.
	if err := s.attendance.WriteAll(ctx, attendanceHeader, attendanceRows); err != nil {
		return fmt.Errorf("%w: save attendance_master: %v", core.ErrPersistenceFailure, err)
	}
	if err := s.people.WriteAll(ctx, peopleHeader, peopleRows); err != nil {
		return fmt.Errorf("%w: save people_master: %v", core.ErrPersistenceFailure, err)
	}
	return nil
}

func (s *CSVStore) Close() error { return nil }

func decodePerson(row tabular.Row) (core.Person, error) {
	client, err := strconv.ParseBool(row["client_flag"])
	if err != nil {
		return core.Person{}, fmt.Errorf("bad client_flag %q", row["client_flag"])
	}
	p := core.Person{
		ID:             core.PersonID(row["person_id"]),
		Email:          row["email"],
		Name:           row["name"],
		Client:         client,
		Zip:            row["zip"],
		AssignedCenter: row["assigned_center"],
	}
	if p.ID == "" {
		return core.Person{}, fmt.Errorf("empty person_id")
	}
	return p, nil
}

func decodeAttendance(row tabular.Row) (core.Attendance, error) {
	attended, err := strconv.ParseBool(row["attended"])
	if err != nil {
		return core.Attendance{}, fmt.Errorf("bad attended %q", row["attended"])
	}
	date, err := core.ParseDate(row["webinar_date"])
	if err != nil {
		return core.Attendance{}, fmt.Errorf("bad webinar_date %q", row["webinar_date"])
	}
	a := core.Attendance{
		Key:               row["attendance_key"],
		PersonID:          core.PersonID(row["person_id"]),
		WebinarID:         row["webinar_id"],
		WebinarDate:       date,
		Attended:          attended,
		SourceFingerprint: row["source_fingerprint"],
	}
	if err := a.Validate(); err != nil {
		return core.Attendance{}, err
	}
	return a, nil
}
