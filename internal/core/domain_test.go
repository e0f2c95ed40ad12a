package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-01-01", "2024-01-01", true},
		{"2024_02_15", "2024-02-15", true},
		{" 2024-03-01 ", "2024-03-01", true},
		{"01/02/2024", "", false},
		{"", "", false},
	}
	for i, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d: expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d: expected error", i)
		}
		if tc.ok && d.String() != tc.want {
			t.Fatalf("case %d: got %q want %q", i, d.String(), tc.want)
		}
	}
}

func TestDateValidate(t *testing.T) {
	if err := NewDate(2024, 1, 1).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Date{Time: time.Time{}}).Validate(); err == nil {
		t.Fatal("expected error for zero date")
	}
}

func TestAttendanceValidate(t *testing.T) {
	id := EmailPersonID("a@x.com")
	good := Attendance{
		Key:         AttendanceKey(id, "W1"),
		PersonID:    id,
		WebinarID:   "W1",
		WebinarDate: NewDate(2024, 1, 1),
		Attended:    true,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Attendance{
		{},
		{Key: "x", PersonID: id, WebinarID: "W1", WebinarDate: NewDate(2024, 1, 1)}, // key mismatch
		{Key: AttendanceKey(id, "W1"), PersonID: id, WebinarID: "W1"},               // zero date
		{Key: AttendanceKey(id, ""), PersonID: id, WebinarID: "", WebinarDate: NewDate(2024, 1, 1)},
	}
	for i, a := range bads {
		if err := a.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}
