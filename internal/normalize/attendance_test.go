package normalize

import (
	"testing"

	"sbtalks/internal/core"
	"sbtalks/internal/tabular"
)

func row(email, attended, zip string) tabular.Row {
	return tabular.Row{
		"Email":           email,
		"First Name":      "Ada",
		"Last Name":       "Lovelace",
		"Attended":        attended,
		"Zip/Postal Code": zip,
		"Approval Status": "approved",
	}
}

func TestAttendanceDedupORsFlag(t *testing.T) {
	// Two rows for the same email, one attended and one not: the collapsed
	// record must be attended=true regardless of order.
	rows := []tabular.Row{
		row("A@x.com", "No", "90210"),
		row("a@x.com ", "Yes", "90210"),
	}
	res := Attendance(rows, "W1", core.NewDate(2024, 1, 1), DefaultAttendanceColumns())

	if len(res.Records) != 1 {
		t.Fatalf("expected 1 collapsed record, got %d", len(res.Records))
	}
	if !res.Records[0].Attended {
		t.Fatal("expected OR'd attended=true")
	}
	if res.Records[0].Email != "a@x.com" {
		t.Fatalf("unexpected email %q", res.Records[0].Email)
	}
}

func TestAttendanceMalformedFlagDropped(t *testing.T) {
	rows := []tabular.Row{
		row("a@x.com", "maybe", "90210"),
		row("b@x.com", "Yes", "90210"),
	}
	res := Attendance(rows, "W1", core.NewDate(2024, 1, 1), DefaultAttendanceColumns())

	if len(res.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(res.Records))
	}
	if len(res.Malformed) != 1 || res.Malformed[0].Line != 1 {
		t.Fatalf("expected row 1 malformed, got %+v", res.Malformed)
	}
}

func TestAttendanceCancelledRegistrationsSkipped(t *testing.T) {
	r := row("a@x.com", "Yes", "90210")
	r["Approval Status"] = "Cancelled by self"
	res := Attendance([]tabular.Row{r}, "W1", core.NewDate(2024, 1, 1), DefaultAttendanceColumns())

	if len(res.Records) != 0 || res.Cancelled != 1 {
		t.Fatalf("expected cancelled row skipped, got %d records, %d cancelled", len(res.Records), res.Cancelled)
	}
}

func TestAttendanceEmailRouting(t *testing.T) {
	// Distinct names: email-less rows dedupe by cleaned name, so sharing
	// one would collapse these into a single record.
	r1 := row("", "Yes", "90210")
	r2 := row("not-an-email", "Yes", "ABC")
	r2["First Name"], r2["Last Name"] = "Grace", "Hopper"

	res := Attendance([]tabular.Row{r1, r2}, "W1", core.NewDate(2024, 1, 1), DefaultAttendanceColumns())
	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(res.Records))
	}

	missing := res.Records[0]
	if missing.Email != "" || missing.EmailReason != ReasonEmailMissing {
		t.Fatalf("expected email_missing, got %+v", missing)
	}
	if missing.ZipInvalid {
		t.Fatal("valid zip flagged invalid")
	}

	invalid := res.Records[1]
	if invalid.Email != "" || invalid.EmailReason != ReasonEmailInvalid {
		t.Fatalf("expected email_invalid_format, got %+v", invalid)
	}
	if !invalid.ZipInvalid {
		t.Fatal("expected zip_invalid for non-numeric zip")
	}
}

func TestAttendanceEmailLessRowsDedupeByName(t *testing.T) {
	// Without a usable email the cleaned full name is the dedup key, so two
	// email-less rows for the same name collapse with the flag OR'd.
	rows := []tabular.Row{
		row("", "No", "90210"),
		row("", "Yes", "90210"),
	}
	res := Attendance(rows, "W1", core.NewDate(2024, 1, 1), DefaultAttendanceColumns())

	if len(res.Records) != 1 {
		t.Fatalf("expected 1 collapsed record, got %d", len(res.Records))
	}
	if !res.Records[0].Attended {
		t.Fatal("expected OR'd attended=true")
	}
	if res.Records[0].EmailReason != ReasonEmailMissing {
		t.Fatalf("unexpected reason %q", res.Records[0].EmailReason)
	}
}

func TestCRMPrefersAltEmailAndDedupes(t *testing.T) {
	rows := []tabular.Row{
		{"Email": "old@x.com", "Email Address": "new@x.com", "Physical Address ZIP Code": "90210", "Center": "Long  Beach"},
		{"Email": "new@x.com", "Email Address": "", "Physical Address ZIP Code": "90001", "Center": "Other"},
		{"Email": "", "Email Address": ""},
	}
	clients, malformed := CRM(rows, DefaultCRMColumns())

	if len(clients) != 1 {
		t.Fatalf("expected 1 client, got %d", len(clients))
	}
	if clients[0].Email != "new@x.com" || clients[0].Center != "Long Beach" {
		t.Fatalf("unexpected client %+v", clients[0])
	}
	if len(malformed) != 1 {
		t.Fatalf("expected 1 malformed crm row, got %d", len(malformed))
	}
}

func TestParseExportFilename(t *testing.T) {
	id, date, err := ParseExportFilename("/tmp/attendee_smallbiz-talks-12_2024_02_01.csv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != "smallbiz-talks-12" || date.String() != "2024-02-01" {
		t.Fatalf("got (%q,%q)", id, date.String())
	}

	if _, _, err := ParseExportFilename("notes_2024_02_01.csv"); err == nil {
		t.Fatal("expected error for non-matching filename")
	}
}
