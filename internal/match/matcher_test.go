package match

import (
	"errors"
	"testing"

	"sbtalks/internal/core"
	"sbtalks/internal/geo"
)

func testCenters(t *testing.T) geo.CenterSet {
	t.Helper()
	cs, err := geo.NewCenterSet([]core.Center{
		{Name: "Long Beach SBDC", Abbr: "LBCC", Lat: 33.78, Lon: -118.16},
		{Name: "Pasadena City College", Abbr: "PCC", Lat: 34.14, Lon: -118.12},
	})
	if err != nil {
		t.Fatalf("centers: %v", err)
	}
	return cs
}

func testZips() geo.ZipIndex {
	return geo.NewZipIndex(map[string]geo.Coordinate{
		"90802": {Lat: 33.77, Lon: -118.19}, // near Long Beach
		"91101": {Lat: 34.15, Lon: -118.14}, // near Pasadena
	})
}

func testMatcher(clients []core.CRMClient, t *testing.T) *Matcher {
	return New(NewSnapshot(clients), testCenters(t), testZips(), 0)
}

func record(email, zip string) core.Record {
	rec := core.Record{
		Email:       email,
		WebinarID:   "W1",
		WebinarDate: core.NewDate(2024, 1, 1),
		Zip:         zip,
	}
	if email == "" {
		rec.EmailReason = "email_missing"
	}
	return rec
}

func TestMatchClientByEmail(t *testing.T) {
	m := testMatcher([]core.CRMClient{{Email: "a@x.com", Zip: "90802"}}, t)

	p, err := m.Match(record("a@x.com", "90802"))
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if !p.Client {
		t.Fatal("expected client match")
	}
	if p.ID != core.EmailPersonID("a@x.com") {
		t.Fatal("person id must be the email hash")
	}
	if p.AssignedCenter != "" {
		t.Fatal("clients must not get an assigned center")
	}
}

func TestMatchNonClientKeepsStableIdentity(t *testing.T) {
	m := testMatcher(nil, t)

	p1, err := m.Match(record("b@x.com", "90802"))
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	rec2 := record("b@x.com", "90802")
	rec2.WebinarID = "W2"
	p2, err := m.Match(rec2)
	if err != nil {
		t.Fatalf("match: %v", err)
	}

	if p1.Client || p2.Client {
		t.Fatal("unexpected client flag")
	}
	if p1.ID != p2.ID {
		t.Fatal("same email must resolve to the same person across webinars")
	}
	if p1.AssignedCenter != "Long Beach SBDC" {
		t.Fatalf("expected non-client center assignment, got %q", p1.AssignedCenter)
	}
}

func TestMatchZipFallback(t *testing.T) {
	m := testMatcher(nil, t)

	p, err := m.Match(record("", "91101"))
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if p.AssignedCenter != "Pasadena City College" {
		t.Fatalf("expected nearest center Pasadena, got %q", p.AssignedCenter)
	}
	if p.ID != core.FallbackPersonID("91101", "W1") {
		t.Fatal("expected fallback identity")
	}

	// Same zip at a different webinar is a different identity by design.
	rec := record("", "91101")
	rec.WebinarID = "W2"
	p2, err := m.Match(rec)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if p2.ID == p.ID {
		t.Fatal("fallback identities must not persist across webinars")
	}
}

func TestMatchUnresolved(t *testing.T) {
	m := testMatcher(nil, t)

	rec := record("", "ABC")
	rec.ZipInvalid = true
	if _, err := m.Match(rec); !errors.Is(err, core.ErrUnresolvedIdentity) {
		t.Fatalf("expected ErrUnresolvedIdentity, got %v", err)
	}

	// Valid-looking zip that the index does not know.
	if _, err := m.Match(record("", "00001")); !errors.Is(err, core.ErrUnresolvedIdentity) {
		t.Fatalf("expected ErrUnresolvedIdentity for unknown zip, got %v", err)
	}
}

func TestMatchCacheTransparent(t *testing.T) {
	m := testMatcher(nil, t)

	first, err := m.Match(record("", "90802"))
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	// Second call hits the memoized assignment; result must be identical.
	second, err := m.Match(record("", "90802"))
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if first.AssignedCenter != second.AssignedCenter || first.ID != second.ID {
		t.Fatal("cached assignment changed the match result")
	}
}
