// Package match resolves normalized attendance records to identities:
// exact email match against the CRM snapshot first, nearest-center ZIP
// fallback when no usable email exists.
package match

import (
	"fmt"

	"sbtalks/internal/cache"
	"sbtalks/internal/core"
	"sbtalks/internal/geo"
)

// Snapshot is the read-only view of the CRM export used for one run.
type Snapshot struct {
	byEmail map[string]core.CRMClient
}

// NewSnapshot indexes CRM clients by normalized email.
func NewSnapshot(clients []core.CRMClient) Snapshot {
	byEmail := make(map[string]core.CRMClient, len(clients))
	for _, c := range clients {
		if c.Email == "" {
			continue
		}
		if _, exists := byEmail[c.Email]; !exists {
			byEmail[c.Email] = c
		}
	}
	return Snapshot{byEmail: byEmail}
}

// Lookup returns the CRM client for a normalized email.
func (s Snapshot) Lookup(email string) (core.CRMClient, bool) {
	c, ok := s.byEmail[email]
	return c, ok
}

// Len reports the number of distinct client emails.
func (s Snapshot) Len() int { return len(s.byEmail) }

// Assignment is a resolved nearest-center result for one ZIP.
type Assignment struct {
	Center string
	Miles  float64
}

const defaultZipCacheSize = 4096

// Matcher resolves records against one CRM snapshot and the static
// reference data. It only ever reads the snapshot.
type Matcher struct {
	crm     Snapshot
	centers geo.CenterSet
	zips    geo.ZipIndex
	assign  *cache.LRU[Assignment]
}

// New builds a Matcher. cacheSize <= 0 selects the default.
func New(crm Snapshot, centers geo.CenterSet, zips geo.ZipIndex, cacheSize int) *Matcher {
	if cacheSize <= 0 {
		cacheSize = defaultZipCacheSize
	}
	return &Matcher{
		crm:     crm,
		centers: centers,
		zips:    zips,
		assign:  cache.NewLRU[Assignment](cacheSize),
	}
}

// Match resolves one record to a Person. Records with neither a usable
// email nor a geocodable ZIP fail with core.ErrUnresolvedIdentity and are
// routed to the review queue by the caller.
func (m *Matcher) Match(rec core.Record) (core.Person, error) {
	if rec.Email != "" {
		return m.matchByEmail(rec), nil
	}

	// No persistent identity: assign to the nearest center by ZIP. The
	// derived id folds the webinar in, so such records are not linked
	// across webinars.
	if rec.ZipInvalid {
		return core.Person{}, fmt.Errorf("%w: no email and unusable zip %q", core.ErrUnresolvedIdentity, rec.Zip)
	}
	assignment, ok := m.nearestByZip(rec.Zip)
	if !ok {
		return core.Person{}, fmt.Errorf("%w: no email and unknown zip %q", core.ErrUnresolvedIdentity, rec.Zip)
	}

	return core.Person{
		ID:             core.FallbackPersonID(rec.Zip, rec.WebinarID),
		Name:           rec.Name,
		Client:         false,
		Zip:            rec.Zip,
		AssignedCenter: assignment.Center,
	}, nil
}

func (m *Matcher) matchByEmail(rec core.Record) core.Person {
	p := core.Person{
		ID:    core.EmailPersonID(rec.Email),
		Email: rec.Email,
		Name:  rec.Name,
		Zip:   rec.Zip,
	}

	if _, ok := m.crm.Lookup(rec.Email); ok {
		p.Client = true
		return p
	}

	// Known identity but not a client: bucket by ZIP when possible so the
	// non-client footprint has a center.
	if !rec.ZipInvalid {
		if assignment, ok := m.nearestByZip(rec.Zip); ok {
			p.AssignedCenter = assignment.Center
		}
	}
	return p
}

func (m *Matcher) nearestByZip(zip string) (Assignment, bool) {
	if a, ok := m.assign.Get(zip); ok {
		return a, true
	}
	coord, ok := m.zips.Lookup(zip)
	if !ok {
		return Assignment{}, false
	}
	center, miles := m.centers.Nearest(coord.Lat, coord.Lon)
	a := Assignment{Center: center.Name, Miles: miles}
	m.assign.Set(zip, a)
	return a, true
}
