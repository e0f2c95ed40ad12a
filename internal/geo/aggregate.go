package geo

import (
	"sort"

	"sbtalks/internal/core"
	"sbtalks/internal/master"
)

// ZipBucket is an aggregate count of people in one ZIP. Only counts leave
// this package, never individual coordinates.
type ZipBucket struct {
	Zip   string
	Lat   float64
	Lon   float64
	Count int
}

// CenterBucket is an aggregate count of non-clients assigned to a center.
type CenterBucket struct {
	Center string
	Abbr   string
	Count  int
	Share  float64 // fraction of all assigned non-clients
}

// Aggregates are the two disjoint geographic output sets.
type Aggregates struct {
	Clients    []ZipBucket    // client attendees grouped by ZIP
	NonClients []CenterBucket // non-client attendees grouped by assigned center
	Skipped    int            // attendees excluded: invalid ZIP or no assignment
}

// Aggregate partitions the snapshot's attendees into the client ZIP
// distribution and the non-client center assignment. Attendee means at
// least one attended=true fact.
func Aggregate(snap master.Snapshot, zips ZipIndex, centers CenterSet) Aggregates {
	attended := make(map[core.PersonID]bool)
	for _, a := range snap.Attendance {
		if a.Attended {
			attended[a.PersonID] = true
		}
	}

	var agg Aggregates
	clientByZip := make(map[string]*ZipBucket)
	countByCenter := make(map[string]int)
	totalAssigned := 0

	for id, p := range snap.People {
		if !attended[id] {
			continue
		}
		if p.Client {
			coord, ok := zips.Lookup(p.Zip)
			if !ok {
				agg.Skipped++
				continue
			}
			b, exists := clientByZip[p.Zip]
			if !exists {
				b = &ZipBucket{Zip: p.Zip, Lat: coord.Lat, Lon: coord.Lon}
				clientByZip[p.Zip] = b
			}
			b.Count++
			continue
		}
		if p.AssignedCenter == "" {
			agg.Skipped++
			continue
		}
		countByCenter[p.AssignedCenter]++
		totalAssigned++
	}

	for _, b := range clientByZip {
		agg.Clients = append(agg.Clients, *b)
	}
	sort.Slice(agg.Clients, func(i, j int) bool { return agg.Clients[i].Zip < agg.Clients[j].Zip })

	abbrByName := make(map[string]string, centers.Len())
	for _, c := range centers.Centers() {
		abbrByName[c.Name] = c.Abbr
	}
	for name, count := range countByCenter {
		share := 0.0
		if totalAssigned > 0 {
			share = float64(count) / float64(totalAssigned)
		}
		agg.NonClients = append(agg.NonClients, CenterBucket{
			Center: name,
			Abbr:   abbrByName[name],
			Count:  count,
			Share:  share,
		})
	}
	sort.Slice(agg.NonClients, func(i, j int) bool { return agg.NonClients[i].Center < agg.NonClients[j].Center })

	return agg
}
