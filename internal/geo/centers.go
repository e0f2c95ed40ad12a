// Package geo owns the static reference data (centers, ZIP coordinates),
// nearest-center assignment, and the aggregate geographic outputs. All
// lookups are local; nothing here touches the network.
package geo

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"sbtalks/internal/core"
	"sbtalks/internal/tabular"
)

// CenterColumns names the columns of the center reference file.
type CenterColumns struct {
	Name string
	Abbr string
	Lat  string
	Lon  string
}

// DefaultCenterColumns matches data/centers.csv.
func DefaultCenterColumns() CenterColumns {
	return CenterColumns{Name: "center_name", Abbr: "center_abbr", Lat: "lat", Lon: "lon"}
}

// CenterSet is the immutable per-run center reference.
type CenterSet struct {
	centers []core.Center
}

// LoadCenters reads the center reference. An absent or empty reference is
// fatal at startup: both the ZIP fallback and non-client bucketing depend
// on it.
func LoadCenters(ctx context.Context, src tabular.Source, cols CenterColumns) (CenterSet, error) {
	header, rows, err := src.ReadAll(ctx)
	if err != nil {
		return CenterSet{}, fmt.Errorf("%w: centers: %v", core.ErrReferenceDataMissing, err)
	}

	var centers []core.Center
	for i, row := range tabular.Records(header, rows) {
		lat, errLat := strconv.ParseFloat(row[cols.Lat], 64)
		lon, errLon := strconv.ParseFloat(row[cols.Lon], 64)
		if errLat != nil || errLon != nil {
			return CenterSet{}, fmt.Errorf("%w: centers row %d: bad coordinate", core.ErrReferenceDataMissing, i+1)
		}
		c := core.Center{
			Name: row[cols.Name],
			Abbr: row[cols.Abbr],
			Lat:  lat,
			Lon:  lon,
		}
		if err := c.Validate(); err != nil {
			return CenterSet{}, fmt.Errorf("%w: centers row %d: %v", core.ErrReferenceDataMissing, i+1, err)
		}
		centers = append(centers, c)
	}
	if len(centers) == 0 {
		return CenterSet{}, fmt.Errorf("%w: center reference is empty", core.ErrReferenceDataMissing)
	}

	// Stable order so ties in Nearest resolve to the lexically-first name.
	sort.Slice(centers, func(i, j int) bool { return centers[i].Name < centers[j].Name })
	return CenterSet{centers: centers}, nil
}

// NewCenterSet builds a set from in-memory centers (tests, embedding).
func NewCenterSet(centers []core.Center) (CenterSet, error) {
	if len(centers) == 0 {
		return CenterSet{}, fmt.Errorf("%w: center reference is empty", core.ErrReferenceDataMissing)
	}
	cs := make([]core.Center, len(centers))
	copy(cs, centers)
	sort.Slice(cs, func(i, j int) bool { return cs[i].Name < cs[j].Name })
	return CenterSet{centers: cs}, nil
}

// Centers returns the centers in name order.
func (s CenterSet) Centers() []core.Center {
	out := make([]core.Center, len(s.centers))
	copy(out, s.centers)
	return out
}

// Len reports the number of centers.
func (s CenterSet) Len() int { return len(s.centers) }

// Nearest returns the center closest to the coordinate and the distance in
// miles. Exact ties resolve to the lexically-first center name; the slice
// is already name-sorted so strict less-than does that.
func (s CenterSet) Nearest(lat, lon float64) (core.Center, float64) {
	best := s.centers[0]
	bestDist := HaversineMiles(lat, lon, best.Lat, best.Lon)
	for _, c := range s.centers[1:] {
		if d := HaversineMiles(lat, lon, c.Lat, c.Lon); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

const earthRadiusMiles = 3958.7613

// HaversineMiles returns the great-circle distance between two coordinates.
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(a))
}
