package geo

import (
	"context"
	"fmt"
	"strconv"

	"sbtalks/internal/core"
	"sbtalks/internal/tabular"
)

// Coordinate is a ZIP centroid from the local geocoding reference.
type Coordinate struct {
	Lat float64
	Lon float64
}

// ZipIndex is the static ZIP-to-coordinate lookup, loaded once per run.
type ZipIndex struct {
	byZip map[string]Coordinate
}

// ZipColumns names the columns of the ZIP reference file.
type ZipColumns struct {
	Zip string
	Lat string
	Lon string
}

// DefaultZipColumns matches data/zip_reference.csv.
func DefaultZipColumns() ZipColumns {
	return ZipColumns{Zip: "zip", Lat: "lat", Lon: "lon"}
}

// LoadZipIndex reads the ZIP geocoding reference. Like the center
// reference, an absent or empty index is fatal at startup. Rows with
// unparseable coordinates are skipped; the ZIP simply stays unresolvable.
func LoadZipIndex(ctx context.Context, src tabular.Source, cols ZipColumns) (ZipIndex, error) {
	header, rows, err := src.ReadAll(ctx)
	if err != nil {
		return ZipIndex{}, fmt.Errorf("%w: zip index: %v", core.ErrReferenceDataMissing, err)
	}

	byZip := make(map[string]Coordinate, len(rows))
	for _, row := range tabular.Records(header, rows) {
		zip := row[cols.Zip]
		lat, errLat := strconv.ParseFloat(row[cols.Lat], 64)
		lon, errLon := strconv.ParseFloat(row[cols.Lon], 64)
		if zip == "" || errLat != nil || errLon != nil {
			continue
		}
		byZip[zip] = Coordinate{Lat: lat, Lon: lon}
	}
	if len(byZip) == 0 {
		return ZipIndex{}, fmt.Errorf("%w: zip index is empty", core.ErrReferenceDataMissing)
	}
	return ZipIndex{byZip: byZip}, nil
}

// NewZipIndex builds an index from in-memory entries (tests).
func NewZipIndex(entries map[string]Coordinate) ZipIndex {
	byZip := make(map[string]Coordinate, len(entries))
	for k, v := range entries {
		byZip[k] = v
	}
	return ZipIndex{byZip: byZip}
}

// Lookup returns the centroid for a normalized 5-digit ZIP.
func (z ZipIndex) Lookup(zip string) (Coordinate, bool) {
	c, ok := z.byZip[zip]
	return c, ok
}

// Len reports the number of known ZIPs.
func (z ZipIndex) Len() int { return len(z.byZip) }
