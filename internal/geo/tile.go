// Package geo implements the PointPerfect tile naming scheme and the
// nearest-correction-node search.
package geo

import (
	"fmt"
	"math"
)

// tileEdges maps tile level 0..2 to the tile edge size in degrees.
var tileEdges = [3]float64{10.0, 5.0, 2.5}

// TileTopic returns the metadata topic of the tile containing the
// given position, e.g. "pp/ip/L2N4875E01125/dict". The embedded
// coordinates are the tile center in hundredths of a degree.
func TileTopic(level int, lat, lon float64) string {
	delta := tileEdges[level]
	ns := 'N'
	if lat < 0 {
		ns = 'S'
	}
	ew := 'E'
	if lon < 0 {
		ew = 'W'
	}
	// lower left corner of the tile, shifted to the tile center
	clat := math.Floor(lat/delta)*delta + delta/2
	clon := math.Floor(lon/delta)*delta + delta/2
	slat := int(math.Abs(math.Round(clat * 100)))
	slon := int(math.Abs(math.Round(clon * 100)))
	return fmt.Sprintf("pp/ip/L%d%c%04d%c%05d/dict", level, ns, slat, ew, slon)
}
