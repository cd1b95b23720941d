package geo

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// TileDict is the metadata published on a tile's /dict topic: the
// correction nodes available within the tile, the topic prefix their
// streams are published under, and the broker endpoint serving them.
// A dictionary is replaced wholesale on every metadata message, never
// mutated in place.
type TileDict struct {
	Nodes      []string `json:"nodes"`
	NodePrefix string   `json:"nodeprefix"`
	Endpoint   string   `json:"endpoint"`
}

// ParseTileDict decodes a tile metadata payload. A payload that does
// not carry the expected structure is rejected; the caller keeps its
// previous dictionary in that case.
func ParseTileDict(payload []byte) (*TileDict, error) {
	var dict TileDict
	if err := json.Unmarshal(payload, &dict); err != nil {
		return nil, fmt.Errorf("invalid tile metadata: %w", err)
	}
	if dict.Nodes == nil || dict.NodePrefix == "" || dict.Endpoint == "" {
		return nil, fmt.Errorf("tile metadata missing required fields")
	}
	return &dict, nil
}

// nodeAnchor decodes a node identifier like "N4807E01131" into its
// anchor point in hundredths of a degree.
func nodeAnchor(id string) (lat, lon int, ok bool) {
	if len(id) != 11 {
		return 0, 0, false
	}
	lat, ok = hemiValue(id[0], id[1:5], 'N', 'S')
	if !ok {
		return 0, 0, false
	}
	lon, ok = hemiValue(id[5], id[6:11], 'E', 'W')
	if !ok {
		return 0, 0, false
	}
	return lat, lon, true
}

func hemiValue(hemi byte, digits string, pos, neg byte) (int, bool) {
	v, err := strconv.Atoi(digits)
	if err != nil || v < 0 {
		return 0, false
	}
	switch hemi {
	case pos:
		return v, true
	case neg:
		return -v, true
	}
	return 0, false
}

// NearestNode returns the node of the dictionary closest to the given
// position. Distances are compared with a planar approximation: the
// squared latitude/longitude deltas in hundredths of a degree, the
// longitude delta rescaled by cos(lat). Only the relative ordering
// matters, so the approximation is sufficient. Ties keep the earliest
// node in the dictionary's node order. Returns "" if no node id
// decodes.
func NearestNode(dict *TileDict, lat, lon float64) string {
	queryLat := math.Round(lat * 100)
	queryLon := math.Round(lon * 100)
	lonFactor := math.Cos(lat * math.Pi / 180)

	best := ""
	bestScore := math.Inf(1)
	for _, id := range dict.Nodes {
		nlat, nlon, ok := nodeAnchor(id)
		if !ok {
			continue
		}
		dlat := float64(nlat) - queryLat
		dlon := (float64(nlon) - queryLon) * lonFactor
		score := dlat*dlat + dlon*dlon
		if score < bestScore {
			bestScore = score
			best = id
		}
	}
	return best
}
