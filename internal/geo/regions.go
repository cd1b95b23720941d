package geo

// regionAnchors maps the center point of each rectangular service
// region to its region code, used for detecting the region by
// proximity. The slice order is fixed so tie-breaking between anchors
// is deterministic. These mappings may be inaccurate or out of date;
// check the PointPerfect documentation for the latest information.
var regionAnchors = []struct {
	Node   string
	Region string
}{
	{"S2655E13470", "au"},
	{"N5245E01185", "eu"},
	{"N3895E13960", "jp"}, // East
	{"N3310E13220", "jp"}, // West
	{"N3630E12820", "kr"},
	{"N3920W09660", "us"},
}

// RegionDict builds a synthetic tile dictionary whose nodes are the
// region anchor points, allowing region detection to reuse the
// nearest-node search.
func RegionDict(nodePrefix, endpoint string) *TileDict {
	nodes := make([]string, len(regionAnchors))
	for i, a := range regionAnchors {
		nodes[i] = a.Node
	}
	return &TileDict{Nodes: nodes, NodePrefix: nodePrefix, Endpoint: endpoint}
}

// RegionFor returns the region code of an anchor node id, or "" if the
// id is not a region anchor.
func RegionFor(node string) string {
	for _, a := range regionAnchors {
		if a.Node == node {
			return a.Region
		}
	}
	return ""
}
