package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTileDict(t *testing.T) {
	dict, err := ParseTileDict([]byte(
		`{"nodes":["N4807E01131"],"nodeprefix":"pp/ip/L2N4875E01125/","endpoint":"pp-eu.services.u-blox.com"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"N4807E01131"}, dict.Nodes)
	assert.Equal(t, "pp/ip/L2N4875E01125/", dict.NodePrefix)
	assert.Equal(t, "pp-eu.services.u-blox.com", dict.Endpoint)
}

func TestParseTileDictRejectsMalformed(t *testing.T) {
	payloads := [][]byte{
		[]byte(`not json`),
		[]byte(`{}`),
		[]byte(`{"nodes":["N4807E01131"],"endpoint":"host"}`),
		[]byte(`{"nodes":["N4807E01131"],"nodeprefix":"pp/"}`),
		[]byte(`{"nodes":"N4807E01131","nodeprefix":"pp/","endpoint":"host"}`),
	}
	for _, p := range payloads {
		_, err := ParseTileDict(p)
		assert.Error(t, err, "payload %s", p)
	}
}

func TestNearestNode(t *testing.T) {
	dict := &TileDict{
		Nodes:      []string{"N4807E01131", "N3920W09660"},
		NodePrefix: "pp/",
		Endpoint:   "host",
	}
	assert.Equal(t, "N4807E01131", NearestNode(dict, 48.0, 11.0))
	assert.Equal(t, "N3920W09660", NearestNode(dict, 39.0, -96.0))
}

func TestNearestNodeDeterministic(t *testing.T) {
	dict := &TileDict{
		Nodes:      []string{"S2655E13470", "N5245E01185", "N3895E13960", "N3630E12820"},
		NodePrefix: "pp/",
		Endpoint:   "host",
	}
	first := NearestNode(dict, 36.0, 135.0)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, NearestNode(dict, 36.0, 135.0))
	}
}

func TestNearestNodeTieKeepsFirst(t *testing.T) {
	// two nodes symmetric around the query latitude
	dict := &TileDict{
		Nodes:      []string{"N4900E01100", "N4700E01100"},
		NodePrefix: "pp/",
		Endpoint:   "host",
	}
	assert.Equal(t, "N4900E01100", NearestNode(dict, 48.0, 11.0))

	// reversed order keeps the other one
	dict.Nodes = []string{"N4700E01100", "N4900E01100"}
	assert.Equal(t, "N4700E01100", NearestNode(dict, 48.0, 11.0))
}

func TestNearestNodeSkipsMalformedIDs(t *testing.T) {
	dict := &TileDict{
		Nodes:      []string{"bogus", "N4807X01131", "N4807E01131", "N4807E0113"},
		NodePrefix: "pp/",
		Endpoint:   "host",
	}
	assert.Equal(t, "N4807E01131", NearestNode(dict, 48.0, 11.0))

	dict.Nodes = []string{"bogus"}
	assert.Equal(t, "", NearestNode(dict, 48.0, 11.0))
}

func TestRegionDict(t *testing.T) {
	dict := RegionDict("/pp/ip/", "pp.services.u-blox.com")
	require.Len(t, dict.Nodes, len(regionAnchors))
	assert.Equal(t, "/pp/ip/", dict.NodePrefix)
	assert.Equal(t, "pp.services.u-blox.com", dict.Endpoint)

	// a fix near Kansas detects the us region
	node := NearestNode(dict, 48.0, -122.0)
	assert.Equal(t, "us", RegionFor(node))

	// and one near Munich the eu region
	node = NearestNode(dict, 48.1173, 11.5167)
	assert.Equal(t, "eu", RegionFor(node))

	assert.Equal(t, "", RegionFor("N0000E00000"))
}
