package client

import (
	"testing"

	"github.com/relabs-tech/pointperfect_bridge/internal/gps"
	"github.com/stretchr/testify/assert"
)

func TestStatsSummary(t *testing.T) {
	s := &stats{interval: 4}

	assert.Empty(t, s.add(gps.NoFix))
	assert.Empty(t, s.add(gps.GNSS))
	assert.Empty(t, s.add(gps.GNSS))
	line := s.add(gps.Fixed)
	assert.Equal(t, "NOFIX: 25.0%, GNSS: 50.0%, FIXED: 25.0%", line)

	// counters keep accumulating across intervals
	assert.Empty(t, s.add(gps.Fixed))
	assert.Empty(t, s.add(gps.Fixed))
	assert.Empty(t, s.add(gps.Fixed))
	line = s.add(gps.Fixed)
	assert.Equal(t, "NOFIX: 12.5%, GNSS: 25.0%, FIXED: 62.5%", line)
}

func TestStatsCountersMatchTotal(t *testing.T) {
	s := &stats{interval: 100}
	qualities := []gps.Quality{
		gps.NoFix, gps.GNSS, gps.DGNSS, gps.Fixed, gps.Float,
		gps.DeadReckoning, gps.Quality(42), // out of range, not counted
	}
	for _, q := range qualities {
		s.add(q)
	}
	sum := 0
	for _, n := range s.perQuality {
		sum += n
	}
	assert.Equal(t, s.total, sum)
	assert.Equal(t, 6, s.total)
}
