package client

import (
	"fmt"
	"strings"

	"github.com/relabs-tech/pointperfect_bridge/internal/gps"
)

// stats counts fix reports per quality level. The sum of the
// per-quality counters always equals the total.
type stats struct {
	interval   int
	total      int
	perQuality [gps.NumQualities]int
}

// add records one fix. Every interval fixes it returns a summary line
// of the quality distribution, otherwise "".
func (s *stats) add(q gps.Quality) string {
	if q < 0 || int(q) >= gps.NumQualities {
		return ""
	}
	s.perQuality[q]++
	s.total++
	if s.total%s.interval != 0 {
		return ""
	}
	var parts []string
	for i, n := range s.perQuality {
		if n == 0 {
			continue
		}
		pct := float64(n) / float64(s.total) * 100
		parts = append(parts, fmt.Sprintf("%s: %.1f%%", gps.Quality(i), pct))
	}
	return strings.Join(parts, ", ")
}
