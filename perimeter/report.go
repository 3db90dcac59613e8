package perimeter

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// FormatReport renders the plain-text artifact: the numbered boundary point
// list with longitude first, then the centroid with latitude first at six
// decimal places.
func FormatReport(samples []SamplePoint, centroid orb.Point) string {
	var b strings.Builder
	b.WriteString("Perimeter Points (longitude, latitude):\n")
	for _, s := range samples {
		fmt.Fprintf(&b, "%d: (%v, %v)\n", s.Index, s.Point[0], s.Point[1])
	}
	b.WriteString("\nCentroid (latitude, longitude):\n")
	fmt.Fprintf(&b, "%.6f, %.6f", centroid[1], centroid[0])
	return b.String()
}
