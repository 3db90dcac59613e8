package perimeter

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// CentroidOf is the coordinate mean of the turbine positions. It expects the
// metric feature set so the mean is taken over distances, not degrees; the
// caller reprojects the result back to lon/lat.
func CentroidOf(metric *FeatureSet) (orb.Point, error) {
	if len(metric.Features) == 0 {
		return orb.Point{}, ErrEmptyLayer
	}
	c, _ := planar.CentroidArea(metric.Points())
	return c, nil
}
