package perimeter

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// ConvexHull computes the convex hull of a point set with Andrew's monotone
// chain and returns it as a closed counter-clockwise ring. Point sets that
// cannot enclose an area (fewer than 3 distinct points, or all collinear)
// yield ErrDegenerateGeometry.
func ConvexHull(points orb.MultiPoint) (orb.Ring, error) {
	if len(points) < 3 {
		return nil, fmt.Errorf("%w: got %d points", ErrDegenerateGeometry, len(points))
	}

	pts := make([]orb.Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i][0] == pts[j][0] {
			return pts[i][1] < pts[j][1]
		}
		return pts[i][0] < pts[j][0]
	})

	// cross > 0 means o->a->b turns counter-clockwise
	cross := func(o, a, b orb.Point) float64 {
		return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
	}

	var lower []orb.Point
	for _, p := range pts {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	var upper []orb.Point
	for i := len(pts) - 1; i >= 0; i-- {
		p := pts[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// last point of each chain is the first of the other
	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	if len(hull) < 3 {
		return nil, fmt.Errorf("%w: points are collinear", ErrDegenerateGeometry)
	}

	ring := orb.Ring(hull)
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring, nil
}

// BufferHull grows a closed metric-space ring outward by the given distance
// in meters. Every vertex is scattered into a circle of offset points and
// the cloud is re-hulled; for a convex ring this equals the Minkowski disk
// sum with the corners rounded at circle resolution. Zero distance returns
// the ring unchanged.
func BufferHull(ring orb.Ring, meters float64) (orb.Ring, error) {
	if meters < 0 {
		return nil, fmt.Errorf("%w: %g m", ErrInvalidBufferDistance, meters)
	}
	if meters == 0 {
		return ring, nil
	}

	const steps = 32
	cloud := make(orb.MultiPoint, 0, len(ring)*steps)
	for _, v := range ring {
		for i := 0; i < steps; i++ {
			a := 2 * math.Pi * float64(i) / steps
			cloud = append(cloud, orb.Point{
				v[0] + meters*math.Cos(a),
				v[1] + meters*math.Sin(a),
			})
		}
	}
	return ConvexHull(cloud)
}
