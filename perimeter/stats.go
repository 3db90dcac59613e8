package perimeter

import (
	"math"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

// earthRadiusKm is the mean Earth radius used to scale unit-sphere measures.
const earthRadiusKm = 6371.01

// BoundaryStats measures a closed geographic ring geodesically: enclosed
// area in km², boundary length in km, and truncated S2 cell tokens covering
// the region. Rings too small to form a loop yield zero stats.
func BoundaryStats(ring orb.Ring) Stats {
	if len(ring) < 4 {
		return Stats{}
	}

	// the ring is closed, the s2 loop wants the vertex list open
	pts := make([]s2.Point, 0, len(ring)-1)
	for _, p := range ring[:len(ring)-1] {
		pts = append(pts, s2.PointFromLatLng(s2.LatLngFromDegrees(p[1], p[0])))
	}
	loop := s2.LoopFromPoints(pts)
	if loop.Area() > 2*math.Pi {
		// wound clockwise: the loop covers everything but the hull
		loop.Invert()
	}

	var lengthKm float64
	for i := 1; i < len(ring); i++ {
		a := s2.LatLngFromDegrees(ring[i-1][1], ring[i-1][0])
		b := s2.LatLngFromDegrees(ring[i][1], ring[i][0])
		lengthKm += a.Distance(b).Radians() * earthRadiusKm
	}

	tokens := make([]string, 0, 4)
	for _, id := range loop.CellUnionBound() {
		token := id.ToToken()
		if len(token) > 8 {
			token = token[:8]
		}
		tokens = append(tokens, token)
	}

	return Stats{
		AreaSqKm:     loop.Area() * earthRadiusKm * earthRadiusKm,
		PerimeterKm:  lengthKm,
		RegionTokens: tokens,
	}
}
