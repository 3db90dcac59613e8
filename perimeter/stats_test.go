package perimeter

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestBoundaryStats(t *testing.T) {
	// a 1°x1° square on the equator: about 111.2 km to a side
	ring := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}

	stats := BoundaryStats(ring)

	if math.Abs(stats.AreaSqKm-12364) > 124 {
		t.Errorf("area = %f km², want about 12364", stats.AreaSqKm)
	}
	if math.Abs(stats.PerimeterKm-444.8) > 4.5 {
		t.Errorf("perimeter = %f km, want about 444.8", stats.PerimeterKm)
	}
	if len(stats.RegionTokens) == 0 {
		t.Error("no region tokens")
	}
	for _, token := range stats.RegionTokens {
		if len(token) == 0 || len(token) > 8 {
			t.Errorf("token %q not truncated to 8 characters", token)
		}
	}
}

func TestBoundaryStats_OrientationInsensitive(t *testing.T) {
	ccw := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	cw := orb.Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}

	a := BoundaryStats(ccw)
	b := BoundaryStats(cw)

	// a clockwise ring describes the same region, not its complement
	if math.Abs(a.AreaSqKm-b.AreaSqKm) > 1 {
		t.Errorf("area differs by orientation: %f vs %f", a.AreaSqKm, b.AreaSqKm)
	}
	if math.Abs(a.PerimeterKm-b.PerimeterKm) > 1e-9 {
		t.Errorf("perimeter differs by orientation: %f vs %f", a.PerimeterKm, b.PerimeterKm)
	}
}

func TestBoundaryStats_SmallSite(t *testing.T) {
	// a 2km-ish square near 52N; area should come out close to planar
	ring := orb.Ring{
		{8.00, 52.00},
		{8.03, 52.00},
		{8.03, 52.018},
		{8.00, 52.018},
		{8.00, 52.00},
	}

	stats := BoundaryStats(ring)
	if stats.AreaSqKm <= 0 {
		t.Errorf("area = %f, want positive", stats.AreaSqKm)
	}
	if stats.AreaSqKm > 20 {
		t.Errorf("area = %f km², implausibly large for a ~2 km square", stats.AreaSqKm)
	}
	if stats.PerimeterKm <= 0 {
		t.Errorf("perimeter = %f, want positive", stats.PerimeterKm)
	}
}

func TestBoundaryStats_DegenerateRing(t *testing.T) {
	for _, ring := range []orb.Ring{
		nil,
		{{1, 1}},
		{{1, 1}, {2, 2}, {1, 1}},
	} {
		stats := BoundaryStats(ring)
		if stats.AreaSqKm != 0 || stats.PerimeterKm != 0 || stats.RegionTokens != nil {
			t.Errorf("BoundaryStats(%v) = %+v, want zero stats", ring, stats)
		}
	}
}
