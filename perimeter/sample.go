package perimeter

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/resample"
)

// SampleBoundary walks a closed ring and returns n points at even arc
// length, at fractions i/n for i = 0..n-1. The walk is half-open: fraction
// 1.0 is the start point again and is never emitted. n = 1 yields the
// ring's first vertex.
func SampleBoundary(ring orb.Ring, n int) ([]SamplePoint, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSampleCount, n)
	}
	if len(ring) < 2 {
		return nil, fmt.Errorf("%w: boundary has no extent", ErrDegenerateGeometry)
	}
	if n == 1 {
		return []SamplePoint{{Index: 1, Fraction: 0, Point: ring[0]}}, nil
	}

	// n+1 evenly spaced points over the closed ring; the last one closes
	// the loop at fraction 1.0 and is dropped
	ls := resample.Resample(orb.LineString(ring).Clone(), planar.Distance, n+1)
	samples := make([]SamplePoint, n)
	for i := 0; i < n; i++ {
		samples[i] = SamplePoint{
			Index:    i + 1,
			Fraction: float64(i) / float64(n),
			Point:    ls[i],
		}
	}
	return samples, nil
}
