package perimeter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Generate runs the full perimeter pipeline over an uploaded KMZ archive:
// extract, locate the markup file, read turbine points, project into the
// derived UTM zone, hull, optional outward buffer, project back, resample
// the boundary, and render the artifacts. Every failure aborts this request
// only; the extraction directory is always removed.
func Generate(archive []byte, opts Options) (*Result, error) {
	if opts.NumPoints == 0 {
		opts.NumPoints = DefaultNumPoints
	}
	if opts.Zoom == 0 {
		opts.Zoom = DefaultZoom
	}
	if opts.NumPoints < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSampleCount, opts.NumPoints)
	}
	if opts.BufferMeters < 0 {
		return nil, fmt.Errorf("%w: %g m", ErrInvalidBufferDistance, opts.BufferMeters)
	}

	dir, err := ExtractArchive(archive)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	markupPath, err := FindMarkupFile(dir)
	if err != nil {
		return nil, err
	}

	turbines, err := ReadPoints(markupPath, opts.Layer)
	if err != nil {
		return nil, err
	}
	if len(turbines.Features) == 0 {
		if opts.Layer != "" {
			return nil, fmt.Errorf("%w: layer %q", ErrEmptyLayer, opts.Layer)
		}
		return nil, fmt.Errorf("%w: %s", ErrEmptyLayer, filepath.Base(markupPath))
	}

	metric, err := ToMetric(turbines)
	if err != nil {
		return nil, err
	}

	hull, err := ConvexHull(metric.Points())
	if err != nil {
		return nil, err
	}

	hull, err = BufferHull(hull, opts.BufferMeters)
	if err != nil {
		return nil, err
	}

	boundary := ToGeographicRing(hull, metric.CRS)

	samples, err := SampleBoundary(boundary, opts.NumPoints)
	if err != nil {
		return nil, err
	}

	metricCentroid, err := CentroidOf(metric)
	if err != nil {
		return nil, err
	}
	centroid := ToGeographicPoint(metricCentroid, metric.CRS)

	res := &Result{
		Turbines:    turbines,
		Hull:        boundary,
		Samples:     samples,
		Centroid:    centroid,
		Zone:        metric.CRS,
		Stats:       BoundaryStats(boundary),
		Layer:       opts.Layer,
		Options:     opts,
		Report:      FormatReport(samples, centroid),
		GeneratedAt: time.Now(),
	}

	html, err := RenderMap(res)
	if err != nil {
		return nil, err
	}
	res.MapHTML = html

	return res, nil
}
