package perimeter

import "errors"

// Sentinel errors for the generation pipeline. Callers match them with
// errors.Is; pipeline functions wrap them with detail via fmt.Errorf("%w: ...").
var (
	// ErrMissingMarkupFile means the archive held no .kml or .shp entry.
	ErrMissingMarkupFile = errors.New("no KML or shapefile found in archive")

	// ErrMarkupParse means a markup file existed but could not be decoded.
	ErrMarkupParse = errors.New("markup file could not be parsed")

	// ErrEmptyLayer means the selected layer held no point features.
	ErrEmptyLayer = errors.New("no point features in layer")

	// ErrDegenerateGeometry means the point set cannot enclose an area.
	ErrDegenerateGeometry = errors.New("need at least 3 non-collinear points")

	// ErrInvalidSampleCount means the requested boundary point count is < 1.
	ErrInvalidSampleCount = errors.New("sample count must be at least 1")

	// ErrInvalidBufferDistance means a negative buffer distance was requested.
	ErrInvalidBufferDistance = errors.New("buffer distance must not be negative")
)
