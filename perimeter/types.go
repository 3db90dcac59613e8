package perimeter

import (
	"time"

	"github.com/paulmach/orb"
)

// Default generation parameters, used when an Options field is left zero.
const (
	DefaultNumPoints = 10
	DefaultZoom      = 12
)

// CRS identifies the coordinate reference system a feature set is expressed
// in: geographic WGS84, or a projected UTM zone when Geographic is false.
type CRS struct {
	Name       string
	Geographic bool
	Zone       int
	North      bool
}

// WGS84 is the geographic CRS all markup input is read in. KML mandates it,
// and shapefile layers without projection metadata are assumed to use it.
var WGS84 = CRS{Name: "EPSG:4326", Geographic: true}

// Feature is a single turbine location. Point follows the orb convention:
// lon, lat in a geographic CRS; easting, northing in a metric one.
type Feature struct {
	Name  string
	Point orb.Point
}

// FeatureSet is an ordered collection of features sharing one CRS. A set is
// never mutated after construction; reprojection returns a new set.
type FeatureSet struct {
	Features []Feature
	CRS      CRS
}

// Points returns the feature coordinates in input order.
func (fs *FeatureSet) Points() orb.MultiPoint {
	mp := make(orb.MultiPoint, len(fs.Features))
	for i, f := range fs.Features {
		mp[i] = f.Point
	}
	return mp
}

// SamplePoint is one evenly spaced boundary point. Index is 1-based to match
// the report numbering; Fraction is the normalized position along the
// boundary walk, i/N for the 0-based i, so 1.0 is never emitted.
type SamplePoint struct {
	Index    int
	Fraction float64
	Point    orb.Point
}

// Stats summarizes the perimeter geodesically. RegionTokens are truncated S2
// cell tokens covering the hull, usable as coarse region keys.
type Stats struct {
	AreaSqKm     float64  `json:"area_sq_km"`
	PerimeterKm  float64  `json:"perimeter_km"`
	RegionTokens []string `json:"region_tokens,omitempty"`
}

// Options controls a single perimeter generation. The zero value selects all
// layers, DefaultNumPoints boundary points, no buffer and DefaultZoom.
type Options struct {
	Layer        string
	NumPoints    int
	BufferMeters float64
	Zoom         int
}

// Result is the immutable product of one generation request. All geometry is
// geographic (lon, lat); Zone records the metric CRS the hull, buffer and
// centroid were computed in.
type Result struct {
	Turbines    *FeatureSet
	Hull        orb.Ring
	Samples     []SamplePoint
	Centroid    orb.Point
	Zone        CRS
	Stats       Stats
	Layer       string
	Options     Options
	MapHTML     []byte
	Report      string
	GeneratedAt time.Time
}
