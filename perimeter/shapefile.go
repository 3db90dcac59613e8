package perimeter

import (
	"fmt"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

// readShapefilePoints loads the point shapes of an ESRI shapefile. Turbine
// names come from the first label-like attribute field when the companion
// .dbf carries one. Shapefiles inside a KMZ-style upload carry no projection
// metadata we can trust, so coordinates are taken as geographic (the
// default-CRS rule).
func readShapefilePoints(path string) (*FeatureSet, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMarkupParse, filepath.Base(path), err)
	}
	defer r.Close()

	nameField := -1
	for i, f := range r.Fields() {
		switch strings.ToLower(f.String()) {
		case "name", "title", "label", "id":
			nameField = i
		}
		if nameField >= 0 {
			break
		}
	}

	fs := &FeatureSet{CRS: WGS84}
	for r.Next() {
		row, shape := r.Shape()

		var pt orb.Point
		switch s := shape.(type) {
		case *shp.Point:
			pt = orb.Point{s.X, s.Y}
		case *shp.PointZ:
			pt = orb.Point{s.X, s.Y}
		case *shp.PointM:
			pt = orb.Point{s.X, s.Y}
		default:
			// only point layers feed the perimeter
			continue
		}

		name := ""
		if nameField >= 0 {
			name = strings.TrimSpace(r.ReadAttribute(row, nameField))
		}
		fs.Features = append(fs.Features, Feature{Name: name, Point: pt})
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMarkupParse, filepath.Base(path), err)
	}
	return fs, nil
}
