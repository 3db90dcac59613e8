package perimeter

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/wroge/wgs84"
)

// UTMZone builds the projected CRS for a zone and hemisphere.
func UTMZone(zone int, north bool) CRS {
	epsg := 32700 + zone
	if north {
		epsg = 32600 + zone
	}
	return CRS{Name: fmt.Sprintf("EPSG:%d", epsg), Zone: zone, North: north}
}

// UTMZoneFor derives the UTM zone covering a point set from its mean
// longitude, and the hemisphere from its mean latitude. Deriving the zone
// from the data keeps hull and buffer distances metric for sites anywhere on
// the globe.
func UTMZoneFor(points orb.MultiPoint) CRS {
	var sumLon, sumLat float64
	for _, p := range points {
		sumLon += p[0]
		sumLat += p[1]
	}
	n := float64(len(points))
	meanLon := sumLon / n
	meanLat := sumLat / n

	zone := int(math.Floor((meanLon+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	return UTMZone(zone, meanLat >= 0)
}

// ToMetric reprojects a geographic feature set into the UTM zone derived
// from its own extent. A set already in a metric CRS is returned unchanged.
func ToMetric(fs *FeatureSet) (*FeatureSet, error) {
	if !fs.CRS.Geographic {
		return fs, nil
	}
	if len(fs.Features) == 0 {
		return nil, ErrEmptyLayer
	}

	crs := UTMZoneFor(fs.Points())
	forward := wgs84.LonLat().To(wgs84.UTM(float64(crs.Zone), crs.North))

	out := &FeatureSet{Features: make([]Feature, len(fs.Features)), CRS: crs}
	for i, f := range fs.Features {
		east, north, _ := forward(f.Point[0], f.Point[1], 0)
		out.Features[i] = Feature{Name: f.Name, Point: orb.Point{east, north}}
	}
	return out, nil
}

// ToGeographicPoint transforms a metric point back to lon/lat.
func ToGeographicPoint(p orb.Point, crs CRS) orb.Point {
	if crs.Geographic {
		return p
	}
	inverse := wgs84.UTM(float64(crs.Zone), crs.North).To(wgs84.LonLat())
	lon, lat, _ := inverse(p[0], p[1], 0)
	return orb.Point{lon, lat}
}

// ToGeographicRing transforms every vertex of a metric ring back to lon/lat,
// preserving order and closure.
func ToGeographicRing(r orb.Ring, crs CRS) orb.Ring {
	if crs.Geographic {
		return r
	}
	inverse := wgs84.UTM(float64(crs.Zone), crs.North).To(wgs84.LonLat())
	out := make(orb.Ring, len(r))
	for i, p := range r {
		lon, lat, _ := inverse(p[0], p[1], 0)
		out[i] = orb.Point{lon, lat}
	}
	return out
}
