package perimeter

import (
	"bytes"
	"fmt"

	kml "github.com/twpayne/go-kml/v3"
)

// PerimeterKML renders a result as a KML document mirroring the interactive
// map's layers, for viewing in Google Earth: a Perimeter polygon folder, a
// Sampled Points folder, a Turbines folder and the centroid placemark.
func PerimeterKML(res *Result) ([]byte, error) {
	ringCoords := make([]kml.Coordinate, len(res.Hull))
	for i, p := range res.Hull {
		ringCoords[i] = kml.Coordinate{Lon: p[0], Lat: p[1]}
	}

	sampleElements := []kml.Element{kml.Name("Sampled Points")}
	for _, s := range res.Samples {
		sampleElements = append(sampleElements, kml.Placemark(
			kml.Name(fmt.Sprintf("Point %d", s.Index)),
			kml.Point(kml.Coordinates(kml.Coordinate{Lon: s.Point[0], Lat: s.Point[1]})),
		))
	}

	turbineElements := []kml.Element{kml.Name("Turbines")}
	for _, f := range res.Turbines.Features {
		turbineElements = append(turbineElements, kml.Placemark(
			kml.Name(f.Name),
			kml.Point(kml.Coordinates(kml.Coordinate{Lon: f.Point[0], Lat: f.Point[1]})),
		))
	}

	doc := kml.KML(kml.Document(
		kml.Name("Wind farm perimeter"),
		kml.Folder(
			kml.Name("Perimeter"),
			kml.Placemark(
				kml.Name("Perimeter"),
				kml.Polygon(kml.OuterBoundaryIs(kml.LinearRing(kml.Coordinates(ringCoords...)))),
			),
		),
		kml.Folder(sampleElements...),
		kml.Folder(turbineElements...),
		kml.Placemark(
			kml.Name("Centroid"),
			kml.Description(fmt.Sprintf("Lat: %.6f, Lon: %.6f", res.Centroid[1], res.Centroid[0])),
			kml.Point(kml.Coordinates(kml.Coordinate{Lon: res.Centroid[0], Lat: res.Centroid[1]})),
		),
	))

	var buf bytes.Buffer
	if err := doc.WriteIndent(&buf, "", "  "); err != nil {
		return nil, fmt.Errorf("writing KML: %w", err)
	}
	return buf.Bytes(), nil
}
