package perimeter

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

//go:embed templates/map.html
var templateFS embed.FS

var mapTemplate = template.Must(template.ParseFS(templateFS, "templates/map.html"))

// mapView is the data handed to the embedded Leaflet template. The GeoJSON
// payloads are pre-marshaled and injected raw into the script block.
type mapView struct {
	CenterLat     float64
	CenterLon     float64
	Zoom          int
	Turbines      template.JS
	Perimeter     template.JS
	Samples       template.JS
	CentroidLat   float64
	CentroidLon   float64
	CentroidPopup string
}

// RenderMap builds the interactive HTML map document: an OSM base layer plus
// toggleable Turbines, Perimeter, Sampled Points and Centroid overlays,
// centered on the centroid. Equal inputs produce identical documents.
func RenderMap(res *Result) ([]byte, error) {
	turbines := geojson.NewFeatureCollection()
	for _, f := range res.Turbines.Features {
		feat := geojson.NewFeature(f.Point)
		feat.Properties["name"] = f.Name
		turbines.Append(feat)
	}
	turbinesJSON, err := turbines.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshaling turbines: %w", err)
	}

	perimeterJSON, err := geojson.NewFeature(orb.Polygon{res.Hull}).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshaling perimeter: %w", err)
	}

	samples := geojson.NewFeatureCollection()
	for _, s := range res.Samples {
		feat := geojson.NewFeature(s.Point)
		feat.Properties["index"] = s.Index
		feat.Properties["label"] = fmt.Sprintf("Point %d", s.Index)
		samples.Append(feat)
	}
	samplesJSON, err := samples.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshaling samples: %w", err)
	}

	view := mapView{
		CenterLat:   res.Centroid[1],
		CenterLon:   res.Centroid[0],
		Zoom:        res.Options.Zoom,
		Turbines:    template.JS(turbinesJSON),
		Perimeter:   template.JS(perimeterJSON),
		Samples:     template.JS(samplesJSON),
		CentroidLat: res.Centroid[1],
		CentroidLon: res.Centroid[0],
		CentroidPopup: fmt.Sprintf("Centroid<br>Lat: %.6f, Lon: %.6f",
			res.Centroid[1], res.Centroid[0]),
	}

	var buf bytes.Buffer
	if err := mapTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("rendering map template: %w", err)
	}
	return buf.Bytes(), nil
}
