package perimeter

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// KML nests placemarks inside arbitrarily deep folder trees. The decoder
// structs mirror that shape; only Point placemarks matter here, everything
// else is skipped.
type kmlPoint struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPlacemark struct {
	Name  string    `xml:"name"`
	Point *kmlPoint `xml:"Point"`
}

type kmlFolder struct {
	Name       string         `xml:"name"`
	Folders    []kmlFolder    `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlDocument struct {
	Name       string         `xml:"name"`
	Folders    []kmlFolder    `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlRoot struct {
	Document   *kmlDocument   `xml:"Document"`
	Folders    []kmlFolder    `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

func parseKML(path string) (*kmlRoot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	var root kmlRoot
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMarkupParse, filepath.Base(path), err)
	}
	return &root, nil
}

// listKMLLayers returns folder names in document order. A folderless
// document is a single layer named after the document, "Default" when the
// document carries no name either.
func listKMLLayers(path string) ([]string, error) {
	root, err := parseKML(path)
	if err != nil {
		return nil, err
	}

	var layers []string
	var walk func(folders []kmlFolder)
	walk = func(folders []kmlFolder) {
		for _, f := range folders {
			if f.Name != "" {
				layers = append(layers, f.Name)
			}
			walk(f.Folders)
		}
	}
	walk(root.Folders)
	if root.Document != nil {
		walk(root.Document.Folders)
	}

	if len(layers) == 0 {
		name := "Default"
		if root.Document != nil && root.Document.Name != "" {
			name = root.Document.Name
		}
		layers = []string{name}
	}
	return layers, nil
}

// readKMLPoints collects the Point placemarks in the named folder, or in the
// whole document when layer is empty. KML coordinates are always geographic
// "lon,lat[,alt]" tuples; altitude is dropped.
func readKMLPoints(path, layer string) (*FeatureSet, error) {
	root, err := parseKML(path)
	if err != nil {
		return nil, err
	}

	fs := &FeatureSet{CRS: WGS84}
	add := func(placemarks []kmlPlacemark) {
		for _, pm := range placemarks {
			if pm.Point == nil {
				continue
			}
			pt, ok := parseCoordinate(pm.Point.Coordinates)
			if !ok {
				continue
			}
			fs.Features = append(fs.Features, Feature{Name: pm.Name, Point: pt})
		}
	}

	var walk func(folders []kmlFolder, selected bool)
	walk = func(folders []kmlFolder, selected bool) {
		for _, f := range folders {
			in := selected || layer == "" || f.Name == layer
			if in {
				add(f.Placemarks)
			}
			walk(f.Folders, in)
		}
	}

	wholeDoc := layer == ""
	if wholeDoc {
		add(root.Placemarks)
		if root.Document != nil {
			add(root.Document.Placemarks)
		}
	} else if root.Document != nil && root.Document.Name == layer {
		// the folderless document itself is the layer
		add(root.Document.Placemarks)
		wholeDoc = true
	}
	walk(root.Folders, wholeDoc)
	if root.Document != nil {
		walk(root.Document.Folders, wholeDoc)
	}

	return fs, nil
}

// parseCoordinate reads the first "lon,lat[,alt]" tuple of a KML
// coordinates block.
func parseCoordinate(coords string) (orb.Point, bool) {
	tuples := strings.Fields(coords)
	if len(tuples) == 0 {
		return orb.Point{}, false
	}
	vals := strings.Split(tuples[0], ",")
	if len(vals) < 2 {
		return orb.Point{}, false
	}
	lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
	lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
	if err1 != nil || err2 != nil {
		return orb.Point{}, false
	}
	return orb.Point{lon, lat}, true
}
