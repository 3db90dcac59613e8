package perimeter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ListLayers enumerates the feature layers of a markup file: KML folder
// names in document order, or the shapefile's base name.
func ListLayers(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".kml":
		return listKMLLayers(path)
	case ".shp":
		return []string{layerNameFor(path)}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported markup file %s", ErrMarkupParse, filepath.Base(path))
	}
}

// ReadPoints loads the turbine point features of a markup file. An empty
// layer name selects every layer. Features the file leaves unnamed get
// sequential "Turbine N" names for the map popups.
func ReadPoints(path, layer string) (*FeatureSet, error) {
	var (
		fs  *FeatureSet
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".kml":
		fs, err = readKMLPoints(path, layer)
	case ".shp":
		if layer != "" && layer != layerNameFor(path) {
			fs = &FeatureSet{CRS: WGS84}
		} else {
			fs, err = readShapefilePoints(path)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported markup file %s", ErrMarkupParse, filepath.Base(path))
	}
	if err != nil {
		return nil, err
	}

	for i := range fs.Features {
		if fs.Features[i].Name == "" {
			fs.Features[i].Name = fmt.Sprintf("Turbine %d", i+1)
		}
	}
	return fs, nil
}

// ListArchiveLayers extracts an uploaded archive just far enough to
// enumerate its layers, then cleans up.
func ListArchiveLayers(archive []byte) ([]string, error) {
	dir, err := ExtractArchive(archive)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path, err := FindMarkupFile(dir)
	if err != nil {
		return nil, err
	}
	return ListLayers(path)
}

func layerNameFor(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
