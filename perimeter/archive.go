package perimeter

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ExtractArchive unpacks a zip archive (a .kmz is one) into a fresh
// temporary directory and returns its path. Nested .kmz entries are expanded
// one level deep, since exports sometimes wrap a KMZ inside a zip. The
// caller owns the directory and must remove it.
func ExtractArchive(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}

	dir, err := os.MkdirTemp("", "windperim-")
	if err != nil {
		return "", fmt.Errorf("creating work directory: %w", err)
	}

	if err := extractInto(dir, zr, true); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return dir, nil
}

func extractInto(dir string, zr *zip.Reader, expandNested bool) error {
	for _, zf := range zr.File {
		dest, err := entryPath(dir, zf.Name)
		if err != nil {
			return err
		}
		if zf.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0o755); err != nil {
				return fmt.Errorf("extracting %s: %w", zf.Name, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("extracting %s: %w", zf.Name, err)
		}

		content, err := readEntry(zf)
		if err != nil {
			return err
		}

		if expandNested && strings.EqualFold(filepath.Ext(zf.Name), ".kmz") {
			nested, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
			if err != nil {
				return fmt.Errorf("opening nested archive %s: %w", zf.Name, err)
			}
			nestedDir := strings.TrimSuffix(dest, filepath.Ext(dest))
			if err := os.MkdirAll(nestedDir, 0o755); err != nil {
				return fmt.Errorf("extracting %s: %w", zf.Name, err)
			}
			if err := extractInto(nestedDir, nested, false); err != nil {
				return err
			}
			continue
		}

		if err := os.WriteFile(dest, content, 0o644); err != nil {
			return fmt.Errorf("extracting %s: %w", zf.Name, err)
		}
	}
	return nil
}

// entryPath resolves an archive entry name inside dir, rejecting names that
// would escape it (zip-slip).
func entryPath(dir, name string) (string, error) {
	dest := filepath.Join(dir, filepath.FromSlash(name))
	if dest != filepath.Clean(dir) && !strings.HasPrefix(dest, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes extraction directory", name)
	}
	return dest, nil
}

func readEntry(zf *zip.File) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", zf.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", zf.Name, err)
	}
	return content, nil
}

// FindMarkupFile walks the extracted tree and returns the first .kml file,
// falling back to the first .shp. The walk is lexical, so repeated calls on
// the same tree pick the same file.
func FindMarkupFile(dir string) (string, error) {
	var kmlPath, shpPath string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".kml":
			if kmlPath == "" {
				kmlPath = path
			}
		case ".shp":
			if shpPath == "" {
				shpPath = path
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scanning %s: %w", dir, err)
	}

	if kmlPath != "" {
		return kmlPath, nil
	}
	if shpPath != "" {
		return shpPath, nil
	}
	return "", ErrMissingMarkupFile
}
