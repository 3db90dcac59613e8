package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/kwv/windperim/perimeter"
)

// uploadPage is the interactive upload form. Placeholders carry the
// configured defaults for points, buffer and zoom.
const uploadPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>windperim</title>
<style>
body{font-family:sans-serif;max-width:640px;margin:2em auto;padding:0 1em;background:#fafafa}
h1{font-size:1.4em}
form{display:grid;gap:0.8em;background:#fff;padding:1.5em;border:1px solid #ddd;border-radius:6px}
label{display:flex;flex-direction:column;gap:0.3em;font-size:0.9em}
output{font-weight:bold}
button{padding:0.6em;font-size:1em;cursor:pointer}
</style>
</head>
<body>
<h1>windperim</h1>
<p>Upload a KMZ archive of turbine locations to compute the wind farm perimeter.</p>
<form method="post" action="/generate" enctype="multipart/form-data">
<label>Archive (.kmz)
<input type="file" name="archive" accept=".kmz,.zip" required>
</label>
<label>Layer
<select name="layer"><option value="">All layers</option></select>
</label>
<label>Perimeter points: <output id="pointsOut">%d</output>
<input type="range" name="points" min="4" max="20" value="%d" oninput="pointsOut.value=this.value">
</label>
<label>Buffer (meters)
<input type="number" name="buffer" min="0" max="1000" step="10" value="%g">
</label>
<label>Zoom
<input type="number" name="zoom" min="1" max="19" value="%d">
</label>
<button type="submit">Generate perimeter</button>
</form>
<script>
const fileInput = document.querySelector('input[name="archive"]');
const layerSelect = document.querySelector('select[name="layer"]');
fileInput.addEventListener('change', async () => {
  layerSelect.innerHTML = '<option value="">All layers</option>';
  if (!fileInput.files.length) return;
  const data = new FormData();
  data.append('archive', fileInput.files[0]);
  try {
    const resp = await fetch('/layers', {method: 'POST', body: data});
    if (!resp.ok) return;
    const body = await resp.json();
    for (const name of body.layers) {
      const opt = document.createElement('option');
      opt.value = name;
      opt.textContent = name;
      layerSelect.appendChild(opt);
    }
  } catch (e) {
    console.warn('layer listing failed', e);
  }
});
</script>
</body>
</html>`

// newHTTPServer creates an HTTP server with all endpoints
func newHTTPServer(tracker *perimeter.ResultTracker, config *perimeter.Config, publisher *perimeter.Publisher) http.Handler {
	if config == nil {
		config = perimeter.DefaultConfig()
	}
	maxBytes := config.MaxArchiveBytes()

	mux := http.NewServeMux()

	// Upload form
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		fmt.Fprintf(w, uploadPage,
			config.Defaults.Points, config.Defaults.Points, config.Defaults.BufferM, config.Map.Zoom)
	})

	// Layer listing for the upload form's select box
	mux.HandleFunc("/layers", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		archive, err := readArchiveUpload(w, r, maxBytes)
		if err != nil {
			http.Error(w, err.Error(), uploadErrorStatus(err))
			return
		}

		layers, err := perimeter.ListArchiveLayers(archive)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string][]string{"layers": layers}); err != nil {
			log.Printf("Error encoding layer list: %v", err)
		}
	})

	// Pipeline endpoint: upload, generate, remember, announce, redirect
	mux.HandleFunc("/generate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		archive, err := readArchiveUpload(w, r, maxBytes)
		if err != nil {
			http.Error(w, err.Error(), uploadErrorStatus(err))
			return
		}

		opts, err := parseGenerateOptions(r, config)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		res, err := perimeter.Generate(archive, opts)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		tracker.SetResult(res)
		log.Printf("Generated perimeter: %d turbines, %d samples, %.2f km² (generation %d)",
			len(res.Turbines.Features), len(res.Samples), res.Stats.AreaSqKm, tracker.Generations())

		if publisher != nil {
			if err := publisher.PublishResult(res); err != nil {
				log.Printf("Error publishing announcement: %v", err)
			}
		}

		http.Redirect(w, r, "/map.html", http.StatusSeeOther)
	})

	// Latest interactive map
	mux.HandleFunc("/map.html", func(w http.ResponseWriter, r *http.Request) {
		res, ok := tracker.Result()
		if !ok {
			http.Error(w, "No result available yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		if _, err := w.Write(res.MapHTML); err != nil {
			log.Printf("Error writing map document: %v", err)
		}
	})

	// Latest plain-text report, served as a download
	mux.HandleFunc("/report.txt", func(w http.ResponseWriter, r *http.Request) {
		res, ok := tracker.Result()
		if !ok {
			http.Error(w, "No result available yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="PolygonPoints.txt"`)
		if _, err := io.WriteString(w, res.Report); err != nil {
			log.Printf("Error writing report: %v", err)
		}
	})

	// Latest KML export
	mux.HandleFunc("/perimeter.kml", func(w http.ResponseWriter, r *http.Request) {
		res, ok := tracker.Result()
		if !ok {
			http.Error(w, "No result available yet", http.StatusServiceUnavailable)
			return
		}
		kmlBytes, err := perimeter.PerimeterKML(res)
		if err != nil {
			log.Printf("Error building KML export: %v", err)
			http.Error(w, "KML export failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
		w.Header().Set("Cache-Control", "no-cache")
		if _, err := w.Write(kmlBytes); err != nil {
			log.Printf("Error writing KML export: %v", err)
		}
	})

	// Vector snapshot of the latest boundary
	mux.HandleFunc("/snapshot.svg", func(w http.ResponseWriter, r *http.Request) {
		res, ok := tracker.Result()
		if !ok {
			http.Error(w, "No result available yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		renderer := perimeter.NewSnapshotRenderer(res)
		if err := renderer.RenderToSVG(w); err != nil {
			log.Printf("Error encoding snapshot SVG: %v", err)
		}
	})

	// Raster snapshot of the latest boundary
	mux.HandleFunc("/snapshot.png", func(w http.ResponseWriter, r *http.Request) {
		res, ok := tracker.Result()
		if !ok {
			http.Error(w, "No result available yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		renderer := perimeter.NewSnapshotRenderer(res)
		if err := renderer.RenderToPNG(w); err != nil {
			log.Printf("Error encoding snapshot PNG: %v", err)
		}
	})

	// Service status
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		status := struct {
			Status      string      `json:"status"`
			Timestamp   time.Time   `json:"timestamp"`
			HasResult   bool        `json:"hasResult"`
			Generations uint64      `json:"generations"`
			GeneratedAt *time.Time  `json:"generatedAt,omitempty"`
			Centroid    *[2]float64 `json:"centroid,omitempty"`
		}{
			Status:      "ok",
			Timestamp:   time.Now(),
			HasResult:   tracker.HasResult(),
			Generations: tracker.Generations(),
		}
		if res, ok := tracker.Result(); ok {
			status.GeneratedAt = &res.GeneratedAt
			status.Centroid = &[2]float64{res.Centroid[1], res.Centroid[0]}
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding status: %v", err)
		}
	})

	// Wrap mux with logging middleware
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[HTTP] %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
		mux.ServeHTTP(w, r)
	})
}

// readArchiveUpload reads the multipart "archive" field, enforcing the
// configured size limit
func readArchiveUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, fmt.Errorf("parsing upload: %w", err)
	}

	file, _, err := r.FormFile("archive")
	if err != nil {
		return nil, fmt.Errorf("missing archive upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	return data, nil
}

// uploadErrorStatus maps upload failures to status codes: oversized bodies
// get 413, everything else 400
func uploadErrorStatus(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// parseGenerateOptions reads pipeline parameters from the form, falling back
// to the configured defaults
func parseGenerateOptions(r *http.Request, config *perimeter.Config) (perimeter.Options, error) {
	opts := perimeter.Options{
		Layer:        r.FormValue("layer"),
		NumPoints:    config.Defaults.Points,
		BufferMeters: config.Defaults.BufferM,
		Zoom:         config.Map.Zoom,
	}

	if v := r.FormValue("points"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid points value %q", v)
		}
		opts.NumPoints = n
	}
	if v := r.FormValue("buffer"); v != "" {
		b, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid buffer value %q", v)
		}
		opts.BufferMeters = b
	}
	if v := r.FormValue("zoom"); v != "" {
		z, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid zoom value %q", v)
		}
		opts.Zoom = z
	}
	return opts, nil
}
