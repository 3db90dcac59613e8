package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/kwv/windperim/perimeter"
)

// App encapsulates the application state and dependencies
type App struct {
	Config     *perimeter.Config
	Tracker    *perimeter.ResultTracker
	MQTTClient *perimeter.MQTTClient
	Publisher  *perimeter.Publisher

	// CLI Flags (effectively dependencies)
	Input      string
	Layer      string
	Points     int
	Buffer     float64
	Zoom       int
	OutputDir  string
	Format     string
	ConfigFile string
	HttpPort   int
	HttpMode   bool
	MqttMode   bool
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{
		Tracker: perimeter.NewResultTracker(),
	}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.Input = opts.Input
	a.Layer = opts.Layer
	a.Points = opts.Points
	a.Buffer = opts.Buffer
	a.Zoom = opts.Zoom
	a.OutputDir = opts.OutputDir
	a.Format = opts.Format
	a.ConfigFile = opts.ConfigFile
	a.HttpPort = opts.HttpPort
	a.HttpMode = opts.HttpMode
	a.MqttMode = opts.MqttMode
}

// RunListLayers prints the feature layers of the --input archive
func (a *App) RunListLayers() error {
	if a.Input == "" {
		return fmt.Errorf("--list-layers requires --input")
	}

	archive, err := os.ReadFile(a.Input)
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}

	layers, err := perimeter.ListArchiveLayers(archive)
	if err != nil {
		return err
	}

	fmt.Printf("Layers in %s:\n", filepath.Base(a.Input))
	for i, layer := range layers {
		fmt.Printf("  %d: %s\n", i+1, layer)
	}
	return nil
}

// RunGenerate runs the perimeter pipeline once over the --input archive and
// writes the artifacts into the output directory
func (a *App) RunGenerate() error {
	archive, err := os.ReadFile(a.Input)
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}

	res, err := perimeter.Generate(archive, perimeter.Options{
		Layer:        a.Layer,
		NumPoints:    a.Points,
		BufferMeters: a.Buffer,
		Zoom:         a.Zoom,
	})
	if err != nil {
		return err
	}
	a.Tracker.SetResult(res)

	if err := a.writeArtifacts(res); err != nil {
		return err
	}

	layer := res.Layer
	if layer == "" {
		layer = "all layers"
	}
	fmt.Printf("\nTurbines: %d (%s)\n", len(res.Turbines.Features), layer)
	fmt.Printf("Zone: %s\n", res.Zone.Name)
	fmt.Printf("Area: %.2f km², perimeter: %.2f km\n", res.Stats.AreaSqKm, res.Stats.PerimeterKm)
	fmt.Printf("Centroid: %.6f, %.6f\n", res.Centroid[1], res.Centroid[0])
	return nil
}

// writeArtifacts writes the map, report, KML export and snapshots
func (a *App) writeArtifacts(res *perimeter.Result) error {
	if err := os.MkdirAll(a.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	mapPath := filepath.Join(a.OutputDir, "Map.html")
	if err := os.WriteFile(mapPath, res.MapHTML, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", mapPath, err)
	}
	fmt.Printf("Wrote %s\n", mapPath)

	reportPath := filepath.Join(a.OutputDir, "PolygonPoints.txt")
	if err := os.WriteFile(reportPath, []byte(res.Report), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", reportPath, err)
	}
	fmt.Printf("Wrote %s\n", reportPath)

	kmlPath := filepath.Join(a.OutputDir, "perimeter.kml")
	kmlBytes, err := perimeter.PerimeterKML(res)
	if err != nil {
		return fmt.Errorf("building KML export: %w", err)
	}
	if err := os.WriteFile(kmlPath, kmlBytes, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", kmlPath, err)
	}
	fmt.Printf("Wrote %s\n", kmlPath)

	return a.writeSnapshots(res)
}

// writeSnapshots writes the SVG/PNG boundary snapshot depending on --format
func (a *App) writeSnapshots(res *perimeter.Result) error {
	format := strings.ToLower(a.Format)
	if format == "" {
		format = "svg"
	}

	switch format {
	case "none":
		return nil
	case "svg", "png", "both":
	default:
		return fmt.Errorf("unknown snapshot format %q (want svg, png, both or none)", a.Format)
	}

	renderer := perimeter.NewSnapshotRenderer(res)

	if format == "svg" || format == "both" {
		path := filepath.Join(a.OutputDir, "snapshot.svg")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := renderer.RenderToSVG(f); err != nil {
			f.Close()
			return fmt.Errorf("rendering SVG: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
	}

	if format == "png" || format == "both" {
		path := filepath.Join(a.OutputDir, "snapshot.png")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := renderer.RenderToPNG(f); err != nil {
			f.Close()
			return fmt.Errorf("rendering PNG: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
	}

	return nil
}

// RunService runs the HTTP upload service with optional MQTT announcements
func (a *App) RunService() error {
	fmt.Println("Starting windperim service...")

	// 1. Load config.yaml. A missing file at the default path falls back to
	// defaults; an explicit --config path must exist.
	config, err := perimeter.LoadConfig(a.ConfigFile)
	if err != nil {
		if a.ConfigFile != "config.yaml" {
			return fmt.Errorf("loading config: %w", err)
		}
		log.Printf("Warning: %v, using defaults", err)
		config = perimeter.DefaultConfig()
	} else {
		log.Printf("Loaded config from %s", a.ConfigFile)
	}
	a.Config = config

	// 2. Resolve the HTTP port (flag overrides config)
	port := config.HTTP.Port
	if a.HttpPort != 0 {
		port = a.HttpPort
	}

	// 3. Start MQTT announcer if enabled
	if a.MqttMode {
		mqttClient, err := perimeter.InitMQTT(config)
		if err != nil {
			return fmt.Errorf("initializing MQTT: %w", err)
		}
		a.MQTTClient = mqttClient

		if mqttClient == nil {
			return fmt.Errorf("MQTT broker not configured (set MQTT_BROKER or mqtt.broker in %s)", a.ConfigFile)
		}

		a.Publisher = perimeter.NewPublisher(mqttClient.GetClient())
		if os.Getenv("MQTT_PUBLISH_PREFIX") == "" {
			a.Publisher.SetPrefix(config.MQTT.PublishPrefix)
		}
		fmt.Println("MQTT perimeter announcer initialized")
	}

	// 4. Start HTTP server. Generation only happens through uploads, so the
	// server runs in every service mode.
	httpServer := newHTTPServer(a.Tracker, config, a.Publisher)
	go func() {
		addr := fmt.Sprintf("0.0.0.0:%d", port)
		log.Printf("[HTTP] Starting server on %s", addr)
		if err := http.ListenAndServe(addr, httpServer); err != nil {
			log.Fatalf("[HTTP] Server error: %v", err)
		}
	}()

	// 5. Print service info
	fmt.Println("\nService Running")
	fmt.Println("===============")

	fmt.Printf("\nHTTP endpoints (port %d):\n", port)
	fmt.Println("  GET  /               - Upload form")
	fmt.Println("  POST /layers         - List layers of an uploaded archive")
	fmt.Println("  POST /generate       - Run the perimeter pipeline")
	fmt.Println("  GET  /map.html       - Latest interactive map")
	fmt.Println("  GET  /report.txt     - Latest perimeter report")
	fmt.Println("  GET  /perimeter.kml  - Latest KML export")
	fmt.Println("  GET  /snapshot.svg   - Latest vector snapshot")
	fmt.Println("  GET  /snapshot.png   - Latest raster snapshot")
	fmt.Println("  GET  /status         - Service status")

	if a.Publisher != nil {
		fmt.Println("\nMQTT:")
		fmt.Printf("  Publishing to: %s/perimeter\n", a.Publisher.Prefix())
	}

	fmt.Println("\nPress Ctrl+C to stop")

	// 6. Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	fmt.Println("\nShutting down service...")
	if a.MQTTClient != nil {
		a.MQTTClient.Disconnect()
	}
	fmt.Println("Service stopped")
	return nil
}
