package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/kwv/windperim/perimeter"
)

// Version is set at build time via -ldflags
var Version = "dev"

// AppOptions carries parsed CLI flags into the application
type AppOptions struct {
	Input      string
	Layer      string
	Points     int
	Buffer     float64
	Zoom       int
	OutputDir  string
	Format     string
	ListLayers bool
	ConfigFile string
	HttpPort   int
	HttpMode   bool
	MqttMode   bool
}

// appRunner abstracts App so the CLI dispatch can be tested with a mock
type appRunner interface {
	ApplyOptions(opts AppOptions)
	RunListLayers() error
	RunGenerate() error
	RunService() error
}

func run(args []string, out io.Writer, app appRunner) error {
	fs := flag.NewFlagSet("windperim", flag.ContinueOnError)
	fs.SetOutput(out)

	var opts AppOptions
	fs.StringVar(&opts.Input, "input", "", "Path to KMZ archive of turbine locations (one-shot mode)")
	fs.StringVar(&opts.Layer, "layer", "", "Layer to read turbine points from (default: all layers)")
	fs.IntVar(&opts.Points, "points", perimeter.DefaultNumPoints, "Number of evenly spaced perimeter points")
	fs.Float64Var(&opts.Buffer, "buffer", 0, "Outward buffer distance in meters")
	fs.IntVar(&opts.Zoom, "zoom", perimeter.DefaultZoom, "Initial zoom level for the interactive map")
	fs.StringVar(&opts.OutputDir, "output-dir", ".", "Directory for generated artifacts")
	fs.StringVar(&opts.Format, "format", "svg", "Snapshot format: svg, png, both, or none")
	fs.BoolVar(&opts.ListLayers, "list-layers", false, "List the layers of the --input archive and exit")
	fs.StringVar(&opts.ConfigFile, "config", "config.yaml", "Path to configuration file")
	fs.IntVar(&opts.HttpPort, "http-port", 0, "HTTP server port (default from config)")
	fs.BoolVar(&opts.HttpMode, "http", false, "Run the HTTP upload service")
	fs.BoolVar(&opts.MqttMode, "mqtt", false, "Announce results over MQTT in service mode")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintf(out, "windperim version: %s\n", Version)

	app.ApplyOptions(opts)

	if opts.ListLayers {
		return app.RunListLayers()
	}

	if opts.Input != "" {
		return app.RunGenerate()
	}

	if opts.HttpMode || opts.MqttMode {
		return app.RunService()
	}

	fmt.Fprintln(out, "Use --input FILE.kmz to compute a wind farm perimeter")
	fmt.Fprintln(out, "Use --list-layers --input FILE.kmz to enumerate the archive's layers")
	fmt.Fprintln(out, "Use --http to run the upload service")
	fmt.Fprintln(out, "Use --http --mqtt to also announce results over MQTT")
	fmt.Fprintln(out, "\nConfiguration:")
	fmt.Fprintln(out, "  config.yaml - HTTP, MQTT and pipeline defaults")
	return nil
}

func main() {
	app := NewApp()
	if err := run(os.Args[1:], os.Stdout, app); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("windperim: %v", err)
	}
}
