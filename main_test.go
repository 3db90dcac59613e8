package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/kwv/windperim/perimeter"
)

type mockApp struct {
	opts   AppOptions
	called map[string]bool
	err    error
}

func newMockApp() *mockApp {
	return &mockApp{
		called: make(map[string]bool),
	}
}

func (m *mockApp) ApplyOptions(opts AppOptions) { m.opts = opts }
func (m *mockApp) RunListLayers() error         { m.called["RunListLayers"] = true; return m.err }
func (m *mockApp) RunGenerate() error           { m.called["RunGenerate"] = true; return m.err }
func (m *mockApp) RunService() error            { m.called["RunService"] = true; return m.err }

func TestRun_Flags(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		expectedCalled string
		verifyOpts     func(*testing.T, AppOptions)
	}{
		{
			name:           "ListLayers",
			args:           []string{"--list-layers", "--input", "site.kmz"},
			expectedCalled: "RunListLayers",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if !opts.ListLayers {
					t.Error("expected ListLayers true")
				}
				if opts.Input != "site.kmz" {
					t.Errorf("expected Input site.kmz, got %s", opts.Input)
				}
			},
		},
		{
			name:           "Generate",
			args:           []string{"--input", "site.kmz", "--layer", "Phase One", "--points", "12"},
			expectedCalled: "RunGenerate",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if opts.Input != "site.kmz" {
					t.Errorf("expected Input site.kmz, got %s", opts.Input)
				}
				if opts.Layer != "Phase One" {
					t.Errorf("expected Layer Phase One, got %s", opts.Layer)
				}
				if opts.Points != 12 {
					t.Errorf("expected Points 12, got %d", opts.Points)
				}
			},
		},
		{
			name:           "GenerateDefaults",
			args:           []string{"--input", "site.kmz"},
			expectedCalled: "RunGenerate",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if opts.Points != perimeter.DefaultNumPoints {
					t.Errorf("expected Points %d, got %d", perimeter.DefaultNumPoints, opts.Points)
				}
				if opts.Zoom != perimeter.DefaultZoom {
					t.Errorf("expected Zoom %d, got %d", perimeter.DefaultZoom, opts.Zoom)
				}
				if opts.Buffer != 0 {
					t.Errorf("expected Buffer 0, got %f", opts.Buffer)
				}
				if opts.OutputDir != "." {
					t.Errorf("expected OutputDir ., got %s", opts.OutputDir)
				}
				if opts.Format != "svg" {
					t.Errorf("expected Format svg, got %s", opts.Format)
				}
				if opts.ConfigFile != "config.yaml" {
					t.Errorf("expected ConfigFile config.yaml, got %s", opts.ConfigFile)
				}
			},
		},
		{
			name:           "GenerateWithBuffer",
			args:           []string{"--input", "site.kmz", "--buffer", "250", "--output-dir", "/tmp/out", "--format", "both"},
			expectedCalled: "RunGenerate",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if opts.Buffer != 250 {
					t.Errorf("expected Buffer 250, got %f", opts.Buffer)
				}
				if opts.OutputDir != "/tmp/out" {
					t.Errorf("expected OutputDir /tmp/out, got %s", opts.OutputDir)
				}
				if opts.Format != "both" {
					t.Errorf("expected Format both, got %s", opts.Format)
				}
			},
		},
		{
			name:           "HttpMode",
			args:           []string{"--http", "--http-port", "9090"},
			expectedCalled: "RunService",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if !opts.HttpMode {
					t.Error("expected HttpMode true")
				}
				if opts.HttpPort != 9090 {
					t.Errorf("expected HttpPort 9090, got %d", opts.HttpPort)
				}
			},
		},
		{
			name:           "MqttMode",
			args:           []string{"--mqtt", "--config", "site.yaml"},
			expectedCalled: "RunService",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if !opts.MqttMode {
					t.Error("expected MqttMode true")
				}
				if opts.ConfigFile != "site.yaml" {
					t.Errorf("expected ConfigFile site.yaml, got %s", opts.ConfigFile)
				}
			},
		},
		{
			name:           "InputBeatsServiceMode",
			args:           []string{"--input", "site.kmz", "--http"},
			expectedCalled: "RunGenerate",
			verifyOpts: func(t *testing.T, opts AppOptions) {
				if !opts.HttpMode {
					t.Error("expected HttpMode true")
				}
			},
		},
		{
			name:           "ListLayersBeatsGenerate",
			args:           []string{"--list-layers", "--input", "site.kmz", "--http"},
			expectedCalled: "RunListLayers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newMockApp()
			var out bytes.Buffer
			err := run(tt.args, &out, app)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}

			if !app.called[tt.expectedCalled] {
				t.Errorf("expected %s to be called", tt.expectedCalled)
			}
			if len(app.called) != 1 {
				t.Errorf("expected exactly one run mode, got %v", app.called)
			}

			if tt.verifyOpts != nil {
				tt.verifyOpts(t, app.opts)
			}
		})
	}
}

func TestRun_Help(t *testing.T) {
	app := newMockApp()
	var out bytes.Buffer
	err := run([]string{"--help"}, &out, app)
	if err == nil {
		t.Error("expected error from --help, got nil")
	}
	if !strings.Contains(out.String(), "Usage of windperim") {
		t.Errorf("expected usage info in output, got: %s", out.String())
	}
}

func TestRun_Default(t *testing.T) {
	app := newMockApp()
	var out bytes.Buffer
	err := run([]string{}, &out, app)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	expectedPrefix := "windperim version: " + Version
	if !strings.Contains(out.String(), expectedPrefix) {
		t.Errorf("expected output to contain version, got: %s", out.String())
	}

	if !strings.Contains(out.String(), "Use --input FILE.kmz to compute a wind farm perimeter") {
		t.Errorf("expected output to contain usage hint, got: %s", out.String())
	}

	if len(app.called) != 0 {
		t.Errorf("expected no run mode without flags, got %v", app.called)
	}
}

func TestRun_PropagatesAppError(t *testing.T) {
	app := newMockApp()
	app.err = errors.New("pipeline exploded")
	var out bytes.Buffer

	err := run([]string{"--input", "site.kmz"}, &out, app)
	if !errors.Is(err, app.err) {
		t.Errorf("expected run to return the app error, got %v", err)
	}
}

func TestMain_Execute(t *testing.T) {
	// Smoke test to ensure version is set
	if Version == "" {
		t.Error("expected Version to be set")
	}
}
