package perimeter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// HTTPConfig configures the upload service listener.
type HTTPConfig struct {
	Port int `yaml:"port" json:"port"`
}

// MQTTConfig configures the optional result announcements. Broker, Username
// and Password may be overridden by the MQTT_BROKER, MQTT_USERNAME and
// MQTT_PASSWORD environment variables.
type MQTTConfig struct {
	Broker        string `yaml:"broker" json:"broker"`
	ClientID      string `yaml:"client_id" json:"client_id"`
	Username      string `yaml:"username" json:"username"`
	Password      string `yaml:"password" json:"password"`
	PublishPrefix string `yaml:"publish_prefix" json:"publish_prefix"`
}

// MapConfig configures the interactive map document.
type MapConfig struct {
	Zoom int `yaml:"zoom" json:"zoom"`
}

// LimitsConfig bounds uploaded archives.
type LimitsConfig struct {
	MaxArchiveMB int `yaml:"max_archive_mb" json:"max_archive_mb"`
}

// DefaultsConfig provides the generation parameters used when a request
// leaves them unset.
type DefaultsConfig struct {
	Points  int     `yaml:"points" json:"points"`
	BufferM float64 `yaml:"buffer_m" json:"buffer_m"`
}

// Config is the service configuration loaded from YAML. Every section is
// optional; missing values fall back to DefaultConfig.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http" json:"http"`
	MQTT     MQTTConfig     `yaml:"mqtt" json:"mqtt"`
	Map      MapConfig      `yaml:"map" json:"map"`
	Limits   LimitsConfig   `yaml:"limits" json:"limits"`
	Defaults DefaultsConfig `yaml:"defaults" json:"defaults"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{Port: 8080},
		MQTT: MQTTConfig{
			ClientID:      "windperim",
			PublishPrefix: "windperim",
		},
		Map:      MapConfig{Zoom: DefaultZoom},
		Limits:   LimitsConfig{MaxArchiveMB: 100},
		Defaults: DefaultsConfig{Points: DefaultNumPoints, BufferM: 0},
	}
}

// LoadConfig reads and parses the YAML configuration file, fills defaults
// for omitted sections and validates value ranges.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks value ranges and reports the first offending field.
func (c *Config) Validate() error {
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Map.Zoom < 1 || c.Map.Zoom > 19 {
		return fmt.Errorf("map.zoom must be between 1 and 19, got %d", c.Map.Zoom)
	}
	if c.Limits.MaxArchiveMB < 1 {
		return fmt.Errorf("limits.max_archive_mb must be at least 1, got %d", c.Limits.MaxArchiveMB)
	}
	if c.Defaults.Points < 1 {
		return fmt.Errorf("defaults.points must be at least 1, got %d", c.Defaults.Points)
	}
	if c.Defaults.BufferM < 0 {
		return fmt.Errorf("defaults.buffer_m must not be negative, got %g", c.Defaults.BufferM)
	}
	return nil
}

// MaxArchiveBytes is the upload size limit in bytes.
func (c *Config) MaxArchiveBytes() int64 {
	return int64(c.Limits.MaxArchiveMB) << 20
}
