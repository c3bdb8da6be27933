package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/gnss-reflectometry/internal/retrieval"
)

// Config represents the main application configuration
type Config struct {
	Settings  Settings         `yaml:"settings"`
	Input     InputConfig      `yaml:"input"`
	Retrieval retrieval.Config `yaml:"retrieval"`
	Storage   StorageConfig    `yaml:"storage"`
	Metrics   MetricsConfig    `yaml:"metrics"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel slog.Level `yaml:"logLevel"`
}

// InputConfig names the SNR observation file
type InputConfig struct {
	File      string `yaml:"file"`
	Station   string `yaml:"station"`   // Defaults to the file name without extension
	LinearSNR bool   `yaml:"linearSNR"` // File carries linear SNR instead of dB-Hz
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
}

// MetricsConfig enables the Prometheus endpoint when ListenAddr is set
type MetricsConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

// LoadConfig reads the YAML configuration at path. Retrieval parameters
// missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	config := &Config{Retrieval: retrieval.DefaultConfig()}

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(config); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	if config.Input.Station == "" {
		base := filepath.Base(config.Input.File)
		config.Input.Station = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.Input.File == "" {
		return errors.New("app.Config: input file is required")
	}
	if err := c.Retrieval.Validate(); err != nil {
		return fmt.Errorf("app.Config: %w", err)
	}
	return nil
}
