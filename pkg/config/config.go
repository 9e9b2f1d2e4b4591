// Package config provides configuration loading and management for fringeprofile.
// It handles loading configuration from YAML files, environment overrides,
// and provides default values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"fringeprofile/internal/models"
	"fringeprofile/pkg/minima"
	"fringeprofile/pkg/smoothing"
	"fringeprofile/pkg/visualization"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Smoothing parameters
	Smoothing struct {
		// Method selects the smoother: moving-average or weighted
		Method string `yaml:"method"`

		// Window is the number of samples averaged around each point
		Window int `yaml:"window"`
	} `yaml:"smoothing"`

	// Minima detection parameters
	Minima struct {
		// Distance is how many neighbours on each side a fringe must undercut
		Distance int `yaml:"distance"`
	} `yaml:"minima"`

	// Physics holds the optical constants
	Physics models.PhysicalParams `yaml:"physics"`

	// Display parameters for the overlay image
	Display struct {
		MaxWidth  int `yaml:"maxWidth"`
		MaxHeight int `yaml:"maxHeight"`
	} `yaml:"display"`

	// Output parameters
	Output struct {
		// Dir is where exported files are written
		Dir string `yaml:"dir"`

		// Which artifacts to write
		ProfileCSV   bool `yaml:"profileCSV"`
		ThicknessCSV bool `yaml:"thicknessCSV"`
		Chart        bool `yaml:"chart"`
		Overlay      bool `yaml:"overlay"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Smoothing.Method = smoothing.MethodMovingAverage
	cfg.Smoothing.Window = 5

	cfg.Minima.Distance = minima.Relaxed.Distance

	cfg.Physics = models.DefaultParams()

	cfg.Display.MaxWidth = visualization.DefaultMaxWidth
	cfg.Display.MaxHeight = visualization.DefaultMaxHeight

	cfg.Output.Dir = "."
	cfg.Output.ProfileCSV = true
	cfg.Output.ThicknessCSV = true
	cfg.Output.Chart = false
	cfg.Output.Overlay = false
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Validate checks the configuration values are usable
func (c *Config) Validate() error {
	if _, err := smoothing.New(c.Smoothing.Method); err != nil {
		return err
	}
	if c.Smoothing.Window < 1 {
		return fmt.Errorf("smoothing window must be at least 1, got %d", c.Smoothing.Window)
	}
	if _, err := minima.New(c.Minima.Distance); err != nil {
		return err
	}
	if c.Display.MaxWidth <= 0 || c.Display.MaxHeight <= 0 {
		return fmt.Errorf("display size must be positive, got %dx%d", c.Display.MaxWidth, c.Display.MaxHeight)
	}
	return c.Physics.Validate()
}

// PhysicalParams returns the configured optical constants
func (c *Config) PhysicalParams() models.PhysicalParams {
	return c.Physics
}

// Smoother returns the configured smoothing strategy
func (c *Config) Smoother() (smoothing.Smoother, error) {
	return smoothing.New(c.Smoothing.Method)
}

// Finder returns the configured minima detector
func (c *Config) Finder() (minima.Finder, error) {
	return minima.New(c.Minima.Distance)
}

// Environment variables read by ApplyEnv
const (
	EnvSmoothingMethod = "FRINGE_SMOOTHING_METHOD"
	EnvSmoothingWindow = "FRINGE_SMOOTHING_WINDOW"
	EnvMinimaDistance  = "FRINGE_MINIMA_DISTANCE"
	EnvOutputDir       = "FRINGE_OUTPUT_DIR"
)

// physicsEnv maps environment variables to physical parameter fields
var physicsEnv = map[string]string{
	"FRINGE_REFRACTIVE_INDEX": "refractiveIndex",
	"FRINGE_WAVELENGTH_RED":   "wavelengthRed",
	"FRINGE_WAVELENGTH_GREEN": "wavelengthGreen",
	"FRINGE_WAVELENGTH_BLUE":  "wavelengthBlue",
	"FRINGE_PIXEL_SIZE":       "pixelSize",
}

// ApplyEnv loads a .env file if present and applies FRINGE_* overrides.
// Invalid values are reported to logger and ignored, keeping the
// previous setting.
func ApplyEnv(cfg *Config, logger *log.Logger, envFiles ...string) {
	warn := func(format string, args ...any) {
		if logger != nil {
			logger.Printf("Warning: "+format, args...)
		}
	}

	// a missing .env file is fine, a malformed one is not
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		warn("could not load env file: %v", err)
	}

	if v, ok := os.LookupEnv(EnvSmoothingMethod); ok {
		if _, err := smoothing.New(v); err != nil {
			warn("ignoring %s: %v", EnvSmoothingMethod, err)
		} else {
			cfg.Smoothing.Method = v
		}
	}
	if v, ok := os.LookupEnv(EnvSmoothingWindow); ok {
		if n, err := strconv.Atoi(v); err != nil || n < 1 {
			warn("ignoring %s=%q: must be a positive integer", EnvSmoothingWindow, v)
		} else {
			cfg.Smoothing.Window = n
		}
	}
	if v, ok := os.LookupEnv(EnvMinimaDistance); ok {
		if n, err := strconv.Atoi(v); err != nil || n < 1 {
			warn("ignoring %s=%q: must be a positive integer", EnvMinimaDistance, v)
		} else {
			cfg.Minima.Distance = n
		}
	}
	if v, ok := os.LookupEnv(EnvOutputDir); ok && v != "" {
		cfg.Output.Dir = v
	}

	for env, field := range physicsEnv {
		v, ok := os.LookupEnv(env)
		if !ok {
			continue
		}
		params, err := models.ParseParam(cfg.Physics, field, v)
		if err != nil {
			warn("ignoring %s: %v", env, err)
			continue
		}
		cfg.Physics = params
	}
}
