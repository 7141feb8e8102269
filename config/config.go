// Package config loads the dizzy pipeline configuration from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/opd-ai/dizzy/limits"
	"github.com/opd-ai/dizzy/video"
)

// Validation constants for configuration bounds checking.
const (
	// MinFrameRate is the smallest accepted frame rate in frames per second.
	MinFrameRate = 1
	// MaxFrameRate is the largest accepted frame rate in frames per second.
	MaxFrameRate = 240
	// MaxFrameCount bounds the number of synthetic frames a run may generate.
	MaxFrameCount = 1000000
)

// ErrInvalidConfig indicates a configuration value outside its valid range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the complete dizzy configuration
type Config struct {
	Effect  EffectConfig  `yaml:"effect"`
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// EffectConfig contains the dizzy effect parameters
type EffectConfig struct {
	PhaseIncrement float64 `yaml:"phase_increment"`
	ZoomRate       float64 `yaml:"zoom_rate"`
}

// InputConfig selects and configures the frame source
type InputConfig struct {
	Dir         string `yaml:"dir"`          // image sequence directory (real source)
	Simulate    bool   `yaml:"simulate"`     // use the synthetic source instead of Dir
	Pattern     string `yaml:"pattern"`      // solid, gradient, checker, bars
	PixelFormat string `yaml:"pixel_format"` // synthetic frame layout: bgra or rgba
	Width       int    `yaml:"width"`        // synthetic frame width
	Height      int    `yaml:"height"`       // synthetic frame height
	Frames      int    `yaml:"frames"`       // synthetic frame count
	FrameRate   int    `yaml:"frame_rate"`   // frames per second, sets the time base
}

// OutputConfig configures the frame sink and the convert stage
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	ScaleWidth  int    `yaml:"scale_width"`  // 0 keeps the input size
	ScaleHeight int    `yaml:"scale_height"` // 0 keeps the input size
}

// LoggingConfig contains logrus settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		Effect: EffectConfig{
			PhaseIncrement: video.DefaultPhaseIncrement,
			ZoomRate:       video.DefaultZoomRate,
		},
		Input: InputConfig{
			Pattern:     "gradient",
			PixelFormat: "bgra",
			Width:       320,
			Height:      240,
			Frames:      60,
			FrameRate:   30,
		},
		Output: OutputConfig{
			Dir: "out",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML file on top of the defaults. Fields missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":        "Load",
		"path":            path,
		"phase_increment": cfg.Effect.PhaseIncrement,
		"zoom_rate":       cfg.Effect.ZoomRate,
		"simulate":        cfg.Input.Simulate,
	}).Info("Loaded configuration")

	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section of the configuration.
func (c *Config) Validate() error {
	if err := c.DizzyConfig().Validate(); err != nil {
		return fmt.Errorf("%w: effect: %v", ErrInvalidConfig, err)
	}

	if c.Input.Simulate || c.Input.Dir == "" {
		if err := limits.ValidateDimensions(c.Input.Width, c.Input.Height); err != nil {
			return fmt.Errorf("%w: input: %v", ErrInvalidConfig, err)
		}
		if c.Input.Frames <= 0 || c.Input.Frames > MaxFrameCount {
			return fmt.Errorf("%w: input.frames %d must be in [1, %d]", ErrInvalidConfig, c.Input.Frames, MaxFrameCount)
		}
		if _, err := video.ParsePixelFormat(c.Input.PixelFormat); err != nil {
			return fmt.Errorf("%w: input.pixel_format: %v", ErrInvalidConfig, err)
		}
	}
	if c.Input.FrameRate < MinFrameRate || c.Input.FrameRate > MaxFrameRate {
		return fmt.Errorf("%w: input.frame_rate %d must be in [%d, %d]", ErrInvalidConfig, c.Input.FrameRate, MinFrameRate, MaxFrameRate)
	}

	if (c.Output.ScaleWidth == 0) != (c.Output.ScaleHeight == 0) {
		return fmt.Errorf("%w: output.scale_width and output.scale_height must be set together", ErrInvalidConfig)
	}
	if c.Output.ScaleWidth != 0 {
		if err := limits.ValidateDimensions(c.Output.ScaleWidth, c.Output.ScaleHeight); err != nil {
			return fmt.Errorf("%w: output scale: %v", ErrInvalidConfig, err)
		}
	}

	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: logging.format %q must be text or json", ErrInvalidConfig, c.Logging.Format)
	}

	return nil
}

// DizzyConfig returns the effect section as video.DizzyConfig.
func (c *Config) DizzyConfig() video.DizzyConfig {
	return video.DizzyConfig{
		PhaseIncrement: c.Effect.PhaseIncrement,
		ZoomRate:       c.Effect.ZoomRate,
	}
}

// InputPixelFormat returns the synthetic frame layout, FormatBGRA when
// input.pixel_format is not a known name.
func (c *Config) InputPixelFormat() video.PixelFormat {
	f, err := video.ParsePixelFormat(c.Input.PixelFormat)
	if err != nil {
		return video.FormatBGRA
	}
	return f
}

// ApplyLogging configures the standard logrus logger from the logging section.
func (c *Config) ApplyLogging() error {
	level, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalidConfig, err)
	}
	logrus.SetLevel(level)

	if strings.EqualFold(c.Logging.Format, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
