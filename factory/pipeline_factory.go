package factory

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/dizzy/config"
	"github.com/opd-ai/dizzy/interfaces"
	"github.com/opd-ai/dizzy/real"
	"github.com/opd-ai/dizzy/testing"
	"github.com/opd-ai/dizzy/video"
)

// Validation constants for environment override bounds checking.
const (
	// MinPhaseIncrement is the smallest phase step accepted from the environment.
	MinPhaseIncrement = -1.0
	// MaxPhaseIncrement is the largest phase step accepted from the environment.
	MaxPhaseIncrement = 1.0
	// MinZoomRate is the smallest zoom rate accepted from the environment.
	MinZoomRate = 0.5
	// MaxZoomRate is the largest zoom rate accepted from the environment.
	MaxZoomRate = 2.0
)

// Environment variables read by NewPipelineFactory.
const (
	EnvUseSimulation  = "DIZZY_USE_SIMULATION"
	EnvPhaseIncrement = "DIZZY_PHASE_INCREMENT"
	EnvZoomRate       = "DIZZY_ZOOM_RATE"
	EnvFrameRate      = "DIZZY_FRAME_RATE"
)

// PipelineFactory creates frame sources, sinks and processors based on configuration.
// It is safe for concurrent use; all methods are protected by an internal mutex.
type PipelineFactory struct {
	mu            sync.RWMutex
	defaultConfig *config.Config
}

// TestConfigOption is a functional option for customizing test simulation configuration.
type TestConfigOption func(*interfaces.FrameIOConfig)

// NewPipelineFactory creates a new factory from base, or from config.Default
// when base is nil. DIZZY_* environment variables override base.
func NewPipelineFactory(base *config.Config) *PipelineFactory {
	var defaultConfig *config.Config
	if base == nil {
		defaultConfig = config.Default()
	} else {
		c := *base
		defaultConfig = &c
	}
	applyEnvironmentOverrides(defaultConfig)
	logConfigurationInfo(defaultConfig)

	return &PipelineFactory{
		defaultConfig: defaultConfig,
	}
}

// applyEnvironmentOverrides updates configuration based on environment variables.
// Invalid or out of bounds values are logged and ignored.
func applyEnvironmentOverrides(cfg *config.Config) {
	parseSimulationSetting(cfg)
	parsePhaseIncrementSetting(cfg)
	parseZoomRateSetting(cfg)
	parseFrameRateSetting(cfg)
}

func parseSimulationSetting(cfg *config.Config) {
	if useSimStr := os.Getenv(EnvUseSimulation); useSimStr != "" {
		useSim, err := strconv.ParseBool(useSimStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseSimulationSetting",
				"env_var":     EnvUseSimulation,
				"value":       useSimStr,
				"error":       err.Error(),
				"using_value": cfg.Input.Simulate,
			}).Warn("Failed to parse DIZZY_USE_SIMULATION environment variable, using default")
			return
		}
		cfg.Input.Simulate = useSim
	}
}

// parsePhaseIncrementSetting reads DIZZY_PHASE_INCREMENT, bounded to
// [MinPhaseIncrement, MaxPhaseIncrement].
func parsePhaseIncrementSetting(cfg *config.Config) {
	if v, ok := parseFloatEnv("parsePhaseIncrementSetting", EnvPhaseIncrement, cfg.Effect.PhaseIncrement, MinPhaseIncrement, MaxPhaseIncrement); ok {
		cfg.Effect.PhaseIncrement = v
	}
}

// parseZoomRateSetting reads DIZZY_ZOOM_RATE, bounded to [MinZoomRate, MaxZoomRate].
func parseZoomRateSetting(cfg *config.Config) {
	if v, ok := parseFloatEnv("parseZoomRateSetting", EnvZoomRate, cfg.Effect.ZoomRate, MinZoomRate, MaxZoomRate); ok {
		cfg.Effect.ZoomRate = v
	}
}

// parseFloatEnv parses a bounded float environment variable. NaN fails the
// bounds check.
func parseFloatEnv(function, name string, current, lo, hi float64) (float64, bool) {
	str := os.Getenv(name)
	if str == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(str, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    function,
			"env_var":     name,
			"value":       str,
			"error":       err.Error(),
			"using_value": current,
		}).Warn("Failed to parse environment variable, using default")
		return 0, false
	}
	if !(v >= lo && v <= hi) {
		logrus.WithFields(logrus.Fields{
			"function":    function,
			"env_var":     name,
			"value":       v,
			"min":         lo,
			"max":         hi,
			"using_value": current,
		}).Warn("Environment variable out of bounds, using default")
		return 0, false
	}
	return v, true
}

// parseFrameRateSetting reads DIZZY_FRAME_RATE, bounded to
// [config.MinFrameRate, config.MaxFrameRate].
func parseFrameRateSetting(cfg *config.Config) {
	rateStr := os.Getenv(EnvFrameRate)
	if rateStr == "" {
		return
	}
	rate, err := strconv.Atoi(rateStr)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":    "parseFrameRateSetting",
			"env_var":     EnvFrameRate,
			"value":       rateStr,
			"error":       err.Error(),
			"using_value": cfg.Input.FrameRate,
		}).Warn("Failed to parse DIZZY_FRAME_RATE environment variable, using default")
		return
	}
	if rate < config.MinFrameRate || rate > config.MaxFrameRate {
		logrus.WithFields(logrus.Fields{
			"function":    "parseFrameRateSetting",
			"env_var":     EnvFrameRate,
			"value":       rate,
			"min":         config.MinFrameRate,
			"max":         config.MaxFrameRate,
			"using_value": cfg.Input.FrameRate,
		}).Warn("DIZZY_FRAME_RATE value out of bounds, using default")
		return
	}
	cfg.Input.FrameRate = rate
}

func logConfigurationInfo(cfg *config.Config) {
	logrus.WithFields(logrus.Fields{
		"function":        "NewPipelineFactory",
		"use_simulation":  cfg.Input.Simulate,
		"phase_increment": cfg.Effect.PhaseIncrement,
		"zoom_rate":       cfg.Effect.ZoomRate,
		"frame_rate":      cfg.Input.FrameRate,
	}).Info("Created pipeline factory with configuration")
}

// FrameIOConfig derives the source and sink configuration from cfg.
func FrameIOConfig(cfg *config.Config) *interfaces.FrameIOConfig {
	return &interfaces.FrameIOConfig{
		UseSimulation: cfg.Input.Simulate,
		Pattern:       cfg.Input.Pattern,
		Format:        cfg.InputPixelFormat(),
		Width:         cfg.Input.Width,
		Height:        cfg.Input.Height,
		FrameCount:    cfg.Input.Frames,
		FrameRate:     cfg.Input.FrameRate,
		InputDir:      cfg.Input.Dir,
		OutputDir:     cfg.Output.Dir,
	}
}

// CreateSource creates a frame source based on the current configuration
func (f *PipelineFactory) CreateSource() (interfaces.IFrameSource, error) {
	return f.CreateSourceWithConfig(f.frameIOConfig())
}

// CreateSourceWithConfig creates a frame source with custom configuration
func (f *PipelineFactory) CreateSourceWithConfig(ioConfig *interfaces.FrameIOConfig) (interfaces.IFrameSource, error) {
	if ioConfig == nil {
		ioConfig = f.frameIOConfig()
	}

	if ioConfig.UseSimulation {
		logrus.WithFields(logrus.Fields{
			"function": "CreateSourceWithConfig",
			"type":     "simulation",
			"pattern":  ioConfig.Pattern,
		}).Info("Creating simulated frame source")

		return testing.NewSimulatedFrameSource(ioConfig)
	}

	logrus.WithFields(logrus.Fields{
		"function": "CreateSourceWithConfig",
		"type":     "real",
		"dir":      ioConfig.InputDir,
	}).Info("Creating image sequence frame source")

	return real.NewImageSequenceSource(ioConfig)
}

// CreateSink creates a frame sink. A configured output directory always
// gets a PNG sink; simulation without one records frames in memory.
func (f *PipelineFactory) CreateSink() (interfaces.IFrameSink, error) {
	ioConfig := f.frameIOConfig()

	if ioConfig.OutputDir == "" {
		if !ioConfig.UseSimulation {
			return nil, fmt.Errorf("output directory is required for real frame sink")
		}
		logrus.WithFields(logrus.Fields{
			"function": "CreateSink",
			"type":     "simulation",
		}).Info("Creating recording frame sink")
		return testing.NewRecordingSink(), nil
	}

	logrus.WithFields(logrus.Fields{
		"function": "CreateSink",
		"type":     "real",
		"dir":      ioConfig.OutputDir,
	}).Info("Creating PNG frame sink")

	return real.NewPNGSink(ioConfig)
}

// CreateProcessor builds the convert and effect stages from the current
// configuration. A configured output scale selects the scaling converter.
func (f *PipelineFactory) CreateProcessor() (*video.Processor, error) {
	cfg := f.GetCurrentConfig()

	effect, err := video.NewDizzyEffectWithConfig(cfg.DizzyConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create dizzy effect: %w", err)
	}

	var converter video.Converter = video.NewPackedConverter()
	if cfg.Output.ScaleWidth > 0 && cfg.Output.ScaleHeight > 0 {
		converter, err = video.NewScalingConverter(cfg.Output.ScaleWidth, cfg.Output.ScaleHeight)
		if err != nil {
			return nil, fmt.Errorf("failed to create scaling converter: %w", err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":     "CreateProcessor",
		"effect":       effect.GetName(),
		"scale_width":  cfg.Output.ScaleWidth,
		"scale_height": cfg.Output.ScaleHeight,
	}).Info("Creating frame processor")

	return video.NewProcessor(converter, effect), nil
}

// WithPattern sets the synthetic test pattern.
func WithPattern(pattern string) TestConfigOption {
	return func(c *interfaces.FrameIOConfig) {
		c.Pattern = pattern
	}
}

// WithFrameSize sets the synthetic frame geometry.
func WithFrameSize(width, height int) TestConfigOption {
	return func(c *interfaces.FrameIOConfig) {
		c.Width = width
		c.Height = height
	}
}

// WithFrameCount sets the number of synthetic frames.
func WithFrameCount(count int) TestConfigOption {
	return func(c *interfaces.FrameIOConfig) {
		c.FrameCount = count
	}
}

// CreateSimulationForTesting creates a synthetic source specifically for testing.
// Default test configuration uses: 16x16 checker frames, 4 frames at 30 fps.
func (f *PipelineFactory) CreateSimulationForTesting(opts ...TestConfigOption) (interfaces.IFrameSource, error) {
	testConfig := &interfaces.FrameIOConfig{
		UseSimulation: true,
		Pattern:       testing.PatternChecker,
		Width:         16,
		Height:        16,
		FrameCount:    4,
		FrameRate:     30,
	}

	for _, opt := range opts {
		opt(testConfig)
	}

	logrus.WithFields(logrus.Fields{
		"function": "CreateSimulationForTesting",
		"pattern":  testConfig.Pattern,
		"width":    testConfig.Width,
		"height":   testConfig.Height,
		"frames":   testConfig.FrameCount,
	}).Info("Creating simulation source for testing")

	return testing.NewSimulatedFrameSource(testConfig)
}

// SwitchToSimulation switches the configuration to use the synthetic source
func (f *PipelineFactory) SwitchToSimulation() {
	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "SwitchToSimulation",
		"previous": f.defaultConfig.Input.Simulate,
	}).Info("Switching factory to simulation mode")

	f.defaultConfig.Input.Simulate = true
}

// SwitchToReal switches the configuration to read from the input directory
func (f *PipelineFactory) SwitchToReal() {
	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "SwitchToReal",
		"previous": f.defaultConfig.Input.Simulate,
	}).Info("Switching factory to real mode")

	f.defaultConfig.Input.Simulate = false
}

// IsUsingSimulation returns true if the factory is configured for simulation
func (f *PipelineFactory) IsUsingSimulation() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.defaultConfig.Input.Simulate
}

// GetCurrentConfig returns a copy of the current default configuration
func (f *PipelineFactory) GetCurrentConfig() *config.Config {
	f.mu.RLock()
	defer f.mu.RUnlock()

	c := *f.defaultConfig
	return &c
}

// UpdateConfig validates cfg and makes a copy of it the factory's default configuration
func (f *PipelineFactory) UpdateConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":       "UpdateConfig",
		"old_simulation": f.defaultConfig.Input.Simulate,
		"new_simulation": cfg.Input.Simulate,
		"old_zoom_rate":  f.defaultConfig.Effect.ZoomRate,
		"new_zoom_rate":  cfg.Effect.ZoomRate,
	}).Info("Updating factory configuration")

	c := *cfg
	f.defaultConfig = &c
	return nil
}

func (f *PipelineFactory) frameIOConfig() *interfaces.FrameIOConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return FrameIOConfig(f.defaultConfig)
}
