// Package main provides the command-line interface for the dizzy feedback
// effect.
//
// It reads frames from an image sequence or a synthetic pattern, runs them
// through the convert and dizzy stages, and writes the result as PNG files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/dizzy/config"
	"github.com/opd-ai/dizzy/factory"
	"github.com/opd-ai/dizzy/video"
)

// CLI configuration
type CLIConfig struct {
	configPath     string
	inputDir       string
	outputDir      string
	simulate       bool
	pattern        string
	pixelFormat    string
	width          int
	height         int
	frames         int
	frameRate      int
	phaseIncrement float64
	zoomRate       float64
	scale          string
	logLevel       string
	logFormat      string
	traceParams    int
	help           bool

	// set records which flags appeared on the command line. Only those
	// override the configuration file and environment.
	set map[string]bool
}

// parseCLIFlags parses command-line flags and returns the configuration.
func parseCLIFlags(args []string) (*CLIConfig, error) {
	cli := &CLIConfig{set: make(map[string]bool)}
	fs := newFlagSet(cli)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		cli.set[f.Name] = true
	})
	return cli, nil
}

func newFlagSet(cli *CLIConfig) *flag.FlagSet {
	defaults := config.Default()
	fs := flag.NewFlagSet("dizzy", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Configuration file
	fs.StringVar(&cli.configPath, "config", "", "YAML configuration file")

	// Input configuration
	fs.StringVar(&cli.inputDir, "input", "", "Directory of input images (png, jpeg, bmp, tiff, webp)")
	fs.BoolVar(&cli.simulate, "simulate", false, "Use a synthetic test pattern instead of -input")
	fs.StringVar(&cli.pattern, "pattern", defaults.Input.Pattern, "Synthetic pattern (solid, gradient, checker, bars)")
	fs.StringVar(&cli.pixelFormat, "pixel-format", defaults.Input.PixelFormat, "Synthetic frame layout (bgra, rgba)")
	fs.IntVar(&cli.width, "width", defaults.Input.Width, "Synthetic frame width")
	fs.IntVar(&cli.height, "height", defaults.Input.Height, "Synthetic frame height")
	fs.IntVar(&cli.frames, "frames", defaults.Input.Frames, "Number of frames to process")
	fs.IntVar(&cli.frameRate, "frame-rate", defaults.Input.FrameRate, "Frames per second of the input")

	// Output configuration
	fs.StringVar(&cli.outputDir, "output", defaults.Output.Dir, "Directory for output PNG files")
	fs.StringVar(&cli.scale, "scale", "", "Scale frames to WxH before the effect (e.g. 640x480)")

	// Effect configuration
	fs.Float64Var(&cli.phaseIncrement, "phase-increment", defaults.Effect.PhaseIncrement, "Phase advance per frame")
	fs.Float64Var(&cli.zoomRate, "zoom-rate", defaults.Effect.ZoomRate, "Zoom rate of the feedback warp")

	// Logging configuration
	fs.StringVar(&cli.logLevel, "log-level", defaults.Logging.Level, "Log level (trace, debug, info, warn, error)")
	fs.StringVar(&cli.logFormat, "log-format", defaults.Logging.Format, "Log format (text, json)")

	// Diagnostics
	fs.IntVar(&cli.traceParams, "trace-params", 0, "Print warp parameter statistics over N frames and exit")

	// Help
	fs.BoolVar(&cli.help, "help", false, "Show help message")

	return fs
}

// printUsage prints the usage information.
func printUsage(w io.Writer) {
	fs := newFlagSet(&CLIConfig{})
	fs.SetOutput(w)

	fmt.Fprintln(w, "Dizzy Feedback Effect")
	fmt.Fprintln(w, "=====================")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Blends each frame with a rotated and zoomed copy of the previous output,")
	fmt.Fprintln(w, "producing a swirling trail.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s [options]\n", os.Args[0])
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  %s, %s, %s, %s\n",
		factory.EnvUseSimulation, factory.EnvPhaseIncrement, factory.EnvZoomRate, factory.EnvFrameRate)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintf(w, "  # Process an image sequence\n")
	fmt.Fprintf(w, "  %s -input frames/ -output out/\n", os.Args[0])
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  # Render 120 frames of a scrolling checkerboard\n")
	fmt.Fprintf(w, "  %s -simulate -pattern checker -frames 120\n", os.Args[0])
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  # Inspect the warp trajectory\n")
	fmt.Fprintf(w, "  %s -trace-params 1000 -width 640 -height 480\n", os.Args[0])
}

// validateCLIConfig validates the CLI configuration.
func validateCLIConfig(cli *CLIConfig) error {
	if cli.frames < 0 {
		return fmt.Errorf("frame count cannot be negative")
	}

	if cli.traceParams < 0 {
		return fmt.Errorf("trace-params cannot be negative")
	}

	if cli.scale != "" {
		if _, _, err := parseScale(cli.scale); err != nil {
			return err
		}
	}

	if cli.set["input"] && cli.set["simulate"] && cli.simulate {
		return fmt.Errorf("-input and -simulate are mutually exclusive")
	}

	return nil
}

// parseScale parses a WxH size.
func parseScale(s string) (width, height int, err error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid scale %q: expected WxH", s)
	}
	width, err = strconv.Atoi(w)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid scale width %q: %w", w, err)
	}
	height, err = strconv.Atoi(h)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid scale height %q: %w", h, err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("invalid scale %q: dimensions must be positive", s)
	}
	return width, height, nil
}

// loadConfig reads the configuration file, or the defaults without one.
func loadConfig(cli *CLIConfig) (*config.Config, error) {
	if cli.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(cli.configPath)
}

// applyFlags copies explicitly set flags over cfg.
func applyFlags(cfg *config.Config, cli *CLIConfig) {
	if cli.set["input"] {
		cfg.Input.Dir = cli.inputDir
		cfg.Input.Simulate = false
	}
	if cli.set["simulate"] {
		cfg.Input.Simulate = cli.simulate
	}
	if cli.set["pattern"] {
		cfg.Input.Pattern = cli.pattern
	}
	if cli.set["pixel-format"] {
		cfg.Input.PixelFormat = cli.pixelFormat
	}
	if cli.set["width"] {
		cfg.Input.Width = cli.width
	}
	if cli.set["height"] {
		cfg.Input.Height = cli.height
	}
	if cli.set["frames"] {
		cfg.Input.Frames = cli.frames
	}
	if cli.set["frame-rate"] {
		cfg.Input.FrameRate = cli.frameRate
	}
	if cli.set["output"] {
		cfg.Output.Dir = cli.outputDir
	}
	if cli.set["scale"] {
		// validateCLIConfig has already parsed the value
		cfg.Output.ScaleWidth, cfg.Output.ScaleHeight, _ = parseScale(cli.scale)
	}
	if cli.set["phase-increment"] {
		cfg.Effect.PhaseIncrement = cli.phaseIncrement
	}
	if cli.set["zoom-rate"] {
		cfg.Effect.ZoomRate = cli.zoomRate
	}
	if cli.set["log-level"] {
		cfg.Logging.Level = cli.logLevel
	}
	if cli.set["log-format"] {
		cfg.Logging.Format = cli.logFormat
	}
}

// buildFactory layers configuration file, environment and flags, in that
// order, and returns a factory holding the result.
func buildFactory(cli *CLIConfig) (*factory.PipelineFactory, error) {
	cfg, err := loadConfig(cli)
	if err != nil {
		return nil, err
	}

	pf := factory.NewPipelineFactory(cfg)
	merged := pf.GetCurrentConfig()
	applyFlags(merged, cli)
	if err := pf.UpdateConfig(merged); err != nil {
		return nil, err
	}
	return pf, nil
}

// setupSignalHandling sets up graceful shutdown on interrupt signals.
func setupSignalHandling(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	go func() {
		sig := <-sigChan
		logrus.WithFields(logrus.Fields{
			"function": "setupSignalHandling",
			"signal":   sig.String(),
		}).Warn("Received signal, stopping after the current frame")
		cancel()
	}()
}

// main is the entry point for the dizzy command.
func main() {
	os.Exit(runMain(os.Args[1:], os.Stdout, os.Stderr))
}

// runMain runs the command and returns the process exit code.
func runMain(args []string, stdout, stderr io.Writer) int {
	cliConfig, err := parseCLIFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(stdout)
			return 0
		}
		fmt.Fprintf(stderr, "Flag error: %v\n", err)
		fmt.Fprintf(stderr, "Use -help for usage information.\n")
		return 2
	}

	if cliConfig.help {
		printUsage(stdout)
		return 0
	}

	if err := validateCLIConfig(cliConfig); err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		fmt.Fprintf(stderr, "Use -help for usage information.\n")
		return 1
	}

	pf, err := buildFactory(cliConfig)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}

	cfg := pf.GetCurrentConfig()
	if err := cfg.ApplyLogging(); err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}

	if cliConfig.traceParams > 0 {
		if err := traceWarpParams(stdout, cfg, cliConfig.traceParams); err != nil {
			fmt.Fprintf(stderr, "Trace failed: %v\n", err)
			return 1
		}
		return 0
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	summary, err := runPipeline(ctx, pf)
	if summary != nil {
		summary.print(stdout)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Processing failed: %v\n", err)
		return 1
	}
	return 0
}

// runSummary describes a finished pipeline run.
type runSummary struct {
	Written      int
	Blended      uint64
	Bootstrapped uint64
	Stats        video.ProcessingMetrics
	Interrupted  bool
}

func (s *runSummary) print(w io.Writer) {
	fmt.Fprintf(w, "Summary: %d frames written (%d blended, %d bootstrapped, %d failed)\n",
		s.Written, s.Blended, s.Bootstrapped, s.Stats.FramesFailed)
	fmt.Fprintf(w, "Frame time: avg %v, peak %v\n", s.Stats.AvgFrameTime, s.Stats.PeakFrameTime)
	if s.Interrupted {
		fmt.Fprintln(w, "Run was interrupted before the source was exhausted")
	}
}

// runPipeline pulls every frame from the source through the processor into
// the sink. It stops early, without error, when ctx is cancelled.
func runPipeline(ctx context.Context, pf *factory.PipelineFactory) (*runSummary, error) {
	source, err := pf.CreateSource()
	if err != nil {
		return nil, err
	}
	defer source.Close()

	sink, err := pf.CreateSink()
	if err != nil {
		return nil, err
	}
	defer sink.Close()

	processor, err := pf.CreateProcessor()
	if err != nil {
		return nil, err
	}

	summary := &runSummary{}
	defer func() {
		summary.Stats = processor.Stats()
		for _, effect := range processor.GetEffectChain() {
			if dizzy, ok := effect.(*video.DizzyEffect); ok {
				summary.Blended, summary.Bootstrapped = dizzy.FrameCounts()
			}
		}
	}()

	for {
		if ctx.Err() != nil {
			summary.Interrupted = true
			return summary, nil
		}

		frame, err := source.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return summary, err
		}

		out, err := processor.ProcessFrame(frame)
		if err != nil {
			return summary, fmt.Errorf("frame %d: %w", frame.Index, err)
		}

		if err := sink.Write(out); err != nil {
			return summary, fmt.Errorf("frame %d: %w", frame.Index, err)
		}
		summary.Written++
	}

	logrus.WithFields(logrus.Fields{
		"function": "runPipeline",
		"written":  summary.Written,
	}).Info("Pipeline finished")

	return summary, nil
}
