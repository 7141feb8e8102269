package main

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/opd-ai/dizzy/config"
	"github.com/opd-ai/dizzy/video"
)

// paramSeries holds the decoded warp parameters of consecutive frames.
type paramSeries struct {
	dx, dy, sx, sy []float64
}

// sweepWarpParams solves the warp for n consecutive frames the way
// DizzyEffect would, starting from phase zero.
func sweepWarpParams(n int, phaseIncrement, zoomRate float64, width, height int) (*paramSeries, error) {
	series := &paramSeries{
		dx: make([]float64, 0, n),
		dy: make([]float64, 0, n),
		sx: make([]float64, 0, n),
		sy: make([]float64, 0, n),
	}

	phase := 0.0
	for i := 0; i < n; i++ {
		params, err := video.SolveWarp(phase, zoomRate, width, height)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		series.dx = append(series.dx, params.DX.Float())
		series.dy = append(series.dy, params.DY.Float())
		series.sx = append(series.sx, params.SX.Float())
		series.sy = append(series.sy, params.SY.Float())
		phase = video.NextPhase(phase, phaseIncrement)
	}
	return series, nil
}

// traceWarpParams prints mean, standard deviation and range of each warp
// parameter over n frames. The frame size is the scaled size when scaling is
// configured, else the synthetic input size.
func traceWarpParams(w io.Writer, cfg *config.Config, n int) error {
	width, height := cfg.Input.Width, cfg.Input.Height
	if cfg.Output.ScaleWidth > 0 {
		width, height = cfg.Output.ScaleWidth, cfg.Output.ScaleHeight
	}

	series, err := sweepWarpParams(n, cfg.Effect.PhaseIncrement, cfg.Effect.ZoomRate, width, height)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Warp parameters over %d frames at %dx%d (phase+%.3f, zoom=%.3f)\n",
		n, width, height, cfg.Effect.PhaseIncrement, cfg.Effect.ZoomRate)
	fmt.Fprintf(w, "%-4s %12s %12s %12s %12s\n", "", "mean", "stddev", "min", "max")
	for _, row := range []struct {
		name   string
		values []float64
	}{
		{"dx", series.dx},
		{"dy", series.dy},
		{"sx", series.sx},
		{"sy", series.sy},
	} {
		mean, std := stat.MeanStdDev(row.values, nil)
		fmt.Fprintf(w, "%-4s %12.4f %12.4f %12.4f %12.4f\n",
			row.name, mean, std, floats.Min(row.values), floats.Max(row.values))
	}
	return nil
}
