package video

import (
	"fmt"
	"math"
)

// Fixed is a signed 16.16 fixed-point number.
type Fixed int32

// fixedOne is 1.0 in 16.16 fixed point.
const fixedOne = 1 << 16

// FixedFromFloat encodes f as round(f * 65536).
func FixedFromFloat(f float64) Fixed {
	return Fixed(math.Round(f * fixedOne))
}

// Float decodes x back to a real value.
func (x Fixed) Float() float64 {
	return float64(x) / fixedOne
}

// WarpParameters describes how one frame samples the previous output frame.
//
// DX and DY are the per-pixel source increments along a row. SX and SY are
// the source coordinate of the top-left output pixel. Moving down a row
// rotates the increment by 90 degrees (SX -= DY, SY += DX), which turns the
// linear scan into a rotation and zoom around the frame.
type WarpParameters struct {
	DX Fixed
	DY Fixed
	SX Fixed
	SY Fixed
}

// String formats the parameters as real values for logging.
func (p WarpParameters) String() string {
	return fmt.Sprintf("dx=%.4f dy=%.4f sx=%.2f sy=%.2f",
		p.DX.Float(), p.DY.Float(), p.SX.Float(), p.SY.Float())
}

// Dizziness returns the swirl offset for the given phase. Two sinusoids of
// unrelated frequency keep the swirl from repeating exactly.
func Dizziness(phase float64) float64 {
	return 10*math.Sin(phase) + 5*math.Sin(1.9*phase+5)
}

// SolveWarp computes the warp parameters for one frame.
//
// The dizziness offset perturbs the longer half-extent of the frame, and the
// result is normalized by zoomRate times the squared half-diagonal. Two more
// sinusoids drift the sampling origin so the center of the swirl wanders.
//
// Returns ErrInvalidGeometry for non-positive dimensions and ErrDegenerateZoom
// when the zoom rate is not positive and finite, or is so small that a
// parameter leaves the 16.16 range. A 1x1 frame yields zero parameters.
func SolveWarp(phase, zoomRate float64, width, height int) (WarpParameters, error) {
	if width <= 0 || height <= 0 {
		return WarpParameters{}, fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, width, height)
	}
	if !(zoomRate > 0) || math.IsInf(zoomRate, 0) {
		return WarpParameters{}, fmt.Errorf("%w: zoom rate %v must be positive and finite", ErrDegenerateZoom, zoomRate)
	}

	if math.IsNaN(phase) || math.IsInf(phase, 0) {
		return WarpParameters{}, fmt.Errorf("%w: %v", ErrInvalidPhase, phase)
	}

	dizz := Dizziness(phase)

	xi := width >> 1
	yi := height >> 1
	x := float64(xi)
	y := float64(yi)
	t := zoomRate * float64(xi*xi+yi*yi)
	if t == 0 {
		// A 1x1 frame has no extent to rotate; every output pixel samples
		// the single previous pixel.
		return WarpParameters{}, nil
	}
	if !(t > 0) || math.IsInf(t, 0) {
		return WarpParameters{}, fmt.Errorf("%w: normalization %v for %dx%d", ErrDegenerateZoom, t, width, height)
	}

	var vx, vy float64
	if width > height {
		dizz = clampFloat(dizz, -x, x)
		if dizz >= 0 {
			vx = (x*(x-dizz) + y*y) / t
		} else {
			vx = (x*(x+dizz) + y*y) / t
		}
		vy = dizz * y / t
	} else {
		dizz = clampFloat(dizz, -y, y)
		if dizz >= 0 {
			vx = (x*x + y*(y-dizz)) / t
		} else {
			vx = (x*x + y*(y+dizz)) / t
		}
		vy = dizz * x / t
	}

	sx := -vx*x + vy*y + x + 2*math.Cos(5*phase)
	sy := -vx*y - vy*x + y + 2*math.Sin(6*phase)
	for _, v := range [...]float64{vx, vy, sx, sy} {
		if !fitsFixed(v) {
			return WarpParameters{}, fmt.Errorf("%w: zoom rate %v overflows 16.16 warp for %dx%d", ErrDegenerateZoom, zoomRate, width, height)
		}
	}

	return WarpParameters{
		DX: FixedFromFloat(vx),
		DY: FixedFromFloat(vy),
		SX: FixedFromFloat(sx),
		SY: FixedFromFloat(sy),
	}, nil
}

// fitsFixed reports whether f encodes to a Fixed without overflowing int32.
func fitsFixed(f float64) bool {
	v := math.Round(f * fixedOne)
	return v >= math.MinInt32 && v <= math.MaxInt32
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
