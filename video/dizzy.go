package video

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultPhaseIncrement is the phase advance applied after each blended frame.
	DefaultPhaseIncrement = 0.02

	// DefaultZoomRate scales the warp normalization; values above 1 zoom out.
	DefaultZoomRate = 1.01

	// PhaseWrap is the bound past which the phase restarts at zero.
	PhaseWrap = 5700000
)

// DizzyConfig holds the tunable parameters of a DizzyEffect.
type DizzyConfig struct {
	PhaseIncrement float64
	ZoomRate       float64
}

// DefaultDizzyConfig returns the default effect parameters.
func DefaultDizzyConfig() DizzyConfig {
	return DizzyConfig{
		PhaseIncrement: DefaultPhaseIncrement,
		ZoomRate:       DefaultZoomRate,
	}
}

// Validate checks that the parameters can drive the warp.
func (c DizzyConfig) Validate() error {
	if err := validatePhaseIncrement(c.PhaseIncrement); err != nil {
		return err
	}
	return validateZoomRate(c.ZoomRate)
}

// DizzyEffect warps the previous output frame and blends it with each new
// frame, producing a swirling feedback trail.
//
// Each call to Apply solves the warp for the current phase, blends, advances
// the phase and keeps a private copy of the output as the sampling source for
// the next frame. The first frame, and the first frame after the geometry or
// format changes, is passed through unchanged.
//
// DizzyEffect is not safe for concurrent use. Processor serializes access
// when the effect runs inside a pipeline.
type DizzyEffect struct {
	id             string
	phase          float64
	phaseIncrement float64
	zoomRate       float64
	previous       *Frame
	lastKey        FormatKey
	hasKey         bool

	framesBlended   uint64
	framesBootstrap uint64
}

// NewDizzyEffect creates a dizzy effect with default parameters.
func NewDizzyEffect() *DizzyEffect {
	effect, _ := NewDizzyEffectWithConfig(DefaultDizzyConfig())
	return effect
}

// NewDizzyEffectWithConfig creates a dizzy effect with the given parameters.
func NewDizzyEffectWithConfig(cfg DizzyConfig) (*DizzyEffect, error) {
	if err := cfg.Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":        "NewDizzyEffectWithConfig",
			"phase_increment": cfg.PhaseIncrement,
			"zoom_rate":       cfg.ZoomRate,
			"error":           err.Error(),
		}).Error("Rejected dizzy effect configuration")
		return nil, err
	}

	de := &DizzyEffect{
		id:             uuid.New().String(),
		phaseIncrement: cfg.PhaseIncrement,
		zoomRate:       cfg.ZoomRate,
	}

	logrus.WithFields(logrus.Fields{
		"function":        "NewDizzyEffectWithConfig",
		"effect_id":       de.id,
		"phase_increment": de.phaseIncrement,
		"zoom_rate":       de.zoomRate,
	}).Info("Dizzy effect created")

	return de, nil
}

// Apply runs one frame through the effect.
//
// Invalid frames are rejected before any state changes. A change of
// geometry or format resets the phase and drops the previous frame, so the
// frame is emitted unchanged and becomes the new sampling source.
func (de *DizzyEffect) Apply(frame *Frame) (*Frame, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	if frame.Format != FormatBGRA {
		return nil, fmt.Errorf("%w: dizzy requires %s, got %s", ErrUnsupportedFormat, FormatBGRA, frame.Format)
	}

	key := frame.Key()
	if !de.hasKey || key != de.lastKey {
		de.handleFormatChange(key)
	}

	var out *Frame
	if de.previous == nil {
		out = frame.Clone()
		de.framesBootstrap++

		logrus.WithFields(logrus.Fields{
			"function":    "DizzyEffect.Apply",
			"effect_id":   de.id,
			"frame_index": frame.Index,
			"trace_id":    frame.TraceID,
		}).Debug("Bootstrapping feedback from first frame")
	} else {
		params, err := SolveWarp(de.phase, de.zoomRate, frame.Width, frame.Height)
		if err != nil {
			return nil, err
		}

		out, err = BlendWarp(frame, de.previous, params)
		if err != nil {
			return nil, err
		}

		if logrus.IsLevelEnabled(logrus.TraceLevel) {
			logrus.WithFields(logrus.Fields{
				"function":    "DizzyEffect.Apply",
				"effect_id":   de.id,
				"frame_index": frame.Index,
				"phase":       de.phase,
				"params":      params.String(),
			}).Trace("Blended frame")
		}

		de.advancePhase()
		de.framesBlended++
	}

	de.previous = out.Clone()
	return out, nil
}

// handleFormatChange drops the feedback state when the frame key changes.
func (de *DizzyEffect) handleFormatChange(key FormatKey) {
	if de.hasKey {
		logrus.WithFields(logrus.Fields{
			"function":  "DizzyEffect.Apply",
			"effect_id": de.id,
			"old_key":   de.lastKey.String(),
			"new_key":   key.String(),
			"phase":     de.phase,
		}).Info("Frame format changed, resetting feedback state")
	}

	de.previous = nil
	de.phase = 0
	de.lastKey = key
	de.hasKey = true
}

func (de *DizzyEffect) advancePhase() {
	de.phase = NextPhase(de.phase, de.phaseIncrement)
}

// NextPhase steps phase by increment and restarts at zero once the result
// passes PhaseWrap in either direction.
func NextPhase(phase, increment float64) float64 {
	phase += increment
	if phase > PhaseWrap || phase < -PhaseWrap {
		return 0
	}
	return phase
}

// Reset drops the previous frame, the remembered format and the phase.
func (de *DizzyEffect) Reset() {
	logrus.WithFields(logrus.Fields{
		"function":  "DizzyEffect.Reset",
		"effect_id": de.id,
		"phase":     de.phase,
	}).Info("Resetting dizzy effect state")

	de.previous = nil
	de.phase = 0
	de.lastKey = FormatKey{}
	de.hasKey = false
}

// GetName returns the effect name.
func (de *DizzyEffect) GetName() string {
	return fmt.Sprintf("Dizzy(phase+%.3f,zoom=%.3f)", de.phaseIncrement, de.zoomRate)
}

// ID returns the unique identifier of this effect instance.
func (de *DizzyEffect) ID() string {
	return de.id
}

// Phase returns the phase that the next blended frame will use.
func (de *DizzyEffect) Phase() float64 {
	return de.phase
}

// PreviousFrame returns a copy of the stored feedback frame, or nil before
// the first frame and after a reset.
func (de *DizzyEffect) PreviousFrame() *Frame {
	if de.previous == nil {
		return nil
	}
	return de.previous.Clone()
}

// FrameCounts returns how many frames were blended and how many bootstrapped.
func (de *DizzyEffect) FrameCounts() (blended, bootstrapped uint64) {
	return de.framesBlended, de.framesBootstrap
}

// PhaseIncrement returns the phase advance per blended frame.
func (de *DizzyEffect) PhaseIncrement() float64 {
	return de.phaseIncrement
}

// SetPhaseIncrement updates the phase advance per blended frame.
func (de *DizzyEffect) SetPhaseIncrement(v float64) error {
	if err := validatePhaseIncrement(v); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function":  "DizzyEffect.SetPhaseIncrement",
		"effect_id": de.id,
		"old_value": de.phaseIncrement,
		"new_value": v,
	}).Info("Updating phase increment")

	de.phaseIncrement = v
	return nil
}

// ResetPhaseIncrement restores DefaultPhaseIncrement.
func (de *DizzyEffect) ResetPhaseIncrement() {
	_ = de.SetPhaseIncrement(DefaultPhaseIncrement)
}

// ZoomRate returns the warp zoom rate.
func (de *DizzyEffect) ZoomRate() float64 {
	return de.zoomRate
}

// SetZoomRate updates the warp zoom rate. Non-positive or non-finite values
// are rejected with ErrDegenerateZoom and leave the current rate in place.
func (de *DizzyEffect) SetZoomRate(v float64) error {
	if err := validateZoomRate(v); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":  "DizzyEffect.SetZoomRate",
			"effect_id": de.id,
			"value":     v,
			"error":     err.Error(),
		}).Warn("Rejected zoom rate")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function":  "DizzyEffect.SetZoomRate",
		"effect_id": de.id,
		"old_value": de.zoomRate,
		"new_value": v,
	}).Info("Updating zoom rate")

	de.zoomRate = v
	return nil
}

// ResetZoomRate restores DefaultZoomRate.
func (de *DizzyEffect) ResetZoomRate() {
	_ = de.SetZoomRate(DefaultZoomRate)
}

func validatePhaseIncrement(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidPhaseIncrement, v)
	}
	return nil
}

func validateZoomRate(v float64) error {
	if !(v > 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v must be positive and finite", ErrDegenerateZoom, v)
	}
	return nil
}
