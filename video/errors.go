package video

import "errors"

// Sentinel errors for video package operations.
// These errors enable reliable error classification using errors.Is().

// Frame validation errors.
var (
	// ErrNilFrame indicates a nil frame was passed to a pipeline stage.
	ErrNilFrame = errors.New("input frame cannot be nil")

	// ErrInvalidGeometry indicates a frame with zero or negative width or height.
	ErrInvalidGeometry = errors.New("invalid frame geometry")

	// ErrBufferSize indicates the pixel buffer length does not match the frame geometry.
	ErrBufferSize = errors.New("pixel buffer size does not match geometry")

	// ErrUnsupportedFormat indicates a pixel format the stage cannot handle.
	ErrUnsupportedFormat = errors.New("unsupported pixel format")
)

// Warp errors.
var (
	// ErrDegenerateZoom indicates a zoom rate that would zero or invert the warp.
	ErrDegenerateZoom = errors.New("degenerate zoom rate")

	// ErrInvalidPhase indicates a NaN or infinite phase.
	ErrInvalidPhase = errors.New("invalid phase")

	// ErrInvalidPhaseIncrement indicates a NaN or infinite phase increment.
	ErrInvalidPhaseIncrement = errors.New("invalid phase increment")

	// ErrFormatMismatch indicates two frames that must share geometry and format do not.
	ErrFormatMismatch = errors.New("frame format mismatch")
)
