// Package limits provides centralized frame geometry limits for the effect pipeline.
// This ensures consistent validation across different components of the system.
package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxFrameDimension is the largest accepted frame width or height.
	// 16.16 fixed-point source coordinates must fit in an int32.
	MaxFrameDimension = 16384

	// MaxFramePixels is the largest accepted pixel count for a single frame.
	MaxFramePixels = 8192 * 8192
)

var (
	// ErrInvalidDimensions indicates a zero or negative width or height.
	ErrInvalidDimensions = errors.New("invalid frame dimensions")

	// ErrFrameTooLarge indicates a frame exceeds MaxFrameDimension or MaxFramePixels.
	ErrFrameTooLarge = errors.New("frame too large")

	// ErrBufferSizeMismatch indicates a pixel buffer does not match its geometry.
	ErrBufferSizeMismatch = errors.New("pixel buffer size mismatch")
)

// ValidateDimensions validates frame geometry against the package limits.
// Returns an error with context including the offending dimensions.
func ValidateDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if width > MaxFrameDimension || height > MaxFrameDimension {
		return fmt.Errorf("%w: %dx%d exceeds dimension limit %d", ErrFrameTooLarge, width, height, MaxFrameDimension)
	}
	if width*height > MaxFramePixels {
		return fmt.Errorf("%w: %d pixels exceeds limit %d", ErrFrameTooLarge, width*height, MaxFramePixels)
	}
	return nil
}

// ValidatePixelBuffer validates that a buffer of n pixels holds exactly one
// width x height frame with no padding.
func ValidatePixelBuffer(n, width, height int) error {
	if err := ValidateDimensions(width, height); err != nil {
		return err
	}
	if n != width*height {
		return fmt.Errorf("%w: got %d pixels, expected %d for %dx%d", ErrBufferSizeMismatch, n, width*height, width, height)
	}
	return nil
}
