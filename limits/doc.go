// Package limits provides centralized frame geometry constants and validation
// functions for the dizzy effect pipeline. This package ensures consistent
// size enforcement across every component that allocates pixel buffers.
//
// # Frame Size Hierarchy
//
//   - MaxFrameDimension (16384 pixels): The largest accepted width or height.
//     The warp sampler encodes source coordinates as 16.16 fixed-point values
//     in an int32, so a single coordinate must stay below 32768.
//
//   - MaxFramePixels (8192*8192): The largest accepted pixel count for one
//     frame. At four bytes per pixel this caps a single buffer at 256MB.
//
// # Validation Functions
//
//	if err := limits.ValidateDimensions(width, height); err != nil {
//	    // ErrInvalidDimensions or ErrFrameTooLarge
//	}
//
//	if err := limits.ValidatePixelBuffer(len(pixels), width, height); err != nil {
//	    // ErrBufferSizeMismatch
//	}
//
// All errors wrap one of the sentinel values so callers can classify them with
// errors.Is.
package limits
