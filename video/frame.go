package video

import (
	"errors"
	"fmt"

	"github.com/opd-ai/dizzy/limits"
)

// PixelFormat tags the packed 32-bit layout of a frame's pixels.
type PixelFormat uint8

const (
	// FormatBGRA stores B, G, R, A bytes in memory, which reads as the
	// little-endian word 0xAARRGGBB. This is the working format of every effect.
	FormatBGRA PixelFormat = iota + 1

	// FormatRGBA stores R, G, B, A bytes in memory (word 0xAABBGGRR).
	// The convert stage swizzles it into FormatBGRA.
	FormatRGBA
)

// String returns the caps-style name of the format.
func (f PixelFormat) String() string {
	switch f {
	case FormatBGRA:
		return "bgra"
	case FormatRGBA:
		return "rgba"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(f))
	}
}

// ParsePixelFormat resolves a caps-style format name.
func ParsePixelFormat(name string) (PixelFormat, error) {
	switch name {
	case "bgra":
		return FormatBGRA, nil
	case "rgba":
		return FormatRGBA, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Rational is a time base expressed as Num/Den seconds per tick.
type Rational struct {
	Num int
	Den int
}

// FormatKey identifies the geometry and layout of a frame. Two frames with
// equal keys can be blended against each other.
type FormatKey struct {
	Width  int
	Height int
	Format PixelFormat
}

// String formats the key as WxH/format.
func (k FormatKey) String() string {
	return fmt.Sprintf("%dx%d/%s", k.Width, k.Height, k.Format)
}

// Frame represents a video frame of packed 32-bit pixels.
//
// Pixels are stored row-major with no padding, one word per pixel. The
// temporal metadata (PTS, TimeBase, Index) and TraceID are not interpreted
// by any effect; they are forwarded unchanged to the derived output frame.
type Frame struct {
	Width    int
	Height   int
	Format   PixelFormat
	Pixels   []uint32
	PTS      int64    // Presentation timestamp in TimeBase units
	TimeBase Rational // Seconds per PTS tick
	Index    int64    // Sequence index within the stream
	TraceID  string   // Correlation ID for logging
}

// NewFrame allocates a zeroed frame of the given geometry.
func NewFrame(width, height int, format PixelFormat) (*Frame, error) {
	if err := limits.ValidateDimensions(width, height); err != nil {
		return nil, wrapLimitError(err)
	}
	return &Frame{
		Width:  width,
		Height: height,
		Format: format,
		Pixels: make([]uint32, width*height),
	}, nil
}

// Key returns the format key used to detect geometry or layout changes.
func (f *Frame) Key() FormatKey {
	return FormatKey{Width: f.Width, Height: f.Height, Format: f.Format}
}

// Validate checks that the frame geometry is acceptable and that the pixel
// buffer holds exactly Width*Height pixels.
func (f *Frame) Validate() error {
	if f == nil {
		return ErrNilFrame
	}
	if err := limits.ValidatePixelBuffer(len(f.Pixels), f.Width, f.Height); err != nil {
		return wrapLimitError(err)
	}
	return nil
}

// Clone creates a deep copy of the frame. The copy never shares its pixel
// buffer with the original.
func (f *Frame) Clone() *Frame {
	out := *f
	out.Pixels = append([]uint32(nil), f.Pixels...)
	return &out
}

// withPixels returns a frame that carries f's metadata and the given buffer.
func (f *Frame) withPixels(pixels []uint32, format PixelFormat) *Frame {
	out := *f
	out.Format = format
	out.Pixels = pixels
	return &out
}

// PixelCount returns Width*Height.
func (f *Frame) PixelCount() int {
	return f.Width * f.Height
}

// At returns the pixel at (x, y).
func (f *Frame) At(x, y int) uint32 {
	return f.Pixels[y*f.Width+x]
}

// Set stores the pixel at (x, y).
func (f *Frame) Set(x, y int, v uint32) {
	f.Pixels[y*f.Width+x] = v
}

// Fill sets every pixel to v.
func (f *Frame) Fill(v uint32) {
	for i := range f.Pixels {
		f.Pixels[i] = v
	}
}

// wrapLimitError maps limits package errors onto the video sentinels while
// keeping the original message.
func wrapLimitError(err error) error {
	switch {
	case errors.Is(err, limits.ErrInvalidDimensions):
		return fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	case errors.Is(err, limits.ErrBufferSizeMismatch):
		return fmt.Errorf("%w: %v", ErrBufferSize, err)
	default:
		return err
	}
}
