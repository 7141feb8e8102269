package interfaces

import "github.com/opd-ai/dizzy/video"

// IFrameSource defines the interface for producing frames in arrival order.
// This abstraction allows switching between synthetic and file-backed sources.
type IFrameSource interface {
	// Next returns the next frame, or io.EOF once the source is exhausted
	Next() (*video.Frame, error)

	// Close releases any resources held by the source
	Close() error

	// IsSimulation returns true if this is a synthetic source
	IsSimulation() bool
}

// IFrameSink defines the interface for consuming processed frames.
type IFrameSink interface {
	// Write consumes one frame. Implementations must not retain the frame's
	// pixel buffer after returning.
	Write(frame *video.Frame) error

	// Close flushes and releases the sink
	Close() error
}

// FrameIOConfig holds configuration for frame source and sink implementations
type FrameIOConfig struct {
	// UseSimulation determines whether to use the synthetic source or read images from InputDir
	UseSimulation bool

	// Pattern selects the synthetic test pattern (solid, gradient, checker, bars)
	Pattern string

	// Format is the packed layout of synthetic frames; zero means video.FormatBGRA
	Format video.PixelFormat

	// Width and Height set the synthetic frame size
	Width  int
	Height int

	// FrameCount is the number of synthetic frames to produce
	FrameCount int

	// FrameRate sets the time base of produced frames (1/FrameRate seconds per tick)
	FrameRate int

	// InputDir is the image sequence directory for the real source
	InputDir string

	// OutputDir is where the real sink writes PNG files
	OutputDir string
}
