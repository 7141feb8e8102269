package testing

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/dizzy/interfaces"
	"github.com/opd-ai/dizzy/video"
)

// Pattern names accepted by SimulatedFrameSource.
const (
	PatternSolid    = "solid"
	PatternGradient = "gradient"
	PatternChecker  = "checker"
	PatternBars     = "bars"
)

// checkerSize is the edge length of one checkerboard square in pixels.
const checkerSize = 8

// barColors are the classic SMPTE-style bar colors, left to right.
var barColors = []uint32{
	0xffc0c0c0, 0xffc0c000, 0xff00c0c0, 0xff00c000,
	0xffc000c0, 0xffc00000, 0xff0000c0,
}

// SimulatedFrameSource implements IFrameSource with deterministic synthetic frames
type SimulatedFrameSource struct {
	config  *interfaces.FrameIOConfig
	format  video.PixelFormat
	pattern func(frame *video.Frame, index int)
	next    int
	closed  bool
	mu      sync.Mutex
}

// NewSimulatedFrameSource creates a synthetic frame source for testing
func NewSimulatedFrameSource(config *interfaces.FrameIOConfig) (*SimulatedFrameSource, error) {
	if config == nil {
		return nil, fmt.Errorf("frame source config cannot be nil")
	}
	if _, err := video.NewFrame(config.Width, config.Height, video.FormatBGRA); err != nil {
		return nil, err
	}
	if config.FrameCount < 0 {
		return nil, fmt.Errorf("frame count cannot be negative: %d", config.FrameCount)
	}
	if config.FrameRate <= 0 {
		return nil, fmt.Errorf("frame rate must be positive: %d", config.FrameRate)
	}

	pattern, err := patternFunc(config.Pattern)
	if err != nil {
		return nil, err
	}

	format := config.Format
	switch format {
	case 0:
		format = video.FormatBGRA
	case video.FormatBGRA, video.FormatRGBA:
	default:
		return nil, fmt.Errorf("%w: %s", video.ErrUnsupportedFormat, format)
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewSimulatedFrameSource",
		"pattern":  config.Pattern,
		"format":   format.String(),
		"width":    config.Width,
		"height":   config.Height,
		"frames":   config.FrameCount,
	}).Info("Creating simulated frame source")

	return &SimulatedFrameSource{
		config:  config,
		format:  format,
		pattern: pattern,
	}, nil
}

// patternFunc resolves a pattern name. An empty name selects the gradient.
func patternFunc(name string) (func(*video.Frame, int), error) {
	switch name {
	case PatternSolid:
		return fillSolid, nil
	case PatternGradient, "":
		return fillGradient, nil
	case PatternChecker:
		return fillChecker, nil
	case PatternBars:
		return fillBars, nil
	default:
		return nil, fmt.Errorf("unknown test pattern %q", name)
	}
}

// Next implements IFrameSource.Next with synthetic frames
func (s *SimulatedFrameSource) Next() (*video.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("frame source is closed")
	}
	if s.next >= s.config.FrameCount {
		return nil, io.EOF
	}

	frame, err := video.NewFrame(s.config.Width, s.config.Height, video.FormatBGRA)
	if err != nil {
		return nil, err
	}
	s.pattern(frame, s.next)
	if s.format == video.FormatRGBA {
		toRGBA(frame)
	}

	frame.Index = int64(s.next)
	frame.PTS = int64(s.next)
	frame.TimeBase = video.Rational{Num: 1, Den: s.config.FrameRate}
	frame.TraceID = uuid.New().String()
	s.next++

	return frame, nil
}

// Close implements IFrameSource.Close
func (s *SimulatedFrameSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// IsSimulation implements IFrameSource.IsSimulation
func (s *SimulatedFrameSource) IsSimulation() bool {
	return true
}

// Produced returns the number of frames handed out so far.
func (s *SimulatedFrameSource) Produced() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

// toRGBA rewrites a FormatBGRA frame in place as FormatRGBA (word 0xAABBGGRR).
func toRGBA(frame *video.Frame) {
	for i, v := range frame.Pixels {
		frame.Pixels[i] = v&0xff00ff00 | (v>>16)&0xff | (v&0xff)<<16
	}
	frame.Format = video.FormatRGBA
}

func fillSolid(frame *video.Frame, _ int) {
	frame.Fill(0xff3080c0)
}

// fillGradient draws red across, green down, and cycles blue with the index.
func fillGradient(frame *video.Frame, index int) {
	blue := uint32(index*4) & 0xff
	for y := 0; y < frame.Height; y++ {
		green := uint32(y*255/max(frame.Height-1, 1)) & 0xff
		for x := 0; x < frame.Width; x++ {
			red := uint32(x*255/max(frame.Width-1, 1)) & 0xff
			frame.Set(x, y, 0xff000000|red<<16|green<<8|blue)
		}
	}
}

// fillChecker draws a checkerboard that scrolls one pixel right per frame.
func fillChecker(frame *video.Frame, index int) {
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			if ((x+index)/checkerSize+y/checkerSize)%2 == 0 {
				frame.Set(x, y, 0xffffffff)
			} else {
				frame.Set(x, y, 0xff000000)
			}
		}
	}
}

func fillBars(frame *video.Frame, _ int) {
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			frame.Set(x, y, barColors[x*len(barColors)/frame.Width])
		}
	}
}

// RecordingSink implements IFrameSink by keeping deep copies of every frame
type RecordingSink struct {
	frames []*video.Frame
	closed bool
	mu     sync.RWMutex
}

// NewRecordingSink creates an in-memory sink for test verification
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{
		frames: make([]*video.Frame, 0),
	}
}

// Write implements IFrameSink.Write
func (r *RecordingSink) Write(frame *video.Frame) error {
	if err := frame.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return fmt.Errorf("frame sink is closed")
	}
	r.frames = append(r.frames, frame.Clone())
	return nil
}

// Close implements IFrameSink.Close
func (r *RecordingSink) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Frames returns the recorded frames in write order.
func (r *RecordingSink) Frames() []*video.Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*video.Frame(nil), r.frames...)
}

// Count returns the number of recorded frames.
func (r *RecordingSink) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.frames)
}

// Clear drops all recorded frames.
func (r *RecordingSink) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = r.frames[:0]
}
