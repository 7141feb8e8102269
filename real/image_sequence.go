package real

import (
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/opd-ai/dizzy/interfaces"
	"github.com/opd-ai/dizzy/video"
)

// imageExtensions lists the file extensions picked up by ImageSequenceSource.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// ImageSequenceSource implements IFrameSource by decoding a directory of
// still images in lexical file name order.
type ImageSequenceSource struct {
	files     []string
	frameRate int
	next      int
	closed    bool
	mu        sync.Mutex
}

// NewImageSequenceSource scans config.InputDir for image files
func NewImageSequenceSource(config *interfaces.FrameIOConfig) (*ImageSequenceSource, error) {
	if config == nil {
		return nil, fmt.Errorf("frame source config cannot be nil")
	}
	if config.FrameRate <= 0 {
		return nil, fmt.Errorf("frame rate must be positive: %d", config.FrameRate)
	}

	files, err := listImages(config.InputDir)
	if err != nil {
		return nil, err
	}
	if config.FrameCount > 0 && len(files) > config.FrameCount {
		files = files[:config.FrameCount]
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewImageSequenceSource",
		"dir":      config.InputDir,
		"files":    len(files),
	}).Info("Creating image sequence source")

	return &ImageSequenceSource{
		files:     files,
		frameRate: config.FrameRate,
	}, nil
}

// listImages returns the sorted image paths in dir.
func listImages(dir string) ([]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("input directory not set")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images found in %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

// Next implements IFrameSource.Next by decoding the next file
func (s *ImageSequenceSource) Next() (*video.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("frame source is closed")
	}
	if s.next >= len(s.files) {
		return nil, io.EOF
	}

	path := s.files[s.next]
	frame, err := decodeFrame(path)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "ImageSequenceSource.Next",
			"file":     path,
			"error":    err.Error(),
		}).Error("Failed to decode image")
		return nil, err
	}

	frame.Index = int64(s.next)
	frame.PTS = int64(s.next)
	frame.TimeBase = video.Rational{Num: 1, Den: s.frameRate}
	frame.TraceID = uuid.New().String()
	s.next++

	logrus.WithFields(logrus.Fields{
		"function": "ImageSequenceSource.Next",
		"file":     path,
		"index":    frame.Index,
		"size":     frame.Key().String(),
		"trace_id": frame.TraceID,
	}).Debug("Decoded frame")

	return frame, nil
}

func decodeFrame(path string) (*video.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return video.FrameFromImage(img)
}

// Close implements IFrameSource.Close
func (s *ImageSequenceSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// IsSimulation implements IFrameSource.IsSimulation
func (s *ImageSequenceSource) IsSimulation() bool {
	return false
}

// Files returns the image paths in playback order.
func (s *ImageSequenceSource) Files() []string {
	return append([]string(nil), s.files...)
}

// PNGSink implements IFrameSink by writing one PNG file per frame
type PNGSink struct {
	dir     string
	encode  func(w io.Writer, m image.Image) error
	written int
	closed  bool
	mu      sync.Mutex
}

// NewPNGSink creates the output directory if needed
func NewPNGSink(config *interfaces.FrameIOConfig) (*PNGSink, error) {
	if config == nil {
		return nil, fmt.Errorf("frame sink config cannot be nil")
	}
	if config.OutputDir == "" {
		return nil, fmt.Errorf("output directory not set")
	}
	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", config.OutputDir, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewPNGSink",
		"dir":      config.OutputDir,
	}).Info("Creating PNG sink")

	encoder := &png.Encoder{CompressionLevel: png.BestSpeed}
	return &PNGSink{
		dir:    config.OutputDir,
		encode: encoder.Encode,
	}, nil
}

// Write implements IFrameSink.Write. Files are numbered by write order.
func (p *PNGSink) Write(frame *video.Frame) error {
	if err := frame.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("frame sink is closed")
	}

	path := filepath.Join(p.dir, fmt.Sprintf("frame_%06d.png", p.written))
	if err := p.writeFile(path, frame); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "PNGSink.Write",
			"file":     path,
			"trace_id": frame.TraceID,
			"error":    err.Error(),
		}).Error("Failed to write frame")
		return err
	}
	p.written++
	return nil
}

func (p *PNGSink) writeFile(path string, frame *video.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := p.encode(f, frame.ToImage()); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// Close implements IFrameSink.Close
func (p *PNGSink) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Written returns the number of files written so far.
func (p *PNGSink) Written() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.written
}
