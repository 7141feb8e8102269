package video

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Processor runs the two-stage frame pipeline:
//
//	Input Frame → Convert (to FormatBGRA) → Effects → Output Frame
//
// Every stage call holds the processor's mutex, so one frame is fully
// processed before the next is accepted and effect state is never touched
// concurrently. Use one Processor per stream.
type Processor struct {
	mu           sync.Mutex
	converter    Converter
	effects      *EffectChain
	metrics      metricsRecorder
	timeProvider TimeProvider
}

// NewProcessor creates a processor with the given converter and effects.
// A nil converter defaults to a PackedConverter.
func NewProcessor(converter Converter, effects ...Effect) *Processor {
	if converter == nil {
		converter = NewPackedConverter()
	}

	p := &Processor{
		converter:    converter,
		effects:      NewEffectChain(effects...),
		timeProvider: DefaultTimeProvider{},
	}

	logrus.WithFields(logrus.Fields{
		"function":     "NewProcessor",
		"converter":    fmt.Sprintf("%T", converter),
		"effect_count": p.effects.GetEffectCount(),
	}).Info("Video processor created")

	return p
}

// Convert runs only the conversion stage.
func (p *Processor) Convert(frame *Frame) (*Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.convert(frame)
}

// Process runs only the effects stage on a frame that is already in
// FormatBGRA.
func (p *Processor) Process(frame *Frame) (*Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.process(frame)
}

// ProcessFrame runs a frame through the complete pipeline.
//
// Complete processing pipeline:
// 1. Input validation
// 2. Conversion to FormatBGRA
// 3. Effect chain
//
// The output carries the input's PTS, TimeBase, Index and TraceID.
func (p *Processor) ProcessFrame(frame *Frame) (*Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.timeProvider.Now()

	converted, err := p.convert(frame)
	if err != nil {
		return nil, err
	}

	out, err := p.process(converted)
	if err != nil {
		return nil, err
	}

	p.metrics.recordSuccess(out.Index, p.timeProvider.Since(start))
	return out, nil
}

func (p *Processor) convert(frame *Frame) (*Frame, error) {
	if err := frame.Validate(); err != nil {
		p.reject("convert", frame, err)
		return nil, err
	}

	converted, err := p.converter.Convert(frame)
	if err != nil {
		err = fmt.Errorf("conversion failed: %w", err)
		p.reject("convert", frame, err)
		return nil, err
	}
	return converted, nil
}

func (p *Processor) process(frame *Frame) (*Frame, error) {
	if err := frame.Validate(); err != nil {
		p.reject("process", frame, err)
		return nil, err
	}

	out, err := p.effects.Apply(frame)
	if err != nil {
		err = fmt.Errorf("effects processing failed: %w", err)
		p.reject("process", frame, err)
		return nil, err
	}
	return out, nil
}

// reject logs and counts a frame that a stage refused.
func (p *Processor) reject(stage string, frame *Frame, err error) {
	p.metrics.recordFailure()

	fields := logrus.Fields{
		"function": "Processor." + stage,
		"error":    err.Error(),
	}
	if frame != nil {
		fields["frame_index"] = frame.Index
		fields["trace_id"] = frame.TraceID
		fields["width"] = frame.Width
		fields["height"] = frame.Height
	}
	logrus.WithFields(fields).Error("Frame rejected")
}

// AddEffect appends an effect to the chain.
func (p *Processor) AddEffect(effect Effect) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.effects.AddEffect(effect)
}

// Do runs fn while holding the processor lock. Use it to reconfigure effects
// between frames without racing ProcessFrame.
func (p *Processor) Do(fn func(effects []Effect) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(p.effects.Effects())
}

// GetEffectChain returns a snapshot of the configured effects.
func (p *Processor) GetEffectChain() []Effect {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.effects.Effects()
}

// Stats returns the current processing metrics.
func (p *Processor) Stats() ProcessingMetrics {
	return p.metrics.snapshot()
}

// ResetMetrics clears the processing metrics.
func (p *Processor) ResetMetrics() {
	p.metrics.reset()
}

// SetTimeProvider sets the time provider for deterministic testing.
// Pass nil to restore DefaultTimeProvider.
func (p *Processor) SetTimeProvider(tp TimeProvider) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if tp == nil {
		tp = DefaultTimeProvider{}
	}
	p.timeProvider = tp
}
