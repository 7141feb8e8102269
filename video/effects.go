// Package video provides frame effects processing for the dizzy pipeline.
//
// This file implements the effect chain that applies effects to packed
// frames in sequence.
package video

import (
	"fmt"
)

// Effect represents a video effect that can be applied to frames.
type Effect interface {
	// Apply processes a video frame and returns the modified frame
	Apply(frame *Frame) (*Frame, error)
	// GetName returns the effect name for identification
	GetName() string
}

// EffectChain manages multiple effects applied in sequence.
type EffectChain struct {
	effects []Effect
}

// NewEffectChain creates a new effect processing chain.
func NewEffectChain(effects ...Effect) *EffectChain {
	ec := &EffectChain{
		effects: make([]Effect, 0, len(effects)),
	}
	for _, effect := range effects {
		ec.AddEffect(effect)
	}
	return ec
}

// AddEffect adds an effect to the processing chain. Nil effects are ignored.
func (ec *EffectChain) AddEffect(effect Effect) {
	if effect == nil {
		return
	}
	ec.effects = append(ec.effects, effect)
}

// Apply processes a frame through all effects in the chain.
func (ec *EffectChain) Apply(frame *Frame) (*Frame, error) {
	if frame == nil {
		return nil, ErrNilFrame
	}

	// If no effects, return a copy
	if len(ec.effects) == 0 {
		return frame.Clone(), nil
	}

	current := frame
	for i, effect := range ec.effects {
		result, err := effect.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("effect %d (%s) failed: %w", i, effect.GetName(), err)
		}
		current = result
	}

	return current, nil
}

// GetEffectCount returns the number of effects in the chain.
func (ec *EffectChain) GetEffectCount() int {
	return len(ec.effects)
}

// Effects returns the effects in application order.
func (ec *EffectChain) Effects() []Effect {
	return append([]Effect(nil), ec.effects...)
}

// Clear removes all effects from the chain.
func (ec *EffectChain) Clear() {
	ec.effects = ec.effects[:0]
}
