package video

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// invertEffect flips the color channels, keeping alpha.
type invertEffect struct{}

func (invertEffect) Apply(frame *Frame) (*Frame, error) {
	out := frame.Clone()
	for i, v := range out.Pixels {
		out.Pixels[i] = v&0xff000000 | ^v&0x00ffffff
	}
	return out, nil
}

func (invertEffect) GetName() string { return "Invert" }

// failingEffect always returns its error.
type failingEffect struct{ err error }

func (f failingEffect) Apply(*Frame) (*Frame, error) { return nil, f.err }
func (f failingEffect) GetName() string              { return "Failing" }

func TestEffectChain_Empty(t *testing.T) {
	chain := NewEffectChain()
	frame := createTestFrame(4, 4)

	out, err := chain.Apply(frame)
	require.NoError(t, err)
	assert.Equal(t, frame.Pixels, out.Pixels)

	out.Pixels[0] = 0
	assert.NotEqual(t, uint32(0), frame.Pixels[0], "empty chain must return a copy")
}

func TestEffectChain_AppliesInOrder(t *testing.T) {
	chain := NewEffectChain(invertEffect{})
	chain.AddEffect(invertEffect{})
	chain.AddEffect(nil)
	assert.Equal(t, 2, chain.GetEffectCount())

	frame := createTestFrame(4, 4)
	out, err := chain.Apply(frame)
	require.NoError(t, err)
	assert.Equal(t, frame.Pixels, out.Pixels, "double inversion is the identity")

	chain.Clear()
	assert.Equal(t, 0, chain.GetEffectCount())
}

func TestEffectChain_WrapsErrors(t *testing.T) {
	sentinel := errors.New("boom")
	chain := NewEffectChain(invertEffect{}, failingEffect{err: sentinel})

	out, err := chain.Apply(createTestFrame(2, 2))
	assert.Nil(t, out)
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "effect 1 (Failing) failed")

	_, err = chain.Apply(nil)
	assert.ErrorIs(t, err, ErrNilFrame)
}

func TestEffectChain_DizzyFollowedByInvert(t *testing.T) {
	dizzy := NewDizzyEffect()
	chain := NewEffectChain(dizzy, invertEffect{})

	frame := createTestFrame(8, 8)
	out, err := chain.Apply(frame)
	require.NoError(t, err)

	// Dizzy stores its own output, not what later effects make of it
	assert.Equal(t, frame.Pixels, dizzy.PreviousFrame().Pixels)
	assert.NotEqual(t, frame.Pixels, out.Pixels)
}
