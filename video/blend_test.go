package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlendPixel(t *testing.T) {
	tests := []struct {
		name     string
		prev     uint32
		cur      uint32
		expected uint32
	}{
		{"magenta over blue", 0x00ff00ff, 0x000000ff, 0xffbd00ff},
		{"black", 0x00000000, 0x00000000, 0xff000000},
		{"white loses low red and green bits", 0xffffffff, 0xffffffff, 0xfffcfcff},
		{"weighted mix", 0xff102030, 0xff405060, 0xff1c2c3c},
		{"alpha ignored", 0x00102030, 0x7f405060, 0xff1c2c3c},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BlendPixel(tt.prev, tt.cur), "BlendPixel(%#08x, %#08x)", tt.prev, tt.cur)
		})
	}
}

func TestBlendPixel_NoChannelCarry(t *testing.T) {
	// Every channel at its maximum must not spill into its neighbour.
	for _, v := range []uint32{0x00ff0000, 0x0000ff00, 0x000000ff} {
		out := BlendPixel(v, v)
		assert.Equal(t, uint32(0xff000000)|(v&blendChannelMask), out, "%#08x", v)
	}
}

func TestBlendWarp_ZeroWarpSamplesOrigin(t *testing.T) {
	prev := filledFrame(8, 6, 0x00ff00ff)
	cur := filledFrame(8, 6, 0x000000ff)

	out, err := BlendWarp(cur, prev, WarpParameters{})
	require.NoError(t, err)

	// ((3*0x00fc00ff + 0x000000ff) >> 2) | 0xff000000
	want := uint32(0xffbd00ff)
	for i, v := range out.Pixels {
		require.Equal(t, want, v, "pixel %d", i)
	}
}

func TestBlendWarp_IdentityWarp(t *testing.T) {
	prev := createTestFrame(9, 5)
	cur := filledFrame(9, 5, 0xff808080)

	// A unit step along x with no rotation maps every pixel onto itself
	params := WarpParameters{DX: fixedOne}
	out, err := BlendWarp(cur, prev, params)
	require.NoError(t, err)

	for i := range out.Pixels {
		assert.Equal(t, BlendPixel(prev.Pixels[i], cur.Pixels[i]), out.Pixels[i], "pixel %d", i)
	}
}

func TestBlendWarp_RowShearRotatesScan(t *testing.T) {
	prev := createTestFrame(4, 4)
	cur := filledFrame(4, 4, 0)

	// dy = 1 moves down the previous frame along each output row and the
	// row step sx -= dy walks left, so output (x, y) samples prev (3-y, x).
	params := WarpParameters{DY: fixedOne, SX: 3 * fixedOne}
	out, err := BlendWarp(cur, prev, params)
	require.NoError(t, err)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			srcX, srcY := 3-y, x
			want := BlendPixel(prev.At(srcX, srcY), 0)
			assert.Equal(t, want, out.At(x, y), "output (%d,%d)", x, y)
		}
	}
}

func TestBlendWarp_IndexClamp(t *testing.T) {
	const width, height = 6, 4
	prev := createTestFrame(width, height)
	cur := createTestFrame(width, height)
	first := prev.Pixels[0]
	last := prev.Pixels[width*height-1]

	tests := []struct {
		name   string
		params WarpParameters
		source uint32
	}{
		{
			name:   "far before the frame",
			params: WarpParameters{SX: FixedFromFloat(-100), SY: FixedFromFloat(-100)},
			source: first,
		},
		{
			name:   "far after the frame",
			params: WarpParameters{DX: fixedOne, SX: FixedFromFloat(width + 10), SY: FixedFromFloat(height + 10)},
			source: last,
		},
		{
			// j == width*height is one past the buffer and clamps to the last pixel
			name:   "exactly one past the last pixel",
			params: WarpParameters{SY: FixedFromFloat(height)},
			source: last,
		},
		{
			name:   "just before the first pixel",
			params: WarpParameters{SX: -1},
			source: first,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := BlendWarp(cur, prev, tt.params)
			require.NoError(t, err)
			for i, v := range out.Pixels {
				require.Equal(t, BlendPixel(tt.source, cur.Pixels[i]), v, "pixel %d", i)
			}
		})
	}
}

func TestBlendWarp_ForwardsCurrentMetadata(t *testing.T) {
	prev := createTestFrame(4, 4)
	prev.PTS, prev.Index, prev.TraceID = 1, 1, "prev"
	cur := createTestFrame(4, 4)
	cur.PTS, cur.Index, cur.TraceID = 3003, 2, "cur"
	cur.TimeBase = Rational{Num: 1, Den: 90000}

	out, err := BlendWarp(cur, prev, WarpParameters{})
	require.NoError(t, err)

	assert.Equal(t, int64(3003), out.PTS)
	assert.Equal(t, int64(2), out.Index)
	assert.Equal(t, "cur", out.TraceID)
	assert.Equal(t, Rational{Num: 1, Den: 90000}, out.TimeBase)
	assert.Equal(t, FormatBGRA, out.Format)
}

func TestBlendWarp_DoesNotMutateInputs(t *testing.T) {
	prev := createTestFrame(5, 5)
	cur := createTestFrame(5, 5)
	prevCopy := prev.Clone()
	curCopy := cur.Clone()

	params, err := SolveWarp(0.7, DefaultZoomRate, 5, 5)
	require.NoError(t, err)
	out, err := BlendWarp(cur, prev, params)
	require.NoError(t, err)

	assert.Equal(t, prevCopy.Pixels, prev.Pixels)
	assert.Equal(t, curCopy.Pixels, cur.Pixels)
	out.Pixels[0] = 0
	assert.Equal(t, curCopy.Pixels, cur.Pixels)
}

func TestBlendWarp_Errors(t *testing.T) {
	good := createTestFrame(4, 4)

	_, err := BlendWarp(nil, good, WarpParameters{})
	assert.ErrorIs(t, err, ErrNilFrame)

	_, err = BlendWarp(good, nil, WarpParameters{})
	assert.ErrorIs(t, err, ErrNilFrame)

	_, err = BlendWarp(good, createTestFrame(4, 5), WarpParameters{})
	assert.ErrorIs(t, err, ErrFormatMismatch)

	rgba := createTestFrame(4, 4)
	rgba.Format = FormatRGBA
	_, err = BlendWarp(good, rgba, WarpParameters{})
	assert.ErrorIs(t, err, ErrFormatMismatch)

	short := createTestFrame(4, 4)
	short.Pixels = short.Pixels[:10]
	_, err = BlendWarp(short, good, WarpParameters{})
	assert.ErrorIs(t, err, ErrBufferSize)
}
